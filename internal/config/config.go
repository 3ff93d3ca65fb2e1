package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LLMConfig configures the shared OpenAI-compatible endpoint for both the
// embedding model and the chat models.
type LLMConfig struct {
	BaseURL        string  `yaml:"base_url"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	APIKey         string  `yaml:"-" json:"-"`
	EmbeddingModel string  `yaml:"embedding_model"`
	PrimaryModel   string  `yaml:"primary_model"`
	FallbackModel  string  `yaml:"fallback_model"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSecs    int     `yaml:"timeout_secs"`
	MaxRetries     int     `yaml:"max_retries"`
}

// IndexConfig locates the persistent vector index.
type IndexConfig struct {
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
}

// RAGConfig holds the chunking and retrieval parameters. The embedding model
// identity in LLMConfig must be pinned across ingestion and query, retrieval
// quality silently degrades otherwise.
type RAGConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	TopK         int `yaml:"top_k"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

type Config struct {
	LLM    LLMConfig    `yaml:"llm"`
	Index  IndexConfig  `yaml:"index"`
	RAG    RAGConfig    `yaml:"rag"`
	Server ServerConfig `yaml:"server"`
}

// optionalKnobs shadows the knobs whose zero value is meaningful
// (temperature 0, overlap 0). A second decode with pointer fields
// distinguishes "absent, apply the default" from "explicitly zero".
type optionalKnobs struct {
	LLM struct {
		Temperature *float64 `yaml:"temperature"`
	} `yaml:"llm"`
	RAG struct {
		ChunkOverlap *int `yaml:"chunk_overlap"`
	} `yaml:"rag"`
}

// LoadConfig reads the yaml config, applies defaults and resolves the API key
// from the environment. A .env next to the working directory is honored first.
func LoadConfig(path string) (*Config, error) {
	// best effort, credentials may already be in the environment
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	var set optionalKnobs
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, err
	}
	applyDefaults(&cfg, &set)
	cfg.LLM.APIKey = os.Getenv(cfg.LLM.APIKeyEnv)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config, set *optionalKnobs) {
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "OPENROUTER_API_KEY"
	}
	if cfg.LLM.EmbeddingModel == "" {
		cfg.LLM.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.LLM.PrimaryModel == "" {
		cfg.LLM.PrimaryModel = "google/gemini-flash-1.5"
	}
	if cfg.LLM.FallbackModel == "" {
		cfg.LLM.FallbackModel = "google/gemini-flash-1.5-8b"
	}
	if set.LLM.Temperature == nil {
		cfg.LLM.Temperature = 0.3
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 256
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 60
	}
	if cfg.LLM.MaxRetries == 0 {
		cfg.LLM.MaxRetries = 2
	}
	if cfg.Index.Path == "" {
		cfg.Index.Path = "./chromemdb"
	}
	if cfg.Index.Collection == "" {
		cfg.Index.Collection = "products"
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 800
	}
	if set.RAG.ChunkOverlap == nil {
		cfg.RAG.ChunkOverlap = 100
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 3
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.StaticDir == "" {
		cfg.Server.StaticDir = "./web"
	}
}

func validate(cfg *Config) error {
	if cfg.RAG.ChunkOverlap < 0 || cfg.RAG.ChunkOverlap >= cfg.RAG.ChunkSize {
		return fmt.Errorf("chunk overlap must satisfy 0 <= overlap < chunk size, got overlap=%d size=%d",
			cfg.RAG.ChunkOverlap, cfg.RAG.ChunkSize)
	}
	if cfg.RAG.TopK < 1 {
		return fmt.Errorf("top_k must be at least 1, got %d", cfg.RAG.TopK)
	}
	return nil
}
