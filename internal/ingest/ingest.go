package ingest

import (
	"context"
	"strconv"

	"github.com/rs/zerolog/log"

	"product-rag/internal/catalog"
	"product-rag/internal/chromemdb"
	"product-rag/internal/chunker"
	"product-rag/internal/config"
	"product-rag/internal/embedding"
	"product-rag/internal/helper"
	"product-rag/internal/models"
)

// Index is the write capability of the vector store: one wholesale rebuild of
// the collection per ingestion run.
type Index interface {
	Replace(ctx context.Context, entries []chromemdb.Entry) error
}

// Builder runs the offline ingestion pipeline: catalog rows to documents,
// documents to overlapping chunks, chunks to embedded index entries.
type Builder struct {
	embedder embedding.Embedder
	index    Index
	cfg      *config.Config
}

func NewBuilder(embedder embedding.Embedder, index Index, cfg *config.Config) *Builder {
	return &Builder{embedder: embedder, index: index, cfg: cfg}
}

// BuildIndex rebuilds the collection from the tabular source and returns the
// number of chunks written. Any failure aborts the run; a partial index is
// never treated as valid, re-run from scratch instead.
func (b *Builder) BuildIndex(ctx context.Context, sourcePath string) (models.IndexStats, error) {
	docs, err := catalog.Load(sourcePath)
	if err != nil {
		return models.IndexStats{}, err
	}

	splitter, err := chunker.New(b.cfg.RAG.ChunkSize, b.cfg.RAG.ChunkOverlap)
	if err != nil {
		return models.IndexStats{}, err
	}

	var chunks []models.Chunk
	for _, doc := range docs {
		for i, content := range splitter.Split(doc.Content) {
			chunks = append(chunks, models.Chunk{
				Content: content,
				Source:  doc.Source,
				Row:     doc.Row,
				ChunkID: i + 1,
			})
		}
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	var vectors [][]float32
	if len(texts) > 0 {
		vectors, err = b.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return models.IndexStats{}, err
		}
	}

	entries := make([]chromemdb.Entry, len(chunks))
	for i, chunk := range chunks {
		id, err := helper.GenerateUUID()
		if err != nil {
			return models.IndexStats{}, err
		}
		entries[i] = chromemdb.Entry{
			ID:      id,
			Content: chunk.Content,
			Metadata: map[string]string{
				"source": chunk.Source,
				"row":    strconv.Itoa(chunk.Row),
				"chunk":  strconv.Itoa(chunk.ChunkID),
			},
			Embedding: vectors[i],
		}
	}

	if err := b.index.Replace(ctx, entries); err != nil {
		return models.IndexStats{}, err
	}

	log.Info().
		Str("source", sourcePath).
		Int("documents", len(docs)).
		Int("chunks", len(entries)).
		Msg("Rebuilt index")
	return models.IndexStats{ChunkCount: len(entries)}, nil
}
