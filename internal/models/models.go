package models

// Document is one catalog row rendered as labeled plain text.
type Document struct {
	Content string
	Source  string
	Row     int
}

// Chunk represents a bounded slice of a document with metadata
type Chunk struct {
	Content string
	Source  string
	Row     int
	ChunkID int
}

// SearchResult is a retrieved chunk with its similarity score.
type SearchResult struct {
	Content    string
	Metadata   map[string]string
	Similarity float32
}

// IndexStats reports what an ingestion run wrote.
type IndexStats struct {
	ChunkCount int
}
