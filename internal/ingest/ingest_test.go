package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-rag/internal/catalog"
	"product-rag/internal/chromemdb"
	"product-rag/internal/config"
	"product-rag/internal/embedding"
	"product-rag/internal/models"
)

// mockEmbedder produces deterministic keyword-presence vectors so similarity
// rankings in tests are predictable.
type mockEmbedder struct {
	docCalls int
	err      error
}

var keywords = []string{"widget", "gadget", "laptop"}

func embedText(text string) []float32 {
	lower := strings.ToLower(text)
	vector := make([]float32, len(keywords)+1)
	for i, keyword := range keywords {
		vector[i] = float32(strings.Count(lower, keyword))
	}
	vector[len(keywords)] = 0.1
	return vector
}

func (m *mockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return embedText(text), nil
}

func (m *mockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	m.docCalls++
	if m.err != nil {
		return nil, m.err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = embedText(text)
	}
	return vectors, nil
}

type recordingIndex struct {
	replaceCalls int
	entries      []chromemdb.Entry
}

func (r *recordingIndex) Replace(ctx context.Context, entries []chromemdb.Entry) error {
	r.replaceCalls++
	r.entries = entries
	return nil
}

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.csv")
	content := `name,description,price
Widget,A small useful widget,9.99
Gadget,A shiny gadget,19.99
Laptop,Fast and light,999.00
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig() *config.Config {
	return &config.Config{
		RAG: config.RAGConfig{ChunkSize: 800, ChunkOverlap: 100, TopK: 3},
	}
}

func newTestStore(t *testing.T) *chromemdb.Store {
	t.Helper()
	store, err := chromemdb.NewStore("", "products", true)
	require.NoError(t, err)
	return store
}

func TestBuildIndex_ThreeRowsThreeChunks(t *testing.T) {
	store := newTestStore(t)
	builder := NewBuilder(&mockEmbedder{}, store, testConfig())

	stats, err := builder.BuildIndex(context.Background(), writeCatalog(t))
	require.NoError(t, err)
	assert.Equal(t, models.IndexStats{ChunkCount: 3}, stats)
	assert.Equal(t, 3, store.Count())
}

func TestBuildIndex_RetrievalFindsProduct(t *testing.T) {
	store := newTestStore(t)
	embedder := &mockEmbedder{}
	builder := NewBuilder(embedder, store, testConfig())

	_, err := builder.BuildIndex(context.Background(), writeCatalog(t))
	require.NoError(t, err)

	queryVector, err := embedder.EmbedQuery(context.Background(), "What is the price of the Widget?")
	require.NoError(t, err)
	results, err := store.Query(context.Background(), queryVector, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Content, "Widget")
	assert.Equal(t, "products.csv", results[0].Metadata["source"])
}

func TestBuildIndex_LongRowsSplitIntoMultipleChunks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	long := strings.Repeat("A very detailed description of the Widget. ", 10)
	content := "name,description\nWidget," + long + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	index := &recordingIndex{}
	cfg := &config.Config{RAG: config.RAGConfig{ChunkSize: 100, ChunkOverlap: 20, TopK: 3}}
	builder := NewBuilder(&mockEmbedder{}, index, cfg)

	stats, err := builder.BuildIndex(context.Background(), path)
	require.NoError(t, err)
	assert.Greater(t, stats.ChunkCount, 1)
	assert.Len(t, index.entries, stats.ChunkCount)
	assert.Equal(t, "1", index.entries[0].Metadata["row"])
	assert.Equal(t, "1", index.entries[0].Metadata["chunk"])
	assert.Equal(t, "2", index.entries[1].Metadata["chunk"])
}

func TestBuildIndex_SourceNotFound(t *testing.T) {
	embedder := &mockEmbedder{}
	index := &recordingIndex{}
	builder := NewBuilder(embedder, index, testConfig())

	_, err := builder.BuildIndex(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, catalog.ErrSourceNotFound)
	assert.Zero(t, embedder.docCalls)
	assert.Zero(t, index.replaceCalls)
}

func TestBuildIndex_SourceFormatError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,price\nWidget,9.99,extra\n"), 0o644))

	builder := NewBuilder(&mockEmbedder{}, &recordingIndex{}, testConfig())
	_, err := builder.BuildIndex(context.Background(), path)

	var formatErr *catalog.SourceFormatError
	assert.ErrorAs(t, err, &formatErr)
}

func TestBuildIndex_EmbeddingFailureAborts(t *testing.T) {
	index := &recordingIndex{}
	svcErr := &embedding.ServiceError{Err: errors.New("quota exhausted")}
	builder := NewBuilder(&mockEmbedder{err: svcErr}, index, testConfig())

	_, err := builder.BuildIndex(context.Background(), writeCatalog(t))
	var embErr *embedding.ServiceError
	require.ErrorAs(t, err, &embErr)
	assert.Zero(t, index.replaceCalls, "no partial index may be written")
}

func TestBuildIndex_Idempotent(t *testing.T) {
	store := newTestStore(t)
	embedder := &mockEmbedder{}
	builder := NewBuilder(embedder, store, testConfig())
	ctx := context.Background()
	source := writeCatalog(t)

	queryVector, err := embedder.EmbedQuery(ctx, "Tell me about the Gadget")
	require.NoError(t, err)

	rankedContents := func() []string {
		results, err := store.Query(ctx, queryVector, 3)
		require.NoError(t, err)
		contents := make([]string, len(results))
		for i, res := range results {
			contents[i] = res.Content
		}
		return contents
	}

	stats, err := builder.BuildIndex(ctx, source)
	require.NoError(t, err)
	first := rankedContents()

	rebuilt, err := builder.BuildIndex(ctx, source)
	require.NoError(t, err)
	assert.Equal(t, stats, rebuilt)
	assert.Equal(t, 3, store.Count(), "rebuild replaces, never accumulates")
	assert.Equal(t, first, rankedContents())
}
