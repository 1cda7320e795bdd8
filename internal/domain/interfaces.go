package domain

import "context"

// Document is a single corpus file and the text extracted from it.
type Document struct {
	Path  string
	Pages int
	Text  string
}

// Chunk is a bounded segment of the concatenated corpus text used for indexing.
type Chunk struct {
	Text  string
	Index int
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(ctx context.Context, corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Chunker splits normalized corpus text into ordered chunks.
type Chunker interface {
	Chunk(text string) []Chunk
}

// VectorStore persists vectors and supports similarity search.
type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, chunks []Chunk, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, topK int) ([]SearchResult, error)
	Clear(ctx context.Context) error
}
