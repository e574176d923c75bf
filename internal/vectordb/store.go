package vectordb

import "context"

// VectorStore holds digimon documents and answers similarity queries.
type VectorStore interface {
	AddDocuments(ctx context.Context, docs []Document) error
	// Search embeds query and returns the closest documents that pass
	// filter. A nil filter matches everything.
	Search(ctx context.Context, query string, limit int, filter *SearchFilter) ([]SearchResult, error)
	Get(ctx context.Context, id string) (Document, error)
	// Related returns the neighbours of document id, never id itself.
	Related(ctx context.Context, id string, limit int) ([]SearchResult, error)
	Persist(ctx context.Context, dir string) error
	Load(ctx context.Context, dir string) error
	Count() int
}
