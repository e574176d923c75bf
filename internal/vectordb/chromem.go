package vectordb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"github.com/digiguide/digiguide/internal/embeddings"
)

const (
	collectionName = "digimon"
	// PersistFile is the export file name inside the persist directory.
	PersistFile = "related.gob.gz"
)

// ErrNotFound is returned for an unknown document ID.
var ErrNotFound = errors.New("document not found")

var _ VectorStore = (*ChromemStore)(nil)

// ChromemStore implements VectorStore using chromem-go.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   embeddings.Embedder
	embedFunc  chromem.EmbeddingFunc
}

// NewChromemStore creates a new in-memory ChromemStore.
func NewChromemStore(embedder embeddings.Embedder) (*ChromemStore, error) {
	db := chromem.NewDB()
	ef := embeddings.ToChromemFunc(embedder)

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemStore{
		db:         db,
		collection: col,
		embedder:   embedder,
		embedFunc:  ef,
	}, nil
}

func (s *ChromemStore) AddDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	chromDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		chromDocs[i] = chromem.Document{
			ID:       doc.ID,
			Content:  doc.Content,
			Metadata: metadataToMap(doc.Metadata),
		}
	}

	return s.collection.AddDocuments(ctx, chromDocs, 1)
}

func (s *ChromemStore) Search(ctx context.Context, query string, limit int, filter *SearchFilter) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	// chromem-go requires nResults <= collection size.
	if count := s.collection.Count(); limit > count && count > 0 {
		limit = count
	} else if count == 0 {
		return nil, nil
	}

	where := buildWhereClause(filter)

	results, err := s.collection.Query(ctx, query, limit, where, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	searchResults := make([]SearchResult, len(results))
	for i, r := range results {
		searchResults[i] = SearchResult{
			Document: Document{
				ID:       r.ID,
				Content:  r.Content,
				Metadata: mapToMetadata(r.Metadata),
			},
			Similarity: r.Similarity,
		}
	}

	return searchResults, nil
}

func (s *ChromemStore) Get(ctx context.Context, id string) (Document, error) {
	doc, err := s.collection.GetByID(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return Document{
		ID:       doc.ID,
		Content:  doc.Content,
		Metadata: mapToMetadata(doc.Metadata),
	}, nil
}

func (s *ChromemStore) Related(ctx context.Context, id string, limit int) ([]SearchResult, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	// Ask for one extra to make room for the document itself.
	results, err := s.Search(ctx, doc.Content, limit+1, nil)
	if err != nil {
		return nil, err
	}
	related := make([]SearchResult, 0, limit)
	for _, r := range results {
		if r.Document.ID == id {
			continue
		}
		related = append(related, r)
		if len(related) == limit {
			break
		}
	}
	return related, nil
}

func (s *ChromemStore) Persist(ctx context.Context, dir string) error {
	return s.db.ExportToFile(filepath.Join(dir, PersistFile), true, "")
}

func (s *ChromemStore) Load(ctx context.Context, dir string) error {
	err := s.db.ImportFromFile(filepath.Join(dir, PersistFile), "")
	if err != nil {
		return fmt.Errorf("import from file: %w", err)
	}

	// Re-acquire collection reference after import.
	col := s.db.GetCollection(collectionName, s.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	s.collection = col
	return nil
}

func (s *ChromemStore) Count() int {
	return s.collection.Count()
}

// metadataToMap converts DocumentMetadata to a flat map[string]string for chromem.
func metadataToMap(m DocumentMetadata) map[string]string {
	return map[string]string{
		"kind":      string(m.Kind),
		"record_id": strconv.Itoa(m.RecordID),
		"slug":      m.Slug,
		"stage":     m.Stage,
		"attribute": m.Attribute,
	}
}

// mapToMetadata converts a flat map[string]string back to DocumentMetadata.
func mapToMetadata(m map[string]string) DocumentMetadata {
	id, _ := strconv.Atoi(m["record_id"])
	return DocumentMetadata{
		Kind:      DocumentKind(m["kind"]),
		RecordID:  id,
		Slug:      m["slug"],
		Stage:     m["stage"],
		Attribute: m["attribute"],
	}
}

// buildWhereClause converts a SearchFilter to a chromem where clause.
func buildWhereClause(filter *SearchFilter) map[string]string {
	if filter == nil {
		return nil
	}

	where := make(map[string]string)
	if filter.Kind != nil {
		where["kind"] = string(*filter.Kind)
	}
	if filter.Stage != nil {
		where["stage"] = *filter.Stage
	}
	if filter.Attribute != nil {
		where["attribute"] = *filter.Attribute
	}

	if len(where) == 0 {
		return nil
	}
	return where
}
