package vectordb

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/digiguide/digiguide/internal/data"
	"github.com/digiguide/digiguide/internal/embeddings"
)

// DigimonDocuments builds one document per digimon from its names, stage,
// attribute, type, personality and skill elements.
func DigimonDocuments(c *data.Catalog) []Document {
	docs := make([]Document, 0, len(c.Digimon))
	for i := range c.Digimon {
		d := &c.Digimon[i]

		parts := []string{}
		for _, loc := range sortedKeys(d.Names) {
			parts = append(parts, d.Names[loc])
		}
		parts = append(parts, string(d.Stage), string(d.Attribute), d.Type, d.Personality)
		elements := map[string]bool{}
		for _, id := range d.Skills {
			if s, err := c.SkillByID(id); err == nil && s.Element != "" && !elements[s.Element] {
				elements[s.Element] = true
				parts = append(parts, s.Element)
			}
		}

		docs = append(docs, Document{
			ID:      strconv.Itoa(d.ID),
			Content: strings.Join(nonEmpty(parts), " "),
			Metadata: DocumentMetadata{
				Kind:      KindDigimon,
				RecordID:  d.ID,
				Slug:      d.Slug,
				Stage:     string(d.Stage),
				Attribute: string(d.Attribute),
			},
		})
	}
	return docs
}

func sortedKeys(m data.Names) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func nonEmpty(parts []string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Index keeps a vector store in step with the catalog. When dir is set the
// store is exported there after each build and reused on startup if it
// still matches the catalog.
type Index struct {
	src      *data.Source
	embedder embeddings.Embedder
	dir      string
	log      *zap.Logger

	mu      sync.Mutex
	catalog *data.Catalog
	store   *ChromemStore
}

// NewIndex returns an index over src. dir may be empty to skip persistence.
func NewIndex(src *data.Source, embedder embeddings.Embedder, dir string, log *zap.Logger) *Index {
	return &Index{src: src, embedder: embedder, dir: dir, log: log}
}

// Store returns the vector store for the current catalog.
func (ix *Index) Store(ctx context.Context) (*ChromemStore, error) {
	c, err := ix.src.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.store != nil && ix.catalog == c {
		return ix.store, nil
	}

	docs := DigimonDocuments(c)
	first := ix.store == nil
	if first && ix.dir != "" {
		if store, ok := ix.tryLoad(ctx, docs); ok {
			ix.log.Debug("related index loaded", zap.String("dir", ix.dir), zap.Int("documents", store.Count()))
			ix.store, ix.catalog = store, c
			return store, nil
		}
	}

	store, err := NewChromemStore(ix.embedder)
	if err != nil {
		return nil, err
	}
	if err := store.AddDocuments(ctx, docs); err != nil {
		return nil, fmt.Errorf("index digimon: %w", err)
	}
	if ix.dir != "" {
		if err := os.MkdirAll(ix.dir, 0o755); err == nil {
			err = store.Persist(ctx, ix.dir)
		}
		if err != nil {
			ix.log.Warn("persist related index", zap.String("dir", ix.dir), zap.Error(err))
		}
	}
	ix.store, ix.catalog = store, c
	return store, nil
}

// tryLoad imports the exported store and accepts it only if it holds
// exactly docs.
func (ix *Index) tryLoad(ctx context.Context, docs []Document) (*ChromemStore, bool) {
	store, err := NewChromemStore(ix.embedder)
	if err != nil {
		return nil, false
	}
	if err := store.Load(ctx, ix.dir); err != nil {
		return nil, false
	}
	if store.Count() != len(docs) {
		return nil, false
	}
	for _, want := range docs {
		got, err := store.Get(ctx, want.ID)
		if err != nil || got.Content != want.Content {
			return nil, false
		}
	}
	return store, true
}
