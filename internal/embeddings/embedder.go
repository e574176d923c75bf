// Package embeddings turns digimon profiles into vectors for the related
// entries index.
package embeddings

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"
)

// Embedder maps texts to fixed-size vectors. Implementations must be
// deterministic so a persisted index stays valid across restarts.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Name() string
}

// ToChromemFunc adapts e to chromem's one-text-at-a-time signature.
func ToChromemFunc(e Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		vecs, err := e.Embed(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		if len(vecs) != 1 || len(vecs[0]) != e.Dimensions() {
			return nil, fmt.Errorf("%s embedder returned %d vector(s) for one text", e.Name(), len(vecs))
		}
		return vecs[0], nil
	}
}
