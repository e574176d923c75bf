package embeddings

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// DefaultDimensions is the vector size of the hashing embedder.
const DefaultDimensions = 256

// HashingEmbedder is a local, deterministic embedder. Word tokens and
// character trigrams are hashed into a fixed number of buckets with a sign
// bit, and the vector is L2-normalized. Texts sharing words or spelling
// fragments land close together.
type HashingEmbedder struct {
	dims int
}

// NewHashingEmbedder returns an embedder with dims buckets; zero means
// DefaultDimensions.
func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &HashingEmbedder{dims: dims}
}

func (e *HashingEmbedder) Name() string { return "hashing" }

func (e *HashingEmbedder) Dimensions() int { return e.dims }

func (e *HashingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	results := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, e.vector(text))
	}
	return results, nil
}

func (e *HashingEmbedder) vector(text string) []float32 {
	vec := make([]float32, e.dims)
	for _, word := range tokenize(text) {
		e.add(vec, "w:"+word, 1)
		padded := []rune(" " + word + " ")
		for i := 0; i+3 <= len(padded); i++ {
			e.add(vec, "t:"+string(padded[i:i+3]), 0.5)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

func (e *HashingEmbedder) add(vec []float32, token string, weight float32) {
	h := xxhash.Sum64String(token)
	idx := int(h % uint64(e.dims))
	if h&(1<<63) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}

// tokenize lowercases text and splits it on anything that is not a letter
// or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
