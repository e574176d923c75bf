package embeddings

import (
	"context"
	"math"
	"testing"
)

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

func TestHashingEmbedder_Deterministic(t *testing.T) {
	e := NewHashingEmbedder(0)
	if e.Dimensions() != DefaultDimensions {
		t.Fatalf("Dimensions: got %d, want %d", e.Dimensions(), DefaultDimensions)
	}

	vecs, err := e.Embed(context.Background(), []string{"Agumon Rookie Fire", "Agumon Rookie Fire"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vecs))
	}
	for i := range vecs[0] {
		if vecs[0][i] != vecs[1][i] {
			t.Fatalf("vectors differ at %d", i)
		}
	}
}

func TestHashingEmbedder_Normalized(t *testing.T) {
	e := NewHashingEmbedder(64)
	vecs, err := e.Embed(context.Background(), []string{"Greymon Champion Vaccine Fire"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if n := math.Sqrt(cosine(vecs[0], vecs[0])); math.Abs(n-1) > 1e-5 {
		t.Errorf("norm: got %f, want 1", n)
	}
}

func TestHashingEmbedder_SimilarTextsCloser(t *testing.T) {
	e := NewHashingEmbedder(0)
	vecs, err := e.Embed(context.Background(), []string{
		"Greymon Champion Vaccine Fire",
		"MetalGreymon Ultimate Vaccine Fire",
		"Gabumon Rookie Data Ice",
	})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	near := cosine(vecs[0], vecs[1])
	far := cosine(vecs[0], vecs[2])
	if near <= far {
		t.Errorf("expected Greymon closer to MetalGreymon (%f) than to Gabumon (%f)", near, far)
	}
}

func TestHashingEmbedder_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewHashingEmbedder(0).Embed(ctx, []string{"x"}); err == nil {
		t.Error("expected error from canceled context")
	}
}

func TestToChromemFunc(t *testing.T) {
	fn := ToChromemFunc(NewHashingEmbedder(32))
	vec, err := fn(context.Background(), "Koromon")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vec) != 32 {
		t.Errorf("len: got %d, want 32", len(vec))
	}
}
