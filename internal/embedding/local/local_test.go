package local

import (
	"context"
	"testing"

	"elements/internal/vectorindex"
)

func TestPrepareEmptyCorpus(t *testing.T) {
	e := NewEmbedder()
	if err := e.Prepare(context.Background(), nil); err == nil {
		t.Error("expected error for empty corpus")
	}
}

func TestEmbedBeforePrepare(t *testing.T) {
	e := NewEmbedder()
	if _, err := e.Embed(context.Background(), "text"); err == nil {
		t.Error("expected error before prepare")
	}
}

func TestEmbedDeterministic(t *testing.T) {
	corpus := []string{
		"complaints about packaging quality",
		"shipping delays reported last quarter",
	}
	e1 := NewEmbedder()
	e2 := NewEmbedder()
	ctx := context.Background()
	if err := e1.Prepare(ctx, corpus); err != nil {
		t.Fatal(err)
	}
	if err := e2.Prepare(ctx, corpus); err != nil {
		t.Fatal(err)
	}
	v1, err := e1.Embed(ctx, corpus[0])
	if err != nil {
		t.Fatal(err)
	}
	v2, err := e2.Embed(ctx, corpus[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(v1) != len(v2) || len(v1) != e1.Dimension() {
		t.Fatalf("dimension mismatch: %d vs %d vs %d", len(v1), len(v2), e1.Dimension())
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatalf("vectors differ at %d", i)
		}
	}
}

func TestEmbedSimilarityReflectsContent(t *testing.T) {
	corpus := []string{
		"complaints about packaging quality defects",
		"quarterly revenue grew across regions",
	}
	e := NewEmbedder()
	ctx := context.Background()
	if err := e.Prepare(ctx, corpus); err != nil {
		t.Fatal(err)
	}
	query, err := e.Embed(ctx, "packaging defects complaints")
	if err != nil {
		t.Fatal(err)
	}
	first, _ := e.Embed(ctx, corpus[0])
	second, _ := e.Embed(ctx, corpus[1])
	if vectorindex.Cosine(query, first) <= vectorindex.Cosine(query, second) {
		t.Error("query should be closer to the packaging chunk")
	}
}

func TestEmbedUnknownTokensYieldZeroVector(t *testing.T) {
	e := NewEmbedder()
	ctx := context.Background()
	if err := e.Prepare(ctx, []string{"alpha beta gamma"}); err != nil {
		t.Fatal(err)
	}
	vec, err := e.Embed(ctx, "zzz qqq")
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range vec {
		if v != 0 {
			t.Fatal("expected zero vector for out-of-vocabulary text")
		}
	}
}
