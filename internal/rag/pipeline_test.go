package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"elements/internal/ai"
	"elements/internal/chunker"
	"elements/internal/domain"
	"elements/internal/embedding/remote"
)

func newTestPipeline(fake *ai.Fake, cfg Config, chunkSize int) *Pipeline {
	return NewPipeline(
		chunker.NewWindowChunker(chunkSize, 0),
		func() domain.Embedder { return remote.New(fake) },
		fake,
		cfg,
		nil,
	)
}

func TestRunEmptyDocument(t *testing.T) {
	p := newTestPipeline(&ai.Fake{}, Config{}, 100)
	_, err := p.Run(context.Background(), "question", "")
	if !errors.Is(err, domain.ErrInsufficientContent) {
		t.Errorf("expected ErrInsufficientContent, got %v", err)
	}
}

func TestRunSelectsOnlyChunkAboveFloor(t *testing.T) {
	// Two chunks, one about complaints, one about weather. The fake
	// embedder produces term-presence vectors, so only the complaints
	// chunk matches the prompt with similarity above the floor.
	doc := strings.Repeat("complaints were substantiated here. ", 3) +
		strings.Repeat("sunny weather with light wind today. ", 3)
	fake := &ai.Fake{
		Vocabulary:  []string{"complaints", "substantiated", "weather", "wind"},
		Completions: []string{"answer about complaints"},
	}
	p := newTestPipeline(fake, Config{SimilarityFloor: 0.7, TopK: 5}, 120)
	res, err := p.Run(context.Background(), "how many complaints were substantiated", doc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Retrieved != 1 {
		t.Errorf("retrieved = %d, want 1", res.Retrieved)
	}
	// The completion prompt must carry the complaints chunk and not
	// the weather chunk.
	var completionPrompt string
	for _, call := range fake.CompleteCalls {
		if strings.Contains(call, "Context:") {
			completionPrompt = call
		}
	}
	if completionPrompt == "" {
		t.Fatal("no completion call with context found")
	}
	if !strings.Contains(completionPrompt, "complaints were substantiated") {
		t.Error("context missing the relevant chunk")
	}
	if strings.Contains(completionPrompt, "sunny weather") {
		t.Error("context includes a chunk below the similarity floor")
	}
	if res.Answer != "answer about complaints" {
		t.Errorf("unexpected answer: %q", res.Answer)
	}
}

func TestRunNoChunkClearsFloor(t *testing.T) {
	fake := &ai.Fake{Vocabulary: []string{"unrelated"}}
	p := newTestPipeline(fake, Config{SimilarityFloor: 0.7}, 100)
	_, err := p.Run(context.Background(), "question with no overlap", "document about something else entirely")
	if !errors.Is(err, domain.ErrInsufficientContent) {
		t.Errorf("expected ErrInsufficientContent, got %v", err)
	}
}

func TestRunSurfacesEmbeddingFailure(t *testing.T) {
	fake := &ai.Fake{
		Vocabulary: []string{"term"},
		EmbedErr:   domain.ErrRateLimited,
	}
	p := newTestPipeline(fake, Config{}, 100)
	_, err := p.Run(context.Background(), "question", "a document with term in it")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Errorf("expected ErrRateLimited to surface, got %v", err)
	}
}

func TestRunSurfacesCompletionFailure(t *testing.T) {
	fake := &ai.Fake{
		Vocabulary:  []string{"term"},
		CompleteErr: domain.ErrProvider,
	}
	p := newTestPipeline(fake, Config{SimilarityFloor: 0.1}, 100)
	_, err := p.Run(context.Background(), "question about term", "a document with term in it")
	if !errors.Is(err, domain.ErrProvider) {
		t.Errorf("expected ErrProvider to surface, got %v", err)
	}
}

func TestRunContextBudgetTruncation(t *testing.T) {
	doc := strings.Repeat("term alpha beta gamma delta. ", 40)
	fake := &ai.Fake{
		Vocabulary:  []string{"term"},
		Completions: []string{"ok"},
	}
	p := newTestPipeline(fake, Config{SimilarityFloor: 0.1, TopK: 10, ContextChars: 50}, 100)
	if _, err := p.Run(context.Background(), "question about term", doc); err != nil {
		t.Fatal(err)
	}
	var completionPrompt string
	for _, call := range fake.CompleteCalls {
		if strings.Contains(call, "Context:") {
			completionPrompt = call
		}
	}
	// The context section between the banner and the question must be
	// within budget plus formatting.
	start := strings.Index(completionPrompt, "Context:\n")
	end := strings.Index(completionPrompt, "\n\nQuestion:")
	if start < 0 || end < 0 {
		t.Fatalf("unexpected completion prompt: %q", completionPrompt)
	}
	contextPart := completionPrompt[start+len("Context:\n") : end]
	if n := len([]rune(contextPart)); n > 50 {
		t.Errorf("context exceeds budget: %d runes", n)
	}
}

func TestRunDeterministicRetrieval(t *testing.T) {
	doc := strings.Repeat("complaints recorded in the register. ", 6)
	fake := &ai.Fake{
		Vocabulary:  []string{"complaints", "register"},
		Completions: []string{"ok"},
	}
	p := newTestPipeline(fake, Config{SimilarityFloor: 0.5, TopK: 3}, 80)
	first, err := p.Run(context.Background(), "complaints register", doc)
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Run(context.Background(), "complaints register", doc)
	if err != nil {
		t.Fatal(err)
	}
	if first.Retrieved != second.Retrieved {
		t.Errorf("retrieval not deterministic: %d vs %d", first.Retrieved, second.Retrieved)
	}
}
