package ai

import (
	"context"
	"strings"
	"sync"
)

// Fake is a scripted Client for tests. Completions are served in
// order; embeddings are deterministic term-presence vectors over the
// configured vocabulary, so cosine similarities are predictable.
type Fake struct {
	mu          sync.Mutex
	Completions []string
	CompleteErr error
	EmbedErr    error
	Vocabulary  []string

	CompleteCalls []string
	EmbedCalls    [][]string
}

// Complete returns the next scripted completion. When the script runs
// out, the last entry repeats.
func (f *Fake) Complete(_ context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CompleteCalls = append(f.CompleteCalls, system+"\n"+user)
	if f.CompleteErr != nil {
		return "", f.CompleteErr
	}
	if len(f.Completions) == 0 {
		return "", nil
	}
	next := f.Completions[0]
	if len(f.Completions) > 1 {
		f.Completions = f.Completions[1:]
	}
	return next, nil
}

// Embed maps each text to a vector with one component per vocabulary
// term: 1 when the term occurs in the text, 0 otherwise.
func (f *Fake) Embed(_ context.Context, texts []string) ([][]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.EmbedCalls = append(f.EmbedCalls, texts)
	if f.EmbedErr != nil {
		return nil, f.EmbedErr
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		lower := strings.ToLower(text)
		vec := make([]float64, len(f.Vocabulary))
		for j, term := range f.Vocabulary {
			if strings.Contains(lower, term) {
				vec[j] = 1
			}
		}
		out[i] = vec
	}
	return out, nil
}
