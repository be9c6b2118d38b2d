package domain

import "context"

// Chunker splits normalized text into ordered, deterministic chunks.
type Chunker interface {
	Chunk(text string) []Chunk
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(ctx context.Context, corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Completer issues a single chat completion call.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// Analyzer is the sole entry point the surrounding layer calls.
type Analyzer interface {
	Analyze(ctx context.Context, element Element, files []RawFile, supplementary string) AnalysisResult
}
