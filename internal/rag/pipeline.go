// Package rag implements the reasoning pipeline: chunk the document,
// embed chunks and prompt, retrieve by cosine similarity, and
// condition one completion call on the assembled context.
package rag

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"elements/internal/domain"
	"elements/internal/vectorindex"
)

const systemPrompt = "You are an expert analyst. Provide detailed, accurate analysis based only on the provided context."

const answerTemplate = `Based on the provided context, answer the user's question thoroughly and accurately.

Context:
%s

Question: %s

Instructions:
- Base the answer only on the information in the context
- Include specific numbers and counts when available
- Be precise and factual`

// Config carries the retrieval tunables. Zero values select the
// documented defaults.
type Config struct {
	SimilarityFloor float64
	TopK            int
	ContextChars    int
	Concurrency     int
}

// Result is the pipeline output alongside retrieval diagnostics.
type Result struct {
	Answer    string
	Retrieved int
}

// Pipeline wires chunker, embedder and completer for one method. It
// holds no per-call state; every Run builds its vectors fresh and
// discards them.
type Pipeline struct {
	chunker   domain.Chunker
	embedder  func() domain.Embedder
	completer domain.Completer
	cfg       Config
	log       *slog.Logger
}

// NewPipeline creates a reasoning pipeline. The embedder is supplied
// as a factory because local embedders carry per-call vocabulary state.
func NewPipeline(chunker domain.Chunker, embedder func() domain.Embedder, completer domain.Completer, cfg Config, log *slog.Logger) *Pipeline {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.SimilarityFloor == 0 {
		cfg.SimilarityFloor = 0.7
	}
	if cfg.ContextChars <= 0 {
		cfg.ContextChars = 3000
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{chunker: chunker, embedder: embedder, completer: completer, cfg: cfg, log: log}
}

// Run performs one retrieval-augmented completion. It returns
// domain.ErrInsufficientContent when the document yields no chunks or
// no chunk clears the similarity floor; provider failures surface
// unretried with their cause attached.
func (p *Pipeline) Run(ctx context.Context, prompt, document string) (Result, error) {
	chunks := p.chunker.Chunk(document)
	if len(chunks) == 0 {
		return Result{}, domain.ErrInsufficientContent
	}
	p.log.Debug("document chunked", "chunks", len(chunks))

	embedder := p.embedder()
	corpus := make([]string, len(chunks))
	for i, ch := range chunks {
		corpus[i] = ch.Text
	}
	if err := embedder.Prepare(ctx, corpus); err != nil {
		return Result{}, fmt.Errorf("prepare embedder: %w", err)
	}

	chunkVecs, queryVec, err := p.embedAll(ctx, embedder, corpus, prompt)
	if err != nil {
		return Result{}, err
	}

	index := vectorindex.New()
	for i, vec := range chunkVecs {
		if err := index.Add(chunks[i].Index, vec); err != nil {
			return Result{}, fmt.Errorf("index chunk %d: %w", i, err)
		}
	}
	matches := index.Rank(queryVec, p.cfg.SimilarityFloor, p.cfg.TopK)
	if len(matches) == 0 {
		return Result{}, domain.ErrInsufficientContent
	}
	p.log.Debug("chunks retrieved", "matches", len(matches), "top_score", matches[0].Score)

	contextText := p.assembleContext(chunks, matches)
	answer, err := p.completer.Complete(ctx, systemPrompt, fmt.Sprintf(answerTemplate, contextText, prompt))
	if err != nil {
		return Result{}, err
	}
	return Result{Answer: answer, Retrieved: len(matches)}, nil
}

// embedAll embeds every chunk and the prompt. Chunk embeddings run
// concurrently up to the fan-out limit with the prompt embedding
// alongside them; everything joins before retrieval.
func (p *Pipeline) embedAll(ctx context.Context, embedder domain.Embedder, corpus []string, prompt string) ([][]float64, []float64, error) {
	vectors := make([][]float64, len(corpus))
	errCh := make(chan error, len(corpus)+1)
	sem := make(chan struct{}, p.cfg.Concurrency)

	var queryVec []float64
	go func() {
		vec, err := embedder.Embed(ctx, prompt)
		if err != nil {
			errCh <- fmt.Errorf("embed prompt: %w", err)
			return
		}
		queryVec = vec
		errCh <- nil
	}()
	for i := range corpus {
		sem <- struct{}{}
		go func(idx int) {
			defer func() { <-sem }()
			vec, err := embedder.Embed(ctx, corpus[idx])
			if err != nil {
				errCh <- fmt.Errorf("embed chunk %d: %w", idx, err)
				return
			}
			vectors[idx] = vec
			errCh <- nil
		}(i)
	}

	var firstErr error
	for i := 0; i < len(corpus)+1; i++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, nil, firstErr
	}
	return vectors, queryVec, nil
}

// assembleContext joins the matched chunks' text in similarity order
// and trims the assembly to the context budget, cutting from the
// lowest-ranked end first.
func (p *Pipeline) assembleContext(chunks []domain.Chunk, matches []vectorindex.Match) string {
	byIndex := make(map[int]string, len(chunks))
	for _, ch := range chunks {
		byIndex[ch.Index] = ch.Text
	}
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, byIndex[m.ChunkIndex])
	}
	assembled := strings.Join(parts, "\n\n")
	runes := []rune(assembled)
	if len(runes) > p.cfg.ContextChars {
		assembled = string(runes[:p.cfg.ContextChars])
	}
	return assembled
}
