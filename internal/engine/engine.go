// Package engine dispatches analysis calls to the pipeline matching
// the element's method and folds the outcome into a uniform result.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"elements/internal/domain"
	"elements/internal/loader"
	"elements/internal/rag"
	"elements/internal/scriptgen"
)

const insufficientMessage = "no relevant content found in the provided documents"

// Reasoner answers a prompt from retrieved document context.
type Reasoner interface {
	Run(ctx context.Context, prompt, document string) (rag.Result, error)
}

// Extractor derives a structured result by generating and executing a
// script against the document.
type Extractor interface {
	Run(ctx context.Context, prompt, document string) (scriptgen.Outcome, error)
}

// Engine implements domain.Analyzer over the two method pipelines.
type Engine struct {
	reasoner  Reasoner
	extractor Extractor
	log       *slog.Logger
}

func New(reasoner Reasoner, extractor Extractor, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{reasoner: reasoner, extractor: extractor, log: log}
}

// Analyze runs one element against the uploaded files. It always
// returns a populated result; failures are reported through the
// Success flag and diagnostics, never as a panic.
func (e *Engine) Analyze(ctx context.Context, element domain.Element, files []domain.RawFile, supplementary string) (result domain.AnalysisResult) {
	start := time.Now()
	result = domain.AnalysisResult{
		MethodUsed: element.Method,
		Diagnostics: domain.Diagnostics{
			AnalysisID: uuid.NewString(),
		},
	}
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("analysis panicked", "analysis_id", result.Diagnostics.AnalysisID, "panic", r)
			result.Success = false
			result.Output = "internal error"
			result.Diagnostics.Errors = append(result.Diagnostics.Errors, fmt.Sprintf("panic: %v", r))
		}
		result.Diagnostics.TimingMs = time.Since(start).Milliseconds()
	}()

	switch element.Method {
	case domain.MethodReasoning, domain.MethodExtraction:
	default:
		result.Output = fmt.Sprintf("%v: %q", domain.ErrUnsupportedMethod, element.Method)
		result.Diagnostics.Errors = append(result.Diagnostics.Errors, result.Output)
		return result
	}

	document, err := loader.Combine(files, supplementary)
	if err != nil {
		result.Output = err.Error()
		result.Diagnostics.Errors = append(result.Diagnostics.Errors, err.Error())
		return result
	}

	e.log.Info("analysis started",
		"analysis_id", result.Diagnostics.AnalysisID,
		"element", element.Name,
		"method", element.Method,
		"files", len(files))

	switch element.Method {
	case domain.MethodReasoning:
		e.reason(ctx, element, document, &result)
	case domain.MethodExtraction:
		e.extract(ctx, element, document, &result)
	}

	e.log.Info("analysis finished",
		"analysis_id", result.Diagnostics.AnalysisID,
		"success", result.Success,
		"attempts", result.Diagnostics.Attempts)
	return result
}

func (e *Engine) reason(ctx context.Context, element domain.Element, document string, result *domain.AnalysisResult) {
	res, err := e.reasoner.Run(ctx, element.Prompt, document)
	result.Diagnostics.Attempts = 1
	result.Diagnostics.Retrieved = res.Retrieved
	switch {
	case errors.Is(err, domain.ErrInsufficientContent):
		// The pipeline ran to completion; there was simply nothing
		// relevant to answer from.
		result.Success = true
		result.Output = insufficientMessage
	case err != nil:
		result.Output = err.Error()
		result.Diagnostics.Errors = append(result.Diagnostics.Errors, err.Error())
	default:
		result.Success = true
		result.Output = res.Answer
	}
}

func (e *Engine) extract(ctx context.Context, element domain.Element, document string, result *domain.AnalysisResult) {
	out, err := e.extractor.Run(ctx, element.Prompt, document)
	result.Diagnostics.Attempts = out.Attempts
	result.Diagnostics.Errors = append(result.Diagnostics.Errors, out.Errors...)
	if err != nil {
		result.Diagnostics.Errors = append(result.Diagnostics.Errors, err.Error())
		result.Output = err.Error()
		return
	}
	if !out.Success {
		result.Output = "script generation failed after all attempts"
		return
	}
	result.Success = true
	result.Output = string(out.Value)
	result.Structured = out.Value
	result.Diagnostics.ScriptStdout = out.Stdout
}
