// Package scriptgen implements the autonomous extraction pipeline:
// generate script, validate, execute in the sandbox, validate the
// output, and feed failures back into regeneration, up to a hard
// attempt cap.
package scriptgen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"elements/internal/domain"
	"elements/internal/sandbox"
)

// Outcome is the result of one bounded generation loop.
type Outcome struct {
	Success  bool
	Value    json.RawMessage
	Stdout   string
	Attempts int
	Errors   []string
}

// Pipeline runs the generate–validate–execute loop.
type Pipeline struct {
	gen         Generator
	runner      *sandbox.Runner
	maxAttempts int
	log         *slog.Logger
}

func NewPipeline(gen Generator, runner *sandbox.Runner, maxAttempts int, log *slog.Logger) *Pipeline {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{gen: gen, runner: runner, maxAttempts: maxAttempts, log: log}
}

// Run executes the loop until a validated result or exhaustion. It
// always terminates within maxAttempts generation attempts; exhaustion
// is a reportable outcome, not an error. Only caller cancellation
// returns early.
func (p *Pipeline) Run(ctx context.Context, prompt, document string) (Outcome, error) {
	out := Outcome{}
	prevCode, prevErr := "", ""
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		out.Attempts = attempt
		if err := ctx.Err(); err != nil {
			return out, err
		}

		code, err := p.gen.Generate(ctx, Request{
			Prompt:    prompt,
			Document:  document,
			Attempt:   attempt,
			PrevCode:  prevCode,
			PrevError: prevErr,
		})
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			p.log.Warn("script generation failed", "attempt", attempt, "err", err)
			out.Errors = append(out.Errors, fmt.Sprintf("attempt %d: generation: %v", attempt, err))
			prevCode, prevErr = "", ""
			continue
		}

		if err := sandbox.Check(code); err != nil {
			p.log.Warn("script failed syntax validation", "attempt", attempt, "err", err)
			out.Errors = append(out.Errors, fmt.Sprintf("attempt %d: syntax: %v", attempt, err))
			prevCode, prevErr = code, err.Error()
			continue
		}

		res, err := p.runner.Execute(ctx, code, document)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			p.log.Warn("script execution failed", "attempt", attempt, "err", err)
			out.Errors = append(out.Errors, fmt.Sprintf("attempt %d: execution: %v", attempt, err))
			prevCode, prevErr = code, err.Error()
			continue
		}

		if !json.Valid([]byte(res.Value)) {
			err := fmt.Errorf("%w: output is not well-formed JSON", domain.ErrValidation)
			p.log.Warn("script output failed validation", "attempt", attempt, "err", err)
			out.Errors = append(out.Errors, fmt.Sprintf("attempt %d: result: %v", attempt, err))
			prevCode, prevErr = code, err.Error()
			continue
		}

		p.log.Debug("script succeeded", "attempt", attempt)
		out.Success = true
		out.Value = json.RawMessage(res.Value)
		out.Stdout = res.Stdout
		return out, nil
	}
	return out, nil
}
