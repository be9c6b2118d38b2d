// Package sandbox runs model-generated scripts inside a restricted
// Starlark interpreter. The environment grants exactly two names
// beyond the Starlark universe: the document text (`input`) and the
// `json` module. There is no filesystem, network, process, or import
// capability to misuse; referencing one fails before execution starts.
// The wall-clock budget is enforced by the host via thread
// cancellation, never by the script itself.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	starlarkjson "go.starlark.net/lib/json"
	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"elements/internal/domain"
)

const scriptName = "element.star"

func init() {
	// Loops and reassignment are part of the accepted script dialect;
	// runaway execution is bounded by the step and wall-clock limits.
	resolve.AllowSet = true
	resolve.AllowRecursion = true
	resolve.AllowGlobalReassign = true
}

// Check parses the source without executing it. A parse failure is a
// validation error for the generation loop to repair.
func Check(src string) error {
	if _, err := syntax.Parse(scriptName, src, 0); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// Result is the outcome of one sandboxed execution.
type Result struct {
	// Value is the JSON encoding of the script's `result` global.
	Value string
	// Stdout collects everything the script printed.
	Stdout string
}

// Runner executes scripts with fixed resource limits.
type Runner struct {
	timeout  time.Duration
	maxSteps uint64
}

// NewRunner creates a runner with the given wall-clock timeout and
// execution-step ceiling. Zero values select 10s and 50M steps.
func NewRunner(timeout time.Duration, maxSteps uint64) *Runner {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxSteps == 0 {
		maxSteps = 50_000_000
	}
	return &Runner{timeout: timeout, maxSteps: maxSteps}
}

// Execute runs the script against the provided document text. The
// script sees the text as the predeclared string `input` and must
// assign a global `result`; the runner returns it JSON-encoded.
// Caller cancellation and the timeout both forcibly stop the script.
func (r *Runner) Execute(ctx context.Context, code, input string) (Result, error) {
	execCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var printed strings.Builder
	thread := &starlark.Thread{
		Name: scriptName,
		Print: func(_ *starlark.Thread, msg string) {
			printed.WriteString(msg)
			printed.WriteByte('\n')
		},
	}
	thread.SetMaxExecutionSteps(r.maxSteps)

	done := make(chan struct{})
	go func() {
		select {
		case <-execCtx.Done():
			thread.Cancel(execCtx.Err().Error())
		case <-done:
		}
	}()

	predeclared := starlark.StringDict{
		"input": starlark.String(input),
		"json":  starlarkjson.Module,
	}
	globals, err := starlark.ExecFile(thread, scriptName, code, predeclared)
	close(done)
	if err != nil {
		return Result{Stdout: printed.String()}, r.classify(execCtx, err)
	}

	value, ok := globals["result"]
	if !ok {
		return Result{Stdout: printed.String()},
			fmt.Errorf("%w: script did not assign a result value", domain.ErrValidation)
	}
	encoded, err := encodeJSON(value)
	if err != nil {
		return Result{Stdout: printed.String()},
			fmt.Errorf("%w: result is not JSON-serializable: %v", domain.ErrValidation, err)
	}
	return Result{Value: encoded, Stdout: printed.String()}, nil
}

// classify maps interpreter failures onto the engine taxonomy.
func (r *Runner) classify(execCtx context.Context, err error) error {
	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: script exceeded %s", domain.ErrSandboxTimeout, r.timeout)
	}
	if execCtx.Err() != nil {
		// Caller-initiated cancellation, not a script fault.
		return execCtx.Err()
	}
	msg := err.Error()
	var resolveErrs resolve.ErrorList
	if errors.As(err, &resolveErrs) || strings.Contains(msg, "undefined:") {
		return fmt.Errorf("%w: %v", domain.ErrSandboxViolation, err)
	}
	if strings.Contains(msg, "too many steps") {
		return fmt.Errorf("%w: execution step limit exceeded", domain.ErrSandboxViolation)
	}
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		return fmt.Errorf("script error: %s", evalErr.Backtrace())
	}
	return fmt.Errorf("script error: %v", err)
}

// encodeJSON serializes a Starlark value with the interpreter's own
// json.encode, on a fresh unbounded thread.
func encodeJSON(v starlark.Value) (string, error) {
	encode := starlarkjson.Module.Members["encode"]
	out, err := starlark.Call(&starlark.Thread{Name: "encode"}, encode, starlark.Tuple{v}, nil)
	if err != nil {
		return "", err
	}
	s, ok := starlark.AsString(out)
	if !ok {
		return "", fmt.Errorf("unexpected encoder output %s", out.Type())
	}
	return s, nil
}
