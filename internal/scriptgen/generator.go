package scriptgen

import (
	"context"
	"fmt"
	"strings"

	"elements/internal/domain"
)

// Request carries everything a generator needs for one attempt. For
// attempts after the first, PrevCode and PrevError describe the failed
// attempt so the generator can repair it.
type Request struct {
	Prompt    string
	Document  string
	Attempt   int
	PrevCode  string
	PrevError string
}

// Generator produces script source for a request. Tests substitute
// deterministic stubs; production uses the prompted generator below.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

const systemPrompt = `You are a script generator for a document analysis sandbox.
Write a complete Starlark script (a Python subset: no while-else, no classes,
no imports, no file or network access) that:
1. Reads the document text from the predeclared string variable 'input'
2. Answers the user's query by computing over that text
3. Assigns the final answer to a global variable named 'result'
4. Uses only values that serialize to JSON (dicts, lists, strings, ints, floats, bools)

A 'json' module with json.encode and json.decode is available.

IMPORTANT FORMATTING RULES:
- Return ONLY pure script code
- Do NOT include markdown formatting like code fences
- Do NOT include any explanations outside the code
- The response must start directly with code

Start your response immediately with code, nothing else.`

// previewLimit bounds how much document text is shown to the model;
// the script itself always receives the full text via 'input'.
const previewLimit = 2000

// PromptedGenerator asks the completion capability to write the script.
type PromptedGenerator struct {
	completer domain.Completer
}

func NewPromptedGenerator(completer domain.Completer) *PromptedGenerator {
	return &PromptedGenerator{completer: completer}
}

func (g *PromptedGenerator) Generate(ctx context.Context, req Request) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Document preview:\n%s\n\nQuery: %s\n\n", preview(req.Document), req.Prompt)
	if req.Attempt > 1 && req.PrevCode != "" {
		fmt.Fprintf(&b, "The previous script failed with this error:\n%s\n\nPrevious script:\n%s\n\nGenerate a corrected version.\n",
			req.PrevError, req.PrevCode)
	} else {
		b.WriteString("Generate a script to answer the query from the full document text in 'input'.\n")
	}
	out, err := g.completer.Complete(ctx, systemPrompt, b.String())
	if err != nil {
		return "", err
	}
	return StripFences(out), nil
}

func preview(document string) string {
	runes := []rune(document)
	if len(runes) <= previewLimit {
		return document
	}
	return string(runes[:previewLimit]) + "..."
}

// StripFences removes markdown code fences that models sometimes emit
// despite instructions.
func StripFences(code string) string {
	code = strings.TrimSpace(code)
	for _, prefix := range []string{"```python", "```starlark", "```"} {
		if strings.HasPrefix(code, prefix) {
			code = code[len(prefix):]
			break
		}
	}
	code = strings.TrimSuffix(strings.TrimSpace(code), "```")
	return strings.TrimSpace(code)
}
