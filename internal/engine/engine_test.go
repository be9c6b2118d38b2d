package engine

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"elements/internal/domain"
	"elements/internal/rag"
	"elements/internal/sandbox"
	"elements/internal/scriptgen"
)

type stubReasoner struct {
	res    rag.Result
	err    error
	called int
}

func (s *stubReasoner) Run(context.Context, string, string) (rag.Result, error) {
	s.called++
	return s.res, s.err
}

type stubExtractor struct {
	out    scriptgen.Outcome
	err    error
	called int
}

func (s *stubExtractor) Run(context.Context, string, string) (scriptgen.Outcome, error) {
	s.called++
	return s.out, s.err
}

type genFunc func(ctx context.Context, req scriptgen.Request) (string, error)

func (f genFunc) Generate(ctx context.Context, req scriptgen.Request) (string, error) {
	return f(ctx, req)
}

func textFile(name, content string) domain.RawFile {
	return domain.RawFile{Name: name, Type: "txt", Data: []byte(content)}
}

func TestAnalyzeUnknownMethod(t *testing.T) {
	reasoner := &stubReasoner{}
	extractor := &stubExtractor{}
	e := New(reasoner, extractor, nil)
	res := e.Analyze(context.Background(), domain.Element{Method: "direct"}, []domain.RawFile{textFile("a.txt", "text")}, "")
	if res.Success {
		t.Error("unknown method must not succeed")
	}
	if res.MethodUsed != "direct" {
		t.Errorf("method_used = %q", res.MethodUsed)
	}
	if reasoner.called != 0 || extractor.called != 0 {
		t.Error("no pipeline may run for an unknown method")
	}
	if len(res.Diagnostics.Errors) == 0 || !strings.Contains(res.Diagnostics.Errors[0], "unsupported") {
		t.Errorf("errors = %v", res.Diagnostics.Errors)
	}
	if res.Diagnostics.AnalysisID == "" {
		t.Error("missing analysis id")
	}
}

func TestAnalyzeReasoningSuccess(t *testing.T) {
	reasoner := &stubReasoner{res: rag.Result{Answer: "42 complaints", Retrieved: 2}}
	e := New(reasoner, &stubExtractor{}, nil)
	res := e.Analyze(context.Background(), domain.Element{
		Name:   "complaint count",
		Prompt: "how many complaints",
		Method: domain.MethodReasoning,
	}, []domain.RawFile{textFile("report.txt", "complaints: 42")}, "")
	if !res.Success {
		t.Fatalf("errors: %v", res.Diagnostics.Errors)
	}
	if res.Output != "42 complaints" {
		t.Errorf("output = %q", res.Output)
	}
	if res.MethodUsed != domain.MethodReasoning {
		t.Errorf("method_used = %q", res.MethodUsed)
	}
	if res.Diagnostics.Retrieved != 2 {
		t.Errorf("retrieved = %d", res.Diagnostics.Retrieved)
	}
	if res.Diagnostics.Attempts != 1 {
		t.Errorf("attempts = %d", res.Diagnostics.Attempts)
	}
}

func TestAnalyzeReasoningInsufficientContent(t *testing.T) {
	reasoner := &stubReasoner{err: domain.ErrInsufficientContent}
	e := New(reasoner, &stubExtractor{}, nil)
	res := e.Analyze(context.Background(), domain.Element{Method: domain.MethodReasoning},
		[]domain.RawFile{textFile("empty.txt", "")}, "")
	if !res.Success {
		t.Error("insufficient content is a successful empty outcome")
	}
	if !strings.Contains(res.Output, "no relevant content") {
		t.Errorf("output = %q", res.Output)
	}
}

func TestAnalyzeReasoningProviderFailure(t *testing.T) {
	reasoner := &stubReasoner{err: domain.ErrRateLimited}
	e := New(reasoner, &stubExtractor{}, nil)
	res := e.Analyze(context.Background(), domain.Element{Method: domain.MethodReasoning},
		[]domain.RawFile{textFile("a.txt", "text")}, "")
	if res.Success {
		t.Error("provider failure must not succeed")
	}
	if len(res.Diagnostics.Errors) != 1 {
		t.Errorf("errors = %v", res.Diagnostics.Errors)
	}
}

func TestAnalyzeExtractionEndToEnd(t *testing.T) {
	script := `
count = 0
for line in input.split("\n"):
    count += line.count("X")
print("scanned %d line(s)" % len(input.split("\n")))
result = {"count": count}
`
	gen := genFunc(func(_ context.Context, _ scriptgen.Request) (string, error) {
		return script, nil
	})
	pipeline := scriptgen.NewPipeline(gen, sandbox.NewRunner(2*time.Second, 0), 3, nil)
	e := New(&stubReasoner{}, pipeline, nil)
	res := e.Analyze(context.Background(), domain.Element{
		Name:   "x counter",
		Prompt: "count occurrences of X",
		Method: domain.MethodExtraction,
	}, []domain.RawFile{textFile("marks.txt", "X and X and X")}, "")
	if !res.Success {
		t.Fatalf("errors: %v", res.Diagnostics.Errors)
	}
	var parsed struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(res.Structured, &parsed); err != nil {
		t.Fatalf("structured %q: %v", res.Structured, err)
	}
	if parsed.Count != 3 {
		t.Errorf("count = %d, want 3", parsed.Count)
	}
	if res.Diagnostics.Attempts != 1 {
		t.Errorf("attempts = %d", res.Diagnostics.Attempts)
	}
	if !strings.Contains(res.Diagnostics.ScriptStdout, "scanned") {
		t.Errorf("script stdout not captured: %q", res.Diagnostics.ScriptStdout)
	}
}

func TestAnalyzeExtractionExhaustion(t *testing.T) {
	extractor := &stubExtractor{out: scriptgen.Outcome{
		Attempts: 3,
		Errors:   []string{"attempt 1: validate: x", "attempt 2: validate: x", "attempt 3: validate: x"},
	}}
	e := New(&stubReasoner{}, extractor, nil)
	res := e.Analyze(context.Background(), domain.Element{Method: domain.MethodExtraction},
		[]domain.RawFile{textFile("a.txt", "text")}, "")
	if res.Success {
		t.Error("exhaustion must not succeed")
	}
	if res.Diagnostics.Attempts != 3 {
		t.Errorf("attempts = %d", res.Diagnostics.Attempts)
	}
	if len(res.Diagnostics.Errors) != 3 {
		t.Errorf("errors = %v", res.Diagnostics.Errors)
	}
}

func TestAnalyzeUnsupportedFile(t *testing.T) {
	e := New(&stubReasoner{}, &stubExtractor{}, nil)
	res := e.Analyze(context.Background(), domain.Element{Method: domain.MethodReasoning},
		[]domain.RawFile{{Name: "tool.exe", Data: []byte{0x4d, 0x5a}}}, "")
	if res.Success {
		t.Error("unsupported file must not succeed")
	}
	if len(res.Diagnostics.Errors) == 0 {
		t.Error("missing error diagnostic")
	}
}

type panickyReasoner struct{}

func (panickyReasoner) Run(context.Context, string, string) (rag.Result, error) {
	panic("boom")
}

func TestAnalyzeRecoversPanics(t *testing.T) {
	e := New(panickyReasoner{}, &stubExtractor{}, nil)
	res := e.Analyze(context.Background(), domain.Element{Method: domain.MethodReasoning},
		[]domain.RawFile{textFile("a.txt", "text")}, "")
	if res.Success {
		t.Error("panic must be reported as failure")
	}
	found := false
	for _, msg := range res.Diagnostics.Errors {
		if strings.Contains(msg, "panic") {
			found = true
		}
	}
	if !found {
		t.Errorf("errors = %v", res.Diagnostics.Errors)
	}
}
