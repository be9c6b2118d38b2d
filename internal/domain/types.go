package domain

import "encoding/json"

// Method selects the analysis strategy for an element.
type Method string

const (
	// MethodReasoning retrieves relevant chunks and conditions one
	// completion call on them.
	MethodReasoning Method = "reasoning"
	// MethodExtraction has the model write a script that is executed
	// against the document text in a sandbox.
	MethodExtraction Method = "extraction"
)

// Element describes a reusable analysis task. It is owned by the
// caller and never mutated by the engine.
type Element struct {
	Name        string
	Prompt      string
	Model       string
	Method      Method
	FileType    string
	DataSources []string
}

// RawFile is an uploaded document as received from the caller.
type RawFile struct {
	Name string
	Type string
	Data []byte
}

// Chunk is a bounded contiguous slice of normalized document text.
// Chunks are produced fresh per analysis call and not persisted.
type Chunk struct {
	Text         string
	Index        int
	SourceOffset int
}

// Diagnostics carries per-call metadata regardless of which pipeline ran.
type Diagnostics struct {
	AnalysisID   string   `json:"analysis_id"`
	Attempts     int      `json:"attempts"`
	TimingMs     int64    `json:"timing_ms"`
	Retrieved    int      `json:"retrieved,omitempty"`
	ScriptStdout string   `json:"script_stdout,omitempty"`
	Errors       []string `json:"errors,omitempty"`
}

// AnalysisResult is the single value returned per analysis call.
type AnalysisResult struct {
	Success     bool            `json:"success"`
	Output      string          `json:"analysis_result"`
	Structured  json.RawMessage `json:"structured,omitempty"`
	MethodUsed  Method          `json:"method_used"`
	Diagnostics Diagnostics     `json:"diagnostics"`
}
