package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"elements/internal/ai"
	"elements/internal/chunker"
	"elements/internal/config"
	"elements/internal/domain"
	"elements/internal/embedding/local"
	"elements/internal/embedding/remote"
	"elements/internal/engine"
	"elements/internal/loader"
	"elements/internal/rag"
	"elements/internal/sandbox"
	"elements/internal/scriptgen"
)

// buildAnalyzer assembles the engine from the loaded configuration.
func buildAnalyzer(cfg *config.AppConfig) (*engine.Engine, error) {
	client, err := ai.NewOpenAI(ai.Config{
		BaseURL:        cfg.Provider.BaseURL,
		APIKeyEnv:      cfg.Provider.APIKeyEnv,
		ChatModel:      cfg.Provider.ChatModel,
		EmbeddingModel: cfg.Provider.EmbeddingModel,
		Timeout:        time.Duration(cfg.Provider.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	var embedder func() domain.Embedder
	switch cfg.Embedder.Type {
	case "local":
		embedder = func() domain.Embedder { return local.NewEmbedder() }
	case "remote", "":
		embedder = func() domain.Embedder { return remote.New(client) }
	default:
		return nil, fmt.Errorf("unknown embedder type %q", cfg.Embedder.Type)
	}

	reasoner := rag.NewPipeline(
		chunker.NewWindowChunker(cfg.Chunker.ChunkSize, cfg.Chunker.Overlap),
		embedder,
		client,
		rag.Config{
			SimilarityFloor: cfg.Retrieval.SimilarityFloor,
			TopK:            cfg.Retrieval.TopK,
			ContextChars:    cfg.Retrieval.ContextChars,
			Concurrency:     cfg.Embedder.Concurrency,
		},
		logger,
	)
	extractor := scriptgen.NewPipeline(
		scriptgen.NewPromptedGenerator(client),
		sandbox.NewRunner(time.Duration(cfg.Script.TimeoutMs)*time.Millisecond, cfg.Script.MaxSteps),
		cfg.Script.MaxAttempts,
		logger,
	)
	return engine.New(reasoner, extractor, logger), nil
}

// buildDigest summarizes the combined document text for display.
func buildDigest(s domain.Summarizer, files []domain.RawFile, supplementary string, maxSentences int) (string, error) {
	document, err := loader.Combine(files, supplementary)
	if err != nil {
		return "", err
	}
	return s.Summarize(document, maxSentences)
}

// loadFiles reads the given paths into raw files. The declared type is
// taken from the extension; the loader rejects what it cannot parse.
func loadFiles(paths []string) ([]domain.RawFile, error) {
	files := make([]domain.RawFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		files = append(files, domain.RawFile{
			Name: filepath.Base(path),
			Type: strings.TrimPrefix(filepath.Ext(path), "."),
			Data: data,
		})
	}
	return files, nil
}
