package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"elements/internal/domain"
)

// Client is the engine's contract with the completion/embedding
// capability. Both calls are network calls; neither is retried here —
// throttling surfaces as domain.ErrRateLimited for the caller to back
// off on.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Config configures the OpenAI-compatible client.
type Config struct {
	BaseURL        string
	APIKeyEnv      string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
}

// OpenAI implements Client over an OpenAI-compatible HTTP API.
type OpenAI struct {
	client         *openai.Client
	chatModel      string
	embeddingModel string
}

// NewOpenAI creates a client from the provider configuration. The API
// key is read once from the configured environment variable.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	oc := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	chat := cfg.ChatModel
	if chat == "" {
		chat = openai.GPT4o
	}
	emb := cfg.EmbeddingModel
	if emb == "" {
		emb = string(openai.AdaEmbeddingV2)
	}
	return &OpenAI{
		client:         openai.NewClientWithConfig(oc),
		chatModel:      chat,
		embeddingModel: emb,
	}, nil
}

// Complete issues one chat completion call and returns the raw text.
func (c *OpenAI) Complete(ctx context.Context, system, user string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: user,
	})
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Messages:    messages,
		Temperature: 0.3,
	})
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion response", domain.ErrProvider)
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed returns one vector per input text, in input order.
func (c *OpenAI) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(c.embeddingModel),
	})
	if err != nil {
		return nil, classify(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", domain.ErrProvider, len(resp.Data), len(texts))
	}
	out := make([][]float64, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float64, len(d.Embedding))
		for j, f := range d.Embedding {
			vec[j] = float64(f)
		}
		out[i] = vec
	}
	return out, nil
}

// classify maps provider errors onto the engine's error taxonomy.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrProvider, err)
}
