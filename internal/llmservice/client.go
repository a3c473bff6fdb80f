package llmservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/Johel506/intelligent-pdf-chatbot/internal/config"
)

var (
	// ErrContextTooLarge means the assembled prompt exceeded the model's
	// input limit.
	ErrContextTooLarge = errors.New("context too large for model")
	// ErrQuotaOrNetwork covers upstream quota and connectivity failures.
	ErrQuotaOrNetwork = errors.New("llm service unavailable")
)

// StreamToken is one increment of a streamed generation. Err is set on the
// final token when the stream failed.
type StreamToken struct {
	Content string
	Err     error
}

// Generator is the text-generation capability consumed by the classifier
// and the orchestrator. Implementations are constructed and injected, not
// package globals, so tests can substitute a double.
type Generator interface {
	Complete(ctx context.Context, messages []llms.MessageContent, opts ...llms.CallOption) (string, error)
	Stream(ctx context.Context, messages []llms.MessageContent, opts ...llms.CallOption) (<-chan StreamToken, error)
}

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	llm *openai.LLM
}

func NewClient(cfg *config.LLMConfig) (*Client, error) {
	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	return &Client{llm: llm}, nil
}

// Complete performs a single non-streamed generation.
func (c *Client) Complete(ctx context.Context, messages []llms.MessageContent, opts ...llms.CallOption) (string, error) {
	res, err := c.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", mapError(err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", ErrQuotaOrNetwork)
	}
	return res.Choices[0].Content, nil
}

// Stream starts a streamed generation and returns a channel of text
// increments. The channel closes after the final token; a failure arrives
// as the last token's Err. Cancelling ctx stops the stream.
func (c *Client) Stream(ctx context.Context, messages []llms.MessageContent, opts ...llms.CallOption) (<-chan StreamToken, error) {
	tokens := make(chan StreamToken)

	streaming := make([]llms.CallOption, len(opts), len(opts)+1)
	copy(streaming, opts)
	streaming = append(streaming, llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
		select {
		case tokens <- StreamToken{Content: string(chunk)}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}))

	go func() {
		defer close(tokens)
		if _, err := c.llm.GenerateContent(ctx, messages, streaming...); err != nil {
			select {
			case tokens <- StreamToken{Err: mapError(err)}:
			case <-ctx.Done():
			}
		}
	}()

	return tokens, nil
}

// mapError folds upstream failures into the service taxonomy.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	msg := err.Error()
	if strings.Contains(msg, "context_length_exceeded") || strings.Contains(msg, "maximum context length") {
		return fmt.Errorf("%w: %s", ErrContextTooLarge, msg)
	}
	if strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "connection") {
		return fmt.Errorf("%w: %s", ErrQuotaOrNetwork, msg)
	}
	return err
}
