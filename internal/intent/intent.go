package intent

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"github.com/Johel506/intelligent-pdf-chatbot/internal/llmservice"
	"github.com/Johel506/intelligent-pdf-chatbot/internal/models"
)

// Intent is the coarse category of a user message.
type Intent string

const (
	Greeting Intent = "GREETING"
	Search   Intent = "SEARCH"
)

// Classifier routes a message to the conversational or the retrieval path
// with one non-streamed generation call. Anything that is not an exact
// GREETING comes back as Search: an unnecessary retrieval is cheaper than
// silently dropping grounding.
type Classifier struct {
	llm llmservice.Generator
}

func NewClassifier(llm llmservice.Generator) *Classifier {
	return &Classifier{llm: llm}
}

func (c *Classifier) Classify(ctx context.Context, message string) Intent {
	messages := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextContent{Text: models.IntentPrompt}},
		},
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: message}},
		},
	}

	out, err := c.llm.Complete(ctx, messages, llms.WithTemperature(0), llms.WithMaxTokens(5))
	if err != nil {
		log.Warn().Err(err).Msg("Intent classification failed, defaulting to SEARCH")
		return Search
	}

	switch Intent(strings.ToUpper(strings.TrimSpace(out))) {
	case Greeting:
		return Greeting
	case Search:
		return Search
	default:
		log.Debug().Str("output", out).Msg("Unrecognized intent output, defaulting to SEARCH")
		return Search
	}
}
