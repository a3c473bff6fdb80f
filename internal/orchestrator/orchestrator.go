package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"github.com/Johel506/intelligent-pdf-chatbot/internal/config"
	"github.com/Johel506/intelligent-pdf-chatbot/internal/conversation"
	"github.com/Johel506/intelligent-pdf-chatbot/internal/index"
	"github.com/Johel506/intelligent-pdf-chatbot/internal/intent"
	"github.com/Johel506/intelligent-pdf-chatbot/internal/llmservice"
	"github.com/Johel506/intelligent-pdf-chatbot/internal/models"
	"github.com/Johel506/intelligent-pdf-chatbot/internal/sse"
)

// Retriever serves nearest-neighbour chunk lookups.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]index.ScoredChunk, error)
}

// IntentClassifier routes a message to a response path.
type IntentClassifier interface {
	Classify(ctx context.Context, message string) intent.Intent
}

// Orchestrator drives one chat request end to end: record the user turn,
// classify, pick the conversational or the retrieval path, stream the
// generation as events, and reconcile the accumulated answer back into
// the conversation history.
type Orchestrator struct {
	llm        llmservice.Generator
	classifier IntentClassifier
	retriever  Retriever
	store      *conversation.Store
	cfg        config.RAGConfig
}

func New(llm llmservice.Generator, classifier IntentClassifier, retriever Retriever, store *conversation.Store, cfg config.RAGConfig) *Orchestrator {
	return &Orchestrator{
		llm:        llm,
		classifier: classifier,
		retriever:  retriever,
		store:      store,
		cfg:        cfg,
	}
}

// Respond handles one message and returns the event stream for it. The
// channel closes when the request is finished; cancelling ctx stops event
// delivery but the history write-back still happens with whatever content
// was accumulated by then.
func (o *Orchestrator) Respond(ctx context.Context, conversationID, message string) <-chan sse.Event {
	events := make(chan sse.Event)
	go o.run(ctx, conversationID, message, events)
	return events
}

func (o *Orchestrator) run(ctx context.Context, conversationID, message string, events chan<- sse.Event) {
	defer close(events)

	// The user turn is recorded before generation so a failed attempt
	// still leaves the question in the history.
	o.store.Append(conversationID, models.ConversationTurn{Role: models.RoleUser, Content: message})

	it := o.classifier.Classify(ctx, message)
	log.Debug().Str("conversation_id", conversationID).Str("intent", string(it)).Msg("Classified message")

	var messages []llms.MessageContent
	var sources []models.RetrievedSource

	if it == intent.Greeting {
		messages = o.greetingMessages(conversationID)
	} else {
		hits, err := o.retriever.Search(ctx, message, o.cfg.TopK)
		if err != nil {
			log.Error().Err(err).Msg("Retrieval failed")
			o.emit(ctx, events, sse.Error(sanitize(err)))
			return
		}
		sources = toSources(hits)
		// Sources go out before any content so the client can render
		// citations while tokens arrive.
		if !o.emit(ctx, events, sse.Sources(sources)) {
			return
		}
		messages = o.groundedMessages(message, hits)
	}

	tokens, err := o.llm.Stream(ctx, messages,
		llms.WithTemperature(o.cfg.Temperature),
		llms.WithMaxTokens(o.cfg.MaxTokens),
	)
	if err != nil {
		o.emit(ctx, events, sse.Error(sanitize(err)))
		return
	}

	var full strings.Builder
	failed := false
	for tok := range tokens {
		if tok.Err != nil {
			if errors.Is(tok.Err, context.Canceled) || errors.Is(tok.Err, context.DeadlineExceeded) {
				// Client gone; keep what we have for reconciliation.
				break
			}
			log.Error().Err(tok.Err).Msg("Generation failed")
			o.emit(ctx, events, sse.Error(sanitize(tok.Err)))
			failed = true
			break
		}
		full.WriteString(tok.Content)
		o.emit(ctx, events, sse.Content(tok.Content))
	}

	if failed {
		// No assistant turn for a failed attempt.
		return
	}

	if full.Len() > 0 {
		turn := models.ConversationTurn{Role: models.RoleAssistant, Content: full.String()}
		if it != intent.Greeting {
			turn.Sources = sources
		}
		o.store.Append(conversationID, turn)
	} else {
		// An empty generation leaves only the user turn in history.
		log.Warn().Str("conversation_id", conversationID).Msg("Generation produced no content, skipping assistant turn")
	}

	o.emit(ctx, events, sse.Done())
}

// emit forwards one event unless the consumer is gone. It reports whether
// the event was delivered.
func (o *Orchestrator) emit(ctx context.Context, events chan<- sse.Event, ev sse.Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// greetingMessages builds the conversational path: persona instruction
// plus a window of recent turns, which already includes the new user
// message.
func (o *Orchestrator) greetingMessages(conversationID string) []llms.MessageContent {
	messages := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextContent{Text: models.GreetingPrompt}},
		},
	}
	for _, turn := range o.store.Window(conversationID, o.cfg.HistoryWindow) {
		role := schema.ChatMessageTypeHuman
		if turn.Role == models.RoleAssistant {
			role = schema.ChatMessageTypeAI
		}
		messages = append(messages, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextContent{Text: turn.Content}},
		})
	}
	return messages
}

// groundedMessages builds the retrieval path: page-tagged chunks inside
// the grounded instruction, then the raw user message. History is not
// re-sent here; the grounding context supersedes prior turns.
func (o *Orchestrator) groundedMessages(message string, hits []index.ScoredChunk) []llms.MessageContent {
	var grounding strings.Builder
	for _, hit := range hits {
		grounding.WriteString(fmt.Sprintf("[%s]\n%s\n\n", pageLabel(hit.Chunk), hit.Chunk.Content))
	}
	groundingText := grounding.String()
	if len(groundingText) > o.cfg.ContextCharBudget {
		groundingText = groundingText[:o.cfg.ContextCharBudget]
	}

	system := fmt.Sprintf(models.GroundedPromptTemplate, models.RefusalPhrase, groundingText)
	return []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextContent{Text: system}},
		},
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: message}},
		},
	}
}

func toSources(hits []index.ScoredChunk) []models.RetrievedSource {
	sources := make([]models.RetrievedSource, 0, len(hits))
	for _, hit := range hits {
		sources = append(sources, models.RetrievedSource{
			PageNumber: models.PageRef(hit.Chunk.Page()),
			Content:    hit.Chunk.Content,
		})
	}
	return sources
}

func pageLabel(chunk models.Chunk) string {
	if len(chunk.Pages) == 0 || chunk.Pages[0] <= 0 {
		return "Page N/A"
	}
	labels := make([]string, 0, len(chunk.Pages))
	for _, p := range chunk.Pages {
		labels = append(labels, fmt.Sprintf("Page %d", p))
	}
	return strings.Join(labels, ", ")
}

// sanitize maps internal failures to the client-visible messages.
func sanitize(err error) string {
	switch {
	case errors.Is(err, llmservice.ErrContextTooLarge):
		return "The provided document is too long for the AI model to process."
	case errors.Is(err, llmservice.ErrQuotaOrNetwork):
		return "I'm sorry, an error occurred while communicating with the AI service."
	default:
		return "An unexpected error occurred on the server."
	}
}
