package conversation

import (
	"sync"

	"github.com/Johel506/intelligent-pdf-chatbot/internal/models"
)

// Store maps conversation identifiers to ordered turn histories. It is
// safe for concurrent request handlers; turns within one conversation are
// appended in call order. Histories are append-only and live for the
// process lifetime: no eviction, no cap.
type Store struct {
	mu        sync.RWMutex
	histories map[string][]models.ConversationTurn
}

func NewStore() *Store {
	return &Store{histories: make(map[string][]models.ConversationTurn)}
}

// Append adds a turn to the conversation, creating it on first use.
func (s *Store) Append(conversationID string, turn models.ConversationTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.histories[conversationID] = append(s.histories[conversationID], turn)
}

// History returns a copy of the full turn sequence.
func (s *Store) History(conversationID string) []models.ConversationTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.histories[conversationID]
	out := make([]models.ConversationTurn, len(turns))
	copy(out, turns)
	return out
}

// Window returns a copy of the last n turns.
func (s *Store) Window(conversationID string, n int) []models.ConversationTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.histories[conversationID]
	if n < len(turns) {
		turns = turns[len(turns)-n:]
	}
	out := make([]models.ConversationTurn, len(turns))
	copy(out, turns)
	return out
}

// Len reports the number of turns in the conversation.
func (s *Store) Len(conversationID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.histories[conversationID])
}
