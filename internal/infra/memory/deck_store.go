package memory

import (
	"context"
	"sync"

	"entalk-deck-service/internal/domain"
)

// DeckStore is an in-memory implementation of app.DeckStore keyed by access
// code, which it keeps unique the same way a database constraint would.
type DeckStore struct {
	mu     sync.RWMutex
	byCode map[string]domain.Deck
}

func NewDeckStore() *DeckStore {
	return &DeckStore{byCode: make(map[string]domain.Deck)}
}

func (s *DeckStore) Create(_ context.Context, deck domain.Deck) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byCode[deck.AccessCode]; exists {
		return domain.ErrAccessCodeCollision
	}
	s.byCode[deck.AccessCode] = cloneDeck(deck)
	return nil
}

func (s *DeckStore) FindByAccessCode(_ context.Context, code string) (domain.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	deck, ok := s.byCode[code]
	if !ok {
		return domain.Deck{}, domain.ErrDeckNotFound
	}
	return cloneDeck(deck), nil
}

func cloneDeck(deck domain.Deck) domain.Deck {
	ids := make([]string, len(deck.QuestionIDs))
	copy(ids, deck.QuestionIDs)
	deck.QuestionIDs = ids
	return deck
}
