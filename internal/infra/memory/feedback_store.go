package memory

import (
	"context"
	"sync"

	"entalk-deck-service/internal/domain"
	"github.com/google/uuid"
)

// FeedbackStore is an append-only in-memory implementation of
// app.FeedbackStore.
type FeedbackStore struct {
	mu      sync.RWMutex
	entries []domain.Feedback
}

func NewFeedbackStore() *FeedbackStore {
	return &FeedbackStore{}
}

func (s *FeedbackStore) Append(_ context.Context, fb domain.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	s.entries = append(s.entries, fb)
	return nil
}

func (s *FeedbackStore) CountsByEvent(_ context.Context, eventID string) (map[string]domain.FeedbackCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]domain.FeedbackCounts)
	for _, fb := range s.entries {
		if fb.EventID != eventID {
			continue
		}
		c := counts[fb.QuestionID]
		switch fb.Kind {
		case domain.FeedbackLike:
			c.Likes++
		case domain.FeedbackDislike:
			c.Dislikes++
		}
		counts[fb.QuestionID] = c
	}
	return counts, nil
}
