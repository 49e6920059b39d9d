package memory

import (
	"context"
	"sync"
	"time"

	"entalk-deck-service/internal/domain"
	"github.com/google/uuid"
)

// QuestionStore is an in-memory implementation of app.QuestionStore.
// Iteration order is insertion order, which keeps score tie-breaks stable.
type QuestionStore struct {
	mu        sync.RWMutex
	questions map[string]domain.Question
	order     []string
}

func NewQuestionStore() *QuestionStore {
	return &QuestionStore{questions: make(map[string]domain.Question)}
}

func (s *QuestionStore) FindByEvent(_ context.Context, eventID string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Question
	for _, id := range s.order {
		q := s.questions[id]
		if q.EventID == eventID {
			out = append(out, cloneQuestion(q))
		}
	}
	return out, nil
}

func (s *QuestionStore) FindAvailable(_ context.Context, eventID, locationID string, cutoff time.Time) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Question
	for _, id := range s.order {
		q := s.questions[id]
		if q.EventID != eventID || q.UsedSince(locationID, cutoff) {
			continue
		}
		out = append(out, cloneQuestion(q))
	}
	return out, nil
}

func (s *QuestionStore) FindByIDs(_ context.Context, ids []string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, 0, len(ids))
	for _, id := range ids {
		q, ok := s.questions[id]
		if !ok {
			return nil, domain.ErrQuestionNotFound
		}
		out = append(out, cloneQuestion(q))
	}
	return out, nil
}

func (s *QuestionStore) InsertMany(_ context.Context, questions []domain.Question) ([]domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		s.questions[q.ID] = cloneQuestion(q)
		s.order = append(s.order, q.ID)
		out = append(out, q)
	}
	return out, nil
}

func (s *QuestionStore) RecordUsage(_ context.Context, questionID, locationID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[questionID]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	q.UsageHistory = append(q.UsageHistory, domain.UsageRecord{LocationID: locationID, UsedAt: at})
	s.questions[questionID] = q
	return nil
}

func (s *QuestionStore) UpdatePerformance(_ context.Context, questionID string, delta domain.PerformanceDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[questionID]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	q.Performance.Views += delta.Views
	q.Performance.Likes += delta.Likes
	q.Performance.Dislikes += delta.Dislikes
	s.questions[questionID] = q
	return nil
}

func cloneQuestion(q domain.Question) domain.Question {
	if len(q.UsageHistory) > 0 {
		history := make([]domain.UsageRecord, len(q.UsageHistory))
		copy(history, q.UsageHistory)
		q.UsageHistory = history
	}
	return q
}
