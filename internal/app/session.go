package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"entalk-deck-service/internal/domain"
)

// RecordFeedback appends a like/dislike for a question in the deck identified
// by accessCode, bumps the question's performance counters, and broadcasts
// the updated tallies to session subscribers.
func (s *DeckService) RecordFeedback(ctx context.Context, accessCode string, fb domain.Feedback) (domain.FeedbackSummary, error) {
	if !fb.Kind.Valid() {
		return domain.FeedbackSummary{}, domain.ErrInvalidFeedback
	}

	session, deck, err := s.session(ctx, accessCode)
	if err != nil {
		return domain.FeedbackSummary{}, err
	}
	if !containsID(deck.QuestionIDs, fb.QuestionID) {
		return domain.FeedbackSummary{}, domain.ErrQuestionNotFound
	}

	fb.EventID = deck.EventID
	fb.CreatedAt = s.now()
	if err := s.feedback.Append(ctx, fb); err != nil {
		return domain.FeedbackSummary{}, fmt.Errorf("append feedback: %w", err)
	}

	delta := domain.PerformanceDelta{}
	if fb.Kind == domain.FeedbackLike {
		delta.Likes = 1
	} else {
		delta.Dislikes = 1
	}
	if err := s.questions.UpdatePerformance(ctx, fb.QuestionID, delta); err != nil {
		return domain.FeedbackSummary{}, fmt.Errorf("update performance: %w", err)
	}

	return session.apply(fb.QuestionID, fb.Kind), nil
}

// Subscribe returns a channel of tally snapshots for a deck session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *DeckService) Subscribe(ctx context.Context, accessCode string) (<-chan domain.FeedbackSummary, func(), error) {
	session, _, err := s.session(ctx, accessCode)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// session resolves the deck and lazily creates its feedback session.
func (s *DeckService) session(ctx context.Context, accessCode string) (*feedbackSession, domain.Deck, error) {
	deck, err := s.decks.FindByAccessCode(ctx, accessCode)
	if err != nil {
		return nil, domain.Deck{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[accessCode]
	if !ok {
		session = newFeedbackSession(deck, s.now)
		s.sessions[accessCode] = session
	}
	return session, deck, nil
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// feedbackSession is the in-memory live tally for one deck.
type feedbackSession struct {
	accessCode string
	order      []string // deck question order, kept for stable snapshots
	now        func() time.Time

	mu          sync.RWMutex
	tallies     map[string]*domain.FeedbackCounts
	subscribers map[chan domain.FeedbackSummary]struct{}
}

func newFeedbackSession(deck domain.Deck, now func() time.Time) *feedbackSession {
	tallies := make(map[string]*domain.FeedbackCounts, len(deck.QuestionIDs))
	for _, id := range deck.QuestionIDs {
		tallies[id] = &domain.FeedbackCounts{}
	}
	return &feedbackSession{
		accessCode:  deck.AccessCode,
		order:       deck.QuestionIDs,
		now:         now,
		tallies:     tallies,
		subscribers: make(map[chan domain.FeedbackSummary]struct{}),
	}
}

func (s *feedbackSession) apply(questionID string, kind domain.FeedbackKind) domain.FeedbackSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts, ok := s.tallies[questionID]
	if !ok {
		counts = &domain.FeedbackCounts{}
		s.tallies[questionID] = counts
		s.order = append(s.order, questionID)
	}
	if kind == domain.FeedbackLike {
		counts.Likes++
	} else {
		counts.Dislikes++
	}
	return s.broadcastLocked()
}

func (s *feedbackSession) subscribe() (<-chan domain.FeedbackSummary, func()) {
	ch := make(chan domain.FeedbackSummary, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *feedbackSession) broadcastLocked() domain.FeedbackSummary {
	summary := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- summary:
		default:
			// Drop the stale snapshot so a slow subscriber cannot block the rest.
			select {
			case <-ch:
			default:
			}
			ch <- summary
		}
	}
	return summary
}

func (s *feedbackSession) snapshotLocked() domain.FeedbackSummary {
	tallies := make([]domain.QuestionTally, 0, len(s.order))
	for _, id := range s.order {
		counts := s.tallies[id]
		tallies = append(tallies, domain.QuestionTally{
			QuestionID: id,
			Likes:      counts.Likes,
			Dislikes:   counts.Dislikes,
		})
	}
	return domain.FeedbackSummary{
		AccessCode: s.accessCode,
		Tallies:    tallies,
		UpdatedAt:  s.now(),
	}
}
