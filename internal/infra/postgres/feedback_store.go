package postgres

import (
	"context"
	"fmt"

	"entalk-deck-service/internal/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FeedbackStore is the bun-backed implementation of app.FeedbackStore.
type FeedbackStore struct {
	db *bun.DB
}

func NewFeedbackStore(db *bun.DB) *FeedbackStore {
	return &FeedbackStore{db: db}
}

func (s *FeedbackStore) Append(ctx context.Context, fb domain.Feedback) error {
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	row := feedbackRow{
		ID:            fb.ID,
		QuestionID:    fb.QuestionID,
		EventID:       fb.EventID,
		LocationID:    fb.LocationID,
		Kind:          string(fb.Kind),
		ParticipantID: fb.ParticipantID,
		CreatedAt:     fb.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (s *FeedbackStore) CountsByEvent(ctx context.Context, eventID string) (map[string]domain.FeedbackCounts, error) {
	var rows []struct {
		QuestionID string `bun:"question_id"`
		Kind       string `bun:"kind"`
		Count      int    `bun:"count"`
	}
	err := s.db.NewSelect().
		Model((*feedbackRow)(nil)).
		Column("question_id", "kind").
		ColumnExpr("count(*) AS count").
		Where("event_id = ?", eventID).
		Group("question_id", "kind").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("count feedback: %w", err)
	}
	counts := make(map[string]domain.FeedbackCounts, len(rows))
	for _, r := range rows {
		c := counts[r.QuestionID]
		switch domain.FeedbackKind(r.Kind) {
		case domain.FeedbackLike:
			c.Likes += r.Count
		case domain.FeedbackDislike:
			c.Dislikes += r.Count
		}
		counts[r.QuestionID] = c
	}
	return counts, nil
}
