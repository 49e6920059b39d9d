package postgres

import (
	"context"
	"fmt"
	"time"

	"entalk-deck-service/internal/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// QuestionStore is the bun-backed implementation of app.QuestionStore.
// Usage history lives in its own table so availability is decided in SQL
// instead of materializing every usage record.
type QuestionStore struct {
	db *bun.DB
}

func NewQuestionStore(db *bun.DB) *QuestionStore {
	return &QuestionStore{db: db}
}

func (s *QuestionStore) FindByEvent(ctx context.Context, eventID string) ([]domain.Question, error) {
	var rows []questionRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("event_id = ?", eventID).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("find questions by event: %w", err)
	}
	return rowsToDomain(rows), nil
}

func (s *QuestionStore) FindAvailable(ctx context.Context, eventID, locationID string, cutoff time.Time) ([]domain.Question, error) {
	var rows []questionRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("event_id = ?", eventID).
		Where("NOT EXISTS (SELECT 1 FROM question_usage u WHERE u.question_id = q.id AND u.location_id = ? AND u.used_at > ?)",
			locationID, cutoff).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("find available questions: %w", err)
	}
	return rowsToDomain(rows), nil
}

func (s *QuestionStore) FindByIDs(ctx context.Context, ids []string) ([]domain.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []questionRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("find questions by ids: %w", err)
	}
	byID := make(map[string]questionRow, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	out := make([]domain.Question, 0, len(ids))
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			return nil, domain.ErrQuestionNotFound
		}
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *QuestionStore) InsertMany(ctx context.Context, questions []domain.Question) ([]domain.Question, error) {
	if len(questions) == 0 {
		return nil, nil
	}
	rows := make([]questionRow, 0, len(questions))
	out := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		rows = append(rows, questionToRow(q))
		out = append(out, q)
	}
	if _, err := s.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert questions: %w", err)
	}
	return out, nil
}

func (s *QuestionStore) RecordUsage(ctx context.Context, questionID, locationID string, at time.Time) error {
	row := usageRow{QuestionID: questionID, LocationID: locationID, UsedAt: at}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

func (s *QuestionStore) UpdatePerformance(ctx context.Context, questionID string, delta domain.PerformanceDelta) error {
	res, err := s.db.NewUpdate().
		Model((*questionRow)(nil)).
		Set("views = views + ?", delta.Views).
		Set("likes = likes + ?", delta.Likes).
		Set("dislikes = dislikes + ?", delta.Dislikes).
		Where("id = ?", questionID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update performance: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func rowsToDomain(rows []questionRow) []domain.Question {
	out := make([]domain.Question, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out
}
