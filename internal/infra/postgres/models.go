package postgres

import (
	"time"

	"entalk-deck-service/internal/domain"
	"github.com/uptrace/bun"
)

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:q"`

	ID        string    `bun:"id,pk"`
	EventID   string    `bun:"event_id,notnull"`
	Text      string    `bun:"text,notnull"`
	Category  string    `bun:"category,notnull"`
	DeckPhase string    `bun:"deck_phase,notnull"`
	IsNovelty bool      `bun:"is_novelty,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	Views     int       `bun:"views,notnull"`
	Likes     int       `bun:"likes,notnull"`
	Dislikes  int       `bun:"dislikes,notnull"`
	Score     float64   `bun:"score,notnull"`
}

type usageRow struct {
	bun.BaseModel `bun:"table:question_usage,alias:u"`

	ID         int64     `bun:"id,pk,autoincrement"`
	QuestionID string    `bun:"question_id,notnull"`
	LocationID string    `bun:"location_id,notnull"`
	UsedAt     time.Time `bun:"used_at,notnull"`
}

type deckRow struct {
	bun.BaseModel `bun:"table:decks,alias:d"`

	ID          string    `bun:"id,pk"`
	AccessCode  string    `bun:"access_code,notnull"`
	EventID     string    `bun:"event_id,notnull"`
	QuestionIDs []string  `bun:"question_ids,type:jsonb"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
}

type feedbackRow struct {
	bun.BaseModel `bun:"table:feedback,alias:f"`

	ID            string    `bun:"id,pk"`
	QuestionID    string    `bun:"question_id,notnull"`
	EventID       string    `bun:"event_id,notnull"`
	LocationID    string    `bun:"location_id,notnull"`
	Kind          string    `bun:"kind,notnull"`
	ParticipantID string    `bun:"participant_id,nullzero"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
}

func (r questionRow) toDomain() domain.Question {
	return domain.Question{
		ID:        r.ID,
		EventID:   r.EventID,
		Text:      r.Text,
		Category:  domain.Category(r.Category),
		DeckPhase: domain.DeckPhase(r.DeckPhase),
		IsNovelty: r.IsNovelty,
		CreatedAt: r.CreatedAt,
		Performance: domain.Performance{
			Views:    r.Views,
			Likes:    r.Likes,
			Dislikes: r.Dislikes,
			Score:    r.Score,
		},
	}
}

func questionToRow(q domain.Question) questionRow {
	return questionRow{
		ID:        q.ID,
		EventID:   q.EventID,
		Text:      q.Text,
		Category:  string(q.Category),
		DeckPhase: string(q.DeckPhase),
		IsNovelty: q.IsNovelty,
		CreatedAt: q.CreatedAt,
		Views:     q.Performance.Views,
		Likes:     q.Performance.Likes,
		Dislikes:  q.Performance.Dislikes,
		Score:     q.Performance.Score,
	}
}
