package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"entalk-deck-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// DeckLoader is the pgx read path for decks, used as the cache-miss source
// behind the redis deck cache. Writes stay on the bun store.
type DeckLoader struct {
	pool *pgxpool.Pool
}

func NewDeckLoader(pool *pgxpool.Pool) *DeckLoader {
	return &DeckLoader{pool: pool}
}

func (l *DeckLoader) FindByAccessCode(ctx context.Context, code string) (domain.Deck, error) {
	var (
		deck domain.Deck
		raw  []byte
	)
	err := l.pool.QueryRow(ctx,
		`SELECT id, access_code, event_id, question_ids, created_at FROM decks WHERE access_code = $1`,
		code,
	).Scan(&deck.ID, &deck.AccessCode, &deck.EventID, &raw, &deck.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Deck{}, domain.ErrDeckNotFound
	}
	if err != nil {
		return domain.Deck{}, fmt.Errorf("load deck: %w", err)
	}
	if err := json.Unmarshal(raw, &deck.QuestionIDs); err != nil {
		return domain.Deck{}, fmt.Errorf("unmarshal question ids: %w", err)
	}
	return deck, nil
}
