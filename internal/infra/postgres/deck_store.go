package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"entalk-deck-service/internal/domain"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

const uniqueViolation = "23505"

// DeckStore is the bun-backed implementation of app.DeckStore. Access-code
// uniqueness is enforced by the database constraint; a violation surfaces as
// domain.ErrAccessCodeCollision so the service can retry with a fresh code.
type DeckStore struct {
	db *bun.DB
}

func NewDeckStore(db *bun.DB) *DeckStore {
	return &DeckStore{db: db}
}

func (s *DeckStore) Create(ctx context.Context, deck domain.Deck) error {
	row := deckRow{
		ID:          deck.ID,
		AccessCode:  deck.AccessCode,
		EventID:     deck.EventID,
		QuestionIDs: deck.QuestionIDs,
		CreatedAt:   deck.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.Field('C') == uniqueViolation {
			return domain.ErrAccessCodeCollision
		}
		return fmt.Errorf("insert deck: %w", err)
	}
	return nil
}

func (s *DeckStore) FindByAccessCode(ctx context.Context, code string) (domain.Deck, error) {
	var row deckRow
	err := s.db.NewSelect().
		Model(&row).
		Where("access_code = ?", code).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Deck{}, domain.ErrDeckNotFound
	}
	if err != nil {
		return domain.Deck{}, fmt.Errorf("find deck: %w", err)
	}
	return domain.Deck{
		ID:          row.ID,
		AccessCode:  row.AccessCode,
		EventID:     row.EventID,
		QuestionIDs: row.QuestionIDs,
		CreatedAt:   row.CreatedAt,
	}, nil
}
