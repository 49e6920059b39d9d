package app

import (
	"context"
	"time"

	"entalk-deck-service/internal/domain"
)

// fillGaps asks the generator for enough questions to lift the selection to
// the deck floor, persists them as novelty questions owned by the event, and
// returns the stored copies. The generator never fails (it degrades to
// deterministic templates), so the only error source is the store insert.
func (s *DeckService) fillGaps(ctx context.Context, eventID string, selected []domain.Question, now time.Time) ([]domain.Question, error) {
	missing := s.opts.DeckFloor - len(selected)
	if missing <= 0 {
		return nil, nil
	}

	generated := s.generator.Generate(ctx, missingCategories(selected), missingPhases(selected), missing)
	if len(generated) == 0 {
		return nil, nil
	}

	questions := make([]domain.Question, 0, len(generated))
	for _, g := range generated {
		questions = append(questions, domain.Question{
			EventID:   eventID,
			Text:      g.Text,
			Category:  g.Category,
			DeckPhase: g.DeckPhase,
			IsNovelty: true,
			CreatedAt: now,
		})
	}
	return s.questions.InsertMany(ctx, questions)
}

// missingCategories lists categories absent from the selection. When the
// selection already covers everything it returns the full enumeration so the
// generator always has categories to work from.
func missingCategories(selected []domain.Question) []domain.Category {
	present := make(map[domain.Category]bool, len(selected))
	for _, q := range selected {
		present[q.Category] = true
	}
	var missing []domain.Category
	for _, cat := range domain.Categories() {
		if !present[cat] {
			missing = append(missing, cat)
		}
	}
	if len(missing) == 0 {
		return domain.Categories()
	}
	return missing
}

func missingPhases(selected []domain.Question) []domain.DeckPhase {
	present := make(map[domain.DeckPhase]bool, len(selected))
	for _, q := range selected {
		present[q.DeckPhase] = true
	}
	var missing []domain.DeckPhase
	for _, phase := range domain.DeckPhases() {
		if !present[phase] {
			missing = append(missing, phase)
		}
	}
	if len(missing) == 0 {
		return domain.DeckPhases()
	}
	return missing
}
