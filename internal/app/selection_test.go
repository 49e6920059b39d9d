package app

import (
	"testing"

	"entalk-deck-service/internal/domain"
)

func testQuestion(id string, cat domain.Category, phase domain.DeckPhase, score float64) domain.Question {
	return domain.Question{
		ID:          id,
		Category:    cat,
		DeckPhase:   phase,
		Performance: domain.Performance{Score: score},
	}
}

func TestSelectWithCoverageClaimsOneSlotPerQuestion(t *testing.T) {
	// One question per category; each also carries a phase, so without the
	// single-claim rule a question could fill both a category and a phase slot.
	pool := []domain.Question{
		testQuestion("q1", domain.CategoryIcebreaker, domain.PhaseWarmUp, 0.9),
		testQuestion("q2", domain.CategoryPersonal, domain.PhasePersonal, 0.8),
		testQuestion("q3", domain.CategoryOpinion, domain.PhaseReflective, 0.7),
		testQuestion("q4", domain.CategoryHypothetical, domain.PhaseChallenge, 0.6),
		testQuestion("q5", domain.CategoryReflective, domain.PhaseWarmUp, 0.5),
		testQuestion("q6", domain.CategoryCultural, domain.PhasePersonal, 0.4),
	}

	selected, remaining := selectWithCoverage(pool, 12)
	if len(selected) != 6 {
		t.Fatalf("expected all 6 questions selected, got %d", len(selected))
	}
	if len(remaining) != 0 {
		t.Fatalf("expected empty remainder, got %d", len(remaining))
	}
	seen := map[string]int{}
	for _, q := range selected {
		seen[q.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("question %s selected %d times", id, n)
		}
	}
}

func TestSelectWithCoveragePicksBestScorerPerCategory(t *testing.T) {
	pool := []domain.Question{
		testQuestion("low", domain.CategoryIcebreaker, domain.PhaseWarmUp, 0.2),
		testQuestion("high", domain.CategoryIcebreaker, domain.PhaseWarmUp, 0.9),
		testQuestion("mid", domain.CategoryIcebreaker, domain.PhaseWarmUp, 0.5),
	}

	selected, _ := selectWithCoverage(pool, 1)
	if selected[0].ID != "high" {
		t.Fatalf("expected top scorer to claim the category slot, got %s", selected[0].ID)
	}
}

func TestSelectWithCoverageBackfillsByScore(t *testing.T) {
	pool := []domain.Question{
		testQuestion("a", domain.CategoryIcebreaker, domain.PhaseWarmUp, 0.9),
		testQuestion("b", domain.CategoryIcebreaker, domain.PhasePersonal, 0.8),
		testQuestion("c", domain.CategoryIcebreaker, domain.PhaseWarmUp, 0.3),
		testQuestion("d", domain.CategoryIcebreaker, domain.PhaseWarmUp, 0.6),
	}

	// a claims the category slot, b claims the phase slot for Personal,
	// 0.9 on WarmUp is gone so the WarmUp phase slot goes to d.
	selected, remaining := selectWithCoverage(pool, 4)
	if len(selected) != 4 {
		t.Fatalf("expected 4 selected, got %d", len(selected))
	}
	if selected[len(selected)-1].ID != "c" {
		t.Fatalf("expected lowest scorer last via backfill, got %s", selected[len(selected)-1].ID)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected empty remainder, got %d", len(remaining))
	}
}

func TestSelectWithCoverageShortPoolReturnsWhatExists(t *testing.T) {
	pool := []domain.Question{
		testQuestion("only", domain.CategoryOpinion, domain.PhaseChallenge, 0.5),
	}
	selected, remaining := selectWithCoverage(pool, 12)
	if len(selected) != 1 || len(remaining) != 0 {
		t.Fatalf("expected 1 selected and empty remainder, got %d/%d", len(selected), len(remaining))
	}
}

func TestSelectNoveltyPrefersFlaggedQuestions(t *testing.T) {
	pool := []domain.Question{
		{ID: "seen", Performance: domain.Performance{Views: 10}},
		{ID: "fresh", Performance: domain.Performance{Views: 0}},
		{ID: "nov1", IsNovelty: true, Performance: domain.Performance{Views: 50}},
		{ID: "nov2", IsNovelty: true, Performance: domain.Performance{Views: 50}},
	}

	picked := selectNovelty(pool, 3)
	if len(picked) != 3 {
		t.Fatalf("expected 3 picks, got %d", len(picked))
	}
	if picked[0].ID != "nov1" || picked[1].ID != "nov2" {
		t.Fatalf("expected novelty-flagged questions first, got %s %s", picked[0].ID, picked[1].ID)
	}
	if picked[2].ID != "fresh" {
		t.Fatalf("expected least-viewed backfill, got %s", picked[2].ID)
	}
}

func TestSelectNoveltyTruncatesToCount(t *testing.T) {
	pool := []domain.Question{
		{ID: "n1", IsNovelty: true},
		{ID: "n2", IsNovelty: true},
		{ID: "n3", IsNovelty: true},
		{ID: "n4", IsNovelty: true},
	}
	picked := selectNovelty(pool, 3)
	if len(picked) != 3 {
		t.Fatalf("expected truncation to 3, got %d", len(picked))
	}
}
