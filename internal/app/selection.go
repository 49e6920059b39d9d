package app

import (
	"sort"

	"entalk-deck-service/internal/domain"
)

// selectWithCoverage picks a category/phase-balanced subset from pool.
// One pass claims the top scorer of each category, a second pass the top
// scorer of each phase; a claimed question leaves the pool, so it fills at
// most one slot. The remainder backfills by score until target is reached.
// The returned remaining slice is the untouched rest of the pool.
// A result shorter than target is legitimate; the gap filler compensates.
func selectWithCoverage(pool []domain.Question, target int) (selected, remaining []domain.Question) {
	remaining = pool
	for _, cat := range domain.Categories() {
		best := -1
		for i, q := range remaining {
			if q.Category != cat {
				continue
			}
			if best < 0 || q.Performance.Score > remaining[best].Performance.Score {
				best = i
			}
		}
		if best >= 0 {
			selected = append(selected, remaining[best])
			remaining = removeAt(remaining, best)
		}
	}
	for _, phase := range domain.DeckPhases() {
		best := -1
		for i, q := range remaining {
			if q.DeckPhase != phase {
				continue
			}
			if best < 0 || q.Performance.Score > remaining[best].Performance.Score {
				best = i
			}
		}
		if best >= 0 {
			selected = append(selected, remaining[best])
			remaining = removeAt(remaining, best)
		}
	}
	sortByScoreDesc(remaining)
	for len(selected) < target && len(remaining) > 0 {
		selected = append(selected, remaining[0])
		remaining = remaining[1:]
	}
	return selected, remaining
}

// selectNovelty prefers novelty-flagged questions, backfilling with the
// least-viewed rest, truncated to count. Pool must already exclude coverage
// picks.
func selectNovelty(pool []domain.Question, count int) []domain.Question {
	var novelty, rest []domain.Question
	for _, q := range pool {
		if q.IsNovelty {
			novelty = append(novelty, q)
		} else {
			rest = append(rest, q)
		}
	}
	if len(novelty) < count {
		sort.SliceStable(rest, func(i, j int) bool {
			return rest[i].Performance.Views < rest[j].Performance.Views
		})
		for _, q := range rest {
			if len(novelty) >= count {
				break
			}
			novelty = append(novelty, q)
		}
	}
	if len(novelty) > count {
		novelty = novelty[:count]
	}
	return novelty
}

// sortByScoreDesc is stable: ties keep their original relative order.
func sortByScoreDesc(qs []domain.Question) {
	sort.SliceStable(qs, func(i, j int) bool {
		return qs[i].Performance.Score > qs[j].Performance.Score
	})
}

func removeAt(qs []domain.Question, i int) []domain.Question {
	out := make([]domain.Question, 0, len(qs)-1)
	out = append(out, qs[:i]...)
	return append(out, qs[i+1:]...)
}
