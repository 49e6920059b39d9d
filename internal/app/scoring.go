package app

import (
	"time"

	"entalk-deck-service/internal/domain"
)

// scoreAll recomputes every candidate's score in place. Scores are never
// carried over from a previous pass.
func (s *DeckService) scoreAll(qs []domain.Question, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range qs {
		jitter := 0.0
		if s.opts.JitterAmplitude > 0 {
			jitter = s.rnd.Float64() * s.opts.JitterAmplitude
		}
		qs[i].Performance.Score = scoreQuestion(qs[i], now, s.opts, jitter)
	}
}

// scoreQuestion blends like rate with a linear freshness boost. The jitter
// term breaks ties so repeated generations do not produce a static ranking.
// Defined for all questions: with zero views the like-rate term is zero.
func scoreQuestion(q domain.Question, now time.Time, opts Options, jitter float64) float64 {
	likeRate := 0.0
	if q.Performance.Views > 0 {
		likeRate = float64(q.Performance.Likes) / float64(q.Performance.Views)
	}
	ageDays := now.Sub(q.CreatedAt).Hours() / 24
	freshness := 1 - ageDays/float64(opts.FreshnessHorizonDays)
	if freshness < 0 {
		freshness = 0
	}
	return opts.LikeWeight*likeRate + opts.FreshnessWeight*freshness + jitter
}
