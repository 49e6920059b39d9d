package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"entalk-deck-service/internal/domain"
	"github.com/google/uuid"
)

// QuestionStore abstracts how questions are persisted (in-memory, Postgres, etc).
type QuestionStore interface {
	FindByEvent(ctx context.Context, eventID string) ([]domain.Question, error)
	// FindAvailable returns the event's questions with no usage at the location
	// after cutoff.
	FindAvailable(ctx context.Context, eventID, locationID string, cutoff time.Time) ([]domain.Question, error)
	// FindByIDs returns questions in the order of ids.
	FindByIDs(ctx context.Context, ids []string) ([]domain.Question, error)
	// InsertMany persists new questions and returns them with assigned IDs.
	InsertMany(ctx context.Context, questions []domain.Question) ([]domain.Question, error)
	RecordUsage(ctx context.Context, questionID, locationID string, at time.Time) error
	UpdatePerformance(ctx context.Context, questionID string, delta domain.PerformanceDelta) error
}

// DeckStore persists generated decks. Create must enforce access-code
// uniqueness and report domain.ErrAccessCodeCollision on a taken code.
type DeckStore interface {
	Create(ctx context.Context, deck domain.Deck) error
	FindByAccessCode(ctx context.Context, code string) (domain.Deck, error)
}

// FeedbackStore appends like/dislike events and aggregates them per event.
type FeedbackStore interface {
	Append(ctx context.Context, fb domain.Feedback) error
	CountsByEvent(ctx context.Context, eventID string) (map[string]domain.FeedbackCounts, error)
}

// QuestionGenerator supplies backfill questions. Implementations must never
// fail: on any upstream error they fall back to deterministic templates.
type QuestionGenerator interface {
	Generate(ctx context.Context, categories []domain.Category, phases []domain.DeckPhase, count int) []domain.GeneratedQuestion
}

// LocationLocker serializes deck generation per location. Acquire blocks until
// the location lease is held or ctx is done; the returned func releases it.
type LocationLocker interface {
	Acquire(ctx context.Context, locationID string) (func(), error)
}

// Options tunes the selection pipeline. Zero values are replaced by defaults.
type Options struct {
	FreshnessDays        int     // usage lookback window at a location
	FreshnessHorizonDays int     // age beyond which a question gets no freshness credit
	MainTarget           int     // coverage selection size
	NoveltyTarget        int     // novelty supplement size
	DeckFloor            int     // minimum deck size before gap filling stops
	LikeWeight           float64 // weight of like rate in the score
	FreshnessWeight      float64 // weight of the freshness boost
	JitterAmplitude      float64 // upper bound of the random tie-break term
	CodeLength           int     // access code length
	CodeAttempts         int     // collision retries before giving up
}

// DefaultOptions returns the production tuning: 12 coverage picks plus 3
// novelty picks, filled to a floor of 15.
func DefaultOptions() Options {
	return Options{
		FreshnessDays:        28,
		FreshnessHorizonDays: 30,
		MainTarget:           12,
		NoveltyTarget:        3,
		DeckFloor:            15,
		LikeWeight:           0.7,
		FreshnessWeight:      0.3,
		JitterAmplitude:      0.1,
		CodeLength:           6,
		CodeAttempts:         5,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.FreshnessDays <= 0 {
		o.FreshnessDays = def.FreshnessDays
	}
	if o.FreshnessHorizonDays <= 0 {
		o.FreshnessHorizonDays = def.FreshnessHorizonDays
	}
	if o.MainTarget <= 0 {
		o.MainTarget = def.MainTarget
	}
	if o.NoveltyTarget <= 0 {
		o.NoveltyTarget = def.NoveltyTarget
	}
	if o.DeckFloor <= 0 {
		o.DeckFloor = def.DeckFloor
	}
	if o.LikeWeight == 0 && o.FreshnessWeight == 0 {
		o.LikeWeight = def.LikeWeight
		o.FreshnessWeight = def.FreshnessWeight
	}
	if o.CodeLength <= 0 {
		o.CodeLength = def.CodeLength
	}
	if o.CodeAttempts <= 0 {
		o.CodeAttempts = def.CodeAttempts
	}
	return o
}

// Dependencies bundles the collaborators injected into DeckService.
type Dependencies struct {
	Questions QuestionStore
	Decks     DeckStore
	Feedback  FeedbackStore
	Generator QuestionGenerator
	Locks     LocationLocker
}

// DeckService contains the deck generation and feedback use cases.
type DeckService struct {
	questions QuestionStore
	decks     DeckStore
	feedback  FeedbackStore
	generator QuestionGenerator
	locks     LocationLocker
	opts      Options
	now       func() time.Time

	mu       sync.Mutex // guards rnd and sessions
	rnd      *rand.Rand
	sessions map[string]*feedbackSession
}

func NewDeckService(deps Dependencies, opts Options) *DeckService {
	return NewDeckServiceWithClock(deps, opts, time.Now, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewDeckServiceWithClock is test-only for deterministic timestamps and draws.
func NewDeckServiceWithClock(deps Dependencies, opts Options, now func() time.Time, rnd *rand.Rand) *DeckService {
	return &DeckService{
		questions: deps.Questions,
		decks:     deps.Decks,
		feedback:  deps.Feedback,
		generator: deps.Generator,
		locks:     deps.Locks,
		opts:      opts.withDefaults(),
		now:       now,
		rnd:       rnd,
		sessions:  make(map[string]*feedbackSession),
	}
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateDeck assembles, persists and returns a new deck for the event at the
// location, together with its questions in persisted order.
//
// Generation is serialized per location: the lease taken here guarantees two
// concurrent calls cannot both read an overlapping candidate pool before
// usage is recorded. The deck record is written before usage history so a
// partial failure never leaves a deck referencing unrecorded usage that
// cannot be reconciled by the next generation.
func (s *DeckService) GenerateDeck(ctx context.Context, eventID, locationID string) (domain.Deck, []domain.Question, error) {
	release, err := s.locks.Acquire(ctx, locationID)
	if err != nil {
		return domain.Deck{}, nil, fmt.Errorf("acquire location lease: %w", err)
	}
	defer release()

	now := s.now()
	cutoff := now.AddDate(0, 0, -s.opts.FreshnessDays)
	candidates, err := s.questions.FindAvailable(ctx, eventID, locationID, cutoff)
	if err != nil {
		return domain.Deck{}, nil, fmt.Errorf("load candidates: %w", err)
	}
	s.scoreAll(candidates, now)

	pool := make([]domain.Question, len(candidates))
	copy(pool, candidates)

	main, rest := selectWithCoverage(pool, s.opts.MainTarget)
	novelty := selectNovelty(rest, s.opts.NoveltyTarget)
	selected := append(main, novelty...)

	if len(selected) < s.opts.DeckFloor {
		filled, err := s.fillGaps(ctx, eventID, selected, now)
		if err != nil {
			return domain.Deck{}, nil, fmt.Errorf("fill gaps: %w", err)
		}
		selected = append(selected, filled...)
	}
	if len(selected) == 0 {
		return domain.Deck{}, nil, domain.ErrEventNotFound
	}

	s.shuffle(selected)

	deck := domain.Deck{
		ID:          uuid.NewString(),
		EventID:     eventID,
		QuestionIDs: questionIDs(selected),
		CreatedAt:   now,
	}
	if err := s.createWithFreshCode(ctx, &deck); err != nil {
		return domain.Deck{}, nil, err
	}

	for _, q := range selected {
		if err := s.questions.RecordUsage(ctx, q.ID, locationID, now); err != nil {
			return domain.Deck{}, nil, fmt.Errorf("record usage for %s: %w", q.ID, err)
		}
		if err := s.questions.UpdatePerformance(ctx, q.ID, domain.PerformanceDelta{Views: 1}); err != nil {
			return domain.Deck{}, nil, fmt.Errorf("bump views for %s: %w", q.ID, err)
		}
	}

	return deck, selected, nil
}

// createWithFreshCode persists the deck, drawing a new access code on each
// collision up to the attempt budget.
func (s *DeckService) createWithFreshCode(ctx context.Context, deck *domain.Deck) error {
	for attempt := 0; attempt < s.opts.CodeAttempts; attempt++ {
		deck.AccessCode = s.randomCode()
		err := s.decks.Create(ctx, *deck)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrAccessCodeCollision) {
			continue
		}
		return fmt.Errorf("persist deck: %w", err)
	}
	return domain.ErrCodeSpaceExhausted
}

func (s *DeckService) randomCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := make([]byte, s.opts.CodeLength)
	for i := range code {
		code[i] = codeAlphabet[s.rnd.Intn(len(codeAlphabet))]
	}
	return string(code)
}

func (s *DeckService) shuffle(qs []domain.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rnd.Shuffle(len(qs), func(i, j int) {
		qs[i], qs[j] = qs[j], qs[i]
	})
}

// GetDeck resolves an access code to its deck and populated questions, in the
// persisted order.
func (s *DeckService) GetDeck(ctx context.Context, accessCode string) (domain.Deck, []domain.Question, error) {
	deck, err := s.decks.FindByAccessCode(ctx, accessCode)
	if err != nil {
		return domain.Deck{}, nil, err
	}
	questions, err := s.questions.FindByIDs(ctx, deck.QuestionIDs)
	if err != nil {
		return domain.Deck{}, nil, fmt.Errorf("load deck questions: %w", err)
	}
	return deck, questions, nil
}

// EventStats builds the organizer feedback report for an event.
func (s *DeckService) EventStats(ctx context.Context, eventID string) ([]domain.QuestionStats, error) {
	questions, err := s.questions.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	counts, err := s.feedback.CountsByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	stats := make([]domain.QuestionStats, 0, len(questions))
	for _, q := range questions {
		c := counts[q.ID]
		total := c.Likes + c.Dislikes
		pct := 0.0
		if total > 0 {
			pct = float64(c.Likes) / float64(total) * 100
		}
		stats = append(stats, domain.QuestionStats{
			QuestionID:  q.ID,
			Text:        q.Text,
			Category:    q.Category,
			DeckPhase:   q.DeckPhase,
			Likes:       c.Likes,
			Dislikes:    c.Dislikes,
			Total:       total,
			PositivePct: pct,
		})
	}
	return stats, nil
}

func questionIDs(qs []domain.Question) []string {
	ids := make([]string, len(qs))
	for i, q := range qs {
		ids[i] = q.ID
	}
	return ids
}
