package app_test

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"entalk-deck-service/internal/app"
	"entalk-deck-service/internal/domain"
	"entalk-deck-service/internal/generator"
	"entalk-deck-service/internal/infra/memory"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type testFixture struct {
	service   *app.DeckService
	questions *memory.QuestionStore
	decks     app.DeckStore
}

func newTestFixture(deckStore app.DeckStore, gen app.QuestionGenerator) *testFixture {
	questions := memory.NewQuestionStore()
	if deckStore == nil {
		deckStore = memory.NewDeckStore()
	}
	if gen == nil {
		gen = generator.NewTemplateGenerator()
	}
	service := app.NewDeckServiceWithClock(app.Dependencies{
		Questions: questions,
		Decks:     deckStore,
		Feedback:  memory.NewFeedbackStore(),
		Generator: gen,
		Locks:     memory.NewLocationGate(),
	}, app.Options{}, func() time.Time { return testNow }, rand.New(rand.NewSource(7)))
	return &testFixture{service: service, questions: questions, decks: deckStore}
}

func seedQuestions(t *testing.T, store *memory.QuestionStore, eventID string, n int) []domain.Question {
	t.Helper()
	cats := domain.Categories()
	phases := domain.DeckPhases()
	qs := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		qs = append(qs, domain.Question{
			EventID:   eventID,
			Text:      "Seed question?",
			Category:  cats[i%len(cats)],
			DeckPhase: phases[i%len(phases)],
			CreatedAt: testNow.AddDate(0, 0, -1),
		})
	}
	inserted, err := store.InsertMany(context.Background(), qs)
	if err != nil {
		t.Fatalf("seed questions: %v", err)
	}
	return inserted
}

func TestGenerateDeckReachesFloor(t *testing.T) {
	ctx := context.Background()
	fx := newTestFixture(nil, nil)
	seedQuestions(t, fx.questions, "event-1", 6)

	deck, questions, err := fx.service.GenerateDeck(ctx, "event-1", "loc-1")
	if err != nil {
		t.Fatalf("generate deck: %v", err)
	}
	if len(questions) != 15 {
		t.Fatalf("expected deck filled to 15, got %d", len(questions))
	}
	if len(deck.QuestionIDs) != 15 {
		t.Fatalf("expected 15 question IDs, got %d", len(deck.QuestionIDs))
	}

	if len(deck.AccessCode) != 6 {
		t.Fatalf("expected 6-char access code, got %q", deck.AccessCode)
	}
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	for _, r := range deck.AccessCode {
		if !strings.ContainsRune(alphabet, r) {
			t.Fatalf("access code %q contains %q outside the alphabet", deck.AccessCode, r)
		}
	}

	seen := map[string]bool{}
	for _, q := range questions {
		if seen[q.ID] {
			t.Fatalf("question %s appears twice in the deck", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestGenerateDeckBumpsViewsAndRecordsUsage(t *testing.T) {
	ctx := context.Background()
	fx := newTestFixture(nil, nil)
	seedQuestions(t, fx.questions, "event-1", 20)

	deck, _, err := fx.service.GenerateDeck(ctx, "event-1", "loc-1")
	if err != nil {
		t.Fatalf("generate deck: %v", err)
	}

	stored, err := fx.questions.FindByIDs(ctx, deck.QuestionIDs)
	if err != nil {
		t.Fatalf("load deck questions: %v", err)
	}
	for _, q := range stored {
		if q.Performance.Views != 1 {
			t.Fatalf("expected views bumped to 1, got %d", q.Performance.Views)
		}
		if !q.UsedSince("loc-1", testNow.AddDate(0, 0, -1)) {
			t.Fatalf("expected usage recorded at loc-1 for %s", q.ID)
		}
	}
}

func TestGenerateDeckExcludesRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	fx := newTestFixture(nil, nil)
	seeded := seedQuestions(t, fx.questions, "event-1", 20)

	first, _, err := fx.service.GenerateDeck(ctx, "event-1", "loc-1")
	if err != nil {
		t.Fatalf("first generation: %v", err)
	}
	second, _, err := fx.service.GenerateDeck(ctx, "event-1", "loc-1")
	if err != nil {
		t.Fatalf("second generation: %v", err)
	}

	used := map[string]bool{}
	for _, id := range first.QuestionIDs {
		used[id] = true
	}
	for _, id := range second.QuestionIDs {
		if used[id] {
			t.Fatalf("question %s reused within the freshness window", id)
		}
	}

	// The 5 seeded leftovers should all make the second deck.
	inSecond := map[string]bool{}
	for _, id := range second.QuestionIDs {
		inSecond[id] = true
	}
	leftovers := 0
	for _, q := range seeded {
		if !used[q.ID] && inSecond[q.ID] {
			leftovers++
		}
	}
	if leftovers != 5 {
		t.Fatalf("expected 5 unused seeds in the second deck, got %d", leftovers)
	}
}

type silentGenerator struct{}

func (silentGenerator) Generate(context.Context, []domain.Category, []domain.DeckPhase, int) []domain.GeneratedQuestion {
	return nil
}

func TestGenerateDeckEmptyEventFails(t *testing.T) {
	fx := newTestFixture(nil, silentGenerator{})
	_, _, err := fx.service.GenerateDeck(context.Background(), "event-unknown", "loc-1")
	if !errors.Is(err, domain.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

// collidingDeckStore rejects the first n creates with a code collision.
type collidingDeckStore struct {
	inner      app.DeckStore
	collisions int
	attempts   int
}

func (s *collidingDeckStore) Create(ctx context.Context, deck domain.Deck) error {
	s.attempts++
	if s.attempts <= s.collisions {
		return domain.ErrAccessCodeCollision
	}
	return s.inner.Create(ctx, deck)
}

func (s *collidingDeckStore) FindByAccessCode(ctx context.Context, code string) (domain.Deck, error) {
	return s.inner.FindByAccessCode(ctx, code)
}

func TestGenerateDeckRetriesOnCodeCollision(t *testing.T) {
	decks := &collidingDeckStore{inner: memory.NewDeckStore(), collisions: 2}
	fx := newTestFixture(decks, nil)
	seedQuestions(t, fx.questions, "event-1", 6)

	deck, _, err := fx.service.GenerateDeck(context.Background(), "event-1", "loc-1")
	if err != nil {
		t.Fatalf("generate deck: %v", err)
	}
	if decks.attempts != 3 {
		t.Fatalf("expected 3 create attempts, got %d", decks.attempts)
	}
	if deck.AccessCode == "" {
		t.Fatalf("expected an access code after retries")
	}
}

func TestGenerateDeckGivesUpAfterCollisionBudget(t *testing.T) {
	decks := &collidingDeckStore{inner: memory.NewDeckStore(), collisions: 1 << 20}
	fx := newTestFixture(decks, nil)
	seedQuestions(t, fx.questions, "event-1", 6)

	_, _, err := fx.service.GenerateDeck(context.Background(), "event-1", "loc-1")
	if !errors.Is(err, domain.ErrCodeSpaceExhausted) {
		t.Fatalf("expected ErrCodeSpaceExhausted, got %v", err)
	}
	if decks.attempts != 5 {
		t.Fatalf("expected 5 attempts, got %d", decks.attempts)
	}
}

func TestGetDeckReturnsQuestionsInPersistedOrder(t *testing.T) {
	ctx := context.Background()
	fx := newTestFixture(nil, nil)
	seedQuestions(t, fx.questions, "event-1", 20)

	deck, _, err := fx.service.GenerateDeck(ctx, "event-1", "loc-1")
	if err != nil {
		t.Fatalf("generate deck: %v", err)
	}

	got, questions, err := fx.service.GetDeck(ctx, deck.AccessCode)
	if err != nil {
		t.Fatalf("get deck: %v", err)
	}
	if got.ID != deck.ID {
		t.Fatalf("expected deck %s, got %s", deck.ID, got.ID)
	}
	for i, q := range questions {
		if q.ID != deck.QuestionIDs[i] {
			t.Fatalf("position %d: expected %s, got %s", i, deck.QuestionIDs[i], q.ID)
		}
	}

	_, _, err = fx.service.GetDeck(ctx, "NOPE42")
	if !errors.Is(err, domain.ErrDeckNotFound) {
		t.Fatalf("expected ErrDeckNotFound, got %v", err)
	}
}

func TestRecordFeedbackUpdatesTalliesAndStats(t *testing.T) {
	ctx := context.Background()
	fx := newTestFixture(nil, nil)
	seedQuestions(t, fx.questions, "event-1", 20)

	deck, _, err := fx.service.GenerateDeck(ctx, "event-1", "loc-1")
	if err != nil {
		t.Fatalf("generate deck: %v", err)
	}

	updates, cancel, err := fx.service.Subscribe(ctx, deck.AccessCode)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()
	<-updates // initial snapshot

	target := deck.QuestionIDs[0]
	summary, err := fx.service.RecordFeedback(ctx, deck.AccessCode, domain.Feedback{
		QuestionID: target,
		LocationID: "loc-1",
		Kind:       domain.FeedbackLike,
	})
	if err != nil {
		t.Fatalf("record feedback: %v", err)
	}
	if summary.Tallies[0].QuestionID != target || summary.Tallies[0].Likes != 1 {
		t.Fatalf("expected 1 like on %s, got %+v", target, summary.Tallies[0])
	}

	update := <-updates
	if update.Tallies[0].Likes != 1 {
		t.Fatalf("expected broadcast with 1 like, got %+v", update.Tallies[0])
	}

	stats, err := fx.service.EventStats(ctx, "event-1")
	if err != nil {
		t.Fatalf("event stats: %v", err)
	}
	found := false
	for _, line := range stats {
		if line.QuestionID != target {
			continue
		}
		found = true
		if line.Likes != 1 || line.Total != 1 || line.PositivePct != 100 {
			t.Fatalf("expected 1/1 likes at 100%%, got %+v", line)
		}
	}
	if !found {
		t.Fatalf("expected stats line for %s", target)
	}
}

func TestRecordFeedbackRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	fx := newTestFixture(nil, nil)
	seedQuestions(t, fx.questions, "event-1", 20)

	deck, _, err := fx.service.GenerateDeck(ctx, "event-1", "loc-1")
	if err != nil {
		t.Fatalf("generate deck: %v", err)
	}

	_, err = fx.service.RecordFeedback(ctx, deck.AccessCode, domain.Feedback{QuestionID: deck.QuestionIDs[0], Kind: "meh"})
	if !errors.Is(err, domain.ErrInvalidFeedback) {
		t.Fatalf("expected ErrInvalidFeedback, got %v", err)
	}

	_, err = fx.service.RecordFeedback(ctx, deck.AccessCode, domain.Feedback{QuestionID: "not-in-deck", Kind: domain.FeedbackLike})
	if !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}

	_, err = fx.service.RecordFeedback(ctx, "NOPE42", domain.Feedback{QuestionID: deck.QuestionIDs[0], Kind: domain.FeedbackLike})
	if !errors.Is(err, domain.ErrDeckNotFound) {
		t.Fatalf("expected ErrDeckNotFound, got %v", err)
	}
}

// overlapStore flags concurrent candidate reads, which the location lease
// must prevent.
type overlapStore struct {
	*memory.QuestionStore
	active  int32
	overlap int32
}

func (s *overlapStore) FindAvailable(ctx context.Context, eventID, locationID string, cutoff time.Time) ([]domain.Question, error) {
	if atomic.AddInt32(&s.active, 1) > 1 {
		atomic.StoreInt32(&s.overlap, 1)
	}
	time.Sleep(10 * time.Millisecond)
	atomic.AddInt32(&s.active, -1)
	return s.QuestionStore.FindAvailable(ctx, eventID, locationID, cutoff)
}

func TestGenerateDeckSerializesPerLocation(t *testing.T) {
	ctx := context.Background()
	questions := &overlapStore{QuestionStore: memory.NewQuestionStore()}
	service := app.NewDeckServiceWithClock(app.Dependencies{
		Questions: questions,
		Decks:     memory.NewDeckStore(),
		Feedback:  memory.NewFeedbackStore(),
		Generator: generator.NewTemplateGenerator(),
		Locks:     memory.NewLocationGate(),
	}, app.Options{}, func() time.Time { return testNow }, rand.New(rand.NewSource(7)))

	qs := make([]domain.Question, 40)
	for i := range qs {
		qs[i] = domain.Question{
			EventID:   "event-1",
			Text:      "Seed question?",
			Category:  domain.Categories()[i%6],
			DeckPhase: domain.DeckPhases()[i%4],
			CreatedAt: testNow.AddDate(0, 0, -1),
		}
	}
	if _, err := questions.InsertMany(ctx, qs); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := service.GenerateDeck(ctx, "event-1", "loc-1"); err != nil {
				t.Errorf("generate deck: %v", err)
			}
		}()
	}
	wg.Wait()

	if atomic.LoadInt32(&questions.overlap) != 0 {
		t.Fatalf("candidate reads overlapped despite the location lease")
	}
}
