package domain

import "time"

// Category is the thematic tag of a question.
type Category string

// DeckPhase is the conversational-stage tag of a question.
type DeckPhase string

const (
	CategoryIcebreaker   Category = "Icebreaker"
	CategoryPersonal     Category = "Personal"
	CategoryOpinion      Category = "Opinion"
	CategoryHypothetical Category = "Hypothetical"
	CategoryReflective   Category = "Reflective"
	CategoryCultural     Category = "Cultural"
)

const (
	PhaseWarmUp     DeckPhase = "Warm-Up"
	PhasePersonal   DeckPhase = "Personal"
	PhaseReflective DeckPhase = "Reflective"
	PhaseChallenge  DeckPhase = "Challenge"
)

// Categories returns the fixed category enumeration in canonical order.
func Categories() []Category {
	return []Category{
		CategoryIcebreaker,
		CategoryPersonal,
		CategoryOpinion,
		CategoryHypothetical,
		CategoryReflective,
		CategoryCultural,
	}
}

// DeckPhases returns the fixed phase enumeration in canonical order.
func DeckPhases() []DeckPhase {
	return []DeckPhase{
		PhaseWarmUp,
		PhasePersonal,
		PhaseReflective,
		PhaseChallenge,
	}
}

// UsageRecord marks one inclusion of a question in a deck at a location.
type UsageRecord struct {
	LocationID string    `json:"locationId"`
	UsedAt     time.Time `json:"usedAt"`
}

// Performance holds the aggregated feedback counters of a question.
// Score is derived; it is recomputed before every selection pass and
// must never be trusted stale.
type Performance struct {
	Views    int     `json:"views"`
	Likes    int     `json:"likes"`
	Dislikes int     `json:"dislikes"`
	Score    float64 `json:"score"`
}

// PerformanceDelta is an increment applied to a question's counters.
type PerformanceDelta struct {
	Views    int
	Likes    int
	Dislikes int
}

// Question is a conversation prompt owned by an event.
type Question struct {
	ID           string        `json:"id"`
	EventID      string        `json:"eventId"`
	Text         string        `json:"text"`
	Category     Category      `json:"category"`
	DeckPhase    DeckPhase     `json:"deckPhase"`
	IsNovelty    bool          `json:"isNovelty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UsageHistory []UsageRecord `json:"usageHistory,omitempty"`
	Performance  Performance   `json:"performance"`
}

// LastUsedAt reports the most recent usage of the question at a location.
func (q Question) LastUsedAt(locationID string) (time.Time, bool) {
	var last time.Time
	found := false
	for _, u := range q.UsageHistory {
		if u.LocationID == locationID && u.UsedAt.After(last) {
			last = u.UsedAt
			found = true
		}
	}
	return last, found
}

// UsedSince reports whether the question was used at the location after cutoff.
func (q Question) UsedSince(locationID string, cutoff time.Time) bool {
	last, ok := q.LastUsedAt(locationID)
	return ok && last.After(cutoff)
}

// Deck is an access-coded bundle of questions generated for one event at one
// location. The access code is the only way participants reach it; decks are
// immutable after creation and QuestionIDs keeps the persisted order.
type Deck struct {
	ID          string    `json:"id"`
	AccessCode  string    `json:"accessCode"`
	EventID     string    `json:"eventId"`
	QuestionIDs []string  `json:"questions"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FeedbackKind is a participant's reaction to a question.
type FeedbackKind string

const (
	FeedbackLike    FeedbackKind = "like"
	FeedbackDislike FeedbackKind = "dislike"
)

// Valid reports whether the kind is one of the known reactions.
func (k FeedbackKind) Valid() bool {
	return k == FeedbackLike || k == FeedbackDislike
}

// Feedback is one like/dislike event from a participant. Append-only.
type Feedback struct {
	ID            string       `json:"id"`
	QuestionID    string       `json:"questionId"`
	EventID       string       `json:"eventId"`
	LocationID    string       `json:"locationId"`
	Kind          FeedbackKind `json:"kind"`
	ParticipantID string       `json:"participantId,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// FeedbackCounts is the like/dislike tally for one question.
type FeedbackCounts struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// QuestionStats is the organizer-facing feedback report line for a question.
type QuestionStats struct {
	QuestionID  string    `json:"questionId"`
	Text        string    `json:"text"`
	Category    Category  `json:"category"`
	DeckPhase   DeckPhase `json:"deckPhase"`
	Likes       int       `json:"likes"`
	Dislikes    int       `json:"dislikes"`
	Total       int       `json:"total"`
	PositivePct float64   `json:"positivePercentage"`
}

// QuestionTally pairs a question with its live tally in a deck session.
type QuestionTally struct {
	QuestionID string `json:"questionId"`
	Likes      int    `json:"likes"`
	Dislikes   int    `json:"dislikes"`
}

// FeedbackSummary is the snapshot broadcast to deck session subscribers.
type FeedbackSummary struct {
	AccessCode string          `json:"accessCode"`
	Tallies    []QuestionTally `json:"tallies"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// GeneratedQuestion is the generator's output before persistence.
type GeneratedQuestion struct {
	Text      string    `json:"text"`
	Category  Category  `json:"category"`
	DeckPhase DeckPhase `json:"deckPhase"`
}
