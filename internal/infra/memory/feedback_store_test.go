package memory

import (
	"context"
	"testing"

	"entalk-deck-service/internal/domain"
)

func TestFeedbackCountsByEvent(t *testing.T) {
	ctx := context.Background()
	store := NewFeedbackStore()

	entries := []domain.Feedback{
		{QuestionID: "q1", EventID: "event-1", Kind: domain.FeedbackLike},
		{QuestionID: "q1", EventID: "event-1", Kind: domain.FeedbackLike},
		{QuestionID: "q1", EventID: "event-1", Kind: domain.FeedbackDislike},
		{QuestionID: "q2", EventID: "event-1", Kind: domain.FeedbackDislike},
		{QuestionID: "q1", EventID: "event-2", Kind: domain.FeedbackLike},
	}
	for _, fb := range entries {
		if err := store.Append(ctx, fb); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	counts, err := store.CountsByEvent(ctx, "event-1")
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if c := counts["q1"]; c.Likes != 2 || c.Dislikes != 1 {
		t.Fatalf("unexpected q1 counts: %+v", c)
	}
	if c := counts["q2"]; c.Likes != 0 || c.Dislikes != 1 {
		t.Fatalf("unexpected q2 counts: %+v", c)
	}
	if _, ok := counts["q3"]; ok {
		t.Fatalf("unexpected entry for q3")
	}
}
