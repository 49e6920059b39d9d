package generator

import (
	"context"
	"fmt"
	"strings"

	"entalk-deck-service/internal/domain"
)

// TemplateGenerator is the deterministic fallback: it interpolates the missing
// category and phase into fixed templates, so the pipeline keeps producing
// usable questions with no network at all.
type TemplateGenerator struct{}

func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

var leadIns = []string{
	"What do you think about",
	"How would you describe",
	"What has shaped your view of",
	"What do you enjoy most about",
	"What surprises people about",
}

// Generate implements app.QuestionGenerator. Output is fully determined by
// the inputs; repeated calls with the same arguments return the same texts.
func (t *TemplateGenerator) Generate(_ context.Context, categories []domain.Category, phases []domain.DeckPhase, count int) []domain.GeneratedQuestion {
	if count <= 0 {
		return nil
	}
	if len(categories) == 0 {
		categories = domain.Categories()
	}
	if len(phases) == 0 {
		phases = domain.DeckPhases()
	}

	out := make([]domain.GeneratedQuestion, 0, count)
	for i := 0; i < count; i++ {
		cat := categories[i%len(categories)]
		phase := phases[i%len(phases)]
		out = append(out, domain.GeneratedQuestion{
			Text:      fmt.Sprintf("%s %s topics %s?", leadIns[i%len(leadIns)], strings.ToLower(string(cat)), phaseAngle(phase)),
			Category:  cat,
			DeckPhase: phase,
		})
	}
	return out
}

func phaseAngle(phase domain.DeckPhase) string {
	switch phase {
	case domain.PhaseWarmUp:
		return "when getting a conversation started"
	case domain.PhasePersonal:
		return "from your own experience"
	case domain.PhaseReflective:
		return "looking back on your life so far"
	case domain.PhaseChallenge:
		return "that most people find hard to talk about"
	}
	return "in relation to everyday life"
}
