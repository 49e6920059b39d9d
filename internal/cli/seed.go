package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"entalk-deck-service/internal/config"
	"entalk-deck-service/internal/domain"
	"entalk-deck-service/internal/infra/postgres"
	"github.com/spf13/cobra"
)

// NewSeedCmd loads a starter question set for an event.
func NewSeedCmd(configPath *string) *cobra.Command {
	var eventID string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert starter questions for an event",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, eventID)
		},
	}
	cmd.Flags().StringVar(&eventID, "event", "", "event to seed questions for")
	_ = cmd.MarkFlagRequired("event")
	return cmd
}

func runSeed(ctx context.Context, configPath, eventID string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	db := openBun(cfg.Postgres.URL)
	defer db.Close()

	store := postgres.NewQuestionStore(db)
	now := time.Now()
	questions := starterQuestions(eventID, now)
	inserted, err := store.InsertMany(ctx, questions)
	if err != nil {
		return err
	}
	log.Printf("seeded %d questions for event %s", len(inserted), eventID)
	return nil
}

func starterQuestions(eventID string, now time.Time) []domain.Question {
	type seed struct {
		text     string
		category domain.Category
		phase    domain.DeckPhase
		novelty  bool
	}
	seeds := []seed{
		{text: "What's one thing that made you smile this week?", category: domain.CategoryIcebreaker, phase: domain.PhaseWarmUp},
		{text: "If you could instantly master any skill, what would it be?", category: domain.CategoryIcebreaker, phase: domain.PhaseWarmUp},
		{text: "What's your go-to comfort food after a long day?", category: domain.CategoryIcebreaker, phase: domain.PhaseWarmUp},
		{text: "What's a small habit that has improved your life?", category: domain.CategoryPersonal, phase: domain.PhasePersonal},
		{text: "Who has influenced the way you see the world the most?", category: domain.CategoryPersonal, phase: domain.PhasePersonal},
		{text: "What's something you've changed your mind about recently?", category: domain.CategoryOpinion, phase: domain.PhasePersonal},
		{text: "Is it better to be a specialist or a generalist?", category: domain.CategoryOpinion, phase: domain.PhaseChallenge},
		{text: "If you woke up tomorrow in a new country, where would you hope it is?", category: domain.CategoryHypothetical, phase: domain.PhaseWarmUp},
		{text: "If you could have dinner with anyone from history, who would it be?", category: domain.CategoryHypothetical, phase: domain.PhaseChallenge},
		{text: "What's a moment from the past year you keep coming back to?", category: domain.CategoryReflective, phase: domain.PhaseReflective},
		{text: "What would your younger self be surprised to learn about you?", category: domain.CategoryReflective, phase: domain.PhaseReflective},
		{text: "What tradition from your culture do you wish more people knew about?", category: domain.CategoryCultural, phase: domain.PhasePersonal},
		{text: "What's a food from another culture you think everyone should try?", category: domain.CategoryCultural, phase: domain.PhaseWarmUp},
		{text: "What's the most unusual tradition you've ever participated in?", category: domain.CategoryCultural, phase: domain.PhasePersonal, novelty: true},
		{text: "If your life had a soundtrack, what song would be playing right now?", category: domain.CategoryHypothetical, phase: domain.PhaseWarmUp, novelty: true},
		{text: "What's a belief you held strongly that completely flipped?", category: domain.CategoryReflective, phase: domain.PhaseChallenge, novelty: true},
		{text: "What would you do with an extra hour every day that nobody else gets?", category: domain.CategoryHypothetical, phase: domain.PhaseReflective, novelty: true},
		{text: "What's something you find easy that most people find hard?", category: domain.CategoryPersonal, phase: domain.PhaseChallenge, novelty: true},
	}

	questions := make([]domain.Question, 0, len(seeds))
	for _, s := range seeds {
		questions = append(questions, domain.Question{
			EventID:   eventID,
			Text:      s.text,
			Category:  s.category,
			DeckPhase: s.phase,
			IsNovelty: s.novelty,
			CreatedAt: now,
		})
	}
	return questions
}
