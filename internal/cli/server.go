package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"entalk-deck-service/internal/app"
	"entalk-deck-service/internal/config"
	"entalk-deck-service/internal/generator"
	"entalk-deck-service/internal/infra/memory"
	"entalk-deck-service/internal/infra/postgres"
	rediscache "entalk-deck-service/internal/infra/redis"
	transport "entalk-deck-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the deck server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var (
		questions app.QuestionStore
		decks     app.DeckStore
		feedback  app.FeedbackStore
		loader    rediscache.DeckLoader
	)
	if cfg.Postgres.URL != "" {
		db := openBun(cfg.Postgres.URL)
		questions = postgres.NewQuestionStore(db)
		decks = postgres.NewDeckStore(db)
		feedback = postgres.NewFeedbackStore(db)
		// Cache misses read through pgx rather than the bun write path.
		loader = postgres.NewDeckLoader(pool)
	} else {
		questions = memory.NewQuestionStore()
		memDecks := memory.NewDeckStore()
		decks = memDecks
		feedback = memory.NewFeedbackStore()
		loader = memDecks
	}

	if redisClient != nil {
		deckTTL := config.Duration(cfg.Redis.TTL, 24*time.Hour)
		decks = rediscache.NewDeckCache(redisClient, decks, loader, deckTTL)
	}

	var locks app.LocationLocker
	if redisClient != nil {
		lockTTL := config.Duration(cfg.Redis.LockTTL, 30*time.Second)
		locks = rediscache.NewLocationLock(redisClient, lockTTL)
	} else {
		locks = memory.NewLocationGate()
	}

	apiKey := cfg.OpenAI.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	gen := generator.NewOpenAIGenerator(apiKey, cfg.OpenAI.Model, config.Duration(cfg.OpenAI.Timeout, 20*time.Second))

	service := app.NewDeckService(app.Dependencies{
		Questions: questions,
		Decks:     decks,
		Feedback:  feedback,
		Generator: gen,
		Locks:     locks,
	}, app.Options{
		FreshnessDays: cfg.Deck.FreshnessDays,
		MainTarget:    cfg.Deck.MainTarget,
		NoveltyTarget: cfg.Deck.NoveltyTarget,
		DeckFloor:     cfg.Deck.Floor,
		CodeAttempts:  cfg.Deck.CodeAttempts,
	})

	handler := transport.NewHandler(service)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting deck service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
