package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"survey-response-service/internal/app"
	"survey-response-service/internal/config"
	"survey-response-service/internal/domain"
	"survey-response-service/internal/infra/memory"
	pgstore "survey-response-service/internal/infra/postgres"
	redisstore "survey-response-service/internal/infra/redis"
	"survey-response-service/internal/logger"
	transport "survey-response-service/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the survey response server",
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

	log, err := logger.New(cfg.Env)
	if err != nil {
		return err
	}
	defer log.Sync()

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
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.SurveyLoader = memory.NewStaticSurveyLoader(sampleSurveys())
	if pool != nil {
		loader = pgstore.NewSurveyLoader(pool)
	}

	cacheTTL := config.TTLDuration(cfg.Survey.CacheTTL, 10*time.Minute)
	var surveyRepo app.SurveyRepository
	if redisClient != nil {
		surveyRepo = redisstore.NewSurveyRepository(redisClient, loader, cacheTTL)
	} else {
		surveyRepo = memory.NewSurveyRepository(loader, cacheTTL)
	}

	var responseStore app.ResponseStore
	if pool != nil {
		responseStore = pgstore.NewResponseStore(pool)
	} else {
		responseStore = memory.NewResponseStore()
	}
	if redisClient != nil {
		responseStore = redisstore.NewResponseGuard(redisClient, redisTTL, responseStore)
	}

	service := app.NewSurveyService(surveyRepo, responseStore)
	wsHandler := transport.NewWSHandler(service, log)

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	transport.NewSurveyHandler(service, log).Register(r)
	r.Get("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting survey response service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleSurveys provides demo content for running without a database.
func sampleSurveys() map[string]domain.Survey {
	return map[string]domain.Survey{
		"demo": {
			Topic: "Demo feedback survey",
			Questions: []domain.Question{
				{
					Type:    domain.QuestionMultipleChoice,
					Text:    "How did you hear about us?",
					Options: []string{"Search", "A friend", "Social media"},
				},
				{Type: domain.QuestionRating, Text: "How would you rate your experience?", Scale: 5},
				{Type: domain.QuestionOpenEnded, Text: "What should we improve?"},
			},
		},
	}
}
