package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/fredrikfh/Quizzma/internal/adapter/postgres"
	"github.com/fredrikfh/Quizzma/internal/adapter/redis"
	"github.com/fredrikfh/Quizzma/internal/analysis"
	"github.com/fredrikfh/Quizzma/internal/app"
	"github.com/fredrikfh/Quizzma/internal/config"
	"github.com/fredrikfh/Quizzma/internal/domain"
	"github.com/fredrikfh/Quizzma/internal/logging"
	"github.com/fredrikfh/Quizzma/internal/processing/llm"
	"github.com/fredrikfh/Quizzma/internal/processing/sentiment"
	"github.com/fredrikfh/Quizzma/internal/processing/topics"
	"github.com/fredrikfh/Quizzma/internal/server"
	"github.com/fredrikfh/Quizzma/internal/session"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

// engines bundles the analysis implementations selected by configuration.
type engines struct {
	sentiment    domain.SentimentEngine
	topics       domain.TopicEngine
	summarizer   domain.Summarizer
	formatter    domain.ImportFormatter
	preprocessor domain.Preprocessor
}

func setupEngines(ctx context.Context, cfg *config.Config) engines {
	e := engines{
		sentiment:  sentiment.NewLexiconEngine(),
		topics:     topics.NewLexicalEngine(),
		summarizer: analysis.DisabledSummarizer{},
		formatter:  analysis.DisabledFormatter{},
	}

	if !cfg.LLMEnabled() {
		slog.Info("No LLM configured; summaries, preprocessing and imports are disabled")
		return e
	}

	client, err := llm.NewClient(ctx, llm.Config{
		APIKey:  cfg.ArkAPIKey,
		Model:   cfg.ArkModel,
		BaseURL: cfg.ArkBaseURL,
	}, slog.Default())
	if err != nil {
		slog.Error("Failed to create LLM client", "error", err)
		os.Exit(1)
	}

	e.summarizer = must(llm.NewSummarizer(ctx, client))
	e.formatter = must(llm.NewImportFormatter(ctx, client))
	e.preprocessor = must(llm.NewPreprocessor(ctx, client))

	if cfg.TopicEngine == "llm" {
		e.topics = must(llm.NewTopicModeller(ctx, client))
	}

	return e
}

func must[T any](v T, err error) T {
	if err != nil {
		slog.Error("Failed to initialize LLM component", "error", err)
		os.Exit(1)
	}
	return v
}

func runGracefulShutdown(srv *server.Server, sessions *session.Manager, cleanup func()) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		sessions.KillAll("Server is shutting down")
		cleanup()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)

	ctx := context.Background()
	eng := setupEngines(ctx, cfg)

	store := postgres.NewStore(pool)
	quizzes := postgres.NewQuizRepo(pool)
	orchestrator := analysis.NewOrchestrator(eng.sentiment, eng.topics, eng.summarizer, eng.formatter, clock)

	var limiter server.AnswerLimiter
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		var err error
		redisClient, err = redis.NewClient(cfg.RedisURL)
		if err != nil {
			slog.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		if err := redisClient.Ping(ctx); err != nil {
			slog.Error("Failed to ping Redis", "error", err)
			os.Exit(1)
		}
		limiter = redis.NewAnswerRateLimiter(redisClient, clock, cfg.AnswerRateCapacity, cfg.AnswerRatePerMin)
	}

	var svc *app.Service
	sessions := session.NewManager(session.ManagerConfig{
		Clock:         clock,
		Preprocessor:  eng.preprocessor,
		Sentiment:     func(ctx context.Context, prepared []domain.AnalysisAnswer) error { return svc.SentimentTask(ctx, prepared) },
		BatchInterval: cfg.BatchInterval,
	})
	svc = app.NewService(quizzes, store, orchestrator, eng.preprocessor, sessions, cfg.AdminUserIDs)

	verifier := server.NewStaticVerifier(cfg.AuthTokens)
	srv := server.NewServer(cfg, svc, verifier, limiter, clock)

	done := runGracefulShutdown(srv, sessions, func() {
		pool.Close()
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				slog.Error("Failed to close Redis client", "error", err)
			}
		}
	})

	if err := srv.Start(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}

	<-done
	slog.Info("Shutdown complete")
}
