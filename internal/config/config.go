package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`

	// Session orchestration
	BatchInterval        time.Duration `env:"BATCH_INTERVAL" default:"20s"`
	MaxClientsPerSession int           `env:"MAX_CLIENTS_PER_SESSION" default:"500"`

	// Answer rate limiting (Redis token bucket, active when REDIS_URL is set)
	AnswerRateCapacity int `env:"ANSWER_RATE_CAPACITY" default:"5"`
	AnswerRatePerMin   int `env:"ANSWER_RATE_PER_MIN" default:"30"`

	// Analysis engines. TopicEngine selects the process-wide topic modelling
	// implementation at startup; there is no per-request switching.
	TopicEngine     string `env:"TOPIC_ENGINE" default:"lexical"`     // "lexical" or "llm"
	SentimentEngine string `env:"SENTIMENT_ENGINE" default:"lexicon"` // "lexicon"

	// LLM (Ark) credentials for summarization, preprocessing, import
	// formatting and the llm topic engine.
	ArkAPIKey  string `env:"ARK_API_KEY"`
	ArkModel   string `env:"ARK_MODEL"`
	ArkBaseURL string `env:"ARK_BASE_URL"`

	// Host identities with read access to all quizzes.
	AdminUserIDs []string `env:"ADMIN_USER_IDS" sep:","`

	// Static identity tokens for the dev verifier ("token:userid" pairs).
	AuthTokens []string `env:"AUTH_TOKENS" sep:","`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	switch cfg.TopicEngine {
	case "lexical", "llm":
	default:
		return fmt.Errorf("TOPIC_ENGINE must be \"lexical\" or \"llm\", got %q", cfg.TopicEngine)
	}

	if cfg.TopicEngine == "llm" && cfg.ArkAPIKey == "" {
		return fmt.Errorf("ARK_API_KEY is required when TOPIC_ENGINE is \"llm\"")
	}

	if cfg.BatchInterval <= 0 {
		return fmt.Errorf("BATCH_INTERVAL must be positive, got %v", cfg.BatchInterval)
	}

	return nil
}

// LLMEnabled reports whether the Ark-backed engines can be constructed.
func (c *Config) LLMEnabled() bool {
	return c.ArkAPIKey != "" && c.ArkModel != ""
}
