package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"

	"github.com/Pab1o16/turing-chat/internal/model"
)

type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	DefaultMode  string `env:"DEFAULT_MODE" envDefault:"RANDOM"`
	SystemPrompt string `env:"SYSTEM_PROMPT"`

	GeminiAPIKey         string `env:"GEMINI_API_KEY"`
	GeminiModel          string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiBaseURL        string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	GeminiTimeoutSeconds int    `env:"GEMINI_TIMEOUT_SECONDS" envDefault:"0"`

	OperatorToken        string `env:"OPERATOR_TOKEN"`
	OperatorUser         string `env:"OPERATOR_USER" envDefault:"operator"`
	OperatorPasswordHash string `env:"OPERATOR_PASSWORD_HASH"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	RedisURL           string   `env:"REDIS_URL"`
	RateLimitPerMin    int      `env:"RATE_LIMIT_PER_MIN" envDefault:"60"`
	StaticDir          string   `env:"STATIC_DIR" envDefault:"static/operator"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// GeminiTimeout is zero when no timeout should be applied to model calls.
func (c *Config) GeminiTimeout() time.Duration {
	return time.Duration(c.GeminiTimeoutSeconds) * time.Second
}

// OperatorGateEnabled reports whether any operator credential is configured.
func (c *Config) OperatorGateEnabled() bool {
	return c.OperatorToken != "" || c.OperatorPasswordHash != ""
}

func (c *Config) Validate() error {
	if c.OperatorPasswordHash != "" {
		if !strings.HasPrefix(c.OperatorPasswordHash, "$2a$") &&
			!strings.HasPrefix(c.OperatorPasswordHash, "$2b$") &&
			!strings.HasPrefix(c.OperatorPasswordHash, "$2y$") {
			return fmt.Errorf("OPERATOR_PASSWORD_HASH must be a bcrypt hash (generate with: go run scripts/hash-password.go <password>)")
		}
	}

	switch strings.ToUpper(c.DefaultMode) {
	case model.ModeAI, model.ModeHuman, model.ModeRandom, "":
	default:
		return fmt.Errorf("DEFAULT_MODE must be one of AI, HUMAN, RANDOM (got %q)", c.DefaultMode)
	}

	if c.GeminiTimeoutSeconds < 0 {
		return fmt.Errorf("GEMINI_TIMEOUT_SECONDS must not be negative")
	}

	if !c.OperatorGateEnabled() {
		log.Warn().Msg("no OPERATOR_TOKEN or OPERATOR_PASSWORD_HASH configured: operator endpoints are open")
	}
	if c.OperatorToken != "" && len(c.OperatorToken) < 16 {
		log.Warn().Msg("OPERATOR_TOKEN is shorter than 16 characters")
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
