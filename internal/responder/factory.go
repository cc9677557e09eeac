package responder

import (
	"github.com/rs/zerolog/log"

	"github.com/Pab1o16/turing-chat/internal/config"
)

// New picks the responder variant once, from configuration.
func New(cfg *config.Config) Responder {
	if cfg.GeminiAPIKey == "" {
		log.Info().Msg("GEMINI_API_KEY not set, using stub responder")
		return NewStub()
	}

	log.Info().
		Str("model", cfg.GeminiModel).
		Dur("timeout", cfg.GeminiTimeout()).
		Msg("using gemini responder")
	return NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, cfg.GeminiTimeout())
}
