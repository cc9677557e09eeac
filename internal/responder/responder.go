package responder

import (
	"context"

	"github.com/Pab1o16/turing-chat/internal/model"
)

// Responder produces the automated reply for an AI session.
type Responder interface {
	// Name identifies the variant in logs and the health endpoint.
	Name() string

	// Respond answers prompt given the prior conversation. history never
	// contains the prompt itself.
	Respond(ctx context.Context, prompt string, history []model.Message, systemPrompt string) (string, error)
}
