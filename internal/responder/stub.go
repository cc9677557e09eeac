package responder

import (
	"context"
	"fmt"

	"github.com/Pab1o16/turing-chat/internal/model"
)

// StubMarker prefixes every stub reply.
const StubMarker = "[AI stub]"

// Stub echoes the prompt without any network I/O.
type Stub struct{}

func NewStub() *Stub {
	return &Stub{}
}

func (s *Stub) Name() string {
	return "stub"
}

func (s *Stub) Respond(ctx context.Context, prompt string, history []model.Message, systemPrompt string) (string, error) {
	if systemPrompt == "" {
		return fmt.Sprintf("%s You said: %s", StubMarker, prompt), nil
	}
	return fmt.Sprintf("%s (%s) You said: %s", StubMarker, systemPrompt, prompt), nil
}
