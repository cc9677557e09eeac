package service

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/Pab1o16/turing-chat/internal/model"
	"github.com/Pab1o16/turing-chat/internal/sse"
)

type mockResponder struct {
	mock.Mock
}

func (m *mockResponder) Name() string {
	return "mock"
}

func (m *mockResponder) Respond(ctx context.Context, prompt string, history []model.Message, systemPrompt string) (string, error) {
	args := m.Called(ctx, prompt, history, systemPrompt)
	return args.String(0), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []sse.Event
}

func (p *recordingPublisher) Publish(topic string, event sse.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// blockingResponder parks every call until release is closed.
type blockingResponder struct {
	entered chan struct{}
	release chan struct{}
}

func newBlockingResponder() *blockingResponder {
	return &blockingResponder{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (b *blockingResponder) Name() string {
	return "blocking"
}

func (b *blockingResponder) Respond(ctx context.Context, prompt string, history []model.Message, systemPrompt string) (string, error) {
	b.entered <- struct{}{}
	select {
	case <-b.release:
		return "late reply", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
