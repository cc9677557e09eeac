package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Pab1o16/turing-chat/internal/model"
	"github.com/Pab1o16/turing-chat/internal/repository"
)

type InboxItem struct {
	SessionID    string    `json:"sessionId"`
	LastUserText string    `json:"lastUserText"`
	LastAt       time.Time `json:"lastAt"`
}

// InboxService lists Human sessions waiting for an operator reply.
type InboxService struct {
	sessions repository.SessionRepository
}

func NewInboxService(sessions repository.SessionRepository) *InboxService {
	return &InboxService{sessions: sessions}
}

// List is recomputed on every call, most recent user turn first.
func (s *InboxService) List(ctx context.Context) ([]InboxItem, error) {
	sessions, err := s.sessions.FindAwaiting(ctx)
	if err != nil {
		return nil, fmt.Errorf("find awaiting sessions: %w", err)
	}

	items := make([]InboxItem, 0, len(sessions))
	for _, session := range sessions {
		if session.Condition != model.ConditionHuman || !session.AwaitingOperator {
			continue
		}

		item := InboxItem{SessionID: session.ID, LastAt: session.CreatedAt}
		if msg, ok := session.LastUserMessage(); ok {
			item.LastUserText = msg.Text
			item.LastAt = msg.T
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].LastAt.After(items[j].LastAt)
	})

	return items, nil
}
