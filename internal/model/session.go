package model

import (
	"time"
)

type Session struct {
	ID               string    `json:"id"`
	Condition        Condition `json:"condition"`
	CreatedAt        time.Time `json:"createdAt"`
	SystemPrompt     string    `json:"systemPrompt,omitempty"`
	Messages         []Message `json:"messages"`
	AwaitingOperator bool      `json:"awaitingOperator"`
}

type CreateSessionParams struct {
	ModeHint     string
	SystemPrompt string
}

// Clone returns a copy that shares no message storage with s.
func (s *Session) Clone() *Session {
	c := *s
	c.Messages = make([]Message, len(s.Messages))
	copy(c.Messages, s.Messages)
	return &c
}

// LastMessage returns the most recent message, if any.
func (s *Session) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// LastUserMessage returns the most recent user-role message, if any.
func (s *Session) LastUserMessage() (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}
