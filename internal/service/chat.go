package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/Pab1o16/turing-chat/internal/errors"
	"github.com/Pab1o16/turing-chat/internal/model"
	"github.com/Pab1o16/turing-chat/internal/repository"
	"github.com/Pab1o16/turing-chat/internal/responder"
)

type ChatConfig struct {
	DefaultMode  string
	SystemPrompt string
}

// ChatResult is the outcome of a user turn. Reply and I are set only for AI
// sessions.
type ChatResult struct {
	Reply  string `json:"reply,omitempty"`
	I      int64  `json:"i,omitempty"`
	Queued bool   `json:"queued"`
}

type PollResult struct {
	Items            []model.Message `json:"items"`
	AwaitingOperator bool            `json:"awaitingOperator"`
}

type TranscriptResult struct {
	SessionID string          `json:"sessionId"`
	Messages  []model.Message `json:"messages"`
	Condition model.Condition `json:"condition"`
}

// ChatService routes user turns to the responder or the operator queue.
type ChatService struct {
	sessions  repository.SessionRepository
	responder responder.Responder
	events    EventPublisher
	cfg       ChatConfig
}

func NewChatService(
	sessions repository.SessionRepository,
	resp responder.Responder,
	events EventPublisher,
	cfg ChatConfig,
) *ChatService {
	return &ChatService{
		sessions:  sessions,
		responder: resp,
		events:    events,
		cfg:       cfg,
	}
}

// CreateSession falls back to the configured default mode when modeHint is
// empty.
func (s *ChatService) CreateSession(ctx context.Context, modeHint string) (*model.Session, error) {
	if strings.TrimSpace(modeHint) == "" {
		modeHint = s.cfg.DefaultMode
	}

	session, err := s.sessions.Create(ctx, model.CreateSessionParams{
		ModeHint:     modeHint,
		SystemPrompt: s.cfg.SystemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	log.Info().
		Str("sessionId", session.ID).
		Str("condition", string(session.Condition)).
		Str("modeHint", modeHint).
		Msg("session created")

	return session, nil
}

func (s *ChatService) HandleUserMessage(ctx context.Context, sessionID, text string) (*ChatResult, error) {
	var missing []string
	if sessionID == "" {
		missing = append(missing, "sessionId")
	}
	if strings.TrimSpace(text) == "" {
		missing = append(missing, "text")
	}
	if len(missing) > 0 {
		return nil, apperrors.MissingFields(missing...)
	}

	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	userMsg, err := s.append(ctx, sessionID, model.RoleUser, text)
	if err != nil {
		return nil, err
	}

	if session.Condition == model.ConditionHuman {
		publishInbox(s.events, sessionID, true)
		log.Info().
			Str("sessionId", sessionID).
			Int64("i", userMsg.I).
			Msg("user message queued for operator")
		return &ChatResult{Queued: true}, nil
	}

	history := responderHistory(session.Messages)

	start := time.Now()
	reply, err := s.responder.Respond(ctx, userMsg.Text, history, session.SystemPrompt)
	if err != nil {
		log.Error().
			Err(err).
			Str("sessionId", sessionID).
			Str("responder", s.responder.Name()).
			Dur("elapsed", time.Since(start)).
			Msg("responder failed")
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "Responder failed", err)
	}

	aiMsg, err := s.append(ctx, sessionID, model.RoleAI, reply)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("sessionId", sessionID).
		Str("responder", s.responder.Name()).
		Int64("i", aiMsg.I).
		Dur("elapsed", time.Since(start)).
		Msg("ai reply appended")

	return &ChatResult{Reply: aiMsg.Text, I: aiMsg.I}, nil
}

func (s *ChatService) Poll(ctx context.Context, sessionID string, after int64) (*PollResult, error) {
	if sessionID == "" {
		return nil, apperrors.MissingFields("sessionId")
	}

	items, awaiting, err := s.sessions.FindMessagesSince(ctx, sessionID, after)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, apperrors.NotFound("Session")
	}
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}

	return &PollResult{Items: items, AwaitingOperator: awaiting}, nil
}

func (s *ChatService) OperatorReply(ctx context.Context, sessionID, text string) (*model.Message, error) {
	if sessionID == "" {
		return nil, apperrors.MissingFields("sessionId")
	}

	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Condition != model.ConditionHuman {
		return nil, apperrors.InvalidState("Session is not operator-handled")
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.InvalidInput("text", "must not be empty")
	}

	msg, err := s.append(ctx, sessionID, model.RoleHuman, text)
	if err != nil {
		return nil, err
	}
	publishInbox(s.events, sessionID, false)

	log.Info().
		Str("sessionId", sessionID).
		Int64("i", msg.I).
		Msg("operator reply appended")

	return msg, nil
}

func (s *ChatService) Transcript(ctx context.Context, sessionID string) (*TranscriptResult, error) {
	if sessionID == "" {
		return nil, apperrors.MissingFields("sessionId")
	}

	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &TranscriptResult{
		SessionID: session.ID,
		Messages:  session.Messages,
		Condition: session.Condition,
	}, nil
}

func (s *ChatService) SessionCount(ctx context.Context) (int, error) {
	return s.sessions.Count(ctx)
}

func (s *ChatService) ResponderName() string {
	return s.responder.Name()
}

func (s *ChatService) findSession(ctx context.Context, sessionID string) (*model.Session, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Session")
	}
	return session, nil
}

func (s *ChatService) append(ctx context.Context, sessionID string, role model.Role, text string) (*model.Message, error) {
	msg, err := s.sessions.AppendMessage(ctx, sessionID, role, text)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, apperrors.NotFound("Session")
	}
	if err != nil {
		return nil, fmt.Errorf("append %s message: %w", role, err)
	}
	publishMessage(s.events, sessionID, msg)
	return msg, nil
}

// responderHistory replays user and operator turns only; the responder never
// sees its own earlier output.
func responderHistory(messages []model.Message) []model.Message {
	history := make([]model.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == model.RoleAI {
			continue
		}
		history = append(history, m)
	}
	return history
}
