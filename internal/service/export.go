package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	apperrors "github.com/Pab1o16/turing-chat/internal/errors"
	"github.com/Pab1o16/turing-chat/internal/model"
	"github.com/Pab1o16/turing-chat/internal/repository"
)

type Debrief struct {
	SessionID  string          `json:"sessionId"`
	Condition  model.Condition `json:"condition"`
	CreatedAt  time.Time       `json:"createdAt"`
	Transcript []model.Message `json:"transcript"`
}

type Export struct {
	ExportedAt time.Time       `json:"exportedAt"`
	Sessions   []model.Session `json:"sessions"`
}

// ExportService provides read-only projections for debriefing and audits.
type ExportService struct {
	sessions repository.SessionRepository
	now      func() time.Time
}

func NewExportService(sessions repository.SessionRepository) *ExportService {
	return &ExportService{sessions: sessions, now: time.Now}
}

func (s *ExportService) Debrief(ctx context.Context, sessionID string) (*Debrief, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Session")
	}

	return &Debrief{
		SessionID:  session.ID,
		Condition:  session.Condition,
		CreatedAt:  session.CreatedAt,
		Transcript: session.Messages,
	}, nil
}

// ExportAll dumps every session with every field. Sessions are ordered by
// creation time so repeated exports diff cleanly.
func (s *ExportService) ExportAll(ctx context.Context) (*Export, error) {
	sessions, err := s.sessions.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("find sessions: %w", err)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	return &Export{ExportedAt: s.now(), Sessions: sessions}, nil
}
