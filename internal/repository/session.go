package repository

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Pab1o16/turing-chat/internal/model"
	"github.com/Pab1o16/turing-chat/internal/util"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository owns every session, its message log and the global
// message sequence. Returned values are snapshots.
type SessionRepository interface {
	Create(ctx context.Context, params model.CreateSessionParams) (*model.Session, error)
	FindByID(ctx context.Context, id string) (*model.Session, error)
	FindAll(ctx context.Context) ([]model.Session, error)
	FindAwaiting(ctx context.Context) ([]model.Session, error)
	AppendMessage(ctx context.Context, sessionID string, role model.Role, text string) (*model.Message, error)
	FindMessagesSince(ctx context.Context, sessionID string, after int64) ([]model.Message, bool, error)
	Count(ctx context.Context) (int, error)
}

// ConditionPicker chooses a condition when the mode hint does not force one.
type ConditionPicker func() model.Condition

// RandomCondition picks AI or Human with equal probability.
func RandomCondition() model.Condition {
	if rand.Intn(2) == 0 {
		return model.ConditionAI
	}
	return model.ConditionHuman
}

type Option func(*memorySessionRepo)

func WithConditionPicker(pick ConditionPicker) Option {
	return func(r *memorySessionRepo) { r.pick = pick }
}

func WithClock(now func() time.Time) Option {
	return func(r *memorySessionRepo) { r.now = now }
}

type memorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
	seq      int64

	pick ConditionPicker
	now  func() time.Time
}

func NewMemorySessionRepository(opts ...Option) SessionRepository {
	r := &memorySessionRepo{
		sessions: make(map[string]*model.Session),
		pick:     RandomCondition,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *memorySessionRepo) Create(ctx context.Context, params model.CreateSessionParams) (*model.Session, error) {
	condition, ok := model.ConditionForHint(params.ModeHint)
	if !ok {
		condition = r.pick()
	}

	session := &model.Session{
		ID:           uuid.NewString(),
		Condition:    condition,
		CreatedAt:    r.now(),
		SystemPrompt: params.SystemPrompt,
		Messages:     []model.Message{},
	}

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()

	return session.Clone(), nil
}

func (r *memorySessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	return session.Clone(), nil
}

func (r *memorySessionRepo) FindAll(ctx context.Context) ([]model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]model.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, *s.Clone())
	}
	return sessions, nil
}

func (r *memorySessionRepo) FindAwaiting(ctx context.Context) ([]model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sessions []model.Session
	for _, s := range r.sessions {
		if s.AwaitingOperator {
			sessions = append(sessions, *s.Clone())
		}
	}
	return sessions, nil
}

// AppendMessage is the only mutator of message state. The sequence number,
// the append and the awaitingOperator update happen in one critical section.
func (r *memorySessionRepo) AppendMessage(ctx context.Context, sessionID string, role model.Role, text string) (*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	r.seq++
	msg := model.Message{
		I:    r.seq,
		Role: role,
		Text: util.Truncate(text, model.MaxMessageLength),
		T:    r.now(),
	}
	session.Messages = append(session.Messages, msg)

	switch role {
	case model.RoleUser:
		session.AwaitingOperator = session.Condition == model.ConditionHuman
	case model.RoleHuman:
		session.AwaitingOperator = false
	}

	return &msg, nil
}

func (r *memorySessionRepo) FindMessagesSince(ctx context.Context, sessionID string, after int64) ([]model.Message, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, false, ErrSessionNotFound
	}

	// Sequence numbers grow with append order.
	start := sort.Search(len(session.Messages), func(i int) bool {
		return session.Messages[i].I > after
	})
	items := make([]model.Message, len(session.Messages)-start)
	copy(items, session.Messages[start:])

	return items, session.AwaitingOperator, nil
}

func (r *memorySessionRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions), nil
}
