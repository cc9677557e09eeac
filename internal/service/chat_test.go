package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Pab1o16/turing-chat/internal/errors"
	"github.com/Pab1o16/turing-chat/internal/model"
	"github.com/Pab1o16/turing-chat/internal/repository"
	"github.com/Pab1o16/turing-chat/internal/responder"
	"github.com/Pab1o16/turing-chat/internal/sse"
)

func newChatService(resp responder.Responder, cfg ChatConfig) (*ChatService, repository.SessionRepository, *recordingPublisher) {
	repo := repository.NewMemorySessionRepository()
	pub := &recordingPublisher{}
	return NewChatService(repo, resp, pub, cfg), repo, pub
}

func TestChatService_CreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("hint overrides default mode", func(t *testing.T) {
		svc, _, _ := newChatService(responder.NewStub(), ChatConfig{DefaultMode: "AI"})

		session, err := svc.CreateSession(ctx, "human")
		require.NoError(t, err)
		assert.Equal(t, model.ConditionHuman, session.Condition)
	})

	t.Run("empty hint falls back to default mode", func(t *testing.T) {
		svc, _, _ := newChatService(responder.NewStub(), ChatConfig{DefaultMode: "HUMAN", SystemPrompt: "sp"})

		session, err := svc.CreateSession(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, model.ConditionHuman, session.Condition)
		assert.Equal(t, "sp", session.SystemPrompt)
	})
}

func TestChatService_HumanSession(t *testing.T) {
	ctx := context.Background()
	resp := &mockResponder{}
	svc, _, pub := newChatService(resp, ChatConfig{})

	session, err := svc.CreateSession(ctx, "HUMAN")
	require.NoError(t, err)

	t.Run("user turn is queued for operator", func(t *testing.T) {
		result, err := svc.HandleUserMessage(ctx, session.ID, "hola")
		require.NoError(t, err)
		assert.True(t, result.Queued)
		assert.Empty(t, result.Reply)

		poll, err := svc.Poll(ctx, session.ID, 0)
		require.NoError(t, err)
		require.Len(t, poll.Items, 1)
		assert.Equal(t, model.RoleUser, poll.Items[0].Role)
		assert.True(t, poll.AwaitingOperator)
	})

	t.Run("operator reply clears awaiting flag", func(t *testing.T) {
		msg, err := svc.OperatorReply(ctx, session.ID, "hola, soy el operador")
		require.NoError(t, err)
		assert.Equal(t, model.RoleHuman, msg.Role)

		transcript, err := svc.Transcript(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ConditionHuman, transcript.Condition)
		require.Len(t, transcript.Messages, 2)
		assert.Equal(t, model.RoleUser, transcript.Messages[0].Role)
		assert.Equal(t, model.RoleHuman, transcript.Messages[1].Role)

		poll, err := svc.Poll(ctx, session.ID, 0)
		require.NoError(t, err)
		assert.False(t, poll.AwaitingOperator)
	})

	t.Run("new user turn reopens the session", func(t *testing.T) {
		_, err := svc.HandleUserMessage(ctx, session.ID, "otra pregunta")
		require.NoError(t, err)

		poll, err := svc.Poll(ctx, session.ID, 0)
		require.NoError(t, err)
		assert.True(t, poll.AwaitingOperator)
	})

	t.Run("responder is never called", func(t *testing.T) {
		resp.AssertNotCalled(t, "Respond", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("appends are published", func(t *testing.T) {
		assert.Equal(t, []string{
			sse.EventMessage, sse.EventInbox,
			sse.EventMessage, sse.EventInbox,
			sse.EventMessage, sse.EventInbox,
		}, pub.types())
	})
}

func TestChatService_AISession(t *testing.T) {
	ctx := context.Background()

	t.Run("stub reply is appended", func(t *testing.T) {
		svc, _, _ := newChatService(responder.NewStub(), ChatConfig{})
		session, err := svc.CreateSession(ctx, "AI")
		require.NoError(t, err)

		result, err := svc.HandleUserMessage(ctx, session.ID, "hola")
		require.NoError(t, err)
		assert.False(t, result.Queued)
		assert.Contains(t, result.Reply, responder.StubMarker)
		assert.Contains(t, result.Reply, "hola")
		assert.NotZero(t, result.I)

		poll, err := svc.Poll(ctx, session.ID, 0)
		require.NoError(t, err)
		require.Len(t, poll.Items, 2)
		assert.Equal(t, model.RoleUser, poll.Items[0].Role)
		assert.Equal(t, model.RoleAI, poll.Items[1].Role)
		assert.Equal(t, result.I, poll.Items[1].I)
		assert.False(t, poll.AwaitingOperator)
	})

	t.Run("history excludes ai turns and the new prompt", func(t *testing.T) {
		resp := &mockResponder{}
		svc, _, _ := newChatService(resp, ChatConfig{SystemPrompt: "be brief"})
		session, err := svc.CreateSession(ctx, "AI")
		require.NoError(t, err)

		resp.On("Respond", mock.Anything, "first", []model.Message{}, "be brief").Return("r1", nil).Once()
		_, err = svc.HandleUserMessage(ctx, session.ID, "first")
		require.NoError(t, err)

		resp.On("Respond", mock.Anything, "second", mock.MatchedBy(func(h []model.Message) bool {
			return len(h) == 1 && h[0].Role == model.RoleUser && h[0].Text == "first"
		}), "be brief").Return("r2", nil).Once()

		result, err := svc.HandleUserMessage(ctx, session.ID, "second")
		require.NoError(t, err)
		assert.Equal(t, "r2", result.Reply)
		resp.AssertExpectations(t)
	})

	t.Run("responder failure keeps the user turn", func(t *testing.T) {
		resp := &mockResponder{}
		svc, _, _ := newChatService(resp, ChatConfig{})
		session, err := svc.CreateSession(ctx, "AI")
		require.NoError(t, err)

		resp.On("Respond", mock.Anything, "hola", mock.Anything, "").Return("", errors.New("boom"))

		_, err = svc.HandleUserMessage(ctx, session.ID, "hola")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInternal, apperrors.GetCode(err))

		poll, err := svc.Poll(ctx, session.ID, 0)
		require.NoError(t, err)
		require.Len(t, poll.Items, 1)
		assert.Equal(t, model.RoleUser, poll.Items[0].Role)
	})

	t.Run("responder app error passes through", func(t *testing.T) {
		resp := &mockResponder{}
		svc, _, _ := newChatService(resp, ChatConfig{})
		session, err := svc.CreateSession(ctx, "AI")
		require.NoError(t, err)

		upstream := apperrors.Internal("Gemini error 503")
		resp.On("Respond", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", upstream)

		_, err = svc.HandleUserMessage(ctx, session.ID, "hola")
		assert.Same(t, upstream, err)
	})
}

func TestChatService_HandleUserMessage_Errors(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newChatService(responder.NewStub(), ChatConfig{})
	session, err := svc.CreateSession(ctx, "HUMAN")
	require.NoError(t, err)

	t.Run("missing text appends nothing", func(t *testing.T) {
		for _, text := range []string{"", "   "} {
			_, err := svc.HandleUserMessage(ctx, session.ID, text)
			assert.Equal(t, apperrors.ErrCodeMissingFields, apperrors.GetCode(err))
		}

		items, _, err := repo.FindMessagesSince(ctx, session.ID, 0)
		require.NoError(t, err)
		assert.Empty(t, items)

		// the next append still receives the first sequence number
		_, err = svc.HandleUserMessage(ctx, session.ID, "hola")
		require.NoError(t, err)
		items, _, err = repo.FindMessagesSince(ctx, session.ID, 0)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, int64(1), items[0].I)
	})

	t.Run("missing session id", func(t *testing.T) {
		_, err := svc.HandleUserMessage(ctx, "", "hola")
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeMissingFields, appErr.Code)
		assert.Equal(t, map[string][]string{"fields": {"sessionId"}}, appErr.Details)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := svc.HandleUserMessage(ctx, "missing", "hola")
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})
}

func TestChatService_Poll(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newChatService(responder.NewStub(), ChatConfig{})
	session, err := svc.CreateSession(ctx, "AI")
	require.NoError(t, err)

	result, err := svc.HandleUserMessage(ctx, session.ID, "hola")
	require.NoError(t, err)

	t.Run("is idempotent", func(t *testing.T) {
		first, err := svc.Poll(ctx, session.ID, 0)
		require.NoError(t, err)
		second, err := svc.Poll(ctx, session.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("never returns items at or below cursor", func(t *testing.T) {
		poll, err := svc.Poll(ctx, session.ID, result.I)
		require.NoError(t, err)
		assert.Empty(t, poll.Items)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := svc.Poll(ctx, "missing", 0)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})
}

func TestChatService_OperatorReply_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newChatService(responder.NewStub(), ChatConfig{})
	ai, err := svc.CreateSession(ctx, "AI")
	require.NoError(t, err)
	human, err := svc.CreateSession(ctx, "HUMAN")
	require.NoError(t, err)

	t.Run("unknown session", func(t *testing.T) {
		_, err := svc.OperatorReply(ctx, "missing", "hola")
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})

	t.Run("AI session rejects operator reply", func(t *testing.T) {
		_, err := svc.OperatorReply(ctx, ai.ID, "hola")
		assert.Equal(t, apperrors.ErrCodeInvalidState, apperrors.GetCode(err))
	})

	t.Run("state is checked before text", func(t *testing.T) {
		_, err := svc.OperatorReply(ctx, ai.ID, "")
		assert.Equal(t, apperrors.ErrCodeInvalidState, apperrors.GetCode(err))
	})

	t.Run("blank text is invalid input", func(t *testing.T) {
		_, err := svc.OperatorReply(ctx, human.ID, "  ")
		assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(err))
	})

	t.Run("missing session id", func(t *testing.T) {
		_, err := svc.OperatorReply(ctx, "", "hola")
		assert.Equal(t, apperrors.ErrCodeMissingFields, apperrors.GetCode(err))
	})
}

func TestChatService_SlowResponderDoesNotBlockOtherSessions(t *testing.T) {
	ctx := context.Background()
	resp := newBlockingResponder()
	svc, _, _ := newChatService(resp, ChatConfig{})

	aiSession, err := svc.CreateSession(ctx, "AI")
	require.NoError(t, err)
	humanSession, err := svc.CreateSession(ctx, "HUMAN")
	require.NoError(t, err)

	type outcome struct {
		result *ChatResult
		err    error
	}
	aiDone := make(chan outcome, 1)
	go func() {
		result, err := svc.HandleUserMessage(ctx, aiSession.ID, "are you there?")
		aiDone <- outcome{result, err}
	}()

	select {
	case <-resp.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("responder was never called")
	}

	otherDone := make(chan error, 1)
	go func() {
		if _, err := svc.HandleUserMessage(ctx, humanSession.ID, "hello"); err != nil {
			otherDone <- err
			return
		}
		if _, err := svc.OperatorReply(ctx, humanSession.ID, "hi"); err != nil {
			otherDone <- err
			return
		}
		poll, err := svc.Poll(ctx, humanSession.ID, 0)
		if err == nil && len(poll.Items) != 2 {
			err = errors.New("unexpected poll size")
		}
		if err == nil {
			_, err = svc.Poll(ctx, aiSession.ID, 0)
		}
		otherDone <- err
	}()

	select {
	case err := <-otherDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		close(resp.release)
		t.Fatal("other session stalled behind the responder call")
	}

	t.Run("pending user turn is visible while the model works", func(t *testing.T) {
		poll, err := svc.Poll(ctx, aiSession.ID, 0)
		require.NoError(t, err)
		require.Len(t, poll.Items, 1)
		assert.Equal(t, model.RoleUser, poll.Items[0].Role)
	})

	close(resp.release)

	select {
	case got := <-aiDone:
		require.NoError(t, got.err)
		assert.Equal(t, "late reply", got.result.Reply)
	case <-time.After(2 * time.Second):
		t.Fatal("ai turn never completed")
	}
}
