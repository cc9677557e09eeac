package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Pab1o16/turing-chat/internal/audit"
	"github.com/Pab1o16/turing-chat/internal/middleware"
	"github.com/Pab1o16/turing-chat/internal/service"
)

type OperatorHandler struct {
	chatService  *service.ChatService
	inboxService *service.InboxService
	events       http.Handler
}

func NewOperatorHandler(chatService *service.ChatService, inboxService *service.InboxService, events http.Handler) *OperatorHandler {
	return &OperatorHandler{
		chatService:  chatService,
		inboxService: inboxService,
		events:       events,
	}
}

// Routes expects to be mounted behind the operator gate.
func (h *OperatorHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/inbox", h.Inbox)
	r.Get("/messages", h.Transcript)
	r.Post("/reply", h.Reply)
	if h.events != nil {
		r.Method(http.MethodGet, "/events", h.events)
	}

	return r
}

// GET /api/operator/inbox
func (h *OperatorHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	items, err := h.inboxService.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list inbox")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// GET /api/operator/messages?sessionId=
func (h *OperatorHandler) Transcript(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")

	result, err := h.chatService.Transcript(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:      audit.EventTranscriptView,
		Operator:  middleware.GetOperator(r.Context()),
		SessionID: sessionID,
	})

	writeJSON(w, http.StatusOK, result)
}

type operatorReplyRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	Text      string `json:"text"`
}

// POST /api/operator/reply
func (h *OperatorHandler) Reply(w http.ResponseWriter, r *http.Request) {
	var req operatorReplyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	msg, err := h.chatService.OperatorReply(r.Context(), req.SessionID, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:      audit.EventOperatorReply,
		Operator:  middleware.GetOperator(r.Context()),
		SessionID: req.SessionID,
		Details:   map[string]any{"i": msg.I},
	})

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
