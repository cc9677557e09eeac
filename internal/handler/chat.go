package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Pab1o16/turing-chat/internal/service"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Routes mounts the end-user API. intake wraps the two write endpoints.
func (h *ChatHandler) Routes(intake ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.With(intake...).Post("/session", h.CreateSession)
	r.With(intake...).Post("/chat", h.SubmitMessage)
	r.Get("/messages", h.PollMessages)

	return r
}

type createSessionRequest struct {
	Mode string `json:"mode"`
}

// POST /api/session
func (h *ChatHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Mode == "" {
		req.Mode = r.URL.Query().Get("mode")
	}

	session, err := h.chatService.CreateSession(r.Context(), req.Mode)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId": session.ID,
		"condition": session.Condition,
	})
}

type submitMessageRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	Text      string `json:"text" validate:"required"`
}

// POST /api/chat
func (h *ChatHandler) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	var req submitMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.chatService.HandleUserMessage(r.Context(), req.SessionID, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GET /api/messages?sessionId=&after=
func (h *ChatHandler) PollMessages(w http.ResponseWriter, r *http.Request) {
	result, err := h.chatService.Poll(r.Context(), r.URL.Query().Get("sessionId"), ParseCursor(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
