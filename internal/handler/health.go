package handler

import (
	"net/http"

	"github.com/Pab1o16/turing-chat/internal/service"
	"github.com/Pab1o16/turing-chat/internal/sse"
)

// Health reports liveness plus a few in-memory counters.
func Health(chatService *service.ChatService, broker *sse.Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := chatService.SessionCount(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		body := map[string]any{
			"status":    "ok",
			"sessions":  sessions,
			"responder": chatService.ResponderName(),
		}
		if broker != nil {
			body["sseClients"] = broker.TotalClients()
		}

		writeJSON(w, http.StatusOK, body)
	}
}
