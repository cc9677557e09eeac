package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Pab1o16/turing-chat/internal/middleware"
	"github.com/Pab1o16/turing-chat/internal/service"
	"github.com/Pab1o16/turing-chat/internal/sse"
)

// EventsHandler streams message and inbox events to operator UIs.
type EventsHandler struct {
	broker       *sse.Broker
	inboxService *service.InboxService
	heartbeat    time.Duration
}

func NewEventsHandler(broker *sse.Broker, inboxService *service.InboxService) *EventsHandler {
	return &EventsHandler{
		broker:       broker,
		inboxService: inboxService,
		heartbeat:    sse.HeartbeatInterval,
	}
}

// GET /api/operator/events
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Streaming not supported"})
		return
	}

	ctx := r.Context()
	operator := middleware.GetOperator(ctx)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	client := h.broker.Subscribe(sse.OperatorTopic)
	defer h.broker.Unsubscribe(client)

	log.Info().
		Str("operator", operator).
		Msg("sse connection established")

	if err := h.sendConnected(ctx, w, flusher); err != nil {
		log.Error().Err(err).Msg("failed to send connected event")
		return
	}

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().
				Str("operator", operator).
				Msg("sse connection closed by client")
			return

		case <-client.Done:
			log.Info().
				Str("operator", operator).
				Msg("sse connection closed by broker")
			return

		case event := <-client.Events:
			if err := h.sendRawEvent(w, flusher, event); err != nil {
				log.Error().Err(err).Msg("failed to send event")
				return
			}

		case <-heartbeat.C:
			if _, err := fmt.Fprintf(w, ": ping\n\n"); err != nil {
				log.Debug().
					Str("operator", operator).
					Msg("heartbeat failed, closing connection")
				return
			}
			flusher.Flush()
		}
	}
}

// sendConnected primes the client with the current inbox so it does not need
// a separate fetch.
func (h *EventsHandler) sendConnected(ctx context.Context, w http.ResponseWriter, flusher http.Flusher) error {
	items, err := h.inboxService.List(ctx)
	if err != nil {
		return err
	}

	return h.sendEvent(w, flusher, sse.EventConnected, map[string]any{
		"inbox": items,
	})
}

func (h *EventsHandler) sendEvent(w http.ResponseWriter, flusher http.Flusher, eventType string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return h.sendRawEvent(w, flusher, sse.Event{Type: eventType, Data: jsonData})
}

func (h *EventsHandler) sendRawEvent(w http.ResponseWriter, flusher http.Flusher, event sse.Event) error {
	if _, err := fmt.Fprintf(w, "event: %s\n", event.Type); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", event.Data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
