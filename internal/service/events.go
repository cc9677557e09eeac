package service

import (
	"encoding/json"

	"github.com/Pab1o16/turing-chat/internal/model"
	"github.com/Pab1o16/turing-chat/internal/sse"
)

// EventPublisher receives live events for operator UIs.
type EventPublisher interface {
	Publish(topic string, event sse.Event)
}

func publishMessage(events EventPublisher, sessionID string, msg *model.Message) {
	if events == nil {
		return
	}
	events.Publish(sse.OperatorTopic, sse.Event{
		Type: sse.EventMessage,
		Data: msg.ToSSEEventData(sessionID),
	})
}

func publishInbox(events EventPublisher, sessionID string, awaiting bool) {
	if events == nil {
		return
	}
	data, _ := json.Marshal(map[string]any{
		"sessionId":        sessionID,
		"awaitingOperator": awaiting,
	})
	events.Publish(sse.OperatorTopic, sse.Event{Type: sse.EventInbox, Data: data})
}
