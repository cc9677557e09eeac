package model

import (
	"encoding/json"
	"time"
)

// MaxMessageLength bounds message text, in runes.
const MaxMessageLength = 2000

type Message struct {
	I    int64     `json:"i"`
	Role Role      `json:"role"`
	Text string    `json:"text"`
	T    time.Time `json:"t"`
}

// ToSSEEventData returns JSON data for SSE message events
func (m *Message) ToSSEEventData(sessionID string) json.RawMessage {
	data, _ := json.Marshal(map[string]any{
		"sessionId": sessionID,
		"i":         m.I,
		"role":      m.Role,
		"text":      m.Text,
		"t":         m.T,
	})
	return data
}
