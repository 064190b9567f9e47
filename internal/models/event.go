package models

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventShown    EventType = "shown"
	EventAnswered EventType = "answered"
)

// UserWordEvent is one append-only row of the event log.
type UserWordEvent struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	WordID    int64           `json:"word_id"`
	EventType EventType       `json:"event_type"`
	IsCorrect *bool           `json:"is_correct,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
	Position  int64           `json:"position,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ShownPayload is stored with every shown event.
type ShownPayload struct {
	Options []int64 `json:"options"`
}

// EncodeShownPayload marshals the option ids offered with a shown event.
func EncodeShownPayload(options []int64) (json.RawMessage, error) {
	if options == nil {
		options = []int64{}
	}
	return json.Marshal(ShownPayload{Options: options})
}

// DecodeShownPayload is the inverse of EncodeShownPayload. An empty payload yields no options.
func DecodeShownPayload(raw []byte) ([]int64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var p ShownPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return p.Options, nil
}
