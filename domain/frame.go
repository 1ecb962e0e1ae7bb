package domain

import (
	"encoding/json"
	"fmt"
)

// Frame is the envelope written on the WebSocket, one per text message.
type Frame struct {
	Event Topic           `json:"event"`
	ID    string          `json:"id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewFrame encodes the payload once so it can be shared by every receiver.
func NewFrame(event Topic, payload any) (Frame, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, fmt.Errorf("encoding %s payload: %w", event, err)
	}
	return Frame{Event: event, Data: data}, nil
}

// ErrorReport is published on the internal error topic.
type ErrorReport struct {
	Topic   Topic  `json:"topic"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error"`
}

func NewErrorReport(topic Topic, payload any, err error) ErrorReport {
	return ErrorReport{Topic: topic, Payload: payload, Error: err.Error()}
}
