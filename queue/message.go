package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message is the envelope stored on a queue.
type Message struct {
	ID        string          `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	Published time.Time       `json:"published"`
}

// NewMessage encodes v as the payload of a fresh message.
func NewMessage(v any) (Message, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return Message{}, fmt.Errorf("queue: encode payload: %w", err)
	}

	return Message{ID: uuid.NewString(), Payload: payload}, nil
}

// Decode unmarshals the payload into v.
func (m Message) Decode(v any) error {
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("queue: decode payload of message %s: %w", m.ID, err)
	}

	return nil
}
