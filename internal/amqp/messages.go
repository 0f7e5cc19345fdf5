package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entry kinds carried by change messages.
const (
	KindFund    = "fund"
	KindExpense = "expense"
)

// EntryChangedMessage announces that a fund or expense entry was created,
// updated or deleted. Consumers re-read the store rather than trusting a
// payload, so the message carries only the identity of the change.
type EntryChangedMessage struct {
	Kind      string    `json:"kind"`
	Op        string    `json:"op"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntryChangedMessage(kind, op, id string) *EntryChangedMessage {
	return &EntryChangedMessage{
		Kind:      kind,
		Op:        op,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *EntryChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntryChangedMessageFromJSON decodes and checks a message body.
func EntryChangedMessageFromJSON(data []byte) (*EntryChangedMessage, error) {
	var msg EntryChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind != KindFund && msg.Kind != KindExpense {
		return nil, fmt.Errorf("unknown entry kind %q", msg.Kind)
	}
	return &msg, nil
}
