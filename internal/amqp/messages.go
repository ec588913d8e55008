package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventKind names the ledger mutation an event describes.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
)

// ExpenseEventMessage is a lightweight notification that one ledger record
// changed. The backup worker re-reads the record from the store by (ID,
// Owner); the message itself carries no expense fields.
type ExpenseEventMessage struct {
	ID        int64     `json:"id"`
	Owner     string    `json:"owner"`
	Kind      EventKind `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseEventMessage creates an event message stamped with the current time.
func NewExpenseEventMessage(id int64, owner string, kind EventKind) *ExpenseEventMessage {
	return &ExpenseEventMessage{
		ID:        id,
		Owner:     owner,
		Kind:      kind,
		Timestamp: time.Now(),
	}
}

// Validate checks the message is complete enough to act on.
func (m *ExpenseEventMessage) Validate() error {
	if m.ID <= 0 {
		return fmt.Errorf("invalid expense id %d", m.ID)
	}
	if m.Owner == "" {
		return fmt.Errorf("missing owner")
	}
	switch m.Kind {
	case EventCreated, EventUpdated, EventDeleted:
		return nil
	default:
		return fmt.Errorf("unknown event kind %q", m.Kind)
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventMessageFromJSON creates a message from JSON bytes
func ExpenseEventMessageFromJSON(data []byte) (*ExpenseEventMessage, error) {
	var msg ExpenseEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
