package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"billtracker/internal/core"
)

// BillChangeMessage announces a committed change to one bill. It carries
// only identifiers; consumers re-read the store for the current state.
type BillChangeMessage struct {
	Action     core.BillAction `json:"action"`
	ID         int64           `json:"id"`
	BillNumber string          `json:"bill_number"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NewBillChangeMessage converts a domain event into its wire form.
func NewBillChangeMessage(ev core.BillEvent) *BillChangeMessage {
	ts := ev.At
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return &BillChangeMessage{
		Action:     ev.Action,
		ID:         ev.ID,
		BillNumber: ev.BillNumber,
		Timestamp:  ts,
	}
}

// ToJSON converts the message to JSON bytes
func (m *BillChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Validate rejects messages no consumer can act on.
func (m *BillChangeMessage) Validate() error {
	switch m.Action {
	case core.ActionCreated, core.ActionUpdated, core.ActionDeleted, core.ActionUpserted, core.ActionImported:
	default:
		return fmt.Errorf("unknown action %q", m.Action)
	}
	if m.ID <= 0 {
		return fmt.Errorf("invalid bill id %d", m.ID)
	}
	return nil
}

// BillChangeMessageFromJSON decodes and validates a message body.
func BillChangeMessageFromJSON(data []byte) (*BillChangeMessage, error) {
	var msg BillChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
