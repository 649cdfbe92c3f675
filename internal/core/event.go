package core

import "time"

const (
	ActionCreated  BillAction = "created"
	ActionUpdated  BillAction = "updated"
	ActionDeleted  BillAction = "deleted"
	ActionUpserted BillAction = "upserted"
	ActionImported BillAction = "imported"
)

// BillAction names the mutation that produced a BillEvent.
type BillAction string

// BillEvent describes a committed change to one bill.
type BillEvent struct {
	Action     BillAction
	ID         int64
	BillNumber string
	At         time.Time
}

// NewBillEvent stamps an event for b with the current time.
func NewBillEvent(action BillAction, b Bill) BillEvent {
	return BillEvent{Action: action, ID: b.ID, BillNumber: b.BillNumber, At: time.Now().UTC()}
}
