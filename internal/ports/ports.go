package ports

import (
	"context"
	"net/http"

	"billtracker/internal/core"
)

// Ports for the record store and outbound adapters.
type (
	// BillReader serves the public list and detail views.
	BillReader interface {
		// ListAll returns every bill, pinned first, then by bill number.
		ListAll(ctx context.Context) ([]core.Bill, error)
		GetByID(ctx context.Context, id int64) (core.Bill, error)
	}

	// BillWriter mutates bills. Create and Update fail with
	// core.ErrDuplicate when bill_number is taken; Update and Delete fail
	// with core.ErrNotFound when id is absent.
	BillWriter interface {
		Create(ctx context.Context, d core.BillData) (core.Bill, error)
		Update(ctx context.Context, id int64, p core.BillPatch) (core.Bill, error)
		Delete(ctx context.Context, id int64) (core.Bill, error)
		// Upsert inserts d or merges it into the bill with the same
		// bill_number, keeping stored fiscal_note and is_pinned unless d
		// sets them to true.
		Upsert(ctx context.Context, d core.BillData) (core.Bill, error)
	}

	BillStore interface {
		BillReader
		BillWriter
	}

	// Pinger is implemented by stores that can report readiness.
	Pinger interface {
		Ping(ctx context.Context) error
	}

	// EventPublisher announces committed bill changes.
	EventPublisher interface {
		Publish(ctx context.Context, ev core.BillEvent) error
	}

	// BillMirror replaces an external copy of the bill list.
	BillMirror interface {
		ReplaceAll(ctx context.Context, bills []core.Bill) error
	}

	// SessionGuard decides whether a request carries a valid admin session.
	SessionGuard interface {
		IsAuthenticated(r *http.Request) bool
	}
)
