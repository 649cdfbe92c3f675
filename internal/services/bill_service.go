package services

import (
	"context"
	"fmt"

	"billtracker/internal/core"
	"billtracker/internal/log"
	"billtracker/internal/metrics"
	"billtracker/internal/ports"
)

// BillService applies bill mutations to the store and announces them.
// Publishing is best effort: a failed publish is logged, never returned.
type BillService struct {
	store   ports.BillStore
	events  ports.EventPublisher
	urls    core.URLBuilder
	metrics *metrics.Metrics
}

func NewBillService(store ports.BillStore, events ports.EventPublisher, urls core.URLBuilder, m *metrics.Metrics) *BillService {
	if events == nil {
		events = NopPublisher{}
	}
	return &BillService{
		store:   store,
		events:  events,
		urls:    urls,
		metrics: m,
	}
}

// GeneratedURL reports one URL filled in by GenerateMissingURLs.
type GeneratedURL struct {
	ID         int64  `json:"id"`
	BillNumber string `json:"bill_number"`
	URL        string `json:"url"`
}

func (s *BillService) List(ctx context.Context) ([]core.Bill, error) {
	bills, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	if bills == nil {
		bills = []core.Bill{}
	}
	return bills, nil
}

func (s *BillService) Get(ctx context.Context, id int64) (core.Bill, error) {
	return s.store.GetByID(ctx, id)
}

func (s *BillService) Create(ctx context.Context, d core.BillData) (core.Bill, error) {
	return s.create(ctx, d, core.ActionCreated)
}

func (s *BillService) create(ctx context.Context, d core.BillData, action core.BillAction) (core.Bill, error) {
	b, err := s.store.Create(ctx, d)
	if err != nil {
		return core.Bill{}, err
	}
	s.committed(ctx, action, log.OpCreate, b)
	return b, nil
}

func (s *BillService) Update(ctx context.Context, id int64, p core.BillPatch) (core.Bill, error) {
	b, err := s.store.Update(ctx, id, p)
	if err != nil {
		return core.Bill{}, err
	}
	s.committed(ctx, core.ActionUpdated, log.OpUpdate, b)
	return b, nil
}

func (s *BillService) Delete(ctx context.Context, id int64) (core.Bill, error) {
	b, err := s.store.Delete(ctx, id)
	if err != nil {
		return core.Bill{}, err
	}
	s.committed(ctx, core.ActionDeleted, log.OpDelete, b)
	return b, nil
}

func (s *BillService) Upsert(ctx context.Context, d core.BillData) (core.Bill, error) {
	b, err := s.store.Upsert(ctx, d)
	if err != nil {
		return core.Bill{}, err
	}
	s.committed(ctx, core.ActionUpserted, log.OpUpsert, b)
	return b, nil
}

// GenerateMissingURLs fills url on every stored bill that lacks one.
func (s *BillService) GenerateMissingURLs(ctx context.Context) ([]GeneratedURL, error) {
	bills, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}

	generated := []GeneratedURL{}
	for _, b := range bills {
		if core.StringValue(b.URL) != "" {
			continue
		}
		url := s.urls.For(b.BillNumber)
		updated, err := s.Update(ctx, b.ID, core.BillPatch{URL: core.Some(url)})
		if err != nil {
			return generated, fmt.Errorf("set url for %s: %w", b.BillNumber, err)
		}
		generated = append(generated, GeneratedURL{ID: updated.ID, BillNumber: updated.BillNumber, URL: url})
	}

	log.FromContext(ctx).WithComponent(log.ComponentBills).InfoContext(ctx, "Generated missing bill URLs",
		log.FieldOperation, log.OpGenerateURLs, "count", len(generated))
	return generated, nil
}

// GenerateURLsMessage summarises a GenerateMissingURLs run.
func GenerateURLsMessage(n int) string {
	if n == 0 {
		return "All bills already have URLs"
	}
	return fmt.Sprintf("Generated URLs for %d bills", n)
}

// Ping reports store readiness when the store supports it.
func (s *BillService) Ping(ctx context.Context) error {
	if p, ok := s.store.(ports.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *BillService) committed(ctx context.Context, action core.BillAction, op string, b core.Bill) {
	logger := log.FromContext(ctx)
	log.NewStructuredLogger(logger).LogBillMutation(ctx, op, b.ID, b.BillNumber)
	s.metrics.BillMutation(string(action))

	if err := s.events.Publish(ctx, core.NewBillEvent(action, b)); err != nil {
		s.metrics.PublishFailed()
		log.NewStructuredLogger(logger).LogError(ctx, "Failed to publish bill change", err,
			log.ComponentAMQP, log.OpPublish, log.NewFields().WithBill(b.ID, b.BillNumber))
	}
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, core.BillEvent) error { return nil }
