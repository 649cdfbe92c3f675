package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"billtracker/internal/core"
	"billtracker/internal/metrics"
	"billtracker/internal/storage/memory"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []core.BillEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, ev core.BillEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

func (f *fakePublisher) actions() []core.BillAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.BillAction, len(f.events))
	for i, ev := range f.events {
		out[i] = ev.Action
	}
	return out
}

func newTestBillService(pub *fakePublisher) *BillService {
	urls := core.DefaultURLBuilder()
	return NewBillService(memory.New(urls), pub, urls, metrics.New())
}

func TestBillService_PublishesEvents(t *testing.T) {
	pub := &fakePublisher{}
	svc := newTestBillService(pub)
	ctx := context.Background()

	b, err := svc.Create(ctx, core.BillData{BillNumber: "HF 1", Chamber: core.ChamberHouse, Position: core.PositionSupport})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Update(ctx, b.ID, core.BillPatch{Notes: core.Some("n")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := svc.Upsert(ctx, core.BillData{BillNumber: "HF 1", Chamber: core.ChamberHouse, Position: core.PositionAgainst}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := svc.Delete(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := []core.BillAction{core.ActionCreated, core.ActionUpdated, core.ActionUpserted, core.ActionDeleted}
	got := pub.actions()
	if len(got) != len(want) {
		t.Fatalf("actions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("action[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if pub.events[0].BillNumber != "HF 1" || pub.events[0].ID != b.ID {
		t.Errorf("unexpected event: %+v", pub.events[0])
	}
}

func TestBillService_PublishFailureDoesNotFail(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := newTestBillService(pub)

	b, err := svc.Create(context.Background(), core.BillData{BillNumber: "SF 1", Chamber: core.ChamberSenate, Position: core.PositionMonitor})
	if err != nil {
		t.Fatalf("create should succeed despite publish failure: %v", err)
	}
	if _, err := svc.Get(context.Background(), b.ID); err != nil {
		t.Fatalf("bill not stored: %v", err)
	}
}

func TestBillService_FailedMutationPublishesNothing(t *testing.T) {
	pub := &fakePublisher{}
	svc := newTestBillService(pub)

	if _, err := svc.Delete(context.Background(), 42); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Create(context.Background(), core.BillData{BillNumber: "HF 1"}); !core.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(pub.actions()) != 0 {
		t.Errorf("events published for failed mutations: %v", pub.actions())
	}
}

func TestBillService_GenerateMissingURLs(t *testing.T) {
	svc := newTestBillService(&fakePublisher{})
	ctx := context.Background()

	a, _ := svc.Create(ctx, core.BillData{BillNumber: "HF 2011", Chamber: core.ChamberHouse, Position: core.PositionSupport})
	svc.Create(ctx, core.BillData{BillNumber: "SF 5", Chamber: core.ChamberSenate, Position: core.PositionSupport, URL: "https://example.org/sf5"})
	if _, err := svc.Update(ctx, a.ID, core.BillPatch{URL: core.Some("")}); err != nil {
		t.Fatal(err)
	}

	generated, err := svc.GenerateMissingURLs(ctx)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(generated) != 1 {
		t.Fatalf("generated = %+v", generated)
	}
	want := "https://www.legis.iowa.gov/legislation/BillBook?ba=HF2011&ga=91"
	if generated[0].URL != want || generated[0].BillNumber != "HF 2011" {
		t.Errorf("generated = %+v", generated[0])
	}

	again, err := svc.GenerateMissingURLs(ctx)
	if err != nil || len(again) != 0 {
		t.Errorf("second run = %+v, %v", again, err)
	}
}

func TestBillService_ListNeverNil(t *testing.T) {
	bills, err := newTestBillService(&fakePublisher{}).List(context.Background())
	if err != nil || bills == nil {
		t.Fatalf("List() = %v, %v", bills, err)
	}
}

func TestBillService_Ping(t *testing.T) {
	if err := newTestBillService(&fakePublisher{}).Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestGenerateURLsMessage(t *testing.T) {
	if got := GenerateURLsMessage(0); got != "All bills already have URLs" {
		t.Errorf("GenerateURLsMessage(0) = %q", got)
	}
	if got := GenerateURLsMessage(3); got != "Generated URLs for 3 bills" {
		t.Errorf("GenerateURLsMessage(3) = %q", got)
	}
}
