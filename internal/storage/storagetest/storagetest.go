// Package storagetest holds behaviour tests shared by every BillStore.
package storagetest

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"billtracker/internal/core"
	"billtracker/internal/ports"
)

// Run exercises store semantics against a fresh store per subtest.
func Run(t *testing.T, newStore func(t *testing.T) ports.BillStore) {
	t.Run("create then get", func(t *testing.T) { testCreateGet(t, newStore(t)) })
	t.Run("create derives url and title", func(t *testing.T) { testCreateDerives(t, newStore(t)) })
	t.Run("create validates", func(t *testing.T) { testCreateValidates(t, newStore(t)) })
	t.Run("create duplicate", func(t *testing.T) { testCreateDuplicate(t, newStore(t)) })
	t.Run("delete then get", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("update partial", func(t *testing.T) { testUpdatePartial(t, newStore(t)) })
	t.Run("update missing", func(t *testing.T) { testUpdateMissing(t, newStore(t)) })
	t.Run("update duplicate number", func(t *testing.T) { testUpdateDuplicate(t, newStore(t)) })
	t.Run("upsert preserves flags", func(t *testing.T) { testUpsertPreserves(t, newStore(t)) })
	t.Run("upsert inserts", func(t *testing.T) { testUpsertInserts(t, newStore(t)) })
	t.Run("list order", func(t *testing.T) { testListOrder(t, newStore(t)) })
}

func data(number string) core.BillData {
	return core.BillData{
		BillNumber: number,
		Chamber:    core.ChamberFromBillNumber(number),
		Title:      "An Act relating to " + number,
		Position:   core.PositionMonitor,
	}
}

func mustCreate(t *testing.T, s ports.BillStore, d core.BillData) core.Bill {
	t.Helper()
	b, err := s.Create(context.Background(), d)
	if err != nil {
		t.Fatalf("create %s: %v", d.BillNumber, err)
	}
	return b
}

func testCreateGet(t *testing.T, s ports.BillStore) {
	ctx := context.Background()
	d := data("HF 123")
	d.Sponsor = "Smith"
	d.FiscalNote = core.BoolPtr(true)

	created := mustCreate(t, s, d)
	if created.ID == 0 || created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatalf("id and timestamps not populated: %+v", created)
	}

	got, err := s.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(got, created) {
		t.Fatalf("get mismatch:\n got %+v\nwant %+v", got, created)
	}
	if !got.FiscalNote || got.IsPinned {
		t.Errorf("flags = fiscal %v pinned %v", got.FiscalNote, got.IsPinned)
	}
}

func testCreateDerives(t *testing.T, s ports.BillStore) {
	b := mustCreate(t, s, core.BillData{
		BillNumber: "SF 456",
		Chamber:    core.ChamberSenate,
		ShortTitle: "Water quality",
		Position:   core.PositionSupport,
	})
	if core.StringValue(b.Title) != "Water quality" {
		t.Errorf("title = %q, want short title fallback", core.StringValue(b.Title))
	}
	want := core.DefaultURLBuilder().For("SF 456")
	if core.StringValue(b.URL) != want {
		t.Errorf("url = %q, want %q", core.StringValue(b.URL), want)
	}
	if b.Notes != nil {
		t.Errorf("notes = %q, want NULL", *b.Notes)
	}
}

func testCreateValidates(t *testing.T, s ports.BillStore) {
	ctx := context.Background()
	for _, d := range []core.BillData{
		{Chamber: core.ChamberHouse, Position: core.PositionSupport},
		{BillNumber: "HF 1", Position: core.PositionSupport},
		{BillNumber: "HF 1", Chamber: core.ChamberHouse},
	} {
		if _, err := s.Create(ctx, d); !core.IsValidation(err) {
			t.Errorf("create %+v: expected validation error, got %v", d, err)
		}
	}
	bills, _ := s.ListAll(ctx)
	if len(bills) != 0 {
		t.Errorf("invalid creates left %d bills", len(bills))
	}
}

func testCreateDuplicate(t *testing.T, s ports.BillStore) {
	mustCreate(t, s, data("HF 1"))
	_, err := s.Create(context.Background(), data(" HF 1 "))
	if !errors.Is(err, core.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func testDelete(t *testing.T, s ports.BillStore) {
	ctx := context.Background()
	b := mustCreate(t, s, data("HF 7"))

	deleted, err := s.Delete(ctx, b.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.BillNumber != "HF 7" {
		t.Errorf("deleted = %+v", deleted)
	}
	if _, err := s.GetByID(ctx, b.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("get after delete: %v", err)
	}
	if _, err := s.Delete(ctx, b.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}
}

func testUpdatePartial(t *testing.T, s ports.BillStore) {
	ctx := context.Background()
	d := data("HF 2")
	d.Sponsor = "Jones"
	d.Notes = "watch closely"
	b := mustCreate(t, s, d)

	updated, err := s.Update(ctx, b.ID, core.BillPatch{
		Sponsor:  core.Some(""),
		Position: core.Some(core.Position("against")),
		IsPinned: core.Some(true),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Sponsor != nil {
		t.Errorf("sponsor = %q, want NULL", *updated.Sponsor)
	}
	if core.StringValue(updated.Notes) != "watch closely" {
		t.Errorf("notes changed to %q", core.StringValue(updated.Notes))
	}
	if updated.Position != core.PositionAgainst || !updated.IsPinned {
		t.Errorf("position %q pinned %v", updated.Position, updated.IsPinned)
	}
	if updated.UpdatedAt.Before(b.UpdatedAt) {
		t.Errorf("updated_at went backwards")
	}

	got, _ := s.GetByID(ctx, b.ID)
	if got.Sponsor != nil {
		t.Errorf("stored sponsor = %q, want NULL", *got.Sponsor)
	}
}

func testUpdateMissing(t *testing.T, s ports.BillStore) {
	_, err := s.Update(context.Background(), 999, core.BillPatch{Notes: core.Some("x")})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testUpdateDuplicate(t *testing.T, s ports.BillStore) {
	mustCreate(t, s, data("HF 1"))
	b := mustCreate(t, s, data("HF 2"))
	_, err := s.Update(context.Background(), b.ID, core.BillPatch{BillNumber: core.Some("HF 1")})
	if !errors.Is(err, core.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func testUpsertPreserves(t *testing.T, s ports.BillStore) {
	ctx := context.Background()
	d := data("HF 9")
	d.IsPinned = core.BoolPtr(true)
	original := mustCreate(t, s, d)

	again := data("HF 9")
	again.Position = core.PositionSupport
	again.ShortTitle = "PROPERTY TAX relief"
	again.IsPinned = core.BoolPtr(false)
	again.FiscalNote = core.BoolPtr(true)

	saved, err := s.Upsert(ctx, again)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if saved.ID != original.ID {
		t.Errorf("upsert created a new row: %d != %d", saved.ID, original.ID)
	}
	if !saved.IsPinned {
		t.Error("is_pinned should be preserved")
	}
	if !saved.FiscalNote {
		t.Error("fiscal_note should be set by explicit true")
	}
	if saved.Position != core.PositionSupport {
		t.Errorf("position = %q", saved.Position)
	}
	if core.StringValue(saved.ShortTitle) != "Property Tax Relief" {
		t.Errorf("short_title = %q", core.StringValue(saved.ShortTitle))
	}
	if !saved.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("created_at changed")
	}

	bills, _ := s.ListAll(ctx)
	if len(bills) != 1 {
		t.Errorf("expected 1 bill, got %d", len(bills))
	}
}

func testUpsertInserts(t *testing.T, s ports.BillStore) {
	b, err := s.Upsert(context.Background(), data("SF 3"))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if b.ID == 0 || b.IsPinned || b.FiscalNote {
		t.Errorf("unexpected insert: %+v", b)
	}
}

func testListOrder(t *testing.T, s ports.BillStore) {
	ctx := context.Background()
	mustCreate(t, s, data("HF 9"))
	mustCreate(t, s, data("HF 10"))
	pinned := data("SF 2")
	pinned.IsPinned = core.BoolPtr(true)
	mustCreate(t, s, pinned)

	bills, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var got []string
	for _, b := range bills {
		got = append(got, b.BillNumber)
	}
	want := []string{"SF 2", "HF 10", "HF 9"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}
