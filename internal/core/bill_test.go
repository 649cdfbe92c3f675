package core

import (
	"errors"
	"testing"
)

func TestChamberFromBillNumber(t *testing.T) {
	tests := []struct {
		in   string
		want Chamber
	}{
		{"HF 123", ChamberHouse},
		{"hsb 4", ChamberHouse},
		{"SF 456", ChamberSenate},
		{" sr 9", ChamberSenate},
		{"LSB 1000", ChamberUnknown},
		{"", ChamberUnknown},
	}
	for _, tt := range tests {
		if got := ChamberFromBillNumber(tt.in); got != tt.want {
			t.Errorf("ChamberFromBillNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParsePosition(t *testing.T) {
	if p, ok := ParsePosition(" support "); !ok || p != PositionSupport {
		t.Fatalf("ParsePosition(support) = %q, %v", p, ok)
	}
	if _, ok := ParsePosition("Passed"); ok {
		t.Fatal("ParsePosition(Passed) should fail")
	}
}

func TestBillData_Normalized(t *testing.T) {
	urls := DefaultURLBuilder()
	d := BillData{
		BillNumber: "  HF 2011 ",
		Chamber:    "House",
		ShortTitle: "Tax relief",
		Position:   PositionSupport,
	}.Normalized(urls)

	if d.BillNumber != "HF 2011" {
		t.Errorf("bill number not trimmed: %q", d.BillNumber)
	}
	if d.Title != "Tax relief" {
		t.Errorf("title should fall back to short title, got %q", d.Title)
	}
	want := "https://www.legis.iowa.gov/legislation/BillBook?ba=HF2011&ga=91"
	if d.URL != want {
		t.Errorf("url = %q, want %q", d.URL, want)
	}

	kept := BillData{BillNumber: "HF 1", URL: "https://example.org/hf1"}.Normalized(urls)
	if kept.URL != "https://example.org/hf1" {
		t.Errorf("supplied url overwritten: %q", kept.URL)
	}
}

func TestBillData_ToBill(t *testing.T) {
	b := BillData{BillNumber: "SF 1", Chamber: ChamberSenate, Position: PositionMonitor, Notes: ""}.ToBill()
	if b.Notes != nil {
		t.Error("empty notes should be nil")
	}
	if b.FiscalNote || b.IsPinned {
		t.Error("omitted flags should default to false")
	}
}

func TestMergeUpsert_PreservesFlags(t *testing.T) {
	existing := Bill{ID: 7, BillNumber: "HF 1", IsPinned: true, FiscalNote: true}

	merged := MergeUpsert(existing, BillData{BillNumber: "HF 1", Chamber: ChamberHouse, Position: PositionAgainst})
	if !merged.IsPinned || !merged.FiscalNote {
		t.Fatalf("flags should be preserved, got pinned=%v fiscal=%v", merged.IsPinned, merged.FiscalNote)
	}
	if merged.ID != 7 || merged.Position != PositionAgainst {
		t.Fatalf("unexpected merge result: %+v", merged)
	}

	merged = MergeUpsert(Bill{ID: 8}, BillData{BillNumber: "HF 2", IsPinned: BoolPtr(true), FiscalNote: BoolPtr(false)})
	if !merged.IsPinned || merged.FiscalNote {
		t.Fatalf("explicit true should set pinned only, got pinned=%v fiscal=%v", merged.IsPinned, merged.FiscalNote)
	}
}

func TestBillData_Validate(t *testing.T) {
	tests := []struct {
		name      string
		data      BillData
		wantField string
	}{
		{"valid", BillData{BillNumber: "HF 1", Chamber: ChamberHouse, Position: PositionSupport}, ""},
		{"missing bill number", BillData{Chamber: ChamberHouse, Position: PositionSupport}, "bill_number"},
		{"missing chamber", BillData{BillNumber: "HF 1", Position: PositionSupport}, "chamber"},
		{"bad chamber", BillData{BillNumber: "HF 1", Chamber: "Joint", Position: PositionSupport}, "chamber"},
		{"missing position", BillData{BillNumber: "HF 1", Chamber: ChamberHouse}, "position"},
		{"bad position", BillData{BillNumber: "HF 1", Chamber: ChamberHouse, Position: "Passed"}, "position"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("field = %q, want %q", ve.Field, tt.wantField)
			}
		})
	}
}
