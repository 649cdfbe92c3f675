package core

import (
	"encoding/json"
	"strings"
)

// Field is an optional value that remembers whether it was supplied.
// A JSON null or, for strings, an empty value clears the column.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a supplied field holding v.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Null returns a supplied field that clears the column.
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if string(b) == "null" {
		f.Null = true
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}

// BillPatch is a partial update. Only fields with Set are written.
type BillPatch struct {
	BillNumber     Field[string]   `json:"bill_number"`
	CompanionBills Field[string]   `json:"companion_bills"`
	Chamber        Field[Chamber]  `json:"chamber"`
	Title          Field[string]   `json:"title"`
	ShortTitle     Field[string]   `json:"short_title"`
	Description    Field[string]   `json:"description"`
	Committee      Field[string]   `json:"committee"`
	CommitteeKey   Field[string]   `json:"committee_key"`
	Status         Field[string]   `json:"status"`
	Position       Field[Position] `json:"position"`
	Sponsor        Field[string]   `json:"sponsor"`
	Subcommittee   Field[string]   `json:"subcommittee"`
	FiscalNote     Field[bool]     `json:"fiscal_note"`
	LSB            Field[string]   `json:"lsb"`
	URL            Field[string]   `json:"url"`
	Notes          Field[string]   `json:"notes"`
	IsPinned       Field[bool]     `json:"is_pinned"`
}

// Column is one SET assignment of a patch. Value is nil for NULL.
type Column struct {
	Name  string
	Value any
}

// Validate rejects patches that would break a required column.
func (p BillPatch) Validate() error {
	if p.BillNumber.Set && strings.TrimSpace(p.BillNumber.Value) == "" {
		return NewValidationError("bill_number", "bill_number cannot be empty")
	}
	if p.Chamber.Set {
		if p.Chamber.Null {
			return NewValidationError("chamber", "chamber cannot be empty")
		}
		if _, ok := ParseChamber(string(p.Chamber.Value)); !ok {
			return NewValidationError("chamber", "chamber must be one of House, Senate, Unknown")
		}
	}
	if p.Position.Set {
		if p.Position.Null {
			return NewValidationError("position", "position cannot be empty")
		}
		if _, ok := ParsePosition(string(p.Position.Value)); !ok {
			return NewValidationError("position", "position must be one of Support, Against, Monitor, Undecided")
		}
	}
	if p.FiscalNote.Set && p.FiscalNote.Null {
		return NewValidationError("fiscal_note", "fiscal_note cannot be null")
	}
	if p.IsPinned.Set && p.IsPinned.Null {
		return NewValidationError("is_pinned", "is_pinned cannot be null")
	}
	return nil
}

// IsEmpty reports whether the patch supplies no field at all.
func (p BillPatch) IsEmpty() bool {
	return len(p.Columns()) == 0
}

// Columns lists the assignments in a fixed column order. Empty strings
// become NULL, and a blank title falls back to a supplied short_title.
func (p BillPatch) Columns() []Column {
	var cols []Column
	text := func(name string, f Field[string]) {
		if !f.Set {
			return
		}
		cols = append(cols, Column{Name: name, Value: nullableValue(f)})
	}

	if p.BillNumber.Set {
		cols = append(cols, Column{Name: "bill_number", Value: strings.TrimSpace(p.BillNumber.Value)})
	}
	text("companion_bills", p.CompanionBills)
	if p.Chamber.Set {
		c, _ := ParseChamber(string(p.Chamber.Value))
		cols = append(cols, Column{Name: "chamber", Value: string(c)})
	}
	if p.Title.Set {
		title := p.Title
		if nullableValue(title) == nil && p.ShortTitle.Set && nullableValue(p.ShortTitle) != nil {
			title = p.ShortTitle
		}
		text("title", title)
	}
	text("short_title", p.ShortTitle)
	text("description", p.Description)
	text("committee", p.Committee)
	text("committee_key", p.CommitteeKey)
	text("status", p.Status)
	if p.Position.Set {
		pos, _ := ParsePosition(string(p.Position.Value))
		cols = append(cols, Column{Name: "position", Value: string(pos)})
	}
	text("sponsor", p.Sponsor)
	text("subcommittee", p.Subcommittee)
	if p.FiscalNote.Set {
		cols = append(cols, Column{Name: "fiscal_note", Value: p.FiscalNote.Value})
	}
	text("lsb", p.LSB)
	text("url", p.URL)
	text("notes", p.Notes)
	if p.IsPinned.Set {
		cols = append(cols, Column{Name: "is_pinned", Value: p.IsPinned.Value})
	}
	return cols
}

// Apply writes the patch onto b in memory, mirroring Columns.
func (p BillPatch) Apply(b *Bill) {
	for _, c := range p.Columns() {
		var s *string
		if v, ok := c.Value.(string); ok {
			s = &v
		}
		switch c.Name {
		case "bill_number":
			b.BillNumber = *s
		case "companion_bills":
			b.CompanionBills = s
		case "chamber":
			b.Chamber = Chamber(*s)
		case "title":
			b.Title = s
		case "short_title":
			b.ShortTitle = s
		case "description":
			b.Description = s
		case "committee":
			b.Committee = s
		case "committee_key":
			b.CommitteeKey = s
		case "status":
			b.Status = s
		case "position":
			b.Position = Position(*s)
		case "sponsor":
			b.Sponsor = s
		case "subcommittee":
			b.Subcommittee = s
		case "fiscal_note":
			b.FiscalNote = c.Value.(bool)
		case "lsb":
			b.LSB = s
		case "url":
			b.URL = s
		case "notes":
			b.Notes = s
		case "is_pinned":
			b.IsPinned = c.Value.(bool)
		}
	}
}

func nullableValue(f Field[string]) any {
	if f.Null {
		return nil
	}
	v := strings.TrimSpace(f.Value)
	if v == "" {
		return nil
	}
	return v
}
