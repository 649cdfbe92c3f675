package core

import (
	"strings"
	"time"
)

const (
	PositionSupport   Position = "Support"
	PositionAgainst   Position = "Against"
	PositionMonitor   Position = "Monitor"
	PositionUndecided Position = "Undecided"

	ChamberHouse   Chamber = "House"
	ChamberSenate  Chamber = "Senate"
	ChamberUnknown Chamber = "Unknown"
)

type (
	// Position is the organization's stance on a bill.
	Position string

	// Chamber is the legislative body a bill originated in.
	Chamber string

	// Bill is a stored bill record. Optional text columns are nil when NULL.
	Bill struct {
		ID             int64     `json:"id"`
		BillNumber     string    `json:"bill_number"`
		CompanionBills *string   `json:"companion_bills"`
		Chamber        Chamber   `json:"chamber"`
		Title          *string   `json:"title"`
		ShortTitle     *string   `json:"short_title"`
		Description    *string   `json:"description"`
		Committee      *string   `json:"committee"`
		CommitteeKey   *string   `json:"committee_key"`
		Status         *string   `json:"status"`
		Position       Position  `json:"position"`
		Sponsor        *string   `json:"sponsor"`
		Subcommittee   *string   `json:"subcommittee"`
		FiscalNote     bool      `json:"fiscal_note"`
		LSB            *string   `json:"lsb"`
		URL            *string   `json:"url"`
		Notes          *string   `json:"notes"`
		IsPinned       bool      `json:"is_pinned"`
		CreatedAt      time.Time `json:"created_at"`
		UpdatedAt      time.Time `json:"updated_at"`
	}

	// BillData is the input for create and upsert. Blank strings mean the
	// field was not supplied. FiscalNote and IsPinned are nil when omitted.
	BillData struct {
		BillNumber     string   `json:"bill_number" validate:"required,max=64"`
		CompanionBills string   `json:"companion_bills"`
		Chamber        Chamber  `json:"chamber" validate:"required,oneof=House Senate Unknown"`
		Title          string   `json:"title"`
		ShortTitle     string   `json:"short_title"`
		Description    string   `json:"description"`
		Committee      string   `json:"committee"`
		CommitteeKey   string   `json:"committee_key"`
		Status         string   `json:"status"`
		Position       Position `json:"position" validate:"required,oneof=Support Against Monitor Undecided"`
		Sponsor        string   `json:"sponsor"`
		Subcommittee   string   `json:"subcommittee"`
		FiscalNote     *bool    `json:"fiscal_note"`
		LSB            string   `json:"lsb"`
		URL            string   `json:"url"`
		Notes          string   `json:"notes"`
		IsPinned       *bool    `json:"is_pinned"`
	}
)

// Positions lists the accepted positions in display order.
var Positions = []Position{PositionSupport, PositionAgainst, PositionMonitor, PositionUndecided}

func (p Position) IsValid() bool {
	switch p {
	case PositionSupport, PositionAgainst, PositionMonitor, PositionUndecided:
		return true
	}
	return false
}

// ParsePosition matches s case-insensitively against the known positions.
func ParsePosition(s string) (Position, bool) {
	s = strings.TrimSpace(s)
	for _, p := range Positions {
		if strings.EqualFold(s, string(p)) {
			return p, true
		}
	}
	return "", false
}

func (c Chamber) IsValid() bool {
	switch c {
	case ChamberHouse, ChamberSenate, ChamberUnknown:
		return true
	}
	return false
}

// ParseChamber matches s case-insensitively against House and Senate.
func ParseChamber(s string) (Chamber, bool) {
	s = strings.TrimSpace(s)
	switch {
	case strings.EqualFold(s, string(ChamberHouse)):
		return ChamberHouse, true
	case strings.EqualFold(s, string(ChamberSenate)):
		return ChamberSenate, true
	case strings.EqualFold(s, string(ChamberUnknown)):
		return ChamberUnknown, true
	}
	return "", false
}

// ChamberFromBillNumber derives the chamber from the leading letter of a
// bill number ("HF 12" is House, "SSB 3" is Senate).
func ChamberFromBillNumber(billNumber string) Chamber {
	s := strings.TrimSpace(billNumber)
	if s == "" {
		return ChamberUnknown
	}
	switch s[0] {
	case 'H', 'h':
		return ChamberHouse
	case 'S', 's':
		return ChamberSenate
	}
	return ChamberUnknown
}

// Normalized trims every text field, falls back title to short_title and
// derives the URL from the bill number when none was supplied.
func (d BillData) Normalized(urls URLBuilder) BillData {
	out := d
	out.BillNumber = strings.TrimSpace(d.BillNumber)
	out.CompanionBills = strings.TrimSpace(d.CompanionBills)
	out.Chamber = Chamber(strings.TrimSpace(string(d.Chamber)))
	out.Title = strings.TrimSpace(d.Title)
	out.ShortTitle = strings.TrimSpace(d.ShortTitle)
	out.Description = strings.TrimSpace(d.Description)
	out.Committee = strings.TrimSpace(d.Committee)
	out.CommitteeKey = strings.TrimSpace(d.CommitteeKey)
	out.Status = strings.TrimSpace(d.Status)
	out.Position = Position(strings.TrimSpace(string(d.Position)))
	out.Sponsor = strings.TrimSpace(d.Sponsor)
	out.Subcommittee = strings.TrimSpace(d.Subcommittee)
	out.LSB = strings.TrimSpace(d.LSB)
	out.URL = strings.TrimSpace(d.URL)
	out.Notes = strings.TrimSpace(d.Notes)

	if out.Title == "" {
		out.Title = out.ShortTitle
	}
	if out.URL == "" && out.BillNumber != "" {
		out.URL = urls.For(out.BillNumber)
	}
	return out
}

// ToBill builds an unsaved Bill from normalized data. Tri-state flags
// default to false.
func (d BillData) ToBill() Bill {
	return Bill{
		BillNumber:     d.BillNumber,
		CompanionBills: NullableString(d.CompanionBills),
		Chamber:        d.Chamber,
		Title:          NullableString(d.Title),
		ShortTitle:     NullableString(d.ShortTitle),
		Description:    NullableString(d.Description),
		Committee:      NullableString(d.Committee),
		CommitteeKey:   NullableString(d.CommitteeKey),
		Status:         NullableString(d.Status),
		Position:       d.Position,
		Sponsor:        NullableString(d.Sponsor),
		Subcommittee:   NullableString(d.Subcommittee),
		FiscalNote:     d.FiscalNote != nil && *d.FiscalNote,
		LSB:            NullableString(d.LSB),
		URL:            NullableString(d.URL),
		Notes:          NullableString(d.Notes),
		IsPinned:       d.IsPinned != nil && *d.IsPinned,
	}
}

// ForUpsert returns the normalized data with short_title title-cased, the
// form upsert persists.
func (d BillData) ForUpsert(urls URLBuilder) BillData {
	out := d.Normalized(urls)
	out.ShortTitle = TitleCase(out.ShortTitle)
	return out
}

// MergeUpsert overwrites existing with incoming while keeping the stored
// fiscal_note and is_pinned unless incoming sets them to true.
func MergeUpsert(existing Bill, incoming BillData) Bill {
	merged := incoming.ToBill()
	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt
	merged.FiscalNote = existing.FiscalNote || (incoming.FiscalNote != nil && *incoming.FiscalNote)
	merged.IsPinned = existing.IsPinned || (incoming.IsPinned != nil && *incoming.IsPinned)
	return merged
}

// NullableString maps the empty string to nil.
func NullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences s, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}
