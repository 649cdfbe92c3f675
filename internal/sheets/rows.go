package sheets

import (
	"time"

	"billtracker/internal/core"
)

// Header is the first row written to the mirror sheet.
var Header = []any{
	"ID", "Bill Number", "Companion Bills", "Chamber", "Title", "Short Title",
	"Description", "Committee", "Committee Key", "Status", "Position", "Sponsor",
	"Subcommittee", "Fiscal Note", "LSB", "URL", "Notes", "Pinned",
	"Created At", "Updated At",
}

// BillRows renders bills as sheet rows, header first. NULL columns become
// empty cells.
func BillRows(bills []core.Bill) [][]any {
	rows := make([][]any, 0, len(bills)+1)
	rows = append(rows, Header)
	for _, b := range bills {
		rows = append(rows, []any{
			b.ID,
			b.BillNumber,
			core.StringValue(b.CompanionBills),
			string(b.Chamber),
			core.StringValue(b.Title),
			core.StringValue(b.ShortTitle),
			core.StringValue(b.Description),
			core.StringValue(b.Committee),
			core.StringValue(b.CommitteeKey),
			core.StringValue(b.Status),
			string(b.Position),
			core.StringValue(b.Sponsor),
			core.StringValue(b.Subcommittee),
			yesNo(b.FiscalNote),
			core.StringValue(b.LSB),
			core.StringValue(b.URL),
			core.StringValue(b.Notes),
			yesNo(b.IsPinned),
			timestamp(b.CreatedAt),
			timestamp(b.UpdatedAt),
		})
	}
	return rows
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
