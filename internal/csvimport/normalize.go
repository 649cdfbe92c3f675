// Package csvimport turns uploaded tabular text into bill candidates.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"billtracker/internal/core"
)

const shortTitleLen = 50

var (
	// ErrNoBillNumberColumn is returned when the header resolves to no
	// bill_number column under any delimiter.
	ErrNoBillNumberColumn = errors.New("no bill_number column in header")

	multiSpace = regexp.MustCompile(`\s{2,}`)
	spaceRun   = regexp.MustCompile(`\s+`)
)

// Delimiter is the column separator detected from the header line.
type Delimiter int

const (
	DelimComma Delimiter = iota
	DelimTab
	DelimSpaces
)

func (d Delimiter) String() string {
	switch d {
	case DelimComma:
		return "comma"
	case DelimTab:
		return "tab"
	default:
		return "spaces"
	}
}

// Result is the outcome of one Normalize call. Errors holds one message per
// rejected row, in input order.
type Result struct {
	Delimiter Delimiter
	Bills     []core.BillData
	Errors    []string
}

type row struct {
	line   int
	fields []string
}

// Normalize parses text into bill candidates. Rows missing bill_number are
// reported in Result.Errors and skipped. An empty or header-only input
// yields an empty Result and no error.
func Normalize(text string) (Result, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	headerLine, ok := firstNonBlankLine(text)
	if !ok {
		return Result{}, nil
	}

	delim := DetectDelimiter(headerLine)
	rows, err := split(text, delim)
	if err != nil {
		return Result{Delimiter: delim}, err
	}
	// Whitespace-only lines survive encoding/csv as one-field records.
	for len(rows) > 0 && allBlank(rows[0].fields) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return Result{Delimiter: delim}, nil
	}

	header := make([]string, len(rows[0].fields))
	for i, h := range rows[0].fields {
		header[i] = NormalizeHeader(h)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := index[h]; !dup && h != "" {
			index[h] = i
		}
	}
	if _, ok := index["bill_number"]; !ok {
		return Result{Delimiter: delim}, ErrNoBillNumberColumn
	}

	res := Result{Delimiter: delim}
	for _, r := range rows[1:] {
		get := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(r.fields) {
				return ""
			}
			return strings.TrimSpace(r.fields[i])
		}

		if allBlank(r.fields) {
			continue
		}
		d, rowErr := buildBill(get)
		if rowErr != "" {
			res.Errors = append(res.Errors, fmt.Sprintf("Row %d: %s", r.line, rowErr))
			continue
		}
		res.Bills = append(res.Bills, d)
	}
	return res, nil
}

// DetectDelimiter tests the header line for a comma, then a tab, and falls
// back to runs of two or more whitespace characters.
func DetectDelimiter(header string) Delimiter {
	switch {
	case strings.Contains(header, ","):
		return DelimComma
	case strings.Contains(header, "\t"):
		return DelimTab
	default:
		return DelimSpaces
	}
}

// NormalizeHeader lower-cases h and collapses whitespace to underscores:
// "Bill Number" becomes "bill_number".
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return spaceRun.ReplaceAllString(h, "_")
}

func buildBill(get func(string) string) (core.BillData, string) {
	number := get("bill_number")
	if number == "" {
		return core.BillData{}, "Missing required field bill_number"
	}

	d := core.BillData{
		BillNumber:     number,
		CompanionBills: get("companion_bills"),
		Title:          get("title"),
		ShortTitle:     get("short_title"),
		Description:    get("description"),
		Committee:      get("committee"),
		CommitteeKey:   get("committee_key"),
		Status:         get("status"),
		Sponsor:        get("sponsor"),
		Subcommittee:   get("subcommittee"),
		LSB:            get("lsb"),
		Notes:          get("notes"),
	}

	if c, ok := core.ParseChamber(get("chamber")); ok {
		d.Chamber = c
	} else {
		d.Chamber = core.ChamberFromBillNumber(number)
	}

	if d.Title == "" {
		d.Title = d.ShortTitle
	}
	if d.Title == "" {
		d.Title = number
	}
	if d.ShortTitle == "" {
		d.ShortTitle = core.Truncate(d.Title, shortTitleLen)
	}

	raw := get("position")
	if p := core.Position(raw); p.IsValid() {
		d.Position = p
	} else {
		d.Position = core.PositionMonitor
		if raw != "" {
			d.Notes = appendNote(d.Notes, "Status: "+raw)
		}
	}

	fiscal := get("fiscal_note")
	d.FiscalNote = core.BoolPtr(fiscal == "true" || fiscal == "1")

	return d, ""
}

func split(text string, delim Delimiter) ([]row, error) {
	if delim == DelimSpaces {
		var rows []row
		for i, line := range strings.Split(text, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			rows = append(rows, row{line: i + 1, fields: multiSpace.Split(strings.TrimSpace(line), -1)})
		}
		return rows, nil
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if delim == DelimTab {
		r.Comma = '\t'
	}

	var rows []row
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s-delimited input: %w", delim, err)
		}
		line, _ := r.FieldPos(0)
		rows = append(rows, row{line: line, fields: rec})
	}
	return rows, nil
}

func firstNonBlankLine(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			return line, true
		}
	}
	return "", false
}

func allBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func appendNote(notes, note string) string {
	if notes == "" {
		return note
	}
	return notes + "; " + note
}
