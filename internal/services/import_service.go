package services

import (
	"context"
	"errors"
	"fmt"

	"billtracker/internal/core"
	"billtracker/internal/csvimport"
	"billtracker/internal/log"
	"billtracker/internal/metrics"
)

// ImportResult is the outcome of one CSV import. RowErrors lists rows the
// normalizer rejected followed by rows the store refused.
type ImportResult struct {
	Inserted      []core.Bill
	RowErrors     []string
	InsertedCount int
	SkippedCount  int
}

// ImportService drives the CSV normalizer and inserts each bill in turn.
// Rows are independent: a failed row is recorded and the batch continues,
// and rows already inserted stay inserted.
type ImportService struct {
	bills   *BillService
	metrics *metrics.Metrics
}

func NewImportService(bills *BillService, m *metrics.Metrics) *ImportService {
	return &ImportService{bills: bills, metrics: m}
}

// Import parses text and creates every valid bill. It returns
// core.ErrNoValidBills, with the row errors in the result, when the file
// yields no candidate at all. Duplicates are row errors.
func (s *ImportService) Import(ctx context.Context, text string) (ImportResult, error) {
	parsed, err := csvimport.Normalize(text)
	if err != nil {
		return ImportResult{}, core.NewValidationError("file", err.Error())
	}

	result := ImportResult{
		Inserted:  []core.Bill{},
		RowErrors: append([]string{}, parsed.Errors...),
	}
	if len(parsed.Bills) == 0 {
		result.SkippedCount = len(parsed.Errors)
		s.metrics.ImportFinished(0, len(parsed.Errors), 0)
		return result, core.ErrNoValidBills
	}

	logger := log.FromContext(ctx).WithComponent(log.ComponentImport)
	for _, msg := range parsed.Errors {
		logger.WarnContext(ctx, "Import row rejected", log.FieldError, msg)
	}

	failed := 0
	for _, d := range parsed.Bills {
		b, err := s.bills.create(ctx, d, core.ActionImported)
		if err != nil {
			failed++
			msg := rowFailure(d.BillNumber, err)
			result.RowErrors = append(result.RowErrors, msg)
			logger.WarnContext(ctx, "Import row failed", log.FieldBillNumber, d.BillNumber, log.FieldError, msg)
			continue
		}
		result.Inserted = append(result.Inserted, b)
	}

	result.InsertedCount = len(result.Inserted)
	result.SkippedCount = len(parsed.Errors) + failed

	s.metrics.ImportFinished(result.InsertedCount, len(parsed.Errors), failed)
	log.NewStructuredLogger(log.FromContext(ctx)).LogImportSummary(ctx, result.InsertedCount, result.SkippedCount, len(result.RowErrors))
	return result, nil
}

// Message is the human-readable summary shown after an import.
func (r ImportResult) Message() string {
	return fmt.Sprintf("Imported %d bills", r.InsertedCount)
}

func rowFailure(billNumber string, err error) string {
	if errors.Is(err, core.ErrDuplicate) {
		return fmt.Sprintf("Bill %s: Already exists in database", billNumber)
	}
	return fmt.Sprintf("Bill %s: %v", billNumber, err)
}
