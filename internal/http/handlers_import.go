package http

import (
	"errors"
	"io"
	"net/http"

	"billtracker/internal/core"
)

type importResponse struct {
	Message       string      `json:"message"`
	Imported      []core.Bill `json:"imported"`
	Errors        []string    `json:"errors"`
	Skipped       int         `json:"skipped"`
	InsertedCount int         `json:"inserted_count"`
}

// handleImportBills accepts a multipart upload in field "file" and inserts
// every valid row. Rows that fail are reported, not fatal.
func (s *Server) handleImportBills(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.importMaxBytes {
		ErrorResponse(http.StatusRequestEntityTooLarge, "File too large").Write(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.importMaxBytes)
	if err := r.ParseMultipartForm(s.importMaxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			ErrorResponse(http.StatusRequestEntityTooLarge, "File too large").Write(w)
			return
		}
		BadRequestError("No file provided").Write(w)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, _, err := r.FormFile("file")
	if err != nil {
		BadRequestError("No file provided").Write(w)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		BadRequestError("Could not read uploaded file").Write(w)
		return
	}
	text := string(content)
	if !hasHeaderAndData(text) {
		BadRequestError("CSV file must contain header row and data").Write(w)
		return
	}

	result, err := s.imports.Import(r.Context(), text)
	switch {
	case errors.Is(err, core.ErrNoValidBills):
		NewJSONResponse().Status(http.StatusBadRequest).Body(errorBody{
			Error:   "No valid bills found in CSV",
			Details: result.RowErrors,
		}).Write(w)
		return
	case err != nil:
		ErrorFor(r, err, "Failed to import bills").Write(w)
		return
	}

	NewJSONResponse().Body(importResponse{
		Message:       result.Message(),
		Imported:      result.Inserted,
		Errors:        result.RowErrors,
		Skipped:       result.SkippedCount,
		InsertedCount: result.InsertedCount,
	}).Write(w)
}
