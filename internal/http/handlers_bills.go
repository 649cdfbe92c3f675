package http

import (
	"net/http"

	"billtracker/internal/core"
	"billtracker/internal/services"
)

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.bills.List(r.Context())
	if err != nil {
		ErrorFor(r, err, "Failed to fetch bills").Write(w)
		return
	}
	NewJSONResponse().Body(bills).Write(w)
}

func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	id, err := ParseBillID(r)
	if err != nil {
		// A malformed id can never match a row.
		NotFoundError("Bill not found").Write(w)
		return
	}
	b, err := s.bills.Get(r.Context(), id)
	if err != nil {
		ErrorFor(r, err, "Failed to fetch bill").Write(w)
		return
	}
	NewJSONResponse().Body(b).Write(w)
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var d core.BillData
	if err := DecodeJSON(w, r, &d); err != nil {
		ErrorFor(r, err, "Failed to create bill").Write(w)
		return
	}
	b, err := s.bills.Create(r.Context(), d)
	if err != nil {
		ErrorFor(r, err, "Failed to create bill").Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(b).Write(w)
}

func (s *Server) handleUpsertBill(w http.ResponseWriter, r *http.Request) {
	var d core.BillData
	if err := DecodeJSON(w, r, &d); err != nil {
		ErrorFor(r, err, "Failed to save bill").Write(w)
		return
	}
	b, err := s.bills.Upsert(r.Context(), d)
	if err != nil {
		ErrorFor(r, err, "Failed to save bill").Write(w)
		return
	}
	NewJSONResponse().Body(b).Write(w)
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	id, err := ParseBillID(r)
	if err != nil {
		NotFoundError("Bill not found").Write(w)
		return
	}
	var p core.BillPatch
	if err := DecodeJSON(w, r, &p); err != nil {
		ErrorFor(r, err, "Failed to update bill").Write(w)
		return
	}
	b, err := s.bills.Update(r.Context(), id, p)
	if err != nil {
		ErrorFor(r, err, "Failed to update bill").Write(w)
		return
	}
	NewJSONResponse().Body(b).Write(w)
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	id, err := ParseBillID(r)
	if err != nil {
		NotFoundError("Bill not found").Write(w)
		return
	}
	if _, err := s.bills.Delete(r.Context(), id); err != nil {
		ErrorFor(r, err, "Failed to delete bill").Write(w)
		return
	}
	MessageResponse("Bill deleted successfully").Write(w)
}

type generateURLsResponse struct {
	Message string                  `json:"message"`
	Count   int                     `json:"count"`
	Updated []services.GeneratedURL `json:"updated"`
}

func (s *Server) handleGenerateURLs(w http.ResponseWriter, r *http.Request) {
	generated, err := s.bills.GenerateMissingURLs(r.Context())
	if err != nil {
		ErrorFor(r, err, "Failed to generate bill URLs").Write(w)
		return
	}
	NewJSONResponse().Body(generateURLsResponse{
		Message: services.GenerateURLsMessage(len(generated)),
		Count:   len(generated),
		Updated: generated,
	}).Write(w)
}
