package service

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rkhatri/munim/internal/backup"
	"github.com/rkhatri/munim/internal/ledger"
	"github.com/rkhatri/munim/internal/models"
)

// errorBody is the JSON error envelope: a human message plus a stable
// code mapping the error taxonomy.
type errorBody struct {
	Error     string                 `json:"error"`
	Code      string                 `json:"code"`
	Duplicate *models.DuplicateMatch `json:"duplicate,omitempty"`
}

// Routes registers the JSON API on the given mux.
func (s *LedgerService) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/parties", s.handleCreateParty)
	mux.HandleFunc("GET /api/parties", s.handleListParties)
	mux.HandleFunc("GET /api/parties/{id}", s.handlePartySummary)
	mux.HandleFunc("DELETE /api/parties/{id}", s.handleDeleteParty)
	mux.HandleFunc("POST /api/parties/{id}/entries", s.handleAddEntry)
	mux.HandleFunc("POST /api/parties/{id}/payments", s.handleAddPayment)
	mux.HandleFunc("POST /api/parties/{id}/batch", s.handlePartyBatch)
	mux.HandleFunc("POST /api/parties/{id}/recalculate", s.handleRecalculate)
	mux.HandleFunc("POST /api/batch", s.handleDayBookBatch)
	mux.HandleFunc("PUT /api/entries/{id}", s.handleEditEntry)
	mux.HandleFunc("DELETE /api/entries/{id}", s.handleDeleteEntry)
	mux.HandleFunc("GET /api/backup", s.handleExportBackup)
	mux.HandleFunc("POST /api/backup", s.handleImportBackup)
}

func (s *LedgerService) handleCreateParty(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string          `json:"name"`
		CreditLimit    decimal.Decimal `json:"credit_limit"`
		OpeningBalance decimal.Decimal `json:"opening_balance"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	party, err := s.CreateParty(r.Context(), req.Name, req.CreditLimit, req.OpeningBalance)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, party)
}

func (s *LedgerService) handleListParties(w http.ResponseWriter, r *http.Request) {
	parties, err := s.Parties(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, parties)
}

func (s *LedgerService) handlePartySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.PartySummary(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *LedgerService) handleDeleteParty(w http.ResponseWriter, r *http.Request) {
	if err := s.DeleteParty(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// lineRequest is the body for single-line inserts.
type lineRequest struct {
	Line  string      `json:"line"`
	Date  models.Date `json:"date,omitzero"`
	Force bool        `json:"force"`
}

func (s *LedgerService) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	var req lineRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := s.AddLine(r.Context(), r.PathValue("id"), req.Line, req.Date, req.Force)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *LedgerService) handleAddPayment(w http.ResponseWriter, r *http.Request) {
	var req lineRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := s.AddPaymentLine(r.Context(), r.PathValue("id"), req.Line, req.Date, req.Force)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// batchRequest is the body for shorthand block application.
type batchRequest struct {
	Text string      `json:"text"`
	Date models.Date `json:"date,omitzero"`
}

func (s *LedgerService) handlePartyBatch(w http.ResponseWriter, r *http.Request) {
	s.applyBatch(w, r, r.PathValue("id"))
}

func (s *LedgerService) handleDayBookBatch(w http.ResponseWriter, r *http.Request) {
	s.applyBatch(w, r, "")
}

func (s *LedgerService) applyBatch(w http.ResponseWriter, r *http.Request, partyID string) {
	var req batchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := s.ApplyText(r.Context(), partyID, req.Text, req.Date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *LedgerService) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	balance, err := s.Recalculate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"balance": balance})
}

func (s *LedgerService) handleEditEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date             *models.Date     `json:"date"`
		Amount           *decimal.Decimal `json:"amount"`
		RefNo            *string          `json:"ref_no"`
		Description      *string          `json:"description"`
		HasGST           *bool            `json:"has_gst"`
		ConfirmPermanent bool             `json:"confirm_permanent"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	changes := ledger.EntryChanges{
		Date:        req.Date,
		Amount:      req.Amount,
		RefNo:       req.RefNo,
		Description: req.Description,
		HasGST:      req.HasGST,
	}
	entry, err := s.EditEntry(r.Context(), r.PathValue("id"), changes, req.ConfirmPermanent)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *LedgerService) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.DeleteEntry(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *LedgerService) handleExportBackup(w http.ResponseWriter, r *http.Request) {
	env, err := backup.Snapshot(r.Context(), s.store)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

func (s *LedgerService) handleImportBackup(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	env, err := backup.Decode(data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Code: "invalid_backup"})
		return
	}
	if err := backup.Import(r.Context(), s.store, env); err != nil {
		writeError(w, err)
		return
	}
	s.dir.Invalidate()
	writeJSON(w, http.StatusOK, map[string]int{
		"parties": len(env.Tables.Parties),
		"entries": len(env.Tables.Entries),
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error(), Code: "bad_request"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// writeError maps the error taxonomy to HTTP statuses and stable codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		parseErr   *models.ParseError
		unknownErr *models.UnknownPartyError
		dupErr     *models.DuplicateError
	)
	switch {
	case errors.As(err, &parseErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: parseErr.Error(), Code: "parse_error"})
	case errors.As(err, &unknownErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: unknownErr.Error(), Code: "unknown_party"})
	case errors.As(err, &dupErr):
		writeJSON(w, http.StatusConflict, errorBody{Error: dupErr.Error(), Code: "duplicate", Duplicate: dupErr.Match})
	case errors.Is(err, models.ErrPermanentEntry):
		writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error(), Code: "permanent_entry"})
	case errors.Is(err, models.ErrPartyNotFound), errors.Is(err, models.ErrEntryNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), Code: "not_found"})
	default:
		slog.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error", Code: "storage_error"})
	}
}
