/*
handlers.go - HTTP handlers for the budget engine

PURPOSE:
  Exposes the ledger engine via REST. Handles HTTP request/response,
  JSON serialization, and delegates all semantics to the ledger and
  backup packages.

REQUEST FLOW:
  1. Parse HTTP request
  2. Convert DTO to domain input (shape validation)
  3. Call domain logic
  4. Serialize response
  5. Map errors to status codes

ERROR HANDLING:
  - 400: validation errors, malformed bodies and query params
  - 404: referenced operation or item not found
  - 409: a backup conflict is pending and must be resolved first
  - 502: the cloud upload/download failed
  - 500: everything else

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/statera/budget-engine/backup"
	"github.com/statera/budget-engine/csvio"
	"github.com/statera/budget-engine/ledger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers. Backup and Autosave
// are nil when the server runs without cloud sync.
type Handler struct {
	Store    *ledger.Store
	Cols     *ledger.Collections
	Backup   *backup.Coordinator
	Autosave *backup.Autosaver
	Log      zerolog.Logger
}

// NewHandler creates a handler over the engine's collaborators.
func NewHandler(store *ledger.Store, cols *ledger.Collections, log zerolog.Logger) *Handler {
	return &Handler{Store: store, Cols: cols, Log: log}
}

// =============================================================================
// OPERATION HANDLERS
// =============================================================================

// ListOperations returns every operation in storage order.
func (h *Handler) ListOperations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.List())
}

// CreateOperation validates and inserts a new operation.
func (h *Handler) CreateOperation(w http.ResponseWriter, r *http.Request) {
	var req OperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	op, err := h.Store.Add(r.Context(), in)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if op.Person != "" {
		h.Cols.AddPerson(r.Context(), op.Person)
	}
	writeJSON(w, http.StatusCreated, op)
}

// UpdateOperation applies a partial update.
func (h *Handler) UpdateOperation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.Store.Get(id); !ok {
		writeError(w, http.StatusNotFound, "Operation not found", nil)
		return
	}

	var req OperationPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if err := h.Store.Update(r.Context(), id, patch); err != nil {
		h.writeDomainError(w, err)
		return
	}

	op, _ := h.Store.Get(id)
	writeJSON(w, http.StatusOK, op)
}

// DeleteOperation removes an operation; deleting a transfer leg removes
// both legs.
func (h *Handler) DeleteOperation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.Store.Get(id); !ok {
		writeError(w, http.StatusNotFound, "Operation not found", nil)
		return
	}
	h.Store.Remove(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// TRANSFER HANDLERS
// =============================================================================

// CreateTransfer inserts both legs of an internal transfer.
func (h *Handler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := ledger.ParseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	pair, err := h.Store.CreateTransfer(r.Context(), ledger.TransferInput{
		Amount: req.Amount,
		Date:   date,
		From:   req.From.toAccount(),
		To:     req.To.toAccount(),
		Note:   req.Note,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pair)
}

// ConvertTransfer turns an existing operation into a transfer-out leg and
// creates the mirroring inbound leg.
func (h *Handler) ConvertTransfer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ConvertTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	mirror, err := h.Store.ConvertToTransferOut(r.Context(), id, req.To.toAccount())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mirror)
}

// =============================================================================
// CSV HANDLERS
// =============================================================================

// ExportCSV streams the full ledger as CSV.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	raw, err := csvio.Export(h.Store.List())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export CSV", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="operations.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

// ImportCSV parses rows and inserts them as operations. Zero-amount rows
// are skipped silently, per the export convention.
func (h *Handler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	res, err := csvio.Import(r.Body)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	imported := 0
	for _, in := range res.Inputs {
		if _, err := h.Store.Add(r.Context(), in); err != nil {
			h.writeDomainError(w, err)
			return
		}
		imported++
	}
	writeJSON(w, http.StatusOK, ImportResponse{Imported: imported, Skipped: res.Skipped})
}

// =============================================================================
// BALANCE / STATISTICS HANDLERS
// =============================================================================

// GetBalance replays the ledger up to ?date= (default today).
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	cutoff := ledger.Today()
	if raw := r.URL.Query().Get("date"); raw != "" {
		var err error
		if cutoff, err = ledger.ParseDay(raw); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":    cutoff,
		"balance": ledger.Round2(ledger.BalanceAt(h.Store.List(), cutoff)),
	})
}

// GetTimeline returns the cumulative timeline, grouped by ?group=
// (total | bank | accountType).
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	var group ledger.GroupFn
	switch r.URL.Query().Get("group") {
	case "", "total":
		group = ledger.GroupTotal
	case "bank":
		group = ledger.GroupByBank
	case "accountType":
		group = ledger.GroupByAccountType
	default:
		writeError(w, http.StatusBadRequest, "Unknown group (use total, bank, or accountType)", nil)
		return
	}
	writeJSON(w, http.StatusOK, ledger.Timeline(h.Store.List(), group))
}

// GetPerformance compares balances between ?start= and ?end=. Defaults:
// start = first operation day, end = today.
func (h *Handler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	ops := h.Store.List()

	end := ledger.Today()
	if raw := r.URL.Query().Get("end"); raw != "" {
		var err error
		if end, err = ledger.ParseDay(raw); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end date", err)
			return
		}
	}

	var start ledger.Day
	if raw := r.URL.Query().Get("start"); raw != "" {
		var err error
		if start, err = ledger.ParseDay(raw); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start date", err)
			return
		}
	} else if first, ok := ledger.FirstOperationDay(ops); ok {
		start = first
	} else {
		start = end
	}

	writeJSON(w, http.StatusOK, ledger.PeriodDelta(ops, start, end))
}

// GetSummary aggregates one month (?month=YYYY-MM, default current),
// optionally filtered by ?category= and ?bank=. Expense netting uses the
// full-ledger reimbursement map regardless of the filter.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = ledger.Today().MonthKey()
	}
	if _, err := ledger.ParseDay(month + "-01"); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month format (use YYYY-MM)", err)
		return
	}
	category := r.URL.Query().Get("category")
	bank := r.URL.Query().Get("bank")

	all := h.Store.List()
	reimbursed := ledger.ReimbursedByExpense(all)

	var visible []ledger.Operation
	for _, o := range all {
		if o.Date.MonthKey() != month {
			continue
		}
		if category != "" && o.Category != category {
			continue
		}
		if bank != "" && o.Bank != bank {
			continue
		}
		visible = append(visible, o)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"month":  month,
		"totals": ledger.ComputePeriodTotals(visible, reimbursed),
	})
}

// GetDebts returns the per-person debt summary.
func (h *Handler) GetDebts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ledger.ComputeDebtSummary(h.Store.List(), h.Cols.People()))
}

// =============================================================================
// LIST HANDLERS
// =============================================================================

func listByName(name string, cols *ledger.Collections) ([]string, bool) {
	switch ledger.ListName(name) {
	case ledger.ListCategories:
		return cols.Categories(), true
	case ledger.ListBanks:
		return cols.Banks(), true
	case ledger.ListAccountTypes:
		return cols.AccountTypes(), true
	case ledger.ListPeople:
		return cols.People(), true
	}
	return nil, false
}

// GetList returns one of the plain string lists.
func (h *Handler) GetList(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	values, ok := listByName(name, h.Cols)
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown list", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"values": values})
}

// PutList replaces one of the plain string lists.
func (h *Handler) PutList(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, ok := listByName(name, h.Cols); !ok {
		writeError(w, http.StatusNotFound, "Unknown list", nil)
		return
	}

	var req ListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	switch ledger.ListName(name) {
	case ledger.ListCategories:
		h.Cols.SetCategories(ctx, req.Values)
	case ledger.ListBanks:
		h.Cols.SetBanks(ctx, req.Values)
	case ledger.ListAccountTypes:
		h.Cols.SetAccountTypes(ctx, req.Values)
	case ledger.ListPeople:
		h.Cols.SetPeople(ctx, req.Values)
	}

	values, _ := listByName(name, h.Cols)
	writeJSON(w, http.StatusOK, map[string]any{"values": values})
}

// GetSubcategories returns the category -> subcategories map.
func (h *Handler) GetSubcategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SubcategoriesRequest{Subcategories: h.Cols.Subcategories()})
}

// PutSubcategories replaces the map.
func (h *Handler) PutSubcategories(w http.ResponseWriter, r *http.Request) {
	var req SubcategoriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.Cols.SetSubcategories(r.Context(), req.Subcategories)
	writeJSON(w, http.StatusOK, SubcategoriesRequest{Subcategories: h.Cols.Subcategories()})
}

// GetCategoryColors returns the category -> color map.
func (h *Handler) GetCategoryColors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ColorsRequest{Colors: h.Cols.CategoryColors()})
}

// PutCategoryColors replaces the map.
func (h *Handler) PutCategoryColors(w http.ResponseWriter, r *http.Request) {
	var req ColorsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.Cols.SetCategoryColors(r.Context(), req.Colors)
	writeJSON(w, http.StatusOK, ColorsRequest{Colors: h.Cols.CategoryColors()})
}

// =============================================================================
// AUTO-CATEGORIZE HANDLERS
// =============================================================================

// GetAutoCatRules returns the rule set.
func (h *Handler) GetAutoCatRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AutoCatRulesRequest{Rules: h.Cols.AutoCatRules()})
}

// PutAutoCatRules replaces the rule set.
func (h *Handler) PutAutoCatRules(w http.ResponseWriter, r *http.Request) {
	var req AutoCatRulesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.Cols.SetAutoCatRules(r.Context(), req.Rules)
	writeJSON(w, http.StatusOK, AutoCatRulesRequest{Rules: h.Cols.AutoCatRules()})
}

// ApplyAutoCat re-categorizes the whole ledger with the current rules.
func (h *Handler) ApplyAutoCat(w http.ResponseWriter, r *http.Request) {
	ops, changed := ledger.ApplyAutoCatRules(h.Cols.AutoCatRules(), h.Store.List())
	if changed > 0 {
		h.Store.ReplaceAll(r.Context(), ops)
	}
	writeJSON(w, http.StatusOK, ApplyAutoCatResponse{Changed: changed})
}

// =============================================================================
// RECURRING HANDLERS
// =============================================================================

// GetRecurringRules returns the rule set.
func (h *Handler) GetRecurringRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RecurringRulesRequest{Rules: h.Cols.RecurringRules()})
}

// PutRecurringRules replaces the rule set.
func (h *Handler) PutRecurringRules(w http.ResponseWriter, r *http.Request) {
	var req RecurringRulesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.Cols.SetRecurringRules(r.Context(), req.Rules)
	writeJSON(w, http.StatusOK, RecurringRulesRequest{Rules: h.Cols.RecurringRules()})
}

// MaterializeRecurring runs one materializer pass against today.
func (h *Handler) MaterializeRecurring(w http.ResponseWriter, r *http.Request) {
	res := ledger.Materialize(h.Cols.RecurringRules(), h.Store.List(), ledger.Today())
	if len(res.Added) > 0 {
		h.Store.Prepend(r.Context(), res.Added...)
	}
	if res.Changed {
		h.Cols.SetRecurringRules(r.Context(), res.Rules)
	}
	writeJSON(w, http.StatusOK, MaterializeResponse{Added: len(res.Added), Changed: res.Changed})
}

// PreviewRecurring projects occurrences in [?from, ?to] without mutating
// anything. Defaults to the rest of the current month.
func (h *Handler) PreviewRecurring(w http.ResponseWriter, r *http.Request) {
	from := ledger.Today()
	to := from.EndOfMonth()
	var err error
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err = ledger.ParseDay(raw); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date", err)
			return
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, err = ledger.ParseDay(raw); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date", err)
			return
		}
	}
	occurrences := ledger.PreviewRecurring(h.Cols.RecurringRules(), h.Store.List(), from, to)
	writeJSON(w, http.StatusOK, map[string]any{"occurrences": occurrences})
}

// =============================================================================
// FORECAST HANDLERS
// =============================================================================

// GetForecastItems returns the forecast item set.
func (h *Handler) GetForecastItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ForecastItemsRequest{Items: h.Cols.ForecastItems()})
}

// PutForecastItems replaces the forecast item set.
func (h *Handler) PutForecastItems(w http.ResponseWriter, r *http.Request) {
	var req ForecastItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.Cols.SetForecastItems(r.Context(), req.Items)
	writeJSON(w, http.StatusOK, ForecastItemsRequest{Items: h.Cols.ForecastItems()})
}

// DeleteForecastItem removes one item.
func (h *Handler) DeleteForecastItem(w http.ResponseWriter, r *http.Request) {
	if !h.Cols.RemoveForecastItem(r.Context(), chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "Forecast item not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ConvertForecastItem turns a forecast item into a real operation and
// removes the item.
func (h *Handler) ConvertForecastItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var item *ledger.ForecastItem
	for _, it := range h.Cols.ForecastItems() {
		if it.ID == id {
			found := it
			item = &found
			break
		}
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "Forecast item not found", nil)
		return
	}

	op, err := h.Store.Add(r.Context(), ledger.OperationFromForecast(*item))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.Cols.RemoveForecastItem(r.Context(), id)
	writeJSON(w, http.StatusCreated, op)
}

// GetProjection returns the end-of-month projection.
func (h *Handler) GetProjection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ledger.ComputeProjection(
		h.Store.List(),
		h.Cols.ForecastItems(),
		h.Cols.RecurringRules(),
		h.Cols.ForecastSettings(),
		ledger.Today(),
	))
}

// GetForecastSettings returns the projection settings.
func (h *Handler) GetForecastSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Cols.ForecastSettings())
}

// PutForecastSettings replaces the projection settings.
func (h *Handler) PutForecastSettings(w http.ResponseWriter, r *http.Request) {
	var settings ledger.ForecastSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.Cols.SetForecastSettings(r.Context(), settings)
	writeJSON(w, http.StatusOK, h.Cols.ForecastSettings())
}

// =============================================================================
// BACKUP HANDLERS
// =============================================================================

// GetSyncStatus reports the cloud sync state.
func (h *Handler) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	if h.Backup == nil {
		writeJSON(w, http.StatusOK, SyncStatusResponse{Status: string(backup.StatusIdle)})
		return
	}
	writeJSON(w, http.StatusOK, SyncStatusResponse{
		Connected: h.Backup.Connected(),
		Status:    string(h.Backup.Status()),
		Conflict:  h.Backup.PendingConflict() != nil,
	})
}

// BackupNow uploads the full state immediately.
func (h *Handler) BackupNow(w http.ResponseWriter, r *http.Request) {
	if h.Backup == nil {
		writeError(w, http.StatusServiceUnavailable, "Cloud backup is not configured", nil)
		return
	}
	if err := h.Backup.BackupNow(r.Context()); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RestoreBackup downloads and applies the remote snapshot.
func (h *Handler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	if h.Backup == nil {
		writeError(w, http.StatusServiceUnavailable, "Cloud backup is not configured", nil)
		return
	}
	if err := h.Backup.Restore(r.Context()); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetConflict returns the pending conflict, or 404 when there is none.
func (h *Handler) GetConflict(w http.ResponseWriter, r *http.Request) {
	if h.Backup == nil {
		writeError(w, http.StatusServiceUnavailable, "Cloud backup is not configured", nil)
		return
	}
	conflict := h.Backup.PendingConflict()
	if conflict == nil {
		writeError(w, http.StatusNotFound, "No pending conflict", nil)
		return
	}
	writeJSON(w, http.StatusOK, conflict)
}

// ResolveConflict applies the operator's decision.
func (h *Handler) ResolveConflict(w http.ResponseWriter, r *http.Request) {
	if h.Backup == nil {
		writeError(w, http.StatusServiceUnavailable, "Cloud backup is not configured", nil)
		return
	}
	var req ResolveConflictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	choice := backup.Choice(req.Choice)
	if choice != backup.UseRemote && choice != backup.KeepLocal {
		writeError(w, http.StatusBadRequest, "Choice must be use_remote or keep_local", nil)
		return
	}
	if err := h.Backup.Resolve(r.Context(), choice); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// WIPE
// =============================================================================

// Wipe clears the whole operation history. Collections survive.
func (h *Handler) Wipe(w http.ResponseWriter, r *http.Request) {
	h.Store.Wipe(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, body any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		http.Error(w, `{"error":"encoding response failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors to HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case ledger.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Validation failed", err)
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, http.StatusNotFound, "Record not found", err)
	case errors.Is(err, backup.ErrConflictPending):
		writeError(w, http.StatusConflict, "A backup conflict is pending", err)
	case errors.Is(err, backup.ErrNoConflict):
		writeError(w, http.StatusNotFound, "No pending conflict", err)
	case errors.Is(err, backup.ErrMalformedPayload):
		writeError(w, http.StatusBadGateway, "Remote backup is malformed", err)
	default:
		h.Log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusBadGateway, "Cloud sync failed", err)
	}
}
