/*
handlers.go - HTTP API handlers for the promise service

PURPOSE:
  Exposes the promise engine via REST. Handles HTTP request/response, JSON
  serialization, and delegates to the engine and the snapshot store.

ENDPOINTS:
  Promises:
    POST   /api/promise                 Calculate a promise
    POST   /api/promise/apply           Record a promise write-back

  Items:
    GET    /api/items                   List known item codes
    GET    /api/items/{code}/availability  Per-warehouse supply picture

  Demo data:
    POST   /api/demo/load               Load CSV demo data into the snapshot

  Health:
    GET    /health                      Liveness + snapshot reachability

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, malformed JSON, bad dates
  - 404: Unknown item
  - 500: Internal errors
  Business outcomes (shortage, CANNOT_FULFILL) are 200s - they are results,
  not errors.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/promise-engine/factory"
	"github.com/warp/promise-engine/promise"
	"github.com/warp/promise-engine/store/sqlite"
	"github.com/warp/promise-engine/supply"
)

const version = "0.1.0"

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine       *promise.Engine
	Store        *sqlite.Store
	Classifier   *promise.Classifier
	RulesFactory *factory.RulesFactory
}

// NewHandler creates a handler around an engine and its snapshot store.
func NewHandler(engine *promise.Engine, store *sqlite.Store, classifier *promise.Classifier) *Handler {
	return &Handler{
		Engine:       engine,
		Store:        store,
		Classifier:   classifier,
		RulesFactory: factory.NewRulesFactory(),
	}
}

// =============================================================================
// PROMISE HANDLERS
// =============================================================================

// CalculatePromise computes a promise for the posted request.
func (h *Handler) CalculatePromise(w http.ResponseWriter, r *http.Request) {
	var dto PromiseRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	req := promise.Request{Customer: dto.Customer}
	for _, item := range dto.Items {
		req.Lines = append(req.Lines, promise.DemandLine{
			ItemCode:  item.ItemCode,
			Qty:       item.Qty,
			Warehouse: item.Warehouse,
		})
	}

	if dto.DesiredDate != "" {
		desired, err := time.Parse(dateLayout, dto.DesiredDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid desired_date, expected YYYY-MM-DD", err)
			return
		}
		req.DesiredDate = &desired
	}

	if dto.Rules != nil {
		rules, err := h.RulesFactory.FromJSON(*dto.Rules)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid rules", err)
			return
		}
		req.Rules = &rules
	}

	result, err := h.Engine.Calculate(r.Context(), req)
	if err != nil {
		if promise.IsValidation(err) {
			writeError(w, http.StatusBadRequest, "Invalid promise request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Promise calculation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, toPromiseResponse(result))
}

// ApplyPromise records a promise write-back against an order document.
func (h *Handler) ApplyPromise(w http.ResponseWriter, r *http.Request) {
	var req ApplyPromiseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.OrderID == "" {
		writeError(w, http.StatusBadRequest, "order_id is required", nil)
		return
	}
	promiseDate, err := time.Parse(dateLayout, req.PromiseDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid promise_date, expected YYYY-MM-DD", err)
		return
	}
	confidence := promise.Confidence(req.Confidence)
	switch confidence {
	case promise.ConfidenceHigh, promise.ConfidenceMedium, promise.ConfidenceLow:
	default:
		writeError(w, http.StatusBadRequest, "confidence must be HIGH, MEDIUM, or LOW", nil)
		return
	}

	comment := req.Comment
	if comment == "" {
		comment = "Order promise date: " + req.PromiseDate + " (confidence: " + req.Confidence + ")"
	}

	record := sqlite.AppliedPromise{
		ID:          uuid.NewString(),
		OrderID:     req.OrderID,
		PromiseDate: promiseDate,
		Confidence:  confidence,
		Comment:     comment,
		CreatedAt:   time.Now(),
	}
	if err := h.Store.RecordAppliedPromise(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record applied promise", err)
		return
	}

	writeJSON(w, http.StatusOK, ApplyPromiseResponse{
		Status:    "success",
		OrderID:   req.OrderID,
		AppliedID: record.ID,
		ActionsTaken: []string{
			"Recorded promise date " + req.PromiseDate + " for " + req.OrderID,
			"Attached comment: " + comment,
		},
	})
}

// =============================================================================
// ITEM HANDLERS
// =============================================================================

// ListItems returns the item codes present in the supply snapshot.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListItems(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list items", err)
		return
	}
	if items == nil {
		items = []string{}
	}
	writeJSON(w, http.StatusOK, items)
}

// GetAvailability returns the per-warehouse supply picture for an item.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	bins, err := h.Store.BinsForItem(r.Context(), code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read stock", err)
		return
	}
	receipts, err := h.Store.FutureSupply(r.Context(), code)
	if err != nil && !supply.IsNotFound(err) {
		writeError(w, http.StatusInternalServerError, "Failed to read incoming supply", err)
		return
	}
	if len(bins) == 0 && len(receipts) == 0 {
		writeError(w, http.StatusNotFound, "Unknown item "+code, nil)
		return
	}

	dto := AvailabilityDTO{
		ItemCode:   code,
		Warehouses: make([]WarehouseAvailabilityDTO, len(bins)),
		Incoming:   make([]IncomingSupplyDTO, len(receipts)),
	}
	for i, bin := range bins {
		dto.Warehouses[i] = WarehouseAvailabilityDTO{
			Warehouse:    bin.Warehouse,
			Type:         string(h.Classifier.Classify(bin.Warehouse)),
			ActualQty:    bin.Level.ActualQty,
			ReservedQty:  bin.Level.ReservedQty,
			AvailableQty: bin.Level.AvailableQty,
		}
	}
	for i, rc := range receipts {
		dto.Incoming[i] = IncomingSupplyDTO{
			POID:         rc.DocumentID,
			Qty:          rc.Qty,
			ExpectedDate: rc.ExpectedDate.Format(dateLayout),
			Warehouse:    rc.Warehouse,
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// DEMO DATA AND HEALTH
// =============================================================================

// LoadDemoData replaces the snapshot with data from CSV files.
func (h *Handler) LoadDemoData(w http.ResponseWriter, r *http.Request) {
	var req LoadDemoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.StockFile == "" && req.PurchaseOrdersFile == "" {
		writeError(w, http.StatusBadRequest, "At least one of stock_file or purchase_orders_file is required", nil)
		return
	}

	loader, err := supply.NewCSVProvider(req.StockFile, req.PurchaseOrdersFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to load demo data", err)
		return
	}
	stocks, receipts := loader.StockRows(), loader.Receipts()
	if err := h.Store.ReplaceSupplyData(r.Context(), stocks, receipts); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store demo data", err)
		return
	}

	writeJSON(w, http.StatusOK, LoadDemoResponse{
		Status:         "success",
		StockRows:      len(stocks),
		PurchaseOrders: len(receipts),
	})
}

// Health reports liveness and whether the snapshot store answers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "healthy", Version: version, SnapshotReachable: true}
	if _, err := h.Store.ListItems(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.SnapshotReachable = false
		resp.Message = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	if status >= http.StatusInternalServerError {
		log.Printf("%s: %v", message, err)
	}
	writeJSON(w, status, resp)
}
