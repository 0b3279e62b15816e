/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the promise engine's domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

DATES:
  All dates cross the wire as "YYYY-MM-DD" strings. Parsing happens in the
  handlers; a bad date is a validation failure, never a computed Promise.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/rules.go: RulesJSON, accepted inline on promise requests
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/promise-engine/factory"
	"github.com/warp/promise-engine/promise"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ItemRequestDTO is one requested item line.
type ItemRequestDTO struct {
	ItemCode  string          `json:"item_code"`
	Qty       decimal.Decimal `json:"qty"`
	Warehouse string          `json:"warehouse,omitempty"`
}

// PromiseRequestDTO asks for a promise calculation.
type PromiseRequestDTO struct {
	Customer    string             `json:"customer"`
	Items       []ItemRequestDTO   `json:"items"`
	DesiredDate string             `json:"desired_date,omitempty"`
	Rules       *factory.RulesJSON `json:"rules,omitempty"`
}

// ApplyPromiseRequest asks for a promise to be written back to an order.
type ApplyPromiseRequest struct {
	OrderID     string `json:"order_id"`
	PromiseDate string `json:"promise_date"`
	Confidence  string `json:"confidence"`
	Comment     string `json:"comment,omitempty"`
}

// LoadDemoRequest points the demo loader at CSV files.
type LoadDemoRequest struct {
	StockFile          string `json:"stock_file"`
	PurchaseOrdersFile string `json:"purchase_orders_file,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// SourceDTO is one consumed fulfillment source.
type SourceDTO struct {
	Source        string          `json:"source"`
	Qty           decimal.Decimal `json:"qty"`
	AvailableDate string          `json:"available_date"`
	Warehouse     string          `json:"warehouse,omitempty"`
	POID          string          `json:"po_id,omitempty"`
	ExpectedDate  string          `json:"expected_date,omitempty"`
}

// ItemPlanDTO is the fulfillment plan for one item.
type ItemPlanDTO struct {
	ItemCode       string          `json:"item_code"`
	QtyRequired    decimal.Decimal `json:"qty_required"`
	Fulfillment    []SourceDTO     `json:"fulfillment"`
	Shortage       decimal.Decimal `json:"shortage"`
	AccessDegraded bool            `json:"access_degraded,omitempty"`
}

// PromiseResponseDTO is the full calculation result.
type PromiseResponseDTO struct {
	Status          string           `json:"status"`
	PromiseDate     *string          `json:"promise_date"`
	PromiseDateRaw  *string          `json:"promise_date_raw"`
	DesiredDate     *string          `json:"desired_date,omitempty"`
	DesiredDateMode string           `json:"desired_date_mode"`
	OnTime          *bool            `json:"on_time"`
	Confidence      string           `json:"confidence"`
	Plan            []ItemPlanDTO    `json:"plan"`
	Reasons         []string         `json:"reasons"`
	Blockers        []string         `json:"blockers"`
	Options         []promise.Option `json:"options"`
}

// ApplyPromiseResponse reports a recorded write-back.
type ApplyPromiseResponse struct {
	Status       string   `json:"status"`
	OrderID      string   `json:"order_id"`
	AppliedID    string   `json:"applied_id"`
	ActionsTaken []string `json:"actions_taken"`
}

// WarehouseAvailabilityDTO is one warehouse's stock picture for an item.
type WarehouseAvailabilityDTO struct {
	Warehouse    string          `json:"warehouse"`
	Type         string          `json:"type"`
	ActualQty    decimal.Decimal `json:"actual_qty"`
	ReservedQty  decimal.Decimal `json:"reserved_qty"`
	AvailableQty decimal.Decimal `json:"available_qty"`
}

// IncomingSupplyDTO is one incoming receipt for an item.
type IncomingSupplyDTO struct {
	POID         string          `json:"po_id"`
	Qty          decimal.Decimal `json:"qty"`
	ExpectedDate string          `json:"expected_date"`
	Warehouse    string          `json:"warehouse,omitempty"`
}

// AvailabilityDTO is the supply picture for one item.
type AvailabilityDTO struct {
	ItemCode   string                     `json:"item_code"`
	Warehouses []WarehouseAvailabilityDTO `json:"warehouses"`
	Incoming   []IncomingSupplyDTO        `json:"incoming"`
}

// HealthResponse is the health probe body.
type HealthResponse struct {
	Status            string `json:"status"`
	Version           string `json:"version"`
	SnapshotReachable bool   `json:"snapshot_reachable"`
	Message           string `json:"message,omitempty"`
}

// LoadDemoResponse reports what the loader imported.
type LoadDemoResponse struct {
	Status         string `json:"status"`
	StockRows      int    `json:"stock_rows"`
	PurchaseOrders int    `json:"purchase_orders"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// MAPPING
// =============================================================================

const dateLayout = "2006-01-02"

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func toPromiseResponse(p *promise.Promise) PromiseResponseDTO {
	resp := PromiseResponseDTO{
		Status:          string(p.Status),
		PromiseDate:     formatDate(p.PromiseDate),
		PromiseDateRaw:  formatDate(p.RawPromiseDate),
		DesiredDate:     formatDate(p.DesiredDate),
		DesiredDateMode: string(p.DesiredDateMode),
		OnTime:          p.OnTime,
		Confidence:      string(p.Confidence),
		Plan:            make([]ItemPlanDTO, len(p.Plan)),
		Reasons:         p.Reasons,
		Blockers:        p.Blockers,
		Options:         p.Options,
	}
	for i, plan := range p.Plan {
		dto := ItemPlanDTO{
			ItemCode:       plan.Line.ItemCode,
			QtyRequired:    plan.Line.Qty,
			Fulfillment:    make([]SourceDTO, len(plan.Allocation)),
			Shortage:       plan.Shortage,
			AccessDegraded: plan.AccessDegraded,
		}
		for j, e := range plan.Allocation {
			source := SourceDTO{
				Qty:           e.Qty,
				AvailableDate: e.Source.Available.Format(dateLayout),
				Warehouse:     e.Source.Warehouse,
			}
			if e.Source.Kind == promise.SourcePurchaseOrder {
				source.Source = "purchase_order"
				source.POID = e.Source.DocumentID
				source.ExpectedDate = e.Source.ExpectedDate.Format(dateLayout)
			} else {
				source.Source = "stock"
			}
			dto.Fulfillment[j] = source
		}
		resp.Plan[i] = dto
	}
	return resp
}
