/*
Package supply defines the boundary between the promise engine and whatever
system knows about stock and incoming purchase orders.

PURPOSE:
  The engine never fetches data itself. A Provider hands it a snapshot of
  current quantities and future receipts; Gather collects snapshots for all
  requested items in parallel. Failures are classified per fetch - a denied
  or flaky read degrades one item's data instead of failing the batch, and is
  never silently coerced to zero quantity.

FAILURE MODES (use with errors.Is):
  ErrNotFound      no record for the item/bin; zero stock, not a failure
  ErrAccessDenied  permission failure; the item is flagged access-degraded
  ErrTransient     retryable failure; the provider owns retries, not us

IMPLEMENTATIONS:
  - csv.go:           demo-data provider backed by CSV files
  - memory.go:        in-memory provider for tests
  - store/sqlite:     snapshot store used by the API server
*/
package supply

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// FAILURE SENTINELS
// =============================================================================

var (
	// ErrNotFound means the provider has no record of the item or bin.
	ErrNotFound = errors.New("supply record not found")

	// ErrAccessDenied means the read failed on permissions. Must be surfaced
	// distinctly, never treated as zero.
	ErrAccessDenied = errors.New("supply data access denied")

	// ErrTransient means the read failed for a retryable reason. The engine
	// does not retry; that is the provider's job.
	ErrTransient = errors.New("transient supply data failure")
)

// IsAccessDenied reports whether err is a permission failure.
func IsAccessDenied(err error) bool { return errors.Is(err, ErrAccessDenied) }

// IsTransient reports whether err is a retryable failure.
func IsTransient(err error) bool { return errors.Is(err, ErrTransient) }

// IsNotFound reports whether err means "no such record".
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// =============================================================================
// PROVIDER INTERFACE
// =============================================================================

// StockLevel is the current quantity picture for one item in one warehouse.
type StockLevel struct {
	ActualQty    decimal.Decimal
	ReservedQty  decimal.Decimal
	AvailableQty decimal.Decimal
}

// Receipt is one future supply arrival, usually a purchase-order line.
type Receipt struct {
	DocumentID   string
	ItemCode     string
	Qty          decimal.Decimal
	ExpectedDate time.Time
	Warehouse    string
}

// Provider supplies current stock and future receipts for items.
// Implementations own connection handling, timeouts, and retries.
type Provider interface {
	// CurrentQuantity returns the stock level of an item in one warehouse.
	// ErrNotFound means zero stock and is not a failure.
	CurrentQuantity(ctx context.Context, itemCode, warehouse string) (StockLevel, error)

	// FutureSupply returns future receipts for an item, ordered by expected
	// date ascending. Receipts without a confirmed date are omitted.
	FutureSupply(ctx context.Context, itemCode string) ([]Receipt, error)
}
