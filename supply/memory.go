/*
memory.go - In-memory supply provider

PURPOSE:
  A Provider backed by plain maps, for tests and quick experiments. Supports
  injected per-read failures so degraded-data paths can be exercised without
  a misbehaving backend.
*/
package supply

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryProvider is a map-backed Provider. Safe for concurrent use.
type MemoryProvider struct {
	mu         sync.RWMutex
	stock      map[string]StockLevel // key: item|warehouse
	receipts   map[string][]Receipt  // key: item code
	stockErrs  map[string]error      // key: item|warehouse
	supplyErrs map[string]error      // key: item code
}

// NewMemoryProvider creates an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		stock:      make(map[string]StockLevel),
		receipts:   make(map[string][]Receipt),
		stockErrs:  make(map[string]error),
		supplyErrs: make(map[string]error),
	}
}

// SetStock records the stock level for an item in a warehouse.
func (m *MemoryProvider) SetStock(itemCode, warehouse string, level StockLevel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[stockKey(itemCode, warehouse)] = level
}

// AddReceipt appends a future receipt for an item.
func (m *MemoryProvider) AddReceipt(r Receipt) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(strings.TrimSpace(r.ItemCode))
	rs := append(m.receipts[key], r)
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].ExpectedDate.Before(rs[j].ExpectedDate) })
	m.receipts[key] = rs
}

// FailStock makes stock reads for the item/warehouse fail with err.
func (m *MemoryProvider) FailStock(itemCode, warehouse string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stockErrs[stockKey(itemCode, warehouse)] = err
}

// FailFutureSupply makes future-supply reads for the item fail with err.
func (m *MemoryProvider) FailFutureSupply(itemCode string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.supplyErrs[strings.ToLower(strings.TrimSpace(itemCode))] = err
}

// CurrentQuantity implements Provider.
func (m *MemoryProvider) CurrentQuantity(ctx context.Context, itemCode, warehouse string) (StockLevel, error) {
	if err := ctx.Err(); err != nil {
		return StockLevel{}, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	key := stockKey(itemCode, warehouse)
	if err, ok := m.stockErrs[key]; ok {
		return StockLevel{}, err
	}
	level, ok := m.stock[key]
	if !ok {
		return StockLevel{}, fmt.Errorf("%w: no bin for %s in %s", ErrNotFound, itemCode, warehouse)
	}
	return level, nil
}

// FutureSupply implements Provider.
func (m *MemoryProvider) FutureSupply(ctx context.Context, itemCode string) ([]Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	key := strings.ToLower(strings.TrimSpace(itemCode))
	if err, ok := m.supplyErrs[key]; ok {
		return nil, err
	}
	out := make([]Receipt, len(m.receipts[key]))
	copy(out, m.receipts[key])
	return out, nil
}
