package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"meli-reconciler/internal/core/domain"
	"meli-reconciler/internal/core/ports"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// CostIndex caches product cost records for the lifetime of one run. It is
// never invalidated; build a new one for every batch.
type CostIndex struct {
	repo ports.ProductCostRepository

	mu      sync.RWMutex
	records map[string]*domain.ProductCost
	absent  map[string]struct{}
}

// NewCostIndex creates an empty index backed by repo.
func NewCostIndex(repo ports.ProductCostRepository) *CostIndex {
	return &CostIndex{
		repo:    repo,
		records: make(map[string]*domain.ProductCost),
		absent:  make(map[string]struct{}),
	}
}

// Load fetches every SKU not seen before with a single query.
func (c *CostIndex) Load(ctx context.Context, skus []string) error {
	c.mu.RLock()
	todo := lo.Filter(lo.Uniq(skus), func(sku string, _ int) bool {
		if sku == "" {
			return false
		}
		_, cached := c.records[sku]
		_, missing := c.absent[sku]
		return !cached && !missing
	})
	c.mu.RUnlock()

	if len(todo) == 0 {
		return nil
	}

	found, err := c.repo.ListBySKUs(ctx, todo)
	if err != nil {
		return fmt.Errorf("load product costs: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range found {
		pc := found[i]
		c.records[pc.SKU] = &pc
	}
	for _, sku := range todo {
		if _, ok := c.records[sku]; !ok {
			c.absent[sku] = struct{}{}
		}
	}
	return nil
}

func (c *CostIndex) lookup(ctx context.Context, sku string) (*domain.ProductCost, bool) {
	c.mu.RLock()
	pc, ok := c.records[sku]
	_, missing := c.absent[sku]
	c.mu.RUnlock()
	if ok || missing {
		return pc, ok
	}

	// A failed lazy load reads as "no record"; callers that care use Load.
	if err := c.Load(ctx, []string{sku}); err != nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	pc, ok = c.records[sku]
	return pc, ok
}

// CurrentCost returns the latest known cost of sku.
func (c *CostIndex) CurrentCost(ctx context.Context, sku string) (decimal.Decimal, bool) {
	pc, ok := c.lookup(ctx, sku)
	if !ok {
		return decimal.Zero, false
	}
	return pc.CurrentCost, true
}

// CostAsOf returns the cost in effect for sku at date. ok is false only when
// the SKU has no record at all.
func (c *CostIndex) CostAsOf(ctx context.Context, sku string, date time.Time) (decimal.Decimal, bool) {
	pc, ok := c.lookup(ctx, sku)
	if !ok {
		return decimal.Zero, false
	}
	return pc.CostAsOf(date), true
}

// Attribute sets the as-of cost on every item accepted by pick (all items
// when pick is nil). Items whose SKU has no record keep their current value.
// It returns the number of items whose cost changed and the unresolved SKUs.
func (c *CostIndex) Attribute(ctx context.Context, items []domain.OrderItem, at time.Time, pick func(domain.OrderItem) bool) (int, []string) {
	changed := 0
	var missing []string

	for i := range items {
		it := &items[i]
		if pick != nil && !pick(*it) {
			continue
		}
		if it.SellerSKU == "" {
			continue
		}

		cost, ok := c.CostAsOf(ctx, it.SellerSKU, at)
		if !ok {
			missing = append(missing, it.SellerSKU)
			continue
		}
		if it.ProductCost != nil && it.ProductCost.Equal(cost) {
			continue
		}
		it.ProductCost = lo.ToPtr(cost)
		changed++
	}
	return changed, lo.Uniq(missing)
}

// needsCostCheck selects items with no cost or a stored zero.
func needsCostCheck(it domain.OrderItem) bool {
	return it.ProductCost == nil || it.ProductCost.IsZero()
}
