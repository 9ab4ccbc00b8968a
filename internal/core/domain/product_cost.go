package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// CostEntry records the cost a SKU had from Date onwards.
type CostEntry struct {
	Date time.Time       `json:"date"`
	Cost decimal.Decimal `json:"cost"`
}

// ProductCost is the cost record of one SKU. History holds cost changes only.
type ProductCost struct {
	SKU         string          `json:"sku"`
	CurrentCost decimal.Decimal `json:"current_cost"`
	History     []CostEntry     `json:"historical_costs"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// SortedHistory returns the history ordered by date ascending. Stored order
// is not significant.
func (p *ProductCost) SortedHistory() []CostEntry {
	out := make([]CostEntry, len(p.History))
	copy(out, p.History)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// CostAsOf returns the cost in effect at t: the latest entry dated on or
// before t, else CurrentCost.
func (p *ProductCost) CostAsOf(t time.Time) decimal.Decimal {
	hist := p.SortedHistory()
	for i := len(hist) - 1; i >= 0; i-- {
		if !hist[i].Date.After(t) {
			return hist[i].Cost
		}
	}
	return p.CurrentCost
}

// LastEntry returns the most recent history entry by date.
func (p *ProductCost) LastEntry() (CostEntry, bool) {
	hist := p.SortedHistory()
	if len(hist) == 0 {
		return CostEntry{}, false
	}
	return hist[len(hist)-1], true
}

// RecordCost sets the current cost and appends a history entry when it
// differs from the last recorded one. It reports whether anything changed.
func (p *ProductCost) RecordCost(at time.Time, cost decimal.Decimal) bool {
	if last, ok := p.LastEntry(); ok && last.Cost.Equal(cost) {
		return false
	}
	p.History = append(p.History, CostEntry{Date: at, Cost: cost})
	p.CurrentCost = cost
	return true
}

// HistoryBuilder collects run-length encoded cost histories from dated
// snapshots. Observations must be fed in ascending date order.
type HistoryBuilder struct {
	last    map[string]decimal.Decimal
	entries map[string][]CostEntry
}

// NewHistoryBuilder creates an empty builder.
func NewHistoryBuilder() *HistoryBuilder {
	return &HistoryBuilder{
		last:    make(map[string]decimal.Decimal),
		entries: make(map[string][]CostEntry),
	}
}

// Observe records cost for sku at date if it differs from the previous
// observation. It reports whether an entry was added.
func (b *HistoryBuilder) Observe(sku string, date time.Time, cost decimal.Decimal) bool {
	if prev, ok := b.last[sku]; ok && prev.Equal(cost) {
		return false
	}
	b.last[sku] = cost
	b.entries[sku] = append(b.entries[sku], CostEntry{Date: date, Cost: cost})
	return true
}

// History returns the collected entries for sku.
func (b *HistoryBuilder) History(sku string) []CostEntry {
	return b.entries[sku]
}

// Len returns the number of SKUs with at least one entry.
func (b *HistoryBuilder) Len() int {
	return len(b.entries)
}
