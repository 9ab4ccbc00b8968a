package domain

import "github.com/shopspring/decimal"

// ShippingOption is the cost breakdown of a shipment. ListCost is the full
// price of the shipment; Cost is the part the buyer paid.
type ShippingOption struct {
	ListCost decimal.Decimal `json:"list_cost"`
	Cost     decimal.Decimal `json:"cost"`
}

// Shipment is the subset of the marketplace shipment the reconciler reads.
type Shipment struct {
	ID             int64           `json:"id"`
	ShippingOption *ShippingOption `json:"shipping_option"`
}

// RealCost returns the cost absorbed by the seller (list cost minus what the
// buyer paid). Negative values are returned as-is.
func (s *Shipment) RealCost() (decimal.Decimal, bool) {
	if s.ShippingOption == nil {
		return decimal.Zero, false
	}
	return s.ShippingOption.ListCost.Sub(s.ShippingOption.Cost), true
}

// ShipmentGroup aggregates the orders sharing one shipping id.
type ShipmentGroup struct {
	ShippingID int64
	Total      decimal.Decimal
	Count      int
}

// Share is the per-order cost after an even split, truncated to cents.
func (g ShipmentGroup) Share() decimal.Decimal {
	if g.Count == 0 {
		return decimal.Zero
	}
	return g.Total.Div(decimal.NewFromInt(int64(g.Count))).Truncate(2)
}

// AnchorShare is the cost carried by the lowest order id of the group: the
// even share plus the cents the split leaves over. Members always sum to
// Total.
func (g ShipmentGroup) AnchorShare() decimal.Decimal {
	if g.Count == 0 {
		return decimal.Zero
	}
	return g.Total.Sub(g.Share().Mul(decimal.NewFromInt(int64(g.Count - 1))))
}
