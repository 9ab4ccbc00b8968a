package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the marketplace order status. Values are not closed; the
// constants list the ones the reconciler reasons about.
type OrderStatus string

const (
	OrderStatusConfirmed        OrderStatus = "confirmed"
	OrderStatusPaymentRequired  OrderStatus = "payment_required"
	OrderStatusPaymentInProcess OrderStatus = "payment_in_process"
	OrderStatusPartiallyPaid    OrderStatus = "partially_paid"
	OrderStatusPaid             OrderStatus = "paid"
	OrderStatusShipped          OrderStatus = "shipped"
	OrderStatusDelivered        OrderStatus = "delivered"
	OrderStatusCancelled        OrderStatus = "cancelled"
)

// IsTerminal reports whether the status never changes again upstream.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusDelivered
}

// Buyer is the buyer snapshot stored with an order.
type Buyer struct {
	ID        int64  `json:"id"`
	Nickname  string `json:"nickname"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// OrderItem is one line of an order. ProductCost is nil until a cost has
// been attributed; a non-nil zero is a real zero cost.
type OrderItem struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	CategoryID  string           `json:"category_id"`
	VariationID *int64           `json:"variation_id"`
	SellerSKU   string           `json:"seller_sku"`
	Quantity    int              `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	SaleFee     decimal.Decimal  `json:"sale_fee"`
	ProductCost *decimal.Decimal `json:"product_cost"`
}

// CostAttributed reports whether a product cost has been attributed.
func (i OrderItem) CostAttributed() bool {
	return i.ProductCost != nil
}

// Order is the reconciled order.
type Order struct {
	OrderID      int64            `json:"order_id"`
	DateCreated  time.Time        `json:"date_created"`
	PackID       *int64           `json:"pack_id"`
	Status       OrderStatus      `json:"status"`
	CurrencyID   string           `json:"currency_id"`
	ShippingID   *int64           `json:"shipping_id"`
	ShippingCost *decimal.Decimal `json:"shipping_cost"`
	Buyer        Buyer            `json:"buyer"`
	Items        []OrderItem      `json:"order_items"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// IsTerminal reports whether the order is cancelled or delivered.
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// ShippingAttributed reports whether a shipping cost has been stored.
func (o *Order) ShippingAttributed() bool {
	return o.ShippingCost != nil
}

// HasUnattributedItems reports whether any line item still lacks a cost.
func (o *Order) HasUnattributedItems() bool {
	for _, it := range o.Items {
		if !it.CostAttributed() {
			return true
		}
	}
	return false
}

// AwaitsShippingID reports an order that should already carry a shipping id.
func (o *Order) AwaitsShippingID() bool {
	return o.ShippingID == nil &&
		(o.Status == OrderStatusPaid || o.Status == OrderStatusShipped)
}

// NeedsCostCheck reports items with no cost or a stored zero. Backfill jobs
// use this wider test so legacy zero rows are re-resolved once.
func (o *Order) NeedsCostCheck() bool {
	for _, it := range o.Items {
		if it.ProductCost == nil || it.ProductCost.IsZero() {
			return true
		}
	}
	return false
}

// SKUs returns the non-empty seller SKUs of the order, in item order.
func (o *Order) SKUs() []string {
	out := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		if it.SellerSKU != "" {
			out = append(out, it.SellerSKU)
		}
	}
	return out
}
