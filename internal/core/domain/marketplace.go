package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// RemoteOrder is the order payload returned by GET orders/{id} and
// orders/search.
type RemoteOrder struct {
	ID          int64             `json:"id"`
	DateCreated time.Time         `json:"date_created"`
	PackID      *int64            `json:"pack_id"`
	Status      string            `json:"status"`
	CurrencyID  string            `json:"currency_id"`
	Shipping    RemoteShippingRef `json:"shipping"`
	Buyer       RemoteBuyer       `json:"buyer"`
	OrderItems  []RemoteOrderItem `json:"order_items"`
}

type RemoteShippingRef struct {
	ID *int64 `json:"id"`
}

type RemoteBuyer struct {
	ID        int64  `json:"id"`
	Nickname  string `json:"nickname"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type RemoteOrderItem struct {
	Item      RemoteItem      `json:"item"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	SaleFee   decimal.Decimal `json:"sale_fee"`
}

type RemoteItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	CategoryID  string `json:"category_id"`
	VariationID *int64 `json:"variation_id"`
	SellerSKU   string `json:"seller_sku"`
}

// OrderSearchPage is one page of orders/search.
type OrderSearchPage struct {
	Results []RemoteOrder `json:"results"`
	Paging  struct {
		Total  int `json:"total"`
		Offset int `json:"offset"`
		Limit  int `json:"limit"`
	} `json:"paging"`
}

// ToOrder maps the remote payload onto the local order shape. Item costs
// and shipping cost are left unattributed.
func (r *RemoteOrder) ToOrder() Order {
	items := make([]OrderItem, 0, len(r.OrderItems))
	for _, oi := range r.OrderItems {
		items = append(items, OrderItem{
			ID:          oi.Item.ID,
			Title:       oi.Item.Title,
			CategoryID:  oi.Item.CategoryID,
			VariationID: oi.Item.VariationID,
			SellerSKU:   strings.TrimSpace(oi.Item.SellerSKU),
			Quantity:    oi.Quantity,
			UnitPrice:   oi.UnitPrice,
			SaleFee:     oi.SaleFee,
		})
	}

	return Order{
		OrderID:     r.ID,
		DateCreated: r.DateCreated,
		PackID:      r.PackID,
		Status:      OrderStatus(r.Status),
		CurrencyID:  normalizeCurrency(r.CurrencyID),
		ShippingID:  r.Shipping.ID,
		Buyer: Buyer{
			ID:        r.Buyer.ID,
			Nickname:  r.Buyer.Nickname,
			FirstName: r.Buyer.FirstName,
			LastName:  r.Buyer.LastName,
		},
		Items: items,
	}
}

// normalizeCurrency returns the ISO 4217 code, or "" when the marketplace
// sent something unrecognised.
func normalizeCurrency(code string) string {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return ""
	}
	return unit.String()
}
