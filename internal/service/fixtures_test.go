package service

import (
	"context"
	"fmt"
	"time"

	"meli-reconciler/internal/core/domain"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// mockTx implements pgx.Tx for testing
type mockTx struct {
	pgx.Tx
	committed bool
}

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error {
	m.committed = true
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	return lo.ToPtr(dec(s))
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// decimalEq matches a decimal.Decimal by value rather than representation.
type decimalEq struct{ want decimal.Decimal }

func decEq(s string) decimalEq { return decimalEq{want: dec(s)} }

func (m decimalEq) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalEq) String() string { return "decimal equal to " + m.want.String() }

// decimalMapEq matches a map[int64]decimal.Decimal by value.
type decimalMapEq map[int64]string

func (m decimalMapEq) Matches(x any) bool {
	got, ok := x.(map[int64]decimal.Decimal)
	if !ok || len(got) != len(m) {
		return false
	}
	for k, v := range m {
		if d, ok := got[k]; !ok || !d.Equal(dec(v)) {
			return false
		}
	}
	return true
}

func (m decimalMapEq) String() string { return fmt.Sprintf("decimal map %v", map[int64]string(m)) }

// fakeRemoteOrder builds a plausible marketplace order with the given SKUs.
func fakeRemoteOrder(id int64, created time.Time, shippingID *int64, skus ...string) *domain.RemoteOrder {
	items := make([]domain.RemoteOrderItem, 0, len(skus))
	for _, sku := range skus {
		items = append(items, domain.RemoteOrderItem{
			Item: domain.RemoteItem{
				ID:         fmt.Sprintf("MLM%d", gofakeit.Number(100000000, 999999999)),
				Title:      gofakeit.ProductName(),
				CategoryID: fmt.Sprintf("MLM%d", gofakeit.Number(1000, 9999)),
				SellerSKU:  sku,
			},
			Quantity:  gofakeit.Number(1, 3),
			UnitPrice: decimal.NewFromFloat(gofakeit.Price(100, 900)).Round(2),
			SaleFee:   decimal.NewFromFloat(gofakeit.Price(10, 90)).Round(2),
		})
	}
	return &domain.RemoteOrder{
		ID:          id,
		DateCreated: created,
		Status:      string(domain.OrderStatusPaid),
		CurrencyID:  "MXN",
		Shipping:    domain.RemoteShippingRef{ID: shippingID},
		Buyer: domain.RemoteBuyer{
			ID:        int64(gofakeit.Number(1000, 999999)),
			Nickname:  gofakeit.Username(),
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
		},
		OrderItems: items,
	}
}

func ordersNote(id string, orderID int64, received time.Time) domain.Notification {
	return domain.Notification{
		ID:       id,
		Resource: fmt.Sprintf("/orders/%d", orderID),
		UserID:   555,
		Topic:    domain.TopicOrders,
		Received: received,
	}
}
