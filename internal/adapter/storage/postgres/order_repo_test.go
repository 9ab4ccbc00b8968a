package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"meli-reconciler/internal/core/domain"
	"meli-reconciler/internal/core/ports"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderColumnNames() []string {
	return []string{"order_id", "date_created", "pack_id", "status", "currency_id", "shipping_id", "shipping_cost", "buyer", "order_items", "updated_at"}
}

func newTestOrder() *domain.Order {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Order{
		OrderID:     2000009876543210,
		DateCreated: now.Add(-48 * time.Hour),
		Status:      domain.OrderStatusPaid,
		CurrencyID:  "MXN",
		ShippingID:  lo.ToPtr(int64(43000001)),
		Buyer:       domain.Buyer{ID: 9, Nickname: "BUYER9"},
		Items: []domain.OrderItem{
			{ID: "MLM1", SellerSKU: "W-1", Quantity: 2, UnitPrice: decimal.RequireFromString("199.90"), ProductCost: lo.ToPtr(decimal.RequireFromString("80"))},
			{ID: "MLM2", SellerSKU: "W-2", Quantity: 1, UnitPrice: decimal.RequireFromString("50")},
		},
		UpdatedAt: now,
	}
}

func orderRow(t *testing.T, o *domain.Order, shippingCost any) *pgxmock.Rows {
	t.Helper()
	buyer, err := json.Marshal(o.Buyer)
	require.NoError(t, err)
	items, err := marshalItems(o.Items)
	require.NoError(t, err)
	return pgxmock.NewRows(orderColumnNames()).AddRow(
		o.OrderID, o.DateCreated, o.PackID, string(o.Status), o.CurrencyID,
		o.ShippingID, shippingCost, buyer, items, o.UpdatedAt,
	)
}

func TestOrderRepo_Upsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	o := newTestOrder()

	mock.ExpectExec("INSERT INTO orders .+ ON CONFLICT \\(order_id\\) DO UPDATE SET").
		WithArgs(o.OrderID, o.DateCreated, o.PackID, "paid", "MXN",
			o.ShippingID, decimal.NullDecimal{}, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Upsert(context.Background(), o))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_Upsert_DoesNotOverwriteShippingCost(t *testing.T) {
	// The conflict branch must not mention shipping_cost.
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DO UPDATE SET\s+date_created = EXCLUDED.date_created,\s+pack_id = EXCLUDED.pack_id,\s+status = EXCLUDED.status,\s+currency_id = EXCLUDED.currency_id,\s+shipping_id = COALESCE\(EXCLUDED.shipping_id, orders.shipping_id\),\s+buyer = EXCLUDED.buyer,\s+order_items = EXCLUDED.order_items,\s+updated_at = NOW\(\)$`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, NewOrderRepo(mock).Upsert(context.Background(), newTestOrder()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_Get_RoundTrip(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	o := newTestOrder()

	mock.ExpectQuery("SELECT .+ FROM orders WHERE order_id = \\$1").
		WithArgs(o.OrderID).
		WillReturnRows(orderRow(t, o, "12.50"))

	got, err := repo.Get(context.Background(), o.OrderID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, o.OrderID, got.OrderID)
	assert.Equal(t, domain.OrderStatusPaid, got.Status)
	require.NotNil(t, got.ShippingID)
	assert.Equal(t, *o.ShippingID, *got.ShippingID)
	require.NotNil(t, got.ShippingCost)
	assert.True(t, got.ShippingCost.Equal(decimal.RequireFromString("12.5")))
	require.Len(t, got.Items, 2)
	require.NotNil(t, got.Items[0].ProductCost)
	assert.True(t, got.Items[0].ProductCost.Equal(decimal.NewFromInt(80)))
	assert.Nil(t, got.Items[1].ProductCost, "unattributed cost survives the round trip")
	assert.Equal(t, "BUYER9", got.Buyer.Nickname)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_Get_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM orders WHERE order_id").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(orderColumnNames()))

	got, err := NewOrderRepo(mock).Get(context.Background(), 1)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestOrderRepo_GetMany(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	o := newTestOrder()
	ids := []int64{o.OrderID, 42}

	mock.ExpectQuery("SELECT .+ FROM orders WHERE order_id = ANY").
		WithArgs(ids).
		WillReturnRows(orderRow(t, o, nil))

	got, err := repo.GetMany(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[o.OrderID].ShippingCost)
	_, ok := got[42]
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_ApplyShipmentCost(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cost := decimal.RequireFromString("30")
	mock.ExpectExec("UPDATE orders SET\\s+shipping_cost = CASE\\s+WHEN order_id = \\(SELECT MIN\\(order_id\\)").
		WithArgs(int64(77), cost).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := NewOrderRepo(mock).ApplyShipmentCost(context.Background(), 77, cost)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_ListShipmentGroups(t *testing.T) {
	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		filter  ports.ShipmentGroupFilter
		pattern string
		args    []any
	}{
		{
			name:    "all groups",
			pattern: "WHERE shipping_id IS NOT NULL\\s+GROUP BY shipping_id\\s+HAVING COUNT\\(\\*\\) >= 2",
		},
		{
			name:    "by shipping ids",
			filter:  ports.ShipmentGroupFilter{ShippingIDs: []int64{77, 78}},
			pattern: "shipping_id = ANY\\(\\$1\\)",
			args:    []any{[]int64{77, 78}},
		},
		{
			name:    "created since",
			filter:  ports.ShipmentGroupFilter{CreatedSince: &since},
			pattern: "shipping_id IN \\(SELECT shipping_id FROM orders WHERE date_created >= \\$1\\)",
			args:    []any{since},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			rows := pgxmock.NewRows([]string{"shipping_id", "sum", "count"}).
				AddRow(int64(77), "30", int64(3))
			exp := mock.ExpectQuery(tt.pattern)
			if len(tt.args) > 0 {
				exp = exp.WithArgs(tt.args...)
			}
			exp.WillReturnRows(rows)

			got, err := NewOrderRepo(mock).ListShipmentGroups(context.Background(), tt.filter)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, int64(77), got[0].ShippingID)
			assert.Equal(t, 3, got[0].Count)
			assert.True(t, got[0].Share().Equal(decimal.NewFromInt(10)))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestOrderRepo_SetGroupShippingCost(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	share := decimal.RequireFromString("33.33")
	anchor := decimal.RequireFromString("33.34")
	mock.ExpectExec("CASE WHEN order_id = MIN\\(order_id\\) OVER \\(\\) THEN \\$3::numeric ELSE \\$2::numeric END(?s:.*)UPDATE orders o SET shipping_cost = t.cost(?s:.*)IS DISTINCT FROM t.cost").
		WithArgs(int64(77), share, anchor).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := NewOrderRepo(mock).SetGroupShippingCost(context.Background(), 77, share, anchor)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_ListMissingItemCosts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	since := time.Now().Add(-30 * 24 * time.Hour)
	o := newTestOrder()
	mock.ExpectQuery("jsonb_array_elements\\(order_items\\)").
		WithArgs(since).
		WillReturnRows(orderRow(t, o, "0"))

	got, err := NewOrderRepo(mock).ListMissingItemCosts(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].NeedsCostCheck())
}

func TestOrderRepo_ListIncompletePaid(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("jsonb_array_length\\(order_items\\) = 0").
		WithArgs("paid").
		WillReturnRows(pgxmock.NewRows(orderColumnNames()))

	got, err := NewOrderRepo(mock).ListIncompletePaid(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOrderRepo_ListCreatedSince_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	since := time.Now()
	mock.ExpectQuery("LIMIT \\$2 OFFSET \\$3").
		WithArgs(since, 200, 400).
		WillReturnError(errors.New("timeout"))

	_, err = NewOrderRepo(mock).ListCreatedSince(context.Background(), since, 200, 400)
	assert.ErrorContains(t, err, "list orders created since")
}

func TestOrderRepo_Counts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	since := time.Now().Add(-7 * 24 * time.Hour)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM orders WHERE date_created >= \\$1$").
		WithArgs(since).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(40)))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM orders WHERE date_created >= \\$1 AND EXISTS").
		WithArgs(since).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(4)))

	total, err := repo.CountCreatedSince(context.Background(), since)
	require.NoError(t, err)
	missing, err := repo.CountMissingCostSince(context.Background(), since)
	require.NoError(t, err)

	assert.Equal(t, int64(40), total)
	assert.Equal(t, int64(4), missing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_UpdatesAndDelete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	ctx := context.Background()
	cost := decimal.RequireFromString("99.5")

	mock.ExpectExec("UPDATE orders SET order_items = \\$2").
		WithArgs(int64(1), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE orders SET shipping_id = \\$2").
		WithArgs(int64(1), int64(77)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE orders SET shipping_cost = \\$2").
		WithArgs(int64(1), cost).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM orders").
		WillReturnResult(pgxmock.NewResult("DELETE", 9))

	require.NoError(t, repo.UpdateItems(ctx, 1, nil))
	require.NoError(t, repo.SetShippingID(ctx, 1, 77))
	require.NoError(t, repo.SetShippingCost(ctx, 1, cost))
	n, err := repo.DeleteAll(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
