package postgres

import (
	"context"
	"testing"
	"time"

	"meli-reconciler/internal/core/domain"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductCostRepo_ListBySKUs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	skus := []string{"W-1", "W-2"}
	rows := pgxmock.NewRows([]string{"sku", "current_cost", "historical_costs", "updated_at"}).
		AddRow("W-1", "15", []byte(`[{"date":"2024-01-01T00:00:00Z","cost":"10"},{"date":"2024-03-01T00:00:00Z","cost":"12"}]`), time.Now()).
		AddRow("W-2", "3.40", []byte(`[]`), time.Now())

	mock.ExpectQuery("SELECT sku, current_cost, historical_costs, updated_at FROM product_costs WHERE sku = ANY").
		WithArgs(skus).
		WillReturnRows(rows)

	got, err := NewProductCostRepo(mock).ListBySKUs(context.Background(), skus)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.True(t, got[0].CurrentCost.Equal(decimal.NewFromInt(15)))
	require.Len(t, got[0].History, 2)
	asOf := got[0].CostAsOf(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, asOf.Equal(decimal.NewFromInt(10)))
	assert.Empty(t, got[1].History)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductCostRepo_ListBySKUs_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	got, err := NewProductCostRepo(mock).ListBySKUs(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductCostRepo_Upsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	pc := &domain.ProductCost{SKU: "W-1", CurrentCost: decimal.NewFromInt(12)}

	mock.ExpectExec("INSERT INTO product_costs .+ ON CONFLICT \\(sku\\) DO UPDATE").
		WithArgs("W-1", pc.CurrentCost, []byte(`[]`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewProductCostRepo(mock).Upsert(context.Background(), pc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductCostRepo_ReplaceInTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProductCostRepo(mock)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM product_costs").
		WillReturnResult(pgxmock.NewResult("DELETE", 5))
	mock.ExpectExec("INSERT INTO product_costs").
		WithArgs("W-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)
	n, err := repo.DeleteAll(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	require.NoError(t, repo.Insert(ctx, tx, &domain.ProductCost{SKU: "W-1"}))
	require.NoError(t, tx.Commit(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}
