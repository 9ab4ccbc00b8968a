package service

import (
	"context"
	"errors"
	"testing"

	"meli-reconciler/internal/core/domain"
	"meli-reconciler/internal/core/ports/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func historyRecord() domain.ProductCost {
	return domain.ProductCost{
		SKU:         "SKU-1",
		CurrentCost: dec("15"),
		History: []domain.CostEntry{
			{Date: day("2024-03-01"), Cost: dec("12")},
			{Date: day("2024-01-01"), Cost: dec("10")},
		},
	}
}

func TestCostIndex_CostAsOf(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductCostRepository(ctrl)
	repo.EXPECT().ListBySKUs(gomock.Any(), []string{"SKU-1"}).Return([]domain.ProductCost{historyRecord()}, nil).Times(1)

	idx := NewCostIndex(repo)
	ctx := context.Background()
	require.NoError(t, idx.Load(ctx, []string{"SKU-1", "SKU-1", ""}))

	tests := []struct {
		date string
		want string
	}{
		{"2024-02-01", "10"},
		{"2024-04-01", "12"},
		{"2023-01-01", "15"},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			got, ok := idx.CostAsOf(ctx, "SKU-1", day(tt.date))
			require.True(t, ok)
			assert.True(t, got.Equal(dec(tt.want)), "got %s", got)
		})
	}

	cur, ok := idx.CurrentCost(ctx, "SKU-1")
	assert.True(t, ok)
	assert.True(t, cur.Equal(dec("15")))
}

func TestCostIndex_LoadsOnlyUnseenSKUs(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductCostRepository(ctrl)

	gomock.InOrder(
		repo.EXPECT().ListBySKUs(gomock.Any(), []string{"SKU-1", "GONE"}).Return([]domain.ProductCost{historyRecord()}, nil),
		repo.EXPECT().ListBySKUs(gomock.Any(), []string{"SKU-2"}).Return(nil, nil),
	)

	idx := NewCostIndex(repo)
	ctx := context.Background()
	require.NoError(t, idx.Load(ctx, []string{"SKU-1", "GONE"}))
	require.NoError(t, idx.Load(ctx, []string{"SKU-1", "GONE", "SKU-2"}))

	_, ok := idx.CostAsOf(ctx, "GONE", day("2024-01-01"))
	assert.False(t, ok, "known-absent SKUs are not queried again")
}

func TestCostIndex_LazyLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductCostRepository(ctrl)
	repo.EXPECT().ListBySKUs(gomock.Any(), []string{"SKU-1"}).Return([]domain.ProductCost{historyRecord()}, nil)
	repo.EXPECT().ListBySKUs(gomock.Any(), []string{"SKU-9"}).Return(nil, errors.New("connection reset"))

	idx := NewCostIndex(repo)
	cost, ok := idx.CurrentCost(context.Background(), "SKU-1")
	assert.True(t, ok)
	assert.True(t, cost.Equal(dec("15")))

	_, ok = idx.CurrentCost(context.Background(), "SKU-9")
	assert.False(t, ok)
}

func TestCostIndex_Load_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductCostRepository(ctrl)
	repo.EXPECT().ListBySKUs(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

	err := NewCostIndex(repo).Load(context.Background(), []string{"X"})
	assert.ErrorContains(t, err, "load product costs")
}

func TestCostIndex_Attribute(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductCostRepository(ctrl)
	repo.EXPECT().ListBySKUs(gomock.Any(), gomock.Any()).Return([]domain.ProductCost{historyRecord()}, nil)

	idx := NewCostIndex(repo)
	ctx := context.Background()
	require.NoError(t, idx.Load(ctx, []string{"SKU-1", "MISSING"}))

	items := []domain.OrderItem{
		{SellerSKU: "SKU-1"},
		{SellerSKU: "SKU-1", ProductCost: decPtr("10")},
		{SellerSKU: "MISSING"},
		{SellerSKU: ""},
	}

	changed, missing := idx.Attribute(ctx, items, day("2024-02-15"), nil)

	assert.Equal(t, 1, changed, "the already-correct item is not counted")
	assert.Equal(t, []string{"MISSING"}, missing)
	require.NotNil(t, items[0].ProductCost)
	assert.True(t, items[0].ProductCost.Equal(dec("10")))
	assert.Nil(t, items[2].ProductCost)
	assert.Nil(t, items[3].ProductCost)
}

func TestCostIndex_Attribute_PickLimitsItems(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductCostRepository(ctrl)
	repo.EXPECT().ListBySKUs(gomock.Any(), gomock.Any()).Return([]domain.ProductCost{historyRecord()}, nil)

	idx := NewCostIndex(repo)
	ctx := context.Background()
	require.NoError(t, idx.Load(ctx, []string{"SKU-1"}))

	items := []domain.OrderItem{
		{SellerSKU: "SKU-1", ProductCost: decPtr("99")},
		{SellerSKU: "SKU-1", ProductCost: decPtr("0")},
	}
	changed, _ := idx.Attribute(ctx, items, day("2024-04-01"), needsCostCheck)

	assert.Equal(t, 1, changed)
	assert.True(t, items[0].ProductCost.Equal(dec("99")), "non-zero costs are left alone")
	assert.True(t, items[1].ProductCost.Equal(dec("12")))
}
