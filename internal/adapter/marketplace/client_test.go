package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"meli-reconciler/internal/core/ports"
	"meli-reconciler/internal/core/ports/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestClient_GetOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockMarketplaceGateway(ctrl)
	gw.EXPECT().Request(gomock.Any(), http.MethodGet, "orders/2000001", nil).Return(&ports.MarketplaceResult{
		Success: true,
		Status:  http.StatusOK,
		Data:    json.RawMessage(`{"id":2000001,"status":"paid","shipping":{"id":43000001},"order_items":[]}`),
	}, nil)

	o, err := NewClient(gw).GetOrder(context.Background(), 2000001)
	require.NoError(t, err)
	assert.Equal(t, int64(2000001), o.ID)
	require.NotNil(t, o.Shipping.ID)
	assert.Equal(t, int64(43000001), *o.Shipping.ID)
}

func TestClient_GetShipment(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockMarketplaceGateway(ctrl)
	gw.EXPECT().Request(gomock.Any(), http.MethodGet, "shipments/43000001", nil).Return(&ports.MarketplaceResult{
		Success: true,
		Data:    json.RawMessage(`{"id":43000001,"shipping_option":{"list_cost":250.5,"cost":100}}`),
	}, nil)

	s, err := NewClient(gw).GetShipment(context.Background(), 43000001)
	require.NoError(t, err)
	cost, ok := s.RealCost()
	require.True(t, ok)
	assert.Equal(t, "150.5", cost.String())
}

func TestClient_SearchOrders_BuildsQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockMarketplaceGateway(ctrl)

	from := time.Date(2025, 3, 7, 9, 30, 0, 0, time.FixedZone("CST", -6*3600))
	gw.EXPECT().Request(gomock.Any(), http.MethodGet, gomock.Any(), nil).DoAndReturn(
		func(_ context.Context, _ string, endpoint string, _ any) (*ports.MarketplaceResult, error) {
			path, rawQuery, found := strings.Cut(endpoint, "?")
			require.True(t, found)
			assert.Equal(t, "orders/search", path)

			q, err := url.ParseQuery(rawQuery)
			require.NoError(t, err)
			assert.Equal(t, "555", q.Get("seller"))
			assert.Equal(t, "2025-03-07T15:30:00.000Z", q.Get("order.date_created.from"))
			assert.Equal(t, "date_desc", q.Get("sort"))
			assert.Equal(t, "100", q.Get("offset"))
			assert.Equal(t, "50", q.Get("limit"))

			return &ports.MarketplaceResult{
				Success: true,
				Data:    json.RawMessage(`{"results":[{"id":1},{"id":2}],"paging":{"total":102,"offset":100,"limit":50}}`),
			}, nil
		})

	page, err := NewClient(gw).SearchOrders(context.Background(), 555, from, 100, 50)
	require.NoError(t, err)
	assert.Len(t, page.Results, 2)
	assert.Equal(t, 102, page.Paging.Total)
}

func TestClient_SoftFailureBecomesAPIError(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockMarketplaceGateway(ctrl)
	gw.EXPECT().Request(gomock.Any(), http.MethodGet, "orders/9", nil).Return(&ports.MarketplaceResult{
		Status: http.StatusNotFound,
		Error:  "order not found",
	}, nil)

	_, err := NewClient(gw).GetOrder(context.Background(), 9)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Contains(t, err.Error(), "order not found")
}

func TestClient_GatewayErrorPassesThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockMarketplaceGateway(ctrl)
	gw.EXPECT().Request(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, ports.ErrCredentialsUnavailable)

	_, err := NewClient(gw).GetShipment(context.Background(), 1)
	assert.ErrorIs(t, err, ports.ErrCredentialsUnavailable)
}
