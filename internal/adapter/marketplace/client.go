package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"meli-reconciler/internal/core/domain"
	"meli-reconciler/internal/core/ports"
)

// searchDateLayout is the millisecond UTC layout the search filter expects.
const searchDateLayout = "2006-01-02T15:04:05.000Z"

// APIError is returned when the marketplace answered with a failure.
type APIError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("marketplace %s: status %d: %s", e.Endpoint, e.Status, e.Message)
}

// Client exposes typed marketplace reads over a gateway.
type Client struct {
	gw ports.MarketplaceGateway
}

// NewClient creates a marketplace client.
func NewClient(gw ports.MarketplaceGateway) *Client {
	return &Client{gw: gw}
}

// GetOrder fetches one order.
func (c *Client) GetOrder(ctx context.Context, orderID int64) (*domain.RemoteOrder, error) {
	var o domain.RemoteOrder
	if err := c.get(ctx, "orders/"+strconv.FormatInt(orderID, 10), &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// GetShipment fetches one shipment.
func (c *Client) GetShipment(ctx context.Context, shippingID int64) (*domain.Shipment, error) {
	var s domain.Shipment
	if err := c.get(ctx, "shipments/"+strconv.FormatInt(shippingID, 10), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SearchOrders lists the seller's orders created on or after from, newest first.
func (c *Client) SearchOrders(ctx context.Context, sellerID int64, from time.Time, offset, limit int) (*domain.OrderSearchPage, error) {
	q := url.Values{}
	q.Set("seller", strconv.FormatInt(sellerID, 10))
	q.Set("order.date_created.from", from.UTC().Format(searchDateLayout))
	q.Set("sort", "date_desc")
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))

	var page domain.OrderSearchPage
	if err := c.get(ctx, "orders/search?"+q.Encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) get(ctx context.Context, endpoint string, dst any) error {
	res, err := c.gw.Request(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if !res.Success {
		return &APIError{Endpoint: endpoint, Status: res.Status, Message: res.Error}
	}
	if err := json.Unmarshal(res.Data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}
