package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"meli-reconciler/internal/core/domain"
	"meli-reconciler/internal/core/ports"
)

// ForwardSource tags every forwarded request.
const ForwardSource = "meli-webhook-forward"

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPForwarder posts stock-location changes to the inventory service.
type HTTPForwarder struct {
	baseURL string
	apiKey  string
	client  HTTPClient
}

// NewHTTPForwarder creates an inventory forwarder. An empty apiKey makes
// every Dispatch return ports.ErrDispatchSkipped.
func NewHTTPForwarder(baseURL, apiKey string, client HTTPClient) *HTTPForwarder {
	return &HTTPForwarder{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

// Dispatch asks the inventory service to resync one user product.
func (f *HTTPForwarder) Dispatch(ctx context.Context, _ *domain.Notification, userProductID string) error {
	if f.apiKey == "" || f.baseURL == "" {
		return ports.ErrDispatchSkipped
	}

	body, err := json.Marshal(map[string]string{"source": ForwardSource})
	if err != nil {
		return fmt.Errorf("marshal forward body: %w", err)
	}

	endpoint := f.baseURL + "/api/inventory/sync-fbm-product-by-meli-id/" + url.PathEscape(userProductID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create forward request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("forward %s: %w", userProductID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("forward %s: inventory responded %d", userProductID, resp.StatusCode)
	}
	return nil
}
