package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Notification topics the reconciler acts on. Other topics are stored only.
const (
	TopicOrders         = "orders_v2"
	TopicStockLocations = "stock-locations"
)

// Notification is one webhook delivery from the marketplace.
type Notification struct {
	ID            string    `json:"_id"`
	Resource      string    `json:"resource"`
	UserID        int64     `json:"user_id"`
	Topic         string    `json:"topic"`
	ApplicationID int64     `json:"application_id"`
	Attempts      int       `json:"attempts"`
	Sent          time.Time `json:"sent"`
	Received      time.Time `json:"received"`
	Processed     bool      `json:"processed"`
}

// NotificationID derives the id used when a delivery arrives without one.
// The same delivery always maps to the same id, so retries upsert in place.
func NotificationID(topic, resource string, userID int64, received time.Time) string {
	return fmt.Sprintf("%s_%s_%d_%d", topic, resource, userID, received.UnixMilli())
}

// OrderID extracts the order id from the last path segment of the resource,
// e.g. "/orders/2000009876543210" -> 2000009876543210.
func (n *Notification) OrderID() (int64, error) {
	seg := lastSegment(n.Resource)
	id, err := strconv.ParseInt(seg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("resource %q has no order id", n.Resource)
	}
	return id, nil
}

// UserProductID returns the path segment following "user-products",
// e.g. "/user-products/MLMU123/stock" -> "MLMU123".
func (n *Notification) UserProductID() (string, bool) {
	parts := strings.Split(strings.Trim(n.Resource, "/"), "/")
	for i, p := range parts {
		if p == "user-products" && i+1 < len(parts) && parts[i+1] != "" {
			return parts[i+1], true
		}
	}
	return "", false
}

func lastSegment(resource string) string {
	resource = strings.TrimRight(resource, "/")
	if i := strings.LastIndex(resource, "/"); i >= 0 {
		return resource[i+1:]
	}
	return resource
}
