package service

import (
	"sort"

	"meli-reconciler/internal/core/domain"

	"github.com/rs/zerolog"
)

// PendingOrder is one order with unprocessed notifications. Latest is the
// most recently received notification; NotificationIDs lists every collapsed
// delivery so all of them can be marked processed together.
type PendingOrder struct {
	OrderID         int64
	Latest          domain.Notification
	NotificationIDs []string
	Count           int
}

// AggregatePending collapses notifications into one unit per order. Units
// come out newest first; ties on received are broken by id ascending.
// Resources without a usable order id are logged and dropped.
func AggregatePending(notes []domain.Notification, log zerolog.Logger) []PendingOrder {
	sorted := make([]domain.Notification, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Received.Equal(sorted[j].Received) {
			return sorted[i].Received.After(sorted[j].Received)
		}
		return sorted[i].ID < sorted[j].ID
	})

	index := make(map[int64]int, len(sorted))
	out := make([]PendingOrder, 0, len(sorted))

	for _, n := range sorted {
		orderID, err := n.OrderID()
		if err != nil {
			log.Warn().Err(err).Str("notification_id", n.ID).Msg("aggregator: skipping notification")
			continue
		}

		i, ok := index[orderID]
		if !ok {
			index[orderID] = len(out)
			out = append(out, PendingOrder{OrderID: orderID, Latest: n})
			i = len(out) - 1
		}
		out[i].NotificationIDs = append(out[i].NotificationIDs, n.ID)
		out[i].Count++
	}
	return out
}

// NeedsProcessing decides whether a stored order has to be fetched again.
func NeedsProcessing(existing *domain.Order) bool {
	switch {
	case existing == nil:
		return true
	case existing.IsTerminal():
		return false
	case existing.ShippingID != nil && !existing.ShippingAttributed():
		return true
	case existing.HasUnattributedItems():
		return true
	case existing.AwaitsShippingID():
		return true
	default:
		return false
	}
}
