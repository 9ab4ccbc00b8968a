package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"meli-reconciler/internal/core/domain"
	"meli-reconciler/internal/core/ports"
	"meli-reconciler/internal/metrics"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// EventOrderReconciled is the type of the event published per written order.
const EventOrderReconciled = "order.reconciled"

// OrderReconciledEvent is published after an order write lands.
type OrderReconciledEvent struct {
	Type              string             `json:"type"`
	OrderID           int64              `json:"order_id"`
	Status            domain.OrderStatus `json:"status"`
	ShippingID        *int64             `json:"shipping_id,omitempty"`
	Items             int                `json:"items"`
	UnattributedItems int                `json:"unattributed_items"`
	ReconciledAt      time.Time          `json:"reconciled_at"`
}

// ReconcilerConfig bounds the remote fan-out.
type ReconcilerConfig struct {
	Concurrency int
}

// ReconcilerService turns pending order notifications into stored orders.
type ReconcilerService struct {
	notes    ports.NotificationRepository
	orders   ports.OrderRepository
	costs    ports.ProductCostRepository
	source   ports.OrderSource
	shipping ports.ShippingResolver
	events   ports.EventPublisher
	metrics  *metrics.Metrics
	cfg      ReconcilerConfig
	log      zerolog.Logger
	now      func() time.Time
}

// NewReconcilerService creates the reconciler. events and m may be nil.
func NewReconcilerService(
	notes ports.NotificationRepository,
	orders ports.OrderRepository,
	costs ports.ProductCostRepository,
	source ports.OrderSource,
	shipping ports.ShippingResolver,
	events ports.EventPublisher,
	m *metrics.Metrics,
	cfg ReconcilerConfig,
	log zerolog.Logger,
) *ReconcilerService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	return &ReconcilerService{
		notes:    notes,
		orders:   orders,
		costs:    costs,
		source:   source,
		shipping: shipping,
		events:   events,
		metrics:  m,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// ProcessPending reconciles every order with unprocessed notifications.
func (s *ReconcilerService) ProcessPending(ctx context.Context) (*ports.ReconcileResult, error) {
	notes, err := s.notes.ListUnprocessed(ctx, domain.TopicOrders)
	if err != nil {
		return nil, fmt.Errorf("list pending notifications: %w", err)
	}

	pending := AggregatePending(notes, s.log)
	s.log.Info().Int("notifications", len(notes)).Int("orders", len(pending)).Msg("reconcile: pending orders aggregated")

	return s.Reconcile(ctx, pending)
}

type fetchedOrder struct {
	pending PendingOrder
	remote  *domain.RemoteOrder
	prev    *domain.Order
}

// Reconcile fetches, prices and stores the given orders, resolves their
// shipping and finally marks their notifications processed. Per-order
// failures are counted; only infrastructure failures abort the run.
func (s *ReconcilerService) Reconcile(ctx context.Context, pending []PendingOrder) (*ports.ReconcileResult, error) {
	res := &ports.ReconcileResult{Groups: len(pending)}
	if len(pending) == 0 {
		return res, nil
	}

	existing, err := s.orders.GetMany(ctx, lo.Map(pending, func(p PendingOrder, _ int) int64 { return p.OrderID }))
	if err != nil {
		return nil, fmt.Errorf("load stored orders: %w", err)
	}

	var done []string
	var work []*fetchedOrder
	for _, p := range pending {
		prev := existing[p.OrderID]
		if !NeedsProcessing(prev) {
			res.SkippedOrders++
			s.count("skipped")
			done = append(done, p.NotificationIDs...)
			continue
		}
		work = append(work, &fetchedOrder{pending: p, prev: prev})
	}

	if err := s.fetch(ctx, work); err != nil {
		return nil, err
	}

	fetched := lo.Filter(work, func(f *fetchedOrder, _ int) bool { return f.remote != nil })
	res.FailedOrders += len(work) - len(fetched)
	s.countN("failed", len(work)-len(fetched))

	index := NewCostIndex(s.costs)
	skus := lo.FlatMap(fetched, func(f *fetchedOrder, _ int) []string {
		return lo.Map(f.remote.OrderItems, func(it domain.RemoteOrderItem, _ int) string { return it.Item.SellerSKU })
	})
	if err := index.Load(ctx, trimAll(skus)); err != nil {
		return nil, err
	}

	var shippingIDs []int64
	var unresolved []string
	for _, f := range fetched {
		order, missing := buildOrder(ctx, f.remote, index)
		unresolved = append(unresolved, missing...)
		if len(missing) > 0 {
			s.log.Warn().Int64("order_id", order.OrderID).Strs("skus", missing).Msg("reconcile: no cost record for sku")
		}

		if err := s.orders.Upsert(ctx, &order); err != nil {
			s.log.Error().Err(err).Int64("order_id", order.OrderID).Msg("reconcile: upsert order failed")
			res.FailedOrders++
			s.count("failed")
			continue
		}

		res.ProcessedOrders++
		s.count("processed")
		done = append(done, f.pending.NotificationIDs...)
		if order.ShippingID != nil && (f.prev == nil || !f.prev.ShippingAttributed()) {
			shippingIDs = append(shippingIDs, *order.ShippingID)
		}
		s.publish(ctx, &order)
	}
	res.UnresolvedSKUs = len(lo.Uniq(unresolved))

	if len(shippingIDs) > 0 {
		pass, err := resolveShipping(ctx, s.shipping, shippingIDs)
		if err != nil {
			if errors.Is(err, ports.ErrCredentialsUnavailable) {
				return nil, err
			}
			s.log.Warn().Err(err).Msg("reconcile: shipping pass incomplete")
		}
		res.ShipmentsResolved = pass.Applied
		res.RedistributedGroups = pass.Redistributed
	}

	marked, err := s.notes.MarkProcessed(ctx, done)
	if err != nil {
		return nil, fmt.Errorf("mark notifications processed: %w", err)
	}
	res.NotificationsMarked = int(marked)

	s.log.Info().
		Int("groups", res.Groups).
		Int("processed", res.ProcessedOrders).
		Int("skipped", res.SkippedOrders).
		Int("failed", res.FailedOrders).
		Int("shipments", res.ShipmentsResolved).
		Int("marked", res.NotificationsMarked).
		Msg("reconcile: pass complete")
	return res, nil
}

// fetch loads the remote orders with bounded concurrency. Only a credential
// failure is returned; other errors leave the entry's remote nil.
func (s *ReconcilerService) fetch(ctx context.Context, work []*fetchedOrder) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for _, f := range work {
		g.Go(func() error {
			remote, err := s.source.GetOrder(gctx, f.pending.OrderID)
			if err != nil {
				if errors.Is(err, ports.ErrCredentialsUnavailable) {
					return err
				}
				s.log.Warn().Err(err).Int64("order_id", f.pending.OrderID).Msg("reconcile: fetch order failed")
				return nil
			}
			f.remote = remote
			return nil
		})
	}
	return g.Wait()
}

func (s *ReconcilerService) publish(ctx context.Context, o *domain.Order) {
	if s.events == nil {
		return
	}
	unattributed := lo.CountBy(o.Items, func(it domain.OrderItem) bool { return !it.CostAttributed() })
	evt := OrderReconciledEvent{
		Type:              EventOrderReconciled,
		OrderID:           o.OrderID,
		Status:            o.Status,
		ShippingID:        o.ShippingID,
		Items:             len(o.Items),
		UnattributedItems: unattributed,
		ReconciledAt:      s.now().UTC(),
	}
	if err := s.events.Publish(ctx, strconv.FormatInt(o.OrderID, 10), evt); err != nil {
		s.log.Warn().Err(err).Int64("order_id", o.OrderID).Msg("reconcile: publish event failed")
		if s.metrics != nil {
			s.metrics.PublishFailures.WithLabelValues(EventOrderReconciled).Inc()
		}
	}
}

func (s *ReconcilerService) count(outcome string) {
	s.countN(outcome, 1)
}

func (s *ReconcilerService) countN(outcome string, n int) {
	if s.metrics != nil && n > 0 {
		s.metrics.ReconciledOrders.WithLabelValues(outcome).Add(float64(n))
	}
}

// buildOrder maps a remote order and prices its items as of the order date.
func buildOrder(ctx context.Context, remote *domain.RemoteOrder, index *CostIndex) (domain.Order, []string) {
	order := remote.ToOrder()
	_, missing := index.Attribute(ctx, order.Items, order.DateCreated, nil)
	return order, missing
}

type shippingPass struct {
	Resolved      int
	Applied       int
	Redistributed int
}

// resolveShipping fetches the shipments, anchors each cost on its group and
// redistributes the touched groups. Whatever was resolved is still applied
// when the batch stops early.
func resolveShipping(ctx context.Context, shipping ports.ShippingResolver, ids []int64) (shippingPass, error) {
	costs, err := shipping.ResolveBatch(ctx, ids)
	pass := shippingPass{Resolved: len(costs)}
	if len(costs) == 0 {
		return pass, err
	}

	applied, aerr := shipping.ApplyShipmentCosts(ctx, costs)
	pass.Applied = applied
	redistributed, rerr := shipping.RedistributeSharedShipments(ctx, ports.ShipmentGroupFilter{ShippingIDs: lo.Keys(costs)})
	pass.Redistributed = redistributed

	return pass, errors.Join(err, aerr, rerr)
}

func trimAll(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
