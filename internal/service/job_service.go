package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"meli-reconciler/internal/core/domain"
	"meli-reconciler/internal/core/ports"
	"meli-reconciler/internal/metrics"
	"meli-reconciler/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// JobConfig holds windows and pacing for the batch correction jobs.
type JobConfig struct {
	SellerID              int64
	OrderPause            time.Duration
	CostBackfillWindow    time.Duration
	ShippingRecheckWindow time.Duration
	CoverageWindow        time.Duration
	ImportWindow          time.Duration
	ImportPageSize        int
	ImportPause           time.Duration
	RecomputeFrom         time.Time
	RecomputeBatchSize    int
}

type jobService struct {
	orders     ports.OrderRepository
	notes      ports.NotificationRepository
	costs      ports.ProductCostRepository
	transactor ports.DBTransactor
	source     ports.OrderSource
	shipping   ports.ShippingResolver
	metrics    *metrics.Metrics
	cfg        JobConfig
	log        zerolog.Logger
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewJobService creates the batch job runner. m may be nil.
func NewJobService(
	orders ports.OrderRepository,
	notes ports.NotificationRepository,
	costs ports.ProductCostRepository,
	transactor ports.DBTransactor,
	source ports.OrderSource,
	shipping ports.ShippingResolver,
	m *metrics.Metrics,
	cfg JobConfig,
	log zerolog.Logger,
) ports.JobService {
	if cfg.ImportPageSize <= 0 {
		cfg.ImportPageSize = 50
	}
	if cfg.RecomputeBatchSize <= 0 {
		cfg.RecomputeBatchSize = 200
	}
	return &jobService{
		orders:     orders,
		notes:      notes,
		costs:      costs,
		transactor: transactor,
		source:     source,
		shipping:   shipping,
		metrics:    m,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
		sleep:      sleepCtx,
	}
}

// Run executes one job by name.
func (s *jobService) Run(ctx context.Context, name domain.JobName, params ports.JobParams) (*domain.JobReport, error) {
	start := s.now()
	log := s.log.With().Str("job", string(name)).Logger()
	log.Info().Msg("job started")

	var (
		report domain.JobReport
		err    error
	)
	switch name {
	case domain.JobCostBackfill:
		report, err = s.costBackfill(ctx, s.since(params, s.cfg.CostBackfillWindow))
	case domain.JobShippingBackfill:
		report, err = s.shippingBackfill(ctx)
	case domain.JobRepairIncomplete:
		report, err = s.repairIncomplete(ctx)
	case domain.JobRecomputeCosts:
		from := s.cfg.RecomputeFrom
		if params.From != nil {
			from = *params.From
		}
		report, err = s.recomputeOrderCosts(ctx, from)
	case domain.JobRecomputeShipping:
		report, err = s.recomputeShippingWindow(ctx, s.since(params, s.cfg.ShippingRecheckWindow))
	case domain.JobImportOrders:
		report, err = s.importOrders(ctx, s.since(params, s.cfg.ImportWindow))
	case domain.JobReset:
		report, err = s.reset(ctx)
	default:
		return nil, apperror.ErrUnknownJob(string(name))
	}

	report.Job = name
	report.Duration = s.now().Sub(start)
	if s.metrics != nil {
		s.metrics.JobDuration.WithLabelValues(string(name)).Observe(report.Duration.Seconds())
	}
	if err != nil {
		log.Error().Err(err).Msg("job aborted")
		return &report, err
	}

	log.Info().
		Int("scanned", report.Scanned).
		Int("updated", report.Updated).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Dur("duration", report.Duration).
		Msg("job finished")
	return &report, nil
}

func (s *jobService) since(params ports.JobParams, window time.Duration) time.Time {
	if params.From != nil {
		return *params.From
	}
	return s.now().UTC().Add(-window)
}

// pause waits between per-order remote calls; it is skipped after the last one.
func (s *jobService) pause(ctx context.Context, i, n int, d time.Duration) error {
	if i == n-1 {
		return nil
	}
	return s.sleep(ctx, d)
}

// costBackfill re-resolves null or zero item costs for recent orders.
func (s *jobService) costBackfill(ctx context.Context, since time.Time) (domain.JobReport, error) {
	var report domain.JobReport

	orders, err := s.orders.ListMissingItemCosts(ctx, since)
	if err != nil {
		return report, err
	}
	report.Scanned = len(orders)

	index := NewCostIndex(s.costs)
	if err := index.Load(ctx, lo.FlatMap(orders, func(o domain.Order, _ int) []string { return o.SKUs() })); err != nil {
		return report, err
	}

	var missing []string
	for _, o := range orders {
		changed, unresolved := index.Attribute(ctx, o.Items, o.DateCreated, needsCostCheck)
		missing = append(missing, unresolved...)
		if changed == 0 {
			report.Skipped++
			continue
		}
		if err := s.orders.UpdateItems(ctx, o.OrderID, o.Items); err != nil {
			s.log.Error().Err(err).Int64("order_id", o.OrderID).Msg("jobs: update item costs failed")
			report.Failed++
			continue
		}
		report.Updated++
	}

	report.MissingSKUs = lo.Uniq(missing)
	if len(report.MissingSKUs) > 0 {
		s.log.Warn().Strs("skus", report.MissingSKUs).Msg("jobs: skus without cost record")
	}
	return report, nil
}

// shippingBackfill resolves the shipping cost of every order that has none.
func (s *jobService) shippingBackfill(ctx context.Context) (domain.JobReport, error) {
	var report domain.JobReport

	orders, err := s.orders.ListMissingShippingCost(ctx)
	if err != nil {
		return report, err
	}
	report.Scanned = len(orders)

	seen := make(map[int64]bool)
	for i, o := range orders {
		if err := s.backfillShipping(ctx, o, seen, &report); err != nil {
			return report, err
		}
		if err := s.pause(ctx, i, len(orders), s.cfg.OrderPause); err != nil {
			return report, err
		}
	}

	if _, err := s.shipping.RedistributeSharedShipments(ctx, ports.ShipmentGroupFilter{}); err != nil {
		return report, err
	}
	return report, nil
}

// backfillShipping handles one order. Only fatal errors are returned.
func (s *jobService) backfillShipping(ctx context.Context, o domain.Order, seen map[int64]bool, report *domain.JobReport) error {
	log := s.log.With().Int64("order_id", o.OrderID).Logger()

	if o.ShippingID == nil {
		remote, err := s.source.GetOrder(ctx, o.OrderID)
		if err != nil {
			if errors.Is(err, ports.ErrCredentialsUnavailable) {
				return err
			}
			log.Warn().Err(err).Msg("jobs: fetch order failed")
			report.Failed++
			return nil
		}
		if remote.Shipping.ID == nil {
			log.Warn().Msg("jobs: order still has no shipping id")
			report.Skipped++
			return nil
		}
		if err := s.orders.SetShippingID(ctx, o.OrderID, *remote.Shipping.ID); err != nil {
			log.Error().Err(err).Msg("jobs: set shipping id failed")
			report.Failed++
			return nil
		}
		o.ShippingID = remote.Shipping.ID
	}

	id := *o.ShippingID
	if seen[id] {
		report.Skipped++
		return nil
	}
	seen[id] = true

	cost, err := s.shipping.ResolveShippingCost(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrCredentialsUnavailable) {
			return err
		}
		log.Warn().Err(err).Int64("shipping_id", id).Msg("jobs: resolve shipping failed")
		report.Failed++
		return nil
	}
	if _, err := s.shipping.ApplyShipmentCosts(ctx, map[int64]decimal.Decimal{id: cost}); err != nil {
		return err
	}
	report.Updated++
	return nil
}

// repairIncomplete re-fetches paid orders stored without items or shipping
// cost, then chains the two backfills.
func (s *jobService) repairIncomplete(ctx context.Context) (domain.JobReport, error) {
	var report domain.JobReport

	orders, err := s.orders.ListIncompletePaid(ctx)
	if err != nil {
		return report, err
	}
	report.Scanned = len(orders)

	for i, o := range orders {
		remote, err := s.source.GetOrder(ctx, o.OrderID)
		switch {
		case errors.Is(err, ports.ErrCredentialsUnavailable):
			return report, err
		case err != nil:
			s.log.Warn().Err(err).Int64("order_id", o.OrderID).Msg("jobs: fetch order failed")
			report.Failed++
		default:
			fresh := remote.ToOrder()
			if err := s.orders.Upsert(ctx, &fresh); err != nil {
				s.log.Error().Err(err).Int64("order_id", o.OrderID).Msg("jobs: rewrite order failed")
				report.Failed++
			} else {
				report.Updated++
			}
		}
		if err := s.pause(ctx, i, len(orders), s.cfg.OrderPause); err != nil {
			return report, err
		}
	}

	costs, err := s.costBackfill(ctx, s.now().UTC().Add(-s.cfg.CostBackfillWindow))
	report.Merge(costs)
	if err != nil {
		return report, err
	}
	shipping, err := s.shippingBackfill(ctx)
	report.Merge(shipping)
	return report, err
}

// recomputeOrderCosts re-prices every item of every order created since from.
func (s *jobService) recomputeOrderCosts(ctx context.Context, from time.Time) (domain.JobReport, error) {
	var report domain.JobReport

	total, err := s.orders.CountCreatedSince(ctx, from)
	if err != nil {
		return report, err
	}
	s.log.Info().Int64("orders", total).Time("from", from).Msg("jobs: recomputing item costs")

	index := NewCostIndex(s.costs)
	var missing []string

	for offset := 0; ; {
		page, err := s.orders.ListCreatedSince(ctx, from, s.cfg.RecomputeBatchSize, offset)
		if err != nil {
			return report, err
		}
		if len(page) == 0 {
			break
		}
		if err := index.Load(ctx, lo.FlatMap(page, func(o domain.Order, _ int) []string { return o.SKUs() })); err != nil {
			return report, err
		}

		for _, o := range page {
			report.Scanned++
			changed, unresolved := index.Attribute(ctx, o.Items, o.DateCreated, nil)
			missing = append(missing, unresolved...)
			if changed == 0 {
				report.Skipped++
				continue
			}
			if err := s.orders.UpdateItems(ctx, o.OrderID, o.Items); err != nil {
				s.log.Error().Err(err).Int64("order_id", o.OrderID).Msg("jobs: update item costs failed")
				report.Failed++
				continue
			}
			report.Updated++
		}

		offset += len(page)
		s.log.Debug().Int("done", offset).Int64("total", total).Msg("jobs: recompute progress")
	}

	report.MissingSKUs = lo.Uniq(missing)
	return report, nil
}

// recomputeShippingWindow re-fetches the real cost of every shipment inside
// the window and rewrites the ones that moved.
func (s *jobService) recomputeShippingWindow(ctx context.Context, since time.Time) (domain.JobReport, error) {
	var report domain.JobReport

	orders, err := s.orders.ListWithShippingSince(ctx, since)
	if err != nil {
		return report, err
	}

	stored := make(map[int64]decimal.Decimal)
	attributed := make(map[int64]bool)
	for _, o := range orders {
		id := *o.ShippingID
		if o.ShippingCost != nil {
			stored[id] = stored[id].Add(*o.ShippingCost)
			attributed[id] = true
		}
	}
	ids := lo.Uniq(lo.Map(orders, func(o domain.Order, _ int) int64 { return *o.ShippingID }))
	report.Scanned = len(ids)

	fetched, err := s.shipping.ResolveBatch(ctx, ids)
	if err != nil && errors.Is(err, ports.ErrCredentialsUnavailable) {
		return report, err
	}
	report.Failed = len(ids) - len(fetched)

	changed := lo.PickBy(fetched, func(id int64, cost decimal.Decimal) bool {
		return !attributed[id] || !stored[id].Equal(cost)
	})
	report.Skipped = len(fetched) - len(changed)

	applied, err := s.shipping.ApplyShipmentCosts(ctx, changed)
	report.Updated = applied
	if err != nil {
		return report, err
	}

	if _, err := s.shipping.RedistributeSharedShipments(ctx, ports.ShipmentGroupFilter{CreatedSince: &since}); err != nil {
		return report, err
	}
	return report, nil
}

// importOrders pages through the seller's remote orders created since from
// and stores the ones that are new or incomplete.
func (s *jobService) importOrders(ctx context.Context, from time.Time) (domain.JobReport, error) {
	var report domain.JobReport
	if s.cfg.SellerID == 0 {
		return report, fmt.Errorf("%w: seller id is not configured", ports.ErrCredentialsUnavailable)
	}

	index := NewCostIndex(s.costs)
	var missing []string
	var shipments []int64

	for offset := 0; ; {
		page, err := s.source.SearchOrders(ctx, s.cfg.SellerID, from, offset, s.cfg.ImportPageSize)
		if err != nil {
			if errors.Is(err, ports.ErrCredentialsUnavailable) {
				return report, err
			}
			s.log.Error().Err(err).Int("offset", offset).Msg("jobs: order search failed")
			report.Failed++
			break
		}
		if len(page.Results) == 0 {
			break
		}

		ids := lo.Map(page.Results, func(r domain.RemoteOrder, _ int) int64 { return r.ID })
		existing, err := s.orders.GetMany(ctx, ids)
		if err != nil {
			return report, err
		}
		skus := lo.FlatMap(page.Results, func(r domain.RemoteOrder, _ int) []string {
			return lo.Map(r.OrderItems, func(it domain.RemoteOrderItem, _ int) string { return it.Item.SellerSKU })
		})
		if err := index.Load(ctx, trimAll(skus)); err != nil {
			return report, err
		}

		for i := range page.Results {
			remote := &page.Results[i]
			report.Scanned++
			prev := existing[remote.ID]
			if !NeedsProcessing(prev) {
				report.Skipped++
				continue
			}

			order, unresolved := buildOrder(ctx, remote, index)
			missing = append(missing, unresolved...)
			if err := s.orders.Upsert(ctx, &order); err != nil {
				s.log.Error().Err(err).Int64("order_id", order.OrderID).Msg("jobs: import upsert failed")
				report.Failed++
				continue
			}
			report.Updated++
			if order.ShippingID != nil && (prev == nil || !prev.ShippingAttributed()) {
				shipments = append(shipments, *order.ShippingID)
			}
		}

		offset += len(page.Results)
		if err := s.sleep(ctx, s.cfg.ImportPause); err != nil {
			return report, err
		}
	}

	if len(shipments) > 0 {
		if _, err := resolveShipping(ctx, s.shipping, shipments); err != nil {
			if errors.Is(err, ports.ErrCredentialsUnavailable) {
				return report, err
			}
			s.log.Warn().Err(err).Msg("jobs: import shipping pass incomplete")
		}
	}

	report.MissingSKUs = lo.Uniq(missing)
	return report, nil
}

// reset deletes every order and re-queues every processed order
// notification, atomically.
func (s *jobService) reset(ctx context.Context) (domain.JobReport, error) {
	var report domain.JobReport

	tx, err := s.transactor.Begin(ctx)
	if err != nil {
		return report, fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	deleted, err := s.orders.DeleteAll(ctx, tx)
	if err != nil {
		return report, err
	}
	requeued, err := s.notes.ResetProcessed(ctx, tx, domain.TopicOrders)
	if err != nil {
		return report, err
	}
	if err := tx.Commit(ctx); err != nil {
		return report, fmt.Errorf("commit reset: %w", err)
	}

	report.Scanned = int(deleted)
	report.Updated = int(requeued)
	s.log.Warn().Int64("orders_deleted", deleted).Int64("notifications_requeued", requeued).Msg("jobs: reconciliation state reset")
	return report, nil
}

// CostCoverage reports the share of recent orders with fully attributed
// item costs.
func (s *jobService) CostCoverage(ctx context.Context) (*domain.CostCoverage, error) {
	since := s.now().UTC().Add(-s.cfg.CoverageWindow)

	total, err := s.orders.CountCreatedSince(ctx, since)
	if err != nil {
		return nil, err
	}
	missing, err := s.orders.CountMissingCostSince(ctx, since)
	if err != nil {
		return nil, err
	}

	cov := &domain.CostCoverage{Since: since, TotalOrders: total, MissingCost: missing, CompletePercent: 100}
	if total > 0 {
		pct := decimal.NewFromInt(total - missing).Mul(decimal.NewFromInt(100)).DivRound(decimal.NewFromInt(total), 2)
		cov.CompletePercent = pct.InexactFloat64()
	}
	return cov, nil
}
