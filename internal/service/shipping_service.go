package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"meli-reconciler/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ShippingConfig paces shipment lookups.
type ShippingConfig struct {
	BatchSize   int
	BatchPause  time.Duration
	Concurrency int
}

type shippingService struct {
	orders ports.OrderRepository
	source ports.OrderSource
	cfg    ShippingConfig
	log    zerolog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewShippingService creates the shipping cost resolver.
func NewShippingService(orders ports.OrderRepository, source ports.OrderSource, cfg ShippingConfig, log zerolog.Logger) ports.ShippingResolver {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	return &shippingService{
		orders: orders,
		source: source,
		cfg:    cfg,
		log:    log,
		sleep:  sleepCtx,
	}
}

// ResolveShippingCost returns list_cost - cost of the shipment. Negative
// values are returned unclamped.
func (s *shippingService) ResolveShippingCost(ctx context.Context, shippingID int64) (decimal.Decimal, error) {
	shipment, err := s.source.GetShipment(ctx, shippingID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get shipment %d: %w", shippingID, err)
	}
	cost, ok := shipment.RealCost()
	if !ok {
		return decimal.Zero, fmt.Errorf("shipment %d has no shipping option", shippingID)
	}
	return cost, nil
}

// ResolveBatch resolves shipments in chunks, pausing between chunks. Failed
// lookups are logged and left out of the result.
func (s *shippingService) ResolveBatch(ctx context.Context, shippingIDs []int64) (map[int64]decimal.Decimal, error) {
	out := make(map[int64]decimal.Decimal, len(shippingIDs))
	var mu sync.Mutex

	chunks := lo.Chunk(lo.Uniq(shippingIDs), s.cfg.BatchSize)
	for i, chunk := range chunks {
		if i > 0 {
			if err := s.sleep(ctx, s.cfg.BatchPause); err != nil {
				return out, err
			}
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.cfg.Concurrency)
		for _, id := range chunk {
			g.Go(func() error {
				cost, err := s.ResolveShippingCost(gctx, id)
				if err != nil {
					if errors.Is(err, ports.ErrCredentialsUnavailable) {
						return err
					}
					s.log.Warn().Err(err).Int64("shipping_id", id).Msg("shipping: resolve failed")
					return nil
				}
				mu.Lock()
				out[id] = cost
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return out, err
		}
	}
	return out, nil
}

// ApplyShipmentCosts writes each shipment cost to the group anchor (lowest
// order id) and zero to the other members.
func (s *shippingService) ApplyShipmentCosts(ctx context.Context, costs map[int64]decimal.Decimal) (int, error) {
	ids := lo.Keys(costs)
	slices.Sort(ids)

	applied := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		n, err := s.orders.ApplyShipmentCost(ctx, id, costs[id])
		if err != nil {
			s.log.Error().Err(err).Int64("shipping_id", id).Msg("shipping: apply cost failed")
			continue
		}
		if n > 0 {
			applied++
		}
	}
	return applied, nil
}

// RedistributeSharedShipments splits each shared shipment's total evenly
// across its orders. Leftover cents go to the lowest order id.
func (s *shippingService) RedistributeSharedShipments(ctx context.Context, filter ports.ShipmentGroupFilter) (int, error) {
	groups, err := s.orders.ListShipmentGroups(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("list shipment groups: %w", err)
	}

	updated := 0
	for _, g := range groups {
		n, err := s.orders.SetGroupShippingCost(ctx, g.ShippingID, g.Share(), g.AnchorShare())
		if err != nil {
			s.log.Error().Err(err).Int64("shipping_id", g.ShippingID).Msg("shipping: redistribute failed")
			continue
		}
		if n > 0 {
			updated++
		}
	}

	s.log.Info().Int("groups", len(groups)).Int("updated", updated).Msg("shipping: shared shipments redistributed")
	return updated, nil
}
