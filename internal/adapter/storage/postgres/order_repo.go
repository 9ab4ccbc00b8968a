package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"meli-reconciler/internal/core/domain"
	"meli-reconciler/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const orderColumns = `order_id, date_created, pack_id, status, currency_id, shipping_id, shipping_cost, buyer, order_items, updated_at`

// itemMissingCost matches orders with at least one item whose cost is null
// or zero. JSON null reads back as SQL NULL through ->>.
const itemMissingCost = `EXISTS (
	SELECT 1 FROM jsonb_array_elements(order_items) AS it
	WHERE COALESCE((it->>'product_cost')::numeric, 0) = 0)`

// itemUnattributed matches orders with at least one item whose cost is null.
const itemUnattributed = `EXISTS (
	SELECT 1 FROM jsonb_array_elements(order_items) AS it
	WHERE it->>'product_cost' IS NULL)`

// OrderRepo implements ports.OrderRepository.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

// Get fetches one order. Returns (nil, nil) when it does not exist.
func (r *OrderRepo) Get(ctx context.Context, orderID int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1`

	o, err := scanOrder(r.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// GetMany fetches the stored orders among orderIDs, keyed by id.
func (r *OrderRepo) GetMany(ctx context.Context, orderIDs []int64) (map[int64]*domain.Order, error) {
	out := make(map[int64]*domain.Order, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}

	orders, err := r.list(ctx, "get orders", `SELECT `+orderColumns+` FROM orders WHERE order_id = ANY($1)`, orderIDs)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		out[orders[i].OrderID] = &orders[i]
	}
	return out, nil
}

// Upsert inserts or updates an order. shipping_cost is written on insert
// only; on conflict the stored value is kept, as is a known shipping id
// when the new payload has none.
func (r *OrderRepo) Upsert(ctx context.Context, o *domain.Order) error {
	buyer, err := json.Marshal(o.Buyer)
	if err != nil {
		return fmt.Errorf("marshal buyer: %w", err)
	}
	items, err := marshalItems(o.Items)
	if err != nil {
		return err
	}

	query := `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (order_id) DO UPDATE SET
			date_created = EXCLUDED.date_created,
			pack_id = EXCLUDED.pack_id,
			status = EXCLUDED.status,
			currency_id = EXCLUDED.currency_id,
			shipping_id = COALESCE(EXCLUDED.shipping_id, orders.shipping_id),
			buyer = EXCLUDED.buyer,
			order_items = EXCLUDED.order_items,
			updated_at = NOW()`

	_, err = r.pool.Exec(ctx, query,
		o.OrderID, o.DateCreated, o.PackID, string(o.Status), o.CurrencyID,
		o.ShippingID, nullDecimal(o.ShippingCost), buyer, items,
	)
	if err != nil {
		return fmt.Errorf("upsert order: %w", err)
	}
	return nil
}

// UpdateItems replaces the line items of an order.
func (r *OrderRepo) UpdateItems(ctx context.Context, orderID int64, items []domain.OrderItem) error {
	payload, err := marshalItems(items)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE orders SET order_items = $2, updated_at = NOW() WHERE order_id = $1`,
		orderID, payload)
	if err != nil {
		return fmt.Errorf("update order items: %w", err)
	}
	return nil
}

// SetShippingID records the shipping id of an order.
func (r *OrderRepo) SetShippingID(ctx context.Context, orderID, shippingID int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE orders SET shipping_id = $2, updated_at = NOW() WHERE order_id = $1`,
		orderID, shippingID)
	if err != nil {
		return fmt.Errorf("set shipping id: %w", err)
	}
	return nil
}

// SetShippingCost stores the shipping cost of one order.
func (r *OrderRepo) SetShippingCost(ctx context.Context, orderID int64, cost decimal.Decimal) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE orders SET shipping_cost = $2, updated_at = NOW() WHERE order_id = $1`,
		orderID, cost)
	if err != nil {
		return fmt.Errorf("set shipping cost: %w", err)
	}
	return nil
}

// ApplyShipmentCost writes cost to the anchor order (lowest order id) of the
// shipment and zero to the rest, so a later even split yields cost/n.
func (r *OrderRepo) ApplyShipmentCost(ctx context.Context, shippingID int64, cost decimal.Decimal) (int64, error) {
	query := `UPDATE orders SET
			shipping_cost = CASE
				WHEN order_id = (SELECT MIN(order_id) FROM orders WHERE shipping_id = $1) THEN $2::numeric
				ELSE 0
			END,
			updated_at = NOW()
		WHERE shipping_id = $1`

	tag, err := r.pool.Exec(ctx, query, shippingID, cost)
	if err != nil {
		return 0, fmt.Errorf("apply shipment cost: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListShipmentGroups returns shipments shared by two or more orders with
// the sum of their stored costs.
func (r *OrderRepo) ListShipmentGroups(ctx context.Context, filter ports.ShipmentGroupFilter) ([]domain.ShipmentGroup, error) {
	var (
		where = []string{"shipping_id IS NOT NULL"}
		args  []any
	)
	if len(filter.ShippingIDs) > 0 {
		args = append(args, filter.ShippingIDs)
		where = append(where, fmt.Sprintf("shipping_id = ANY($%d)", len(args)))
	}
	if filter.CreatedSince != nil {
		// Whole groups: a member created before the window still counts.
		args = append(args, *filter.CreatedSince)
		where = append(where, fmt.Sprintf(
			"shipping_id IN (SELECT shipping_id FROM orders WHERE date_created >= $%d)", len(args)))
	}

	query := `SELECT shipping_id, SUM(COALESCE(shipping_cost, 0)), COUNT(*)
		FROM orders
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY shipping_id
		HAVING COUNT(*) >= 2
		ORDER BY shipping_id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shipment groups: %w", err)
	}
	defer rows.Close()

	var out []domain.ShipmentGroup
	for rows.Next() {
		var g domain.ShipmentGroup
		var count int64
		if err := rows.Scan(&g.ShippingID, &g.Total, &count); err != nil {
			return nil, fmt.Errorf("scan shipment group: %w", err)
		}
		g.Count = int(count)
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shipment groups: %w", err)
	}
	return out, nil
}

// SetGroupShippingCost writes anchor to the lowest order id of the shipment
// and share to the other members. Members already holding their value are
// not rewritten.
func (r *OrderRepo) SetGroupShippingCost(ctx context.Context, shippingID int64, share, anchor decimal.Decimal) (int64, error) {
	query := `WITH target AS (
			SELECT order_id,
				CASE WHEN order_id = MIN(order_id) OVER () THEN $3::numeric ELSE $2::numeric END AS cost
			FROM orders
			WHERE shipping_id = $1
		)
		UPDATE orders o SET shipping_cost = t.cost, updated_at = NOW()
		FROM target t
		WHERE o.order_id = t.order_id AND o.shipping_cost IS DISTINCT FROM t.cost`

	tag, err := r.pool.Exec(ctx, query, shippingID, share, anchor)
	if err != nil {
		return 0, fmt.Errorf("set group shipping cost: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListMissingItemCosts returns orders created since the given time with an
// item cost that is null or zero.
func (r *OrderRepo) ListMissingItemCosts(ctx context.Context, since time.Time) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE date_created >= $1 AND ` + itemMissingCost + `
		ORDER BY date_created, order_id`
	return r.list(ctx, "list orders missing item costs", query, since)
}

// ListMissingShippingCost returns orders whose shipping cost is null or zero.
func (r *OrderRepo) ListMissingShippingCost(ctx context.Context) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE shipping_cost IS NULL OR shipping_cost = 0
		ORDER BY order_id`
	return r.list(ctx, "list orders missing shipping cost", query)
}

// ListIncompletePaid returns paid orders stored without items or without a
// shipping cost.
func (r *OrderRepo) ListIncompletePaid(ctx context.Context) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE status = $1
		  AND (jsonb_array_length(order_items) = 0 OR shipping_cost IS NULL OR shipping_cost = 0)
		ORDER BY order_id`
	return r.list(ctx, "list incomplete paid orders", query, string(domain.OrderStatusPaid))
}

// ListCreatedSince pages through orders created since the given time.
func (r *OrderRepo) ListCreatedSince(ctx context.Context, since time.Time, limit, offset int) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE date_created >= $1
		ORDER BY date_created, order_id
		LIMIT $2 OFFSET $3`
	return r.list(ctx, "list orders created since", query, since, limit, offset)
}

// ListWithShippingSince returns orders created since the given time that
// carry a shipping id.
func (r *OrderRepo) ListWithShippingSince(ctx context.Context, since time.Time) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE shipping_id IS NOT NULL AND date_created >= $1
		ORDER BY order_id`
	return r.list(ctx, "list orders with shipping", query, since)
}

// CountCreatedSince counts orders created since the given time.
func (r *OrderRepo) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE date_created >= $1`, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

// CountMissingCostSince counts orders created since the given time with at
// least one unattributed item cost.
func (r *OrderRepo) CountMissingCostSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE date_created >= $1 AND `+itemUnattributed, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count orders missing cost: %w", err)
	}
	return n, nil
}

// DeleteAll removes every order.
func (r *OrderRepo) DeleteAll(ctx context.Context, tx pgx.Tx) (int64, error) {
	tag, err := pick(r.pool, tx).Exec(ctx, `DELETE FROM orders`)
	if err != nil {
		return 0, fmt.Errorf("delete orders: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *OrderRepo) list(ctx context.Context, op, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o            domain.Order
		status       string
		shippingCost decimal.NullDecimal
		buyer, items []byte
	)
	if err := row.Scan(
		&o.OrderID, &o.DateCreated, &o.PackID, &status, &o.CurrencyID,
		&o.ShippingID, &shippingCost, &buyer, &items, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	if shippingCost.Valid {
		o.ShippingCost = &shippingCost.Decimal
	}
	if len(buyer) > 0 {
		if err := json.Unmarshal(buyer, &o.Buyer); err != nil {
			return nil, fmt.Errorf("decode buyer of order %d: %w", o.OrderID, err)
		}
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("decode items of order %d: %w", o.OrderID, err)
		}
	}
	return &o, nil
}

func marshalItems(items []domain.OrderItem) ([]byte, error) {
	if items == nil {
		items = []domain.OrderItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal order items: %w", err)
	}
	return b, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
