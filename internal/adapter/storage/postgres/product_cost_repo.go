package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"meli-reconciler/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// ProductCostRepo implements ports.ProductCostRepository.
type ProductCostRepo struct {
	pool Pool
}

// NewProductCostRepo creates a new ProductCostRepo.
func NewProductCostRepo(pool Pool) *ProductCostRepo {
	return &ProductCostRepo{pool: pool}
}

// ListBySKUs loads the records of the given SKUs in a single query.
func (r *ProductCostRepo) ListBySKUs(ctx context.Context, skus []string) ([]domain.ProductCost, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	return r.list(ctx, "list product costs by sku",
		`SELECT sku, current_cost, historical_costs, updated_at FROM product_costs WHERE sku = ANY($1)`, skus)
}

// ListAll loads every record.
func (r *ProductCostRepo) ListAll(ctx context.Context) ([]domain.ProductCost, error) {
	return r.list(ctx, "list product costs",
		`SELECT sku, current_cost, historical_costs, updated_at FROM product_costs ORDER BY sku`)
}

// Upsert writes a record keyed by SKU.
func (r *ProductCostRepo) Upsert(ctx context.Context, pc *domain.ProductCost) error {
	history, err := marshalHistory(pc.History)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO product_costs (sku, current_cost, historical_costs, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (sku) DO UPDATE SET
			current_cost = EXCLUDED.current_cost,
			historical_costs = EXCLUDED.historical_costs,
			updated_at = NOW()`,
		pc.SKU, pc.CurrentCost, history)
	if err != nil {
		return fmt.Errorf("upsert product cost: %w", err)
	}
	return nil
}

// DeleteAll removes every record.
func (r *ProductCostRepo) DeleteAll(ctx context.Context, tx pgx.Tx) (int64, error) {
	tag, err := pick(r.pool, tx).Exec(ctx, `DELETE FROM product_costs`)
	if err != nil {
		return 0, fmt.Errorf("delete product costs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Insert adds a record. Used by full rebuilds after DeleteAll.
func (r *ProductCostRepo) Insert(ctx context.Context, tx pgx.Tx, pc *domain.ProductCost) error {
	history, err := marshalHistory(pc.History)
	if err != nil {
		return err
	}
	_, err = pick(r.pool, tx).Exec(ctx,
		`INSERT INTO product_costs (sku, current_cost, historical_costs, updated_at) VALUES ($1, $2, $3, NOW())`,
		pc.SKU, pc.CurrentCost, history)
	if err != nil {
		return fmt.Errorf("insert product cost: %w", err)
	}
	return nil
}

func (r *ProductCostRepo) list(ctx context.Context, op, query string, args ...any) ([]domain.ProductCost, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []domain.ProductCost
	for rows.Next() {
		var (
			pc      domain.ProductCost
			history []byte
		)
		if err := rows.Scan(&pc.SKU, &pc.CurrentCost, &history, &pc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if len(history) > 0 {
			if err := json.Unmarshal(history, &pc.History); err != nil {
				return nil, fmt.Errorf("decode history of %s: %w", pc.SKU, err)
			}
		}
		out = append(out, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func marshalHistory(h []domain.CostEntry) ([]byte, error) {
	if h == nil {
		h = []domain.CostEntry{}
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("marshal cost history: %w", err)
	}
	return b, nil
}
