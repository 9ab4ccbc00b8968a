package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"
	"time"

	"meli-reconciler/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// NotificationRepository defines persistence operations for webhook notifications.
type NotificationRepository interface {
	// Upsert inserts the notification or overwrites its payload fields. The
	// processed flag of an existing row is preserved.
	Upsert(ctx context.Context, n *domain.Notification) error
	ListUnprocessed(ctx context.Context, topic string) ([]domain.Notification, error)
	MarkProcessed(ctx context.Context, ids []string) (int64, error)
	ResetProcessed(ctx context.Context, tx pgx.Tx, topic string) (int64, error)
}

// OrderRepository defines persistence operations for reconciled orders.
type OrderRepository interface {
	Get(ctx context.Context, orderID int64) (*domain.Order, error)
	GetMany(ctx context.Context, orderIDs []int64) (map[int64]*domain.Order, error)
	// Upsert writes every order field except shipping_cost, which is only
	// set on insert.
	Upsert(ctx context.Context, o *domain.Order) error
	UpdateItems(ctx context.Context, orderID int64, items []domain.OrderItem) error
	SetShippingID(ctx context.Context, orderID, shippingID int64) error
	SetShippingCost(ctx context.Context, orderID int64, cost decimal.Decimal) error
	// ApplyShipmentCost stores cost on the lowest order id sharing the
	// shipment and zero on the other members.
	ApplyShipmentCost(ctx context.Context, shippingID int64, cost decimal.Decimal) (int64, error)
	ListShipmentGroups(ctx context.Context, filter ShipmentGroupFilter) ([]domain.ShipmentGroup, error)
	// SetGroupShippingCost writes anchor to the lowest order id of the
	// shipment and share to the other members.
	SetGroupShippingCost(ctx context.Context, shippingID int64, share, anchor decimal.Decimal) (int64, error)

	ListMissingItemCosts(ctx context.Context, since time.Time) ([]domain.Order, error)
	ListMissingShippingCost(ctx context.Context) ([]domain.Order, error)
	ListIncompletePaid(ctx context.Context) ([]domain.Order, error)
	ListCreatedSince(ctx context.Context, since time.Time, limit, offset int) ([]domain.Order, error)
	ListWithShippingSince(ctx context.Context, since time.Time) ([]domain.Order, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	CountMissingCostSince(ctx context.Context, since time.Time) (int64, error)
	DeleteAll(ctx context.Context, tx pgx.Tx) (int64, error)
}

// ShipmentGroupFilter narrows redistribution. Zero value means all groups.
type ShipmentGroupFilter struct {
	ShippingIDs  []int64
	CreatedSince *time.Time
}

// ProductCostRepository defines persistence operations for SKU cost records.
type ProductCostRepository interface {
	ListBySKUs(ctx context.Context, skus []string) ([]domain.ProductCost, error)
	ListAll(ctx context.Context) ([]domain.ProductCost, error)
	Upsert(ctx context.Context, pc *domain.ProductCost) error
	DeleteAll(ctx context.Context, tx pgx.Tx) (int64, error)
	Insert(ctx context.Context, tx pgx.Tx, pc *domain.ProductCost) error
}

// CredentialRepository stores marketplace OAuth credentials.
type CredentialRepository interface {
	Get(ctx context.Context, userID int64) (*domain.Credentials, error)
	Save(ctx context.Context, c *domain.Credentials) error
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
