package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"meli-reconciler/internal/core/domain"

	"github.com/shopspring/decimal"
)

// ErrCredentialsUnavailable marks gateway failures that no retry can fix:
// missing or unreadable stored credentials, or no gateway at all. Callers
// abort the whole run.
var ErrCredentialsUnavailable = errors.New("marketplace credentials unavailable")

// ErrGatewayNotConfigured is returned when no marketplace base URL is set.
// It wraps ErrCredentialsUnavailable so runs abort instead of failing per order.
var ErrGatewayNotConfigured = fmt.Errorf("%w: marketplace gateway is not configured", ErrCredentialsUnavailable)

// ErrDispatchSkipped is returned by an InventoryDispatcher that is not
// configured to forward anything.
var ErrDispatchSkipped = errors.New("inventory dispatch skipped")

// --- Outbound Ports (external systems) ---

// EncryptionService handles AES-256-GCM encryption/decryption of stored tokens.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// MarketplaceResult is the outcome of one marketplace call. Ordinary API
// failures are reported with Success=false rather than an error.
type MarketplaceResult struct {
	Success bool
	Status  int
	Data    json.RawMessage
	Error   string
	Details string
}

// MarketplaceGateway executes authenticated marketplace API calls with
// retries and transparent token refresh.
type MarketplaceGateway interface {
	Request(ctx context.Context, method, endpoint string, body any) (*MarketplaceResult, error)
}

// OrderSource is the typed view of the marketplace the reconciler needs.
type OrderSource interface {
	GetOrder(ctx context.Context, orderID int64) (*domain.RemoteOrder, error)
	GetShipment(ctx context.Context, shipmentID int64) (*domain.Shipment, error)
	SearchOrders(ctx context.Context, sellerID int64, from time.Time, offset, limit int) (*domain.OrderSearchPage, error)
}

// SheetFile is one spreadsheet found in a folder.
type SheetFile struct {
	ID   string
	Name string
}

// SheetSource reads the spreadsheets that feed product costs.
type SheetSource interface {
	ReadRows(ctx context.Context, spreadsheetID, rng string) ([][]string, error)
	ListFiles(ctx context.Context, folderID string) ([]SheetFile, error)
}

// InventoryDispatcher forwards stock-location notifications downstream.
type InventoryDispatcher interface {
	Dispatch(ctx context.Context, n *domain.Notification, userProductID string) error
}

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// DeliveryDedupe drops webhook deliveries already seen within a TTL.
type DeliveryDedupe interface {
	// CheckAndSet returns true if id is new, false if it was seen already.
	CheckAndSet(ctx context.Context, id string, ttl time.Duration) (bool, error)
}

// CredentialCache keeps encrypted credentials close to the gateway so a
// token refresh in one process is visible to the others. Tokens are stored
// exactly as given; callers seal them first.
type CredentialCache interface {
	Get(ctx context.Context, userID int64) (*domain.Credentials, error)
	Set(ctx context.Context, c *domain.Credentials, ttl time.Duration) error
	Delete(ctx context.Context, userID int64) error
}

// --- Service Ports (Business Logic) ---

// NotificationInput is a webhook delivery as received.
type NotificationInput struct {
	ID            string
	Resource      string
	UserID        int64
	Topic         string
	ApplicationID int64
	Attempts      int
	Sent          *time.Time
	Received      *time.Time
}

// NotificationService stores webhook deliveries and fires their side effects.
type NotificationService interface {
	Receive(ctx context.Context, in NotificationInput) (*domain.Notification, error)
}

// ReconcileResult summarises one reconciliation pass.
type ReconcileResult struct {
	Groups              int `json:"groups"`
	ProcessedOrders     int `json:"processed_orders"`
	SkippedOrders       int `json:"skipped_orders"`
	FailedOrders        int `json:"failed_orders"`
	ShipmentsResolved   int `json:"shipments_resolved"`
	NotificationsMarked int `json:"notifications_marked"`
	RedistributedGroups int `json:"redistributed_groups"`
	UnresolvedSKUs      int `json:"unresolved_skus"`
}

// ReconcilerService reconciles orders referenced by pending notifications.
type ReconcilerService interface {
	ProcessPending(ctx context.Context) (*ReconcileResult, error)
}

// ShippingResolver resolves and redistributes shipping costs.
type ShippingResolver interface {
	ResolveShippingCost(ctx context.Context, shipmentID int64) (decimal.Decimal, error)
	ResolveBatch(ctx context.Context, shipmentIDs []int64) (map[int64]decimal.Decimal, error)
	ApplyShipmentCosts(ctx context.Context, costs map[int64]decimal.Decimal) (int, error)
	RedistributeSharedShipments(ctx context.Context, filter ShipmentGroupFilter) (int, error)
}

// RebuildResult summarises a full product cost rebuild.
type RebuildResult struct {
	SKUs           int `json:"skus"`
	WithCurrent    int `json:"with_current_cost"`
	FilesScanned   int `json:"files_scanned"`
	FilesFailed    int `json:"files_failed"`
	HistoryEntries int `json:"history_entries"`
}

// CostService maintains product cost records from the spreadsheet source.
type CostService interface {
	RefreshCurrent(ctx context.Context) (int, error)
	RebuildAll(ctx context.Context, startDate time.Time) (*RebuildResult, error)
}

// JobParams carries optional job arguments.
type JobParams struct {
	From *time.Time
}

// JobService runs batch correction jobs.
type JobService interface {
	Run(ctx context.Context, job domain.JobName, params JobParams) (*domain.JobReport, error)
	CostCoverage(ctx context.Context) (*domain.CostCoverage, error)
}

// AuditService records administrative actions.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}

// HealthChecker reports the health of one external dependency.
type HealthChecker interface {
	Ping(ctx context.Context) error
	Name() string // "postgresql", "redis"
}
