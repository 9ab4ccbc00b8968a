package dto

import "time"

// NotificationRequest is the webhook body posted by the marketplace.
type NotificationRequest struct {
	ID            string     `json:"_id" binding:"omitempty,max=200"`
	Resource      string     `json:"resource" binding:"required,max=500"`
	UserID        int64      `json:"user_id" binding:"gte=0"`
	Topic         string     `json:"topic" binding:"required,max=100,safe_id"`
	ApplicationID int64      `json:"application_id"`
	Attempts      int        `json:"attempts" binding:"gte=0"`
	Sent          *time.Time `json:"sent,omitempty"`
	Received      *time.Time `json:"received,omitempty"`
}

// NotificationResponse acknowledges a stored notification.
type NotificationResponse struct {
	ID       string `json:"id"`
	Topic    string `json:"topic"`
	Resource string `json:"resource"`
}

// RebuildCostsRequest is the body of POST /api/products/rebuild-costs.
type RebuildCostsRequest struct {
	StartDate string `json:"start_date" binding:"required,ymd"`
}

// RunJobURI binds the :job path parameter.
type RunJobURI struct {
	Job string `uri:"job" binding:"required,safe_id"`
}

// RunJobRequest is the optional body of POST /api/jobs/:job.
type RunJobRequest struct {
	From string `json:"from" binding:"omitempty,ymd"`
}

// UpdateCostsResponse reports how many SKUs changed cost.
type UpdateCostsResponse struct {
	Changed int `json:"changed"`
}

// JobReportResponse is the body returned by job runs.
type JobReportResponse struct {
	Job         string   `json:"job"`
	Scanned     int      `json:"scanned"`
	Updated     int      `json:"updated"`
	Skipped     int      `json:"skipped"`
	Failed      int      `json:"failed"`
	MissingSKUs []string `json:"missing_skus,omitempty"`
	DurationMS  int64    `json:"duration_ms"`
	Error       string   `json:"error,omitempty"`
}

// CostCoverageResponse is the body of GET /api/orders/cost-coverage.
type CostCoverageResponse struct {
	Since           string  `json:"since"`
	TotalOrders     int64   `json:"total_orders"`
	MissingCost     int64   `json:"orders_missing_cost"`
	CompletePercent float64 `json:"complete_percent"`
}
