package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionProcessPending AuditAction = "PROCESS_PENDING"
	AuditActionUpdateCosts    AuditAction = "UPDATE_COSTS"
	AuditActionRebuildCosts   AuditAction = "REBUILD_COSTS"
	AuditActionRunJob         AuditAction = "RUN_JOB"
	AuditActionReset          AuditAction = "RESET"
)

// AuditLog records one administrative action that changed stored data.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
