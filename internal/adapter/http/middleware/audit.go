package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"meli-reconciler/internal/core/domain"
	"meli-reconciler/internal/core/ports"
	"meli-reconciler/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that records successful
// administrative writes. Actions are keyed by route template.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only audit successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method != http.MethodPost {
			return
		}

		action, resourceType, resourceID := mapRouteToAction(c.FullPath(), c.Param("job"))
		if action == "" {
			return
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"request_id": c.GetString(response.RequestIDKey),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}

func mapRouteToAction(route, job string) (domain.AuditAction, string, string) {
	switch route {
	case "/api/pendingOrders/process-pending":
		return domain.AuditActionProcessPending, "orders", ""
	case "/api/products/update-costs":
		return domain.AuditActionUpdateCosts, "product_costs", ""
	case "/api/products/rebuild-costs":
		return domain.AuditActionRebuildCosts, "product_costs", ""
	case "/api/jobs/:job":
		if job == string(domain.JobReset) {
			return domain.AuditActionReset, "orders", job
		}
		return domain.AuditActionRunJob, "job", job
	}
	return "", "", ""
}
