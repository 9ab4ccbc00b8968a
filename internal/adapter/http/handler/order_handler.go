package handler

import (
	"time"

	"meli-reconciler/internal/adapter/http/dto"
	"meli-reconciler/internal/core/ports"
	"meli-reconciler/pkg/apperror"
	"meli-reconciler/pkg/response"

	"github.com/gin-gonic/gin"
)

// OrderHandler exposes reconciliation and coverage endpoints.
type OrderHandler struct {
	reconciler ports.ReconcilerService
	jobs       ports.JobService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(reconciler ports.ReconcilerService, jobs ports.JobService) *OrderHandler {
	return &OrderHandler{reconciler: reconciler, jobs: jobs}
}

// ProcessPending handles POST /api/pendingOrders/process-pending.
func (h *OrderHandler) ProcessPending(c *gin.Context) {
	res, err := h.reconciler.ProcessPending(c.Request.Context())
	if err != nil {
		response.Error(c, asAppError(err, apperror.ErrReconcileFailed))
		return
	}
	response.OK(c, res)
}

// CostCoverage handles GET /api/orders/cost-coverage.
func (h *OrderHandler) CostCoverage(c *gin.Context) {
	cov, err := h.jobs.CostCoverage(c.Request.Context())
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}
	response.OK(c, dto.CostCoverageResponse{
		Since:           cov.Since.Format(time.RFC3339),
		TotalOrders:     cov.TotalOrders,
		MissingCost:     cov.MissingCost,
		CompletePercent: cov.CompletePercent,
	})
}
