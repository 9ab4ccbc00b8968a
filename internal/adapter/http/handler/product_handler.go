package handler

import (
	"meli-reconciler/internal/adapter/http/dto"
	"meli-reconciler/internal/core/ports"
	"meli-reconciler/pkg/apperror"
	"meli-reconciler/pkg/response"

	"github.com/gin-gonic/gin"
)

// ProductHandler triggers product cost maintenance.
type ProductHandler struct {
	costs ports.CostService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(costs ports.CostService) *ProductHandler {
	return &ProductHandler{costs: costs}
}

// UpdateCosts handles POST /api/products/update-costs.
func (h *ProductHandler) UpdateCosts(c *gin.Context) {
	changed, err := h.costs.RefreshCurrent(c.Request.Context())
	if err != nil {
		response.Error(c, asAppError(err, apperror.ErrCostSourceFailed))
		return
	}
	response.OK(c, dto.UpdateCostsResponse{Changed: changed})
}

// RebuildCosts handles POST /api/products/rebuild-costs.
func (h *ProductHandler) RebuildCosts(c *gin.Context) {
	var req dto.RebuildCostsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	start, err := dto.ParseDay(req.StartDate)
	if err != nil {
		response.Error(c, apperror.Validation("start_date must be YYYY-MM-DD"))
		return
	}

	res, err := h.costs.RebuildAll(c.Request.Context(), start)
	if err != nil {
		response.Error(c, asAppError(err, apperror.ErrCostSourceFailed))
		return
	}
	response.OK(c, res)
}
