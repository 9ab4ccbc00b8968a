package handler

import (
	"meli-reconciler/internal/adapter/http/dto"
	"meli-reconciler/internal/core/ports"
	"meli-reconciler/pkg/apperror"
	"meli-reconciler/pkg/response"

	"github.com/gin-gonic/gin"
)

// NotificationHandler receives marketplace webhooks.
type NotificationHandler struct {
	svc ports.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(svc ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// Receive handles POST /api/meliNotifications. The marketplace only needs a
// 200 once the delivery is stored; side effects run afterwards.
func (h *NotificationHandler) Receive(c *gin.Context) {
	var req dto.NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrInvalidNotification(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	n, err := h.svc.Receive(c.Request.Context(), ports.NotificationInput{
		ID:            req.ID,
		Resource:      req.Resource,
		UserID:        req.UserID,
		Topic:         req.Topic,
		ApplicationID: req.ApplicationID,
		Attempts:      req.Attempts,
		Sent:          req.Sent,
		Received:      req.Received,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NotificationResponse{ID: n.ID, Topic: n.Topic, Resource: n.Resource})
}
