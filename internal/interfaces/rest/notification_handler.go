package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/domain/models"
	apperrors "github.com/4lexanderpardo09/help-desk-back-sub000/pkg/errors"
)

// NotificationReader defines the interface for notification reads
type NotificationReader interface {
	GetMyNotifications(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkAsRead(ctx context.Context, id, userID string) error
}

// NotificationHandler handles notification endpoints
type NotificationHandler struct {
	svc NotificationReader
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(svc NotificationReader) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List handles GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondAppError(c, apperrors.NewUnauthorizedError("no session"))
		return
	}

	notifications, err := h.svc.GetMyNotifications(c.Request.Context(), user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": notifications})
}

// MarkRead handles PUT /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondAppError(c, apperrors.NewUnauthorizedError("no session"))
		return
	}

	if err := h.svc.MarkAsRead(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		RespondAppError(c, apperrors.NewNotFoundError("notification", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"success": true}})
}
