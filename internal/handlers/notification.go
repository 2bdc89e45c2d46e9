package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/synergy-dev/synergy/internal/apperr"
	"github.com/synergy-dev/synergy/internal/models"
	"github.com/synergy-dev/synergy/internal/services"
	"github.com/synergy-dev/synergy/internal/utils"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

type NotificationResponse struct {
	ID        uint                    `json:"id"`
	Type      models.NotificationType `json:"type"`
	Message   string                  `json:"message"`
	Read      bool                    `json:"read"`
	Data      datatypes.JSON          `json:"data,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
}

func newNotificationResponse(notification models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        notification.ID,
		Type:      notification.Type,
		Message:   notification.Message,
		Read:      notification.Read,
		Data:      notification.Data,
		CreatedAt: notification.CreatedAt,
	}
}

func (h *NotificationHandler) List(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		unauthorized(ctx)
		return
	}

	page, limit := utils.GetPageParams(ctx, services.DefaultNotificationLimit)

	var read *bool
	switch ctx.Query("read") {
	case "true":
		value := true
		read = &value
	case "false":
		value := false
		read = &value
	}

	notifications, meta, err := h.notifications.ListForUser(userID, read, page, limit)
	if err != nil {
		fail(ctx, err)
		return
	}

	responses := make([]NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		responses = append(responses, newNotificationResponse(notification))
	}

	paginated(ctx, responses, meta, "Notifications retrieved successfully")
}

func (h *NotificationHandler) UnreadCount(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		unauthorized(ctx)
		return
	}

	count, err := h.notifications.UnreadCount(userID)
	if err != nil {
		fail(ctx, err)
		return
	}

	success(ctx, http.StatusOK, gin.H{"count": count}, "")
}

func (h *NotificationHandler) MarkRead(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		unauthorized(ctx)
		return
	}

	notificationID, err := utils.GetIDParam(ctx, "notification_id")
	if err != nil {
		fail(ctx, apperr.Validation("Invalid notification ID"))
		return
	}

	if err := h.notifications.MarkRead(notificationID, userID); err != nil {
		fail(ctx, err)
		return
	}

	success(ctx, http.StatusOK, nil, "Notification marked as read")
}

func (h *NotificationHandler) MarkAllRead(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		unauthorized(ctx)
		return
	}

	if err := h.notifications.MarkAllRead(userID); err != nil {
		fail(ctx, err)
		return
	}

	success(ctx, http.StatusOK, nil, "All notifications marked as read")
}
