package routes

import (
	"github.com/gin-gonic/gin"

	"marketplace-server/models"
	"marketplace-server/services"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers the caller's notification inbox.
func RegisterNotificationRoutes(router *gin.RouterGroup, h *NotificationHandler) {
	notifications := router.Group("/notifications")
	{
		notifications.GET("", h.list)
		notifications.GET("/unread-count", h.unreadCount)
		notifications.PUT("/:id/read", h.markRead)
		notifications.POST("", h.create)
	}
}

func (h *NotificationHandler) list(c *gin.Context) {
	p, page := pageFrom(c)
	unread := c.Query("unread") == "true"
	items, total, err := h.notifications.List(c.Request.Context(), principal(c), unread, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, items, p, total)
}

func (h *NotificationHandler) unreadCount(c *gin.Context) {
	count, err := h.notifications.UnreadCount(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"count": count})
}

func (h *NotificationHandler) markRead(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	n, err := h.notifications.MarkRead(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, n)
}

func (h *NotificationHandler) create(c *gin.Context) {
	var req models.NotificationCreate
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.notifications.Create(c.Request.Context(), principal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, n)
}
