package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hrdesk-io/hrdesk/internal/services"
	"github.com/hrdesk-io/hrdesk/pkg/response"
)

// NotificationHandler exposes the notification feed endpoints.
type NotificationHandler struct {
	service *services.NotificationService
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// ListAll returns the shared admin feed.
func (h *NotificationHandler) ListAll(c *gin.Context) {
	items, err := h.service.ListAll(c.Request.Context(), queryLimit(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// ListMine returns the calling user's targeted notifications. Admins are fed
// the shared broadcast feed; nothing targets an admin's user id directly.
func (h *NotificationHandler) ListMine(c *gin.Context) {
	if currentIsAdmin(c) {
		h.ListAll(c)
		return
	}

	items, err := h.service.ListForUser(c.Request.Context(), currentUserID(c), queryLimit(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// MarkRead flags a single notification as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	item, err := h.service.MarkRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// MarkAllRead flags the whole feed as read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.service.MarkAllRead(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

func queryLimit(c *gin.Context) int {
	limit, _ := strconv.Atoi(c.Query("limit"))
	return limit
}
