package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hrdesk-io/hrdesk/internal/services"
	"github.com/hrdesk-io/hrdesk/pkg/response"
)

// UrgentHandler exposes the urgent-message channel endpoints.
type UrgentHandler struct {
	service *services.UrgentService
}

// NewUrgentHandler constructs an UrgentHandler.
func NewUrgentHandler(service *services.UrgentService) *UrgentHandler {
	return &UrgentHandler{service: service}
}

type sendUrgentPayload struct {
	Text string `json:"text" validate:"required,min=1,max=4000"`
}

type replyUrgentPayload struct {
	Reply string `json:"reply" validate:"required,min=1,max=4000"`
}

// Send records a new urgent message from the calling employee.
func (h *UrgentHandler) Send(c *gin.Context) {
	var payload sendUrgentPayload
	if err := bindAndValidate(c, &payload); err != nil {
		response.Error(c, err)
		return
	}

	item, err := h.service.Send(c.Request.Context(), currentUserID(c), payload.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

// ListAll returns every urgent message. Admin view.
func (h *UrgentHandler) ListAll(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// ListMine returns the caller's own urgent messages.
func (h *UrgentHandler) ListMine(c *gin.Context) {
	items, err := h.service.ListForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Reply records the admin answer on a message.
func (h *UrgentHandler) Reply(c *gin.Context) {
	var payload replyUrgentPayload
	if err := bindAndValidate(c, &payload); err != nil {
		response.Error(c, err)
		return
	}

	item, err := h.service.Reply(c.Request.Context(), c.Param("id"), payload.Reply)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// Delete removes a message permanently.
func (h *UrgentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
