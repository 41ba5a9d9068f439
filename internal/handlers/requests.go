package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hrdesk-io/hrdesk/internal/requests"
	"github.com/hrdesk-io/hrdesk/internal/services"
	apperrors "github.com/hrdesk-io/hrdesk/pkg/errors"
	"github.com/hrdesk-io/hrdesk/pkg/response"
)

// RequestHandler exposes the request lifecycle endpoints.
type RequestHandler struct {
	service *services.RequestService
}

// NewRequestHandler constructs a RequestHandler.
func NewRequestHandler(service *services.RequestService) *RequestHandler {
	return &RequestHandler{service: service}
}

type submitRequestPayload struct {
	Type    requests.Kind  `json:"type" validate:"required"`
	Urgent  bool           `json:"urgent"`
	Details map[string]any `json:"details"`
}

type updateStatusPayload struct {
	Status requests.Status `json:"status" validate:"required"`
}

// ListAll returns every request across kinds. Admin table view.
func (h *RequestHandler) ListAll(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// ListMine returns the calling employee's own requests.
func (h *RequestHandler) ListMine(c *gin.Context) {
	items, err := h.service.ListForOwner(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Submit records a new employee request.
func (h *RequestHandler) Submit(c *gin.Context) {
	var payload submitRequestPayload
	if err := bindAndValidate(c, &payload); err != nil {
		response.Error(c, err)
		return
	}

	item, err := h.service.Submit(c.Request.Context(), services.SubmitRequestInput{
		Kind:        payload.Type,
		OwnerUserID: currentUserID(c),
		Urgent:      payload.Urgent,
		Details:     payload.Details,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

// UpdateStatus applies an admin lifecycle decision to one request.
func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	kind, id, err := kindFromPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var payload updateStatusPayload
	if err := bindAndValidate(c, &payload); err != nil {
		response.Error(c, err)
		return
	}

	item, err := h.service.UpdateStatus(c.Request.Context(), kind, id, payload.Status, currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// Delete rejects the request; rows are never physically removed here.
func (h *RequestHandler) Delete(c *gin.Context) {
	kind, id, err := kindFromPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	item, err := h.service.Reject(c.Request.Context(), kind, id, currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// UploadFile attaches the admin document to an awaiting-file request.
func (h *RequestHandler) UploadFile(c *gin.Context) {
	kind, id, err := kindFromPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, apperrors.ErrFileRequired)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, apperrors.Wrap(err, "could not read uploaded file"))
		return
	}
	defer file.Close()

	item, err := h.service.AttachFile(c.Request.Context(), kind, id, fileHeader.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}
