package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hrdesk-io/hrdesk/internal/services"
	"github.com/hrdesk-io/hrdesk/pkg/response"
)

// UserHandler exposes the read-only account directory.
type UserHandler struct {
	service *services.UserService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// ListAll returns the full directory. Admin view.
func (h *UserHandler) ListAll(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, users)
}

// Me returns the calling user's own account.
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}
