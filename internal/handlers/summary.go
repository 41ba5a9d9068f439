package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hrdesk-io/hrdesk/internal/services"
	"github.com/hrdesk-io/hrdesk/pkg/response"
)

// SummaryHandler exposes the admin dashboard aggregate.
type SummaryHandler struct {
	service *services.SummaryService
}

// NewSummaryHandler constructs a SummaryHandler.
func NewSummaryHandler(service *services.SummaryService) *SummaryHandler {
	return &SummaryHandler{service: service}
}

// Summary returns the per-kind and per-status counters.
func (h *SummaryHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summarize(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, summary)
}
