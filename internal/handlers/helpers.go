package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hrdesk-io/hrdesk/internal/requests"
	apperrors "github.com/hrdesk-io/hrdesk/pkg/errors"
	"github.com/hrdesk-io/hrdesk/pkg/validator"
)

// bindAndValidate decodes the JSON body and runs struct validation, mapping
// both failure modes onto a 400 AppError.
func bindAndValidate(c *gin.Context, dest any) error {
	if err := c.ShouldBindJSON(dest); err != nil {
		return apperrors.NewBadRequest("invalid request payload")
	}
	if err := validator.ValidateStruct(dest); err != nil {
		return apperrors.NewBadRequest(err.Error())
	}
	return nil
}

// kindFromPath resolves the :slug and :id path segments to the composite
// request identity. An unresolvable slug is a missing type, not a 404.
func kindFromPath(c *gin.Context) (requests.Kind, int64, error) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		return "", 0, apperrors.ErrTypeMissing
	}

	kind, ok := requests.KindFromSlug(slug)
	if !ok {
		return "", 0, apperrors.ErrTypeMissing
	}

	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		return "", 0, apperrors.NewBadRequest("invalid request id")
	}

	return kind, id, nil
}
