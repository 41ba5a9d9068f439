package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/hrdesk-io/hrdesk/internal/middleware"
)

func currentUserID(c *gin.Context) string {
	return c.GetString(middleware.CtxUserIDKey)
}

func currentIsAdmin(c *gin.Context) bool {
	return c.GetBool(middleware.CtxIsAdminKey)
}
