package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hrdesk-io/hrdesk/internal/auth"
	"github.com/hrdesk-io/hrdesk/internal/chat"
	"github.com/hrdesk-io/hrdesk/internal/realtime"
	apperrors "github.com/hrdesk-io/hrdesk/pkg/errors"
	"github.com/hrdesk-io/hrdesk/pkg/response"
)

// RealtimeHandler upgrades websocket subscriptions for the stream hub and
// the private chat hub. Browsers cannot set headers on websocket dials, so
// the bearer token is also accepted as a query parameter.
type RealtimeHandler struct {
	jwt  *auth.JWTService
	hub  *realtime.Hub
	chat *chat.Hub
}

// NewRealtimeHandler constructs a RealtimeHandler.
func NewRealtimeHandler(jwt *auth.JWTService, hub *realtime.Hub, chatHub *chat.Hub) *RealtimeHandler {
	return &RealtimeHandler{jwt: jwt, hub: hub, chat: chatHub}
}

// Streams serves the multiplexed stream socket. The initial subscription set
// comes from the streams query parameter; clients can adjust it later with
// subscribe/unsubscribe control messages.
func (h *RealtimeHandler) Streams(c *gin.Context) {
	claims, err := h.authenticate(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	streams := splitStreams(c.Query("streams"))
	if len(streams) == 0 {
		streams = []string{realtime.StreamNotifications, realtime.StreamRequests}
	}

	h.hub.Serve(claims.UserID, streams, nil, c.Writer, c.Request)
}

// Chat serves the private per-user urgent-message socket.
func (h *RealtimeHandler) Chat(c *gin.Context) {
	claims, err := h.authenticate(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.chat.Serve(claims.UserID, c.Writer, c.Request)
}

func (h *RealtimeHandler) authenticate(c *gin.Context) (*auth.Claims, error) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		authz := c.GetHeader("Authorization")
		if len(authz) > 7 && strings.EqualFold(authz[:7], "Bearer ") {
			token = strings.TrimSpace(authz[7:])
		}
	}
	if token == "" {
		return nil, apperrors.ErrUnauthorized
	}

	claims, err := h.jwt.ValidateAccessToken(token)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	return claims, nil
}

func splitStreams(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	streams := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			streams = append(streams, part)
		}
	}
	return streams
}
