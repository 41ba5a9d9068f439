package console

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hrdesk-io/hrdesk/internal/api"
	"github.com/hrdesk-io/hrdesk/internal/auth"
	"github.com/hrdesk-io/hrdesk/internal/chat"
	"github.com/hrdesk-io/hrdesk/internal/database/testutil"
	"github.com/hrdesk-io/hrdesk/internal/models"
	"github.com/hrdesk-io/hrdesk/internal/realtime"
	"github.com/hrdesk-io/hrdesk/internal/requests"
	"github.com/hrdesk-io/hrdesk/internal/services"
)

// portalEnv boots the real backend behind an httptest server so the console
// talks to the same surface it would in production.
type portalEnv struct {
	server        *httptest.Server
	db            *gorm.DB
	hub           *realtime.Hub
	chatHub       *chat.Hub
	requests      *services.RequestService
	notifications *services.NotificationService
	urgent        *services.UrgentService
	admin         *models.User
	adminToken    string
}

func newPortalEnv(t *testing.T) *portalEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	jwtService, err := auth.NewJWTService(auth.JWTConfig{Secret: "console-secret", Issuer: "hrdesk-test"})
	require.NoError(t, err)

	hub := realtime.NewHub()
	chatHub := chat.NewHub()

	notifications, err := services.NewNotificationService(db, hub)
	require.NoError(t, err)
	requestsSvc, err := services.NewRequestService(db, hub, notifications, services.UploadConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	urgentSvc, err := services.NewUrgentService(db, chatHub, notifications)
	require.NoError(t, err)
	summarySvc, err := services.NewSummaryService(db)
	require.NoError(t, err)
	userSvc, err := services.NewUserService(db)
	require.NoError(t, err)

	router := api.NewRouter(api.Options{
		DB:            db,
		JWT:           jwtService,
		Hub:           hub,
		Chat:          chatHub,
		Requests:      requestsSvc,
		Notifications: notifications,
		Urgent:        urgentSvc,
		Summary:       summarySvc,
		Users:         userSvc,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	admin := &models.User{Username: "admin", Email: "admin@example.com", FullName: "Portal Admin", IsAdmin: true}
	require.NoError(t, db.Create(admin).Error)

	token, err := jwtService.GenerateAccessToken(auth.AccessTokenInput{UserID: admin.ID, IsAdmin: true})
	require.NoError(t, err)

	return &portalEnv{
		server:        server,
		db:            db,
		hub:           hub,
		chatHub:       chatHub,
		requests:      requestsSvc,
		notifications: notifications,
		urgent:        urgentSvc,
		admin:         admin,
		adminToken:    token,
	}
}

func (e *portalEnv) console(t *testing.T) (*Actions, *Store) {
	t.Helper()
	store := NewStore()
	client := NewClient(e.server.URL, StaticCredentials(e.adminToken))
	return NewActions(client, store, LocaleEnglish), store
}

func (e *portalEnv) submit(t *testing.T, kind requests.Kind) requests.CompositeKey {
	t.Helper()
	dto, err := e.requests.Submit(context.Background(), services.SubmitRequestInput{
		Kind:      kind,
		OwnerName: "Jordan Smith",
	})
	require.NoError(t, err)
	return requests.CompositeKey{ID: dto.ID, Kind: kind}
}

func TestApprovePatchesRowLocally(t *testing.T) {
	env := newPortalEnv(t)
	actions, store := env.console(t)
	ctx := context.Background()

	key := env.submit(t, requests.KindVacation)
	require.NoError(t, actions.Refresh(ctx))

	row, ok := store.Request(key)
	require.True(t, ok)
	require.Equal(t, requests.StatusPending, row.Status)

	feedback := actions.Approve(ctx, key)
	require.False(t, feedback.IsError, feedback.Message)

	row, ok = store.Request(key)
	require.True(t, ok)
	require.Equal(t, requests.StatusApproved, row.Status)
	require.Empty(t, row.FilePath)
	require.ElementsMatch(t, []requests.Control{requests.ControlUpload, requests.ControlDelete}, row.Controls())
	require.Zero(t, store.Overlay().Len(), "overlay superseded by the confirmed row")
}

func TestUploadResolvesRow(t *testing.T) {
	env := newPortalEnv(t)
	actions, store := env.console(t)
	ctx := context.Background()

	key := env.submit(t, requests.KindWorkCertificate)
	require.NoError(t, actions.Refresh(ctx))
	require.False(t, actions.Approve(ctx, key).IsError)

	feedback := actions.UploadFile(ctx, key, "certificate.pdf", strings.NewReader("%PDF-1.4"))
	require.False(t, feedback.IsError, feedback.Message)

	row, ok := store.Request(key)
	require.True(t, ok)
	require.Equal(t, requests.StatusApproved, row.Status)
	require.NotEmpty(t, row.FilePath)
	require.Empty(t, row.Controls(), "approved with file is terminal")
}

func TestRejectRemovesControls(t *testing.T) {
	env := newPortalEnv(t)
	actions, store := env.console(t)
	ctx := context.Background()

	key := env.submit(t, requests.KindVacation)
	require.NoError(t, actions.Refresh(ctx))

	feedback := actions.Reject(ctx, key)
	require.False(t, feedback.IsError, feedback.Message)

	row, ok := store.Request(key)
	require.True(t, ok)
	require.Equal(t, requests.StatusRejected, row.Status)
	require.Empty(t, row.Controls())

	// The terminal state refuses further approval.
	feedback = actions.Approve(ctx, key)
	require.True(t, feedback.IsError)
}

func TestApproveFailureRollsBackOverlay(t *testing.T) {
	env := newPortalEnv(t)
	actions, store := env.console(t)
	ctx := context.Background()

	missing := requests.CompositeKey{ID: 99, Kind: requests.KindVacation}
	feedback := actions.Approve(ctx, missing)
	require.True(t, feedback.IsError)
	require.Zero(t, store.Overlay().Len(), "failed transitions leave no optimistic residue")
}

func TestTypeMissingShortCircuits(t *testing.T) {
	env := newPortalEnv(t)
	env.server.Close() // no network call should be attempted
	actions, _ := env.console(t)

	feedback := actions.Approve(context.Background(), requests.CompositeKey{ID: 1})
	require.True(t, feedback.IsError)
	require.Equal(t, Localize(LocaleEnglish, MsgTypeMissing), feedback.Message)
}

func TestRowBusyGate(t *testing.T) {
	env := newPortalEnv(t)
	actions, store := env.console(t)
	ctx := context.Background()

	key := env.submit(t, requests.KindVacation)
	require.NoError(t, actions.Refresh(ctx))
	require.NoError(t, store.Overlay().Acquire(key))

	feedback := actions.Approve(ctx, key)
	require.True(t, feedback.IsError)
	require.Equal(t, Localize(LocaleEnglish, MsgRowBusy), feedback.Message)
}

func TestFrenchFeedback(t *testing.T) {
	env := newPortalEnv(t)
	store := NewStore()
	client := NewClient(env.server.URL, StaticCredentials(env.adminToken))
	actions := NewActions(client, store, LocaleFrench)

	feedback := actions.Approve(context.Background(), requests.CompositeKey{ID: 1})
	require.Equal(t, Localize(LocaleFrench, MsgTypeMissing), feedback.Message)
}

func TestNotificationSubscriptionFeedsStore(t *testing.T) {
	env := newPortalEnv(t)
	store := NewStore()
	channels := NewChannels(env.server.URL, StaticCredentials(env.adminToken), store)
	channels.SetFloatingWindow(100 * time.Millisecond)

	sub, err := channels.SubscribeNotifications(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sub)
	defer sub.Close()

	require.Eventually(t, func() bool {
		return env.hub.Subscribers(realtime.StreamNotifications) == 1
	}, 2*time.Second, 10*time.Millisecond)

	_, err = env.notifications.Create(context.Background(), services.CreateNotificationInput{
		Type:    "request.created",
		Title:   "New leave request",
		Message: "Jordan Smith submitted a leave request",
		Data:    map[string]any{"vacation_request_id": int64(3)},
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(store.Notifications()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	feed := store.Notifications()
	require.Equal(t, "request.created", feed[0].Type)
	require.Contains(t, feed[0].Data, "vacation_request_id")

	// A non-urgent arrival shows the floating indicator, then it dismisses.
	require.True(t, channels.FloatingVisible())
	require.Eventually(t, func() bool {
		return !channels.FloatingVisible()
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSubscribeWithoutCredentialIsSkipped(t *testing.T) {
	env := newPortalEnv(t)
	store := NewStore()
	channels := NewChannels(env.server.URL, StaticCredentials(""), store)

	sub, err := channels.SubscribeNotifications(context.Background())
	require.NoError(t, err)
	require.Nil(t, sub, "missing credential skips the subscription silently")

	sub, err = channels.SubscribeChat(context.Background())
	require.NoError(t, err)
	require.Nil(t, sub)
}

func TestRequestStreamTriggersHandler(t *testing.T) {
	env := newPortalEnv(t)
	store := NewStore()
	channels := NewChannels(env.server.URL, StaticCredentials(env.adminToken), store)

	events := make(chan string, 4)
	channels.OnRequestEvent(func(event string, data json.RawMessage) {
		events <- event
	})

	sub, err := channels.SubscribeRequests(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sub)
	defer sub.Close()

	require.Eventually(t, func() bool {
		return env.hub.Subscribers(realtime.StreamRequests) == 1
	}, 2*time.Second, 10*time.Millisecond)

	key := env.submit(t, requests.KindMissionOrder)
	_, err = env.requests.UpdateStatus(context.Background(), key.Kind, key.ID, requests.StatusApproved, "")
	require.NoError(t, err)

	received := map[string]bool{}
	for len(received) < 2 {
		select {
		case event := <-events:
			received[event] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("missing request events, got %v", received)
		}
	}
	require.True(t, received["request.created"])
	require.True(t, received["request.updated"])
}

func TestChatSubscriptionReceivesReply(t *testing.T) {
	env := newPortalEnv(t)
	ctx := context.Background()

	employee := &models.User{Username: "jsmith", Email: "jsmith@example.com", FullName: "Jordan Smith"}
	require.NoError(t, env.db.Create(employee).Error)

	jwtToken := env.employeeToken(t, employee)
	store := NewStore()
	channels := NewChannels(env.server.URL, StaticCredentials(jwtToken), store)

	sub, err := channels.SubscribeChat(ctx)
	require.NoError(t, err)
	require.NotNil(t, sub)
	defer sub.Close()

	require.Eventually(t, func() bool {
		return env.chatHub.Clients(employee.ID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	sent, err := env.urgent.Send(ctx, employee.ID, "Please call me")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		chatItems := store.Chat()
		return len(chatItems) == 1 && !chatItems[0].IsReplied
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, "Please call me", store.Chat()[0].Text)

	_, err = env.urgent.Reply(ctx, sent.ID, "On it")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		chatItems := store.Chat()
		return len(chatItems) == 1 && chatItems[0].IsReplied
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, "On it", store.Chat()[0].AdminReply)

	require.NoError(t, env.urgent.Delete(ctx, sent.ID))
	require.Eventually(t, func() bool {
		return len(store.Chat()) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func (e *portalEnv) employeeToken(t *testing.T, user *models.User) string {
	t.Helper()
	jwtService, err := auth.NewJWTService(auth.JWTConfig{Secret: "console-secret", Issuer: "hrdesk-test"})
	require.NoError(t, err)
	token, err := jwtService.GenerateAccessToken(auth.AccessTokenInput{UserID: user.ID, IsAdmin: user.IsAdmin})
	require.NoError(t, err)
	return token
}

func TestNormalizeNotificationShapes(t *testing.T) {
	wrapped := []byte(`{"notification":{"id":"n1","type":"urgent","title":"t"}}`)
	item, ok := normalizeNotification(wrapped)
	require.True(t, ok)
	require.Equal(t, "n1", item.ID)

	bare := []byte(`{"id":"n2","type":"request.created"}`)
	item, ok = normalizeNotification(bare)
	require.True(t, ok)
	require.Equal(t, "n2", item.ID)

	require.NotPanics(t, func() {
		_, ok = normalizeNotification([]byte(`{"notification_id":"n3"}`))
		require.False(t, ok)
	})
}
