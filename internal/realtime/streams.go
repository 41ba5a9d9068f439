package realtime

// Named realtime streams used across the portal.
const (
	// StreamNotifications carries admin-facing domain notifications.
	StreamNotifications = "notifications"
	// StreamRequests carries generic request create/update events.
	StreamRequests = "requests"
)
