package notification

import "context"

// AlertSink delivers fire-and-forget alerts. The dispatcher calls Alert
// repeatedly for the provider currently assigned to a booking; implementations
// must not block the caller on delivery failures.
type AlertSink interface {
	Alert(ctx context.Context, providerID, bookingID string) error
	NotifyUser(ctx context.Context, userID, title, body string) error
	NotifyProvider(ctx context.Context, providerID, title, body string) error
}
