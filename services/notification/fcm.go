package notification

import (
	"context"
	"fmt"

	providerRepo "indastreet/database/repository/provider"
	userRepo "indastreet/database/repository/user"
	"indastreet/utils"

	"firebase.google.com/go/v4/messaging"
)

// FCMAlertSink sends high-priority pushes through Firebase Cloud Messaging.
type FCMAlertSink struct {
	Providers providerRepo.ProviderRepository
	Users     userRepo.UserRepository
}

// Alert pushes a "new booking waiting" notification to the provider's device.
// The sound/channel configuration matches the audible alert loop the provider
// apps play while a booking request is unanswered.
func (s *FCMAlertSink) Alert(ctx context.Context, providerID, bookingID string) error {
	p, err := s.Providers.GetByID(providerID)
	if err != nil {
		return fmt.Errorf("alert: could not find provider %s: %w", providerID, err)
	}
	if p.FCMToken == "" {
		return fmt.Errorf("alert: provider %s has no FCM token", providerID)
	}

	msg := &messaging.Message{
		Token: p.FCMToken,
		Notification: &messaging.Notification{
			Title: "New booking request",
			Body:  "A customer is waiting for your response. Open the app to accept.",
		},
		Data: map[string]string{
			"type":      "booking_request",
			"bookingId": bookingID,
			"role":      "provider",
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("alert: failed to send FCM message: %w", err)
	}
	return nil
}

// NotifyProvider pushes a one-off notification to a provider's device.
func (s *FCMAlertSink) NotifyProvider(ctx context.Context, providerID, title, body string) error {
	p, err := s.Providers.GetByID(providerID)
	if err != nil {
		return fmt.Errorf("notify provider: could not find provider %s: %w", providerID, err)
	}
	if p.FCMToken == "" {
		return fmt.Errorf("notify provider: provider %s has no FCM token", providerID)
	}

	msg := &messaging.Message{
		Token: p.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{"role": "provider"},
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify provider: failed to send FCM message: %w", err)
	}
	return nil
}

// NotifyUser pushes a one-off notification to a customer's device.
func (s *FCMAlertSink) NotifyUser(ctx context.Context, userID, title, body string) error {
	u, err := s.Users.GetByID(userID)
	if err != nil {
		return fmt.Errorf("notify user: could not find user %s: %w", userID, err)
	}
	if u.FCMToken == "" {
		return fmt.Errorf("notify user: user %s has no FCM token", userID)
	}

	msg := &messaging.Message{
		Token: u.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{"role": "user"},
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify user: failed to send FCM message: %w", err)
	}
	return nil
}
