package booking

import (
	"context"
	"fmt"

	"indastreet/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBooking validates the chosen provider, persists the booking in
// Pending with its first assignment attempt, and starts the alert loop and
// response timer for that pair.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	if req.CustomerID == "" || req.ProviderID == "" {
		return nil, fmt.Errorf("customerId and providerId are required")
	}
	if !req.ProviderType.Valid() {
		return nil, fmt.Errorf("unknown provider type %q", req.ProviderType)
	}

	ok, err := s.deps.Directory.ProviderExists(ctx, req.ProviderID, req.ProviderType)
	if err != nil || !ok {
		return nil, &ProviderUnavailableError{ProviderID: req.ProviderID}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	booking := &models.Booking{
		ID:           uuid.New().String(),
		CustomerID:   req.CustomerID,
		ProviderID:   req.ProviderID,
		ProviderType: req.ProviderType,
		ServiceType:  req.ServiceType,
		Duration:     req.Duration,
		TotalPrice:   req.TotalPrice,
		Location:     req.Location,
		Scheduled:    req.Scheduled,
		Status:       models.BookingStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.deps.Bookings.Create(booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	attempt := &models.AssignmentAttempt{
		ID:           uuid.New().String(),
		BookingID:    booking.ID,
		ProviderID:   req.ProviderID,
		ProviderType: req.ProviderType,
		AssignedAt:   now,
		Outcome:      models.AttemptPending,
	}
	if err := s.deps.Attempts.Create(attempt); err != nil {
		return nil, fmt.Errorf("failed to create assignment attempt: %w", err)
	}

	s.startCycleLocked(booking.ID, req.ProviderID)
	s.postSystemMessage(booking.ID, "Your booking request has been sent. We are waiting for the provider to respond.")

	s.logger.Info("booking created",
		zap.String("bookingID", booking.ID),
		zap.String("customerID", req.CustomerID),
		zap.String("providerID", req.ProviderID))
	return booking, nil
}

// RecordProviderResponse applies an accept or decline from the provider. The
// call is a no-op when the attempt for (booking, provider) is already
// terminal, which makes accept-after-timeout and double-accept races safe.
func (s *DefaultBookingService) RecordProviderResponse(ctx context.Context, bookingID, providerID string, accepted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt, err := s.deps.Attempts.Get(bookingID, providerID)
	if err != nil {
		return fmt.Errorf("failed to look up assignment attempt: %w", err)
	}
	if attempt == nil || attempt.Outcome.Terminal() {
		s.logger.Debug("provider response ignored, attempt not pending",
			zap.String("bookingID", bookingID),
			zap.String("providerID", providerID))
		return nil
	}

	booking, err := s.deps.Bookings.GetByID(bookingID)
	if err != nil {
		return fmt.Errorf("failed to fetch booking: %w", err)
	}

	if !accepted {
		// An explicit decline escalates like a timeout, but is not a
		// non-response: no penalty.
		if err := s.deps.Attempts.Close(bookingID, providerID, models.AttemptDeclined); err != nil {
			return fmt.Errorf("failed to close declined attempt: %w", err)
		}
		s.logger.Info("provider declined booking",
			zap.String("bookingID", bookingID),
			zap.String("providerID", providerID))
		return s.escalateLocked(ctx, booking, providerID, false)
	}

	s.stopCycleLocked(bookingID)
	if err := s.deps.Attempts.Close(bookingID, providerID, models.AttemptAccepted); err != nil {
		return fmt.Errorf("failed to close accepted attempt: %w", err)
	}

	now := s.clock.Now()
	booking.Status = models.BookingStatusConfirmed
	booking.ConfirmedAt = &now
	booking.UpdatedAt = now
	if err := s.deps.Bookings.Update(booking); err != nil {
		return fmt.Errorf("failed to confirm booking: %w", err)
	}

	s.postSystemMessage(bookingID, "Your provider accepted the booking. See you soon!")
	s.notifyCustomer(ctx, booking.CustomerID, "Booking confirmed", "Your provider accepted your booking request.")
	if s.deps.Reminders != nil && booking.Scheduled.After(now) {
		if err := s.deps.Reminders.ScheduleBookingReminder(booking); err != nil {
			s.logger.Warn("failed to schedule booking reminder",
				zap.String("bookingID", bookingID), zap.Error(err))
		}
	}

	s.logger.Info("booking confirmed",
		zap.String("bookingID", bookingID),
		zap.String("providerID", providerID))
	return nil
}

// CancelBooking closes the booking from Pending, Reassigning or Confirmed.
// Any active timer and alert session stop immediately.
func (s *DefaultBookingService) CancelBooking(ctx context.Context, bookingID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, err := s.deps.Bookings.GetByID(bookingID)
	if err != nil {
		return fmt.Errorf("failed to fetch booking: %w", err)
	}

	switch booking.Status {
	case models.BookingStatusPending, models.BookingStatusReassigning, models.BookingStatusConfirmed:
	default:
		return &InvalidTransitionError{BookingID: bookingID, Status: booking.Status, Op: "cancel"}
	}

	s.stopCycleLocked(bookingID)

	pending, err := s.deps.Attempts.GetPending(bookingID)
	if err != nil {
		return fmt.Errorf("failed to look up pending attempt: %w", err)
	}
	if pending != nil {
		if err := s.deps.Attempts.Close(bookingID, pending.ProviderID, models.AttemptSuperseded); err != nil {
			return fmt.Errorf("failed to close pending attempt: %w", err)
		}
	}

	booking.Status = models.BookingStatusCancelled
	booking.CancelReason = reason
	booking.UpdatedAt = s.clock.Now()
	if err := s.deps.Bookings.Update(booking); err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	s.postSystemMessage(bookingID, "This booking has been cancelled.")
	s.logger.Info("booking cancelled",
		zap.String("bookingID", bookingID),
		zap.String("reason", reason))
	return nil
}

// CompleteBooking marks a confirmed booking as delivered and triggers the
// settlement side effects (commission, loyalty coins, provider stats).
func (s *DefaultBookingService) CompleteBooking(ctx context.Context, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, err := s.deps.Bookings.GetByID(bookingID)
	if err != nil {
		return fmt.Errorf("failed to fetch booking: %w", err)
	}
	if booking.Status != models.BookingStatusConfirmed {
		return &InvalidTransitionError{BookingID: bookingID, Status: booking.Status, Op: "complete"}
	}

	now := s.clock.Now()
	booking.Status = models.BookingStatusCompleted
	booking.CompletedAt = &now
	booking.UpdatedAt = now
	if err := s.deps.Bookings.Update(booking); err != nil {
		return fmt.Errorf("failed to complete booking: %w", err)
	}

	// Settlement is best-effort relative to the committed transition.
	if err := s.deps.Providers.IncrementCompletedBookings(booking.ProviderID); err != nil {
		s.logger.Warn("failed to bump provider completed count",
			zap.String("providerID", booking.ProviderID), zap.Error(err))
	}
	if s.deps.Payment != nil {
		if _, err := s.deps.Payment.SettleCommission(booking); err != nil {
			s.logger.Error("commission settlement failed",
				zap.String("bookingID", bookingID), zap.Error(err))
		}
	}
	if s.deps.Coins != nil && s.cfg.CompletionCoinAward > 0 {
		if err := s.deps.Coins.AwardUser(booking.CustomerID, s.cfg.CompletionCoinAward, "booking completed", bookingID); err != nil {
			s.logger.Warn("failed to award loyalty coins",
				zap.String("customerID", booking.CustomerID), zap.Error(err))
		}
	}

	s.postSystemMessage(bookingID, "Thank you! This booking is complete.")
	s.logger.Info("booking completed", zap.String("bookingID", bookingID))
	return nil
}

// ResumeAssignments restarts the alert loop and response timer for every
// booking that was mid-assignment when the process last stopped. Timers live
// in memory only, so the response window restarts in full. A booking caught
// between closing one attempt and opening the next is escalated to its next
// candidate; the interruption was not a non-response, so nobody is penalized.
func (s *DefaultBookingService) ResumeAssignments(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var resumed, escalated int
	for _, status := range []models.BookingStatus{models.BookingStatusPending, models.BookingStatusReassigning} {
		bookings, err := s.deps.Bookings.GetByStatus(status)
		if err != nil {
			return fmt.Errorf("failed to list %s bookings: %w", status, err)
		}
		for i := range bookings {
			b := bookings[i]
			pending, err := s.deps.Attempts.GetPending(b.ID)
			if err != nil {
				return fmt.Errorf("failed to look up pending attempt: %w", err)
			}
			if pending != nil {
				s.startCycleLocked(b.ID, pending.ProviderID)
				resumed++
				continue
			}
			if err := s.escalateLocked(ctx, &b, "", false); err != nil {
				return err
			}
			escalated++
		}
	}

	if resumed > 0 || escalated > 0 {
		s.logger.Info("assignment cycles resumed",
			zap.Int("resumed", resumed),
			zap.Int("escalated", escalated))
	}
	return nil
}

func (s *DefaultBookingService) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.deps.Bookings.GetByID(bookingID)
}

func (s *DefaultBookingService) ListCustomerBookings(ctx context.Context, customerID string) ([]models.Booking, error) {
	return s.deps.Bookings.GetByCustomer(customerID)
}

func (s *DefaultBookingService) ListProviderBookings(ctx context.Context, providerID string) ([]models.Booking, error) {
	return s.deps.Bookings.GetByProvider(providerID)
}

// postSystemMessage is best-effort: a chat failure never aborts a state
// transition that already committed.
func (s *DefaultBookingService) postSystemMessage(bookingID, body string) {
	if s.deps.Chat == nil {
		return
	}
	if err := s.deps.Chat.PostSystemMessage(bookingID, body); err != nil {
		s.logger.Warn("failed to post system message",
			zap.String("bookingID", bookingID), zap.Error(err))
	}
}

func (s *DefaultBookingService) notifyCustomer(ctx context.Context, customerID, title, body string) {
	if s.deps.Notifier == nil {
		return
	}
	if err := s.deps.Notifier.NotifyUser(ctx, customerID, title, body); err != nil {
		s.logger.Warn("failed to notify customer",
			zap.String("customerID", customerID), zap.Error(err))
	}
}
