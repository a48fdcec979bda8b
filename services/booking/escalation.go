package booking

import (
	"context"
	"fmt"

	"indastreet/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// startCycleLocked begins the alert loop and the single-shot response timer
// for (booking, provider). Caller holds s.mu.
func (s *DefaultBookingService) startCycleLocked(bookingID, providerID string) {
	s.dispatcher.Start(bookingID, providerID)
	if t, ok := s.timers[bookingID]; ok {
		t.Stop()
	}
	s.timers[bookingID] = s.clock.AfterFunc(s.cfg.ResponseWindow, func() {
		s.onTimeout(bookingID, providerID)
	})
}

// stopCycleLocked cancels both the response timer and the alert session.
// Leaking either means a phantom penalty or alerts after the booking
// concluded, so every terminal path runs through here. Caller holds s.mu.
func (s *DefaultBookingService) stopCycleLocked(bookingID string) {
	s.dispatcher.Stop(bookingID)
	if t, ok := s.timers[bookingID]; ok {
		t.Stop()
		delete(s.timers, bookingID)
	}
}

// onTimeout fires when a provider let the response window lapse. A stale
// fire (attempt already accepted, declined or superseded) does nothing.
func (s *DefaultBookingService) onTimeout(bookingID, providerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt, err := s.deps.Attempts.Get(bookingID, providerID)
	if err != nil {
		s.logger.Error("timeout: failed to look up attempt",
			zap.String("bookingID", bookingID), zap.Error(err))
		return
	}
	if attempt == nil || attempt.Outcome.Terminal() {
		return
	}

	if err := s.deps.Attempts.Close(bookingID, providerID, models.AttemptTimedOut); err != nil {
		s.logger.Error("timeout: failed to close attempt",
			zap.String("bookingID", bookingID), zap.Error(err))
		return
	}

	s.logger.Info("provider response timed out",
		zap.String("bookingID", bookingID),
		zap.String("providerID", providerID))

	booking, err := s.deps.Bookings.GetByID(bookingID)
	if err != nil {
		s.logger.Error("timeout: failed to fetch booking",
			zap.String("bookingID", bookingID), zap.Error(err))
		return
	}

	if err := s.escalateLocked(context.Background(), booking, providerID, true); err != nil {
		s.logger.Error("timeout: escalation failed",
			zap.String("bookingID", bookingID), zap.Error(err))
	}
}

// escalateLocked penalizes the non-responder (when penalize is set), then
// reassigns the booking to the next nearest untried candidate or closes it
// as Unfulfilled. Penalty application strictly precedes the candidate lookup
// so a crash mid-cascade never loses the penalty. Caller holds s.mu.
func (s *DefaultBookingService) escalateLocked(ctx context.Context, booking *models.Booking, failedProviderID string, penalize bool) error {
	s.stopCycleLocked(booking.ID)

	if penalize {
		if err := s.applyPenaltyLocked(failedProviderID, booking.ID); err != nil {
			return err
		}
	}

	booking.Status = models.BookingStatusReassigning
	booking.UpdatedAt = s.clock.Now()
	if err := s.deps.Bookings.Update(booking); err != nil {
		return fmt.Errorf("failed to mark booking reassigning: %w", err)
	}

	exclude, err := s.exclusionListLocked(booking)
	if err != nil {
		return err
	}

	candidates, err := s.deps.Directory.FindNearbyCandidates(ctx, booking.Location, booking.ProviderType, exclude, s.cfg.SearchRadiusKm)
	if err != nil {
		return fmt.Errorf("candidate lookup failed: %w", err)
	}

	if len(candidates) == 0 {
		booking.Status = models.BookingStatusUnfulfilled
		booking.UpdatedAt = s.clock.Now()
		if err := s.deps.Bookings.Update(booking); err != nil {
			return fmt.Errorf("failed to mark booking unfulfilled: %w", err)
		}
		s.postSystemMessage(booking.ID, "We are sorry, no provider is available for your request right now. Please try again later.")
		s.notifyCustomer(ctx, booking.CustomerID, "No provider found", "We could not find an available provider for your booking.")
		s.logger.Info("booking unfulfilled, candidates exhausted",
			zap.String("bookingID", booking.ID))
		return nil
	}

	next := candidates[0]
	now := s.clock.Now()
	attempt := &models.AssignmentAttempt{
		ID:           uuid.New().String(),
		BookingID:    booking.ID,
		ProviderID:   next.ID,
		ProviderType: booking.ProviderType,
		AssignedAt:   now,
		Outcome:      models.AttemptPending,
	}
	if err := s.deps.Attempts.Create(attempt); err != nil {
		return fmt.Errorf("failed to create reassignment attempt: %w", err)
	}

	booking.ProviderID = next.ID
	booking.Status = models.BookingStatusPending
	booking.UpdatedAt = now
	if err := s.deps.Bookings.Update(booking); err != nil {
		return fmt.Errorf("failed to reassign booking: %w", err)
	}

	s.startCycleLocked(booking.ID, next.ID)
	s.postSystemMessage(booking.ID, fmt.Sprintf("We are contacting the next available provider (%s, %.1f km away).", next.Name, next.DistanceKm))

	s.logger.Info("booking reassigned",
		zap.String("bookingID", booking.ID),
		zap.String("providerID", next.ID),
		zap.Float64("distanceKm", next.DistanceKm))
	return nil
}

// applyPenaltyLocked records the non-response penalty exactly once per
// (provider, booking) and mirrors it onto the provider's rating and coin
// balance. The audit record is the critical write; the mirrors are
// best-effort.
func (s *DefaultBookingService) applyPenaltyLocked(providerID, bookingID string) error {
	exists, err := s.deps.Penalties.ExistsFor(providerID, bookingID)
	if err != nil {
		return fmt.Errorf("failed to check existing penalty: %w", err)
	}
	if exists {
		return nil
	}

	record := &models.PenaltyRecord{
		ID:         uuid.New().String(),
		ProviderID: providerID,
		BookingID:  bookingID,
		Kind:       models.PenaltyRatingDeduction,
		Magnitude:  s.cfg.RatingPenalty,
		AppliedAt:  s.clock.Now(),
	}
	if err := s.deps.Penalties.Create(record); err != nil {
		return fmt.Errorf("failed to record penalty: %w", err)
	}

	if err := s.deps.Providers.AdjustRating(providerID, -s.cfg.RatingPenalty); err != nil {
		s.logger.Warn("failed to apply rating deduction",
			zap.String("providerID", providerID), zap.Error(err))
	}
	if s.deps.Coins != nil && s.cfg.CoinPenalty > 0 {
		if err := s.deps.Coins.DeductProvider(providerID, s.cfg.CoinPenalty, "booking response timeout", bookingID); err != nil {
			s.logger.Warn("failed to apply coin deduction",
				zap.String("providerID", providerID), zap.Error(err))
		}
	}
	return nil
}

// exclusionListLocked returns every provider already tried for this booking,
// optionally widened with providers who declined earlier bookings from the
// same customer.
func (s *DefaultBookingService) exclusionListLocked(booking *models.Booking) ([]string, error) {
	exclude, err := s.deps.Attempts.ProviderIDsForBooking(booking.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempted providers: %w", err)
	}
	if !s.cfg.ExcludeDeclines {
		return exclude, nil
	}

	seen := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		seen[id] = struct{}{}
	}
	others, err := s.deps.Bookings.GetByCustomer(booking.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list customer bookings: %w", err)
	}
	for _, other := range others {
		if other.ID == booking.ID {
			continue
		}
		declined, err := s.deps.Attempts.ProviderIDsWithOutcome(other.ID, models.AttemptDeclined)
		if err != nil {
			return nil, fmt.Errorf("failed to list declined providers: %w", err)
		}
		for _, id := range declined {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				exclude = append(exclude, id)
			}
		}
	}
	return exclude, nil
}
