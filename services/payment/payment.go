package payment

import (
	"fmt"
	"math"
	"time"

	recordsRepo "indastreet/database/repository/records"
	"indastreet/models"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// Service settles the platform commission once a booking completes.
type Service interface {
	SettleCommission(booking *models.Booking) (*models.CommissionRecord, error)
}

// SplitPrice divides a booking total into commission and payout at the given
// rate, rounding the commission to whole currency units (prices are IDR).
func SplitPrice(total, rate float64) (commission, payout float64) {
	commission = math.Round(total * rate)
	payout = total - commission
	return commission, payout
}

// StripeCommissionService records the split and raises a PaymentIntent for
// the commission amount against the provider's stored payment method.
type StripeCommissionService struct {
	Repo   recordsRepo.CommissionRepository
	Rate   float64
	Logger *zap.Logger
}

func (s *StripeCommissionService) SettleCommission(booking *models.Booking) (*models.CommissionRecord, error) {
	if booking.Status != models.BookingStatusCompleted {
		return nil, fmt.Errorf("commission only settles on completed bookings, got %s", booking.Status)
	}

	commission, payout := SplitPrice(booking.TotalPrice, s.Rate)
	record := &models.CommissionRecord{
		ID:         uuid.New().String(),
		BookingID:  booking.ID,
		ProviderID: booking.ProviderID,
		Total:      booking.TotalPrice,
		Commission: commission,
		Payout:     payout,
		CreatedAt:  time.Now(),
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(commission)),
		Currency: stripe.String(string(stripe.CurrencyIDR)),
		Metadata: map[string]string{
			"bookingId":  booking.ID,
			"providerId": booking.ProviderID,
		},
	}
	intent, err := paymentintent.New(params)
	if err != nil {
		// Collection is retried out of band; the settlement record must not
		// be lost because the charge attempt failed.
		s.Logger.Warn("stripe payment intent failed, recording settlement without charge",
			zap.String("bookingID", booking.ID), zap.Error(err))
	} else {
		record.PaymentIntentID = intent.ID
	}

	if err := s.Repo.Create(record); err != nil {
		return nil, fmt.Errorf("failed to persist commission record: %w", err)
	}
	return record, nil
}
