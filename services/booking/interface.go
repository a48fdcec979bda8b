package booking

import (
	"context"
	"sync"
	"time"

	assignmentRepo "indastreet/database/repository/assignment"
	bookingRepo "indastreet/database/repository/booking"
	providerRepo "indastreet/database/repository/provider"
	"indastreet/models"
	"indastreet/services/chat"
	"indastreet/services/coins"
	"indastreet/services/directory"
	"indastreet/services/notification"
	"indastreet/services/payment"

	"go.uber.org/zap"
)

// Service is the booking lifecycle controller. It owns every booking state
// transition and orchestrates the response timer, escalation and the
// notification dispatcher.
type Service interface {
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*models.Booking, error)
	RecordProviderResponse(ctx context.Context, bookingID, providerID string, accepted bool) error
	CancelBooking(ctx context.Context, bookingID, reason string) error
	CompleteBooking(ctx context.Context, bookingID string) error
	ResumeAssignments(ctx context.Context) error

	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	ListCustomerBookings(ctx context.Context, customerID string) ([]models.Booking, error)
	ListProviderBookings(ctx context.Context, providerID string) ([]models.Booking, error)

	Shutdown()
}

// CreateBookingRequest carries everything needed to open a booking. The
// caller identity is explicit; nothing is read from ambient session state.
type CreateBookingRequest struct {
	CustomerID   string
	ProviderID   string
	ProviderType models.ProviderType
	ServiceType  string
	Duration     int
	TotalPrice   float64
	Location     models.GeoPoint
	Scheduled    time.Time
}

// Config tunes the assignment workflow.
type Config struct {
	ResponseWindow      time.Duration
	AlertInterval       time.Duration
	SearchRadiusKm      float64
	RatingPenalty       float64
	CoinPenalty         int64
	CompletionCoinAward int64
	// ExcludeDeclines widens the reassignment exclusion list to providers who
	// declined any earlier booking from the same customer, not just this one.
	ExcludeDeclines bool
}

// ReminderScheduler enqueues an upcoming-booking reminder for a confirmed
// scheduled booking.
type ReminderScheduler interface {
	ScheduleBookingReminder(booking *models.Booking) error
}

// Dependencies are the collaborators injected into the controller.
type Dependencies struct {
	Bookings  bookingRepo.BookingRepository
	Attempts  assignmentRepo.AttemptRepository
	Penalties assignmentRepo.PenaltyRepository
	Providers providerRepo.ProviderRepository
	Directory directory.ProviderDirectory
	Chat      chat.Service
	Coins     coins.Service
	Payment   payment.Service
	Notifier  notification.AlertSink
	Reminders ReminderScheduler // optional
}

// DefaultBookingService implements Service. A single mutex serializes every
// state mutation (handler calls and timer callbacks alike), the Go rendition
// of the event-loop dispatch the workflow was designed for.
type DefaultBookingService struct {
	deps   Dependencies
	cfg    Config
	clock  Clock
	logger *zap.Logger

	dispatcher *Dispatcher

	mu     sync.Mutex
	timers map[string]Timer // response timer per active booking
}

// NewDefaultBookingService wires the lifecycle controller.
func NewDefaultBookingService(deps Dependencies, cfg Config, clock Clock, logger *zap.Logger) *DefaultBookingService {
	return &DefaultBookingService{
		deps:       deps,
		cfg:        cfg,
		clock:      clock,
		logger:     logger,
		dispatcher: NewDispatcher(deps.Notifier, cfg.AlertInterval, clock, logger),
		timers:     make(map[string]Timer),
	}
}

// Shutdown cancels all pending response timers and alert sessions.
func (s *DefaultBookingService) Shutdown() {
	s.mu.Lock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
	s.dispatcher.StopAll()
}
