package booking

import (
	"context"
	"sync"
	"time"

	"indastreet/services/notification"

	"go.uber.org/zap"
)

// Dispatcher keeps alerting the provider currently assigned to a booking
// until the attempt resolves. At most one repeating session exists per
// booking id; starting a new one supersedes the previous session so a quick
// reassignment never leaks a duplicate alert loop.
type Dispatcher struct {
	sink     notification.AlertSink
	interval time.Duration
	clock    Clock
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[string]*alertSession
}

type alertSession struct {
	bookingID  string
	providerID string
	timer      Timer
	stopped    bool
}

// NewDispatcher creates a dispatcher delivering through the given sink.
func NewDispatcher(sink notification.AlertSink, interval time.Duration, clock Clock, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		sink:     sink,
		interval: interval,
		clock:    clock,
		logger:   logger,
		sessions: make(map[string]*alertSession),
	}
}

// Start begins a repeating alert session for the booking: one alert right
// away, then one per interval until Stop is called. Any previous session for
// the same booking is stopped first. Delivery always happens on the timer
// goroutine; Start never blocks on the sink, so callers may hold locks.
func (d *Dispatcher) Start(bookingID, providerID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.sessions[bookingID]; ok {
		prev.stopped = true
		if prev.timer != nil {
			prev.timer.Stop()
		}
	}
	s := &alertSession{bookingID: bookingID, providerID: providerID}
	s.timer = d.clock.AfterFunc(0, func() { d.fire(s) })
	d.sessions[bookingID] = s
}

// Stop cancels the repeating alert for the booking. Safe to call when no
// session is running.
func (d *Dispatcher) Stop(bookingID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.sessions[bookingID]
	if !ok {
		return
	}
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
	delete(d.sessions, bookingID)
}

// Active reports whether a session is currently running for the booking.
func (d *Dispatcher) Active(bookingID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.sessions[bookingID]
	return ok
}

// StopAll cancels every running session. Used on shutdown.
func (d *Dispatcher) StopAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, s := range d.sessions {
		s.stopped = true
		if s.timer != nil {
			s.timer.Stop()
		}
		delete(d.sessions, id)
	}
}

func (d *Dispatcher) fire(s *alertSession) {
	d.mu.Lock()
	if s.stopped {
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	// Delivery is fire-and-forget; failures never tear down the session.
	if err := d.sink.Alert(context.Background(), s.providerID, s.bookingID); err != nil {
		d.logger.Warn("alert delivery failed",
			zap.String("bookingID", s.bookingID),
			zap.String("providerID", s.providerID),
			zap.Error(err))
	}

	d.mu.Lock()
	if !s.stopped {
		s.timer = d.clock.AfterFunc(d.interval, func() { d.fire(s) })
	}
	d.mu.Unlock()
}
