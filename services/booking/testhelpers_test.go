package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"indastreet/models"

	"go.uber.org/zap"
)

// fakeClock drives timers deterministically.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	when    time.Time
	f       func()
	stopped bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, when: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward, firing due timers in order. Callbacks may
// schedule or stop other timers.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.when.After(target) {
				continue
			}
			if next == nil || t.when.Before(next.when) {
				next = t
			}
		}
		if next == nil {
			break
		}
		c.now = next.when
		next.stopped = true
		f := next.f
		c.mu.Unlock()
		f()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// In-memory repositories.

type memBookings struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
}

func newMemBookings() *memBookings {
	return &memBookings{bookings: make(map[string]models.Booking)}
}

func (m *memBookings) Create(b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = *b
	return nil
}

func (m *memBookings) Update(b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[b.ID]; !ok {
		return fmt.Errorf("booking with id %s not found", b.ID)
	}
	m.bookings[b.ID] = *b
	return nil
}

func (m *memBookings) GetByID(id string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking with id %s not found", id)
	}
	return &b, nil
}

func (m *memBookings) GetByCustomer(customerID string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.CustomerID == customerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBookings) GetByProvider(providerID string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.ProviderID == providerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBookings) GetByStatus(status models.BookingStatus) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.Status == status {
			out = append(out, b)
		}
	}
	return out, nil
}

type memAttempts struct {
	mu       sync.Mutex
	attempts []models.AssignmentAttempt
}

func newMemAttempts() *memAttempts { return &memAttempts{} }

func (m *memAttempts) Create(a *models.AssignmentAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, *a)
	return nil
}

func (m *memAttempts) Close(bookingID, providerID string, outcome models.AttemptOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.attempts {
		a := &m.attempts[i]
		if a.BookingID == bookingID && a.ProviderID == providerID && a.Outcome == models.AttemptPending {
			now := time.Now()
			a.Outcome = outcome
			a.ClosedAt = &now
			return nil
		}
	}
	return fmt.Errorf("no pending attempt for booking %s provider %s", bookingID, providerID)
}

func (m *memAttempts) Get(bookingID, providerID string) (*models.AssignmentAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.attempts {
		if m.attempts[i].BookingID == bookingID && m.attempts[i].ProviderID == providerID {
			a := m.attempts[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (m *memAttempts) GetPending(bookingID string) (*models.AssignmentAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.attempts {
		if m.attempts[i].BookingID == bookingID && m.attempts[i].Outcome == models.AttemptPending {
			a := m.attempts[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (m *memAttempts) ProviderIDsForBooking(bookingID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, a := range m.attempts {
		if a.BookingID == bookingID {
			ids = append(ids, a.ProviderID)
		}
	}
	return ids, nil
}

func (m *memAttempts) ProviderIDsWithOutcome(bookingID string, outcome models.AttemptOutcome) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, a := range m.attempts {
		if a.BookingID == bookingID && a.Outcome == outcome {
			ids = append(ids, a.ProviderID)
		}
	}
	return ids, nil
}

func (m *memAttempts) all() []models.AssignmentAttempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.AssignmentAttempt, len(m.attempts))
	copy(out, m.attempts)
	return out
}

func (m *memAttempts) pendingCount(bookingID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.attempts {
		if a.BookingID == bookingID && a.Outcome == models.AttemptPending {
			n++
		}
	}
	return n
}

type memPenalties struct {
	mu      sync.Mutex
	records []models.PenaltyRecord
}

func newMemPenalties() *memPenalties { return &memPenalties{} }

func (m *memPenalties) Create(r *models.PenaltyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *r)
	return nil
}

func (m *memPenalties) ExistsFor(providerID, bookingID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ProviderID == providerID && r.BookingID == bookingID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memPenalties) GetByProvider(providerID string) ([]models.PenaltyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PenaltyRecord
	for _, r := range m.records {
		if r.ProviderID == providerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memPenalties) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// memProviders implements only what the engine touches.
type memProviders struct {
	mu        sync.Mutex
	providers map[string]models.Provider
	ratings   map[string]float64 // accumulated deltas
	completed map[string]int
}

func newMemProviders() *memProviders {
	return &memProviders{
		providers: make(map[string]models.Provider),
		ratings:   make(map[string]float64),
		completed: make(map[string]int),
	}
}

func (m *memProviders) Create(p *models.Provider) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[p.ID] = *p
	return nil
}

func (m *memProviders) Update(p *models.Provider) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[p.ID] = *p
	return nil
}

func (m *memProviders) GetByID(id string) (*models.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.providers[id]
	if !ok {
		return nil, fmt.Errorf("provider with id %s not found", id)
	}
	return &p, nil
}

func (m *memProviders) GetByEmail(email string) (*models.Provider, error) { return nil, nil }

func (m *memProviders) GetActiveByType(t models.ProviderType) ([]models.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Provider
	for _, p := range m.providers {
		if p.ProviderType == t && p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProviders) AdjustRating(id string, delta float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratings[id] += delta
	return nil
}

func (m *memProviders) AdjustCoins(id string, delta int64) error { return nil }

func (m *memProviders) SetFCMToken(id, token string) error { return nil }

func (m *memProviders) IncrementCompletedBookings(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed[id]++
	return nil
}

// fakeDirectory filters a fixed candidate set by the exclusion list, nearest
// first, like the production directory.
type fakeDirectory struct {
	mu         sync.Mutex
	candidates []models.ProviderRef
	known      map[string]bool
}

func newFakeDirectory(candidates ...models.ProviderRef) *fakeDirectory {
	known := make(map[string]bool)
	for _, c := range candidates {
		known[c.ID] = true
	}
	return &fakeDirectory{candidates: candidates, known: known}
}

func (d *fakeDirectory) FindNearbyCandidates(ctx context.Context, origin models.GeoPoint, providerType models.ProviderType, excludeIDs []string, radiusKm float64) ([]models.ProviderRef, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	excluded := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}
	var out []models.ProviderRef
	for _, c := range d.candidates {
		if _, skip := excluded[c.ID]; skip {
			continue
		}
		if c.ProviderType != providerType {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (d *fakeDirectory) ProviderExists(ctx context.Context, providerID string, providerType models.ProviderType) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.known[providerID], nil
}

// fakeSink records alert deliveries.
type fakeSink struct {
	mu     sync.Mutex
	alerts []string // providerIDs in delivery order
	users  []string
}

func (s *fakeSink) Alert(ctx context.Context, providerID, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, providerID)
	return nil
}

func (s *fakeSink) NotifyUser(ctx context.Context, userID, title, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, userID)
	return nil
}

func (s *fakeSink) NotifyProvider(ctx context.Context, providerID, title, body string) error {
	return nil
}

func (s *fakeSink) alertCount(providerID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range s.alerts {
		if id == providerID {
			n++
		}
	}
	return n
}

// fakeChat records system messages per booking.
type fakeChat struct {
	mu       sync.Mutex
	messages map[string][]string
}

func newFakeChat() *fakeChat { return &fakeChat{messages: make(map[string][]string)} }

func (c *fakeChat) PostSystemMessage(bookingID, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages[bookingID] = append(c.messages[bookingID], body)
	return nil
}

func (c *fakeChat) PostMessage(bookingID, senderID string, role models.ChatRole, body string) (*models.ChatMessage, error) {
	return &models.ChatMessage{BookingID: bookingID, Body: body}, nil
}

func (c *fakeChat) ListMessages(bookingID string) ([]models.ChatMessage, error) {
	return nil, nil
}

// fakeCoins records movements.
type fakeCoins struct {
	mu         sync.Mutex
	awards     map[string]int64
	deductions map[string]int64
}

func newFakeCoins() *fakeCoins {
	return &fakeCoins{awards: make(map[string]int64), deductions: make(map[string]int64)}
}

func (c *fakeCoins) AwardUser(userID string, amount int64, reason, bookingID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.awards[userID] += amount
	return nil
}

func (c *fakeCoins) DeductProvider(providerID string, amount int64, reason, bookingID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deductions[providerID] += amount
	return nil
}

func (c *fakeCoins) LedgerFor(accountID string) ([]models.CoinEntry, error) { return nil, nil }

// fakePayment counts settlements.
type fakePayment struct {
	mu      sync.Mutex
	settled []string
}

func (p *fakePayment) SettleCommission(b *models.Booking) (*models.CommissionRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settled = append(p.settled, b.ID)
	return &models.CommissionRecord{BookingID: b.ID}, nil
}

// testEnv bundles the engine with its fakes.
type testEnv struct {
	svc       *DefaultBookingService
	clock     *fakeClock
	bookings  *memBookings
	attempts  *memAttempts
	penalties *memPenalties
	providers *memProviders
	directory *fakeDirectory
	sink      *fakeSink
	chat      *fakeChat
	coins     *fakeCoins
	payment   *fakePayment
}

func defaultTestConfig() Config {
	return Config{
		ResponseWindow:      10 * time.Minute,
		AlertInterval:       10 * time.Second,
		SearchRadiusKm:      15,
		RatingPenalty:       0.1,
		CoinPenalty:         10,
		CompletionCoinAward: 25,
	}
}

func newTestEnv(cfg Config, candidates ...models.ProviderRef) *testEnv {
	env := &testEnv{
		clock:     newFakeClock(),
		bookings:  newMemBookings(),
		attempts:  newMemAttempts(),
		penalties: newMemPenalties(),
		providers: newMemProviders(),
		directory: newFakeDirectory(candidates...),
		sink:      &fakeSink{},
		chat:      newFakeChat(),
		coins:     newFakeCoins(),
		payment:   &fakePayment{},
	}
	env.svc = NewDefaultBookingService(Dependencies{
		Bookings:  env.bookings,
		Attempts:  env.attempts,
		Penalties: env.penalties,
		Providers: env.providers,
		Directory: env.directory,
		Chat:      env.chat,
		Coins:     env.coins,
		Payment:   env.payment,
		Notifier:  env.sink,
	}, cfg, env.clock, zap.NewNop())
	return env
}

func therapistRef(id string, distanceKm float64) models.ProviderRef {
	return models.ProviderRef{
		ID:           id,
		Name:         "Therapist " + id,
		ProviderType: models.ProviderTypeTherapist,
		Rating:       4.5,
		DistanceKm:   distanceKm,
	}
}

func (e *testEnv) createTherapistBooking(providerID string) *models.Booking {
	b, err := e.svc.CreateBooking(context.Background(), CreateBookingRequest{
		CustomerID:   "customer-1",
		ProviderID:   providerID,
		ProviderType: models.ProviderTypeTherapist,
		ServiceType:  "massage-60",
		Duration:     60,
		TotalPrice:   150000,
		Location:     models.GeoPoint{Lat: -8.65, Lng: 115.21},
		Scheduled:    e.clock.Now().Add(2 * time.Hour),
	})
	if err != nil {
		panic(err)
	}
	return b
}
