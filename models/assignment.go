package models

import "time"

// AttemptOutcome is the terminal (or pending) result of offering a booking to
// one provider.
type AttemptOutcome string

const (
	AttemptPending    AttemptOutcome = "pending"
	AttemptAccepted   AttemptOutcome = "accepted"
	AttemptTimedOut   AttemptOutcome = "timed_out"
	AttemptDeclined   AttemptOutcome = "declined"
	AttemptSuperseded AttemptOutcome = "superseded"
)

// Terminal reports whether the outcome is final.
func (o AttemptOutcome) Terminal() bool {
	return o != AttemptPending
}

// AssignmentAttempt records one provider being offered a booking. While a
// booking is active exactly one of its attempts is pending; the full set is
// the exclusion list for reassignment, so a provider is never offered the
// same booking twice.
type AssignmentAttempt struct {
	ID           string         `bson:"id" json:"id"`
	BookingID    string         `bson:"booking_id" json:"bookingId"`
	ProviderID   string         `bson:"provider_id" json:"providerId"`
	ProviderType ProviderType   `bson:"provider_type" json:"providerType"`
	AssignedAt   time.Time      `bson:"assigned_at" json:"assignedAt"`
	Outcome      AttemptOutcome `bson:"outcome" json:"outcome"`
	ClosedAt     *time.Time     `bson:"closed_at,omitempty" json:"closedAt,omitempty"`
}

// PenaltyKind classifies a non-response penalty.
type PenaltyKind string

const (
	PenaltyRatingDeduction PenaltyKind = "rating-deduction"
	PenaltyCoinDeduction   PenaltyKind = "coin-deduction"
	PenaltyWarning         PenaltyKind = "warning"
)

// PenaltyRecord is an append-only audit entry, at most one per
// (provider, booking) non-response event.
type PenaltyRecord struct {
	ID         string      `bson:"id" json:"id"`
	ProviderID string      `bson:"provider_id" json:"providerId"`
	BookingID  string      `bson:"booking_id" json:"bookingId"`
	Kind       PenaltyKind `bson:"kind" json:"kind"`
	Magnitude  float64     `bson:"magnitude" json:"magnitude"`
	AppliedAt  time.Time   `bson:"applied_at" json:"appliedAt"`
}
