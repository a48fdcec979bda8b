package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusPending     BookingStatus = "Pending"
	BookingStatusReassigning BookingStatus = "Reassigning"
	BookingStatusConfirmed   BookingStatus = "Confirmed"
	BookingStatusCompleted   BookingStatus = "Completed"
	BookingStatusCancelled   BookingStatus = "Cancelled"
	BookingStatusUnfulfilled BookingStatus = "Unfulfilled"
)

// Terminal reports whether no further transition is allowed from s.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingStatusCompleted, BookingStatusCancelled, BookingStatusUnfulfilled:
		return true
	}
	return false
}

// Booking is a customer's request for a massage service. ProviderID always
// points at the currently assigned candidate; previously tried providers are
// tracked as AssignmentAttempts, never overwritten here.
type Booking struct {
	ID           string        `bson:"id" json:"id"`
	CustomerID   string        `bson:"customer_id" json:"customerId"`
	ProviderID   string        `bson:"provider_id" json:"providerId"`
	ProviderType ProviderType  `bson:"provider_type" json:"providerType"`
	ServiceType  string        `bson:"service_type" json:"serviceType"`
	Duration     int           `bson:"duration" json:"duration"` // minutes
	TotalPrice   float64       `bson:"total_price" json:"totalPrice"`
	Location     GeoPoint      `bson:"location" json:"location"`
	Scheduled    time.Time     `bson:"scheduled" json:"scheduled"`
	Status       BookingStatus `bson:"status" json:"status"`
	CancelReason string        `bson:"cancel_reason,omitempty" json:"cancelReason,omitempty"`
	CreatedAt    time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updatedAt"`
	ConfirmedAt  *time.Time    `bson:"confirmed_at,omitempty" json:"confirmedAt,omitempty"`
	CompletedAt  *time.Time    `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
}
