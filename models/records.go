package models

import "time"

// CommissionRecord captures the platform's cut of a completed booking.
// Only Completed bookings settle commission.
type CommissionRecord struct {
	ID              string    `bson:"id" json:"id"`
	BookingID       string    `bson:"booking_id" json:"bookingId"`
	ProviderID      string    `bson:"provider_id" json:"providerId"`
	Total           float64   `bson:"total" json:"total"`
	Commission      float64   `bson:"commission" json:"commission"`
	Payout          float64   `bson:"payout" json:"payout"`
	PaymentIntentID string    `bson:"payment_intent_id,omitempty" json:"paymentIntentId,omitempty"`
	CreatedAt       time.Time `bson:"created_at" json:"createdAt"`
}

// CoinEntry is one movement in the loyalty-coin ledger. The ledger is
// append-only; balances are the running sum mirrored on the account.
type CoinEntry struct {
	ID        string    `bson:"id" json:"id"`
	AccountID string    `bson:"account_id" json:"accountId"`
	Role      string    `bson:"role" json:"role"` // "user" or "provider"
	Delta     int64     `bson:"delta" json:"delta"`
	Reason    string    `bson:"reason" json:"reason"`
	BookingID string    `bson:"booking_id,omitempty" json:"bookingId,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// ReminderPayload is the asynq task payload for a scheduled booking reminder.
type ReminderPayload struct {
	ReminderID string `json:"reminderId"`
	Target     string `json:"target"` // "user" or "provider"
	ID         string `json:"id"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	FireDate   string `json:"fireDate"`
}
