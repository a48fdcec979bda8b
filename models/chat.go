package models

import "time"

// ChatRole identifies who authored a chat message.
type ChatRole string

const (
	ChatRoleCustomer ChatRole = "customer"
	ChatRoleProvider ChatRole = "provider"
	ChatRoleSystem   ChatRole = "system"
)

// ChatMessage is one entry in a booking's message thread. System messages
// carry workflow notices (assignment, reassignment, no-provider-found).
type ChatMessage struct {
	ID         string    `bson:"id" json:"id"`
	BookingID  string    `bson:"booking_id" json:"bookingId"`
	SenderID   string    `bson:"sender_id,omitempty" json:"senderId,omitempty"`
	SenderRole ChatRole  `bson:"sender_role" json:"senderRole"`
	Body       string    `bson:"body" json:"body"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}
