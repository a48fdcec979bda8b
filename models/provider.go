package models

import "time"

// Provider is a therapist or massage place profile.
type Provider struct {
	ID                string       `bson:"id" json:"id"`
	Name              string       `bson:"name" json:"name"`
	Email             string       `bson:"email" json:"email"`
	PasswordHash      string       `bson:"password_hash" json:"-"`
	Phone             string       `bson:"phone" json:"phone"`
	ProviderType      ProviderType `bson:"provider_type" json:"providerType"`
	ServiceTypes      []string     `bson:"service_types" json:"serviceTypes"`
	Location          GeoPoint     `bson:"location" json:"location"`
	Rating            float64      `bson:"rating" json:"rating"`
	Coins             int64        `bson:"coins" json:"coins"`
	Active            bool         `bson:"active" json:"active"`
	FCMToken          string       `bson:"fcm_token,omitempty" json:"-"`
	CompletedBookings int          `bson:"completed_bookings" json:"completedBookings"`
	CreatedAt         time.Time    `bson:"created_at" json:"createdAt"`
}

// ProviderRegistrationData carries the fields required to register a provider.
type ProviderRegistrationData struct {
	Name         string       `json:"name" binding:"required"`
	Email        string       `json:"email" binding:"required,email"`
	Password     string       `json:"password" binding:"required,min=8"`
	Phone        string       `json:"phone"`
	ProviderType ProviderType `json:"providerType" binding:"required"`
	ServiceTypes []string     `json:"serviceTypes"`
	Location     GeoPoint     `json:"location"`
}
