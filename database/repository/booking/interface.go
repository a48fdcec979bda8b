package bookingRepo

import "indastreet/models"

// BookingRepository defines booking data access. Writes on the state-machine
// path are synchronous relative to the transition that produced them; callers
// must treat errors here as hard failures.
type BookingRepository interface {
	Create(booking *models.Booking) error
	Update(booking *models.Booking) error
	GetByID(id string) (*models.Booking, error)
	GetByCustomer(customerID string) ([]models.Booking, error)
	GetByProvider(providerID string) ([]models.Booking, error)
	GetByStatus(status models.BookingStatus) ([]models.Booking, error)
}
