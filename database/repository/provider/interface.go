package providerRepo

import "indastreet/models"

// ProviderRepository defines provider data access.
type ProviderRepository interface {
	Create(provider *models.Provider) error
	Update(provider *models.Provider) error
	GetByID(id string) (*models.Provider, error)
	GetByEmail(email string) (*models.Provider, error)
	GetActiveByType(providerType models.ProviderType) ([]models.Provider, error)
	AdjustRating(id string, delta float64) error
	AdjustCoins(id string, delta int64) error
	SetFCMToken(id, token string) error
	IncrementCompletedBookings(id string) error
}
