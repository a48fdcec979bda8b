package booking

import (
	"fmt"

	"indastreet/models"
)

// ProviderUnavailableError is returned at booking creation when the chosen
// provider cannot be resolved. The booking is not created.
type ProviderUnavailableError struct {
	ProviderID string
}

func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("providerUnavailable: provider %s cannot be resolved", e.ProviderID)
}

// InvalidTransitionError is returned when an operation is attempted against a
// booking in an incompatible status. No state is changed.
type InvalidTransitionError struct {
	BookingID string
	Status    models.BookingStatus
	Op        string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalidTransition: cannot %s booking %s in status %s", e.Op, e.BookingID, e.Status)
}
