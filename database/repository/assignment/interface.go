package assignmentRepo

import "indastreet/models"

// AttemptRepository stores assignment attempts. Attempts are created pending
// and closed exactly once; the full set per booking doubles as the
// reassignment exclusion list.
type AttemptRepository interface {
	Create(attempt *models.AssignmentAttempt) error
	Close(bookingID, providerID string, outcome models.AttemptOutcome) error
	Get(bookingID, providerID string) (*models.AssignmentAttempt, error)
	GetPending(bookingID string) (*models.AssignmentAttempt, error)
	ProviderIDsForBooking(bookingID string) ([]string, error)
	ProviderIDsWithOutcome(bookingID string, outcome models.AttemptOutcome) ([]string, error)
}

// PenaltyRepository is an append-only audit trail of non-response penalties.
type PenaltyRepository interface {
	Create(record *models.PenaltyRecord) error
	ExistsFor(providerID, bookingID string) (bool, error)
	GetByProvider(providerID string) ([]models.PenaltyRecord, error)
}
