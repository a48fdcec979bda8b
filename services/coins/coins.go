package coins

import (
	"fmt"
	"time"

	providerRepo "indastreet/database/repository/provider"
	recordsRepo "indastreet/database/repository/records"
	userRepo "indastreet/database/repository/user"
	"indastreet/models"

	"github.com/google/uuid"
)

// Service moves loyalty coins. Every movement lands in the append-only
// ledger and is mirrored onto the account's balance.
type Service interface {
	AwardUser(userID string, amount int64, reason, bookingID string) error
	DeductProvider(providerID string, amount int64, reason, bookingID string) error
	LedgerFor(accountID string) ([]models.CoinEntry, error)
}

// DefaultCoinService is the production implementation.
type DefaultCoinService struct {
	Ledger    recordsRepo.CoinLedgerRepository
	Users     userRepo.UserRepository
	Providers providerRepo.ProviderRepository
}

func (s *DefaultCoinService) AwardUser(userID string, amount int64, reason, bookingID string) error {
	if amount <= 0 {
		return fmt.Errorf("award amount must be positive")
	}
	if err := s.append(userID, "user", amount, reason, bookingID); err != nil {
		return err
	}
	if err := s.Users.AdjustCoins(userID, amount); err != nil {
		return fmt.Errorf("failed to credit user %s: %w", userID, err)
	}
	return nil
}

func (s *DefaultCoinService) DeductProvider(providerID string, amount int64, reason, bookingID string) error {
	if amount <= 0 {
		return fmt.Errorf("deduction amount must be positive")
	}
	if err := s.append(providerID, "provider", -amount, reason, bookingID); err != nil {
		return err
	}
	if err := s.Providers.AdjustCoins(providerID, -amount); err != nil {
		return fmt.Errorf("failed to debit provider %s: %w", providerID, err)
	}
	return nil
}

func (s *DefaultCoinService) LedgerFor(accountID string) ([]models.CoinEntry, error) {
	return s.Ledger.GetByAccount(accountID)
}

func (s *DefaultCoinService) append(accountID, role string, delta int64, reason, bookingID string) error {
	entry := &models.CoinEntry{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Role:      role,
		Delta:     delta,
		Reason:    reason,
		BookingID: bookingID,
		CreatedAt: time.Now(),
	}
	if err := s.Ledger.Append(entry); err != nil {
		return fmt.Errorf("failed to record coin movement: %w", err)
	}
	return nil
}
