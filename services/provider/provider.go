package provider

import (
	"context"
	"fmt"
	"time"

	providerRepo "indastreet/database/repository/provider"
	"indastreet/models"
	"indastreet/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTTL      = 72 * time.Hour
	initialRating = 4.5
)

// AuthResponse is returned on successful registration or sign-in.
type AuthResponse struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	ProviderType models.ProviderType `json:"providerType"`
	Token        string              `json:"token"`
}

// ProviderService manages therapist and place accounts.
type ProviderService interface {
	Register(data models.ProviderRegistrationData) (*AuthResponse, error)
	Authenticate(email, password string) (*AuthResponse, error)
	GetProviderByID(ctx context.Context, providerID string) (*models.Provider, error)
	SetFCMToken(providerID, token string) error
	SetActive(providerID string, active bool) error
}

// DefaultProviderService is the production implementation.
type DefaultProviderService struct {
	Repo providerRepo.ProviderRepository
}

func (s *DefaultProviderService) Register(data models.ProviderRegistrationData) (*AuthResponse, error) {
	if !data.ProviderType.Valid() {
		return nil, fmt.Errorf("unknown provider type %q", data.ProviderType)
	}
	existing, err := s.Repo.GetByEmail(data.Email)
	if err != nil {
		return nil, fmt.Errorf("registration failed, please try again")
	}
	if existing != nil {
		return nil, fmt.Errorf("an account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	p := &models.Provider{
		ID:           uuid.New().String(),
		Name:         data.Name,
		Email:        data.Email,
		PasswordHash: string(hash),
		Phone:        data.Phone,
		ProviderType: data.ProviderType,
		ServiceTypes: data.ServiceTypes,
		Location:     data.Location,
		Rating:       initialRating,
		Active:       true,
		CreatedAt:    time.Now(),
	}
	if err := s.Repo.Create(p); err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	return s.issueToken(p)
}

func (s *DefaultProviderService) Authenticate(email, password string) (*AuthResponse, error) {
	p, err := s.Repo.GetByEmail(email)
	if err != nil {
		utils.GetLogger().Error("Authenticate: failed to fetch provider", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}
	if p == nil {
		return nil, fmt.Errorf("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}
	return s.issueToken(p)
}

func (s *DefaultProviderService) GetProviderByID(ctx context.Context, providerID string) (*models.Provider, error) {
	return s.Repo.GetByID(providerID)
}

func (s *DefaultProviderService) SetFCMToken(providerID, token string) error {
	return s.Repo.SetFCMToken(providerID, token)
}

func (s *DefaultProviderService) SetActive(providerID string, active bool) error {
	p, err := s.Repo.GetByID(providerID)
	if err != nil {
		return err
	}
	p.Active = active
	return s.Repo.Update(p)
}

func (s *DefaultProviderService) issueToken(p *models.Provider) (*AuthResponse, error) {
	token, err := utils.GenerateToken(p.ID, "provider", tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	cache := utils.GetAuthCacheClient()
	key := fmt.Sprintf("token:provider:%s", p.ID)
	if err := cache.Set(context.Background(), key, utils.HashToken(token), tokenTTL).Err(); err != nil {
		return nil, fmt.Errorf("failed to cache auth token: %w", err)
	}
	return &AuthResponse{ID: p.ID, Name: p.Name, Email: p.Email, ProviderType: p.ProviderType, Token: token}, nil
}
