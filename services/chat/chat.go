package chat

import (
	"fmt"
	"time"

	chatRepo "indastreet/database/repository/chat"
	"indastreet/models"

	"github.com/google/uuid"
)

// Service manages per-booking message threads.
type Service interface {
	// PostSystemMessage appends a workflow notice to the booking's thread.
	// Best-effort from the caller's perspective; state transitions must not
	// be rolled back when it fails.
	PostSystemMessage(bookingID, body string) error
	PostMessage(bookingID, senderID string, role models.ChatRole, body string) (*models.ChatMessage, error)
	ListMessages(bookingID string) ([]models.ChatMessage, error)
}

// DefaultChatService is the Mongo-backed implementation.
type DefaultChatService struct {
	Repo chatRepo.MessageRepository
}

func (s *DefaultChatService) PostSystemMessage(bookingID, body string) error {
	msg := &models.ChatMessage{
		ID:         uuid.New().String(),
		BookingID:  bookingID,
		SenderRole: models.ChatRoleSystem,
		Body:       body,
		CreatedAt:  time.Now(),
	}
	if err := s.Repo.Create(msg); err != nil {
		return fmt.Errorf("failed to post system message: %w", err)
	}
	return nil
}

func (s *DefaultChatService) PostMessage(bookingID, senderID string, role models.ChatRole, body string) (*models.ChatMessage, error) {
	if body == "" {
		return nil, fmt.Errorf("message body must not be empty")
	}
	msg := &models.ChatMessage{
		ID:         uuid.New().String(),
		BookingID:  bookingID,
		SenderID:   senderID,
		SenderRole: role,
		Body:       body,
		CreatedAt:  time.Now(),
	}
	if err := s.Repo.Create(msg); err != nil {
		return nil, fmt.Errorf("failed to post message: %w", err)
	}
	return msg, nil
}

func (s *DefaultChatService) ListMessages(bookingID string) ([]models.ChatMessage, error) {
	return s.Repo.GetByBooking(bookingID)
}
