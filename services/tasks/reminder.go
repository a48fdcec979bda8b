package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"indastreet/config"
	"indastreet/models"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TypeReminderSend = "reminder:send"

// Lead time before a scheduled booking at which the reminder fires.
const reminderLead = time.Hour

// NewReminderTask builds an asynq task carrying the reminder payload.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeReminderSend, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}
	return task, opts, nil
}

// AsynqReminderScheduler enqueues booking reminders on the shared Redis queue.
type AsynqReminderScheduler struct {
	client *asynq.Client
}

// NewAsynqReminderScheduler creates a scheduler backed by the configured queue.
func NewAsynqReminderScheduler() *AsynqReminderScheduler {
	return &AsynqReminderScheduler{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisReminderQueueDB,
		}),
	}
}

// ScheduleBookingReminder enqueues reminders for both parties of a confirmed
// scheduled booking, firing one hour before the appointment.
func (s *AsynqReminderScheduler) ScheduleBookingReminder(booking *models.Booking) error {
	fireAt := booking.Scheduled.Add(-reminderLead)
	if fireAt.Before(time.Now()) {
		return nil
	}

	targets := []models.ReminderPayload{
		{
			ReminderID: uuid.New().String(),
			Target:     "user",
			ID:         booking.CustomerID,
			Title:      "Upcoming booking",
			Body:       fmt.Sprintf("Your %s booking starts at %s.", booking.ServiceType, booking.Scheduled.Format("15:04")),
			FireDate:   fireAt.Format(time.RFC3339),
		},
		{
			ReminderID: uuid.New().String(),
			Target:     "provider",
			ID:         booking.ProviderID,
			Title:      "Upcoming booking",
			Body:       fmt.Sprintf("You have a %s booking at %s.", booking.ServiceType, booking.Scheduled.Format("15:04")),
			FireDate:   fireAt.Format(time.RFC3339),
		},
	}

	for _, payload := range targets {
		task, opts, err := NewReminderTask(payload, fireAt)
		if err != nil {
			return fmt.Errorf("failed to build reminder task: %w", err)
		}
		if _, err := s.client.Enqueue(task, opts...); err != nil {
			return fmt.Errorf("failed to enqueue reminder: %w", err)
		}
	}
	return nil
}
