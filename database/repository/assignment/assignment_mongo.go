package assignmentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"indastreet/database"
	"indastreet/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoAttemptRepo implements AttemptRepository using MongoDB.
type MongoAttemptRepo struct {
	coll *mongo.Collection
}

// NewMongoAttemptRepo creates a new instance of AttemptRepository using MongoDB.
func NewMongoAttemptRepo() AttemptRepository {
	return &MongoAttemptRepo{coll: database.Collection("assignment_attempts")}
}

func newContext(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}

func (r *MongoAttemptRepo) Create(attempt *models.AssignmentAttempt) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, attempt); err != nil {
		return fmt.Errorf("failed to create assignment attempt: %w", err)
	}
	return nil
}

// Close sets the outcome of a still-pending attempt. Closing an already
// terminal attempt matches nothing and returns an error so callers can
// detect lost races.
func (r *MongoAttemptRepo) Close(bookingID, providerID string, outcome models.AttemptOutcome) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	filter := bson.M{"booking_id": bookingID, "provider_id": providerID, "outcome": models.AttemptPending}
	update := bson.M{"$set": bson.M{"outcome": outcome, "closed_at": now}}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to close attempt for booking %s provider %s: %w", bookingID, providerID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("no pending attempt for booking %s provider %s", bookingID, providerID)
	}
	return nil
}

func (r *MongoAttemptRepo) Get(bookingID, providerID string) (*models.AssignmentAttempt, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var attempt models.AssignmentAttempt
	filter := bson.M{"booking_id": bookingID, "provider_id": providerID}
	err := r.coll.FindOne(ctx, filter).Decode(&attempt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attempt for booking %s provider %s: %w", bookingID, providerID, err)
	}
	return &attempt, nil
}

func (r *MongoAttemptRepo) GetPending(bookingID string) (*models.AssignmentAttempt, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var attempt models.AssignmentAttempt
	filter := bson.M{"booking_id": bookingID, "outcome": models.AttemptPending}
	err := r.coll.FindOne(ctx, filter).Decode(&attempt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending attempt for booking %s: %w", bookingID, err)
	}
	return &attempt, nil
}

func (r *MongoAttemptRepo) ProviderIDsForBooking(bookingID string) ([]string, error) {
	return r.distinctProviderIDs(bson.M{"booking_id": bookingID})
}

func (r *MongoAttemptRepo) ProviderIDsWithOutcome(bookingID string, outcome models.AttemptOutcome) ([]string, error) {
	return r.distinctProviderIDs(bson.M{"booking_id": bookingID, "outcome": outcome})
}

func (r *MongoAttemptRepo) distinctProviderIDs(filter bson.M) ([]string, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	values, err := r.coll.Distinct(ctx, "provider_id", filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempted providers: %w", err)
	}
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, nil
}

// MongoPenaltyRepo implements PenaltyRepository using MongoDB.
type MongoPenaltyRepo struct {
	coll *mongo.Collection
}

// NewMongoPenaltyRepo creates a new instance of PenaltyRepository using MongoDB.
func NewMongoPenaltyRepo() PenaltyRepository {
	return &MongoPenaltyRepo{coll: database.Collection("penalty_records")}
}

func (r *MongoPenaltyRepo) Create(record *models.PenaltyRecord) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to create penalty record: %w", err)
	}
	return nil
}

func (r *MongoPenaltyRepo) ExistsFor(providerID, bookingID string) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, bson.M{"provider_id": providerID, "booking_id": bookingID})
	if err != nil {
		return false, fmt.Errorf("failed to count penalties for provider %s booking %s: %w", providerID, bookingID, err)
	}
	return count > 0, nil
}

func (r *MongoPenaltyRepo) GetByProvider(providerID string) ([]models.PenaltyRecord, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"provider_id": providerID})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve penalties for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)

	var records []models.PenaltyRecord
	for cursor.Next(ctx) {
		var rec models.PenaltyRecord
		if err := cursor.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode penalty record: %w", err)
		}
		records = append(records, rec)
	}
	return records, cursor.Err()
}
