package recordsRepo

import (
	"context"
	"fmt"
	"time"

	"indastreet/database"
	"indastreet/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CommissionRepository stores settlement records for completed bookings.
type CommissionRepository interface {
	Create(record *models.CommissionRecord) error
	GetByProvider(providerID string) ([]models.CommissionRecord, error)
}

// CoinLedgerRepository is the append-only loyalty-coin ledger.
type CoinLedgerRepository interface {
	Append(entry *models.CoinEntry) error
	GetByAccount(accountID string) ([]models.CoinEntry, error)
}

func newContext(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}

// MongoCommissionRepo implements CommissionRepository using MongoDB.
type MongoCommissionRepo struct {
	coll *mongo.Collection
}

// NewMongoCommissionRepo creates a new instance of CommissionRepository using MongoDB.
func NewMongoCommissionRepo() CommissionRepository {
	return &MongoCommissionRepo{coll: database.Collection("commission_records")}
}

func (r *MongoCommissionRepo) Create(record *models.CommissionRecord) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to create commission record: %w", err)
	}
	return nil
}

func (r *MongoCommissionRepo) GetByProvider(providerID string) ([]models.CommissionRecord, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"provider_id": providerID})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve commission records for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)

	var records []models.CommissionRecord
	for cursor.Next(ctx) {
		var rec models.CommissionRecord
		if err := cursor.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode commission record: %w", err)
		}
		records = append(records, rec)
	}
	return records, cursor.Err()
}

// MongoCoinLedgerRepo implements CoinLedgerRepository using MongoDB.
type MongoCoinLedgerRepo struct {
	coll *mongo.Collection
}

// NewMongoCoinLedgerRepo creates a new instance of CoinLedgerRepository using MongoDB.
func NewMongoCoinLedgerRepo() CoinLedgerRepository {
	return &MongoCoinLedgerRepo{coll: database.Collection("coin_ledger")}
}

func (r *MongoCoinLedgerRepo) Append(entry *models.CoinEntry) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to append coin ledger entry: %w", err)
	}
	return nil
}

func (r *MongoCoinLedgerRepo) GetByAccount(accountID string) ([]models.CoinEntry, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"account_id": accountID})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve coin ledger for account %s: %w", accountID, err)
	}
	defer cursor.Close(ctx)

	var entries []models.CoinEntry
	for cursor.Next(ctx) {
		var e models.CoinEntry
		if err := cursor.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to decode coin ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, cursor.Err()
}
