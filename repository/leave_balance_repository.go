package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hrms-backend/config"
	"hrms-backend/models"
)

// BalanceRetries bounds how often UpdateBalanceWithRetry re-reads after losing a version race.
const BalanceRetries = 3

type LeaveBalanceRepository interface {
	Get(ctx context.Context, employeeID primitive.ObjectID, year int) (*models.LeaveBalance, error)
	GetOrCreate(ctx context.Context, employeeID primitive.ObjectID, year int) (*models.LeaveBalance, error)
	// Replace writes balance only if its stored version still equals balance.Version, then bumps the version.
	Replace(ctx context.Context, balance *models.LeaveBalance) error
}

type leaveBalanceRepository struct {
	collection *mongo.Collection
}

func NewLeaveBalanceRepository() LeaveBalanceRepository {
	return &leaveBalanceRepository{
		collection: config.GetCollection(config.LeaveBalanceCollection),
	}
}

func (r *leaveBalanceRepository) Get(ctx context.Context, employeeID primitive.ObjectID, year int) (*models.LeaveBalance, error) {
	var balance models.LeaveBalance
	if err := r.collection.FindOne(ctx, bson.M{"employee_id": employeeID, "year": year}).Decode(&balance); err != nil {
		if err = translate(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find leave balance: %w", err)
	}
	return &balance, nil
}

func (r *leaveBalanceRepository) GetOrCreate(ctx context.Context, employeeID primitive.ObjectID, year int) (*models.LeaveBalance, error) {
	fresh := models.NewLeaveBalance(employeeID, year)
	update := bson.M{"$setOnInsert": bson.M{
		"_id":        primitive.NewObjectID(),
		"balances":   fresh.Balances,
		"version":    int64(0),
		"created_at": fresh.CreatedAt,
		"updated_at": fresh.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var balance models.LeaveBalance
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"employee_id": employeeID, "year": year}, update, opts).Decode(&balance)
	if err != nil {
		// Two concurrent upserts can race on the unique index; the loser just reads the winner's document.
		if mongo.IsDuplicateKeyError(err) {
			return r.Get(ctx, employeeID, year)
		}
		return nil, fmt.Errorf("failed to load leave balance: %w", err)
	}
	return &balance, nil
}

func (r *leaveBalanceRepository) Replace(ctx context.Context, balance *models.LeaveBalance) error {
	filter := bson.M{"_id": balance.ID, "version": balance.Version}
	update := bson.M{
		"$set": bson.M{"balances": balance.Balances, "updated_at": time.Now()},
		"$inc": bson.M{"version": 1},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update leave balance: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrConflict
	}
	balance.Version++
	return nil
}

// UpdateBalanceWithRetry loads the employee's balance for year, applies mutate and writes it back.
// A lost version race re-reads and re-applies mutate; after BalanceRetries attempts ErrConflict is returned.
// Errors returned by mutate abort without writing.
func UpdateBalanceWithRetry(ctx context.Context, repo LeaveBalanceRepository, employeeID primitive.ObjectID, year int, mutate func(*models.LeaveBalance) error) (*models.LeaveBalance, error) {
	for attempt := 0; attempt < BalanceRetries; attempt++ {
		balance, err := repo.GetOrCreate(ctx, employeeID, year)
		if err != nil {
			return nil, err
		}
		if err := mutate(balance); err != nil {
			return nil, err
		}
		err = repo.Replace(ctx, balance)
		if err == nil {
			return balance, nil
		}
		if !errors.Is(err, ErrConflict) {
			return nil, err
		}
	}
	return nil, ErrConflict
}
