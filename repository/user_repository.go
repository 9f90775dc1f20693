package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hrms-backend/config"
	"hrms-backend/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindUserByEmployeeID(ctx context.Context, employeeID primitive.ObjectID) (*models.User, error)
	GetAllUsers(ctx context.Context, filter models.UserFilter) ([]models.User, int64, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, set bson.M, unset ...string) error
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	RecordFailedLogin(ctx context.Context, id primitive.ObjectID, maxAttempts int, lockFor time.Duration) (*models.User, error)
	ClearLockout(ctx context.Context, id primitive.ObjectID) error
	UnlinkEmployee(ctx context.Context, employeeID primitive.ObjectID) error
}

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository() UserRepository {
	return &userRepository{
		collection: config.GetCollection(config.UserCollection),
	}
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if err = translate(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *userRepository) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userRepository) FindUserByEmployeeID(ctx context.Context, employeeID primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"employee_id": employeeID})
}

func (r *userRepository) GetAllUsers(ctx context.Context, f models.UserFilter) ([]models.User, int64, error) {
	filter := bson.M{}
	if f.Search != "" {
		filter["$or"] = []bson.M{
			{"name": caseInsensitive(f.Search)},
			{"email": caseInsensitive(f.Search)},
		}
	}
	if f.Role != "" {
		filter["role"] = f.Role
	}

	opts := pageOptions(f.Page, f.Limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, 0, fmt.Errorf("failed to decode users: %w", err)
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	return users, total, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, id primitive.ObjectID, set bson.M, unset ...string) error {
	if set == nil {
		set = bson.M{}
	}
	set["updated_at"] = time.Now()
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		fields := bson.M{}
		for _, f := range unset {
			fields[f] = ""
		}
		update["$unset"] = fields
	}

	res, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordFailedLogin increments the failure counter atomically. Reaching maxAttempts locks the
// account for lockFor and resets the counter. The returned user reflects the new state.
func (r *userRepository) RecordFailedLogin(ctx context.Context, id primitive.ObjectID, maxAttempts int, lockFor time.Duration) (*models.User, error) {
	var user models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"failed_login_attempts": 1}, "$set": bson.M{"updated_at": time.Now()}},
		opts,
	).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to record login failure: %w", translate(err))
	}

	if user.FailedLoginAttempts < maxAttempts {
		return &user, nil
	}

	lockUntil := time.Now().Add(lockFor)
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"failed_login_attempts": 0, "lock_until": lockUntil, "updated_at": time.Now()}},
		opts,
	).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", translate(err))
	}
	return &user, nil
}

func (r *userRepository) ClearLockout(ctx context.Context, id primitive.ObjectID) error {
	return r.UpdateUser(ctx, id, bson.M{"failed_login_attempts": 0}, "lock_until")
}

func (r *userRepository) UnlinkEmployee(ctx context.Context, employeeID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"employee_id": employeeID},
		bson.M{"$unset": bson.M{"employee_id": ""}, "$set": bson.M{"updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to unlink employee from users: %w", err)
	}
	return nil
}
