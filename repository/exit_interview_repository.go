package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hrms-backend/config"
	"hrms-backend/models"
)

type ExitInterviewRepository interface {
	Create(ctx context.Context, interview *models.ExitInterview) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.ExitInterview, error)
	List(ctx context.Context, employeeID *primitive.ObjectID, status string) ([]models.ExitInterview, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type exitInterviewRepository struct {
	collection *mongo.Collection
}

func NewExitInterviewRepository() ExitInterviewRepository {
	return &exitInterviewRepository{
		collection: config.GetCollection(config.ExitInterviewCollection),
	}
}

func (r *exitInterviewRepository) Create(ctx context.Context, interview *models.ExitInterview) error {
	now := time.Now()
	interview.ID = primitive.NewObjectID()
	interview.CreatedAt = now
	interview.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, interview); err != nil {
		return fmt.Errorf("failed to create exit interview: %w", err)
	}
	return nil
}

func (r *exitInterviewRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ExitInterview, error) {
	var interview models.ExitInterview
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&interview); err != nil {
		if err = translate(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find exit interview: %w", err)
	}
	return &interview, nil
}

func (r *exitInterviewRepository) List(ctx context.Context, employeeID *primitive.ObjectID, status string) ([]models.ExitInterview, error) {
	filter := bson.M{}
	if employeeID != nil {
		filter["employee_id"] = *employeeID
	}
	if status != "" {
		filter["status"] = status
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "interview_date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list exit interviews: %w", err)
	}
	defer cursor.Close(ctx)

	interviews := []models.ExitInterview{}
	if err = cursor.All(ctx, &interviews); err != nil {
		return nil, fmt.Errorf("failed to decode exit interviews: %w", err)
	}
	return interviews, nil
}

func (r *exitInterviewRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now()
	res, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update exit interview: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *exitInterviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete exit interview: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
