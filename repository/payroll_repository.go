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

type PayrollRepository interface {
	Create(ctx context.Context, payroll *models.Payroll) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Payroll, error)
	List(ctx context.Context, filter models.PayrollFilter) ([]models.Payroll, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	SumNet(ctx context.Context, month, year int) (float64, error)
}

type payrollRepository struct {
	collection *mongo.Collection
}

func NewPayrollRepository() PayrollRepository {
	return &payrollRepository{
		collection: config.GetCollection(config.PayrollCollection),
	}
}

func (r *payrollRepository) Create(ctx context.Context, payroll *models.Payroll) error {
	now := time.Now()
	payroll.ID = primitive.NewObjectID()
	payroll.CreatedAt = now
	payroll.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, payroll); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create payroll: %w", err)
	}
	return nil
}

func (r *payrollRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Payroll, error) {
	var payroll models.Payroll
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&payroll); err != nil {
		if err = translate(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find payroll: %w", err)
	}
	return &payroll, nil
}

func (r *payrollRepository) List(ctx context.Context, f models.PayrollFilter) ([]models.Payroll, error) {
	filter := bson.M{}
	if f.EmployeeID != nil {
		filter["employee_id"] = *f.EmployeeID
	}
	if f.Month > 0 {
		filter["month"] = f.Month
	}
	if f.Year > 0 {
		filter["year"] = f.Year
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "year", Value: -1}, {Key: "month", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list payrolls: %w", err)
	}
	defer cursor.Close(ctx)

	payrolls := []models.Payroll{}
	if err = cursor.All(ctx, &payrolls); err != nil {
		return nil, fmt.Errorf("failed to decode payrolls: %w", err)
	}
	return payrolls, nil
}

func (r *payrollRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now()
	res, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update payroll: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *payrollRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete payroll: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *payrollRepository) SumNet(ctx context.Context, month, year int) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"month": month, "year": year}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$net_pay"}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to sum payroll: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("failed to decode payroll sum: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}
