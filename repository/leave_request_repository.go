package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hrms-backend/config"
	"hrms-backend/models"
)

type LeaveRequestRepository interface {
	Create(ctx context.Context, request *models.LeaveRequest) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.LeaveRequest, error)
	List(ctx context.Context, filter models.LeaveRequestFilter) ([]models.LeaveRequest, error)
	FindOverlapping(ctx context.Context, employeeID primitive.ObjectID, start, end string) ([]models.LeaveRequest, error)
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to string, set bson.M) (*models.LeaveRequest, error)
	SetAttachment(ctx context.Context, id, fileID primitive.ObjectID) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type leaveRequestRepository struct {
	collection *mongo.Collection
}

func NewLeaveRequestRepository() LeaveRequestRepository {
	return &leaveRequestRepository{
		collection: config.GetCollection(config.LeaveRequestCollection),
	}
}

func (r *leaveRequestRepository) Create(ctx context.Context, request *models.LeaveRequest) error {
	now := time.Now()
	request.ID = primitive.NewObjectID()
	request.CreatedAt = now
	request.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, request); err != nil {
		return fmt.Errorf("failed to create leave request: %w", err)
	}
	return nil
}

func (r *leaveRequestRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.LeaveRequest, error) {
	var request models.LeaveRequest
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request); err != nil {
		if err = translate(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find leave request: %w", err)
	}
	return &request, nil
}

func (r *leaveRequestRepository) find(ctx context.Context, filter bson.M) ([]models.LeaveRequest, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer cursor.Close(ctx)

	requests := []models.LeaveRequest{}
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode leave requests: %w", err)
	}
	return requests, nil
}

func (r *leaveRequestRepository) List(ctx context.Context, f models.LeaveRequestFilter) ([]models.LeaveRequest, error) {
	filter := bson.M{}
	if f.EmployeeID != nil {
		filter["employee_id"] = *f.EmployeeID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.LeaveType != "" {
		filter["leave_type"] = f.LeaveType
	}
	if f.Year > 0 {
		y := strconv.Itoa(f.Year)
		filter["start_date"] = bson.M{"$gte": y + "-01-01", "$lte": y + "-12-31"}
	}
	return r.find(ctx, filter)
}

// FindOverlapping returns pending or approved requests that share at least one day with start..end.
func (r *leaveRequestRepository) FindOverlapping(ctx context.Context, employeeID primitive.ObjectID, start, end string) ([]models.LeaveRequest, error) {
	return r.find(ctx, bson.M{
		"employee_id": employeeID,
		"status":      bson.M{"$in": bson.A{models.LeavePending, models.LeaveApproved}},
		"start_date":  bson.M{"$lte": end},
		"end_date":    bson.M{"$gte": start},
	})
}

// TransitionStatus moves a request from one status to another in a single conditional write.
// It returns ErrNotFound for an unknown id and ErrConflict when the request is no longer in from.
func (r *leaveRequestRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to string, set bson.M) (*models.LeaveRequest, error) {
	if set == nil {
		set = bson.M{}
	}
	set["status"] = to
	set["updated_at"] = time.Now()

	var updated models.LeaveRequest
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set}, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if translate(err) != ErrNotFound {
		return nil, fmt.Errorf("failed to update leave request status: %w", err)
	}
	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, ErrConflict
}

func (r *leaveRequestRepository) SetAttachment(ctx context.Context, id, fileID primitive.ObjectID) error {
	res, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": bson.M{"attachment_id": fileID, "updated_at": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to attach file: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *leaveRequestRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("failed to count leave requests: %w", err)
	}
	return count, nil
}
