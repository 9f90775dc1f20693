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

type AttendanceRepository interface {
	Create(ctx context.Context, attendance *models.Attendance) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Attendance, error)
	FindByEmployeeAndDate(ctx context.Context, employeeID primitive.ObjectID, date string) (*models.Attendance, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, int64, error)
	FindInRange(ctx context.Context, employeeID *primitive.ObjectID, from, to string) ([]models.Attendance, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M, unset ...string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	ClockOut(ctx context.Context, id primitive.ObjectID, at time.Time, workHours float64, status string) (*models.Attendance, error)
	UpsertLeaveDay(ctx context.Context, employeeID primitive.ObjectID, date string, leaveRequestID primitive.ObjectID, leaveType string) error
	// ClearLeaveDays removes the on-leave records written for a leave request.
	ClearLeaveDays(ctx context.Context, leaveRequestID primitive.ObjectID) error
}

type attendanceRepository struct {
	collection *mongo.Collection
}

func NewAttendanceRepository() AttendanceRepository {
	return &attendanceRepository{
		collection: config.GetCollection(config.AttendanceCollection),
	}
}

func (r *attendanceRepository) Create(ctx context.Context, attendance *models.Attendance) error {
	now := time.Now()
	attendance.ID = primitive.NewObjectID()
	attendance.CreatedAt = now
	attendance.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, attendance); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create attendance: %w", err)
	}
	return nil
}

func (r *attendanceRepository) findOne(ctx context.Context, filter bson.M) (*models.Attendance, error) {
	var attendance models.Attendance
	if err := r.collection.FindOne(ctx, filter).Decode(&attendance); err != nil {
		if err = translate(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find attendance: %w", err)
	}
	return &attendance, nil
}

func (r *attendanceRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Attendance, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *attendanceRepository) FindByEmployeeAndDate(ctx context.Context, employeeID primitive.ObjectID, date string) (*models.Attendance, error) {
	return r.findOne(ctx, bson.M{"employee_id": employeeID, "date": date})
}

func dateRange(from, to string) bson.M {
	r := bson.M{}
	if from != "" {
		r["$gte"] = from
	}
	if to != "" {
		r["$lte"] = to
	}
	return r
}

func (r *attendanceRepository) List(ctx context.Context, f models.AttendanceFilter) ([]models.Attendance, int64, error) {
	filter := bson.M{}
	if f.EmployeeID != nil {
		filter["employee_id"] = *f.EmployeeID
	}
	if dr := dateRange(f.From, f.To); len(dr) > 0 {
		filter["date"] = dr
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	opts := pageOptions(f.Page, f.Limit).SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer cursor.Close(ctx)

	records := []models.Attendance{}
	if err = cursor.All(ctx, &records); err != nil {
		return nil, 0, fmt.Errorf("failed to decode attendance: %w", err)
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance: %w", err)
	}
	return records, total, nil
}

// FindInRange returns every record between from and to inclusive. A nil employeeID means all employees.
func (r *attendanceRepository) FindInRange(ctx context.Context, employeeID *primitive.ObjectID, from, to string) ([]models.Attendance, error) {
	filter := bson.M{"date": dateRange(from, to)}
	if employeeID != nil {
		filter["employee_id"] = *employeeID
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance range: %w", err)
	}
	defer cursor.Close(ctx)

	records := []models.Attendance{}
	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode attendance: %w", err)
	}
	return records, nil
}

func (r *attendanceRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M, unset ...string) error {
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
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *attendanceRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ClockOut stamps clock_out only when it is still unset, so a second clock-out returns ErrConflict.
func (r *attendanceRepository) ClockOut(ctx context.Context, id primitive.ObjectID, at time.Time, workHours float64, status string) (*models.Attendance, error) {
	filter := bson.M{
		"_id":       id,
		"clock_in":  bson.M{"$exists": true},
		"clock_out": bson.M{"$exists": false},
	}
	set := bson.M{"clock_out": at, "work_hours": workHours, "updated_at": time.Now()}
	if status != "" {
		set["status"] = status
	}

	var updated models.Attendance
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated); err != nil {
		if translate(err) == ErrNotFound {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to clock out: %w", err)
	}
	return &updated, nil
}

// UpsertLeaveDay marks date as on-leave for the employee, replacing whatever status the day had.
func (r *attendanceRepository) UpsertLeaveDay(ctx context.Context, employeeID primitive.ObjectID, date string, leaveRequestID primitive.ObjectID, leaveType string) error {
	now := time.Now()
	filter := bson.M{"employee_id": employeeID, "date": date}
	update := bson.M{
		"$set": bson.M{
			"status":           models.AttendanceOnLeave,
			"leave_request_id": leaveRequestID,
			"leave_type":       leaveType,
			"updated_at":       now,
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"work_hours": 0,
			"created_at": now,
		},
	}
	if _, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to mark leave day %s: %w", date, err)
	}
	return nil
}

func (r *attendanceRepository) ClearLeaveDays(ctx context.Context, leaveRequestID primitive.ObjectID) error {
	filter := bson.M{"leave_request_id": leaveRequestID, "status": models.AttendanceOnLeave}
	if _, err := r.collection.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("failed to clear leave days: %w", err)
	}
	return nil
}
