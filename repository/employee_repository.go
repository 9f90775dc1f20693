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

type EmployeeRepository interface {
	Create(ctx context.Context, employee *models.Employee) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Employee, error)
	FindByEmail(ctx context.Context, email string) (*models.Employee, error)
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int64, error)
	ListAll(ctx context.Context, status string) ([]models.Employee, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context, status string) (int64, error)
	CountByDepartment(ctx context.Context, departmentID primitive.ObjectID) (int64, error)
	HeadcountByDepartment(ctx context.Context) ([]models.DepartmentCount, error)
}

type employeeRepository struct {
	collection *mongo.Collection
}

func NewEmployeeRepository() EmployeeRepository {
	return &employeeRepository{
		collection: config.GetCollection(config.EmployeeCollection),
	}
}

func (r *employeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	now := time.Now()
	employee.ID = primitive.NewObjectID()
	employee.Email = strings.ToLower(strings.TrimSpace(employee.Email))
	employee.CreatedAt = now
	employee.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, employee); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}

func (r *employeeRepository) findOne(ctx context.Context, filter bson.M) (*models.Employee, error) {
	var employee models.Employee
	if err := r.collection.FindOne(ctx, filter).Decode(&employee); err != nil {
		if err = translate(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}
	return &employee, nil
}

func (r *employeeRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Employee, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *employeeRepository) FindByEmail(ctx context.Context, email string) (*models.Employee, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func employeeFilter(f models.EmployeeFilter) bson.M {
	filter := bson.M{}
	if f.DepartmentID != nil {
		filter["department_id"] = *f.DepartmentID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Search != "" {
		filter["$or"] = []bson.M{
			{"first_name": caseInsensitive(f.Search)},
			{"last_name": caseInsensitive(f.Search)},
			{"email": caseInsensitive(f.Search)},
			{"employee_code": caseInsensitive(f.Search)},
		}
	}
	return filter
}

func (r *employeeRepository) List(ctx context.Context, f models.EmployeeFilter) ([]models.Employee, int64, error) {
	filter := employeeFilter(f)
	opts := pageOptions(f.Page, f.Limit).SetSort(bson.D{{Key: "employee_code", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	defer cursor.Close(ctx)

	employees := []models.Employee{}
	if err = cursor.All(ctx, &employees); err != nil {
		return nil, 0, fmt.Errorf("failed to decode employees: %w", err)
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return employees, total, nil
}

func (r *employeeRepository) ListAll(ctx context.Context, status string) ([]models.Employee, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "employee_code", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer cursor.Close(ctx)

	employees := []models.Employee{}
	if err = cursor.All(ctx, &employees); err != nil {
		return nil, fmt.Errorf("failed to decode employees: %w", err)
	}
	return employees, nil
}

func (r *employeeRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now()
	res, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *employeeRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *employeeRepository) Count(ctx context.Context, status string) (int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return count, nil
}

func (r *employeeRepository) CountByDepartment(ctx context.Context, departmentID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"department_id": departmentID})
	if err != nil {
		return 0, fmt.Errorf("failed to count department employees: %w", err)
	}
	return count, nil
}

// HeadcountByDepartment groups non-departed employees by department. Employees without a
// department come back as one row with a nil DepartmentID.
func (r *employeeRepository) HeadcountByDepartment(ctx context.Context) ([]models.DepartmentCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": bson.M{"$in": bson.A{models.EmployeeStatusActive, models.EmployeeStatusOnLeave}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$department_id"},
			{Key: "count", Value: bson.M{"$sum": 1}},
			{Key: "total_salary", Value: bson.M{"$sum": "$salary"}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate department headcount: %w", err)
	}
	defer cursor.Close(ctx)

	counts := []models.DepartmentCount{}
	if err = cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode department headcount: %w", err)
	}
	return counts, nil
}
