package memory

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hrms-backend/models"
	"hrms-backend/repository"
)

type Departments struct {
	mu    sync.Mutex
	items []models.Department
}

func NewDepartments() *Departments {
	return &Departments{}
}

var _ repository.DepartmentRepository = (*Departments)(nil)

func (r *Departments) index(id primitive.ObjectID) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Departments) CreateDepartment(_ context.Context, department *models.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.items {
		if d.Name == department.Name {
			return repository.ErrDuplicate
		}
	}
	now := time.Now()
	department.ID = primitive.NewObjectID()
	department.CreatedAt = now
	department.UpdatedAt = now
	r.items = append(r.items, clone(*department))
	return nil
}

func (r *Departments) GetAllDepartments(_ context.Context) ([]models.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Department, 0, len(r.items))
	for _, d := range r.items {
		out = append(out, clone(d))
	}
	sortBy(out, func(a, b models.Department) bool { return a.Name < b.Name })
	return out, nil
}

func (r *Departments) find(match func(models.Department) bool) (*models.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.items {
		if match(d) {
			out := clone(d)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Departments) GetDepartmentByID(_ context.Context, id primitive.ObjectID) (*models.Department, error) {
	return r.find(func(d models.Department) bool { return d.ID == id })
}

func (r *Departments) FindDepartmentByName(_ context.Context, name string) (*models.Department, error) {
	return r.find(func(d models.Department) bool { return d.Name == name })
}

func (r *Departments) UpdateDepartment(_ context.Context, id primitive.ObjectID, set bson.M, unset ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	if name, ok := set["name"].(string); ok {
		for _, d := range r.items {
			if d.ID != id && d.Name == name {
				return repository.ErrDuplicate
			}
		}
	}
	set["updated_at"] = time.Now()
	return patch(&r.items[i], set, unset)
}

func (r *Departments) DeleteDepartment(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

func (r *Departments) CountDocuments(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return int64(len(r.items)), nil
}
