package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hrms-backend/models"
	"hrms-backend/repository"
)

type Employees struct {
	mu    sync.Mutex
	items []models.Employee
}

func NewEmployees() *Employees {
	return &Employees{}
}

var _ repository.EmployeeRepository = (*Employees)(nil)

func (r *Employees) index(id primitive.ObjectID) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Employees) duplicate(id primitive.ObjectID, email, code string) bool {
	for _, e := range r.items {
		if e.ID == id {
			continue
		}
		if (email != "" && e.Email == email) || (code != "" && e.EmployeeCode == code) {
			return true
		}
	}
	return false
}

func (r *Employees) Create(_ context.Context, employee *models.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	employee.Email = strings.ToLower(strings.TrimSpace(employee.Email))
	if r.duplicate(primitive.NilObjectID, employee.Email, employee.EmployeeCode) {
		return repository.ErrDuplicate
	}
	now := time.Now()
	employee.ID = primitive.NewObjectID()
	employee.CreatedAt = now
	employee.UpdatedAt = now
	r.items = append(r.items, clone(*employee))
	return nil
}

func (r *Employees) find(match func(models.Employee) bool) (*models.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.items {
		if match(e) {
			out := clone(e)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Employees) FindByID(_ context.Context, id primitive.ObjectID) (*models.Employee, error) {
	return r.find(func(e models.Employee) bool { return e.ID == id })
}

func (r *Employees) FindByEmail(_ context.Context, email string) (*models.Employee, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.find(func(e models.Employee) bool { return e.Email == email })
}

func (r *Employees) filter(f models.EmployeeFilter) []models.Employee {
	matched := []models.Employee{}
	for _, e := range r.items {
		if f.DepartmentID != nil && (e.DepartmentID == nil || *e.DepartmentID != *f.DepartmentID) {
			continue
		}
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		if f.Search != "" && !containsFold(e.FirstName, f.Search) && !containsFold(e.LastName, f.Search) &&
			!containsFold(e.Email, f.Search) && !containsFold(e.EmployeeCode, f.Search) {
			continue
		}
		matched = append(matched, clone(e))
	}
	sortBy(matched, func(a, b models.Employee) bool { return a.EmployeeCode < b.EmployeeCode })
	return matched
}

func (r *Employees) List(_ context.Context, f models.EmployeeFilter) ([]models.Employee, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := r.filter(f)
	return page(matched, f.Page, f.Limit), int64(len(matched)), nil
}

func (r *Employees) ListAll(_ context.Context, status string) ([]models.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.filter(models.EmployeeFilter{Status: status}), nil
}

func (r *Employees) Update(_ context.Context, id primitive.ObjectID, set bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	email, _ := set["email"].(string)
	code, _ := set["employee_code"].(string)
	if r.duplicate(id, email, code) {
		return repository.ErrDuplicate
	}
	set["updated_at"] = time.Now()
	return patch(&r.items[i], set, nil)
}

func (r *Employees) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

func (r *Employees) Count(_ context.Context, status string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return int64(len(r.filter(models.EmployeeFilter{Status: status}))), nil
}

func (r *Employees) CountByDepartment(_ context.Context, departmentID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return int64(len(r.filter(models.EmployeeFilter{DepartmentID: &departmentID}))), nil
}

func (r *Employees) HeadcountByDepartment(_ context.Context) ([]models.DepartmentCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := []models.DepartmentCount{}
	index := map[primitive.ObjectID]int{}
	for _, e := range r.items {
		if e.Status != models.EmployeeStatusActive && e.Status != models.EmployeeStatusOnLeave {
			continue
		}
		key := primitive.NilObjectID
		if e.DepartmentID != nil {
			key = *e.DepartmentID
		}
		i, ok := index[key]
		if !ok {
			row := models.DepartmentCount{}
			if e.DepartmentID != nil {
				id := *e.DepartmentID
				row.DepartmentID = &id
			}
			rows = append(rows, row)
			i = len(rows) - 1
			index[key] = i
		}
		rows[i].Count++
		rows[i].TotalSalary += e.Salary
	}
	return rows, nil
}
