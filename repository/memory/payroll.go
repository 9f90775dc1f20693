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

type Payrolls struct {
	mu    sync.Mutex
	items []models.Payroll
}

func NewPayrolls() *Payrolls {
	return &Payrolls{}
}

var _ repository.PayrollRepository = (*Payrolls)(nil)

func (r *Payrolls) index(id primitive.ObjectID) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Payrolls) Create(_ context.Context, payroll *models.Payroll) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.items {
		if p.EmployeeID == payroll.EmployeeID && p.Month == payroll.Month && p.Year == payroll.Year {
			return repository.ErrDuplicate
		}
	}
	now := time.Now()
	payroll.ID = primitive.NewObjectID()
	payroll.CreatedAt = now
	payroll.UpdatedAt = now
	r.items = append(r.items, clone(*payroll))
	return nil
}

func (r *Payrolls) FindByID(_ context.Context, id primitive.ObjectID) (*models.Payroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	out := clone(r.items[i])
	return &out, nil
}

func (r *Payrolls) List(_ context.Context, f models.PayrollFilter) ([]models.Payroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := []models.Payroll{}
	for _, p := range r.items {
		if f.EmployeeID != nil && p.EmployeeID != *f.EmployeeID {
			continue
		}
		if f.Month != 0 && p.Month != f.Month {
			continue
		}
		if f.Year != 0 && p.Year != f.Year {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		matched = append(matched, clone(p))
	}
	sortBy(matched, func(a, b models.Payroll) bool {
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		return a.Month > b.Month
	})
	return matched, nil
}

func (r *Payrolls) Update(_ context.Context, id primitive.ObjectID, set bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	set["updated_at"] = time.Now()
	return patch(&r.items[i], set, nil)
}

func (r *Payrolls) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

func (r *Payrolls) SumNet(_ context.Context, month, year int) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total float64
	for _, p := range r.items {
		if p.Month == month && p.Year == year {
			total += p.NetPay
		}
	}
	return total, nil
}
