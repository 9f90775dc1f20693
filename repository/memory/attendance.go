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

type Attendance struct {
	mu    sync.Mutex
	items []models.Attendance
}

func NewAttendance() *Attendance {
	return &Attendance{}
}

var _ repository.AttendanceRepository = (*Attendance)(nil)

func (r *Attendance) index(id primitive.ObjectID) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Attendance) dayIndex(employeeID primitive.ObjectID, date string) int {
	for i := range r.items {
		if r.items[i].EmployeeID == employeeID && r.items[i].Date == date {
			return i
		}
	}
	return -1
}

func (r *Attendance) Create(_ context.Context, attendance *models.Attendance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dayIndex(attendance.EmployeeID, attendance.Date) >= 0 {
		return repository.ErrDuplicate
	}
	now := time.Now()
	attendance.ID = primitive.NewObjectID()
	attendance.CreatedAt = now
	attendance.UpdatedAt = now
	r.items = append(r.items, clone(*attendance))
	return nil
}

func (r *Attendance) FindByID(_ context.Context, id primitive.ObjectID) (*models.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	out := clone(r.items[i])
	return &out, nil
}

func (r *Attendance) FindByEmployeeAndDate(_ context.Context, employeeID primitive.ObjectID, date string) (*models.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.dayIndex(employeeID, date)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	out := clone(r.items[i])
	return &out, nil
}

func (r *Attendance) List(_ context.Context, f models.AttendanceFilter) ([]models.Attendance, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := []models.Attendance{}
	for _, a := range r.items {
		if f.EmployeeID != nil && a.EmployeeID != *f.EmployeeID {
			continue
		}
		if !inRange(a.Date, f.From, f.To) {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		matched = append(matched, clone(a))
	}
	sortBy(matched, func(a, b models.Attendance) bool { return a.Date > b.Date })
	return page(matched, f.Page, f.Limit), int64(len(matched)), nil
}

func (r *Attendance) FindInRange(_ context.Context, employeeID *primitive.ObjectID, from, to string) ([]models.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := []models.Attendance{}
	for _, a := range r.items {
		if employeeID != nil && a.EmployeeID != *employeeID {
			continue
		}
		if inRange(a.Date, from, to) {
			matched = append(matched, clone(a))
		}
	}
	sortBy(matched, func(a, b models.Attendance) bool { return a.Date < b.Date })
	return matched, nil
}

func (r *Attendance) Update(_ context.Context, id primitive.ObjectID, set bson.M, unset ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	if set == nil {
		set = bson.M{}
	}
	set["updated_at"] = time.Now()
	return patch(&r.items[i], set, unset)
}

func (r *Attendance) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

func (r *Attendance) ClockOut(_ context.Context, id primitive.ObjectID, at time.Time, workHours float64, status string) (*models.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 || r.items[i].ClockIn == nil || r.items[i].ClockOut != nil {
		return nil, repository.ErrConflict
	}
	a := &r.items[i]
	a.ClockOut = &at
	a.WorkHours = workHours
	if status != "" {
		a.Status = status
	}
	a.UpdatedAt = time.Now()
	out := clone(*a)
	return &out, nil
}

func (r *Attendance) UpsertLeaveDay(_ context.Context, employeeID primitive.ObjectID, date string, leaveRequestID primitive.ObjectID, leaveType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	i := r.dayIndex(employeeID, date)
	if i < 0 {
		r.items = append(r.items, models.Attendance{
			ID:         primitive.NewObjectID(),
			EmployeeID: employeeID,
			Date:       date,
			CreatedAt:  now,
		})
		i = len(r.items) - 1
	}
	a := &r.items[i]
	a.Status = models.AttendanceOnLeave
	a.LeaveRequestID = &leaveRequestID
	a.LeaveType = leaveType
	a.UpdatedAt = now
	return nil
}

func (r *Attendance) ClearLeaveDays(_ context.Context, leaveRequestID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.items[:0]
	for _, a := range r.items {
		if a.Status == models.AttendanceOnLeave && a.LeaveRequestID != nil && *a.LeaveRequestID == leaveRequestID {
			continue
		}
		kept = append(kept, a)
	}
	r.items = kept
	return nil
}
