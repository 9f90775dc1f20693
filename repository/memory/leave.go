package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hrms-backend/models"
	"hrms-backend/repository"
)

type LeaveRequests struct {
	mu    sync.Mutex
	items []models.LeaveRequest
}

func NewLeaveRequests() *LeaveRequests {
	return &LeaveRequests{}
}

var _ repository.LeaveRequestRepository = (*LeaveRequests)(nil)

func (r *LeaveRequests) index(id primitive.ObjectID) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *LeaveRequests) Create(_ context.Context, request *models.LeaveRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	request.ID = primitive.NewObjectID()
	request.CreatedAt = now
	request.UpdatedAt = now
	r.items = append(r.items, clone(*request))
	return nil
}

func (r *LeaveRequests) FindByID(_ context.Context, id primitive.ObjectID) (*models.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	out := clone(r.items[i])
	return &out, nil
}

func (r *LeaveRequests) collect(match func(models.LeaveRequest) bool) []models.LeaveRequest {
	matched := []models.LeaveRequest{}
	for _, l := range r.items {
		if match(l) {
			matched = append(matched, clone(l))
		}
	}
	sortBy(matched, func(a, b models.LeaveRequest) bool { return a.CreatedAt.After(b.CreatedAt) })
	return matched
}

func (r *LeaveRequests) List(_ context.Context, f models.LeaveRequestFilter) ([]models.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	y := strconv.Itoa(f.Year)
	return r.collect(func(l models.LeaveRequest) bool {
		if f.EmployeeID != nil && l.EmployeeID != *f.EmployeeID {
			return false
		}
		if f.Status != "" && l.Status != f.Status {
			return false
		}
		if f.LeaveType != "" && l.LeaveType != f.LeaveType {
			return false
		}
		if f.Year != 0 && !inRange(l.StartDate, y+"-01-01", y+"-12-31") {
			return false
		}
		return true
	}), nil
}

func (r *LeaveRequests) FindOverlapping(_ context.Context, employeeID primitive.ObjectID, start, end string) ([]models.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.collect(func(l models.LeaveRequest) bool {
		return l.EmployeeID == employeeID &&
			(l.Status == models.LeavePending || l.Status == models.LeaveApproved) &&
			l.StartDate <= end && l.EndDate >= start
	}), nil
}

func (r *LeaveRequests) TransitionStatus(_ context.Context, id primitive.ObjectID, from, to string, set bson.M) (*models.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	if r.items[i].Status != from {
		return nil, repository.ErrConflict
	}
	patched := bson.M{"status": to, "updated_at": time.Now()}
	for k, v := range set {
		patched[k] = v
	}
	if err := patch(&r.items[i], patched, nil); err != nil {
		return nil, err
	}
	out := clone(r.items[i])
	return &out, nil
}

func (r *LeaveRequests) SetAttachment(_ context.Context, id, fileID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	r.items[i].AttachmentID = &fileID
	r.items[i].UpdatedAt = time.Now()
	return nil
}

func (r *LeaveRequests) CountByStatus(_ context.Context, status string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, l := range r.items {
		if l.Status == status {
			n++
		}
	}
	return n, nil
}

// LeaveBalances keeps one balance per employee and year with the same version check as the Mongo store.
type LeaveBalances struct {
	mu    sync.Mutex
	items []models.LeaveBalance
}

func NewLeaveBalances() *LeaveBalances {
	return &LeaveBalances{}
}

var _ repository.LeaveBalanceRepository = (*LeaveBalances)(nil)

func (r *LeaveBalances) index(employeeID primitive.ObjectID, year int) int {
	for i := range r.items {
		if r.items[i].EmployeeID == employeeID && r.items[i].Year == year {
			return i
		}
	}
	return -1
}

func (r *LeaveBalances) Get(_ context.Context, employeeID primitive.ObjectID, year int) (*models.LeaveBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(employeeID, year)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	out := clone(r.items[i])
	return &out, nil
}

func (r *LeaveBalances) GetOrCreate(_ context.Context, employeeID primitive.ObjectID, year int) (*models.LeaveBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(employeeID, year)
	if i < 0 {
		fresh := models.NewLeaveBalance(employeeID, year)
		fresh.ID = primitive.NewObjectID()
		r.items = append(r.items, *fresh)
		i = len(r.items) - 1
	}
	out := clone(r.items[i])
	return &out, nil
}

func (r *LeaveBalances) Replace(_ context.Context, balance *models.LeaveBalance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(balance.EmployeeID, balance.Year)
	if i < 0 || r.items[i].ID != balance.ID || r.items[i].Version != balance.Version {
		return repository.ErrConflict
	}
	stored := clone(*balance)
	stored.Version++
	stored.UpdatedAt = time.Now()
	r.items[i] = stored
	balance.Version++
	return nil
}
