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

type ExitInterviews struct {
	mu    sync.Mutex
	items []models.ExitInterview
}

func NewExitInterviews() *ExitInterviews {
	return &ExitInterviews{}
}

var _ repository.ExitInterviewRepository = (*ExitInterviews)(nil)

func (r *ExitInterviews) index(id primitive.ObjectID) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *ExitInterviews) Create(_ context.Context, interview *models.ExitInterview) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	interview.ID = primitive.NewObjectID()
	interview.CreatedAt = now
	interview.UpdatedAt = now
	r.items = append(r.items, clone(*interview))
	return nil
}

func (r *ExitInterviews) FindByID(_ context.Context, id primitive.ObjectID) (*models.ExitInterview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	out := clone(r.items[i])
	return &out, nil
}

func (r *ExitInterviews) List(_ context.Context, employeeID *primitive.ObjectID, status string) ([]models.ExitInterview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := []models.ExitInterview{}
	for _, e := range r.items {
		if employeeID != nil && e.EmployeeID != *employeeID {
			continue
		}
		if status != "" && e.Status != status {
			continue
		}
		matched = append(matched, clone(e))
	}
	sortBy(matched, func(a, b models.ExitInterview) bool { return a.InterviewDate > b.InterviewDate })
	return matched, nil
}

func (r *ExitInterviews) Update(_ context.Context, id primitive.ObjectID, set bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	set["updated_at"] = time.Now()
	return patch(&r.items[i], set, nil)
}

func (r *ExitInterviews) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}
