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

type Users struct {
	mu    sync.Mutex
	items []models.User
}

func NewUsers() *Users {
	return &Users{}
}

var _ repository.UserRepository = (*Users)(nil)

func (r *Users) index(id primitive.ObjectID) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Users) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range r.items {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.items = append(r.items, clone(*user))
	return nil
}

func (r *Users) find(match func(models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.items {
		if match(u) {
			out := clone(u)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *Users) FindUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *Users) FindUserByEmployeeID(_ context.Context, employeeID primitive.ObjectID) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.EmployeeID != nil && *u.EmployeeID == employeeID })
}

func (r *Users) GetAllUsers(_ context.Context, f models.UserFilter) ([]models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := []models.User{}
	for _, u := range r.items {
		if f.Search != "" && !containsFold(u.Name, f.Search) && !containsFold(u.Email, f.Search) {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		matched = append(matched, clone(u))
	}
	sortBy(matched, func(a, b models.User) bool { return a.CreatedAt.After(b.CreatedAt) })
	return page(matched, f.Page, f.Limit), int64(len(matched)), nil
}

func (r *Users) UpdateUser(_ context.Context, id primitive.ObjectID, set bson.M, unset ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	if email, ok := set["email"].(string); ok {
		for _, u := range r.items {
			if u.ID != id && u.Email == email {
				return repository.ErrDuplicate
			}
		}
	}
	patched := bson.M{"updated_at": time.Now()}
	for k, v := range set {
		patched[k] = v
	}
	return patch(&r.items[i], patched, unset)
}

func (r *Users) DeleteUser(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

func (r *Users) RecordFailedLogin(_ context.Context, id primitive.ObjectID, maxAttempts int, lockFor time.Duration) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	u := &r.items[i]
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= maxAttempts {
		lockUntil := time.Now().Add(lockFor)
		u.FailedLoginAttempts = 0
		u.LockUntil = &lockUntil
	}
	out := clone(*u)
	return &out, nil
}

func (r *Users) ClearLockout(ctx context.Context, id primitive.ObjectID) error {
	return r.UpdateUser(ctx, id, bson.M{"failed_login_attempts": 0}, "lock_until")
}

func (r *Users) UnlinkEmployee(_ context.Context, employeeID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].EmployeeID != nil && *r.items[i].EmployeeID == employeeID {
			r.items[i].EmployeeID = nil
		}
	}
	return nil
}
