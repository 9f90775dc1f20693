package memory

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"hrms-backend/models"
	"hrms-backend/repository"
)

type Notifications struct {
	mu    sync.Mutex
	items []models.Notification
}

func NewNotifications() *Notifications {
	return &Notifications{}
}

var _ repository.NotificationRepository = (*Notifications)(nil)

func (r *Notifications) index(id, userID primitive.ObjectID) int {
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			return i
		}
	}
	return -1
}

func (r *Notifications) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	n.ID = primitive.NewObjectID()
	n.CreatedAt = now
	n.UpdatedAt = now
	r.items = append(r.items, *n)
	return nil
}

func (r *Notifications) ListByUser(_ context.Context, userID primitive.ObjectID, unreadOnly bool, p, limit int64) ([]models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := []models.Notification{}
	for _, n := range r.items {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		matched = append(matched, n)
	}
	sortBy(matched, func(a, b models.Notification) bool { return a.CreatedAt.After(b.CreatedAt) })
	return page(matched, p, limit), int64(len(matched)), nil
}

func (r *Notifications) CountUnread(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, item := range r.items {
		if item.UserID == userID && !item.Read {
			n++
		}
	}
	return n, nil
}

func (r *Notifications) MarkRead(_ context.Context, id, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id, userID)
	if i < 0 {
		return repository.ErrNotFound
	}
	r.items[i].Read = true
	r.items[i].UpdatedAt = time.Now()
	return nil
}

func (r *Notifications) MarkAllRead(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for i := range r.items {
		if r.items[i].UserID == userID && !r.items[i].Read {
			r.items[i].Read = true
			r.items[i].UpdatedAt = time.Now()
			n++
		}
	}
	return n, nil
}

func (r *Notifications) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id, userID)
	if i < 0 {
		return repository.ErrNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}
