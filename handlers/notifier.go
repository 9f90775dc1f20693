package handlers

import (
	"context"
	"errors"
	"log"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"hrms-backend/models"
	"hrms-backend/repository"
)

// Notifier writes in-app notifications as a side effect of other operations.
// Failures are logged and never returned.
type Notifier struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
}

func NewNotifier(notifications repository.NotificationRepository, users repository.UserRepository) *Notifier {
	return &Notifier{notifications: notifications, users: users}
}

func (n *Notifier) NotifyUser(ctx context.Context, userID primitive.ObjectID, kind, title, message, link string) {
	if n == nil {
		return
	}
	err := n.notifications.Create(ctx, &models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    kind,
		Link:    link,
	})
	if err != nil {
		log.Printf("WARN: failed to notify user %s: %v", userID.Hex(), err)
	}
}

// NotifyEmployee notifies the user account linked to employeeID, if there is one.
func (n *Notifier) NotifyEmployee(ctx context.Context, employeeID primitive.ObjectID, kind, title, message, link string) {
	if n == nil {
		return
	}
	user, err := n.users.FindUserByEmployeeID(ctx, employeeID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("WARN: failed to look up account for employee %s: %v", employeeID.Hex(), err)
		}
		return
	}
	n.NotifyUser(ctx, user.ID, kind, title, message, link)
}
