package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hrms-backend/models"
	"hrms-backend/repository"
)

type NotificationHandler struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
}

func NewNotificationHandler(repo repository.NotificationRepository, userRepo repository.UserRepository) *NotificationHandler {
	return &NotificationHandler{repo: repo, userRepo: userRepo}
}

// GetMyNotifications godoc
// @Summary Own notifications
// @Description Newest first.
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} models.PaginatedResponse
// @Router /notifications [get]
func (h *NotificationHandler) GetMyNotifications(c *fiber.Ctx) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}
	page, limit := pagination(c)

	ctx, cancel := withTimeout(c)
	defer cancel()

	items, total, err := h.repo.ListByUser(ctx, claims.UserID, c.QueryBool("unread"), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(paginated(items, total, page, limit))
}

// GetUnreadCount godoc
// @Summary Unread notification count
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{count=int}
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	count, err := h.repo.CountUnread(ctx, claims.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"count": count})
}

// MarkRead godoc
// @Summary Mark a notification read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.repo.MarkRead(ctx, id, claims.UserID); err != nil {
		return storeError(err, "Notification")
	}
	return c.JSON(models.MessageResponse{Message: "Notification marked as read"})
}

// MarkAllRead godoc
// @Summary Mark all notifications read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string,updated=int}
// @Router /notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	n, err := h.repo.MarkAllRead(ctx, claims.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "All notifications marked as read", "updated": n})
}

// DeleteNotification godoc
// @Summary Delete a notification
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) DeleteNotification(c *fiber.Ctx) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.repo.Delete(ctx, id, claims.UserID); err != nil {
		return storeError(err, "Notification")
	}
	return c.JSON(models.MessageResponse{Message: "Notification deleted"})
}

// CreateNotification godoc
// @Summary Send a system notification
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param notification body models.NotificationCreatePayload true "Notification"
// @Success 201 {object} models.Notification
// @Failure 404 {object} models.ErrorResponse
// @Router /notifications [post]
func (h *NotificationHandler) CreateNotification(c *fiber.Ctx) error {
	var payload models.NotificationCreatePayload
	if err := bind(c, &payload); err != nil {
		return err
	}
	userID, _ := primitive.ObjectIDFromHex(payload.UserID)

	ctx, cancel := withTimeout(c)
	defer cancel()

	if _, err := h.userRepo.FindUserByID(ctx, userID); err != nil {
		return storeError(err, "User")
	}

	n := &models.Notification{
		UserID:  userID,
		Title:   payload.Title,
		Message: payload.Message,
		Type:    models.NotificationSystem,
		Link:    payload.Link,
	}
	if err := h.repo.Create(ctx, n); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(n)
}
