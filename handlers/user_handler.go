package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"

	"hrms-backend/models"
	"hrms-backend/pkg/password"
	"hrms-backend/repository"
)

type UserHandler struct {
	userRepo     repository.UserRepository
	employeeRepo repository.EmployeeRepository
}

func NewUserHandler(userRepo repository.UserRepository, employeeRepo repository.EmployeeRepository) *UserHandler {
	return &UserHandler{
		userRepo:     userRepo,
		employeeRepo: employeeRepo,
	}
}

// GetAllUsers godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10, max: 100)"
// @Param search query string false "Search by name or email"
// @Param role query string false "Filter by role"
// @Success 200 {object} models.PaginatedResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /users [get]
func (h *UserHandler) GetAllUsers(c *fiber.Ctx) error {
	page, limit := pagination(c)
	filter := models.UserFilter{
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Page:   page,
		Limit:  limit,
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	users, total, err := h.userRepo.GetAllUsers(ctx, filter)
	if err != nil {
		return err
	}
	return c.JSON(paginated(users, total, page, limit))
}

// GetUserByID godoc
// @Summary Get user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUserByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := h.userRepo.FindUserByID(ctx, id)
	if err != nil {
		return storeError(err, "User")
	}
	return c.JSON(user)
}

// CreateUser godoc
// @Summary Create user
// @Description Admin creates an account with any role.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body models.UserCreatePayload true "New user"
// @Success 201 {object} models.User
// @Failure 400 {object} models.ValidationErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var payload models.UserCreatePayload
	if err := bind(c, &payload); err != nil {
		return err
	}

	employeeID, err := optionalObjectID(payload.EmployeeID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid employee_id")
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if employeeID != nil {
		if _, err := h.employeeRepo.FindByID(ctx, *employeeID); err != nil {
			return storeError(err, "Employee")
		}
	}

	hashed, err := password.HashPassword(payload.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:       payload.Name,
		Email:      payload.Email,
		Password:   hashed,
		Role:       payload.Role,
		EmployeeID: employeeID,
		IsActive:   true,
	}
	if err := h.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fiber.NewError(fiber.StatusBadRequest, "Email is already registered")
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// UpdateUser godoc
// @Summary Update user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param user body models.UserUpdatePayload true "Fields to change"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var payload models.UserUpdatePayload
	if err := bind(c, &payload); err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	set := bson.M{}
	if payload.Name != "" {
		set["name"] = payload.Name
	}
	if payload.Role != "" {
		set["role"] = payload.Role
	}
	if payload.IsActive != nil {
		set["is_active"] = *payload.IsActive
	}
	if payload.EmployeeID != "" {
		employeeID, err := optionalObjectID(payload.EmployeeID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid employee_id")
		}
		if _, err := h.employeeRepo.FindByID(ctx, *employeeID); err != nil {
			return storeError(err, "Employee")
		}
		set["employee_id"] = *employeeID
	}
	if len(set) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "No fields to update")
	}

	if err := h.userRepo.UpdateUser(ctx, id, set); err != nil {
		return storeError(err, "User")
	}

	user, err := h.userRepo.FindUserByID(ctx, id)
	if err != nil {
		return storeError(err, "User")
	}
	return c.JSON(user)
}

// DeleteUser godoc
// @Summary Delete user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if id == claims.UserID {
		return fiber.NewError(fiber.StatusBadRequest, "You cannot delete your own account")
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.userRepo.DeleteUser(ctx, id); err != nil {
		return storeError(err, "User")
	}
	return c.JSON(models.MessageResponse{Message: "User deleted"})
}

// UnlockUser godoc
// @Summary Unlock user
// @Description Clears the failed login counter and any active lockout.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/unlock [post]
func (h *UserHandler) UnlockUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.userRepo.ClearLockout(ctx, id); err != nil {
		return storeError(err, "User")
	}
	return c.JSON(models.MessageResponse{Message: "User unlocked"})
}
