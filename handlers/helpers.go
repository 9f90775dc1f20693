package handlers

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hrms-backend/models"
	util "hrms-backend/pkg/utils"
	"hrms-backend/repository"
)

const requestTimeout = 5 * time.Second

// ValidationError carries field-level failures to ErrorHandler.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// ErrorHandler renders every error returned by a handler as {"message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(models.ValidationErrorResponse{
			Message: "Validation failed",
			Errors:  verr.Errors,
		})
	}

	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code = ferr.Code
		message = ferr.Message
	} else {
		log.Printf("ERROR %s %s: %v", c.Method(), c.OriginalURL(), err)
	}
	return c.Status(code).JSON(models.ErrorResponse{Message: message})
}

// bind parses the JSON body into payload and runs struct validation.
func bind(c *fiber.Ctx, payload interface{}) error {
	if err := c.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := util.ValidateStruct(payload); errs != nil {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// storeError maps repository sentinels onto HTTP errors. Anything else is returned as-is and becomes a 500.
func storeError(err error, what string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, what+" not found")
	case errors.Is(err, repository.ErrDuplicate):
		return fiber.NewError(fiber.StatusBadRequest, what+" already exists")
	case errors.Is(err, repository.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, what+" was modified concurrently, please retry")
	}
	return err
}

func withTimeout(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), requestTimeout)
}

func currentUser(c *fiber.Ctx) (*models.Claims, error) {
	claims, ok := c.Locals("user").(*models.Claims)
	if !ok || claims == nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
	}
	return claims, nil
}

// selfEmployee returns the employee id linked to the caller's account.
func selfEmployee(c *fiber.Ctx) (*models.Claims, primitive.ObjectID, error) {
	claims, err := currentUser(c)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	if claims.EmployeeID == nil {
		return nil, primitive.NilObjectID, fiber.NewError(fiber.StatusForbidden, "No employee profile is linked to this account")
	}
	return claims, *claims.EmployeeID, nil
}

func paramID(c *fiber.Ctx, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Params(name))
	if err != nil {
		return primitive.NilObjectID, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

// queryID parses an optional ObjectID query parameter.
func queryID(c *fiber.Ctx, name string) (*primitive.ObjectID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return &id, nil
}

func pagination(c *fiber.Ctx) (int64, int64) {
	page := int64(c.QueryInt("page", 1))
	limit := int64(c.QueryInt("limit", 10))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// monthYear reads month and year query params, defaulting to the month containing now.
func monthYear(c *fiber.Ctx, now time.Time) (int, int, error) {
	month := c.QueryInt("month", int(now.Month()))
	year := c.QueryInt("year", now.Year())
	if month < 1 || month > 12 {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "year must be between 2000 and 2100")
	}
	return month, year, nil
}

func optionalObjectID(hex string) (*primitive.ObjectID, error) {
	if hex == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

func paginated(data interface{}, total, page, limit int64) models.PaginatedResponse {
	return models.PaginatedResponse{Data: data, Total: total, Page: page, Limit: limit}
}
