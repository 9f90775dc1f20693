package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hrms-backend/models"
	"hrms-backend/repository"
)

// codeAttempts bounds how many sequential codes Create tries when an auto-assigned code is taken.
const codeAttempts = 5

type EmployeeHandler struct {
	employeeRepo repository.EmployeeRepository
	deptRepo     repository.DepartmentRepository
	userRepo     repository.UserRepository
	balanceRepo  repository.LeaveBalanceRepository
	now          func() time.Time
}

func NewEmployeeHandler(employeeRepo repository.EmployeeRepository, deptRepo repository.DepartmentRepository, userRepo repository.UserRepository, balanceRepo repository.LeaveBalanceRepository) *EmployeeHandler {
	return &EmployeeHandler{
		employeeRepo: employeeRepo,
		deptRepo:     deptRepo,
		userRepo:     userRepo,
		balanceRepo:  balanceRepo,
		now:          time.Now,
	}
}

// GetAllEmployees godoc
// @Summary List employees
// @Tags Employees
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page (max 100)"
// @Param department query string false "Department ID"
// @Param status query string false "active, on-leave, resigned or terminated"
// @Param search query string false "Name, email or employee code"
// @Success 200 {object} models.PaginatedResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /employees [get]
func (h *EmployeeHandler) GetAllEmployees(c *fiber.Ctx) error {
	departmentID, err := queryID(c, "department")
	if err != nil {
		return err
	}
	page, limit := pagination(c)

	ctx, cancel := withTimeout(c)
	defer cancel()

	employees, total, err := h.employeeRepo.List(ctx, models.EmployeeFilter{
		DepartmentID: departmentID,
		Status:       c.Query("status"),
		Search:       c.Query("search"),
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(paginated(employees, total, page, limit))
}

// GetMyProfile godoc
// @Summary Own employee profile
// @Tags Employees
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Employee
// @Failure 403 {object} models.ErrorResponse
// @Router /employees/me [get]
func (h *EmployeeHandler) GetMyProfile(c *fiber.Ctx) error {
	_, employeeID, err := selfEmployee(c)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	emp, err := h.employeeRepo.FindByID(ctx, employeeID)
	if err != nil {
		return storeError(err, "Employee")
	}
	return c.JSON(emp)
}

// GetEmployeeByID godoc
// @Summary Get employee
// @Description Reviewers can read any employee; other users only their own record.
// @Tags Employees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Success 200 {object} models.Employee
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /employees/{id} [get]
func (h *EmployeeHandler) GetEmployeeByID(c *fiber.Ctx) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if !claims.HasRole(models.ReviewerRoles...) && !claims.Owns(id) {
		return fiber.NewError(fiber.StatusForbidden, "You can only view your own profile")
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	emp, err := h.employeeRepo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "Employee")
	}
	return c.JSON(emp)
}

// CreateEmployee godoc
// @Summary Create employee
// @Description Assigns the next EMP0000 code when employee_code is omitted and opens this year's leave balance.
// @Tags Employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param employee body models.EmployeeCreatePayload true "New employee"
// @Success 201 {object} models.Employee
// @Failure 400 {object} models.ValidationErrorResponse
// @Router /employees [post]
func (h *EmployeeHandler) CreateEmployee(c *fiber.Ctx) error {
	var payload models.EmployeeCreatePayload
	if err := bind(c, &payload); err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	departmentID, err := h.resolveDepartment(c, payload.DepartmentID)
	if err != nil {
		return err
	}

	if _, err := h.employeeRepo.FindByEmail(ctx, payload.Email); err == nil {
		return fiber.NewError(fiber.StatusBadRequest, "An employee with this email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	status := payload.Status
	if status == "" {
		status = models.EmployeeStatusActive
	}
	emp := &models.Employee{
		EmployeeCode:     payload.EmployeeCode,
		FirstName:        payload.FirstName,
		LastName:         payload.LastName,
		Email:            payload.Email,
		Phone:            payload.Phone,
		Position:         payload.Position,
		DepartmentID:     departmentID,
		Salary:           payload.Salary,
		DateOfJoining:    payload.DateOfJoining,
		Status:           status,
		Address:          payload.Address,
		DateOfBirth:      payload.DateOfBirth,
		Gender:           payload.Gender,
		EmergencyContact: payload.EmergencyContact,
	}

	if err := h.insertWithCode(c, emp, payload.EmployeeCode == ""); err != nil {
		return err
	}

	if _, err := h.balanceRepo.GetOrCreate(ctx, emp.ID, h.now().Year()); err != nil {
		log.Printf("WARN: failed to open leave balance for employee %s: %v", emp.ID.Hex(), err)
	}
	return c.Status(fiber.StatusCreated).JSON(emp)
}

func (h *EmployeeHandler) insertWithCode(c *fiber.Ctx, emp *models.Employee, autoCode bool) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	if !autoCode {
		if err := h.employeeRepo.Create(ctx, emp); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fiber.NewError(fiber.StatusBadRequest, "Employee code or email already exists")
			}
			return err
		}
		return nil
	}

	count, err := h.employeeRepo.Count(ctx, "")
	if err != nil {
		return err
	}
	for i := int64(1); i <= codeAttempts; i++ {
		emp.EmployeeCode = fmt.Sprintf("EMP%04d", count+i)
		err = h.employeeRepo.Create(ctx, emp)
		if !errors.Is(err, repository.ErrDuplicate) {
			return err
		}
	}
	return fiber.NewError(fiber.StatusConflict, "Could not assign a free employee code, please retry")
}

// UpdateEmployee godoc
// @Summary Update employee
// @Tags Employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Param employee body models.EmployeeUpdatePayload true "Fields to change"
// @Success 200 {object} models.Employee
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /employees/{id} [put]
func (h *EmployeeHandler) UpdateEmployee(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var payload models.EmployeeUpdatePayload
	if err := bind(c, &payload); err != nil {
		return err
	}

	departmentID, err := h.resolveDepartment(c, payload.DepartmentID)
	if err != nil {
		return err
	}

	set := bson.M{}
	setIf := func(key, value string) {
		if value != "" {
			set[key] = value
		}
	}
	setIf("first_name", payload.FirstName)
	setIf("last_name", payload.LastName)
	setIf("email", strings.ToLower(strings.TrimSpace(payload.Email)))
	setIf("phone", payload.Phone)
	setIf("position", payload.Position)
	setIf("date_of_joining", payload.DateOfJoining)
	setIf("status", payload.Status)
	setIf("address", payload.Address)
	setIf("date_of_birth", payload.DateOfBirth)
	setIf("gender", payload.Gender)
	if departmentID != nil {
		set["department_id"] = *departmentID
	}
	if payload.Salary != nil {
		set["salary"] = *payload.Salary
	}
	if payload.EmergencyContact != nil {
		set["emergency_contact"] = payload.EmergencyContact
	}
	if len(set) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "No fields to update")
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.employeeRepo.Update(ctx, id, set); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fiber.NewError(fiber.StatusBadRequest, "An employee with this email already exists")
		}
		return storeError(err, "Employee")
	}

	emp, err := h.employeeRepo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "Employee")
	}
	return c.JSON(emp)
}

// DeleteEmployee godoc
// @Summary Delete employee
// @Description Removes the employee and unlinks any user account pointing at it.
// @Tags Employees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /employees/{id} [delete]
func (h *EmployeeHandler) DeleteEmployee(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.employeeRepo.Delete(ctx, id); err != nil {
		return storeError(err, "Employee")
	}
	if err := h.userRepo.UnlinkEmployee(ctx, id); err != nil {
		log.Printf("WARN: employee %s deleted but user unlink failed: %v", id.Hex(), err)
	}
	return c.JSON(models.MessageResponse{Message: "Employee deleted"})
}

func (h *EmployeeHandler) resolveDepartment(c *fiber.Ctx, hex string) (*primitive.ObjectID, error) {
	departmentID, err := optionalObjectID(hex)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid department_id")
	}
	if departmentID == nil {
		return nil, nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	if _, err := h.deptRepo.GetDepartmentByID(ctx, *departmentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fiber.NewError(fiber.StatusBadRequest, "department_id does not reference an existing department")
		}
		return nil, err
	}
	return departmentID, nil
}
