package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hrms-backend/models"
	"hrms-backend/repository"
)

type DepartmentHandler struct {
	deptRepo     repository.DepartmentRepository
	employeeRepo repository.EmployeeRepository
}

func NewDepartmentHandler(deptRepo repository.DepartmentRepository, employeeRepo repository.EmployeeRepository) *DepartmentHandler {
	return &DepartmentHandler{
		deptRepo:     deptRepo,
		employeeRepo: employeeRepo,
	}
}

// CreateDepartment godoc
// @Summary Create department
// @Tags Departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param department body models.DepartmentPayload true "New department"
// @Success 201 {object} models.Department
// @Failure 400 {object} models.ValidationErrorResponse
// @Router /departments [post]
func (h *DepartmentHandler) CreateDepartment(c *fiber.Ctx) error {
	var payload models.DepartmentPayload
	if err := bind(c, &payload); err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	dept := &models.Department{Name: payload.Name, Description: payload.Description}
	managerID, err := h.resolveManager(c, payload.ManagerID)
	if err != nil {
		return err
	}
	dept.ManagerID = managerID

	if err := h.deptRepo.CreateDepartment(ctx, dept); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fiber.NewError(fiber.StatusBadRequest, "Department name already exists")
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dept)
}

// GetAllDepartments godoc
// @Summary List departments
// @Description Every department with its current headcount.
// @Tags Departments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.DepartmentWithCount
// @Router /departments [get]
func (h *DepartmentHandler) GetAllDepartments(c *fiber.Ctx) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	departments, err := h.deptRepo.GetAllDepartments(ctx)
	if err != nil {
		return err
	}
	counts, err := h.employeeRepo.HeadcountByDepartment(ctx)
	if err != nil {
		return err
	}

	byDept := make(map[primitive.ObjectID]int64, len(counts))
	for _, cnt := range counts {
		if cnt.DepartmentID != nil {
			byDept[*cnt.DepartmentID] = cnt.Count
		}
	}

	out := make([]models.DepartmentWithCount, 0, len(departments))
	for _, d := range departments {
		out = append(out, models.DepartmentWithCount{Department: d, EmployeeCount: byDept[d.ID]})
	}
	return c.JSON(out)
}

// GetDepartmentByID godoc
// @Summary Get department
// @Tags Departments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Department ID"
// @Success 200 {object} models.DepartmentWithCount
// @Failure 404 {object} models.ErrorResponse
// @Router /departments/{id} [get]
func (h *DepartmentHandler) GetDepartmentByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	dept, err := h.deptRepo.GetDepartmentByID(ctx, id)
	if err != nil {
		return storeError(err, "Department")
	}
	count, err := h.employeeRepo.CountByDepartment(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(models.DepartmentWithCount{Department: *dept, EmployeeCount: count})
}

// UpdateDepartment godoc
// @Summary Update department
// @Description An empty manager_id removes the manager.
// @Tags Departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Department ID"
// @Param department body models.DepartmentPayload true "Department data"
// @Success 200 {object} models.Department
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /departments/{id} [put]
func (h *DepartmentHandler) UpdateDepartment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var payload models.DepartmentPayload
	if err := bind(c, &payload); err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	managerID, err := h.resolveManager(c, payload.ManagerID)
	if err != nil {
		return err
	}

	set := bson.M{"name": payload.Name, "description": payload.Description}
	var unset []string
	if managerID != nil {
		set["manager_id"] = *managerID
	} else {
		unset = append(unset, "manager_id")
	}

	if err := h.deptRepo.UpdateDepartment(ctx, id, set, unset...); err != nil {
		return storeError(err, "Department")
	}

	dept, err := h.deptRepo.GetDepartmentByID(ctx, id)
	if err != nil {
		return storeError(err, "Department")
	}
	return c.JSON(dept)
}

// DeleteDepartment godoc
// @Summary Delete department
// @Description Refused while employees are still assigned.
// @Tags Departments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Department ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /departments/{id} [delete]
func (h *DepartmentHandler) DeleteDepartment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	count, err := h.employeeRepo.CountByDepartment(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Department still has "+itoa(int(count))+" employee(s) assigned")
	}

	if err := h.deptRepo.DeleteDepartment(ctx, id); err != nil {
		return storeError(err, "Department")
	}
	return c.JSON(models.MessageResponse{Message: "Department deleted"})
}

// resolveManager checks that a non-empty manager id points at an existing employee.
func (h *DepartmentHandler) resolveManager(c *fiber.Ctx, hex string) (*primitive.ObjectID, error) {
	managerID, err := optionalObjectID(hex)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid manager_id")
	}
	if managerID == nil {
		return nil, nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	if _, err := h.employeeRepo.FindByID(ctx, *managerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fiber.NewError(fiber.StatusBadRequest, "manager_id does not reference an existing employee")
		}
		return nil, err
	}
	return managerID, nil
}
