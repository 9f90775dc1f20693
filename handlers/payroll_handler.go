package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hrms-backend/models"
	"hrms-backend/pkg/payroll"
	util "hrms-backend/pkg/utils"
	"hrms-backend/repository"
)

const generateAllTimeout = 60 * time.Second

// payrollStatusRank orders the payroll lifecycle; a status change may only move one step forward.
var payrollStatusRank = map[string]int{
	models.PayrollDraft:     0,
	models.PayrollProcessed: 1,
	models.PayrollPaid:      2,
}

type PayrollHandler struct {
	payrollRepo    repository.PayrollRepository
	employeeRepo   repository.EmployeeRepository
	attendanceRepo repository.AttendanceRepository
	notifier       *Notifier
	rates          payroll.Rates
	now            func() time.Time
}

func NewPayrollHandler(payrollRepo repository.PayrollRepository, employeeRepo repository.EmployeeRepository, attendanceRepo repository.AttendanceRepository, notifier *Notifier, rates payroll.Rates) *PayrollHandler {
	return &PayrollHandler{
		payrollRepo:    payrollRepo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		notifier:       notifier,
		rates:          rates,
		now:            time.Now,
	}
}

// GeneratePayroll godoc
// @Summary Generate a payroll
// @Description Computes one employee's pay for a month from salary, attendance and the configured rates.
// @Tags Payroll
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payroll body models.PayrollGeneratePayload true "Period and adjustments"
// @Success 201 {object} models.Payroll
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /payroll/generate [post]
func (h *PayrollHandler) GeneratePayroll(c *fiber.Ctx) error {
	var payload models.PayrollGeneratePayload
	if err := bind(c, &payload); err != nil {
		return err
	}
	employeeID, _ := primitive.ObjectIDFromHex(payload.EmployeeID)

	ctx, cancel := withTimeout(c)
	defer cancel()

	emp, err := h.employeeRepo.FindByID(ctx, employeeID)
	if err != nil {
		return storeError(err, "Employee")
	}

	p, err := h.build(ctx, emp, payload.Month, payload.Year, payroll.Input{
		Allowances:      payload.Allowances,
		Bonus:           payload.Bonus,
		OtherDeductions: payload.OtherDeductions,
	})
	if err != nil {
		return err
	}
	p.Notes = payload.Notes

	if err := h.payrollRepo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fiber.NewError(fiber.StatusBadRequest, "Payroll for this employee and period already exists")
		}
		return err
	}

	h.notifier.NotifyEmployee(ctx, emp.ID, models.NotificationPayroll, "Payslip generated",
		fmt.Sprintf("Your payslip for %02d/%d is available.", p.Month, p.Year), "/payroll/"+p.ID.Hex())
	return c.Status(fiber.StatusCreated).JSON(p)
}

// GenerateAllPayrolls godoc
// @Summary Generate payroll for all active employees
// @Description Employees that already have a payroll for the period are skipped.
// @Tags Payroll
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param period body models.PayrollGenerateAllPayload true "Period"
// @Success 201 {object} object{created=int,skipped=int,failed=int,payrolls=[]models.Payroll}
// @Router /payroll/generate-all [post]
func (h *PayrollHandler) GenerateAllPayrolls(c *fiber.Ctx) error {
	var payload models.PayrollGenerateAllPayload
	if err := bind(c, &payload); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), generateAllTimeout)
	defer cancel()

	employees, err := h.employeeRepo.ListAll(ctx, models.EmployeeStatusActive)
	if err != nil {
		return err
	}
	existing, err := h.payrollRepo.List(ctx, models.PayrollFilter{Month: payload.Month, Year: payload.Year})
	if err != nil {
		return err
	}
	done := make(map[primitive.ObjectID]bool, len(existing))
	for _, p := range existing {
		done[p.EmployeeID] = true
	}

	created := []models.Payroll{}
	skipped, failed := 0, 0
	for i := range employees {
		emp := &employees[i]
		if done[emp.ID] {
			skipped++
			continue
		}

		p, err := h.build(ctx, emp, payload.Month, payload.Year, payroll.Input{})
		if err == nil {
			err = h.payrollRepo.Create(ctx, p)
		}
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			skipped++
		case err != nil:
			failed++
			log.Printf("ERROR: payroll generation failed for employee %s: %v", emp.ID.Hex(), err)
		default:
			created = append(created, *p)
			h.notifier.NotifyEmployee(ctx, emp.ID, models.NotificationPayroll, "Payslip generated",
				fmt.Sprintf("Your payslip for %02d/%d is available.", p.Month, p.Year), "/payroll/"+p.ID.Hex())
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"created":  len(created),
		"skipped":  skipped,
		"failed":   failed,
		"payrolls": created,
	})
}

// build computes a draft payroll for emp. Absent days come from the month's attendance records.
func (h *PayrollHandler) build(ctx context.Context, emp *models.Employee, month, year int, in payroll.Input) (*models.Payroll, error) {
	first, last := util.MonthRange(year, month)
	workingDays, err := util.CountWorkingDays(first, last)
	if err != nil {
		return nil, err
	}

	records, err := h.attendanceRepo.FindInRange(ctx, &emp.ID, first.Format(util.DateLayout), last.Format(util.DateLayout))
	if err != nil {
		return nil, err
	}

	in.AnnualSalary = emp.Salary
	in.WorkingDays = workingDays
	in.AbsentDays = payroll.AbsentDays(records)

	p := &models.Payroll{
		EmployeeID: emp.ID,
		Month:      month,
		Year:       year,
		Status:     models.PayrollDraft,
	}
	payroll.Calculate(in, h.rates).Apply(p)
	return p, nil
}

// GetAllPayrolls godoc
// @Summary List payrolls
// @Tags Payroll
// @Produce json
// @Security BearerAuth
// @Param month query int false "1-12"
// @Param year query int false "Year"
// @Param employee query string false "Employee ID"
// @Param status query string false "draft, processed or paid"
// @Success 200 {array} models.Payroll
// @Router /payroll [get]
func (h *PayrollHandler) GetAllPayrolls(c *fiber.Ctx) error {
	employeeID, err := queryID(c, "employee")
	if err != nil {
		return err
	}
	return h.list(c, models.PayrollFilter{
		EmployeeID: employeeID,
		Month:      c.QueryInt("month"),
		Year:       c.QueryInt("year"),
		Status:     c.Query("status"),
	})
}

// GetMyPayrolls godoc
// @Summary Own payslips
// @Tags Payroll
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year"
// @Success 200 {array} models.Payroll
// @Router /payroll/me [get]
func (h *PayrollHandler) GetMyPayrolls(c *fiber.Ctx) error {
	_, employeeID, err := selfEmployee(c)
	if err != nil {
		return err
	}
	return h.list(c, models.PayrollFilter{EmployeeID: &employeeID, Year: c.QueryInt("year")})
}

func (h *PayrollHandler) list(c *fiber.Ctx, filter models.PayrollFilter) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	payrolls, err := h.payrollRepo.List(ctx, filter)
	if err != nil {
		return err
	}
	return c.JSON(payrolls)
}

// GetPayrollByID godoc
// @Summary Get payroll
// @Tags Payroll
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payroll ID"
// @Success 200 {object} models.Payroll
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /payroll/{id} [get]
func (h *PayrollHandler) GetPayrollByID(c *fiber.Ctx) error {
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

	p, err := h.payrollRepo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "Payroll")
	}
	if !claims.HasRole(models.HRStaffRoles...) && !claims.Owns(p.EmployeeID) {
		return fiber.NewError(fiber.StatusForbidden, "You can only view your own payslips")
	}
	return c.JSON(p)
}

// UpdatePayrollStatus godoc
// @Summary Advance payroll status
// @Description Status only moves forward: draft, processed, paid. Paid records the payment time.
// @Tags Payroll
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payroll ID"
// @Param status body models.PayrollStatusPayload true "New status"
// @Success 200 {object} models.Payroll
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /payroll/{id}/status [put]
func (h *PayrollHandler) UpdatePayrollStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var payload models.PayrollStatusPayload
	if err := bind(c, &payload); err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	p, err := h.payrollRepo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "Payroll")
	}
	if payrollStatusRank[payload.Status] != payrollStatusRank[p.Status]+1 {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Cannot change payroll status from %s to %s", p.Status, payload.Status))
	}

	set := bson.M{"status": payload.Status}
	if payload.Status == models.PayrollPaid {
		now := h.now()
		set["paid_at"] = now
		p.PaidAt = &now
	}
	if err := h.payrollRepo.Update(ctx, id, set); err != nil {
		return storeError(err, "Payroll")
	}
	p.Status = payload.Status

	h.notifier.NotifyEmployee(ctx, p.EmployeeID, models.NotificationPayroll, "Payroll "+p.Status,
		fmt.Sprintf("Your payroll for %02d/%d is now %s.", p.Month, p.Year, p.Status), "/payroll/"+p.ID.Hex())
	return c.JSON(p)
}

// DeletePayroll godoc
// @Summary Delete payroll
// @Description Paid payrolls cannot be deleted.
// @Tags Payroll
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payroll ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /payroll/{id} [delete]
func (h *PayrollHandler) DeletePayroll(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	p, err := h.payrollRepo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "Payroll")
	}
	if p.Status == models.PayrollPaid {
		return fiber.NewError(fiber.StatusBadRequest, "Paid payrolls cannot be deleted")
	}
	if err := h.payrollRepo.Delete(ctx, id); err != nil {
		return storeError(err, "Payroll")
	}
	return c.JSON(models.MessageResponse{Message: "Payroll deleted"})
}
