package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"hrms-backend/models"
	"hrms-backend/pkg/report"
	util "hrms-backend/pkg/utils"
	"hrms-backend/repository"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	employeeRepo   repository.EmployeeRepository
	deptRepo       repository.DepartmentRepository
	attendanceRepo repository.AttendanceRepository
	leaveRepo      repository.LeaveRequestRepository
	payrollRepo    repository.PayrollRepository
	location       *time.Location
	now            func() time.Time
}

func NewReportHandler(
	employeeRepo repository.EmployeeRepository,
	deptRepo repository.DepartmentRepository,
	attendanceRepo repository.AttendanceRepository,
	leaveRepo repository.LeaveRequestRepository,
	payrollRepo repository.PayrollRepository,
	location *time.Location,
) *ReportHandler {
	if location == nil {
		location = time.Local
	}
	return &ReportHandler{
		employeeRepo:   employeeRepo,
		deptRepo:       deptRepo,
		attendanceRepo: attendanceRepo,
		leaveRepo:      leaveRepo,
		payrollRepo:    payrollRepo,
		location:       location,
		now:            time.Now,
	}
}

func (h *ReportHandler) localNow() time.Time {
	return h.now().In(h.location)
}

// GetDashboard godoc
// @Summary Dashboard statistics
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.DashboardStats
// @Router /reports/dashboard [get]
func (h *ReportHandler) GetDashboard(c *fiber.Ctx) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	var (
		stats models.DashboardStats
		err   error
	)
	if stats.TotalEmployees, err = h.employeeRepo.Count(ctx, ""); err != nil {
		return err
	}
	if stats.ActiveEmployees, err = h.employeeRepo.Count(ctx, models.EmployeeStatusActive); err != nil {
		return err
	}
	if stats.OnLeaveEmployees, err = h.employeeRepo.Count(ctx, models.EmployeeStatusOnLeave); err != nil {
		return err
	}
	if stats.TotalDepartments, err = h.deptRepo.CountDocuments(ctx); err != nil {
		return err
	}
	if stats.PendingLeaveRequests, err = h.leaveRepo.CountByStatus(ctx, models.LeavePending); err != nil {
		return err
	}

	now := h.localNow()
	today := now.Format(util.DateLayout)
	records, err := h.attendanceRepo.FindInRange(ctx, nil, today, today)
	if err != nil {
		return err
	}
	stats.TodayAttendance = report.CountByStatus(records)

	if stats.MonthPayrollTotal, err = h.payrollRepo.SumNet(ctx, int(now.Month()), now.Year()); err != nil {
		return err
	}

	if stats.DepartmentHeadcount, err = h.departmentRows(ctx); err != nil {
		return err
	}
	return c.JSON(stats)
}

// GetAttendanceReport godoc
// @Summary Monthly attendance report
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param month query int false "1-12, default current month"
// @Param year query int false "Default current year"
// @Success 200 {object} models.AttendanceReport
// @Router /reports/attendance [get]
func (h *ReportHandler) GetAttendanceReport(c *fiber.Ctx) error {
	r, err := h.attendanceReport(c)
	if err != nil {
		return err
	}
	return c.JSON(r)
}

// ExportAttendanceReport godoc
// @Summary Monthly attendance report as XLSX
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param month query int false "1-12, default current month"
// @Param year query int false "Default current year"
// @Success 200 {file} binary
// @Router /reports/attendance/export [get]
func (h *ReportHandler) ExportAttendanceReport(c *fiber.Ctx) error {
	r, err := h.attendanceReport(c)
	if err != nil {
		return err
	}
	buf, err := report.AttendanceWorkbook(r)
	if err != nil {
		return err
	}
	return sendWorkbook(c, fmt.Sprintf("attendance-%d-%02d.xlsx", r.Year, r.Month), buf.Bytes())
}

func (h *ReportHandler) attendanceReport(c *fiber.Ctx) (models.AttendanceReport, error) {
	month, year, err := monthYear(c, h.localNow())
	if err != nil {
		return models.AttendanceReport{}, err
	}
	first, last := util.MonthRange(year, month)
	workingDays, err := util.CountWorkingDays(first, last)
	if err != nil {
		return models.AttendanceReport{}, err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	employees, err := h.employeeRepo.ListAll(ctx, "")
	if err != nil {
		return models.AttendanceReport{}, err
	}
	records, err := h.attendanceRepo.FindInRange(ctx, nil, first.Format(util.DateLayout), last.Format(util.DateLayout))
	if err != nil {
		return models.AttendanceReport{}, err
	}
	return report.BuildAttendanceReport(employees, records, month, year, workingDays), nil
}

// GetLeaveReport godoc
// @Summary Yearly leave report
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param year query int false "Default current year"
// @Success 200 {object} models.LeaveReport
// @Router /reports/leave [get]
func (h *ReportHandler) GetLeaveReport(c *fiber.Ctx) error {
	year := c.QueryInt("year", h.localNow().Year())

	ctx, cancel := withTimeout(c)
	defer cancel()

	requests, err := h.leaveRepo.List(ctx, models.LeaveRequestFilter{Year: year})
	if err != nil {
		return err
	}
	return c.JSON(report.BuildLeaveReport(requests, year))
}

// GetPayrollReport godoc
// @Summary Monthly payroll report
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param month query int false "1-12, default current month"
// @Param year query int false "Default current year"
// @Success 200 {object} models.PayrollReport
// @Router /reports/payroll [get]
func (h *ReportHandler) GetPayrollReport(c *fiber.Ctx) error {
	r, err := h.payrollReport(c)
	if err != nil {
		return err
	}
	return c.JSON(r)
}

// ExportPayrollReport godoc
// @Summary Monthly payroll report as XLSX
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param month query int false "1-12, default current month"
// @Param year query int false "Default current year"
// @Success 200 {file} binary
// @Router /reports/payroll/export [get]
func (h *ReportHandler) ExportPayrollReport(c *fiber.Ctx) error {
	r, err := h.payrollReport(c)
	if err != nil {
		return err
	}
	buf, err := report.PayrollWorkbook(r)
	if err != nil {
		return err
	}
	return sendWorkbook(c, fmt.Sprintf("payroll-%d-%02d.xlsx", r.Year, r.Month), buf.Bytes())
}

func (h *ReportHandler) payrollReport(c *fiber.Ctx) (models.PayrollReport, error) {
	month, year, err := monthYear(c, h.localNow())
	if err != nil {
		return models.PayrollReport{}, err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	payrolls, err := h.payrollRepo.List(ctx, models.PayrollFilter{Month: month, Year: year})
	if err != nil {
		return models.PayrollReport{}, err
	}
	employees, err := h.employeeRepo.ListAll(ctx, "")
	if err != nil {
		return models.PayrollReport{}, err
	}
	departments, err := h.deptRepo.GetAllDepartments(ctx)
	if err != nil {
		return models.PayrollReport{}, err
	}
	return report.BuildPayrollReport(payrolls, employees, departments, month, year), nil
}

// GetDepartmentReport godoc
// @Summary Headcount and salary cost per department
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.DepartmentRow
// @Router /reports/departments [get]
func (h *ReportHandler) GetDepartmentReport(c *fiber.Ctx) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	rows, err := h.departmentRows(ctx)
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

func (h *ReportHandler) departmentRows(ctx context.Context) ([]models.DepartmentRow, error) {
	counts, err := h.employeeRepo.HeadcountByDepartment(ctx)
	if err != nil {
		return nil, err
	}
	departments, err := h.deptRepo.GetAllDepartments(ctx)
	if err != nil {
		return nil, err
	}
	return report.BuildDepartmentReport(counts, departments), nil
}

func sendWorkbook(c *fiber.Ctx, filename string, data []byte) error {
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
