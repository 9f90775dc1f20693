package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hrms-backend/config"
	"hrms-backend/models"
	"hrms-backend/pkg/report"
	util "hrms-backend/pkg/utils"
	"hrms-backend/repository"
)

type AttendanceHandler struct {
	repo         repository.AttendanceRepository
	employeeRepo repository.EmployeeRepository
	work         config.WorkConfig
	now          func() time.Time
}

func NewAttendanceHandler(repo repository.AttendanceRepository, employeeRepo repository.EmployeeRepository, work config.WorkConfig) *AttendanceHandler {
	if work.Location == nil {
		work.Location = time.Local
	}
	return &AttendanceHandler{
		repo:         repo,
		employeeRepo: employeeRepo,
		work:         work,
		now:          time.Now,
	}
}

func (h *AttendanceHandler) localNow() time.Time {
	return h.now().In(h.work.Location)
}

// lateAfter is the last on-time clock-in for the day containing t.
func (h *AttendanceHandler) lateAfter(t time.Time) time.Time {
	y, m, d := t.Date()
	start := time.Date(y, m, d, h.work.StartHour, h.work.StartMinute, 0, 0, h.work.Location)
	return start.Add(h.work.LateGrace)
}

func workHours(in, out time.Time) float64 {
	return util.Round2(out.Sub(in).Hours())
}

// ClockIn godoc
// @Summary Clock in
// @Description Creates today's record as present, or late after the work start time plus grace.
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.ClockPayload false "Optional note"
// @Success 201 {object} models.Attendance
// @Failure 400 {object} models.ErrorResponse
// @Router /attendance/clock-in [post]
func (h *AttendanceHandler) ClockIn(c *fiber.Ctx) error {
	_, employeeID, err := selfEmployee(c)
	if err != nil {
		return err
	}

	var payload models.ClockPayload
	if len(c.Body()) > 0 {
		if err := bind(c, &payload); err != nil {
			return err
		}
	}

	now := h.localNow()
	status := models.AttendancePresent
	if now.After(h.lateAfter(now)) {
		status = models.AttendanceLate
	}

	record := &models.Attendance{
		EmployeeID: employeeID,
		Date:       now.Format(util.DateLayout),
		Status:     status,
		ClockIn:    &now,
		Note:       payload.Note,
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.repo.Create(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fiber.NewError(fiber.StatusBadRequest, "Attendance for today is already recorded")
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

// ClockOut godoc
// @Summary Clock out
// @Description Closes today's record. Fewer than half the standard hours marks the day as half-day.
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Attendance
// @Failure 400 {object} models.ErrorResponse
// @Router /attendance/clock-out [post]
func (h *AttendanceHandler) ClockOut(c *fiber.Ctx) error {
	_, employeeID, err := selfEmployee(c)
	if err != nil {
		return err
	}

	now := h.localNow()

	ctx, cancel := withTimeout(c)
	defer cancel()

	record, err := h.repo.FindByEmployeeAndDate(ctx, employeeID, now.Format(util.DateLayout))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "You have not clocked in today")
		}
		return err
	}
	if record.ClockIn == nil {
		return fiber.NewError(fiber.StatusBadRequest, "You have not clocked in today")
	}
	if record.ClockOut != nil {
		return fiber.NewError(fiber.StatusBadRequest, "You have already clocked out today")
	}

	hours := workHours(*record.ClockIn, now)
	status := ""
	if hours < h.work.StandardWorkHours/2 {
		status = models.AttendanceHalfDay
	}

	updated, err := h.repo.ClockOut(ctx, record.ID, now, hours, status)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fiber.NewError(fiber.StatusBadRequest, "You have already clocked out today")
		}
		return err
	}
	return c.JSON(updated)
}

// GetMyAttendance godoc
// @Summary Own attendance history
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} models.PaginatedResponse
// @Router /attendance/me [get]
func (h *AttendanceHandler) GetMyAttendance(c *fiber.Ctx) error {
	_, employeeID, err := selfEmployee(c)
	if err != nil {
		return err
	}
	return h.list(c, &employeeID)
}

// GetAllAttendance godoc
// @Summary List attendance
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param employee query string false "Employee ID"
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Param status query string false "Attendance status"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} models.PaginatedResponse
// @Router /attendance [get]
func (h *AttendanceHandler) GetAllAttendance(c *fiber.Ctx) error {
	employeeID, err := queryID(c, "employee")
	if err != nil {
		return err
	}
	return h.list(c, employeeID)
}

func (h *AttendanceHandler) list(c *fiber.Ctx, employeeID *primitive.ObjectID) error {
	from, to := c.Query("from"), c.Query("to")
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := util.ParseDate(d); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dates must be YYYY-MM-DD")
		}
	}
	page, limit := pagination(c)

	ctx, cancel := withTimeout(c)
	defer cancel()

	records, total, err := h.repo.List(ctx, models.AttendanceFilter{
		EmployeeID: employeeID,
		From:       from,
		To:         to,
		Status:     c.Query("status"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(paginated(records, total, page, limit))
}

// CreateAttendance godoc
// @Summary Record attendance manually
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attendance body models.AttendanceCreatePayload true "Attendance record"
// @Success 201 {object} models.Attendance
// @Failure 400 {object} models.ErrorResponse
// @Router /attendance [post]
func (h *AttendanceHandler) CreateAttendance(c *fiber.Ctx) error {
	var payload models.AttendanceCreatePayload
	if err := bind(c, &payload); err != nil {
		return err
	}
	employeeID, _ := primitive.ObjectIDFromHex(payload.EmployeeID)

	record := &models.Attendance{
		EmployeeID: employeeID,
		Date:       payload.Date,
		Status:     payload.Status,
		Note:       payload.Note,
	}
	if err := h.applyClockTimes(record, payload.ClockIn, payload.ClockOut); err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if _, err := h.employeeRepo.FindByID(ctx, employeeID); err != nil {
		return storeError(err, "Employee")
	}
	if err := h.repo.Create(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fiber.NewError(fiber.StatusBadRequest, "Attendance for this employee and date already exists")
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

// UpdateAttendance godoc
// @Summary Update attendance
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attendance ID"
// @Param attendance body models.AttendanceUpdatePayload true "Fields to change"
// @Success 200 {object} models.Attendance
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /attendance/{id} [put]
func (h *AttendanceHandler) UpdateAttendance(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var payload models.AttendanceUpdatePayload
	if err := bind(c, &payload); err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	record, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "Attendance")
	}

	if err := h.applyClockTimes(record, payload.ClockIn, payload.ClockOut); err != nil {
		return err
	}
	set := bson.M{"work_hours": record.WorkHours}
	if record.ClockIn != nil {
		set["clock_in"] = *record.ClockIn
	}
	if record.ClockOut != nil {
		set["clock_out"] = *record.ClockOut
	}
	if payload.Status != "" {
		set["status"] = payload.Status
	}
	if payload.Note != "" {
		set["note"] = payload.Note
	}

	if err := h.repo.Update(ctx, id, set); err != nil {
		return storeError(err, "Attendance")
	}

	updated, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "Attendance")
	}
	return c.JSON(updated)
}

// DeleteAttendance godoc
// @Summary Delete attendance
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attendance ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /attendance/{id} [delete]
func (h *AttendanceHandler) DeleteAttendance(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.repo.Delete(ctx, id); err != nil {
		return storeError(err, "Attendance")
	}
	return c.JSON(models.MessageResponse{Message: "Attendance deleted"})
}

// GetSummary godoc
// @Summary Monthly attendance summary
// @Description Reviewers may pass any employee; other users get their own summary.
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param employee query string false "Employee ID"
// @Param month query int false "1-12, default current month"
// @Param year query int false "Default current year"
// @Success 200 {object} models.AttendanceSummary
// @Failure 403 {object} models.ErrorResponse
// @Router /attendance/summary [get]
func (h *AttendanceHandler) GetSummary(c *fiber.Ctx) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}
	requested, err := queryID(c, "employee")
	if err != nil {
		return err
	}

	var employeeID primitive.ObjectID
	switch {
	case requested != nil && (claims.HasRole(models.ReviewerRoles...) || claims.Owns(*requested)):
		employeeID = *requested
	case requested != nil:
		return fiber.NewError(fiber.StatusForbidden, "You can only view your own attendance")
	case claims.EmployeeID != nil:
		employeeID = *claims.EmployeeID
	default:
		return fiber.NewError(fiber.StatusBadRequest, "employee is required")
	}

	month, year, err := monthYear(c, h.localNow())
	if err != nil {
		return err
	}
	first, last := util.MonthRange(year, month)

	ctx, cancel := withTimeout(c)
	defer cancel()

	records, err := h.repo.FindInRange(ctx, &employeeID, first.Format(util.DateLayout), last.Format(util.DateLayout))
	if err != nil {
		return err
	}

	var hours float64
	for _, r := range records {
		hours += r.WorkHours
	}
	return c.JSON(models.AttendanceSummary{
		EmployeeID: employeeID,
		Month:      month,
		Year:       year,
		Counts:     report.CountByStatus(records),
		WorkHours:  util.Round2(hours),
		Records:    len(records),
	})
}

// applyClockTimes sets clock-in/out from HH:MM strings on the record's date and recomputes work hours.
func (h *AttendanceHandler) applyClockTimes(record *models.Attendance, clockIn, clockOut string) error {
	parse := func(hhmm string) (*time.Time, error) {
		t, err := time.ParseInLocation(util.DateLayout+" 15:04", record.Date+" "+hhmm, h.work.Location)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Clock times must be HH:MM")
		}
		return &t, nil
	}

	var err error
	if clockIn != "" {
		if record.ClockIn, err = parse(clockIn); err != nil {
			return err
		}
	}
	if clockOut != "" {
		if record.ClockOut, err = parse(clockOut); err != nil {
			return err
		}
	}

	if record.ClockIn != nil && record.ClockOut != nil {
		if record.ClockOut.Before(*record.ClockIn) {
			return fiber.NewError(fiber.StatusBadRequest, "clock_out must be after clock_in")
		}
		record.WorkHours = workHours(*record.ClockIn, *record.ClockOut)
	}
	return nil
}
