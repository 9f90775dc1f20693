package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hrms-backend/models"
	util "hrms-backend/pkg/utils"
	"hrms-backend/repository"
)

var allowedAttachmentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

type LeaveRequestHandler struct {
	leaveRepo      repository.LeaveRequestRepository
	balanceRepo    repository.LeaveBalanceRepository
	attendanceRepo repository.AttendanceRepository
	employeeRepo   repository.EmployeeRepository
	attachments    repository.AttachmentStore
	notifier       *Notifier
	uploadLimit    int64
	location       *time.Location
	now            func() time.Time
}

func NewLeaveRequestHandler(
	leaveRepo repository.LeaveRequestRepository,
	balanceRepo repository.LeaveBalanceRepository,
	attendanceRepo repository.AttendanceRepository,
	employeeRepo repository.EmployeeRepository,
	attachments repository.AttachmentStore,
	notifier *Notifier,
	uploadLimitMB int,
	location *time.Location,
) *LeaveRequestHandler {
	if location == nil {
		location = time.Local
	}
	return &LeaveRequestHandler{
		leaveRepo:      leaveRepo,
		balanceRepo:    balanceRepo,
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		attachments:    attachments,
		notifier:       notifier,
		uploadLimit:    int64(uploadLimitMB) << 20,
		location:       location,
		now:            time.Now,
	}
}

func (h *LeaveRequestHandler) today() string {
	return h.now().In(h.location).Format(util.DateLayout)
}

// CreateLeaveRequest godoc
// @Summary Apply for leave
// @Description Counts Monday-to-Friday days in the range and reserves them as pending, each day on the balance of its own year.
// @Tags Leave
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.LeaveRequestCreatePayload true "Leave request"
// @Success 201 {object} models.LeaveRequest
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /leaves [post]
func (h *LeaveRequestHandler) CreateLeaveRequest(c *fiber.Ctx) error {
	_, employeeID, err := selfEmployee(c)
	if err != nil {
		return err
	}

	var payload models.LeaveRequestCreatePayload
	if err := bind(c, &payload); err != nil {
		return err
	}

	start, _ := util.ParseDate(payload.StartDate)
	end, _ := util.ParseDate(payload.EndDate)
	if end.Before(start) {
		return fiber.NewError(fiber.StatusBadRequest, "end_date must not be before start_date")
	}
	if payload.StartDate < h.today() {
		return fiber.NewError(fiber.StatusBadRequest, "Leave cannot start in the past")
	}

	workingDays, err := util.CountWorkingDays(start, end)
	if err != nil {
		return err
	}
	if workingDays == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "The selected range contains no working days")
	}
	days := float64(workingDays)

	ctx, cancel := withTimeout(c)
	defer cancel()

	overlapping, err := h.leaveRepo.FindOverlapping(ctx, employeeID, payload.StartDate, payload.EndDate)
	if err != nil {
		return err
	}
	if len(overlapping) > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "The request overlaps an existing pending or approved leave")
	}

	shares, err := leaveDaysByYear(payload.StartDate, payload.EndDate)
	if err != nil {
		return err
	}
	if err := h.reserveBalance(ctx, employeeID, payload.LeaveType, shares); err != nil {
		return storeError(err, "Leave balance")
	}

	request := &models.LeaveRequest{
		EmployeeID: employeeID,
		LeaveType:  payload.LeaveType,
		StartDate:  payload.StartDate,
		EndDate:    payload.EndDate,
		Days:       days,
		Reason:     payload.Reason,
		Status:     models.LeavePending,
	}
	if err := h.leaveRepo.Create(ctx, request); err != nil {
		if rerr := h.shiftBalance(ctx, employeeID, payload.LeaveType, shares, -1, 0); rerr != nil {
			log.Printf("ERROR: failed to release reserved leave for employee %s: %v", employeeID.Hex(), rerr)
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(request)
}

// GetMyLeaveRequests godoc
// @Summary Own leave requests
// @Tags Leave
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param year query int false "Year of the start date"
// @Success 200 {array} models.LeaveRequest
// @Router /leaves/me [get]
func (h *LeaveRequestHandler) GetMyLeaveRequests(c *fiber.Ctx) error {
	_, employeeID, err := selfEmployee(c)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	requests, err := h.leaveRepo.List(ctx, models.LeaveRequestFilter{
		EmployeeID: &employeeID,
		Status:     c.Query("status"),
		LeaveType:  c.Query("type"),
		Year:       c.QueryInt("year"),
	})
	if err != nil {
		return err
	}
	return c.JSON(requests)
}

// GetAllLeaveRequests godoc
// @Summary List leave requests
// @Tags Leave
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param employee query string false "Employee ID"
// @Param type query string false "Leave type"
// @Param year query int false "Year of the start date"
// @Success 200 {array} models.LeaveRequest
// @Router /leaves [get]
func (h *LeaveRequestHandler) GetAllLeaveRequests(c *fiber.Ctx) error {
	employeeID, err := queryID(c, "employee")
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	requests, err := h.leaveRepo.List(ctx, models.LeaveRequestFilter{
		EmployeeID: employeeID,
		Status:     c.Query("status"),
		LeaveType:  c.Query("type"),
		Year:       c.QueryInt("year"),
	})
	if err != nil {
		return err
	}
	return c.JSON(requests)
}

// GetLeaveRequestByID godoc
// @Summary Get leave request
// @Tags Leave
// @Produce json
// @Security BearerAuth
// @Param id path string true "Leave request ID"
// @Success 200 {object} models.LeaveRequest
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /leaves/{id} [get]
func (h *LeaveRequestHandler) GetLeaveRequestByID(c *fiber.Ctx) error {
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

	request, err := h.leaveRepo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "Leave request")
	}
	if !claims.HasRole(models.ReviewerRoles...) && !claims.Owns(request.EmployeeID) {
		return fiber.NewError(fiber.StatusForbidden, "You can only view your own leave requests")
	}
	return c.JSON(request)
}

// ApproveLeaveRequest godoc
// @Summary Approve leave
// @Description Moves pending days to used and marks each working day in the range as on-leave.
// @Description If either step fails the request goes back to pending.
// @Tags Leave
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Leave request ID"
// @Param review body models.LeaveReviewPayload false "Optional note"
// @Success 200 {object} models.LeaveRequest
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /leaves/{id}/approve [put]
func (h *LeaveRequestHandler) ApproveLeaveRequest(c *fiber.Ctx) error {
	request, err := h.review(c, models.LeaveApproved)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.applyApproval(ctx, request); err != nil {
		log.Printf("ERROR: leave %s could not be applied, returning it to pending: %v", request.ID.Hex(), err)
		h.reopen(request)
		return storeError(err, "Leave balance")
	}

	h.notifier.NotifyEmployee(ctx, request.EmployeeID, models.NotificationLeave,
		"Leave approved",
		fmt.Sprintf("Your %s leave from %s to %s was approved.", request.LeaveType, request.StartDate, request.EndDate),
		"/leaves/"+request.ID.Hex())
	return c.JSON(request)
}

// RejectLeaveRequest godoc
// @Summary Reject leave
// @Tags Leave
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Leave request ID"
// @Param review body models.LeaveReviewPayload false "Optional note"
// @Success 200 {object} models.LeaveRequest
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /leaves/{id}/reject [put]
func (h *LeaveRequestHandler) RejectLeaveRequest(c *fiber.Ctx) error {
	request, err := h.review(c, models.LeaveRejected)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.releaseBalance(ctx, request); err != nil {
		log.Printf("ERROR: leave %s rejected but balance update failed: %v", request.ID.Hex(), err)
		return storeError(err, "Leave balance")
	}

	message := fmt.Sprintf("Your %s leave from %s to %s was rejected.", request.LeaveType, request.StartDate, request.EndDate)
	if request.ReviewNote != "" {
		message += " Note: " + request.ReviewNote
	}
	h.notifier.NotifyEmployee(ctx, request.EmployeeID, models.NotificationLeave, "Leave rejected", message, "/leaves/"+request.ID.Hex())
	return c.JSON(request)
}

// review performs the pending -> status transition for a reviewer. Reviewers cannot decide their own requests.
func (h *LeaveRequestHandler) review(c *fiber.Ctx, status string) (*models.LeaveRequest, error) {
	claims, err := currentUser(c)
	if err != nil {
		return nil, err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}

	var payload models.LeaveReviewPayload
	if len(c.Body()) > 0 {
		if err := bind(c, &payload); err != nil {
			return nil, err
		}
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	existing, err := h.leaveRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Leave request")
	}
	if claims.Owns(existing.EmployeeID) {
		return nil, fiber.NewError(fiber.StatusForbidden, "You cannot review your own leave request")
	}

	now := h.now()
	set := bson.M{"reviewed_by": claims.UserID, "reviewed_at": now}
	if payload.Note != "" {
		set["review_note"] = payload.Note
	}

	request, err := h.leaveRepo.TransitionStatus(ctx, id, models.LeavePending, status, set)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Only pending leave requests can be reviewed")
		}
		return nil, storeError(err, "Leave request")
	}
	return request, nil
}

// CancelLeaveRequest godoc
// @Summary Cancel own pending leave
// @Tags Leave
// @Produce json
// @Security BearerAuth
// @Param id path string true "Leave request ID"
// @Success 200 {object} models.LeaveRequest
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /leaves/{id}/cancel [put]
func (h *LeaveRequestHandler) CancelLeaveRequest(c *fiber.Ctx) error {
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

	existing, err := h.leaveRepo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "Leave request")
	}
	if !claims.Owns(existing.EmployeeID) {
		return fiber.NewError(fiber.StatusForbidden, "You can only cancel your own leave requests")
	}

	request, err := h.leaveRepo.TransitionStatus(ctx, id, models.LeavePending, models.LeaveCancelled, nil)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fiber.NewError(fiber.StatusBadRequest, "Only pending leave requests can be cancelled")
		}
		return storeError(err, "Leave request")
	}

	if err := h.releaseBalance(ctx, request); err != nil {
		log.Printf("ERROR: leave %s cancelled but balance update failed: %v", request.ID.Hex(), err)
		return storeError(err, "Leave balance")
	}
	return c.JSON(request)
}

// UploadAttachment godoc
// @Summary Attach a document to a leave request
// @Tags Leave
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Leave request ID"
// @Param attachment formData file true "PDF, JPG or PNG"
// @Success 200 {object} models.LeaveRequest
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /leaves/{id}/attachment [post]
func (h *LeaveRequestHandler) UploadAttachment(c *fiber.Ctx) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	file, err := c.FormFile("attachment")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "No attachment uploaded")
	}
	contentType := strings.ToLower(file.Header.Get("Content-Type"))
	if !allowedAttachmentTypes[contentType] {
		return fiber.NewError(fiber.StatusBadRequest, "Unsupported file type. Allowed: PDF, JPG, PNG")
	}
	if file.Size > h.uploadLimit {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("File is too large. Maximum is %d MB", h.uploadLimit>>20))
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	request, err := h.leaveRepo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "Leave request")
	}
	if !claims.Owns(request.EmployeeID) {
		return fiber.NewError(fiber.StatusForbidden, "You can only attach files to your own leave requests")
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	fileID, err := h.attachments.Upload(ctx, name, contentType, request.EmployeeID, src)
	if err != nil {
		return err
	}
	if err := h.leaveRepo.SetAttachment(ctx, id, fileID); err != nil {
		return storeError(err, "Leave request")
	}

	request.AttachmentID = &fileID
	return c.JSON(request)
}

// GetMyBalance godoc
// @Summary Own leave balance
// @Tags Leave
// @Produce json
// @Security BearerAuth
// @Param year query int false "Default current year"
// @Success 200 {object} models.LeaveBalance
// @Router /leaves/balance/me [get]
func (h *LeaveRequestHandler) GetMyBalance(c *fiber.Ctx) error {
	_, employeeID, err := selfEmployee(c)
	if err != nil {
		return err
	}
	return h.balance(c, employeeID)
}

// GetEmployeeBalance godoc
// @Summary Employee leave balance
// @Tags Leave
// @Produce json
// @Security BearerAuth
// @Param employeeId path string true "Employee ID"
// @Param year query int false "Default current year"
// @Success 200 {object} models.LeaveBalance
// @Failure 403 {object} models.ErrorResponse
// @Router /leaves/balance/{employeeId} [get]
func (h *LeaveRequestHandler) GetEmployeeBalance(c *fiber.Ctx) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}
	employeeID, err := paramID(c, "employeeId")
	if err != nil {
		return err
	}
	if !claims.HasRole(models.ReviewerRoles...) && !claims.Owns(employeeID) {
		return fiber.NewError(fiber.StatusForbidden, "You can only view your own leave balance")
	}
	return h.balance(c, employeeID)
}

func (h *LeaveRequestHandler) balance(c *fiber.Ctx, employeeID primitive.ObjectID) error {
	year := c.QueryInt("year", h.now().In(h.location).Year())

	ctx, cancel := withTimeout(c)
	defer cancel()

	if _, err := h.employeeRepo.FindByID(ctx, employeeID); err != nil {
		return storeError(err, "Employee")
	}
	balance, err := h.balanceRepo.GetOrCreate(ctx, employeeID, year)
	if err != nil {
		return err
	}
	return c.JSON(balance)
}

// UpdateEmployeeBalance godoc
// @Summary Set leave entitlements
// @Description Sets the total days per leave type. A total below the days already used or pending is rejected.
// @Tags Leave
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param employeeId path string true "Employee ID"
// @Param balance body models.LeaveBalanceUpdatePayload true "New totals"
// @Success 200 {object} models.LeaveBalance
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /leaves/balance/{employeeId} [put]
func (h *LeaveRequestHandler) UpdateEmployeeBalance(c *fiber.Ctx) error {
	employeeID, err := paramID(c, "employeeId")
	if err != nil {
		return err
	}

	var payload models.LeaveBalanceUpdatePayload
	if err := bind(c, &payload); err != nil {
		return err
	}
	year := payload.Year
	if year == 0 {
		year = h.now().In(h.location).Year()
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if _, err := h.employeeRepo.FindByID(ctx, employeeID); err != nil {
		return storeError(err, "Employee")
	}

	balance, err := repository.UpdateBalanceWithRetry(ctx, h.balanceRepo, employeeID, year, func(b *models.LeaveBalance) error {
		for _, change := range payload.Balances {
			entry := balanceEntry(b, change.Type)
			if change.Total < entry.Used+entry.Pending {
				return fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("%s total cannot be below the %g day(s) already used or pending", change.Type, entry.Used+entry.Pending))
			}
			entry.Total = change.Total
		}
		return nil
	})
	if err != nil {
		return storeError(err, "Leave balance")
	}
	return c.JSON(balance)
}

// yearShare is the number of working days of a request that fall in one calendar year.
type yearShare struct {
	Year int
	Days float64
}

// leaveDaysByYear splits the working days between start and end by year, in date order.
func leaveDaysByYear(startDate, endDate string) ([]yearShare, error) {
	start, err := util.ParseDate(startDate)
	if err != nil {
		return nil, err
	}
	end, err := util.ParseDate(endDate)
	if err != nil {
		return nil, err
	}
	days, err := util.WorkingDays(start, end)
	if err != nil {
		return nil, err
	}

	var shares []yearShare
	for _, d := range days {
		if n := len(shares); n > 0 && shares[n-1].Year == d.Year() {
			shares[n-1].Days++
			continue
		}
		shares = append(shares, yearShare{Year: d.Year(), Days: 1})
	}
	return shares, nil
}

// reserveBalance adds each share to the pending days of its year, refusing paid leave that would overdraw a year.
func (h *LeaveRequestHandler) reserveBalance(ctx context.Context, employeeID primitive.ObjectID, leaveType string, shares []yearShare) error {
	for i, share := range shares {
		_, err := repository.UpdateBalanceWithRetry(ctx, h.balanceRepo, employeeID, share.Year, func(b *models.LeaveBalance) error {
			entry := balanceEntry(b, leaveType)
			if leaveType != models.LeaveUnpaid && entry.Available() < share.Days {
				return fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("Insufficient %s leave balance for %d: %g day(s) available, %g requested", leaveType, share.Year, entry.Available(), share.Days))
			}
			entry.Pending += share.Days
			return nil
		})
		if err != nil {
			if rerr := h.shiftBalance(ctx, employeeID, leaveType, shares[:i], -1, 0); rerr != nil {
				log.Printf("ERROR: failed to release reserved leave for employee %s: %v", employeeID.Hex(), rerr)
			}
			return err
		}
	}
	return nil
}

// shiftBalance adds pending*days and used*days to each year's entry, never going below zero.
// When a later year fails, the years already written are shifted back.
func (h *LeaveRequestHandler) shiftBalance(ctx context.Context, employeeID primitive.ObjectID, leaveType string, shares []yearShare, pending, used float64) error {
	for i, share := range shares {
		_, err := repository.UpdateBalanceWithRetry(ctx, h.balanceRepo, employeeID, share.Year, func(b *models.LeaveBalance) error {
			entry := balanceEntry(b, leaveType)
			entry.Pending = math.Max(0, entry.Pending+pending*share.Days)
			entry.Used = math.Max(0, entry.Used+used*share.Days)
			return nil
		})
		if err != nil {
			if rerr := h.shiftBalance(ctx, employeeID, leaveType, shares[:i], -pending, -used); rerr != nil {
				log.Printf("ERROR: failed to undo partial balance update for employee %s: %v", employeeID.Hex(), rerr)
			}
			return err
		}
	}
	return nil
}

// releaseBalance drops a request's pending days.
func (h *LeaveRequestHandler) releaseBalance(ctx context.Context, request *models.LeaveRequest) error {
	shares, err := leaveDaysByYear(request.StartDate, request.EndDate)
	if err != nil {
		return err
	}
	return h.shiftBalance(ctx, request.EmployeeID, request.LeaveType, shares, -1, 0)
}

// applyApproval moves the request's days from pending to used and writes its on-leave attendance.
// On failure nothing it wrote is left behind.
func (h *LeaveRequestHandler) applyApproval(ctx context.Context, request *models.LeaveRequest) error {
	shares, err := leaveDaysByYear(request.StartDate, request.EndDate)
	if err != nil {
		return err
	}
	if err := h.shiftBalance(ctx, request.EmployeeID, request.LeaveType, shares, -1, 1); err != nil {
		return err
	}
	if err := h.markLeaveDays(ctx, request); err != nil {
		undoCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if rerr := h.attendanceRepo.ClearLeaveDays(undoCtx, request.ID); rerr != nil {
			log.Printf("ERROR: failed to clear leave days of %s: %v", request.ID.Hex(), rerr)
		}
		if rerr := h.shiftBalance(undoCtx, request.EmployeeID, request.LeaveType, shares, 1, -1); rerr != nil {
			log.Printf("ERROR: failed to restore balance of %s: %v", request.ID.Hex(), rerr)
		}
		return err
	}
	return nil
}

// reopen returns an approved request whose approval could not be applied to the review queue.
func (h *LeaveRequestHandler) reopen(request *models.LeaveRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	unreviewed := bson.M{"reviewed_by": nil, "reviewed_at": nil, "review_note": ""}
	if _, err := h.leaveRepo.TransitionStatus(ctx, request.ID, models.LeaveApproved, models.LeavePending, unreviewed); err != nil {
		log.Printf("ERROR: failed to return leave %s to pending: %v", request.ID.Hex(), err)
	}
}

func (h *LeaveRequestHandler) markLeaveDays(ctx context.Context, request *models.LeaveRequest) error {
	start, _ := util.ParseDate(request.StartDate)
	end, _ := util.ParseDate(request.EndDate)
	days, err := util.WorkingDays(start, end)
	if err != nil {
		return err
	}
	for _, d := range days {
		if err := h.attendanceRepo.UpsertLeaveDay(ctx, request.EmployeeID, d.Format(util.DateLayout), request.ID, request.LeaveType); err != nil {
			return err
		}
	}
	return nil
}

// balanceEntry returns the entry for leaveType, adding one with the default allocation if missing.
func balanceEntry(b *models.LeaveBalance, leaveType string) *models.LeaveTypeBalance {
	if entry := b.Find(leaveType); entry != nil {
		return entry
	}
	b.Balances = append(b.Balances, models.LeaveTypeBalance{Type: leaveType, Total: models.DefaultLeaveAllocation[leaveType]})
	return &b.Balances[len(b.Balances)-1]
}
