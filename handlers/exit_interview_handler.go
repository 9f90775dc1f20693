package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hrms-backend/models"
	"hrms-backend/repository"
)

type ExitInterviewHandler struct {
	repo         repository.ExitInterviewRepository
	employeeRepo repository.EmployeeRepository
	notifier     *Notifier
}

func NewExitInterviewHandler(repo repository.ExitInterviewRepository, employeeRepo repository.EmployeeRepository, notifier *Notifier) *ExitInterviewHandler {
	return &ExitInterviewHandler{repo: repo, employeeRepo: employeeRepo, notifier: notifier}
}

// CreateExitInterview godoc
// @Summary Schedule an exit interview
// @Tags Exit Interviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param interview body models.ExitInterviewCreatePayload true "Interview"
// @Success 201 {object} models.ExitInterview
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /exit-interviews [post]
func (h *ExitInterviewHandler) CreateExitInterview(c *fiber.Ctx) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}

	var payload models.ExitInterviewCreatePayload
	if err := bind(c, &payload); err != nil {
		return err
	}
	employeeID, _ := primitive.ObjectIDFromHex(payload.EmployeeID)

	ctx, cancel := withTimeout(c)
	defer cancel()

	if _, err := h.employeeRepo.FindByID(ctx, employeeID); err != nil {
		return storeError(err, "Employee")
	}

	interview := &models.ExitInterview{
		EmployeeID:     employeeID,
		InterviewDate:  payload.InterviewDate,
		LastWorkingDay: payload.LastWorkingDay,
		Reason:         payload.Reason,
		Status:         models.ExitInterviewScheduled,
		ConductedBy:    &claims.UserID,
	}
	if err := h.repo.Create(ctx, interview); err != nil {
		return err
	}

	h.notifier.NotifyEmployee(ctx, employeeID, models.NotificationExitInterview, "Exit interview scheduled",
		"Your exit interview is scheduled for "+interview.InterviewDate+".", "/exit-interviews/"+interview.ID.Hex())
	return c.Status(fiber.StatusCreated).JSON(interview)
}

// GetAllExitInterviews godoc
// @Summary List exit interviews
// @Tags Exit Interviews
// @Produce json
// @Security BearerAuth
// @Param status query string false "scheduled, completed or cancelled"
// @Success 200 {array} models.ExitInterview
// @Router /exit-interviews [get]
func (h *ExitInterviewHandler) GetAllExitInterviews(c *fiber.Ctx) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	interviews, err := h.repo.List(ctx, nil, c.Query("status"))
	if err != nil {
		return err
	}
	return c.JSON(interviews)
}

// GetMyExitInterviews godoc
// @Summary Own exit interviews
// @Tags Exit Interviews
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ExitInterview
// @Router /exit-interviews/me [get]
func (h *ExitInterviewHandler) GetMyExitInterviews(c *fiber.Ctx) error {
	_, employeeID, err := selfEmployee(c)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	interviews, err := h.repo.List(ctx, &employeeID, "")
	if err != nil {
		return err
	}
	return c.JSON(interviews)
}

// GetExitInterviewByID godoc
// @Summary Get exit interview
// @Tags Exit Interviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exit interview ID"
// @Success 200 {object} models.ExitInterview
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /exit-interviews/{id} [get]
func (h *ExitInterviewHandler) GetExitInterviewByID(c *fiber.Ctx) error {
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

	interview, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "Exit interview")
	}
	if !claims.HasRole(models.HRStaffRoles...) && !claims.Owns(interview.EmployeeID) {
		return fiber.NewError(fiber.StatusForbidden, "You can only view your own exit interview")
	}
	return c.JSON(interview)
}

// UpdateExitInterview godoc
// @Summary Reschedule or cancel an exit interview
// @Tags Exit Interviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exit interview ID"
// @Param interview body models.ExitInterviewUpdatePayload true "Fields to change"
// @Success 200 {object} models.ExitInterview
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /exit-interviews/{id} [put]
func (h *ExitInterviewHandler) UpdateExitInterview(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var payload models.ExitInterviewUpdatePayload
	if err := bind(c, &payload); err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	interview, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "Exit interview")
	}
	if interview.Status == models.ExitInterviewCompleted {
		return fiber.NewError(fiber.StatusBadRequest, "Completed exit interviews cannot be changed")
	}

	set := bson.M{}
	if payload.InterviewDate != "" {
		set["interview_date"] = payload.InterviewDate
	}
	if payload.LastWorkingDay != "" {
		set["last_working_day"] = payload.LastWorkingDay
	}
	if payload.Reason != "" {
		set["reason"] = payload.Reason
	}
	if payload.Status != "" {
		set["status"] = payload.Status
	}
	if len(set) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "No fields to update")
	}

	if err := h.repo.Update(ctx, id, set); err != nil {
		return storeError(err, "Exit interview")
	}
	updated, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "Exit interview")
	}
	return c.JSON(updated)
}

// CompleteExitInterview godoc
// @Summary Complete an exit interview
// @Description Records feedback and marks the employee as resigned.
// @Tags Exit Interviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exit interview ID"
// @Param feedback body models.ExitInterviewCompletePayload true "Feedback"
// @Success 200 {object} models.ExitInterview
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /exit-interviews/{id}/complete [put]
func (h *ExitInterviewHandler) CompleteExitInterview(c *fiber.Ctx) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var payload models.ExitInterviewCompletePayload
	if err := bind(c, &payload); err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	interview, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "Exit interview")
	}
	if interview.Status != models.ExitInterviewScheduled {
		return fiber.NewError(fiber.StatusBadRequest, "Only scheduled exit interviews can be completed")
	}

	set := bson.M{
		"feedback":     payload.Feedback,
		"rating":       payload.Rating,
		"status":       models.ExitInterviewCompleted,
		"conducted_by": claims.UserID,
	}
	if payload.WouldRecommend != nil {
		set["would_recommend"] = *payload.WouldRecommend
	}
	if err := h.repo.Update(ctx, id, set); err != nil {
		return storeError(err, "Exit interview")
	}

	if err := h.employeeRepo.Update(ctx, interview.EmployeeID, bson.M{"status": models.EmployeeStatusResigned}); err != nil {
		log.Printf("WARN: exit interview %s completed but employee status update failed: %v", id.Hex(), err)
	}

	updated, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "Exit interview")
	}
	return c.JSON(updated)
}

// DeleteExitInterview godoc
// @Summary Delete exit interview
// @Tags Exit Interviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exit interview ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /exit-interviews/{id} [delete]
func (h *ExitInterviewHandler) DeleteExitInterview(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.repo.Delete(ctx, id); err != nil {
		return storeError(err, "Exit interview")
	}
	return c.JSON(models.MessageResponse{Message: "Exit interview deleted"})
}
