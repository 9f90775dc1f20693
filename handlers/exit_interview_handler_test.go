package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms-backend/models"
)

func TestExitInterviewFlow(t *testing.T) {
	env := newTestEnv(t)
	admin := env.newAccount(t, models.RoleAdmin, "admin@example.com", 0)
	hr := env.newAccount(t, models.RoleHR, "hr@example.com", 0)
	emp := env.newAccount(t, models.RoleEmployee, "emp@example.com", 0)
	other := env.newAccount(t, models.RoleEmployee, "other@example.com", 0)

	payload := models.ExitInterviewCreatePayload{
		EmployeeID:     emp.Employee.ID.Hex(),
		InterviewDate:  "2025-06-20",
		LastWorkingDay: "2025-06-30",
		Reason:         "relocation",
	}
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/api/exit-interviews", emp.Token, payload).StatusCode)

	resp := env.do(t, http.MethodPost, "/api/exit-interviews", hr.Token, payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var interview models.ExitInterview
	decode(t, resp, &interview)
	assert.Equal(t, models.ExitInterviewScheduled, interview.Status)
	path := "/api/exit-interviews/" + interview.ID.Hex()

	unread, err := env.notifications.CountUnread(context.Background(), emp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, path, emp.Token, nil).StatusCode)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, path, other.Token, nil).StatusCode)

	resp = env.do(t, http.MethodGet, "/api/exit-interviews/me", emp.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var mine []models.ExitInterview
	decode(t, resp, &mine)
	assert.Len(t, mine, 1)

	resp = env.do(t, http.MethodPut, path, hr.Token, models.ExitInterviewUpdatePayload{InterviewDate: "2025-06-23"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rescheduled models.ExitInterview
	decode(t, resp, &rescheduled)
	assert.Equal(t, "2025-06-23", rescheduled.InterviewDate)

	resp = env.do(t, http.MethodPut, path+"/complete", hr.Token, models.ExitInterviewCompletePayload{Rating: 4})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	yes := true
	resp = env.do(t, http.MethodPut, path+"/complete", hr.Token, models.ExitInterviewCompletePayload{
		Feedback:       "Good team, moving abroad.",
		Rating:         4,
		WouldRecommend: &yes,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var completed models.ExitInterview
	decode(t, resp, &completed)
	assert.Equal(t, models.ExitInterviewCompleted, completed.Status)
	assert.Equal(t, 4, completed.Rating)
	require.NotNil(t, completed.WouldRecommend)
	assert.True(t, *completed.WouldRecommend)

	stored, err := env.employees.FindByID(context.Background(), emp.Employee.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EmployeeStatusResigned, stored.Status)

	resp = env.do(t, http.MethodPut, path+"/complete", hr.Token, models.ExitInterviewCompletePayload{Feedback: "Again please", Rating: 3})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Only scheduled exit interviews can be completed", message(t, resp))

	resp = env.do(t, http.MethodPut, path, hr.Token, models.ExitInterviewUpdatePayload{Status: models.ExitInterviewCancelled})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/exit-interviews?status=completed", hr.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var done []models.ExitInterview
	decode(t, resp, &done)
	assert.Len(t, done, 1)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodDelete, path, hr.Token, nil).StatusCode)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, path, admin.Token, nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, hr.Token, nil).StatusCode)
}

func TestCancelledExitInterviewCannotComplete(t *testing.T) {
	env := newTestEnv(t)
	hr := env.newAccount(t, models.RoleHR, "hr@example.com", 0)
	emp := env.newAccount(t, models.RoleEmployee, "emp@example.com", 0)

	resp := env.do(t, http.MethodPost, "/api/exit-interviews", hr.Token, models.ExitInterviewCreatePayload{
		EmployeeID:     emp.Employee.ID.Hex(),
		InterviewDate:  "2025-06-20",
		LastWorkingDay: "2025-06-30",
		Reason:         "personal",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var interview models.ExitInterview
	decode(t, resp, &interview)
	path := "/api/exit-interviews/" + interview.ID.Hex()

	resp = env.do(t, http.MethodPut, path, hr.Token, models.ExitInterviewUpdatePayload{Status: models.ExitInterviewCancelled})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPut, path+"/complete", hr.Token, models.ExitInterviewCompletePayload{Feedback: "Changed my mind", Rating: 5})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	stored, err := env.employees.FindByID(context.Background(), emp.Employee.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EmployeeStatusActive, stored.Status)
}
