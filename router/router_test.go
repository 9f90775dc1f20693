package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms-backend/config"
	"hrms-backend/handlers"
	"hrms-backend/pkg/mailer"
	"hrms-backend/pkg/paseto"
	"hrms-backend/pkg/payroll"
	"hrms-backend/pkg/token"
	"hrms-backend/repository/memory"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	challenges, err := paseto.NewPasetoMaker(bytes.Repeat([]byte("r"), 32), 5*time.Minute)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	SetupRoutes(app, Dependencies{
		Users:          memory.NewUsers(),
		Employees:      memory.NewEmployees(),
		Departments:    memory.NewDepartments(),
		Attendance:     memory.NewAttendance(),
		LeaveRequests:  memory.NewLeaveRequests(),
		LeaveBalances:  memory.NewLeaveBalances(),
		Payrolls:       memory.NewPayrolls(),
		Notifications:  memory.NewNotifications(),
		ExitInterviews: memory.NewExitInterviews(),
		Attachments:    memory.NewAttachments(),
		Tokens:         token.NewManager("secret", "HRMS", time.Hour),
		Challenges:     challenges,
		Mailer:         mailer.LogMailer{},
		AppName:        "HRMS",
		Work:           config.WorkConfig{StartHour: 9, StandardWorkHours: 8, Location: time.UTC},
		Rates:          payroll.DefaultRates,
		UploadLimitMB:  5,
	})
	return app
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	_, err = time.Parse(time.RFC3339, body["time"])
	assert.NoError(t, err)
}

func TestRoot(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "HRMS API", body["message"])
	assert.Equal(t, "running", body["status"])
}

func TestProtectedGroupsRequireToken(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{
		"/api/auth/me",
		"/api/users",
		"/api/employees",
		"/api/departments",
		"/api/attendance/me",
		"/api/leaves/me",
		"/api/payroll/me",
		"/api/notifications",
		"/api/exit-interviews/me",
		"/api/reports/dashboard",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}
