package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"hrms-backend/config"
	"hrms-backend/handlers"
	"hrms-backend/models"
	"hrms-backend/pkg/paseto"
	"hrms-backend/pkg/password"
	"hrms-backend/pkg/payroll"
	"hrms-backend/pkg/token"
	"hrms-backend/repository/memory"
	"hrms-backend/router"
)

const testPassword = "Password123"

type sentMail struct {
	To, Subject, Body string
}

type captureMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *captureMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

var codePattern = regexp.MustCompile(`\b(\d{6})\b`)

// lastCode returns the six-digit code from the most recent mail.
func (m *captureMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no mail was sent")
	match := codePattern.FindStringSubmatch(m.sent[len(m.sent)-1].Body)
	require.Len(t, match, 2, "mail has no code")
	return match[1]
}

type testEnv struct {
	app    *fiber.App
	tokens *token.Manager
	mail   *captureMailer

	users          *memory.Users
	employees      *memory.Employees
	departments    *memory.Departments
	attendance     *memory.Attendance
	leaves         *memory.LeaveRequests
	balances       *memory.LeaveBalances
	payrolls       *memory.Payrolls
	notifications  *memory.Notifications
	exitInterviews *memory.ExitInterviews
	attachments    *memory.Attachments
}

// newTestEnv wires the router to in-memory stores. overrides may swap dependencies before routes are mounted.
func newTestEnv(t *testing.T, overrides ...func(*router.Dependencies)) *testEnv {
	t.Helper()

	challenges, err := paseto.NewPasetoMaker(bytes.Repeat([]byte("k"), 32), 5*time.Minute)
	require.NoError(t, err)

	env := &testEnv{
		tokens:         token.NewManager("test-secret", "HRMS", time.Hour),
		mail:           &captureMailer{},
		users:          memory.NewUsers(),
		employees:      memory.NewEmployees(),
		departments:    memory.NewDepartments(),
		attendance:     memory.NewAttendance(),
		leaves:         memory.NewLeaveRequests(),
		balances:       memory.NewLeaveBalances(),
		payrolls:       memory.NewPayrolls(),
		notifications:  memory.NewNotifications(),
		exitInterviews: memory.NewExitInterviews(),
		attachments:    memory.NewAttachments(),
	}

	deps := router.Dependencies{
		Users:          env.users,
		Employees:      env.employees,
		Departments:    env.departments,
		Attendance:     env.attendance,
		LeaveRequests:  env.leaves,
		LeaveBalances:  env.balances,
		Payrolls:       env.payrolls,
		Notifications:  env.notifications,
		ExitInterviews: env.exitInterviews,
		Attachments:    env.attachments,
		Tokens:         env.tokens,
		Challenges:     challenges,
		Mailer:         env.mail,
		AppName:        "HRMS",
		Work: config.WorkConfig{
			StartHour:         9,
			LateGrace:         15 * time.Minute,
			StandardWorkHours: 8,
			Location:          time.UTC,
		},
		Rates:         payroll.Rates{HRA: 0.40, PF: 0.12, Tax: 0.10},
		UploadLimitMB: 1,
	}

	for _, override := range overrides {
		override(&deps)
	}

	env.app = fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	router.SetupRoutes(env.app, deps)
	return env
}

// account is a user with an optional linked employee and a valid session token.
type account struct {
	User     *models.User
	Employee *models.Employee
	Token    string
}

func (e *testEnv) newAccount(t *testing.T, role, email string, salary float64) *account {
	t.Helper()
	ctx := context.Background()

	emp := &models.Employee{
		EmployeeCode:  "T-" + email,
		FirstName:     "Test",
		LastName:      role,
		Email:         email,
		Position:      "Staff",
		Salary:        salary,
		DateOfJoining: "2024-01-15",
		Status:        models.EmployeeStatusActive,
	}
	require.NoError(t, e.employees.Create(ctx, emp))

	hashed, err := password.HashPassword(testPassword)
	require.NoError(t, err)
	user := &models.User{
		Name:       "Test " + role,
		Email:      email,
		Password:   hashed,
		Role:       role,
		EmployeeID: &emp.ID,
		IsActive:   true,
	}
	require.NoError(t, e.users.CreateUser(ctx, user))

	signed, err := e.tokens.Generate(user)
	require.NoError(t, err)
	return &account{User: user, Employee: emp, Token: signed}
}

func (e *testEnv) do(t *testing.T, method, path, bearer string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func message(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body models.ErrorResponse
	decode(t, resp, &body)
	return body.Message
}

// nextMonday returns the Monday at least a week after today, so leave dates are never in the past.
func nextMonday() time.Time {
	d := time.Now().UTC().AddDate(0, 0, 7)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
