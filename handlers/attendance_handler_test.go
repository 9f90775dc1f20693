package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms-backend/models"
)

type attendancePage struct {
	Data  []models.Attendance `json:"data"`
	Total int64               `json:"total"`
}

func TestClockInAndOut(t *testing.T) {
	env := newTestEnv(t)
	emp := env.newAccount(t, models.RoleEmployee, "emp@example.com", 0)

	resp := env.do(t, http.MethodPost, "/api/attendance/clock-out", emp.Token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "You have not clocked in today", message(t, resp))

	resp = env.do(t, http.MethodPost, "/api/attendance/clock-in", emp.Token, models.ClockPayload{Note: "Office"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var in models.Attendance
	decode(t, resp, &in)
	assert.Contains(t, []string{models.AttendancePresent, models.AttendanceLate}, in.Status)
	assert.NotNil(t, in.ClockIn)
	assert.Equal(t, "Office", in.Note)

	resp = env.do(t, http.MethodPost, "/api/attendance/clock-in", emp.Token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Attendance for today is already recorded", message(t, resp))

	resp = env.do(t, http.MethodPost, "/api/attendance/clock-out", emp.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out models.Attendance
	decode(t, resp, &out)
	require.NotNil(t, out.ClockOut)
	assert.Equal(t, 0.0, out.WorkHours)
	// a minute of work is under half the standard day
	assert.Equal(t, models.AttendanceHalfDay, out.Status)

	resp = env.do(t, http.MethodPost, "/api/attendance/clock-out", emp.Token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "You have already clocked out today", message(t, resp))

	resp = env.do(t, http.MethodGet, "/api/attendance/me", emp.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page attendancePage
	decode(t, resp, &page)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, in.ID, page.Data[0].ID)
}

func TestClockInWithoutEmployeeRecord(t *testing.T) {
	env := newTestEnv(t)
	admin := env.newAccount(t, models.RoleAdmin, "admin@example.com", 0)
	require.NoError(t, env.users.UnlinkEmployee(context.Background(), admin.Employee.ID))

	resp := env.do(t, http.MethodPost, "/api/attendance/clock-in", admin.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "No employee profile is linked to this account", message(t, resp))
}

func TestManualAttendance(t *testing.T) {
	env := newTestEnv(t)
	hr := env.newAccount(t, models.RoleHR, "hr@example.com", 0)
	emp := env.newAccount(t, models.RoleEmployee, "emp@example.com", 0)

	payload := models.AttendanceCreatePayload{
		EmployeeID: emp.Employee.ID.Hex(),
		Date:       "2025-03-10",
		Status:     models.AttendancePresent,
		ClockIn:    "09:00",
		ClockOut:   "17:30",
	}

	resp := env.do(t, http.MethodPost, "/api/attendance", emp.Token, payload)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/attendance", hr.Token, payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var record models.Attendance
	decode(t, resp, &record)
	assert.Equal(t, 8.5, record.WorkHours)

	resp = env.do(t, http.MethodPost, "/api/attendance", hr.Token, payload)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	bad := payload
	bad.Date = "2025-03-11"
	bad.ClockOut = "08:00"
	resp = env.do(t, http.MethodPost, "/api/attendance", hr.Token, bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "clock_out must be after clock_in", message(t, resp))

	path := "/api/attendance/" + record.ID.Hex()
	resp = env.do(t, http.MethodPut, path, hr.Token, models.AttendanceUpdatePayload{ClockOut: "13:00", Status: models.AttendanceHalfDay})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Attendance
	decode(t, resp, &updated)
	assert.Equal(t, 4.0, updated.WorkHours)
	assert.Equal(t, models.AttendanceHalfDay, updated.Status)

	resp = env.do(t, http.MethodGet, "/api/attendance/summary?month=3&year=2025", emp.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary models.AttendanceSummary
	decode(t, resp, &summary)
	assert.Equal(t, 1, summary.Records)
	assert.Equal(t, 1, summary.Counts[models.AttendanceHalfDay])
	assert.Equal(t, 4.0, summary.WorkHours)

	resp = env.do(t, http.MethodDelete, path, hr.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = env.do(t, http.MethodDelete, path, hr.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAttendanceListAccess(t *testing.T) {
	env := newTestEnv(t)
	manager := env.newAccount(t, models.RoleManager, "mgr@example.com", 0)
	emp := env.newAccount(t, models.RoleEmployee, "emp@example.com", 0)
	other := env.newAccount(t, models.RoleEmployee, "other@example.com", 0)

	resp := env.do(t, http.MethodPost, "/api/attendance/clock-in", emp.Token, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/attendance", emp.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/attendance?employee="+emp.Employee.ID.Hex(), manager.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page attendancePage
	decode(t, resp, &page)
	assert.Equal(t, int64(1), page.Total)

	resp = env.do(t, http.MethodGet, "/api/attendance?from=03-2025", manager.Token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/attendance/summary?employee="+emp.Employee.ID.Hex(), other.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/attendance/summary?employee="+emp.Employee.ID.Hex(), manager.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/attendance/summary?month=13", emp.Token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
