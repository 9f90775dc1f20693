package handlers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms-backend/models"
)

type userPage struct {
	Data  []models.User `json:"data"`
	Total int64         `json:"total"`
}

func TestUserAdministration(t *testing.T) {
	env := newTestEnv(t)
	admin := env.newAccount(t, models.RoleAdmin, "admin@example.com", 0)
	hr := env.newAccount(t, models.RoleHR, "hr@example.com", 0)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/users", hr.Token, nil).StatusCode)

	payload := models.UserCreatePayload{
		Name:     "New Manager",
		Email:    "manager@example.com",
		Password: testPassword,
		Role:     models.RoleManager,
	}
	resp := env.do(t, http.MethodPost, "/api/users", admin.Token, payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.User
	decode(t, resp, &created)
	assert.Equal(t, models.RoleManager, created.Role)
	assert.True(t, created.IsActive)
	path := "/api/users/" + created.ID.Hex()

	resp = env.do(t, http.MethodPost, "/api/users", admin.Token, payload)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email is already registered", message(t, resp))

	weak := payload
	weak.Email = "weak@example.com"
	weak.Password = "alllowercase1"
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/users", admin.Token, weak).StatusCode)

	resp = env.do(t, http.MethodGet, "/api/users?role=manager", admin.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page userPage
	decode(t, resp, &page)
	assert.Equal(t, int64(1), page.Total)

	inactive := false
	resp = env.do(t, http.MethodPut, path, admin.Token, models.UserUpdatePayload{
		Role:       models.RoleHR,
		IsActive:   &inactive,
		EmployeeID: hr.Employee.ID.Hex(),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.User
	decode(t, resp, &updated)
	assert.Equal(t, models.RoleHR, updated.Role)
	assert.False(t, updated.IsActive)
	require.NotNil(t, updated.EmployeeID)
	assert.Equal(t, hr.Employee.ID, *updated.EmployeeID)

	resp = login(t, env, "manager@example.com", testPassword)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodPut, path, admin.Token, models.UserUpdatePayload{EmployeeID: "64b7f0c2a1b2c3d4e5f60718"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/users/"+admin.User.ID.Hex(), admin.Token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "You cannot delete your own account", message(t, resp))

	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, path, admin.Token, nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, admin.Token, nil).StatusCode)
}

func TestRevokedAccountsLoseAccess(t *testing.T) {
	env := newTestEnv(t)
	admin := env.newAccount(t, models.RoleAdmin, "admin@example.com", 0)
	hr := env.newAccount(t, models.RoleHR, "hr@example.com", 0)
	emp := env.newAccount(t, models.RoleEmployee, "emp@example.com", 0)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/employees", hr.Token, nil).StatusCode)
	resp := env.do(t, http.MethodPut, "/api/users/"+hr.User.ID.Hex(), admin.Token, models.UserUpdatePayload{Role: models.RoleEmployee})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/employees", hr.Token, nil).StatusCode)

	inactive := false
	resp = env.do(t, http.MethodPut, "/api/users/"+emp.User.ID.Hex(), admin.Token, models.UserUpdatePayload{IsActive: &inactive})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/auth/me", emp.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Account is deactivated", message(t, resp))
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/api/attendance/clock-in", emp.Token, nil).StatusCode)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/users/"+emp.User.ID.Hex(), admin.Token, nil).StatusCode)
	resp = env.do(t, http.MethodGet, "/api/leaves/balance/me", emp.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Account no longer exists", message(t, resp))

	_, err := env.attendance.FindByEmployeeAndDate(context.Background(), emp.Employee.ID, time.Now().UTC().Format("2006-01-02"))
	assert.Error(t, err)
}
