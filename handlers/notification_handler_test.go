package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms-backend/models"
)

type notificationPage struct {
	Data  []models.Notification `json:"data"`
	Total int64                 `json:"total"`
}

func unreadCount(t *testing.T, env *testEnv, bearer string) int64 {
	t.Helper()
	resp := env.do(t, http.MethodGet, "/api/notifications/unread-count", bearer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Count int64 `json:"count"`
	}
	decode(t, resp, &body)
	return body.Count
}

func notify(t *testing.T, env *testEnv, bearer string, to *account, title string) models.Notification {
	t.Helper()
	resp := env.do(t, http.MethodPost, "/api/notifications", bearer, models.NotificationCreatePayload{
		UserID:  to.User.ID.Hex(),
		Title:   title,
		Message: "Please read the updated handbook.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var n models.Notification
	decode(t, resp, &n)
	return n
}

func TestNotifications(t *testing.T) {
	env := newTestEnv(t)
	hr := env.newAccount(t, models.RoleHR, "hr@example.com", 0)
	emp := env.newAccount(t, models.RoleEmployee, "emp@example.com", 0)
	other := env.newAccount(t, models.RoleEmployee, "other@example.com", 0)

	first := notify(t, env, hr.Token, emp, "Handbook")
	assert.Equal(t, models.NotificationSystem, first.Type)
	assert.False(t, first.Read)
	notify(t, env, hr.Token, emp, "Policy")
	notify(t, env, hr.Token, emp, "Holiday")

	assert.Equal(t, int64(3), unreadCount(t, env, emp.Token))
	assert.Equal(t, int64(0), unreadCount(t, env, other.Token))

	// other users cannot touch someone else's notification
	path := "/api/notifications/" + first.ID.Hex()
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPut, path+"/read", other.Token, nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, path, other.Token, nil).StatusCode)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, path+"/read", emp.Token, nil).StatusCode)
	assert.Equal(t, int64(2), unreadCount(t, env, emp.Token))

	resp := env.do(t, http.MethodGet, "/api/notifications?unread=true", emp.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page notificationPage
	decode(t, resp, &page)
	assert.Equal(t, int64(2), page.Total)

	resp = env.do(t, http.MethodPut, "/api/notifications/read-all", emp.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var readAll struct {
		Updated int64 `json:"updated"`
	}
	decode(t, resp, &readAll)
	assert.Equal(t, int64(2), readAll.Updated)
	assert.Equal(t, int64(0), unreadCount(t, env, emp.Token))

	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, path, emp.Token, nil).StatusCode)
	resp = env.do(t, http.MethodGet, "/api/notifications?limit=1", emp.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &page)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Data, 1)
}

func TestCreateNotificationRules(t *testing.T) {
	env := newTestEnv(t)
	hr := env.newAccount(t, models.RoleHR, "hr@example.com", 0)
	emp := env.newAccount(t, models.RoleEmployee, "emp@example.com", 0)

	payload := models.NotificationCreatePayload{UserID: emp.User.ID.Hex(), Title: "Hi", Message: "Hello"}
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/api/notifications", emp.Token, payload).StatusCode)

	payload.UserID = "64b7f0c2a1b2c3d4e5f60718"
	resp := env.do(t, http.MethodPost, "/api/notifications", hr.Token, payload)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", message(t, resp))
}
