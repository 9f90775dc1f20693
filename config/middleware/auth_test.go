package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hrms-backend/models"
	"hrms-backend/pkg/token"
	"hrms-backend/repository/memory"
)

func newApp(tokens *token.Manager, users *memory.Users) *fiber.App {
	app := fiber.New()
	app.Get("/private", AuthMiddleware(tokens, users), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user").(*models.Claims).Role)
	})
	app.Get("/hr", AuthMiddleware(tokens, users), RequireRoles(models.HRStaffRoles...), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/unguarded", RequireRoles(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func get(t *testing.T, app *fiber.App, path, authorization string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

// stored creates an active user with role and returns it with a token for it.
func stored(t *testing.T, users *memory.Users, tokens *token.Manager, role string) (*models.User, string) {
	t.Helper()
	user := &models.User{Name: role, Email: role + "@example.com", Role: role, IsActive: true}
	require.NoError(t, users.CreateUser(context.Background(), user))
	s, err := tokens.Generate(user)
	require.NoError(t, err)
	return user, s
}

func signed(t *testing.T, users *memory.Users, tokens *token.Manager, role string) string {
	t.Helper()
	_, s := stored(t, users, tokens, role)
	return s
}

func TestAuthMiddleware(t *testing.T) {
	tokens := token.NewManager("secret", "HRMS", time.Hour)
	users := memory.NewUsers()
	app := newApp(tokens, users)

	tests := []struct {
		name          string
		authorization string
		wantStatus    int
		wantBody      string
	}{
		{"missing header", "", http.StatusUnauthorized, "Authorization header is required"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Authorization header format must be Bearer <token>"},
		{"empty token", "Bearer ", http.StatusUnauthorized, "Authorization header format must be Bearer <token>"},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized, "Invalid or expired token"},
		{"valid token", "Bearer " + signed(t, users, tokens, models.RoleManager), http.StatusOK, models.RoleManager},
		{"lowercase scheme", "bearer " + signed(t, users, tokens, models.RoleHR), http.StatusOK, models.RoleHR},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := get(t, app, "/private", tt.authorization)
			assert.Equal(t, tt.wantStatus, status)
			assert.Contains(t, body, tt.wantBody)
		})
	}
}

func TestAuthMiddlewareRejectsForeignSecret(t *testing.T) {
	users := memory.NewUsers()
	app := newApp(token.NewManager("secret", "HRMS", time.Hour), users)
	other := token.NewManager("another-secret", "HRMS", time.Hour)

	status, _ := get(t, app, "/private", "Bearer "+signed(t, users, other, models.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRequireRoles(t *testing.T) {
	tokens := token.NewManager("secret", "HRMS", time.Hour)
	users := memory.NewUsers()
	app := newApp(tokens, users)

	status, _ := get(t, app, "/hr", "Bearer "+signed(t, users, tokens, models.RoleHR))
	assert.Equal(t, http.StatusOK, status)

	status, _ = get(t, app, "/hr", "Bearer "+signed(t, users, tokens, models.RoleAdmin))
	assert.Equal(t, http.StatusOK, status)

	status, body := get(t, app, "/hr", "Bearer "+signed(t, users, tokens, models.RoleEmployee))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, body, "Insufficient permissions")

	status, _ = get(t, app, "/unguarded", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAuthMiddlewareUsesStoredAccount(t *testing.T) {
	ctx := context.Background()
	tokens := token.NewManager("secret", "HRMS", time.Hour)
	users := memory.NewUsers()
	app := newApp(tokens, users)

	user, s := stored(t, users, tokens, models.RoleHR)
	status, _ := get(t, app, "/hr", "Bearer "+s)
	require.Equal(t, http.StatusOK, status)

	require.NoError(t, users.UpdateUser(ctx, user.ID, bson.M{"role": models.RoleEmployee}))
	status, body := get(t, app, "/private", "Bearer "+s)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.RoleEmployee, body)
	status, _ = get(t, app, "/hr", "Bearer "+s)
	assert.Equal(t, http.StatusForbidden, status)

	require.NoError(t, users.UpdateUser(ctx, user.ID, bson.M{"is_active": false}))
	status, body = get(t, app, "/private", "Bearer "+s)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, body, "Account is deactivated")

	require.NoError(t, users.DeleteUser(ctx, user.ID))
	status, body = get(t, app, "/private", "Bearer "+s)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "Account no longer exists")
}

func TestAuthMiddlewareUnknownSubject(t *testing.T) {
	tokens := token.NewManager("secret", "HRMS", time.Hour)
	app := newApp(tokens, memory.NewUsers())

	s, err := tokens.Generate(&models.User{ID: primitive.NewObjectID(), Email: "ghost@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)
	status, _ := get(t, app, "/private", "Bearer "+s)
	assert.Equal(t, http.StatusUnauthorized, status)
}
