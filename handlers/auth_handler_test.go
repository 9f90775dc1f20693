package handlers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms-backend/handlers"
	"hrms-backend/models"
	"hrms-backend/pkg/mfa"
)

func login(t *testing.T, env *testEnv, email, pass string) *http.Response {
	t.Helper()
	return env.do(t, http.MethodPost, "/api/auth/login", "", models.UserLoginPayload{Email: email, Password: pass})
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/auth/register", "", models.UserRegisterPayload{
		Name: "Jane Doe", Email: "Jane@Example.com", Password: testPassword,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		User models.User `json:"user"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "jane@example.com", body.User.Email)
	assert.Equal(t, models.RoleEmployee, body.User.Role)

	resp = env.do(t, http.MethodPost, "/api/auth/register", "", models.UserRegisterPayload{
		Name: "Jane Again", Email: "jane@example.com", Password: testPassword,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email is already registered", message(t, resp))
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/auth/register", "", models.UserRegisterPayload{
		Name: "Jo", Email: "not-an-email", Password: "lowercase1",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body models.ValidationErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "Validation failed", body.Message)

	fields := map[string]bool{}
	for _, e := range body.Errors {
		fields[e.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
}

func TestRegisterLinksEmployeeByEmail(t *testing.T) {
	env := newTestEnv(t)
	emp := &models.Employee{EmployeeCode: "EMP0001", FirstName: "Li", Email: "li@example.com", Position: "Dev", DateOfJoining: "2024-01-01", Status: models.EmployeeStatusActive}
	require.NoError(t, env.employees.Create(context.Background(), emp))

	resp := env.do(t, http.MethodPost, "/api/auth/register", "", models.UserRegisterPayload{
		Name: "Li Wei", Email: "li@example.com", Password: testPassword,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	user, err := env.users.FindUserByEmail(context.Background(), "li@example.com")
	require.NoError(t, err)
	require.NotNil(t, user.EmployeeID)
	assert.Equal(t, emp.ID, *user.EmployeeID)
}

func TestLoginAndMe(t *testing.T) {
	env := newTestEnv(t)
	acc := env.newAccount(t, models.RoleEmployee, "emp@example.com", 60000)

	resp := login(t, env, "EMP@example.com", testPassword)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body models.LoginSuccessResponse
	decode(t, resp, &body)
	require.NotEmpty(t, body.Token)
	assert.Equal(t, acc.User.ID, body.User.ID)

	resp = env.do(t, http.MethodGet, "/api/auth/me", body.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me struct {
		User     models.User     `json:"user"`
		Employee models.Employee `json:"employee"`
	}
	decode(t, resp, &me)
	assert.Equal(t, "emp@example.com", me.User.Email)
	assert.Equal(t, acc.Employee.ID, me.Employee.ID)
}

func TestLoginUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	resp := login(t, env, "ghost@example.com", testPassword)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", message(t, resp))
}

func TestLoginDeactivated(t *testing.T) {
	env := newTestEnv(t)
	acc := env.newAccount(t, models.RoleEmployee, "off@example.com", 0)
	require.NoError(t, env.users.UpdateUser(context.Background(), acc.User.ID, map[string]interface{}{"is_active": false}))

	resp := login(t, env, "off@example.com", testPassword)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLoginLockout(t *testing.T) {
	env := newTestEnv(t)
	admin := env.newAccount(t, models.RoleAdmin, "admin@example.com", 0)
	acc := env.newAccount(t, models.RoleEmployee, "emp@example.com", 0)

	for i := 1; i < handlers.MaxLoginAttempts; i++ {
		resp := login(t, env, "emp@example.com", "WrongPass1")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "attempt %d", i)
	}

	resp := login(t, env, "emp@example.com", "WrongPass1")
	require.Equal(t, http.StatusLocked, resp.StatusCode)
	var locked models.LockedResponse
	decode(t, resp, &locked)
	until, err := time.Parse(time.RFC3339, locked.LockUntil)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(handlers.LockoutDuration), until, time.Minute)

	// the right password does not help while locked
	resp = login(t, env, "emp@example.com", testPassword)
	assert.Equal(t, http.StatusLocked, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/users/"+acc.User.ID.Hex()+"/unlock", admin.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = login(t, env, "emp@example.com", testPassword)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSuccessfulLoginResetsFailures(t *testing.T) {
	env := newTestEnv(t)
	acc := env.newAccount(t, models.RoleEmployee, "emp@example.com", 0)

	for i := 0; i < handlers.MaxLoginAttempts-1; i++ {
		login(t, env, "emp@example.com", "WrongPass1")
	}
	require.Equal(t, http.StatusOK, login(t, env, "emp@example.com", testPassword).StatusCode)

	user, err := env.users.FindUserByID(context.Background(), acc.User.ID)
	require.NoError(t, err)
	assert.Zero(t, user.FailedLoginAttempts)

	// a fresh failure after the reset must not lock the account
	assert.Equal(t, http.StatusUnauthorized, login(t, env, "emp@example.com", "WrongPass1").StatusCode)
}

// wrongTOTP returns a code that is not accepted for secret around now.
func wrongTOTP(t *testing.T, secret string) string {
	t.Helper()
	valid := map[string]bool{}
	now := time.Now()
	for _, offset := range []time.Duration{-30 * time.Second, 0, 30 * time.Second} {
		code, err := mfa.GenerateTOTP(secret, now.Add(offset))
		require.NoError(t, err)
		valid[code] = true
	}
	for _, candidate := range []string{"000000", "111111", "222222", "333333"} {
		if !valid[candidate] {
			return candidate
		}
	}
	t.Fatal("no invalid candidate code")
	return ""
}

func TestTOTPLogin(t *testing.T) {
	env := newTestEnv(t)
	acc := env.newAccount(t, models.RoleEmployee, "totp@example.com", 0)

	resp := env.do(t, http.MethodPost, "/api/auth/mfa/totp/setup", acc.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var setup models.TOTPSetupResponse
	decode(t, resp, &setup)
	require.NotEmpty(t, setup.Secret)
	assert.Contains(t, setup.OTPAuthURL, "otpauth://totp/")

	resp = env.do(t, http.MethodPost, "/api/auth/mfa/totp/enable", acc.Token, models.MFACodePayload{Code: wrongTOTP(t, setup.Secret)})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	code, err := mfa.GenerateTOTP(setup.Secret, time.Now())
	require.NoError(t, err)
	resp = env.do(t, http.MethodPost, "/api/auth/mfa/totp/enable", acc.Token, models.MFACodePayload{Code: code})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = login(t, env, "totp@example.com", testPassword)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var challenge models.MFAChallengeResponse
	decode(t, resp, &challenge)
	require.True(t, challenge.MFARequired)
	assert.Equal(t, models.MFAMethodTOTP, challenge.MFAMethod)

	resp = env.do(t, http.MethodPost, "/api/auth/mfa/verify", "", models.MFAVerifyPayload{MFAToken: challenge.MFAToken, Code: wrongTOTP(t, setup.Secret)})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	code, err = mfa.GenerateTOTP(setup.Secret, time.Now())
	require.NoError(t, err)
	resp = env.do(t, http.MethodPost, "/api/auth/mfa/verify", "", models.MFAVerifyPayload{MFAToken: challenge.MFAToken, Code: code})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var session models.LoginSuccessResponse
	decode(t, resp, &session)
	assert.NotEmpty(t, session.Token)
}

func TestEmailMFALogin(t *testing.T) {
	env := newTestEnv(t)
	acc := env.newAccount(t, models.RoleEmployee, "mail@example.com", 0)

	resp := env.do(t, http.MethodPost, "/api/auth/mfa/email/enable", acc.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = login(t, env, "mail@example.com", testPassword)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var challenge models.MFAChallengeResponse
	decode(t, resp, &challenge)
	require.True(t, challenge.MFARequired)
	assert.Equal(t, models.MFAMethodEmail, challenge.MFAMethod)

	first := env.mail.lastCode(t)

	resp = env.do(t, http.MethodPost, "/api/auth/mfa/resend", "", models.MFAResendPayload{MFAToken: challenge.MFAToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	code := env.mail.lastCode(t)

	if first != code {
		// a resend replaces the stored hash, so the first code no longer works
		resp = env.do(t, http.MethodPost, "/api/auth/mfa/verify", "", models.MFAVerifyPayload{MFAToken: challenge.MFAToken, Code: first})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp = env.do(t, http.MethodPost, "/api/auth/mfa/verify", "", models.MFAVerifyPayload{MFAToken: challenge.MFAToken, Code: code})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	user, err := env.users.FindUserByID(context.Background(), acc.User.ID)
	require.NoError(t, err)
	assert.Empty(t, user.MFACodeHash)
}

func TestVerifyMFARejectsGarbageToken(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/auth/mfa/verify", "", models.MFAVerifyPayload{MFAToken: "v2.local.garbage", Code: "123456"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChangePasswordAndDisableMFA(t *testing.T) {
	env := newTestEnv(t)
	acc := env.newAccount(t, models.RoleEmployee, "pw@example.com", 0)

	resp := env.do(t, http.MethodPost, "/api/auth/change-password", acc.Token, models.ChangePasswordPayload{OldPassword: "Wrong1234", NewPassword: "NewPassword1"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/auth/change-password", acc.Token, models.ChangePasswordPayload{OldPassword: testPassword, NewPassword: "NewPassword1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, http.StatusOK, login(t, env, "pw@example.com", "NewPassword1").StatusCode)

	env.do(t, http.MethodPost, "/api/auth/mfa/email/enable", acc.Token, nil)
	resp = env.do(t, http.MethodPost, "/api/auth/mfa/disable", acc.Token, models.MFADisablePayload{Password: "NewPassword1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = login(t, env, "pw@example.com", "NewPassword1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var session models.LoginSuccessResponse
	decode(t, resp, &session)
	assert.NotEmpty(t, session.Token)
}
