package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"

	"hrms-backend/models"
	"hrms-backend/pkg/mailer"
	"hrms-backend/pkg/mfa"
	"hrms-backend/pkg/paseto"
	"hrms-backend/pkg/password"
	"hrms-backend/pkg/token"
	"hrms-backend/repository"
)

const (
	MaxLoginAttempts = 5
	LockoutDuration  = 30 * time.Minute
)

type AuthHandler struct {
	userRepo     repository.UserRepository
	employeeRepo repository.EmployeeRepository
	tokens       *token.Manager
	challenges   *paseto.Maker
	mail         mailer.Mailer
	appName      string
	now          func() time.Time
}

func NewAuthHandler(userRepo repository.UserRepository, employeeRepo repository.EmployeeRepository, tokens *token.Manager, challenges *paseto.Maker, mail mailer.Mailer, appName string) *AuthHandler {
	return &AuthHandler{
		userRepo:     userRepo,
		employeeRepo: employeeRepo,
		tokens:       tokens,
		challenges:   challenges,
		mail:         mail,
		appName:      appName,
		now:          time.Now,
	}
}

// Register godoc
// @Summary Register
// @Description Self-service sign up. Creates an employee-role account and links it to the employee record with the same email, if any.
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body models.UserRegisterPayload true "Registration data"
// @Success 201 {object} object{message=string,user=models.User}
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var payload models.UserRegisterPayload
	if err := bind(c, &payload); err != nil {
		return err
	}

	hashed, err := password.HashPassword(payload.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	user := &models.User{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: hashed,
		Role:     models.RoleEmployee,
		IsActive: true,
	}
	if emp, err := h.employeeRepo.FindByEmail(ctx, payload.Email); err == nil {
		user.EmployeeID = &emp.ID
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if err := h.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fiber.NewError(fiber.StatusBadRequest, "Email is already registered")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful",
		"user":    user,
	})
}

// Login godoc
// @Summary Login
// @Description Checks email and password. Returns a session JWT, or an MFA challenge when the account has MFA enabled.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body models.UserLoginPayload true "Credentials"
// @Success 200 {object} models.LoginSuccessResponse "Session token, or a models.MFAChallengeResponse when MFA is enabled"
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 423 {object} models.LockedResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var payload models.UserLoginPayload
	if err := bind(c, &payload); err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := h.userRepo.FindUserByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
		}
		return err
	}

	now := h.now()
	if user.IsLocked(now) {
		return lockedResponse(c, user)
	}
	if !user.IsActive {
		return fiber.NewError(fiber.StatusForbidden, "Account is deactivated")
	}

	if !password.CheckPasswordHash(payload.Password, user.Password) {
		return h.failedAttempt(ctx, c, user, "Invalid email or password")
	}

	if user.FailedLoginAttempts > 0 || user.LockUntil != nil {
		if err := h.userRepo.ClearLockout(ctx, user.ID); err != nil {
			return err
		}
	}

	if !user.MFAEnabled {
		return h.issueSession(ctx, c, user)
	}

	challenge, err := h.challenges.GenerateChallenge(user.ID, user.MFAMethod)
	if err != nil {
		return fmt.Errorf("generate mfa challenge: %w", err)
	}
	if user.MFAMethod == models.MFAMethodEmail {
		if err := h.sendEmailCode(ctx, user); err != nil {
			return err
		}
	}

	return c.Status(fiber.StatusOK).JSON(models.MFAChallengeResponse{
		Message:     "Verification code required",
		MFARequired: true,
		MFAMethod:   user.MFAMethod,
		MFAToken:    challenge,
	})
}

// VerifyMFA godoc
// @Summary Verify MFA code
// @Description Completes a login started with an MFA challenge. A wrong code counts as a failed login.
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.MFAVerifyPayload true "Challenge token and code"
// @Success 200 {object} models.LoginSuccessResponse
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 423 {object} models.LockedResponse
// @Router /auth/mfa/verify [post]
func (h *AuthHandler) VerifyMFA(c *fiber.Ctx) error {
	var payload models.MFAVerifyPayload
	if err := bind(c, &payload); err != nil {
		return err
	}

	challenge, err := h.challenges.VerifyChallenge(payload.MFAToken)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired MFA token")
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := h.userRepo.FindUserByID(ctx, challenge.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired MFA token")
		}
		return err
	}

	now := h.now()
	if user.IsLocked(now) {
		return lockedResponse(c, user)
	}
	if !user.IsActive || !user.MFAEnabled || user.MFAMethod != challenge.Method {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired MFA token")
	}

	var valid bool
	switch challenge.Method {
	case models.MFAMethodTOTP:
		valid = mfa.ValidateTOTP(payload.Code, user.MFASecret, now)
	case models.MFAMethodEmail:
		valid = user.MFACodeHash != "" &&
			user.MFACodeExpiresAt != nil && user.MFACodeExpiresAt.After(now) &&
			password.CheckPasswordHash(payload.Code, user.MFACodeHash)
	}
	if !valid {
		return h.failedAttempt(ctx, c, user, "Invalid verification code")
	}

	err = h.userRepo.UpdateUser(ctx, user.ID,
		bson.M{"failed_login_attempts": 0},
		"lock_until", "mfa_code_hash", "mfa_code_expires_at",
	)
	if err != nil {
		return err
	}
	return h.issueSession(ctx, c, user)
}

// ResendMFACode godoc
// @Summary Resend email MFA code
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.MFAResendPayload true "Challenge token"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/mfa/resend [post]
func (h *AuthHandler) ResendMFACode(c *fiber.Ctx) error {
	var payload models.MFAResendPayload
	if err := bind(c, &payload); err != nil {
		return err
	}

	challenge, err := h.challenges.VerifyChallenge(payload.MFAToken)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired MFA token")
	}
	if challenge.Method != models.MFAMethodEmail {
		return fiber.NewError(fiber.StatusBadRequest, "Codes can only be resent for email verification")
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := h.userRepo.FindUserByID(ctx, challenge.UserID)
	if err != nil {
		return storeError(err, "User")
	}
	if user.IsLocked(h.now()) {
		return lockedResponse(c, user)
	}
	if err := h.sendEmailCode(ctx, user); err != nil {
		return err
	}
	return c.JSON(models.MessageResponse{Message: "A new verification code has been sent"})
}

// Me godoc
// @Summary Current user
// @Description Returns the authenticated account and its linked employee profile.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{user=models.User,employee=models.Employee}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := h.userRepo.FindUserByID(ctx, claims.UserID)
	if err != nil {
		return storeError(err, "User")
	}

	resp := fiber.Map{"user": user}
	if user.EmployeeID != nil {
		emp, err := h.employeeRepo.FindByID(ctx, *user.EmployeeID)
		switch {
		case err == nil:
			resp["employee"] = emp
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}
	}
	return c.JSON(resp)
}

// ChangePassword godoc
// @Summary Change password
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param password body models.ChangePasswordPayload true "Old and new password"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}

	var payload models.ChangePasswordPayload
	if err := bind(c, &payload); err != nil {
		return err
	}
	if payload.NewPassword == payload.OldPassword {
		return fiber.NewError(fiber.StatusBadRequest, "New password must differ from the old password")
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := h.userRepo.FindUserByID(ctx, claims.UserID)
	if err != nil {
		return storeError(err, "User")
	}
	if !password.CheckPasswordHash(payload.OldPassword, user.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "Old password is incorrect")
	}

	hashed, err := password.HashPassword(payload.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := h.userRepo.UpdateUser(ctx, user.ID, bson.M{"password": hashed}); err != nil {
		return err
	}
	return c.JSON(models.MessageResponse{Message: "Password changed"})
}

// Logout godoc
// @Summary Logout
// @Description Tokens are stateless; the client discards its token.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.MessageResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if _, err := currentUser(c); err != nil {
		return err
	}
	return c.JSON(models.MessageResponse{Message: "Logged out"})
}

// SetupTOTP godoc
// @Summary Start TOTP enrolment
// @Description Generates a pending TOTP secret. It becomes active after /auth/mfa/totp/enable confirms a code.
// @Tags MFA
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.TOTPSetupResponse
// @Router /auth/mfa/totp/setup [post]
func (h *AuthHandler) SetupTOTP(c *fiber.Ctx) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := h.userRepo.FindUserByID(ctx, claims.UserID)
	if err != nil {
		return storeError(err, "User")
	}

	enrollment, err := mfa.NewEnrollment(h.appName, user.Email)
	if err != nil {
		return err
	}
	if err := h.userRepo.UpdateUser(ctx, user.ID, bson.M{"mfa_pending_secret": enrollment.Secret}); err != nil {
		return err
	}

	return c.JSON(models.TOTPSetupResponse{
		Secret:     enrollment.Secret,
		OTPAuthURL: enrollment.URL,
		QRCode:     enrollment.QRCode,
	})
}

// EnableTOTP godoc
// @Summary Confirm TOTP enrolment
// @Tags MFA
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.MFACodePayload true "Code from the authenticator app"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/mfa/totp/enable [post]
func (h *AuthHandler) EnableTOTP(c *fiber.Ctx) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}

	var payload models.MFACodePayload
	if err := bind(c, &payload); err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := h.userRepo.FindUserByID(ctx, claims.UserID)
	if err != nil {
		return storeError(err, "User")
	}
	if user.MFAPendingSecret == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Start TOTP setup first")
	}
	if !mfa.ValidateTOTP(payload.Code, user.MFAPendingSecret, h.now()) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid verification code")
	}

	err = h.userRepo.UpdateUser(ctx, user.ID, bson.M{
		"mfa_enabled": true,
		"mfa_method":  models.MFAMethodTOTP,
		"mfa_secret":  user.MFAPendingSecret,
	}, "mfa_pending_secret", "mfa_code_hash", "mfa_code_expires_at")
	if err != nil {
		return err
	}
	return c.JSON(models.MessageResponse{Message: "Authenticator app MFA enabled"})
}

// EnableEmailMFA godoc
// @Summary Enable email MFA
// @Tags MFA
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.MessageResponse
// @Router /auth/mfa/email/enable [post]
func (h *AuthHandler) EnableEmailMFA(c *fiber.Ctx) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	err = h.userRepo.UpdateUser(ctx, claims.UserID, bson.M{
		"mfa_enabled": true,
		"mfa_method":  models.MFAMethodEmail,
	}, "mfa_secret", "mfa_pending_secret")
	if err != nil {
		return storeError(err, "User")
	}
	return c.JSON(models.MessageResponse{Message: "Email MFA enabled"})
}

// DisableMFA godoc
// @Summary Disable MFA
// @Tags MFA
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.MFADisablePayload true "Current password"
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/mfa/disable [post]
func (h *AuthHandler) DisableMFA(c *fiber.Ctx) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}

	var payload models.MFADisablePayload
	if err := bind(c, &payload); err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := h.userRepo.FindUserByID(ctx, claims.UserID)
	if err != nil {
		return storeError(err, "User")
	}
	if !password.CheckPasswordHash(payload.Password, user.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "Password is incorrect")
	}

	err = h.userRepo.UpdateUser(ctx, user.ID, bson.M{"mfa_enabled": false},
		"mfa_method", "mfa_secret", "mfa_pending_secret", "mfa_code_hash", "mfa_code_expires_at")
	if err != nil {
		return err
	}
	return c.JSON(models.MessageResponse{Message: "MFA disabled"})
}

func (h *AuthHandler) issueSession(ctx context.Context, c *fiber.Ctx, user *models.User) error {
	signed, err := h.tokens.Generate(user)
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}

	now := h.now()
	if err := h.userRepo.UpdateUser(ctx, user.ID, bson.M{"last_login_at": now}); err != nil {
		log.Printf("WARN: failed to record last login for %s: %v", user.ID.Hex(), err)
	}
	user.LastLoginAt = &now
	user.FailedLoginAttempts = 0
	user.LockUntil = nil

	return c.JSON(models.LoginSuccessResponse{
		Message: "Login successful",
		Token:   signed,
		User:    *user,
	})
}

// failedAttempt counts a failure against the account and answers 423 if that failure locked it.
func (h *AuthHandler) failedAttempt(ctx context.Context, c *fiber.Ctx, user *models.User, message string) error {
	updated, err := h.userRepo.RecordFailedLogin(ctx, user.ID, MaxLoginAttempts, LockoutDuration)
	if err != nil {
		return err
	}
	if updated.IsLocked(h.now()) {
		return lockedResponse(c, updated)
	}
	return fiber.NewError(fiber.StatusUnauthorized, message)
}

func (h *AuthHandler) sendEmailCode(ctx context.Context, user *models.User) error {
	code, err := mfa.GenerateEmailCode()
	if err != nil {
		return err
	}
	hash, err := password.HashPassword(code)
	if err != nil {
		return fmt.Errorf("hash mfa code: %w", err)
	}

	expires := h.now().Add(mfa.EmailCodeTTL)
	if err := h.userRepo.UpdateUser(ctx, user.ID, bson.M{"mfa_code_hash": hash, "mfa_code_expires_at": expires}); err != nil {
		return err
	}

	body := mailer.MFACodeBody(h.appName, code, int(mfa.EmailCodeTTL/time.Minute))
	if err := h.mail.Send(ctx, user.Email, h.appName+" verification code", body); err != nil {
		log.Printf("ERROR: failed to send MFA code to %s: %v", user.Email, err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to send verification code")
	}
	return nil
}

func lockedResponse(c *fiber.Ctx, user *models.User) error {
	return c.Status(fiber.StatusLocked).JSON(models.LockedResponse{
		Message:   "Account locked due to too many failed login attempts",
		LockUntil: user.LockUntil.UTC().Format(time.RFC3339),
	})
}
