package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin    = "admin"
	RoleHR       = "hr"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

const (
	MFAMethodEmail = "email"
	MFAMethodTOTP  = "totp"
)

// Roles allowed to manage HR records.
var HRStaffRoles = []string{RoleAdmin, RoleHR}

// Roles allowed to review requests and read team data.
var ReviewerRoles = []string{RoleAdmin, RoleHR, RoleManager}

type User struct {
	ID                  primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Name                string              `json:"name" bson:"name"`
	Email               string              `json:"email" bson:"email"`
	Password            string              `json:"-" bson:"password"`
	Role                string              `json:"role" bson:"role"`
	EmployeeID          *primitive.ObjectID `json:"employee_id,omitempty" bson:"employee_id,omitempty"`
	IsActive            bool                `json:"is_active" bson:"is_active"`
	MFAEnabled          bool                `json:"mfa_enabled" bson:"mfa_enabled"`
	MFAMethod           string              `json:"mfa_method,omitempty" bson:"mfa_method,omitempty"`
	MFASecret           string              `json:"-" bson:"mfa_secret,omitempty"`
	MFAPendingSecret    string              `json:"-" bson:"mfa_pending_secret,omitempty"`
	MFACodeHash         string              `json:"-" bson:"mfa_code_hash,omitempty"`
	MFACodeExpiresAt    *time.Time          `json:"-" bson:"mfa_code_expires_at,omitempty"`
	FailedLoginAttempts int                 `json:"failed_login_attempts" bson:"failed_login_attempts"`
	LockUntil           *time.Time          `json:"lock_until,omitempty" bson:"lock_until,omitempty"`
	LastLoginAt         *time.Time          `json:"last_login_at,omitempty" bson:"last_login_at,omitempty"`
	CreatedAt           time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at" bson:"updated_at"`
}

// IsLocked reports whether the account is inside a lockout window at t.
func (u *User) IsLocked(t time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(t)
}

type UserRegisterPayload struct {
	Name     string `json:"name" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72,hasuppercase"`
}

type UserCreatePayload struct {
	Name       string `json:"name" validate:"required,min=3,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8,max=72,hasuppercase"`
	Role       string `json:"role" validate:"required,oneof=admin hr manager employee"`
	EmployeeID string `json:"employee_id" validate:"omitempty,objectid"`
}

type UserUpdatePayload struct {
	Name       string `json:"name,omitempty" validate:"omitempty,min=3,max=100"`
	Role       string `json:"role,omitempty" validate:"omitempty,oneof=admin hr manager employee"`
	IsActive   *bool  `json:"is_active,omitempty"`
	EmployeeID string `json:"employee_id,omitempty" validate:"omitempty,objectid"`
}

type UserLoginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordPayload struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72,hasuppercase"`
}

type MFAVerifyPayload struct {
	MFAToken string `json:"mfa_token" validate:"required"`
	Code     string `json:"code" validate:"required,numeric,len=6"`
}

type MFAResendPayload struct {
	MFAToken string `json:"mfa_token" validate:"required"`
}

type MFACodePayload struct {
	Code string `json:"code" validate:"required,numeric,len=6"`
}

type MFADisablePayload struct {
	Password string `json:"password" validate:"required"`
}

// Claims is what the auth middleware stores in fiber locals under "user".
type Claims struct {
	UserID     primitive.ObjectID  `json:"user_id"`
	Email      string              `json:"email"`
	Role       string              `json:"role"`
	EmployeeID *primitive.ObjectID `json:"employee_id,omitempty"`
}

// HasRole reports whether the claim's role is one of roles.
func (c *Claims) HasRole(roles ...string) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// Owns reports whether the claim belongs to the given employee.
func (c *Claims) Owns(employeeID primitive.ObjectID) bool {
	return c.EmployeeID != nil && *c.EmployeeID == employeeID
}

type UserFilter struct {
	Search string
	Role   string
	Page   int64
	Limit  int64
}
