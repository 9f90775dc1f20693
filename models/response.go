package models

type MessageResponse struct {
	Message string `json:"message" example:"Operation completed"`
}

type ErrorResponse struct {
	Message string `json:"message" example:"Invalid request body"`
	Details string `json:"details,omitempty" example:"unexpected end of JSON input"`
}

type ValidationErrorResponse struct {
	Message string       `json:"message" example:"Validation failed"`
	Errors  []FieldError `json:"errors"`
}

// FieldError is one failed validation rule.
type FieldError struct {
	Field   string `json:"field" example:"email"`
	Tag     string `json:"tag" example:"email"`
	Message string `json:"message" example:"Invalid email format."`
}

type LoginSuccessResponse struct {
	Message string `json:"message" example:"Login successful"`
	Token   string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	User    User   `json:"user"`
}

type MFAChallengeResponse struct {
	Message     string `json:"message" example:"Verification code required"`
	MFARequired bool   `json:"mfa_required" example:"true"`
	MFAMethod   string `json:"mfa_method" example:"totp"`
	MFAToken    string `json:"mfa_token" example:"v2.local.Ft9QcxZhJXEYyb7-bMM..."`
}

type LockedResponse struct {
	Message   string `json:"message" example:"Account locked due to too many failed login attempts"`
	LockUntil string `json:"lock_until" example:"2026-01-02T15:04:05Z"`
}

type TOTPSetupResponse struct {
	Secret     string `json:"secret" example:"JBSWY3DPEHPK3PXP"`
	OTPAuthURL string `json:"otpauth_url" example:"otpauth://totp/HRMS:jane@example.com?secret=..."`
	QRCode     string `json:"qr_code" example:"data:image/png;base64,iVBORw0..."`
}

type PaginatedResponse struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total" example:"42"`
	Page  int64       `json:"page" example:"1"`
	Limit int64       `json:"limit" example:"10"`
}
