package mfa

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollmentAndValidate(t *testing.T) {
	e, err := NewEnrollment("HRMS", "jane@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, e.Secret)
	assert.True(t, strings.HasPrefix(e.URL, "otpauth://totp/"))
	assert.True(t, strings.HasPrefix(e.QRCode, "data:image/png;base64,"))

	now := time.Now()
	code, err := GenerateTOTP(e.Secret, now)
	require.NoError(t, err)

	assert.True(t, ValidateTOTP(code, e.Secret, now))
	assert.True(t, ValidateTOTP(code, e.Secret, now.Add(30*time.Second)), "one step of skew is allowed")
	assert.False(t, ValidateTOTP(code, e.Secret, now.Add(5*time.Minute)))
}

func TestValidateTOTPRejectsEmptySecret(t *testing.T) {
	assert.False(t, ValidateTOTP("123456", "", time.Now()))
}

func TestGenerateEmailCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := GenerateEmailCode()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}
