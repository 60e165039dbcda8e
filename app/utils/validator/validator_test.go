package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func TestValidator_Validate(t *testing.T) {
	v := New()

	tests := []struct {
		name      string
		payload   loginPayload
		wantErr   bool
		wantField string
	}{
		{
			name:    "valid payload",
			payload: loginPayload{Email: "alice@example.com", Password: "secret"},
		},
		{
			name:      "missing email",
			payload:   loginPayload{Password: "secret"},
			wantErr:   true,
			wantField: "email",
		},
		{
			name:      "malformed email",
			payload:   loginPayload{Email: "not-an-email", Password: "secret"},
			wantErr:   true,
			wantField: "email",
		},
		{
			name:      "missing password",
			payload:   loginPayload{Email: "alice@example.com"},
			wantErr:   true,
			wantField: "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.payload)

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			verr, ok := err.(*ValidationError)
			require.True(t, ok, "error must be a ValidationError")
			assert.Contains(t, verr.Errors, tt.wantField, "error must use the JSON field name")
		})
	}
}

func TestValidator_AccountRole(t *testing.T) {
	v := New()

	for _, role := range []string{"user", "admin", "superadmin"} {
		assert.NoError(t, v.ValidateVar(role, "account_role"), role)
	}
	assert.Error(t, v.ValidateVar("root", "account_role"))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("alice@example.com"))
	assert.False(t, IsValidEmail(""))
	assert.False(t, IsValidEmail("not-an-email"))
}
