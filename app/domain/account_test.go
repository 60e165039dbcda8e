package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	tests := []struct {
		name         string
		username     string
		email        string
		passwordHash string
		wantErr      bool
		wantErrMsg   string
	}{
		{
			name:         "valid account",
			username:     "alice",
			email:        "Alice@Example.com",
			passwordHash: "$2a$10$abcdefghijklmnopqrstuv",
			wantErr:      false,
		},
		{
			name:         "empty email",
			username:     "alice",
			email:        "",
			passwordHash: "$2a$10$abcdefghijklmnopqrstuv",
			wantErr:      true,
			wantErrMsg:   "email is required",
		},
		{
			name:         "malformed email",
			username:     "alice",
			email:        "not-an-email",
			passwordHash: "$2a$10$abcdefghijklmnopqrstuv",
			wantErr:      true,
			wantErrMsg:   "invalid email format",
		},
		{
			name:         "missing username",
			username:     "  ",
			email:        "alice@example.com",
			passwordHash: "$2a$10$abcdefghijklmnopqrstuv",
			wantErr:      true,
			wantErrMsg:   "username is required",
		},
		{
			name:       "missing password hash",
			username:   "alice",
			email:      "alice@example.com",
			wantErr:    true,
			wantErrMsg: "password hash is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := NewAccount(tt.username, tt.email, tt.passwordHash)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				assert.Nil(t, account)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, account)
			assert.Equal(t, "alice@example.com", account.Email, "email must be case-normalized")
			assert.False(t, account.IsGoogleUser)
			assert.Equal(t, RoleUser, account.Role)
			assert.NoError(t, account.Validate())
		})
	}
}

func TestNewGoogleAccount(t *testing.T) {
	account, err := NewGoogleAccount("bob", "Bob@Example.com")
	require.NoError(t, err)

	assert.Equal(t, "bob@example.com", account.Email)
	assert.True(t, account.IsGoogleUser)
	assert.Empty(t, account.PasswordHash, "federated account must not hold a password credential")
	assert.NoError(t, account.Validate())
}

func TestAccount_Validate_CredentialInvariant(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Account)
		wantErr bool
	}{
		{
			name:    "password account with hash is valid",
			mutate:  func(a *Account) {},
			wantErr: false,
		},
		{
			name: "google account holding a password is invalid",
			mutate: func(a *Account) {
				a.IsGoogleUser = true
			},
			wantErr: true,
		},
		{
			name: "password account without hash is invalid",
			mutate: func(a *Account) {
				a.PasswordHash = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := NewAccount("alice", "alice@example.com", "$2a$10$abcdefghijklmnopqrstuv")
			require.NoError(t, err)

			tt.mutate(account)

			err = account.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAccount_HasRole(t *testing.T) {
	account, err := NewAccount("alice", "alice@example.com", "$2a$10$abcdefghijklmnopqrstuv")
	require.NoError(t, err)

	assert.True(t, account.HasRole(RoleUser))
	assert.False(t, account.HasRole(RoleAdmin, RoleSuperadmin))

	account.Role = RoleSuperadmin
	assert.True(t, account.HasRole(RoleAdmin, RoleSuperadmin))
}

func TestAccount_PublicProfile_ExcludesCredential(t *testing.T) {
	account, err := NewAccount("alice", "alice@example.com", "$2a$10$abcdefghijklmnopqrstuv")
	require.NoError(t, err)

	profile := account.PublicProfile()
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "alice@example.com", profile.Email)
	assert.Nil(t, profile.ProfileImage)
}
