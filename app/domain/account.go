package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role represents the role of an account
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// Account represents an identity record in the credential store
type Account struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Exclude from JSON
	IsGoogleUser bool      `json:"is_google_user"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile holds the profile record associated one-to-one with an account
type Profile struct {
	AccountID    uuid.UUID `json:"account_id"`
	ProfileImage *string   `json:"profile_image,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicProfile is the account view returned to clients.
// It never carries credential material.
type PublicProfile struct {
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	ProfileImage *string `json:"profileImage,omitempty"`
	Role         Role    `json:"role,omitempty"`
}

// GoogleIdentity is the canonical identity extracted from a verified
// Google-issued assertion token.
type GoogleIdentity struct {
	Email   string
	Name    string
	Picture string
}

// NewAccount creates a new password account with validation
func NewAccount(username, email, passwordHash string) (*Account, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("username is required")
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("password hash is required")
	}

	now := time.Now()
	return &Account{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsGoogleUser: false,
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NewGoogleAccount creates a new federated account. It never carries a
// password credential.
func NewGoogleAccount(username, email string) (*Account, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("username is required")
	}

	now := time.Now()
	return &Account{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		IsGoogleUser: true,
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NormalizeEmail validates and case-normalizes an email address
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("invalid email format: %w", err)
	}
	return email, nil
}

// HasRole reports whether the account holds one of the given roles
func (a *Account) HasRole(roles ...Role) bool {
	for _, role := range roles {
		if a.Role == role {
			return true
		}
	}
	return false
}

// PublicProfile returns the client-facing view of the account
func (a *Account) PublicProfile() *PublicProfile {
	return &PublicProfile{
		Username: a.Username,
		Email:    a.Email,
		Role:     a.Role,
	}
}

// Validate checks account invariants: a federated account never holds a
// password credential, a password account always does.
func (a *Account) Validate() error {
	if a.Email == "" {
		return fmt.Errorf("email is required")
	}
	if a.IsGoogleUser && a.PasswordHash != "" {
		return fmt.Errorf("google account must not hold a password credential")
	}
	if !a.IsGoogleUser && a.PasswordHash == "" {
		return fmt.Errorf("password account must hold a password credential")
	}
	return nil
}
