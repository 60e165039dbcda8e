package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionLifetime is how long an issued session token stays valid.
// The cookie max-age must match this exactly so transport expiry and
// claims expiry never diverge.
const SessionLifetime = 15 * 24 * time.Hour

// SessionClaims are the claims embedded in a signed session token.
// They are never persisted; validity is a function of the signature,
// the expiry, and a live account lookup.
type SessionClaims struct {
	AccountID uuid.UUID
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// NewSessionClaims creates claims for a fresh session
func NewSessionClaims(accountID uuid.UUID, email string) (*SessionClaims, error) {
	if accountID == uuid.Nil {
		return nil, fmt.Errorf("account ID is required")
	}
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	now := time.Now()
	return &SessionClaims{
		AccountID: accountID,
		Email:     email,
		IssuedAt:  now,
		ExpiresAt: now.Add(SessionLifetime),
	}, nil
}

// IsExpired reports whether the claims have passed their expiry
func (c *SessionClaims) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}
