package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"mealplan-auth/app/domain"
)

// sessionClaims represents the JWT claims carried by a session token.
type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies signed session tokens.
// Implements port.TokenService.
type JWTService struct {
	secret []byte
}

// NewJWTService creates a new JWT session token service. The signing
// secret is required; its absence is a startup configuration error.
func NewJWTService(secret string) (*JWTService, error) {
	if secret == "" {
		return nil, fmt.Errorf("session signing secret is required")
	}
	return &JWTService{secret: []byte(secret)}, nil
}

// Issue generates a signed session token for the account
func (s *JWTService) Issue(accountID uuid.UUID, email string) (string, error) {
	claims, err := domain.NewSessionClaims(accountID, email)
	if err != nil {
		return "", err
	}

	jwtClaims := sessionClaims{
		Email: claims.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.AccountID.String(),
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims)
	return token.SignedString(s.secret)
}

// Verify checks the signature and expiry of a session token and returns
// its claims unchanged. Verification never renews the token.
func (s *JWTService) Verify(tokenString string) (*domain.SessionClaims, error) {
	var claims sessionClaims

	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, domain.ErrTokenInvalidSignature
		default:
			return nil, domain.ErrTokenMalformed
		}
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domain.ErrTokenMalformed
	}
	if claims.Email == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, domain.ErrTokenMalformed
	}

	return &domain.SessionClaims{
		AccountID: accountID,
		Email:     claims.Email,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
