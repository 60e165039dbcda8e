package port

//go:generate mockgen -source=auth_port.go -destination=../mocks/mock_auth_port.go -package=mocks

import (
	"context"

	"github.com/google/uuid"

	"mealplan-auth/app/domain"
)

// AuthUsecase defines the login orchestration interface
type AuthUsecase interface {
	// Login performs password login and returns the public profile and a
	// signed session token on success.
	Login(ctx context.Context, email, password string) (*domain.PublicProfile, string, error)

	// GoogleLogin verifies a Google-issued assertion token and logs the
	// matching federated account in. It never creates accounts.
	GoogleLogin(ctx context.Context, assertionToken string) (*domain.PublicProfile, string, error)

	// VerifySession re-loads the account by id and returns its public
	// profile, including the stored profile image.
	VerifySession(ctx context.Context, accountID uuid.UUID) (*domain.PublicProfile, error)
}

// CredentialStore defines read access to account records plus the single
// profile mutation this subsystem performs.
type CredentialStore interface {
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetAccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	GetProfile(ctx context.Context, accountID uuid.UUID) (*domain.Profile, error)
	// UpdateProfileImage applies the image as a single atomic update so
	// concurrent federated logins cannot interleave a read-modify-write.
	UpdateProfileImage(ctx context.Context, accountID uuid.UUID, image string) error
}

// TokenService issues and verifies signed session tokens
type TokenService interface {
	Issue(accountID uuid.UUID, email string) (string, error)
	Verify(token string) (*domain.SessionClaims, error)
}

// IdentityVerifier verifies third-party identity assertions
type IdentityVerifier interface {
	VerifyAssertion(ctx context.Context, assertionToken string) (*domain.GoogleIdentity, error)
}
