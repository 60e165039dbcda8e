package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"mealplan-auth/app/domain"
	"mealplan-auth/app/port"
	"mealplan-auth/app/utils/validator"
)

// AuthUseCase implements the login orchestration logic
type AuthUseCase struct {
	store    port.CredentialStore
	tokens   port.TokenService
	identity port.IdentityVerifier
	logger   *slog.Logger
}

// NewAuthUseCase creates a new AuthUseCase instance
func NewAuthUseCase(store port.CredentialStore, tokens port.TokenService, identity port.IdentityVerifier, logger *slog.Logger) *AuthUseCase {
	return &AuthUseCase{
		store:    store,
		tokens:   tokens,
		identity: identity,
		logger:   logger.With("component", "auth_usecase"),
	}
}

// Login performs password login. Unknown email and wrong password fail
// with the same error, so responses cannot be used for account
// enumeration.
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*domain.PublicProfile, string, error) {
	if !validator.IsValidEmail(email) {
		return nil, "", domain.NewValidationError("email", "invalid email format")
	}
	if password == "" {
		return nil, "", domain.NewValidationError("password", "password is required")
	}

	account, err := uc.store.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("account lookup failed: %w", err)
	}

	// Federated accounts hold no usable password credential. This
	// rejection is allowed to be specific: it is not a guessing vector.
	if account.IsGoogleUser {
		return nil, "", domain.ErrMustUseGoogleLogin
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := uc.tokens.Issue(account.ID, account.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session token: %w", err)
	}

	uc.logger.Info("password login succeeded", "account_id", account.ID)
	return account.PublicProfile(), token, nil
}

// GoogleLogin verifies a Google-issued assertion and logs the matching
// federated account in. Sign-up happens through a separate explicit
// flow; an unknown email is rejected here.
func (uc *AuthUseCase) GoogleLogin(ctx context.Context, assertionToken string) (*domain.PublicProfile, string, error) {
	identity, err := uc.identity.VerifyAssertion(ctx, assertionToken)
	if err != nil {
		return nil, "", err
	}

	account, err := uc.store.GetAccountByEmail(ctx, identity.Email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, "", domain.ErrNoGoogleAccount
		}
		return nil, "", fmt.Errorf("account lookup failed: %w", err)
	}

	if !account.IsGoogleUser {
		return nil, "", domain.ErrMustUsePasswordLogin
	}

	profileImage, err := uc.syncProfileImage(ctx, account.ID, identity.Picture)
	if err != nil {
		return nil, "", err
	}

	token, err := uc.tokens.Issue(account.ID, account.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session token: %w", err)
	}

	profile := account.PublicProfile()
	profile.ProfileImage = profileImage

	uc.logger.Info("google login succeeded", "account_id", account.ID)
	return profile, token, nil
}

// VerifySession re-loads the account by id and returns its public
// profile. Claims are trusted only for the id; everything else comes
// from the live record.
func (uc *AuthUseCase) VerifySession(ctx context.Context, accountID uuid.UUID) (*domain.PublicProfile, error) {
	account, err := uc.store.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrNotAuthenticated
		}
		return nil, fmt.Errorf("account lookup failed: %w", err)
	}

	profile := account.PublicProfile()
	if stored, err := uc.store.GetProfile(ctx, accountID); err == nil {
		profile.ProfileImage = stored.ProfileImage
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, fmt.Errorf("profile lookup failed: %w", err)
	}

	return profile, nil
}

// syncProfileImage updates the stored profile image when the verified
// identity supplies a different one. The write is a single atomic
// update; last verified identity wins.
func (uc *AuthUseCase) syncProfileImage(ctx context.Context, accountID uuid.UUID, picture string) (*string, error) {
	profile, err := uc.store.GetProfile(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			// No profile row yet; nothing to sync.
			return nil, nil
		}
		return nil, fmt.Errorf("profile lookup failed: %w", err)
	}

	if picture == "" {
		return profile.ProfileImage, nil
	}

	if profile.ProfileImage == nil || *profile.ProfileImage != picture {
		if err := uc.store.UpdateProfileImage(ctx, accountID, picture); err != nil {
			return nil, fmt.Errorf("profile image sync failed: %w", err)
		}
	}

	return &picture, nil
}
