package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"mealplan-auth/app/domain"
	"mealplan-auth/app/port"
)

// AccountRepository implements port.CredentialStore for PostgreSQL
type AccountRepository struct {
	db     DatabaseIface
	logger *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(db DatabaseIface, logger *slog.Logger) port.CredentialStore {
	return &AccountRepository{
		db:     db,
		logger: logger.With("component", "account_repository"),
	}
}

const accountColumns = `id, username, email, password_hash, is_google_user, role, created_at, updated_at`

// GetAccountByEmail loads an account by its case-normalized email
func (r *AccountRepository) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	email, err := domain.NormalizeEmail(email)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.scanAccount(r.db.QueryRow(ctx, query, email))
}

// GetAccountByID loads an account by id
func (r *AccountRepository) GetAccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanAccount(r.db.QueryRow(ctx, query, id))
}

// GetProfile loads the profile record associated with an account
func (r *AccountRepository) GetProfile(ctx context.Context, accountID uuid.UUID) (*domain.Profile, error) {
	query := `SELECT account_id, profile_image, updated_at FROM profiles WHERE account_id = $1`

	var profile domain.Profile
	err := r.db.QueryRow(ctx, query, accountID).Scan(
		&profile.AccountID,
		&profile.ProfileImage,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		if errors.Is(err, domain.ErrStoreUnavailable) {
			return nil, err
		}
		r.logger.Error("profile lookup failed", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

// UpdateProfileImage applies the image as one atomic UPDATE so that
// concurrent federated logins cannot interleave a load-then-save; the
// last verified identity wins.
func (r *AccountRepository) UpdateProfileImage(ctx context.Context, accountID uuid.UUID, image string) error {
	query := `UPDATE profiles SET profile_image = $2, updated_at = NOW() WHERE account_id = $1`

	tag, err := r.db.Exec(ctx, query, accountID, image)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			return err
		}
		r.logger.Error("profile image update failed", "account_id", accountID, "error", err)
		return fmt.Errorf("failed to update profile image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	r.logger.Info("profile image updated", "account_id", accountID)
	return nil
}

// scanAccount maps a row to an account, translating pgx.ErrNoRows into
// the domain's not-found sentinel
func (r *AccountRepository) scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account      domain.Account
		passwordHash *string
		role         string
	)

	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&passwordHash,
		&account.IsGoogleUser,
		&role,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		if errors.Is(err, domain.ErrStoreUnavailable) {
			return nil, err
		}
		r.logger.Error("account lookup failed", "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if passwordHash != nil {
		account.PasswordHash = *passwordHash
	}
	account.Role = domain.Role(role)

	return &account, nil
}
