// user_profile_repository.go implements UserProfileRepository, the single-row
// upsert and lookup over the denormalized role cache.
package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/log-dashboard/log-dashboard/internal/db/models"
)

// UserProfileRepository handles user profile cache database operations
type UserProfileRepository struct {
	db *sql.DB
}

// NewUserProfileRepository creates a new UserProfileRepository
func NewUserProfileRepository(db *sql.DB) *UserProfileRepository {
	return &UserProfileRepository{db: db}
}

// Upsert records the last-known role and login time for a username. Called
// whenever a role is recomputed; a single ON CONFLICT upsert keeps the
// operation atomic without application-level locking.
func (r *UserProfileRepository) Upsert(ctx context.Context, username, role string) error {
	query := `
		INSERT INTO user_profiles (username, role, last_login)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE SET role = EXCLUDED.role, last_login = EXCLUDED.last_login
	`

	_, err := r.db.ExecContext(ctx, query, username, role, time.Now())
	return err
}

// GetByUsername retrieves a cached profile, or nil when the user has never
// logged in.
func (r *UserProfileRepository) GetByUsername(ctx context.Context, username string) (*models.UserProfile, error) {
	query := `SELECT username, role, last_login FROM user_profiles WHERE username = $1`

	profile := &models.UserProfile{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&profile.Username,
		&profile.Role,
		&profile.LastLogin,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return profile, nil
}
