// saved_search_repository.go implements SavedSearchRepository, CRUD over the
// named filter presets users save from the dashboard.
//
// The repository does not enforce ownership; it exposes the owner column and
// leaves the owner-or-admin decision to the handler layer so that not-found
// and unauthorized remain distinguishable (a missing row must never be
// reported as a permission failure, and vice versa).
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/log-dashboard/log-dashboard/internal/db/models"
)

// SavedSearchRepository handles saved search database operations
type SavedSearchRepository struct {
	db *sqlx.DB
}

// NewSavedSearchRepository creates a new SavedSearchRepository
func NewSavedSearchRepository(db *sqlx.DB) *SavedSearchRepository {
	return &SavedSearchRepository{db: db}
}

// SavedSearchUpdate carries the optional fields of a partial update. A nil
// field leaves the stored value untouched.
type SavedSearchUpdate struct {
	Name  *string
	Query *string
}

// Create inserts a new saved search with a generated id and timestamps and
// returns the stored record.
func (r *SavedSearchRepository) Create(ctx context.Context, owner, name, query string) (*models.SavedSearch, error) {
	now := time.Now()
	search := &models.SavedSearch{
		ID:        uuid.New().String(),
		Name:      name,
		Query:     query,
		Username:  owner,
		CreatedAt: now,
		UpdatedAt: now,
	}

	insert := `
		INSERT INTO saved_searches (id, name, query, username, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, insert,
		search.ID, search.Name, search.Query, search.Username,
		search.CreatedAt, search.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return search, nil
}

// GetByID retrieves a saved search, or nil when the id does not exist.
func (r *SavedSearchRepository) GetByID(ctx context.Context, id string) (*models.SavedSearch, error) {
	var search models.SavedSearch
	query := `SELECT * FROM saved_searches WHERE id = $1`
	err := r.db.GetContext(ctx, &search, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &search, nil
}

// ListAll lists every saved search, newest first. Admin-only callers.
func (r *SavedSearchRepository) ListAll(ctx context.Context) ([]*models.SavedSearch, error) {
	searches := make([]*models.SavedSearch, 0)
	query := `SELECT * FROM saved_searches ORDER BY updated_at DESC`
	err := r.db.SelectContext(ctx, &searches, query)
	return searches, err
}

// ListByOwner lists the saved searches owned by username, newest first.
func (r *SavedSearchRepository) ListByOwner(ctx context.Context, username string) ([]*models.SavedSearch, error) {
	searches := make([]*models.SavedSearch, 0)
	query := `SELECT * FROM saved_searches WHERE username = $1 ORDER BY updated_at DESC`
	err := r.db.SelectContext(ctx, &searches, query, username)
	return searches, err
}

// Update applies the supplied fields to a saved search and refreshes
// updated_at. Fields left nil in the update are not touched. Returns the
// updated record, or nil when the id does not exist.
func (r *SavedSearchRepository) Update(ctx context.Context, id string, update SavedSearchUpdate) (*models.SavedSearch, error) {
	setClauses := ""
	args := []interface{}{id}
	paramIndex := 2

	if update.Name != nil {
		setClauses += fmt.Sprintf(", name = $%d", paramIndex)
		args = append(args, *update.Name)
		paramIndex++
	}
	if update.Query != nil {
		setClauses += fmt.Sprintf(", query = $%d", paramIndex)
		args = append(args, *update.Query)
		paramIndex++
	}

	query := fmt.Sprintf(`
		UPDATE saved_searches SET updated_at = now()%s
		WHERE id = $1
		RETURNING id, name, query, username, created_at, updated_at`, setClauses)

	var search models.SavedSearch
	err := r.db.GetContext(ctx, &search, query, args...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &search, nil
}

// Delete removes a saved search. Returns false when the id does not exist.
func (r *SavedSearchRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM saved_searches WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
