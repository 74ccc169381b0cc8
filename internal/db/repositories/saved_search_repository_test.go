package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

var savedSearchCols = []string{"id", "name", "query", "username", "created_at", "updated_at"}

func sampleSavedSearchRow() *sqlmock.Rows {
	return sqlmock.NewRows(savedSearchCols).
		AddRow("id-1", "errors last hour", "level=ERROR", "alice", time.Now(), time.Now())
}

func newSavedSearchRepo(t *testing.T) (*SavedSearchRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSavedSearchRepository(sqlx.NewDb(db, "postgres")), mock
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestSavedSearchCreate(t *testing.T) {
	repo, mock := newSavedSearchRepo(t)
	mock.ExpectExec("INSERT INTO saved_searches").
		WithArgs(sqlmock.AnyArg(), "errors last hour", "level=ERROR", "alice", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	record, err := repo.Create(context.Background(), "alice", "errors last hour", "level=ERROR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.ID == "" {
		t.Error("expected generated id")
	}
	if record.Username != "alice" {
		t.Errorf("Username = %s, want alice", record.Username)
	}
	if !record.CreatedAt.Equal(record.UpdatedAt) {
		t.Error("created_at and updated_at should match on create")
	}
}

func TestSavedSearchCreate_DBError(t *testing.T) {
	repo, mock := newSavedSearchRepo(t)
	mock.ExpectExec("INSERT INTO saved_searches").WillReturnError(errDB)

	if _, err := repo.Create(context.Background(), "alice", "n", "q"); err == nil {
		t.Error("expected error, got nil")
	}
}

// ---------------------------------------------------------------------------
// GetByID / List
// ---------------------------------------------------------------------------

func TestSavedSearchGetByID_NotFound(t *testing.T) {
	repo, mock := newSavedSearchRepo(t)
	mock.ExpectQuery("SELECT \\* FROM saved_searches WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(savedSearchCols))

	record, err := repo.GetByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record != nil {
		t.Errorf("expected nil for missing id, got %v", record)
	}
}

func TestSavedSearchListByOwner(t *testing.T) {
	repo, mock := newSavedSearchRepo(t)
	mock.ExpectQuery("SELECT \\* FROM saved_searches WHERE username").
		WithArgs("alice").
		WillReturnRows(sampleSavedSearchRow())

	records, err := repo.ListByOwner(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].ID != "id-1" {
		t.Errorf("unexpected records: %v", records)
	}
}

func TestSavedSearchListAll_Empty(t *testing.T) {
	repo, mock := newSavedSearchRepo(t)
	mock.ExpectQuery("SELECT \\* FROM saved_searches ORDER BY").
		WillReturnRows(sqlmock.NewRows(savedSearchCols))

	records, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records == nil {
		t.Error("expected empty slice, got nil")
	}
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func TestSavedSearchUpdate_NameOnly(t *testing.T) {
	repo, mock := newSavedSearchRepo(t)

	name := "renamed"
	// Only updated_at and name appear in the SET list; query is untouched.
	mock.ExpectQuery(`UPDATE saved_searches SET updated_at = now\(\), name = \$2\s+WHERE id = \$1`).
		WithArgs("id-1", "renamed").
		WillReturnRows(sqlmock.NewRows(savedSearchCols).
			AddRow("id-1", "renamed", "level=ERROR", "alice", time.Now().Add(-time.Hour), time.Now()))

	record, err := repo.Update(context.Background(), "id-1", SavedSearchUpdate{Name: &name})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Name != "renamed" {
		t.Errorf("Name = %s, want renamed", record.Name)
	}
	if record.Query != "level=ERROR" {
		t.Errorf("Query = %s, want untouched level=ERROR", record.Query)
	}
	if !record.UpdatedAt.After(record.CreatedAt) {
		t.Error("updated_at should be refreshed")
	}
}

func TestSavedSearchUpdate_BothFields(t *testing.T) {
	repo, mock := newSavedSearchRepo(t)

	name, query := "renamed", "service=auth"
	mock.ExpectQuery(`UPDATE saved_searches SET updated_at = now\(\), name = \$2, query = \$3`).
		WithArgs("id-1", "renamed", "service=auth").
		WillReturnRows(sqlmock.NewRows(savedSearchCols).
			AddRow("id-1", "renamed", "service=auth", "alice", time.Now(), time.Now()))

	record, err := repo.Update(context.Background(), "id-1", SavedSearchUpdate{Name: &name, Query: &query})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Query != "service=auth" {
		t.Errorf("Query = %s, want service=auth", record.Query)
	}
}

func TestSavedSearchUpdate_NotFound(t *testing.T) {
	repo, mock := newSavedSearchRepo(t)

	name := "renamed"
	mock.ExpectQuery("UPDATE saved_searches SET").
		WillReturnRows(sqlmock.NewRows(savedSearchCols))

	record, err := repo.Update(context.Background(), "missing", SavedSearchUpdate{Name: &name})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record != nil {
		t.Errorf("expected nil for missing id, got %v", record)
	}
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestSavedSearchDelete(t *testing.T) {
	repo, mock := newSavedSearchRepo(t)
	mock.ExpectExec("DELETE FROM saved_searches WHERE id").
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := repo.Delete(context.Background(), "id-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("expected deleted=true")
	}
}

func TestSavedSearchDelete_NotFound(t *testing.T) {
	repo, mock := newSavedSearchRepo(t)
	mock.ExpectExec("DELETE FROM saved_searches WHERE id").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.Delete(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted {
		t.Error("expected deleted=false for missing id")
	}
}
