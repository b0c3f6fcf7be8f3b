package groups

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/vaultport/internal/vaultdb/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE vault_groups (
  id        TEXT PRIMARY KEY,
  parent_id TEXT REFERENCES vault_groups(id),
  name      TEXT NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestCreateAndGetAll_PreservesOrder(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &models.Group{ID: "z-root", Name: "Root"}))
	require.NoError(t, r.Create(ctx, &models.Group{ID: "b", ParentID: "z-root", Name: "Work"}))
	require.NoError(t, r.Create(ctx, &models.Group{ID: "a", ParentID: "z-root", Name: "Personal"}))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Equal(t, []models.Group{
		{ID: "z-root", Name: "Root"},
		{ID: "b", ParentID: "z-root", Name: "Work"},
		{ID: "a", ParentID: "z-root", Name: "Personal"},
	}, got)
}

func TestCreate_DuplicateIDFails(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &models.Group{ID: "g", Name: "one"}))
	err := r.Create(ctx, &models.Group{ID: "g", Name: "two"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to insert group")
}

func TestGetAll_Empty(t *testing.T) {
	got, err := NewSQLiteRepository(setupDB(t)).GetAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestGetAll_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, parent_id, name FROM vault_groups`).WillReturnError(sql.ErrConnDone)

	_, err = NewSQLiteRepository(db).GetAll(context.Background())
	require.ErrorIs(t, err, sql.ErrConnDone)
	require.Contains(t, err.Error(), "failed to select groups")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAll_RowError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "parent_id", "name"}).
		AddRow("g1", nil, "Root").
		RowError(0, sql.ErrTxDone)
	mock.ExpectQuery(`SELECT id, parent_id, name FROM vault_groups`).WillReturnRows(rows)

	_, err = NewSQLiteRepository(db).GetAll(context.Background())
	require.ErrorIs(t, err, sql.ErrTxDone)
	require.NoError(t, mock.ExpectationsWereMet())
}
