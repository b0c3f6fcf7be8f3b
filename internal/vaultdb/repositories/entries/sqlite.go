// Package entries persists sealed vault entries.
package entries

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/dmitrijs2005/vaultport/internal/dbx"
	"github.com/dmitrijs2005/vaultport/internal/vaultdb/models"
)

// ErrTitleTaken is returned by Insert when the group already holds an entry
// with the same title digest.
var ErrTitleTaken = errors.New("title already taken in group")

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// ExistsTitle reports whether groupID already holds an entry with titleMAC.
func (r *SQLiteRepository) ExistsTitle(ctx context.Context, groupID string, titleMAC []byte) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM vault_entries WHERE group_id = ? AND title_mac = ?`,
		groupID, titleMAC).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check entry title: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, e *models.Entry) error {
	query := `INSERT INTO vault_entries (id, group_id, title_mac, details, nonce_details)
			VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, e.ID, e.GroupID, e.TitleMAC, e.Details, e.NonceDetails)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTitleTaken
		}
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

// UpdateDetails replaces the sealed payload of an existing entry.
func (r *SQLiteRepository) UpdateDetails(ctx context.Context, e *models.Entry) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE vault_entries SET details = ?, nonce_details = ? WHERE id = ?`,
		e.Details, e.NonceDetails, e.ID)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}

// GetByGroup returns the entries of groupID in insertion order.
func (r *SQLiteRepository) GetByGroup(ctx context.Context, groupID string) ([]models.Entry, error) {
	query := `SELECT id, group_id, title_mac, details, nonce_details
			FROM vault_entries WHERE group_id = ? ORDER BY rowid`
	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []models.Entry
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.ID, &e.GroupID, &e.TitleMAC, &e.Details, &e.NonceDetails); err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entry rows: %w", err)
	}
	return result, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		// extended result codes disabled on this connection
		return strings.Contains(se.Error(), "UNIQUE constraint failed")
	}
	return false
}
