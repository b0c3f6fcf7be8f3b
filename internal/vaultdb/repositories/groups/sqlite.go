// Package groups persists the group tree of a vault database.
package groups

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/vaultport/internal/dbx"
	"github.com/dmitrijs2005/vaultport/internal/vaultdb/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts g. An empty ParentID is stored as NULL.
func (r *SQLiteRepository) Create(ctx context.Context, g *models.Group) error {
	var parent sql.NullString
	if g.ParentID != "" {
		parent = sql.NullString{String: g.ParentID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO vault_groups (id, parent_id, name) VALUES (?, ?, ?)`,
		g.ID, parent, g.Name)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

// GetAll returns every group in insertion order.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Group, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, parent_id, name FROM vault_groups ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to select groups: %w", err)
	}
	defer rows.Close()

	var result []models.Group
	for rows.Next() {
		var (
			g      models.Group
			parent sql.NullString
		)
		if err := rows.Scan(&g.ID, &parent, &g.Name); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		g.ParentID = parent.String
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group rows: %w", err)
	}
	return result, nil
}
