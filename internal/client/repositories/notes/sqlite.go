// Package notes persists plaintext notes in the local SQLite database.
package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/noteskeeper/internal/client/models"
	"github.com/dmitrijs2005/noteskeeper/internal/common"
	"github.com/dmitrijs2005/noteskeeper/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, n *models.Note) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notes (id, owner, title, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.Owner, n.Title, n.Content, n.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, n *models.Note) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notes SET title = ?, content = ?, created_at = ? WHERE id = ?`,
		n.Title, n.Content, n.CreatedAt.UnixNano(), n.ID)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	n := &models.Note{}
	var created int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner, title, content, created_at FROM notes WHERE id = ?`, id).
		Scan(&n.ID, &n.Owner, &n.Title, &n.Content, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	n.CreatedAt = time.Unix(0, created).UTC()
	return n, nil
}

func (r *SQLiteRepository) GetByOwner(ctx context.Context, owner string) ([]models.Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner, title, content, created_at FROM notes WHERE owner = ? ORDER BY created_at DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	var result []models.Note
	for rows.Next() {
		var n models.Note
		var created int64
		if err := rows.Scan(&n.ID, &n.Owner, &n.Title, &n.Content, &created); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		n.CreatedAt = time.Unix(0, created).UTC()
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}
