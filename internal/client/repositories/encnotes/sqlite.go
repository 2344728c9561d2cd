package encnotes

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

const selectColumns = `id, owner, title_cipher, body_cipher, iv_title, iv_body, created_at`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, n *models.EncryptedNote) error {
	query := `INSERT INTO encrypted_notes (id, owner, title_cipher, body_cipher, iv_title, iv_body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.Owner, n.TitleCipher, n.BodyCipher, n.IVTitle, n.IVBody, n.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert encrypted note: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, n *models.EncryptedNote) error {
	query := `UPDATE encrypted_notes
		SET title_cipher = ?, body_cipher = ?, iv_title = ?, iv_body = ?, created_at = ?
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query,
		n.TitleCipher, n.BodyCipher, n.IVTitle, n.IVBody, n.CreatedAt.UnixNano(), n.ID)
	if err != nil {
		return fmt.Errorf("failed to update encrypted note: %w", err)
	}
	return expectOneRow(res)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.EncryptedNote, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM encrypted_notes WHERE id = ?`, id)

	n, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get encrypted note: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.EncryptedNote, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM encrypted_notes`)
}

func (r *SQLiteRepository) GetByOwner(ctx context.Context, owner string) ([]models.EncryptedNote, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM encrypted_notes WHERE owner = ? ORDER BY created_at DESC`, owner)
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM encrypted_notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete encrypted note: %w", err)
	}
	return expectOneRow(res)
}

func (r *SQLiteRepository) Upsert(ctx context.Context, n *models.EncryptedNote) (bool, error) {
	query := `INSERT INTO encrypted_notes (id, owner, title_cipher, body_cipher, iv_title, iv_body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title_cipher = excluded.title_cipher,
			body_cipher = excluded.body_cipher,
			iv_title = excluded.iv_title,
			iv_body = excluded.iv_body,
			created_at = excluded.created_at
		WHERE encrypted_notes.owner = excluded.owner`

	res, err := r.db.ExecContext(ctx, query,
		n.ID, n.Owner, n.TitleCipher, n.BodyCipher, n.IVTitle, n.IVBody, n.CreatedAt.UnixNano())
	if err != nil {
		return false, fmt.Errorf("failed to upsert encrypted note: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra > 0, nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]models.EncryptedNote, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select encrypted notes: %w", err)
	}
	defer rows.Close()

	var result []models.EncryptedNote
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan encrypted note: %w", err)
		}
		result = append(result, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate encrypted notes: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (*models.EncryptedNote, error) {
	n := &models.EncryptedNote{}
	var created int64
	if err := s.Scan(&n.ID, &n.Owner, &n.TitleCipher, &n.BodyCipher, &n.IVTitle, &n.IVBody, &created); err != nil {
		return nil, err
	}
	n.CreatedAt = time.Unix(0, created).UTC()
	return n, nil
}

func expectOneRow(res sql.Result) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}
