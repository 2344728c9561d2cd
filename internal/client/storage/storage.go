// Package storage opens the local SQLite database, applies the embedded
// migrations and wires the repositories on top of it.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/noteskeeper/internal/client/migrations"
	"github.com/dmitrijs2005/noteskeeper/internal/client/repositories/accounts"
	"github.com/dmitrijs2005/noteskeeper/internal/client/repositories/encnotes"
	"github.com/dmitrijs2005/noteskeeper/internal/client/repositories/notes"
	"github.com/dmitrijs2005/noteskeeper/internal/client/repositories/settings"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// Repositories groups the repositories bound to one database handle.
type Repositories struct {
	Accounts       *accounts.SQLiteRepository
	EncryptedNotes *encnotes.SQLiteRepository
	Notes          *notes.SQLiteRepository
	Settings       *settings.SQLiteRepository
}

// Store owns the database handle.
type Store struct {
	DB    *sql.DB
	Repos *Repositories
}

// RunMigrations applies all pending goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Open connects to dsn, migrates the schema and returns a ready Store.
// An in-memory DSN is pinned to a single connection so every caller sees the
// same database.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{DB: db, Repos: NewRepositories(db)}, nil
}

// NewRepositories binds every repository to db.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Accounts:       accounts.NewSQLiteRepository(db),
		EncryptedNotes: encnotes.NewSQLiteRepository(db),
		Notes:          notes.NewSQLiteRepository(db),
		Settings:       settings.NewSQLiteRepository(db),
	}
}

func (s *Store) Close() error {
	return s.DB.Close()
}
