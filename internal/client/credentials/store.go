// Package credentials is the account store used by the auth service. It
// enforces username uniqueness on top of the accounts repository.
package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/noteskeeper/internal/client/models"
	"github.com/dmitrijs2005/noteskeeper/internal/client/repositories/accounts"
	"github.com/dmitrijs2005/noteskeeper/internal/common"
	"github.com/dmitrijs2005/noteskeeper/internal/dbx"
)

// Store persists accounts.
type Store struct {
	db      dbx.DB
	newRepo func(dbx.DBTX) accounts.Repository
}

func NewStore(db dbx.DB) *Store {
	return &Store{
		db: db,
		newRepo: func(tx dbx.DBTX) accounts.Repository {
			return accounts.NewSQLiteRepository(tx)
		},
	}
}

// Add stores a new account. It fails with common.ErrUsernameTaken when the
// username is already registered; the check and the insert run in one
// transaction.
func (s *Store) Add(ctx context.Context, a *models.Account) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.newRepo(tx)

		exists, err := repo.Exists(ctx, a.Username)
		if err != nil {
			return err
		}
		if exists {
			return common.ErrUsernameTaken
		}
		return repo.Create(ctx, a)
	})
	if err != nil {
		if errors.Is(err, common.ErrUsernameTaken) {
			return common.ErrUsernameTaken
		}
		return fmt.Errorf("add account: %w", err)
	}
	return nil
}

// Find returns the account or common.ErrNotFound.
func (s *Store) Find(ctx context.Context, username string) (*models.Account, error) {
	a, err := s.newRepo(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return a, nil
}
