package accounts

import (
	"context"

	"github.com/dmitrijs2005/noteskeeper/internal/client/models"
)

// Repository persists local accounts.
type Repository interface {
	// Create inserts a new account. A username that already exists yields
	// common.ErrUsernameTaken.
	Create(ctx context.Context, a *models.Account) error

	// GetByUsername returns the account or common.ErrNotFound.
	GetByUsername(ctx context.Context, username string) (*models.Account, error)

	// Exists reports whether an account with the username is stored.
	Exists(ctx context.Context, username string) (bool, error)
}
