package notes

import (
	"context"

	"github.com/dmitrijs2005/noteskeeper/internal/client/models"
)

// Repository stores plaintext notes.
type Repository interface {
	Insert(ctx context.Context, n *models.Note) error
	// Update rewrites title, content and CreatedAt; common.ErrNotFound if absent.
	Update(ctx context.Context, n *models.Note) error
	GetByID(ctx context.Context, id string) (*models.Note, error)
	// GetByOwner returns the owner's notes, newest first.
	GetByOwner(ctx context.Context, owner string) ([]models.Note, error)
	DeleteByID(ctx context.Context, id string) error
}
