package encnotes

import (
	"context"

	"github.com/dmitrijs2005/noteskeeper/internal/client/models"
)

// Repository describes storage for encrypted notes. Implementations only move
// ciphertext around; they never see keys or plaintext.
type Repository interface {
	// Insert stores a new record.
	Insert(ctx context.Context, n *models.EncryptedNote) error

	// Update replaces ciphertexts, IVs and CreatedAt of an existing record.
	// Returns common.ErrNotFound when no row has that id.
	Update(ctx context.Context, n *models.EncryptedNote) error

	// GetByID returns a record or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.EncryptedNote, error)

	// GetAll returns every stored record regardless of owner.
	GetAll(ctx context.Context) ([]models.EncryptedNote, error)

	// GetByOwner returns the owner's records, newest first.
	GetByOwner(ctx context.Context, owner string) ([]models.EncryptedNote, error)

	// DeleteByID removes a record. Returns common.ErrNotFound when absent.
	DeleteByID(ctx context.Context, id string) error

	// Upsert inserts n, or overwrites the row with the same id only when that
	// row has the same owner. It reports whether a row was written.
	Upsert(ctx context.Context, n *models.EncryptedNote) (bool, error)
}
