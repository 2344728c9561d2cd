package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/noteskeeper/internal/client/backup"
	"github.com/dmitrijs2005/noteskeeper/internal/client/models"
	"github.com/dmitrijs2005/noteskeeper/internal/client/repositories/encnotes"
	"github.com/dmitrijs2005/noteskeeper/internal/common"
	"github.com/dmitrijs2005/noteskeeper/internal/cryptox"
	"github.com/dmitrijs2005/noteskeeper/internal/dbx"
	"github.com/dmitrijs2005/noteskeeper/internal/logging"
	"github.com/google/uuid"
)

// Placeholders shown instead of a field's plaintext.
const (
	PlaceholderDecryptionFailed = "<decryption failed>"
	PlaceholderEmpty            = "<empty>"
)

// EncryptedNoteService creates, reads, updates, deletes, exports and imports
// encrypted notes for the owner of a Session. Every operation fails with
// common.ErrNotLoggedIn when the session is nil or destroyed.
type EncryptedNoteService struct {
	db      dbx.DB
	newRepo func(dbx.DBTX) encnotes.Repository
	log     logging.Logger

	rand  io.Reader
	now   func() time.Time
	locks *idLocks
}

func NewEncryptedNoteService(db dbx.DB, log logging.Logger) *EncryptedNoteService {
	return &EncryptedNoteService{
		db: db,
		newRepo: func(tx dbx.DBTX) encnotes.Repository {
			return encnotes.NewSQLiteRepository(tx)
		},
		log:   log.With("component", "encnotes"),
		now:   time.Now,
		locks: newIDLocks(),
	}
}

func (s *EncryptedNoteService) repo() encnotes.Repository {
	return s.newRepo(s.db)
}

// Create encrypts title and body under fresh, independent IVs and stores the
// result. Both fields are trimmed; if both end up empty the note is rejected
// with common.ErrEmptyNote.
func (s *EncryptedNoteService) Create(ctx context.Context, sess *Session, title, body string) (*models.EncryptedNote, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	n := &models.EncryptedNote{ID: uuid.NewString(), Owner: sess.Username()}
	if err := s.seal(sess, n, title, body); err != nil {
		return nil, err
	}

	if err := s.repo().Insert(ctx, n); err != nil {
		return nil, fmt.Errorf("create encrypted note: %w", err)
	}

	s.log.Debug(ctx, "encrypted note created", "id", n.ID, "owner", n.Owner)
	return n, nil
}

// Update re-encrypts an existing note with fresh IVs. The id and owner are
// kept, CreatedAt is refreshed.
func (s *EncryptedNoteService) Update(ctx context.Context, sess *Session, id, title, body string) (*models.EncryptedNote, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	repo := s.repo()
	n, err := s.owned(ctx, repo, sess, id)
	if err != nil {
		return nil, err
	}

	if err := s.seal(sess, n, title, body); err != nil {
		return nil, err
	}
	if err := repo.Update(ctx, n); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("update encrypted note: %w", err)
	}

	s.log.Debug(ctx, "encrypted note updated", "id", n.ID)
	return n, nil
}

// Delete removes one of the session owner's notes.
func (s *EncryptedNoteService) Delete(ctx context.Context, sess *Session, id string) error {
	if err := requireSession(sess); err != nil {
		return err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	repo := s.repo()
	if _, err := s.owned(ctx, repo, sess, id); err != nil {
		return err
	}
	if err := repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("delete encrypted note: %w", err)
	}

	s.log.Debug(ctx, "encrypted note deleted", "id", id)
	return nil
}

// List loads the session owner's notes and decrypts them.
func (s *EncryptedNoteService) List(ctx context.Context, sess *Session) ([]models.DecryptedNote, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	records, err := s.repo().GetByOwner(ctx, sess.Username())
	if err != nil {
		return nil, fmt.Errorf("list encrypted notes: %w", err)
	}
	return s.DecryptAll(sess, records)
}

// DecryptAll keeps the records owned by the session user and decrypts each
// field independently. A field that fails to decrypt reads
// PlaceholderDecryptionFailed, one that decrypts to "" reads
// PlaceholderEmpty; neither aborts the listing. The result is ordered by
// CreatedAt, newest first, with ties kept in input order.
func (s *EncryptedNoteService) DecryptAll(sess *Session, records []models.EncryptedNote) ([]models.DecryptedNote, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	out := make([]models.DecryptedNote, 0, len(records))
	err := sess.WithKey(func(key []byte) error {
		for _, r := range records {
			if r.Owner != sess.Username() {
				continue
			}
			out = append(out, models.DecryptedNote{
				EncryptedNote: r,
				Title:         s.openField(r.ID, "title", r.TitleCipher, key, r.IVTitle),
				Body:          s.openField(r.ID, "body", r.BodyCipher, key, r.IVBody),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(out, func(a, b models.DecryptedNote) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// ExportOwned renders the session owner's records from records in the export
// format. Records of other users are left out; no plaintext is written.
func (s *EncryptedNoteService) ExportOwned(sess *Session, records []models.EncryptedNote) ([]byte, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	owned := make([]models.EncryptedNote, 0, len(records))
	for _, r := range records {
		if r.Owner == sess.Username() {
			owned = append(owned, r)
		}
	}
	return backup.Encode(owned)
}

// Export loads the session owner's notes and renders them with ExportOwned.
func (s *EncryptedNoteService) Export(ctx context.Context, sess *Session) ([]byte, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	records, err := s.repo().GetByOwner(ctx, sess.Username())
	if err != nil {
		return nil, fmt.Errorf("export encrypted notes: %w", err)
	}
	return s.ExportOwned(sess, records)
}

// ImportRecords parses an export and stores the records owned by the session
// user, inserting new ids and overwriting the user's own rows with the same
// id. Rows of other users are never touched. It returns the number of
// records written.
//
// Errors: common.ErrInvalidImportFormat when data is not an export,
// common.ErrNoMatchingRecords when no record belongs to the session user.
func (s *EncryptedNoteService) ImportRecords(ctx context.Context, sess *Session, data []byte) (int, error) {
	if err := requireSession(sess); err != nil {
		return 0, err
	}

	records, skipped, err := backup.Decode(data)
	if err != nil {
		return 0, err
	}

	mine := records[:0]
	for _, r := range records {
		if r.Owner == sess.Username() {
			mine = append(mine, r)
		}
	}
	if len(mine) == 0 {
		return 0, common.ErrNoMatchingRecords
	}

	written := 0
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.newRepo(tx)
		for i := range mine {
			ok, err := repo.Upsert(ctx, &mine[i])
			if err != nil {
				return err
			}
			if ok {
				written++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("import encrypted notes: %w", err)
	}

	s.log.Info(ctx, "encrypted notes imported",
		"owner", sess.Username(), "written", written, "foreign", len(records)-len(mine), "invalid", skipped)
	return written, nil
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// ExportFileName is the default export file name for username. Characters
// that are unsafe in a file name are replaced by '_'.
func ExportFileName(username string) string {
	return "noteskeeper_" + unsafeFileChars.ReplaceAllString(username, "_") + "_enc_export.json"
}

// owned loads id and checks it belongs to the session user.
func (s *EncryptedNoteService) owned(ctx context.Context, repo encnotes.Repository, sess *Session, id string) (*models.EncryptedNote, error) {
	n, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("load encrypted note: %w", err)
	}
	if !sess.owns(n.Owner) {
		return nil, common.ErrNotOwner
	}
	return n, nil
}

// seal trims and encrypts title and body into n, drawing new IVs and
// stamping CreatedAt.
func (s *EncryptedNoteService) seal(sess *Session, n *models.EncryptedNote, title, body string) error {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" && body == "" {
		return common.ErrEmptyNote
	}

	ivTitle, err := cryptox.RandomBytes(s.rand, cryptox.IVSize)
	if err != nil {
		return fmt.Errorf("generate iv: %w", err)
	}
	ivBody, err := cryptox.RandomBytes(s.rand, cryptox.IVSize)
	if err != nil {
		return fmt.Errorf("generate iv: %w", err)
	}

	return sess.WithKey(func(key []byte) error {
		tc, err := cryptox.EncryptField(title, key, ivTitle)
		if err != nil {
			return fmt.Errorf("encrypt title: %w", err)
		}
		bc, err := cryptox.EncryptField(body, key, ivBody)
		if err != nil {
			return fmt.Errorf("encrypt body: %w", err)
		}

		n.TitleCipher, n.BodyCipher = tc, bc
		n.IVTitle, n.IVBody = ivTitle, ivBody
		n.CreatedAt = s.now().UTC()
		return nil
	})
}

func (s *EncryptedNoteService) openField(id, field string, ciphertext, key, iv []byte) string {
	plain, err := cryptox.DecryptField(ciphertext, key, iv)
	if err != nil {
		s.log.Warn(context.Background(), "decryption failed", "id", id, "field", field)
		return PlaceholderDecryptionFailed
	}
	if plain == "" {
		return PlaceholderEmpty
	}
	return plain
}
