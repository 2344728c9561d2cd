package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/noteskeeper/internal/client/models"
	"github.com/dmitrijs2005/noteskeeper/internal/client/repositories/notes"
	"github.com/dmitrijs2005/noteskeeper/internal/common"
	"github.com/dmitrijs2005/noteskeeper/internal/logging"
	"github.com/google/uuid"
)

// NoteService manages plaintext notes of the session user.
type NoteService struct {
	repo  notes.Repository
	log   logging.Logger
	now   func() time.Time
	locks *idLocks
}

func NewNoteService(repo notes.Repository, log logging.Logger) *NoteService {
	return &NoteService{
		repo:  repo,
		log:   log.With("component", "notes"),
		now:   time.Now,
		locks: newIDLocks(),
	}
}

// Add stores a new note. Empty notes (after trimming) are rejected with
// common.ErrEmptyNote.
func (s *NoteService) Add(ctx context.Context, sess *Session, title, content string) (*models.Note, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	title, content, err := normalizeNote(title, content)
	if err != nil {
		return nil, err
	}

	n := &models.Note{
		ID:        uuid.NewString(),
		Owner:     sess.Username(),
		Title:     title,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		return nil, fmt.Errorf("add note: %w", err)
	}

	s.log.Debug(ctx, "note added", "id", n.ID)
	return n, nil
}

// List returns the session user's notes whose title or content contains
// query (case-insensitive), newest first. An empty query returns all notes.
func (s *NoteService) List(ctx context.Context, sess *Session, query string) ([]models.Note, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	all, err := s.repo.GetByOwner(ctx, sess.Username())
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	out := make([]models.Note, 0, len(all))
	for i := range all {
		if all[i].Matches(query) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

// Edit replaces title and content of one of the session user's notes.
func (s *NoteService) Edit(ctx context.Context, sess *Session, id, title, content string) (*models.Note, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	n, err := s.owned(ctx, sess, id)
	if err != nil {
		return nil, err
	}

	n.Title, n.Content, err = normalizeNote(title, content)
	if err != nil {
		return nil, err
	}
	n.CreatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, n); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("edit note: %w", err)
	}
	return n, nil
}

// Delete removes one of the session user's notes.
func (s *NoteService) Delete(ctx context.Context, sess *Session, id string) error {
	if err := requireSession(sess); err != nil {
		return err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	if _, err := s.owned(ctx, sess, id); err != nil {
		return err
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

func (s *NoteService) owned(ctx context.Context, sess *Session, id string) (*models.Note, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("load note: %w", err)
	}
	if !sess.owns(n.Owner) {
		return nil, common.ErrNotOwner
	}
	return n, nil
}

func normalizeNote(title, content string) (string, string, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" && content == "" {
		return "", "", common.ErrEmptyNote
	}
	return title, content, nil
}
