package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/noteskeeper/internal/client/services"
	"github.com/dmitrijs2005/noteskeeper/internal/common"
	"github.com/dmitrijs2005/noteskeeper/internal/filex"
)

// AddEncrypted prompts for a title and body and stores them encrypted with
// the session key.
func (a *App) AddEncrypted(ctx context.Context) error {
	title, body, err := a.promptNote()
	if err != nil {
		return err
	}
	n, err := a.encService.Create(ctx, a.session(), title, body)
	if err != nil {
		return err
	}
	a.println(a.ui.Success.Sprintf("Encrypted note added: %s", n.ID))
	return nil
}

// ListEncrypted decrypts and prints the current user's encrypted notes,
// newest first. Fields that cannot be decrypted are shown as placeholders.
func (a *App) ListEncrypted(ctx context.Context) error {
	list, err := a.encService.List(ctx, a.session())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println(a.ui.Muted.Sprint("No encrypted notes"))
		return nil
	}
	for _, n := range list {
		a.printNote(n.ID, n.Title, n.Body, n.CreatedAt)
	}
	return nil
}

func (a *App) EditEncrypted(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter note ID", a.out)
	if err != nil {
		return err
	}
	title, body, err := a.promptNote()
	if err != nil {
		return err
	}
	if _, err := a.encService.Update(ctx, a.session(), id, title, body); err != nil {
		return err
	}
	a.println(a.ui.Success.Sprint("Encrypted note updated"))
	return nil
}

func (a *App) DeleteEncrypted(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter note ID", a.out)
	if err != nil {
		return err
	}
	if err := a.encService.Delete(ctx, a.session(), id); err != nil {
		return err
	}
	a.println(a.ui.Success.Sprint("Encrypted note deleted"))
	return nil
}

// Export writes the current user's encrypted notes, still encrypted, to a
// JSON file in the configured export directory.
func (a *App) Export(ctx context.Context) error {
	s := a.session()
	data, err := a.encService.Export(ctx, s)
	if err != nil {
		return err
	}

	dir, err := filex.EnsureDir(a.config.ExportDir)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	path := filepath.Join(dir, services.ExportFileName(s.Username()))
	if err := filex.WriteFileAtomic(path, data, 0o600); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	a.println(a.ui.Success.Sprintf("Exported to %s", path))
	return nil
}

// Import restores encrypted notes from a file produced by Export. Only
// records owned by the current user are written. Without a path argument the
// user is prompted, defaulting to the user's export file.
func (a *App) Import(ctx context.Context, path string) error {
	s := a.session()
	if !s.Active() {
		return common.ErrNotLoggedIn
	}
	if path == "" {
		def := filepath.Join(a.config.ExportDir, services.ExportFileName(s.Username()))
		p, err := getSimpleText(a.reader, fmt.Sprintf("Enter file path [%s]", def), a.out)
		if err != nil {
			return err
		}
		path = p
		if path == "" {
			path = def
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	n, err := a.encService.ImportRecords(ctx, s, data)
	if err != nil {
		return err
	}
	a.println(a.ui.Success.Sprintf("Imported %d note(s)", n))
	return nil
}
