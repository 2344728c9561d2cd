package cli

import (
	"context"
	"time"
)

const timeLayout = "2006-01-02 15:04"

// AddNote prompts for a title and a multi-line body and stores a plain note.
func (a *App) AddNote(ctx context.Context) error {
	title, content, err := a.promptNote()
	if err != nil {
		return err
	}
	n, err := a.notesService.Add(ctx, a.session(), title, content)
	if err != nil {
		return err
	}
	a.println(a.ui.Success.Sprintf("Note added: %s", n.ID))
	return nil
}

// ListNotes prints all plain notes of the current user.
func (a *App) ListNotes(ctx context.Context) error {
	return a.listNotes(ctx, "")
}

// SearchNotes prints the plain notes whose title or content contains query.
// Without an argument the query is prompted for.
func (a *App) SearchNotes(ctx context.Context, query string) error {
	if query == "" {
		var err error
		if query, err = getSimpleText(a.reader, "Search for", a.out); err != nil {
			return err
		}
	}
	return a.listNotes(ctx, query)
}

func (a *App) listNotes(ctx context.Context, query string) error {
	list, err := a.notesService.List(ctx, a.session(), query)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println(a.ui.Muted.Sprint("No notes"))
		return nil
	}
	for _, n := range list {
		a.printNote(n.ID, n.Title, n.Content, n.CreatedAt)
	}
	return nil
}

// EditNote replaces the title and body of a plain note.
func (a *App) EditNote(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter note ID", a.out)
	if err != nil {
		return err
	}
	title, content, err := a.promptNote()
	if err != nil {
		return err
	}
	if _, err := a.notesService.Edit(ctx, a.session(), id, title, content); err != nil {
		return err
	}
	a.println(a.ui.Success.Sprint("Note updated"))
	return nil
}

// DeleteNote removes a plain note by ID.
func (a *App) DeleteNote(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter note ID", a.out)
	if err != nil {
		return err
	}
	if err := a.notesService.Delete(ctx, a.session(), id); err != nil {
		return err
	}
	a.println(a.ui.Success.Sprint("Note deleted"))
	return nil
}

func (a *App) promptNote() (title, body string, err error) {
	title, err = getSimpleText(a.reader, "Enter title", a.out)
	if err != nil {
		return "", "", err
	}
	body, err = getMultiline(a.reader, "Enter text", a.out)
	if err != nil {
		return "", "", err
	}
	return title, body, nil
}

func (a *App) printNote(id, title, body string, createdAt time.Time) {
	a.printf("%s  %s\n", a.ui.Title.Sprint(title), a.ui.Muted.Sprintf("[%s] %s", id, createdAt.Local().Format(timeLayout)))
	if body != "" {
		a.println(body)
	}
	a.println()
}
