package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/noteskeeper/internal/client/repositories/settings"
	"github.com/dmitrijs2005/noteskeeper/internal/common"
)

// knownErrors are shown to the user verbatim; anything else is logged and
// replaced with a generic message.
var knownErrors = []error{
	common.ErrInvalidInput,
	common.ErrEmptyNote,
	common.ErrUsernameTaken,
	common.ErrNoSuchUser,
	common.ErrIncorrectPassword,
	common.ErrNotLoggedIn,
	common.ErrNotFound,
	common.ErrNotOwner,
	common.ErrInvalidImportFormat,
	common.ErrNoMatchingRecords,
}

func userMessage(err error) (string, bool) {
	for _, known := range knownErrors {
		if errors.Is(err, known) {
			return known.Error(), true
		}
	}
	return "", false
}

func (a *App) reportError(err error) {
	msg, ok := userMessage(err)
	if !ok {
		a.log.Error(context.Background(), "command failed", "error", err)
		msg = "unexpected error, see the log for details"
	}
	a.println(a.ui.Error.Sprint(msg))
}

func (a *App) getStatus() string {
	s := a.session()
	if !s.Active() {
		return ""
	}
	return a.ui.Info.Sprintf("(%s)", s.Username())
}

func (a *App) loadTheme(ctx context.Context) string {
	theme, err := settings.GetString(ctx, a.prefs, settings.KeyTheme, ThemeDark)
	if err != nil {
		a.log.Warn(ctx, "failed to read theme", "error", err)
		return ThemeDark
	}
	return theme
}

// ToggleTheme switches between the dark and light palettes and remembers the
// choice.
func (a *App) ToggleTheme(ctx context.Context) error {
	next := toggleTheme(a.ui.name)
	if err := a.prefs.Set(ctx, settings.KeyTheme, []byte(next)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	a.ui = newPalette(next)
	a.println(a.ui.Success.Sprintf("Theme: %s", next))
	return nil
}
