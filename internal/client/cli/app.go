package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/noteskeeper/internal/client/config"
	"github.com/dmitrijs2005/noteskeeper/internal/client/credentials"
	"github.com/dmitrijs2005/noteskeeper/internal/client/repositories/settings"
	"github.com/dmitrijs2005/noteskeeper/internal/client/services"
	"github.com/dmitrijs2005/noteskeeper/internal/client/storage"
	"github.com/dmitrijs2005/noteskeeper/internal/logging"
)

type App struct {
	config *config.Config
	store  *storage.Store
	log    logging.Logger

	authService  *services.AuthService
	encService   *services.EncryptedNoteService
	notesService *services.NoteService
	prefs        settings.Repository

	ui     *palette
	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the configured database and wires the services on top of it.
// The caller must Close the returned App.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	st, err := storage.Open(ctx, c.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "error initializing database", "dsn", c.DatabaseDSN, "error", err)
		return nil, err
	}
	return newApp(ctx, c, st, log, os.Stdin, os.Stdout), nil
}

func newApp(ctx context.Context, c *config.Config, st *storage.Store, log logging.Logger, in io.Reader, out io.Writer) *App {
	a := &App{
		config:       c,
		store:        st,
		log:          log,
		authService:  services.NewAuthService(credentials.NewStore(st.DB), st.Repos.Settings, log),
		encService:   services.NewEncryptedNoteService(st.DB, log),
		notesService: services.NewNoteService(st.Repos.Notes, log),
		prefs:        st.Repos.Settings,
		reader:       bufio.NewReader(in),
		out:          out,
	}
	a.ui = newPalette(a.loadTheme(ctx))
	return a
}

// Run prints the banner and blocks in the REPL until exit or end of input.
// The session is destroyed on return.
func (a *App) Run(ctx context.Context) {
	defer a.authService.Logout(ctx)

	fmt.Fprintln(a.out, a.ui.Banner())
	fmt.Fprintln(a.out, a.ui.Muted.Sprint("Welcome to NotesKeeper (type 'help' for commands)"))

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

// Close releases the database.
func (a *App) Close() error {
	return a.store.Close()
}

func (a *App) isLoggedIn() bool {
	return a.authService.Session().Active()
}

func (a *App) session() *services.Session {
	return a.authService.Session()
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
