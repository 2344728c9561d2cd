package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	reportError(err error)

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	AddNote(ctx context.Context) error
	ListNotes(ctx context.Context) error
	SearchNotes(ctx context.Context, query string) error
	EditNote(ctx context.Context) error
	DeleteNote(ctx context.Context) error

	AddEncrypted(ctx context.Context) error
	ListEncrypted(ctx context.Context) error
	EditEncrypted(ctx context.Context) error
	DeleteEncrypted(ctx context.Context) error
	Export(ctx context.Context) error
	Import(ctx context.Context, path string) error

	ToggleTheme(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, exit"
	helpLoggedIn  = "Available commands: add, list, search, edit, delete, eadd, elist, eedit, edelete, export, import, theme, logout, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
//
//	Not logged in:
//	  help, register, login, exit | quit
//
//	Logged in:
//	  add, list, search [text], edit, delete       plain notes
//	  eadd, elist, eedit, edelete                  encrypted notes
//	  export, import [file]                        encrypted backup
//	  theme, logout, exit | quit
//
// Handler errors are passed to a.reportError and the loop continues. The loop
// exits on end of input, on "exit"/"quit", or when ctx is cancelled.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w, "nk %s> ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, rest := parts[0], strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), parts[0]))

		if cmd == "exit" || cmd == "quit" {
			fmt.Fprintln(w, "Bye!")
			return
		}

		var handler func() error
		if a.isLoggedIn() {
			handler = loggedInCommand(ctx, a, cmd, rest)
		} else {
			handler = loggedOutCommand(ctx, a, cmd)
		}

		switch {
		case cmd == "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, helpLoggedIn)
			} else {
				fmt.Fprintln(w, helpLoggedOut)
			}
		case handler != nil:
			if err := handler(); err != nil {
				a.reportError(err)
			}
		case loggedInCommand(ctx, a, cmd, rest) != nil:
			fmt.Fprintln(w, "Please log in first")
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}

func loggedOutCommand(ctx context.Context, a execIface, cmd string) func() error {
	switch cmd {
	case "register":
		return func() error { return a.Register(ctx) }
	case "login":
		return func() error { return a.Login(ctx) }
	}
	return nil
}

func loggedInCommand(ctx context.Context, a execIface, cmd, rest string) func() error {
	switch cmd {
	case "add":
		return func() error { return a.AddNote(ctx) }
	case "l", "list":
		return func() error { return a.ListNotes(ctx) }
	case "search":
		return func() error { return a.SearchNotes(ctx, rest) }
	case "edit":
		return func() error { return a.EditNote(ctx) }
	case "delete":
		return func() error { return a.DeleteNote(ctx) }
	case "eadd":
		return func() error { return a.AddEncrypted(ctx) }
	case "elist":
		return func() error { return a.ListEncrypted(ctx) }
	case "eedit":
		return func() error { return a.EditEncrypted(ctx) }
	case "edelete":
		return func() error { return a.DeleteEncrypted(ctx) }
	case "export":
		return func() error { return a.Export(ctx) }
	case "import":
		return func() error { return a.Import(ctx, rest) }
	case "theme":
		return func() error { return a.ToggleTheme(ctx) }
	case "logout":
		return func() error { return a.Logout(ctx) }
	}
	return nil
}
