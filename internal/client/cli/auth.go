package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/noteskeeper/internal/common"
)

// getSimpleText, getPassword and getMultiline are indirections used to
// facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

// Register prompts for a username and password and creates the account. On
// success the new user is logged in.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.authService.Register(ctx, userName, password)
	if err != nil {
		return err
	}

	a.println(a.ui.Success.Sprintf("Registered and logged in as %s", s.Username()))
	return nil
}

// Login prompts for credentials and opens a session. An empty username
// falls back to the last user who logged in on this machine.
func (a *App) Login(ctx context.Context) error {
	prompt := "Enter username"
	last := a.authService.LastUsername(ctx)
	if last != "" {
		prompt = fmt.Sprintf("Enter username [%s]", last)
	}

	userName, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if userName == "" {
		userName = last
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.authService.Login(ctx, userName, password)
	if err != nil {
		return err
	}

	a.println(a.ui.Success.Sprintf("Logged in as %s", s.Username()))
	return nil
}

// Logout wipes the session key.
func (a *App) Logout(ctx context.Context) error {
	a.authService.Logout(ctx)
	a.println(a.ui.Muted.Sprint("Logged out"))
	return nil
}
