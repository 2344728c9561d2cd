// Package models defines client-side data models used by the NotesKeeper CLI.
package models

import "time"

// Account is a registered local user. Only the salted digest of the password
// is kept; the password itself and the derived key are never stored.
type Account struct {
	Username     string
	Salt         []byte
	PasswordHash []byte
	CreatedAt    time.Time
}
