// Package common defines sentinel errors shared by the NotesKeeper client
// layers and a helper for wiping secrets from memory. Callers should match
// the errors with errors.Is.
package common

import "errors"

var (
	// Input validation.
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptyNote    = errors.New("note is empty")

	// Authentication.
	ErrUsernameTaken     = errors.New("username already taken")
	ErrNoSuchUser        = errors.New("no such user")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrNotLoggedIn       = errors.New("not logged in")

	// Repository / referential errors.
	ErrNotFound = errors.New("not found")
	ErrNotOwner = errors.New("record belongs to another user")

	// Import errors.
	ErrInvalidImportFormat = errors.New("invalid import format")
	ErrNoMatchingRecords   = errors.New("no records for this user found")
)
