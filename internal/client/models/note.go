package models

import (
	"strings"
	"time"
)

// Note is a plaintext note owned by one account.
type Note struct {
	ID        string
	Owner     string
	Title     string
	Content   string
	CreatedAt time.Time
}

// Matches reports whether query occurs, case-insensitively, in the note's
// title or content. An empty query matches everything.
func (n *Note) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(n.Title+" "+n.Content), q)
}
