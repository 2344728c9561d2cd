// Package encnotes persists encrypted notes in the local SQLite database.
//
// Each row carries the owner's username, the title and body ciphertexts, the
// IV used for each of them and the creation time in Unix nanoseconds.
package encnotes
