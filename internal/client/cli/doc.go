// Package cli provides the interactive NotesKeeper command-line client.
//
// It wires configuration, local storage and the client services into a
// read-eval-print loop. A user registers or logs in, then manages plain notes
// (add, list, search, edit, delete) and encrypted notes (eadd, elist, eedit,
// edelete, export, import). The colour theme is persisted between runs.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits or
// input ends.
package cli
