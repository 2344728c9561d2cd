// Package config loads runtime configuration for the NotesKeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config, or NOTESKEEPER_CONFIG.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-d string   SQLite database file / DSN
//	-l string   log level (debug, info, warn, error)
//	-f string   log format (text, json)
//	-e string   export directory
//
// # JSON schema
//
//	{
//	  "database_dsn": "/home/me/.noteskeeper.db",
//	  "log_level": "debug",
//	  "log_format": "json",
//	  "export_dir": "/home/me/exports"
//	}
package config
