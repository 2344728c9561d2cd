package config

import "os"

// EnvConfigPath names the environment variable consulted for the JSON config
// file when neither -c nor -config is given.
const EnvConfigPath = "NOTESKEEPER_CONFIG"

// Config holds runtime settings for the NotesKeeper CLI.
//
// Fields:
//   - DatabaseDSN: SQLite file path or DSN for the local store.
//   - LogLevel: debug, info, warn or error.
//   - LogFormat: text or json.
//   - ExportDir: directory that export writes into and import resolves
//     relative file names against.
type Config struct {
	DatabaseDSN string
	LogLevel    string
	LogFormat   string
	ExportDir   string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "noteskeeper.db"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.ExportDir = "."
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	args := os.Args[1:]

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
