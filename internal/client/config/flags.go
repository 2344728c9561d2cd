package config

import (
	"io"

	"github.com/dmitrijs2005/noteskeeper/internal/flagx"
	"github.com/spf13/pflag"
)

var knownFlags = []string{
	"-d", "--database",
	"-l", "--log-level",
	"-f", "--log-format",
	"-e", "--export-dir",
}

// parseFlags populates Config fields from command-line flags.
//
//	-d, --database string     database DSN
//	-l, --log-level string    log level
//	-f, --log-format string   log format (text|json)
//	-e, --export-dir string   export directory
//
// Only these flags are looked at, so -c/-config and anything else on the
// command line is left alone. A malformed flag panics.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, knownFlags)

	fs := pflag.NewFlagSet("main", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVarP(&cfg.DatabaseDSN, "database", "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVarP(&cfg.LogLevel, "log-level", "l", cfg.LogLevel, "log level")
	fs.StringVarP(&cfg.LogFormat, "log-format", "f", cfg.LogFormat, "log format")
	fs.StringVarP(&cfg.ExportDir, "export-dir", "e", cfg.ExportDir, "export directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
