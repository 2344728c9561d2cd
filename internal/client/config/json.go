package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/noteskeeper/internal/flagx"
)

// JsonConfig is the on-disk shape of the config file. Empty fields leave the
// current value untouched.
type JsonConfig struct {
	DatabaseDSN string `json:"database_dsn"`
	LogLevel    string `json:"log_level"`
	LogFormat   string `json:"log_format"`
	ExportDir   string `json:"export_dir"`
}

// parseJson overlays cfg with the JSON file named by -c/-config in args, or
// by NOTESKEEPER_CONFIG. Read and unmarshal errors panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args, EnvConfigPath)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlay(&cfg.DatabaseDSN, jc.DatabaseDSN)
	overlay(&cfg.LogLevel, jc.LogLevel)
	overlay(&cfg.LogFormat, jc.LogFormat)
	overlay(&cfg.ExportDir, jc.ExportDir)
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
