package main

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// cliDefaults is the CLI-wide defaults file, separate from any
// per-job manifest: global settings in TOML, per-file overrides in
// YAML (see manifest.go).
type cliDefaults struct {
	Encoding string `toml:"encoding"`
	Check    bool   `toml:"check"`
}

func loadDefaults() (cliDefaults, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return cliDefaults{}, nil
	}
	path := filepath.Join(home, ".config", "tpsread", "config.toml")

	var d cliDefaults
	if _, err := os.Stat(path); err != nil {
		return d, nil
	}
	if _, err := toml.DecodeFile(path, &d); err != nil {
		return cliDefaults{}, err
	}
	return d, nil
}
