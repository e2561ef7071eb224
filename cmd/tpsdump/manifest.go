package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// manifest describes a batch export job: many files, each with its
// own overrides layered on top of cliDefaults.
type manifest struct {
	Files []manifestFile `yaml:"files"`
}

type manifestFile struct {
	Path     string   `yaml:"path"`
	Table    string   `yaml:"table"`
	Encoding string   `yaml:"encoding,omitempty"`
	DateKeys []string `yaml:"date_fields,omitempty"`
	TimeKeys []string `yaml:"time_fields,omitempty"`
}

func loadManifest(path string) (manifest, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return manifest{}, err
	}
	var m manifest
	if err := yaml.Unmarshal(buf, &m); err != nil {
		return manifest{}, err
	}
	return m, nil
}
