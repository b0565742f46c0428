package main

import (
	"os"

	"github.com/ghodss/yaml"
)

// cliConfig is a small, flat set of CLI defaults loadable from a YAML
// file via --config, kept intentionally tiny rather than growing into a
// general settings object.
type cliConfig struct {
	Pretty bool   `json:"pretty"`
	Indent string `json:"indent"`
}

func loadConfig(path string) (*cliConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg cliConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyConfigDefaults fills in flags the caller didn't set explicitly;
// an explicit --pretty/--indent on the command line still wins, since
// cobra has already parsed flags by the time PersistentPreRunE calls
// this.
func applyConfigDefaults(cfg *cliConfig) {
	if cfg.Pretty {
		prettyFlag = true
	}
	if cfg.Indent != "" && indentUnit == "" {
		indentUnit = cfg.Indent
	}
}
