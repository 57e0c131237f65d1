// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader loads configuration with precedence: ENV > file > defaults.
type Loader struct {
	path string
}

// NewLoader creates a loader. path may be empty, in which case only
// environment variables and defaults apply.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load merges defaults, the optional YAML file and the environment, then
// validates the result.
func (l *Loader) Load() (Config, error) {
	cfg := Defaults()

	if l.path != "" {
		data, err := os.ReadFile(l.path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("config: read %s: %w", l.path, err)
			}
			// A missing file is fine; env and defaults still apply.
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", l.path, err)
		}
	}

	cfg.mergeEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
