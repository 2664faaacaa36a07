// Package config loads the optional on-disk configuration. Flags override
// everything here; the file only carries the values that rarely change.
package config

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
)

// DefaultPath is where Load looks when no --config flag is given.
const DefaultPath = "~/.bunnysync.yaml"

// EnvAccessKey is the environment variable consulted when neither the flag
// nor the config file carries an access key.
const EnvAccessKey = "BUNNY_ACCESS_KEY"

// Config is the on-disk configuration.
type Config struct {
	Zone        string   `json:"zone"`
	AccessKey   string   `json:"accessKey"`
	Region      string   `json:"region"`
	Concurrency int      `json:"concurrency"`
	UploadLast  []string `json:"uploadLast"`
	Excludes    []string `json:"excludes"`
}

// Load reads and parses the config at path. A missing file at the default
// path is not an error; a missing file at an explicit path is.
func Load(fsys afero.Fs, path string, explicit bool) (Config, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return Config{}, fmt.Errorf("expand config path: %w", err)
	}

	data, err := afero.ReadFile(fsys, expanded)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ResolveAccessKey picks the access key from the flag, the config file, or
// the environment, in that order.
func ResolveAccessKey(flagValue string, cfg Config) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg.AccessKey != "" {
		return cfg.AccessKey
	}
	return os.Getenv(EnvAccessKey)
}
