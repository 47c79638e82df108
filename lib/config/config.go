// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the PMIS console.
//
// Configuration is loaded from a single file specified by either the
// PMIS_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks and no automatic file
// search: a console started without a config file runs on [Default]
// values, optionally overridden by flags.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No other
// environment variables override config values.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for the PMIS console.
type Config struct {
	// API configures the backend collaborator.
	API APIConfig `yaml:"api"`

	// Downloads configures where document downloads are written.
	Downloads DownloadsConfig `yaml:"downloads"`

	// SessionFile overrides the session file location. Empty means
	// the well-known path (see lib/session.FilePath).
	SessionFile string `yaml:"session_file,omitempty"`
}

// APIConfig configures the backend REST API.
type APIConfig struct {
	// BaseURL is the base URL of the PMIS API
	// (e.g., "http://127.0.0.1:8000"). The /api/v1 prefix is appended
	// by the client, not configured here.
	BaseURL string `yaml:"base_url"`
}

// DownloadsConfig configures document download handling.
type DownloadsConfig struct {
	// Directory is where downloaded documents are saved.
	Directory string `yaml:"directory"`
}

// Default returns a Config with development defaults: a local API
// and downloads into the user's home directory.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://127.0.0.1:8000",
		},
		Downloads: DownloadsConfig{
			Directory: "${HOME}/Downloads",
		},
	}
}

// Load reads configuration from the file named by the PMIS_CONFIG
// environment variable. If the variable is unset, returns Default.
func Load() (Config, error) {
	path := os.Getenv("PMIS_CONFIG")
	if path == "" {
		configuration := Default()
		configuration.expandPaths()
		return configuration, nil
	}
	return LoadFile(path)
}

// LoadFile reads configuration from an explicit file path. Missing
// fields keep their Default values.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config file %s does not exist", path)
		}
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	configuration := Default()
	if err := yaml.Unmarshal(data, &configuration); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	configuration.expandPaths()
	if err := configuration.Validate(); err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}
	return configuration, nil
}

// Validate checks that required fields are present and well formed.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	parsed, err := url.Parse(c.API.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("api.base_url %q is not an absolute URL", c.API.BaseURL)
	}
	return nil
}

// variablePattern matches ${VAR} and ${VAR:-default}.
var variablePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// expandPaths applies variable expansion to path- and URL-valued fields.
func (c *Config) expandPaths() {
	c.API.BaseURL = expandVariables(c.API.BaseURL)
	c.Downloads.Directory = expandVariables(c.Downloads.Directory)
	c.SessionFile = expandVariables(c.SessionFile)
}

// expandVariables replaces ${VAR} and ${VAR:-default} occurrences with
// environment values. An unset variable without a default expands to
// the empty string, matching shell behavior.
func expandVariables(value string) string {
	return variablePattern.ReplaceAllStringFunc(value, func(match string) string {
		groups := variablePattern.FindStringSubmatch(match)
		name, fallback := groups[1], groups[2]
		if resolved, ok := os.LookupEnv(name); ok {
			return resolved
		}
		return fallback
	})
}

// DownloadPath joins the configured download directory with a file
// name, creating the directory if needed.
func (c *Config) DownloadPath(fileName string) (string, error) {
	directory := c.Downloads.Directory
	if directory == "" {
		directory = "."
	}
	if err := os.MkdirAll(directory, 0755); err != nil {
		return "", fmt.Errorf("creating download directory %s: %w", directory, err)
	}
	return filepath.Join(directory, fileName), nil
}
