// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	configuration := Default()
	if err := configuration.Validate(); err != nil {
		t.Fatalf("Default().Validate(): %v", err)
	}
	if configuration.API.BaseURL == "" {
		t.Error("default config must carry a base URL")
	}
}

func TestLoadFileExpandsVariables(t *testing.T) {
	t.Setenv("PMIS_TEST_HOST", "api.example.net")
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
api:
  base_url: "https://${PMIS_TEST_HOST}:8443"
downloads:
  directory: "${PMIS_TEST_MISSING:-/srv/downloads}"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	configuration, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if configuration.API.BaseURL != "https://api.example.net:8443" {
		t.Errorf("BaseURL = %q", configuration.API.BaseURL)
	}
	if configuration.Downloads.Directory != "/srv/downloads" {
		t.Errorf("Downloads.Directory = %q, want the :- default", configuration.Downloads.Directory)
	}
}

func TestLoadFilePartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api:\n  base_url: \"http://10.0.0.5:8000\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	configuration, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if configuration.API.BaseURL != "http://10.0.0.5:8000" {
		t.Errorf("BaseURL = %q", configuration.API.BaseURL)
	}
	if configuration.Downloads.Directory == "" {
		t.Error("unset keys must keep their defaults")
	}
}

func TestValidateRejectsBadBaseURL(t *testing.T) {
	configuration := Default()
	configuration.API.BaseURL = "not a url"
	if err := configuration.Validate(); err == nil {
		t.Error("Validate must reject an unparseable base URL")
	}
}

func TestDownloadPathCreatesDirectory(t *testing.T) {
	configuration := Default()
	configuration.Downloads.Directory = filepath.Join(t.TempDir(), "nested", "downloads")

	path, err := configuration.DownloadPath("rapport.pdf")
	if err != nil {
		t.Fatalf("DownloadPath: %v", err)
	}
	if filepath.Base(path) != "rapport.pdf" {
		t.Errorf("path = %q", path)
	}
	if info, statErr := os.Stat(filepath.Dir(path)); statErr != nil || !info.IsDir() {
		t.Error("DownloadPath must create the download directory")
	}
}
