package configuration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mxcd/npm-upgrade/internal/upgrade"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	t.Setenv("NPM_TOKEN_FOR_TEST", "abc")
	dir := t.TempDir()
	path := writeConfig(t, dir, ".npm-upgraderc.yml", `
registry:
  url: https://npm.example.com
  token: ${NPM_TOKEN_FOR_TEST}
  retries: 0
  concurrency: 4
  timeout: 10s
changelog:
  remoteDbUrl: https://example.com/db.json
recency:
  info: 5d
  warning: 36h
  caution: 12h
`)

	config, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() unexpected error: %v", err)
	}

	if config.Registry.URL != "https://npm.example.com" || config.Registry.Token != "abc" {
		t.Errorf("registry = %+v", config.Registry)
	}
	if config.RetryCount() != 0 {
		t.Errorf("RetryCount() = %d, want 0", config.RetryCount())
	}
	if config.Registry.Concurrency != 4 {
		t.Errorf("concurrency = %d, want 4", config.Registry.Concurrency)
	}
	if config.RequestTimeout() != 10*time.Second {
		t.Errorf("RequestTimeout() = %s", config.RequestTimeout())
	}
	want := upgrade.Recency{Info: 5 * 24 * time.Hour, Warning: 36 * time.Hour, Caution: 12 * time.Hour}
	if got := config.RecencyThresholds(); got != want {
		t.Errorf("RecencyThresholds() = %+v, want %+v", got, want)
	}
	if result := ValidateConfiguration(config); !result.Valid {
		t.Errorf("expected valid configuration, got %v", result.Errors)
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	config, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() unexpected error: %v", err)
	}
	if config.RetryCount() != DefaultRetries {
		t.Errorf("RetryCount() = %d", config.RetryCount())
	}
	if config.RequestTimeout() != DefaultTimeout {
		t.Errorf("RequestTimeout() = %s", config.RequestTimeout())
	}
	if config.RecencyThresholds() != upgrade.DefaultRecency {
		t.Errorf("RecencyThresholds() = %+v", config.RecencyThresholds())
	}

	empty := writeConfig(t, t.TempDir(), ".npm-upgraderc.yml", "")
	if _, err := LoadConfiguration(empty); err != nil {
		t.Errorf("empty file: unexpected error %v", err)
	}
}

func TestLoadConfigurationErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"unknown field", "registry:\n  urll: x\n", "failed to parse configuration YAML"},
		{"broken yaml", "registry: [\n", "failed to parse configuration YAML"},
		{"unset env var", "registry:\n  token: ${NOT_SET_ANYWHERE_42}\n", "registry.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, dir, strings.ReplaceAll(tt.name, " ", "-")+".yml", tt.content)
			_, err := LoadConfiguration(path)
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("LoadConfiguration() error = %v, want it to contain %q", err, tt.errMsg)
			}
		})
	}

	if _, err := LoadConfiguration(filepath.Join(dir, "missing.yml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFindConfiguration(t *testing.T) {
	dir := t.TempDir()
	if got := FindConfiguration(dir); got != "" {
		t.Errorf("FindConfiguration() = %q, want empty", got)
	}

	path := writeConfig(t, dir, ".npm-upgraderc.yaml", "{}")
	if got := FindConfiguration(dir); got != path {
		t.Errorf("FindConfiguration() = %q, want %q", got, path)
	}
}

func TestRecencyThresholdsFallback(t *testing.T) {
	tests := []struct {
		name   string
		config RecencyConfig
		want   upgrade.Recency
	}{
		{"partial", RecencyConfig{Info: "4d"}, upgrade.Recency{Info: 96 * time.Hour, Warning: 48 * time.Hour, Caution: 24 * time.Hour}},
		{"misordered", RecencyConfig{Info: "1h", Caution: "2h"}, upgrade.DefaultRecency},
		{"unparsable", RecencyConfig{Warning: "soon"}, upgrade.DefaultRecency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{Recency: tt.config}
			if got := config.RecencyThresholds(); got != tt.want {
				t.Errorf("RecencyThresholds() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"3d", 72 * time.Hour, false},
		{"1.5d", 36 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"d", 0, true},
		{"three days", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDuration(%q) = %s, %v", tt.in, got, err)
		}
	}
}
