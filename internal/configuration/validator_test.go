package configuration

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidateConfiguration(t *testing.T) {
	negative := -1
	tests := []struct {
		name       string
		config     *Config
		wantFields []string
	}{
		{
			name:   "empty configuration",
			config: &Config{},
		},
		{
			name: "invalid registry settings",
			config: &Config{Registry: RegistryConfig{
				URL:         "registry.npmjs.org",
				Retries:     &negative,
				Concurrency: -2,
				Timeout:     "soon",
			}},
			wantFields: []string{"registry.url", "registry.retries", "registry.concurrency", "registry.timeout"},
		},
		{
			name:       "invalid remote database URL",
			config:     &Config{Changelog: ChangelogConfig{RemoteDBURL: "ftp://example.com/db.json"}},
			wantFields: []string{"changelog.remoteDbUrl"},
		},
		{
			name:       "unparsable threshold",
			config:     &Config{Recency: RecencyConfig{Caution: "tomorrow"}},
			wantFields: []string{"recency.caution"},
		},
		{
			name:       "misordered thresholds",
			config:     &Config{Recency: RecencyConfig{Info: "1d", Warning: "2d"}},
			wantFields: []string{"recency"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateConfiguration(tt.config)
			ValidateRecency(tt.config, result)

			var fields []string
			for _, e := range result.Errors {
				fields = append(fields, e.Field)
			}
			if diff := cmp.Diff(tt.wantFields, fields); diff != "" {
				t.Errorf("error fields mismatch (-want +got):\n%s", diff)
			}
			if result.Valid != (len(tt.wantFields) == 0) {
				t.Errorf("Valid = %v", result.Valid)
			}
		})
	}
}

func TestValidateConfigurationIgnoresRecency(t *testing.T) {
	config := &Config{Recency: RecencyConfig{Info: "1h", Caution: "2h"}}

	if result := ValidateConfiguration(config); !result.Valid {
		t.Errorf("ValidateConfiguration() reported %v", result.Errors)
	}

	result := ValidateConfiguration(config)
	ValidateRecency(config, result)
	if result.Valid {
		t.Error("ValidateRecency() accepted misordered thresholds")
	}
}
