package configuration

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/mxcd/npm-upgrade/internal/upgrade"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult contains the results of configuration validation
type ValidationResult struct {
	Valid  bool
	Errors []*ValidationError
}

// AddError adds a validation error to the result
func (r *ValidationResult) AddError(field, message string) {
	r.Valid = false
	r.Errors = append(r.Errors, &ValidationError{
		Field:   field,
		Message: message,
	})
}

// ValidateConfiguration performs validation on the configuration. Recency
// thresholds are checked separately by ValidateRecency.
func ValidateConfiguration(config *Config) *ValidationResult {
	result := &ValidationResult{
		Valid:  true,
		Errors: make([]*ValidationError, 0),
	}

	if config.Registry.URL != "" && !isHTTPURL(config.Registry.URL) {
		result.AddError("registry.url", fmt.Sprintf("invalid URL: %s", config.Registry.URL))
	}
	if config.Registry.Retries != nil && *config.Registry.Retries < 0 {
		result.AddError("registry.retries", "retries cannot be negative")
	}
	if config.Registry.Concurrency < 0 {
		result.AddError("registry.concurrency", "concurrency cannot be negative")
	}
	if config.Registry.Timeout != "" {
		if d, err := ParseDuration(config.Registry.Timeout); err != nil || d <= 0 {
			result.AddError("registry.timeout", fmt.Sprintf("invalid timeout: %s", config.Registry.Timeout))
		}
	}
	if config.Changelog.RemoteDBURL != "" && !isHTTPURL(config.Changelog.RemoteDBURL) {
		result.AddError("changelog.remoteDbUrl", fmt.Sprintf("invalid URL: %s", config.Changelog.RemoteDBURL))
	}

	return result
}

// ValidateRecency adds errors for unparsable or misordered recency
// thresholds to result.
func ValidateRecency(config *Config, result *ValidationResult) {
	cfg := config.Recency
	recency := upgrade.DefaultRecency
	parsed := true
	for _, f := range []struct {
		field string
		value string
		into  *time.Duration
	}{
		{"recency.info", cfg.Info, &recency.Info},
		{"recency.warning", cfg.Warning, &recency.Warning},
		{"recency.caution", cfg.Caution, &recency.Caution},
	} {
		if f.value == "" {
			continue
		}
		d, err := ParseDuration(f.value)
		if err != nil {
			result.AddError(f.field, err.Error())
			parsed = false
			continue
		}
		*f.into = d
	}

	if !parsed {
		return
	}
	var orderErr *upgrade.ThresholdOrderError
	if err := recency.Validate(); errors.As(err, &orderErr) {
		result.AddError("recency", orderErr.Error())
	}
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
