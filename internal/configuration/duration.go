package configuration

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mxcd/npm-upgrade/internal/upgrade"
	"github.com/rs/zerolog/log"
)

const (
	DefaultRetries = 3
	DefaultTimeout = 30 * time.Second
)

// ParseDuration accepts Go durations and a day suffix such as "2d" or
// "1.5d".
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.ParseFloat(days, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		return time.Duration(n * float64(24*time.Hour)), nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	return d, nil
}

// RetryCount returns the configured number of HTTP retries.
func (c *Config) RetryCount() int {
	if c.Registry.Retries == nil {
		return DefaultRetries
	}
	return *c.Registry.Retries
}

// RequestTimeout returns the configured HTTP timeout.
func (c *Config) RequestTimeout() time.Duration {
	if c.Registry.Timeout == "" {
		return DefaultTimeout
	}
	d, err := ParseDuration(c.Registry.Timeout)
	if err != nil || d <= 0 {
		log.Warn().Str("timeout", c.Registry.Timeout).Msg("Invalid registry timeout, using default")
		return DefaultTimeout
	}
	return d
}

// RecencyThresholds returns the configured thresholds. Unset values take
// their default; unparsable or badly ordered settings are logged and
// replaced by the defaults as a whole.
func (c *Config) RecencyThresholds() upgrade.Recency {
	recency := upgrade.DefaultRecency
	fields := []struct {
		name  string
		value string
		into  *time.Duration
	}{
		{"info", c.Recency.Info, &recency.Info},
		{"warning", c.Recency.Warning, &recency.Warning},
		{"caution", c.Recency.Caution, &recency.Caution},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		d, err := ParseDuration(f.value)
		if err != nil {
			log.Warn().Err(err).Str("threshold", f.name).Msg("Invalid recency threshold, using defaults")
			return upgrade.DefaultRecency
		}
		*f.into = d
	}
	return recency.OrDefault()
}
