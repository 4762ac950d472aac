package configuration

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// FileNames are looked up in the project directory, in order.
var FileNames = []string{".npm-upgraderc.yml", ".npm-upgraderc.yaml"}

// FindConfiguration returns the path of the configuration file in dir, or
// "" when there is none.
func FindConfiguration(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// LoadConfiguration reads and parses the configuration from the given path.
// An empty path yields the defaults. Environment variable and SOPS
// references are substituted.
func LoadConfiguration(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	config, err := parseConfiguration(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration YAML %s: %w", configPath, err)
	}

	ctx := NewSubstitutionContext()
	ctx.baseDir = filepath.Dir(configPath)
	if err := ctx.SubstituteInConfig(config); err != nil {
		return nil, fmt.Errorf("failed to substitute variables: %w", err)
	}

	log.Debug().Str("path", configPath).Msg("Loaded configuration")
	return config, nil
}

func parseConfiguration(data []byte) (*Config, error) {
	var config Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &config, nil
}
