package configuration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// SubstitutionContext holds the state for variable substitution
type SubstitutionContext struct {
	baseDir   string
	decrypt   func(path string) (map[string]interface{}, error)
	sopsCache map[string]map[string]interface{}
}

// NewSubstitutionContext creates a new substitution context
func NewSubstitutionContext() *SubstitutionContext {
	return &SubstitutionContext{
		decrypt:   DecryptSOPSFile,
		sopsCache: make(map[string]map[string]interface{}),
	}
}

// SubstituteVariables replaces environment variables and SOPS references in the input string
// Supports:
//   - ${VAR_NAME} for environment variables
//   - ${SOPS[path/to/file.yml].path.to.value} for SOPS encrypted files,
//     relative to the configuration file
func (ctx *SubstitutionContext) SubstituteVariables(input string) (string, error) {
	result := input
	for _, match := range placeholderPattern.FindAllStringSubmatch(input, -1) {
		placeholder, expression := match[0], match[1]

		var value string
		if strings.HasPrefix(expression, "SOPS[") {
			var err error
			value, err = ctx.resolveSOPSReference(expression)
			if err != nil {
				return "", fmt.Errorf("failed to resolve SOPS reference %s: %w", placeholder, err)
			}
		} else {
			value = os.Getenv(expression)
			if value == "" {
				return "", fmt.Errorf("environment variable %s is not set", expression)
			}
		}

		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result, nil
}

// resolveSOPSReference resolves a SOPS reference like SOPS[file.yml].path.to.value
func (ctx *SubstitutionContext) resolveSOPSReference(expression string) (string, error) {
	if !strings.HasPrefix(expression, "SOPS[") {
		return "", fmt.Errorf("invalid SOPS reference format: %s", expression)
	}
	closeBracketIdx := strings.Index(expression, "]")
	if closeBracketIdx == -1 {
		return "", fmt.Errorf("invalid SOPS reference format (missing ]): %s", expression)
	}

	filePath := expression[len("SOPS["):closeBracketIdx]
	rest := expression[closeBracketIdx+1:]
	if rest == "" {
		return "", fmt.Errorf("SOPS reference must include a YAML path: %s", expression)
	}
	if rest[0] != '.' {
		return "", fmt.Errorf("invalid SOPS reference format (expected . after ]): %s", expression)
	}
	yamlPath := rest[1:]
	if yamlPath == "" {
		return "", fmt.Errorf("SOPS reference must include a YAML path: %s", expression)
	}

	data, err := ctx.loadSOPSFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to load SOPS file %s: %w", filePath, err)
	}

	value, err := GetYAMLValue(data, yamlPath)
	if err != nil {
		return "", fmt.Errorf("failed to access path %s in SOPS file %s: %w", yamlPath, filePath, err)
	}
	return fmt.Sprintf("%v", value), nil
}

// loadSOPSFile loads and decrypts a SOPS file, with caching
func (ctx *SubstitutionContext) loadSOPSFile(filePath string) (map[string]interface{}, error) {
	if !filepath.IsAbs(filePath) && ctx.baseDir != "" {
		filePath = filepath.Join(ctx.baseDir, filePath)
	}
	if data, ok := ctx.sopsCache[filePath]; ok {
		return data, nil
	}

	data, err := ctx.decrypt(filePath)
	if err != nil {
		return nil, err
	}
	ctx.sopsCache[filePath] = data
	return data, nil
}

// SubstituteInConfig substitutes variables in every string setting that
// may carry secrets or locations.
func (ctx *SubstitutionContext) SubstituteInConfig(config *Config) error {
	fields := []struct {
		name  string
		value *string
	}{
		{"registry.url", &config.Registry.URL},
		{"registry.token", &config.Registry.Token},
		{"changelog.remoteDbUrl", &config.Changelog.RemoteDBURL},
	}

	for _, f := range fields {
		if *f.value == "" {
			continue
		}
		substituted, err := ctx.SubstituteVariables(*f.value)
		if err != nil {
			return fmt.Errorf("failed to substitute %s: %w", f.name, err)
		}
		*f.value = substituted
	}
	return nil
}

// GetYAMLValue retrieves a value from a nested YAML structure using dot notation
// Example: "credentials.token" accesses data["credentials"]["token"]
func GetYAMLValue(data map[string]interface{}, path string) (interface{}, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	parts := strings.Split(path, ".")
	current := interface{}(data)

	for i, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("invalid path: empty segment at position %d", i)
		}

		switch v := current.(type) {
		case map[string]interface{}:
			value, ok := v[part]
			if !ok {
				return nil, fmt.Errorf("path not found: %s (missing key '%s')", path, part)
			}
			current = value
		case map[interface{}]interface{}:
			value, ok := v[part]
			if !ok {
				return nil, fmt.Errorf("path not found: %s (missing key '%s')", path, part)
			}
			current = value
		default:
			return nil, fmt.Errorf("path not found: %s (cannot traverse into non-map at '%s')", path, part)
		}
	}

	return current, nil
}
