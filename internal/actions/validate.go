package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mxcd/npm-upgrade/internal/configuration"
	"github.com/mxcd/npm-upgrade/internal/registry"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type ValidateOptions struct {
	// ConfigPath defaults to the configuration file found in Dir.
	ConfigPath    string
	Dir           string
	OutputFormat  string
	CheckRegistry bool
}

// ValidateConfig checks the configuration file and optionally whether the
// configured registry answers.
func ValidateConfig(ctx context.Context, w io.Writer, options *ValidateOptions) error {
	configPath := options.ConfigPath
	if configPath == "" {
		configPath = configuration.FindConfiguration(options.Dir)
	}
	if configPath == "" {
		log.Info().Str("dir", options.Dir).Msg("No configuration file found, validating defaults")
	}
	log.Debug().Str("config", configPath).Msg("Loading configuration...")

	config, err := configuration.LoadConfiguration(configPath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return fmt.Errorf("configuration load error: %w", err)
	}

	log.Debug().Msg("Configuration loaded successfully")

	validationResult := configuration.ValidateConfiguration(config)
	configuration.ValidateRecency(config, validationResult)
	if options.CheckRegistry && validationResult.Valid {
		checkRegistry(ctx, config, validationResult)
	}

	if err := outputValidationResult(w, validationResult, options.OutputFormat, options.CheckRegistry); err != nil {
		log.Error().Err(err).Msg("Failed to output validation results")
		return fmt.Errorf("output error: %w", err)
	}

	if !validationResult.Valid {
		return fmt.Errorf("configuration validation failed")
	}

	log.Info().Msg("Configuration is valid")
	return nil
}

func checkRegistry(ctx context.Context, config *configuration.Config, result *configuration.ValidationResult) {
	client := registry.NewClient(registry.Options{
		BaseURL: config.Registry.URL,
		Token:   config.Registry.Token,
		Retries: 0,
		Timeout: config.RequestTimeout(),
	})
	log.Debug().Str("url", config.Registry.URL).Msg("Probing registry")
	if err := client.Ping(ctx); err != nil {
		result.AddError("registry.url", fmt.Sprintf("registry is not reachable: %v", err))
	}
}

func outputValidationResult(w io.Writer, result *configuration.ValidationResult, format string, checkRegistry bool) error {
	switch format {
	case "", "table":
		return outputValidationTable(w, result, checkRegistry)
	case "json":
		return outputValidationJSON(w, result, checkRegistry)
	case "yaml":
		return outputValidationYAML(w, result, checkRegistry)
	case "sarif":
		return outputValidationSARIF(w, result)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func outputValidationTable(w io.Writer, result *configuration.ValidationResult, checkRegistry bool) error {
	if result.Valid {
		fmt.Fprintln(w, "✓ Configuration is valid")
		if checkRegistry {
			fmt.Fprintln(w, "  Registry is reachable")
		}
		return nil
	}

	fmt.Fprintln(w, "✗ Configuration validation failed:")
	fmt.Fprintln(w)
	for _, err := range result.Errors {
		fmt.Fprintf(w, "  • %s\n", err.Error())
	}
	fmt.Fprintf(w, "\nTotal errors: %d\n", len(result.Errors))
	return nil
}

func validationOutput(result *configuration.ValidationResult, checkRegistry bool) map[string]interface{} {
	return map[string]interface{}{
		"valid":         result.Valid,
		"errorCount":    len(result.Errors),
		"errors":        result.Errors,
		"checkRegistry": checkRegistry,
	}
}

func outputValidationJSON(w io.Writer, result *configuration.ValidationResult, checkRegistry bool) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(validationOutput(result, checkRegistry))
}

func outputValidationYAML(w io.Writer, result *configuration.ValidationResult, checkRegistry bool) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	return encoder.Encode(validationOutput(result, checkRegistry))
}

func outputValidationSARIF(w io.Writer, result *configuration.ValidationResult) error {
	// SARIF 2.1.0
	sarif := map[string]interface{}{
		"version": "2.1.0",
		"$schema": "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		"runs": []interface{}{
			map[string]interface{}{
				"tool": map[string]interface{}{
					"driver": map[string]interface{}{
						"name":           "npm-upgrade-config-validate",
						"informationUri": ProjectURL,
						"version":        "development",
					},
				},
				"results": convertErrorsToSARIF(result.Errors),
			},
		},
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(sarif)
}

func convertErrorsToSARIF(errors []*configuration.ValidationError) []interface{} {
	results := make([]interface{}, len(errors))
	for i, err := range errors {
		results[i] = map[string]interface{}{
			"ruleId": "configuration-error",
			"level":  "error",
			"message": map[string]interface{}{
				"text": err.Message,
			},
			"locations": []interface{}{
				map[string]interface{}{
					"logicalLocations": []interface{}{
						map[string]interface{}{
							"fullyQualifiedName": err.Field,
						},
					},
				},
			},
		}
	}
	return results
}
