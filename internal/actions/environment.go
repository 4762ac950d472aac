package actions

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mxcd/npm-upgrade/internal/changelog"
	"github.com/mxcd/npm-upgrade/internal/configuration"
	"github.com/mxcd/npm-upgrade/internal/manifest"
	"github.com/mxcd/npm-upgrade/internal/prompt"
	"github.com/mxcd/npm-upgrade/internal/registry"
	"github.com/mxcd/npm-upgrade/internal/render"
	"github.com/mxcd/npm-upgrade/internal/upgrade"
	"github.com/rs/zerolog/log"
)

const ProjectURL = "https://github.com/mxcd/npm-upgrade"

// BugsURL is where missing changelog URLs should be reported.
const BugsURL = ProjectURL + "/issues"

// Environment carries everything the commands interact with.
type Environment struct {
	Dir      string
	Config   *configuration.Config
	Registry *registry.Client
	Prompter prompt.Prompter
	Out      *render.Terminal
	Browser  upgrade.Browser
	Run      manifest.Runner
	Now      func() time.Time
	// Progress receives the registry progress bar; nil hides it.
	Progress io.Writer
}

type EnvironmentOptions struct {
	Dir         string
	ConfigPath  string
	RegistryURL string
	Token       string
}

// NewEnvironment loads and validates the configuration and wires the
// terminal implementations.
func NewEnvironment(options *EnvironmentOptions) (*Environment, error) {
	dir := options.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		dir = wd
	}

	configPath := options.ConfigPath
	if configPath == "" {
		configPath = configuration.FindConfiguration(dir)
	}
	log.Debug().Str("config", configPath).Msg("Loading configuration...")

	config, err := configuration.LoadConfiguration(configPath)
	if err != nil {
		return nil, fmt.Errorf("configuration load error: %w", err)
	}

	validationResult := configuration.ValidateConfiguration(config)
	if !validationResult.Valid {
		for _, validationErr := range validationResult.Errors {
			log.Error().Str("field", validationErr.Field).Msg(validationErr.Message)
		}
		return nil, fmt.Errorf("configuration validation failed")
	}

	if options.RegistryURL != "" {
		config.Registry.URL = options.RegistryURL
	}
	if options.Token != "" {
		config.Registry.Token = options.Token
	}

	return &Environment{
		Dir:    dir,
		Config: config,
		Registry: registry.NewClient(registry.Options{
			BaseURL: config.Registry.URL,
			Token:   config.Registry.Token,
			Retries: config.RetryCount(),
			Timeout: config.RequestTimeout(),
		}),
		Prompter: prompt.NewTerminal(),
		Out:      render.NewTerminal(os.Stdout),
		Browser:  render.Browser{},
		Run:      manifest.ExecRunner,
		Now:      time.Now,
		Progress: os.Stderr,
	}, nil
}

// enricher creates the session scoped changelog resolver and starts
// fetching the remote changelog database if one is configured.
func (env *Environment) enricher(ctx context.Context) *changelog.Enricher {
	var remote *changelog.RemoteDB
	if url := env.Config.Changelog.RemoteDBURL; url != "" {
		remote = changelog.NewRemoteDB(url, env.Registry.HTTP())
		remote.Prefetch(ctx)
	}
	return changelog.NewEnricher(env.Registry, remote)
}
