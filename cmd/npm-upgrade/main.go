package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mxcd/npm-upgrade/internal/actions"
	"github.com/mxcd/npm-upgrade/internal/manifest"
	"github.com/mxcd/npm-upgrade/internal/prompt"
	"github.com/mxcd/npm-upgrade/internal/render"
	"github.com/mxcd/npm-upgrade/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

var version = "development"

func main() {

	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{},
		Usage:   "print only the version",
	}

	checkFlags := []cli.Flag{
		&cli.BoolFlag{
			Name:    "global",
			Aliases: []string{"g"},
			Usage:   "check global modules",
		},
	}
	for _, group := range manifest.DepsGroups {
		checkFlags = append(checkFlags, &cli.BoolFlag{
			Name:    group.Name,
			Aliases: []string{group.Flag},
			Usage:   "check only \"" + group.Field + "\"",
		})
	}

	cmd := &cli.Command{
		Name:      "npm-upgrade",
		Version:   version,
		Usage:     "Interactive upgrade of outdated npm dependencies",
		ArgsUsage: "[filter]",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "debug output",
				Sources: cli.EnvVars("NPM_UPGRADE_VERBOSE"),
			},
			&cli.BoolFlag{
				Name:    "very-verbose",
				Aliases: []string{"vv"},
				Usage:   "trace output",
				Sources: cli.EnvVars("NPM_UPGRADE_VERY_VERBOSE"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file (default: .npm-upgraderc.yml in the project)",
				Sources: cli.EnvVars("NPM_UPGRADE_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "registry",
				Usage:   "npm registry URL",
				Sources: cli.EnvVars("NPM_UPGRADE_REGISTRY"),
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "npm registry bearer token",
				Sources: cli.EnvVars("NPM_UPGRADE_TOKEN"),
			},
		}, checkFlags...),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return initCli(ctx, cmd)
		},
		Action: checkCommand,
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "Check for outdated modules",
				ArgsUsage: "[filter]",
				Action:    checkCommand,
			},
			{
				Name:  "ignore",
				Usage: "Manage ignored modules",
				Commands: []*cli.Command{
					{
						Name:      "add",
						Usage:     "Add module to ignored list",
						ArgsUsage: "[module]",
						Action:    ignoreAddCommand,
					},
					{
						Name:   "list",
						Usage:  "Show the list of ignored modules",
						Action: ignoreListCommand,
					},
					{
						Name:      "reset",
						Usage:     "Reset ignored modules",
						ArgsUsage: "[modules...]",
						Action:    ignoreResetCommand,
					},
				},
			},
			{
				Name:      "changelog",
				Usage:     "Show changelog for a module",
				ArgsUsage: "<module>",
				Action:    changelogCommand,
			},
			{
				Name:  "config",
				Usage: "Inspect the configuration",
				Commands: []*cli.Command{
					{
						Name:  "validate",
						Usage: "Validate configuration",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "output",
								Usage: "Output format: table, json, yaml, sarif",
								Value: "table",
							},
							&cli.BoolFlag{
								Name:  "check-registry",
								Usage: "Verify that the configured registry answers",
								Value: false,
							},
						},
						Action: validateCommand,
					},
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Run(ctx, os.Args)
	stop()
	if errors.Is(err, prompt.ErrAborted) || errors.Is(err, context.Canceled) {
		log.Warn().Msg("aborted")
		os.Exit(130)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("command terminated with error")
	}
}

func initCli(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	godotenv.Load()
	util.SetCliLoggerDefaults()
	util.SetCliLogLevel(cmd)
	if util.ColorsDisabled() {
		render.DisableColors()
	}
	log.Trace().Msg("Trace logging enabled")
	log.Debug().Msg("Debug logging enabled")

	return ctx, nil
}

func newEnvironment(cmd *cli.Command) (*actions.Environment, error) {
	env, err := actions.NewEnvironment(&actions.EnvironmentOptions{
		ConfigPath:  cmd.String("config"),
		RegistryURL: cmd.String("registry"),
		Token:       cmd.String("token"),
	})
	if err != nil {
		return nil, cli.Exit(err.Error(), 1)
	}
	return env, nil
}

func checkCommand(ctx context.Context, cmd *cli.Command) error {
	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}

	var groups []string
	for _, group := range manifest.DepsGroups {
		if cmd.Bool(group.Name) {
			groups = append(groups, group.Name)
		}
	}

	return actions.Check(ctx, env, &actions.CheckOptions{
		Filter: cmd.Args().First(),
		Groups: groups,
		Global: cmd.Bool("global"),
	})
}

func ignoreAddCommand(ctx context.Context, cmd *cli.Command) error {
	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}
	return actions.IgnoreAdd(ctx, env, cmd.Args().First())
}

func ignoreListCommand(ctx context.Context, cmd *cli.Command) error {
	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}
	return actions.IgnoreList(env)
}

func ignoreResetCommand(ctx context.Context, cmd *cli.Command) error {
	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}
	return actions.IgnoreReset(ctx, env, cmd.Args().Slice())
}

func changelogCommand(ctx context.Context, cmd *cli.Command) error {
	module := cmd.Args().First()
	if module == "" {
		return cli.Exit("missing module name", 1)
	}
	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}
	return actions.Changelog(ctx, env, module)
}

func validateCommand(ctx context.Context, cmd *cli.Command) error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	return actions.ValidateConfig(ctx, os.Stdout, &actions.ValidateOptions{
		ConfigPath:    cmd.String("config"),
		Dir:           dir,
		OutputFormat:  cmd.String("output"),
		CheckRegistry: cmd.Bool("check-registry"),
	})
}
