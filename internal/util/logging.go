package util

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

// ColorsDisabled reports whether NO_COLOR is set in the environment.
func ColorsDisabled() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

// SetCliLoggerDefaults routes the global logger to stderr so that log lines
// never interleave with the interactive prompts written to stdout.
func SetCliLoggerDefaults() {
	zerolog.TimeFieldFormat = "2006-01-02T15:04:05.000Z"
	log.Logger = log.Logger.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    ColorsDisabled(),
		TimeFormat: time.TimeOnly,
	}).With().Logger()
}

// LogLevel maps the verbosity flags to a level. Without flags only
// warnings are shown.
func LogLevel(verbose, veryVerbose bool) zerolog.Level {
	switch {
	case veryVerbose:
		return zerolog.TraceLevel
	case verbose:
		return zerolog.DebugLevel
	default:
		return zerolog.WarnLevel
	}
}

func SetCliLogLevel(c *cli.Command) {
	zerolog.SetGlobalLevel(LogLevel(c.Bool("verbose"), c.Bool("very-verbose")))
}
