package actions

import (
	"context"

	"github.com/mxcd/npm-upgrade/internal/registry"
	"github.com/rs/zerolog/log"
)

// Changelog finds the changelog of module and opens it in the browser.
func Changelog(ctx context.Context, env *Environment, module string) error {
	out := env.Out
	out.Printf("Trying to find changelog URL for %s...\n", out.Strong(module))

	url, err := env.enricher(ctx).FindChangelog(ctx, module)
	if err != nil {
		if registry.IsNotFound(err) {
			out.Println("Couldn't find info about this module in npm registry")
			return nil
		}
		return err
	}

	if url == "" {
		out.Printf("Sorry, we haven't found any changelog URL for this module.\n"+
			"It would be great if you could fill an issue about this here: %s\n"+
			"Thanks a lot!\n", out.Strong(BugsURL))
		return nil
	}

	out.Printf("Opening %s...\n", out.Strong(url))
	if err := env.Browser.Open(url); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Failed to open browser")
	}
	return nil
}
