package actions

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mxcd/npm-upgrade/internal/compare"
	"github.com/mxcd/npm-upgrade/internal/filter"
	"github.com/mxcd/npm-upgrade/internal/ignore"
	"github.com/mxcd/npm-upgrade/internal/manifest"
	"github.com/mxcd/npm-upgrade/internal/render"
	"github.com/mxcd/npm-upgrade/internal/scraper"
	"github.com/mxcd/npm-upgrade/internal/upgrade"
	"github.com/rs/zerolog/log"
)

type CheckOptions struct {
	Filter string
	// Groups limits the check to the named dependency groups. Empty means
	// all of them.
	Groups []string
	Global bool
}

// checkedGroups resolves the group flags. Global mode ignores them.
func (o *CheckOptions) checkedGroups() []manifest.DepsGroup {
	if o.Global {
		if len(o.Groups) > 0 {
			log.Warn().Strs("groups", o.Groups).Msg("Dependency group flags are ignored in global mode")
		}
		return manifest.DepsGroups[:1]
	}
	if len(o.Groups) == 0 {
		return manifest.DepsGroups
	}

	var groups []manifest.DepsGroup
	for _, group := range manifest.DepsGroups {
		for _, name := range o.Groups {
			if name == group.Name {
				groups = append(groups, group)
				break
			}
		}
	}
	return groups
}

func toSentence(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

func (env *Environment) loadManifest(ctx context.Context, global bool) (*manifest.Manifest, error) {
	if global {
		return manifest.LoadGlobal(ctx, env.Run)
	}
	return manifest.Load(filepath.Join(env.Dir, manifest.FileName))
}

// Check looks for outdated dependencies and asks what to do with each of
// them.
func Check(ctx context.Context, env *Environment, options *CheckOptions) error {
	groups := options.checkedGroups()

	m, err := env.loadManifest(ctx, options.Global)
	if err != nil {
		return err
	}

	enricher := env.enricher(ctx)
	out := env.Out

	groupsText := ""
	if len(groups) != len(manifest.DepsGroups) && !options.Global {
		names := make([]string, len(groups))
		for i, group := range groups {
			names[i] = out.Strong(group.Name)
		}
		groupsText = toSentence(names) + " "
	}
	filteredWith := ""
	if options.Filter != "" {
		filteredWith = fmt.Sprintf("filtered with %s ", out.Strong(options.Filter))
	}
	target := ""
	if !options.Global {
		target = fmt.Sprintf("for %q", m.Path)
	}
	out.Printf("Checking for outdated %sdependencies %s%s...\n", groupsText, filteredWith, target)

	deps := m.Dependencies(groups, filter.Compile(options.Filter))
	modules, err := env.resolveOutdated(ctx, deps)
	if err != nil {
		return err
	}

	if len(modules) == 0 {
		out.Println(out.Success("All dependencies are up-to-date!"))
		return nil
	}

	store := ignore.Load(env.Dir)
	ignored, active := upgrade.Partition(modules, store)
	upgrade.Reorder(active)
	upgrade.Reorder(ignored)

	if len(active) == 0 {
		out.Println(out.Success("\nAll active modules are up-to-date!"))
	} else {
		out.Printf("\n%s\n\n", out.Strong("New versions of active modules available:"))
		render.UpdatedModules(out.Writer(), moduleRows(active))
	}

	if len(ignored) > 0 {
		rows := make([]render.IgnoredRow, 0, len(ignored))
		for _, module := range ignored {
			entry, _ := store.Get(module.Name)
			rows = append(rows, render.IgnoredRow{
				ModuleRow: render.ModuleRow{Name: module.Name, From: module.From, To: module.To},
				Versions:  entry.Versions,
				Reason:    entry.Reason,
			})
		}
		out.Printf("\n%s\n\n", out.Strong("Ignored updates:"))
		render.IgnoredModules(out.Writer(), rows)
	}

	session := upgrade.NewSession(active)
	session.Manifest = m
	session.Ignore = store
	session.Prompter = env.Prompter
	session.Presenter = out
	session.Browser = env.Browser
	session.Enricher = enricher
	session.Recency = env.Config.RecencyThresholds()
	session.Global = options.Global
	session.BugsURL = BugsURL
	session.Now = env.Now

	result, err := session.Run(ctx)
	if err != nil {
		return err
	}

	if len(result.Updated) == 0 {
		out.Println("Nothing to update")
		return nil
	}

	out.Printf("\n%s\n\n", out.Strong("These packages will be updated:"))
	render.UpdatedModules(out.Writer(), moduleRows(result.Updated))
	out.Println()

	if options.Global {
		confirmed, err := env.Prompter.Confirm(ctx, "Update global modules?", true)
		if err != nil || !confirmed {
			return err
		}
		specs := make([]string, len(result.Updated))
		for i, module := range result.Updated {
			specs[i] = module.Name + "@" + module.To
		}
		out.Printf("Automatically upgrading %d module%s...\n", len(specs), plural(len(specs)))
		return manifest.InstallGlobal(ctx, env.Run, specs)
	}

	confirmed, err := env.Prompter.Confirm(ctx, "Update package.json?", true)
	if err != nil || !confirmed {
		return err
	}
	if err := m.Save(); err != nil {
		return err
	}
	log.Info().Int("updated", len(result.Updated)).Str("path", m.Path).Msg("Manifest updated")
	return nil
}

// resolveOutdated queries the registry for every dependency and returns
// the ones with a newer latest version.
func (env *Environment) resolveOutdated(ctx context.Context, deps []manifest.Dependency) ([]*upgrade.Module, error) {
	names := make([]string, len(deps))
	for i, dep := range deps {
		names[i] = dep.Name
	}

	orchestrator := scraper.NewOrchestrator(env.Registry, env.Config.Registry.Concurrency)
	orchestrator.SetProgressWriter(env.Progress)

	scrapeResult, err := orchestrator.ScrapeAll(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("failed to query registry: %w", err)
	}
	if scrapeResult.HasErrors() {
		log.Warn().Int("failed", scrapeResult.Failed).Msg("Some modules could not be checked")
	}

	results := compare.CompareAll(deps, scrapeResult.Packages, scrapeResult.Failures())
	return compare.Outdated(results), nil
}

func moduleRows(modules []*upgrade.Module) []render.ModuleRow {
	rows := make([]render.ModuleRow, len(modules))
	for i, module := range modules {
		rows[i] = render.ModuleRow{Name: module.Name, From: module.From, To: module.To}
	}
	return rows
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
