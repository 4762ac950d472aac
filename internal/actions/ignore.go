package actions

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mxcd/npm-upgrade/internal/ignore"
	"github.com/mxcd/npm-upgrade/internal/manifest"
	"github.com/mxcd/npm-upgrade/internal/prompt"
	"github.com/mxcd/npm-upgrade/internal/render"
	"github.com/mxcd/npm-upgrade/internal/upgrade"
	"github.com/rs/zerolog/log"
)

func (env *Environment) printIgnored(store *ignore.Store, names []string) {
	rows := make([]render.IgnoreEntryRow, 0, len(names))
	for _, name := range names {
		entry, _ := store.Get(name)
		rows = append(rows, render.IgnoreEntryRow{Name: name, Versions: entry.Versions, Reason: entry.Reason})
	}
	render.IgnoreList(env.Out.Writer(), rows)
	env.Out.Println()
}

// IgnoreList prints the ignore list of the project.
func IgnoreList(env *Environment) error {
	store := ignore.Load(env.Dir)
	env.Out.Printf("Currently ignored modules:\n\n")
	env.printIgnored(store, store.Names())
	return nil
}

// IgnoreAdd adds modules to the ignore list, starting with module if it is
// declared in the manifest.
func IgnoreAdd(ctx context.Context, env *Environment, module string) error {
	m, err := manifest.Load(filepath.Join(env.Dir, manifest.FileName))
	if err != nil {
		return err
	}
	store := ignore.Load(env.Dir)
	out := env.Out

	out.Printf("Currently ignored modules:\n\n")
	env.printIgnored(store, store.Names())

	if module != "" {
		if _, ok := m.Version(module); !ok {
			out.Println(out.Attention(fmt.Sprintf("Couldn't find module %s in %s. Choose existing module.\n",
				out.Strong(module), out.Strong(manifest.FileName))))
			module = ""
		}
	}

	for {
		if module == "" {
			choices := ignorableModules(m, store)
			if len(choices) == 0 {
				out.Println(out.Attention("There are no modules left to ignore"))
				return nil
			}
			module, err = env.Prompter.Select(ctx, "Select module to ignore:", choices, 0)
			if err != nil {
				return err
			}
		}

		versions, reason, err := upgrade.AskIgnoreFields(ctx, env.Prompter, out, upgrade.IgnoreEverything)
		if err != nil {
			return err
		}
		store.Set(module, versions, reason)
		if err := store.Save(); err != nil {
			return err
		}
		log.Debug().Str("module", module).Str("versions", versions).Msg("Module ignored")

		out.Println(out.Success(fmt.Sprintf("\nModule %s added to ignored list.\n", out.Strong(module))))
		module = ""

		more, err := env.Prompter.Confirm(ctx, "Do you want to ignore some other module?", true)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// ignorableModules lists the declared modules that are not ignored yet,
// labelled with the group declaring them.
func ignorableModules(m *manifest.Manifest, store *ignore.Store) []prompt.Choice {
	ignored := store.Names()
	var choices []prompt.Choice
	seen := map[string]bool{}
	for _, group := range manifest.DepsGroups {
		for _, name := range m.Names(group) {
			if seen[name] || slices.Contains(ignored, name) {
				continue
			}
			seen[name] = true
			choices = append(choices, prompt.Choice{
				Label: fmt.Sprintf("%s (%s)", name, group.Field),
				Value: name,
			})
		}
	}
	return choices
}

// IgnoreReset removes modules from the ignore list after confirmation.
// Unknown modules make the selection interactive.
func IgnoreReset(ctx context.Context, env *Environment, modules []string) error {
	store := ignore.Load(env.Dir)
	out := env.Out
	ignored := store.Names()

	out.Printf("Currently ignored modules:\n\n")
	env.printIgnored(store, ignored)

	var valid, invalid []string
	for _, name := range modules {
		if slices.Contains(ignored, name) {
			valid = append(valid, name)
		} else {
			invalid = append(invalid, name)
		}
	}
	if len(invalid) > 0 {
		out.Println(out.Attention(fmt.Sprintf("These modules are not in the ignored list: %s\n",
			out.Strong(strings.Join(invalid, ", ")))))
	}

	if len(valid) == 0 || len(invalid) > 0 {
		selected, err := env.Prompter.MultiSelect(ctx, "Select ignored modules to reset:", ignored, valid)
		if err != nil {
			return err
		}
		valid = selected
		out.Println()
	}

	if len(valid) == 0 {
		out.Println(out.Attention("Nothing to reset"))
		return nil
	}

	out.Printf("These ignored modules will be reset:\n\n")
	env.printIgnored(store, valid)

	confirmed, err := env.Prompter.Confirm(ctx, "Are you sure?", false)
	if err != nil || !confirmed {
		return err
	}

	for _, name := range valid {
		store.Unset(name)
	}
	if err := store.Save(); err != nil {
		return err
	}
	out.Println(out.Success("\nDone!"))
	return nil
}
