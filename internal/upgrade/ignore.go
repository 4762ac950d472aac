package upgrade

import (
	"context"

	"github.com/mxcd/npm-upgrade/internal/ignore"
	"github.com/mxcd/npm-upgrade/internal/prompt"
)

// IgnoreEverything is the range offered when capturing an ignore entry.
const IgnoreEverything = "*"

// Partition splits modules into those silenced by the ignore list and those
// to ask about. Both keep their relative order.
func Partition(modules []*Module, list IgnoreList) (ignored, active []*Module) {
	for _, m := range modules {
		if list.IsIgnored(m.Name, m.Latest) {
			ignored = append(ignored, m)
		} else {
			active = append(active, m)
		}
	}
	return ignored, active
}

// AskIgnoreFields asks for the version range to ignore until it is valid,
// then for a free text reason.
func AskIgnoreFields(ctx context.Context, p prompt.Prompter, out Presenter, defaultVersions string) (string, string, error) {
	var versions string
	for {
		answer, err := p.Input(ctx, "Input version or version range to ignore", defaultVersions)
		if err != nil {
			return "", "", err
		}
		if ignore.ValidRange(answer) {
			versions = answer
			break
		}
		out.Printf("%s\n", out.Attention("Input valid semver version range"))
	}

	reason, err := p.Input(ctx, "Ignore reason", "")
	if err != nil {
		return "", "", err
	}
	return versions, reason, nil
}
