package upgrade

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/mxcd/npm-upgrade/internal/prompt"
)

// PrefixOf splits a declared specifier into its range operator ("^", "~" or
// "") and the version behind it.
func PrefixOf(spec string) (string, string) {
	spec = strings.TrimSpace(spec)
	if strings.HasPrefix(spec, "^") || strings.HasPrefix(spec, "~") {
		return spec[:1], spec[1:]
	}
	return "", spec
}

// SortVersions orders versions ascending. If any of them is not a strict
// semver version the original order is kept.
func SortVersions(versions []string) []string {
	sorted := slices.Clone(versions)
	parsed := make(map[string]*semver.Version, len(versions))
	for _, v := range versions {
		sv, err := semver.StrictNewVersion(v)
		if err != nil {
			return sorted
		}
		parsed[v] = sv
	}
	slices.SortStableFunc(sorted, func(a, b string) int {
		return parsed[a].Compare(parsed[b])
	})
	return sorted
}

// RangeChoices offers version as an exact pin, a patch range and a minor
// range.
func RangeChoices(version string) []prompt.Choice {
	return []prompt.Choice{
		{Label: fmt.Sprintf(" %s - Exact version (x.x.x)", version), Value: version},
		{Label: fmt.Sprintf("~%s - Allow patches (x.x.?)", version), Value: "~" + version},
		{Label: fmt.Sprintf("^%s - Allow minor and patches (x.?.?)", version), Value: "^" + version},
	}
}

func (s *Session) askSpecificVersion(ctx context.Context, m *Module, versions []string) (string, error) {
	prefix, current := PrefixOf(m.From)

	sorted := SortVersions(versions)
	choices := prompt.Strings(sorted)
	// Unknown current versions start at the top of the list.
	cursor := max(prompt.IndexOf(choices, current), 0)

	version, err := s.Prompter.Select(ctx, fmt.Sprintf("Select version for %q?", m.Name), choices, cursor)
	if err != nil {
		return "", err
	}

	ranges := RangeChoices(version)
	return s.Prompter.Select(ctx, "Exact version or range?", ranges, max(prompt.IndexOf(ranges, prefix+version), 0))
}
