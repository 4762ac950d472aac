// Package compare decides which declared dependencies are outdated and what
// their upgraded specifier looks like.
package compare

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/mxcd/npm-upgrade/internal/manifest"
	"github.com/mxcd/npm-upgrade/internal/registry"
	"github.com/mxcd/npm-upgrade/internal/upgrade"
	"github.com/rs/zerolog/log"
)

// ComparisonResult is the outcome of comparing one declared dependency with
// the registry.
type ComparisonResult struct {
	Name            string
	Group           string
	CurrentVersion  string
	LatestVersion   string
	UpgradedVersion string
	UpdateType      upgrade.UpdateType
	NeedsUpdate     bool
	Error           error
}

var (
	operatorPattern = regexp.MustCompile(`^(\^|~|=)?\s*v?(.*)$`)
	partPattern     = regexp.MustCompile(`^(\d+|x|X|\*)$`)
)

// spec is a simple declared range: an optional operator followed by up to
// three dot separated parts, trailing ones possibly wildcards.
type spec struct {
	operator  string
	parts     []string
	precision int
	wildcard  string
	suffix    string
}

// parseSpec rejects complex ranges, tags and non registry sources.
func parseSpec(declared string) (*spec, bool) {
	declared = strings.TrimSpace(declared)
	if declared == "" || strings.ContainsAny(declared, " <>|:/") {
		return nil, false
	}
	match := operatorPattern.FindStringSubmatch(declared)
	if match == nil || match[2] == "" {
		return nil, false
	}

	s := &spec{operator: match[1]}
	version := match[2]
	if i := strings.IndexAny(version, "-+"); i != -1 {
		version, s.suffix = version[:i], version[i:]
	}

	s.parts = strings.Split(version, ".")
	if len(s.parts) > 3 {
		return nil, false
	}
	for i, part := range s.parts {
		if !partPattern.MatchString(part) {
			return nil, false
		}
		isWildcard := part == "x" || part == "X" || part == "*"
		switch {
		case isWildcard && s.wildcard == "":
			s.wildcard = part
			s.precision = i
		case !isWildcard && s.wildcard != "":
			return nil, false
		}
	}
	if s.wildcard == "" {
		s.precision = len(s.parts)
	}
	if s.precision == 0 || (s.suffix != "" && s.precision < 3) {
		return nil, false
	}
	return s, true
}

// lowest is the smallest version the spec accepts.
func (s *spec) lowest() (*semver.Version, error) {
	parts := []string{"0", "0", "0"}
	copy(parts, s.parts[:s.precision])
	return semver.StrictNewVersion(strings.Join(parts, ".") + s.suffix)
}

// upgradeTo renders latest with the operator, precision and wildcards of s.
func (s *spec) upgradeTo(latest *semver.Version) string {
	numbers := []string{
		fmt.Sprint(latest.Major()),
		fmt.Sprint(latest.Minor()),
		fmt.Sprint(latest.Patch()),
	}
	parts := append([]string(nil), numbers[:s.precision]...)
	for len(parts) < len(s.parts) {
		parts = append(parts, s.wildcard)
	}
	version := strings.Join(parts, ".")
	if s.precision == 3 && latest.Prerelease() != "" {
		version += "-" + latest.Prerelease()
	}
	return s.operator + version
}

// Upgrade returns the upgraded specifier of declared for the latest version
// and whether it is an upgrade at all. Ranges that cannot be rewritten
// while keeping their style are never upgraded.
func Upgrade(declared, latest string) (string, bool) {
	s, ok := parseSpec(declared)
	if !ok {
		return "", false
	}
	latestVersion, err := semver.StrictNewVersion(latest)
	if err != nil {
		return "", false
	}
	lowest, err := s.lowest()
	if err != nil {
		return "", false
	}

	upgraded := s.upgradeTo(latestVersion)
	if upgraded == strings.TrimSpace(declared) || !latestVersion.GreaterThan(lowest) {
		return "", false
	}
	return upgraded, true
}

// DetermineUpdateType classifies the step from the lowest version accepted
// by declared to latest.
func DetermineUpdateType(declared, latest string) upgrade.UpdateType {
	s, ok := parseSpec(declared)
	if !ok {
		return upgrade.UpdateTypePatch
	}
	current, err := s.lowest()
	if err != nil {
		return upgrade.UpdateTypePatch
	}
	next, err := semver.StrictNewVersion(latest)
	if err != nil {
		return upgrade.UpdateTypePatch
	}

	switch {
	case next.Major() > current.Major():
		return upgrade.UpdateTypeMajor
	case next.Major() < current.Major():
		return upgrade.UpdateTypeNone
	case next.Minor() > current.Minor():
		return upgrade.UpdateTypeMinor
	case next.Minor() < current.Minor():
		return upgrade.UpdateTypeNone
	case next.GreaterThan(current):
		return upgrade.UpdateTypePatch
	default:
		return upgrade.UpdateTypeNone
	}
}

// CompareAll compares every dependency with its registry document.
// Dependencies without a document carry the scrape error.
func CompareAll(deps []manifest.Dependency, packages map[string]*registry.Package, failures map[string]error) []*ComparisonResult {
	log.Debug().Int("count", len(deps)).Msg("Starting comparison of dependencies")

	results := make([]*ComparisonResult, 0, len(deps))
	for _, dep := range deps {
		result := &ComparisonResult{
			Name:           dep.Name,
			Group:          dep.Group,
			CurrentVersion: dep.Version,
		}
		results = append(results, result)

		pkg, ok := packages[dep.Name]
		if !ok {
			result.Error = failures[dep.Name]
			if result.Error == nil {
				result.Error = fmt.Errorf("no registry document for %s", dep.Name)
			}
			continue
		}

		result.LatestVersion = pkg.Latest()
		if result.LatestVersion == "" {
			result.Error = fmt.Errorf("%s has no latest version", dep.Name)
			continue
		}

		result.UpgradedVersion, result.NeedsUpdate = Upgrade(dep.Version, result.LatestVersion)
		if !result.NeedsUpdate {
			result.UpdateType = upgrade.UpdateTypeNone
			log.Trace().
				Str("module", dep.Name).
				Str("current", dep.Version).
				Str("latest", result.LatestVersion).
				Msg("Dependency is up to date or not upgradable")
			continue
		}

		result.UpdateType = DetermineUpdateType(dep.Version, result.LatestVersion)
		log.Debug().
			Str("module", dep.Name).
			Str("current", dep.Version).
			Str("latest", result.LatestVersion).
			Str("updateType", string(result.UpdateType)).
			Msg("Update available")
	}

	log.Debug().
		Int("total", len(results)).
		Int("needsUpdate", countNeedingUpdate(results)).
		Msg("Comparison complete")
	return results
}

// Outdated turns the results needing an update into modules to decide on.
func Outdated(results []*ComparisonResult) []*upgrade.Module {
	var modules []*upgrade.Module
	for _, r := range results {
		if !r.NeedsUpdate {
			continue
		}
		modules = append(modules, &upgrade.Module{
			Name:       r.Name,
			From:       r.CurrentVersion,
			To:         r.UpgradedVersion,
			Latest:     r.LatestVersion,
			UpdateType: r.UpdateType,
		})
	}
	return modules
}

func countNeedingUpdate(results []*ComparisonResult) int {
	count := 0
	for _, r := range results {
		if r.NeedsUpdate {
			count++
		}
	}
	return count
}
