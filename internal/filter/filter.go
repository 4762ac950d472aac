// Package filter compiles module name filters such as "react* !react-dom".
package filter

import (
	"regexp"
	"strings"
)

// Predicate reports whether a module name passes the filter.
type Predicate func(name string) bool

var starRuns = regexp.MustCompile(`\*+`)

// GlobToRegexp turns a glob where only "*" is special into an anchored,
// case-insensitive regular expression.
func GlobToRegexp(glob string) *regexp.Regexp {
	parts := starRuns.Split(glob, -1)
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return regexp.MustCompile("(?i)^" + strings.Join(parts, ".*?") + "$")
}

// Compile builds a predicate from a whitespace separated list of globs.
// Globs prefixed with "!" exclude matching names. A name passes when it
// matches no exclude glob and at least one include glob; with no include
// globs every name is included.
func Compile(filter string) Predicate {
	var includes, excludes []*regexp.Regexp

	for _, token := range strings.Fields(filter) {
		if strings.HasPrefix(token, "!") {
			excludes = append(excludes, GlobToRegexp(token[1:]))
			continue
		}
		includes = append(includes, GlobToRegexp(token))
	}

	if len(includes) == 0 {
		includes = append(includes, GlobToRegexp("*"))
	}

	return func(name string) bool {
		for _, re := range excludes {
			if re.MatchString(name) {
				return false
			}
		}
		for _, re := range includes {
			if re.MatchString(name) {
				return true
			}
		}
		return false
	}
}
