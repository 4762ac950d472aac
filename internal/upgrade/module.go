// Package upgrade drives the interactive decision loop over outdated modules.
package upgrade

// LinkState tells whether a lazily resolved URL was looked up yet.
type LinkState int

const (
	Unresolved LinkState = iota
	Found
	Absent
)

func (s LinkState) String() string {
	switch s {
	case Found:
		return "found"
	case Absent:
		return "absent"
	default:
		return "unresolved"
	}
}

// Link is a URL resolved at most once per session.
type Link struct {
	State LinkState
	URL   string
}

// Resolved reports whether a lookup was attempted.
func (l Link) Resolved() bool {
	return l.State != Unresolved
}

func resolvedLink(url string) Link {
	if url == "" {
		return Link{State: Absent}
	}
	return Link{State: Found, URL: url}
}

// UpdateType classifies the distance between the current and latest version.
type UpdateType string

const (
	UpdateTypeMajor UpdateType = "major"
	UpdateTypeMinor UpdateType = "minor"
	UpdateTypePatch UpdateType = "patch"
	UpdateTypeNone  UpdateType = "none"
)

// Module is an outdated dependency awaiting a decision.
type Module struct {
	Name       string
	From       string // declared specifier, e.g. "^1.2.0"
	To         string // proposed specifier in the style of From
	Latest     string // concrete latest version
	UpdateType UpdateType
	Changelog  Link
	Homepage   Link
}
