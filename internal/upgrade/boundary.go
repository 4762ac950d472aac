package upgrade

import (
	"context"
	"time"
)

// Enricher resolves additional module information on demand. Every lookup
// degrades to a zero value instead of failing.
type Enricher interface {
	Changelog(ctx context.Context, name string) string
	Homepage(ctx context.Context, name string) string
	Versions(ctx context.Context, name string) []string
	PublishedAt(ctx context.Context, name, version string) (time.Time, bool)
}

// Presenter writes human readable output.
type Presenter interface {
	Printf(format string, args ...any)
	Strong(s string) string
	Attention(s string) string
	Success(s string) string
	ColorizeDiff(from, to string) string
}

// Browser opens URLs for the developer.
type Browser interface {
	Open(url string) error
}

// Manifest receives accepted versions.
type Manifest interface {
	SetVersion(name, version string) bool
}

// IgnoreList is the mutable ignore configuration of the session.
type IgnoreList interface {
	IsIgnored(name, version string) bool
	Set(name, versions, reason string)
	Unset(name string)
	Save() error
}
