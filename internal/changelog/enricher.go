// Package changelog finds changelog and homepage URLs of npm packages.
package changelog

import (
	"context"
	"sync"
	"time"

	"github.com/mxcd/npm-upgrade/internal/registry"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// CommonFiles are looked up in the repository when no changelog is declared.
var CommonFiles = []string{"CHANGELOG.md", "History.md", "CHANGES.md"}

// Registry is the part of the registry client the enricher depends on.
type Registry interface {
	Package(ctx context.Context, name string) (*registry.Package, error)
	Exists(ctx context.Context, url string) bool
}

// Enricher resolves module information at most once per module. A cached
// empty string means the lookup was made and found nothing.
type Enricher struct {
	registry Registry
	remote   *RemoteDB

	mu         sync.Mutex
	changelogs map[string]string
	homepages  map[string]string
}

// NewEnricher creates an enricher. remote may be nil.
func NewEnricher(reg Registry, remote *RemoteDB) *Enricher {
	return &Enricher{
		registry:   reg,
		remote:     remote,
		changelogs: map[string]string{},
		homepages:  map[string]string{},
	}
}

func (e *Enricher) cached(memo map[string]string, name string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	url, ok := memo[name]
	return url, ok
}

func (e *Enricher) remember(memo map[string]string, name, url string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	memo[name] = url
}

// Changelog returns the changelog URL of name, or "" when none was found.
// Lookup failures count as not found.
func (e *Enricher) Changelog(ctx context.Context, name string) string {
	if url, ok := e.cached(e.changelogs, name); ok {
		return url
	}
	url, err := e.FindChangelog(ctx, name)
	if err != nil {
		log.Debug().Err(err).Str("module", name).Msg("Changelog lookup failed")
	}
	e.remember(e.changelogs, name, url)
	return url
}

// FindChangelog looks up the changelog URL of name without caching. It
// tries the known URL databases, the changelog field of the package
// document, common changelog files in the repository and finally the
// releases page of the repository. Only registry failures are returned.
func (e *Enricher) FindChangelog(ctx context.Context, name string) (string, error) {
	if e.remote != nil {
		if url := e.remote.Lookup(ctx)[name]; url != "" {
			return url, nil
		}
	}
	if url := StaticDB()[name]; url != "" {
		return url, nil
	}

	pkg, err := e.registry.Package(ctx, name)
	if err != nil {
		return "", err
	}
	if pkg.Changelog != "" {
		return pkg.Changelog, nil
	}
	if pkg.Repository.URL == "" {
		return "", nil
	}

	repo, err := ParseRepositoryURL(pkg.Repository.URL)
	if err != nil {
		log.Debug().Err(err).Str("module", name).Msg("Repository is not on a known hosting")
		return "", nil
	}

	candidates := make([]string, len(CommonFiles))
	for i, file := range CommonFiles {
		candidates[i] = repo.FileURL(file)
	}
	if url := e.firstExisting(ctx, candidates); url != "" {
		return url, nil
	}

	if releases := repo.ReleasesURL(); e.registry.Exists(ctx, releases) {
		return releases, nil
	}
	return "", nil
}

// firstExisting requests all urls concurrently and returns the first one,
// in the given order, that exists.
func (e *Enricher) firstExisting(ctx context.Context, urls []string) string {
	found := make([]bool, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	for i, url := range urls {
		g.Go(func() error {
			found[i] = e.registry.Exists(gctx, url)
			return nil
		})
	}
	_ = g.Wait()

	for i, ok := range found {
		if ok {
			return urls[i]
		}
	}
	return ""
}

// Homepage returns the homepage declared by the package document of name.
func (e *Enricher) Homepage(ctx context.Context, name string) string {
	if url, ok := e.cached(e.homepages, name); ok {
		return url
	}
	var url string
	pkg, err := e.registry.Package(ctx, name)
	if err != nil {
		log.Debug().Err(err).Str("module", name).Msg("Homepage lookup failed")
	} else {
		url = pkg.Homepage
		if url == "" {
			url = pkg.URL
		}
	}
	e.remember(e.homepages, name, url)
	return url
}

// Versions returns every published version of name in publish order.
func (e *Enricher) Versions(ctx context.Context, name string) []string {
	pkg, err := e.registry.Package(ctx, name)
	if err != nil {
		log.Debug().Err(err).Str("module", name).Msg("Version lookup failed")
		return nil
	}
	return pkg.Versions
}

// PublishedAt returns when version of name was published.
func (e *Enricher) PublishedAt(ctx context.Context, name, version string) (time.Time, bool) {
	pkg, err := e.registry.Package(ctx, name)
	if err != nil {
		return time.Time{}, false
	}
	return pkg.PublishedAt(version)
}
