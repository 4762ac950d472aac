// Package scraper fetches the registry documents of many modules at once.
package scraper

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mxcd/npm-upgrade/internal/registry"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel registry requests.
const DefaultConcurrency = 8

// ScrapeError records a failed lookup for a single module.
type ScrapeError struct {
	Module string
	Err    error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("module %s: %v", e.Module, e.Err)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// ScrapeResult holds the outcome of ScrapeAll.
type ScrapeResult struct {
	Packages  map[string]*registry.Package
	Succeeded int
	Failed    int
	Errors    []*ScrapeError
}

// HasErrors returns true if any module failed to scrape.
func (r *ScrapeResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Failures maps module names to their lookup error.
func (r *ScrapeResult) Failures() map[string]error {
	failures := make(map[string]error, len(r.Errors))
	for _, e := range r.Errors {
		failures[e.Module] = e
	}
	return failures
}

// PackageSource is the registry lookup used by the orchestrator.
type PackageSource interface {
	Package(ctx context.Context, name string) (*registry.Package, error)
}

type Orchestrator struct {
	source      PackageSource
	concurrency int
	progress    io.Writer
}

// NewOrchestrator creates an orchestrator. Progress is drawn on stderr.
func NewOrchestrator(source PackageSource, concurrency int) *Orchestrator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Orchestrator{source: source, concurrency: concurrency, progress: os.Stderr}
}

// SetProgressWriter redirects the progress bar. A nil writer hides it.
func (o *Orchestrator) SetProgressWriter(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	o.progress = w
}

// ScrapeAll fetches the documents of all names. Failures of single modules
// are collected in the result; only cancellation of ctx is returned as an
// error.
func (o *Orchestrator) ScrapeAll(ctx context.Context, names []string) (*ScrapeResult, error) {
	log.Debug().Int("count", len(names)).Int("concurrency", o.concurrency).Msg("Starting to query the registry")

	bar := progressbar.NewOptions(len(names),
		progressbar.OptionSetWriter(o.progress),
		progressbar.OptionSetDescription("Querying registry:"),
		progressbar.OptionSetItsString("pkg"),
		progressbar.OptionShowIts(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	result := &ScrapeResult{Packages: make(map[string]*registry.Package, len(names))}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for _, name := range names {
		g.Go(func() error {
			pkg, err := o.source.Package(gctx, name)
			bar.Add(1)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if registry.IsNotFound(err) {
					log.Debug().Err(err).Str("module", name).Msg("Module is not published on the registry")
				} else {
					log.Warn().Err(err).Str("module", name).Msg("Failed to query registry")
				}
				result.Failed++
				result.Errors = append(result.Errors, &ScrapeError{Module: name, Err: err})
				return nil
			}
			result.Succeeded++
			result.Packages[name] = pkg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	bar.Finish()

	if result.HasErrors() {
		log.Warn().
			Int("succeeded", result.Succeeded).
			Int("failed", result.Failed).
			Msg("Queried registry with errors")
	} else {
		log.Debug().Int("succeeded", result.Succeeded).Msg("Successfully queried registry")
	}
	return result, nil
}
