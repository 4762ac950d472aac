package upgrade

import (
	"context"
	"fmt"
	"time"

	"github.com/mxcd/npm-upgrade/internal/prompt"
	"github.com/rs/zerolog/log"
)

// Session is one pass of the interactive decision loop. The queue is owned
// by the session and mutated in place.
type Session struct {
	Manifest  Manifest
	Ignore    IgnoreList
	Prompter  prompt.Prompter
	Presenter Presenter
	Browser   Browser
	Enricher  Enricher
	Recency   Recency
	// Global switches the question wording to global packages.
	Global bool
	// BugsURL is where missing changelogs should be reported.
	BugsURL string
	Now     func() time.Time

	queue []*Module
}

// Result is the outcome of a session.
type Result struct {
	Updated   []*Module
	Ignored   []*Module
	Remaining []*Module
	Finished  bool
}

// NewSession creates a session asking about modules in order.
func NewSession(modules []*Module) *Session {
	return &Session{
		queue:   append([]*Module(nil), modules...),
		Recency: DefaultRecency,
	}
}

// Queue returns the modules still awaiting a decision.
func (s *Session) Queue() []*Module {
	return s.queue
}

func (s *Session) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Session) requeue(m *Module) {
	s.queue = append([]*Module{m}, s.queue...)
}

func (s *Session) question(m *Module) string {
	verb := "Update"
	if m.Changelog.Resolved() {
		verb = "So, update"
	}
	where := "in package.json"
	if s.Global {
		where = "globally"
	}
	return fmt.Sprintf("%s %q %s from %s to %s?", verb, m.Name, where, m.From, s.Presenter.ColorizeDiff(m.From, m.To))
}

// Run asks about every queued module until the queue is drained or the
// developer finishes early. Ignore list changes are saved once the loop
// ends.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	for len(s.queue) > 0 && !result.Finished {
		m := s.queue[0]
		s.queue = s.queue[1:]

		s.Presenter.Printf("\n")
		s.noticeRecency(ctx, m)

		versions := s.Enricher.Versions(ctx, m.Name)
		choices, cursor := decisionChoices(m, len(versions) > 0)
		answer, err := s.Prompter.Select(ctx, s.question(m), choices, cursor)
		if err != nil {
			return result, err
		}

		log.Debug().Str("module", m.Name).Str("answer", answer).Msg("Decision made")

		switch answer {
		case choiceYes:
			s.accept(m, result)

		case choiceNo:

		case choiceSpecific:
			spec, err := s.askSpecificVersion(ctx, m, versions)
			if err != nil {
				return result, err
			}
			accepted := *m
			accepted.To = spec
			s.accept(&accepted, result)

		case choiceChangelog:
			s.requeue(m)
			s.showChangelog(ctx, m)

		case choiceHomepage:
			s.requeue(m)
			s.showHomepage(ctx, m)

		case choiceIgnore:
			versions, reason, err := AskIgnoreFields(ctx, s.Prompter, s.Presenter, IgnoreEverything)
			if err != nil {
				return result, err
			}
			s.Ignore.Set(m.Name, versions, reason)
			result.Ignored = append(result.Ignored, m)

		case choiceFinish:
			s.requeue(m)
			result.Finished = true
		}
	}

	result.Remaining = s.queue
	s.Presenter.Printf("\n")

	if err := s.Ignore.Save(); err != nil {
		return result, err
	}
	return result, nil
}

func (s *Session) accept(m *Module, result *Result) {
	if !s.Manifest.SetVersion(m.Name, m.To) {
		log.Warn().Str("module", m.Name).Msg("Module is not declared in the manifest")
	}
	s.Ignore.Unset(m.Name)
	result.Updated = append(result.Updated, m)
}

func (s *Session) open(url string) {
	s.Presenter.Printf("Opening %s...\n", s.Presenter.Strong(url))
	if s.Browser == nil {
		return
	}
	if err := s.Browser.Open(url); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Failed to open browser")
	}
}

func (s *Session) showChangelog(ctx context.Context, m *Module) {
	if !m.Changelog.Resolved() {
		s.Presenter.Printf("Trying to find changelog URL...\n")
		m.Changelog = resolvedLink(s.Enricher.Changelog(ctx, m.Name))
	}

	if m.Changelog.State == Found {
		s.open(m.Changelog.URL)
		return
	}
	s.Presenter.Printf("Sorry, we haven't found any changelog URL for %s module.\n"+
		"It would be great if you could fill an issue about this here: %s\n"+
		"Thanks a lot!\n", s.Presenter.Strong(m.Name), s.Presenter.Strong(s.BugsURL))
}

func (s *Session) showHomepage(ctx context.Context, m *Module) {
	if !m.Homepage.Resolved() {
		s.Presenter.Printf("Trying to find homepage URL...\n")
		m.Homepage = resolvedLink(s.Enricher.Homepage(ctx, m.Name))
	}

	if m.Homepage.State == Found {
		s.open(m.Homepage.URL)
		return
	}
	s.Presenter.Printf("Sorry, there is no info about homepage URL in the %s's package.json\n", s.Presenter.Strong(m.Name))
}
