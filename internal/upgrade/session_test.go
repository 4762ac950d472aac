package upgrade

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mxcd/npm-upgrade/internal/filter"
	"github.com/mxcd/npm-upgrade/internal/ignore"
	"github.com/mxcd/npm-upgrade/internal/prompt"
)

type fakeManifest map[string]string

func (m fakeManifest) SetVersion(name, version string) bool {
	if _, ok := m[name]; !ok {
		return false
	}
	m[name] = version
	return true
}

type fakePresenter struct {
	out strings.Builder
}

func (p *fakePresenter) Printf(format string, args ...any) { fmt.Fprintf(&p.out, format, args...) }
func (p *fakePresenter) Strong(s string) string            { return s }
func (p *fakePresenter) Attention(s string) string         { return s }
func (p *fakePresenter) Success(s string) string           { return s }
func (p *fakePresenter) ColorizeDiff(_, to string) string  { return to }

type fakeBrowser struct {
	opened []string
}

func (b *fakeBrowser) Open(url string) error {
	b.opened = append(b.opened, url)
	return nil
}

type fakeEnricher struct {
	changelogs     map[string]string
	homepages      map[string]string
	versions       map[string][]string
	published      map[string]time.Time
	changelogCalls int
	homepageCalls  int
}

func (e *fakeEnricher) Changelog(_ context.Context, name string) string {
	e.changelogCalls++
	return e.changelogs[name]
}

func (e *fakeEnricher) Homepage(_ context.Context, name string) string {
	e.homepageCalls++
	return e.homepages[name]
}

func (e *fakeEnricher) Versions(_ context.Context, name string) []string {
	return e.versions[name]
}

func (e *fakeEnricher) PublishedAt(_ context.Context, name, version string) (time.Time, bool) {
	t, ok := e.published[name+"@"+version]
	return t, ok
}

type fixture struct {
	session   *Session
	manifest  fakeManifest
	store     *ignore.Store
	prompter  *prompt.Scripted
	presenter *fakePresenter
	browser   *fakeBrowser
	enricher  *fakeEnricher
	dir       string
}

func newFixture(t *testing.T, modules []*Module, answers ...string) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		manifest:  fakeManifest{},
		store:     ignore.Load(dir),
		prompter:  prompt.NewScripted(answers...),
		presenter: &fakePresenter{},
		browser:   &fakeBrowser{},
		enricher:  &fakeEnricher{},
		dir:       dir,
	}
	for _, m := range modules {
		f.manifest[m.Name] = m.From
	}
	f.session = NewSession(modules)
	f.session.Manifest = f.manifest
	f.session.Ignore = f.store
	f.session.Prompter = f.prompter
	f.session.Presenter = f.presenter
	f.session.Browser = f.browser
	f.session.Enricher = f.enricher
	f.session.BugsURL = "https://example.com/issues"
	return f
}

func mod(name, from, to string) *Module {
	return &Module{Name: name, From: from, To: to, Latest: strings.TrimLeft(to, "^~")}
}

func names(modules []*Module) []string {
	out := []string{}
	for _, m := range modules {
		out = append(out, m.Name)
	}
	return out
}

func TestRunDecisionSequence(t *testing.T) {
	modules := []*Module{
		mod("a", "^1.0.0", "^2.0.0"),
		mod("b", "^1.0.0", "^2.0.0"),
		mod("c", "^1.0.0", "^2.0.0"),
		mod("d", "^1.0.0", "^2.0.0"),
	}
	f := newFixture(t, modules, "yes", "no", "ignore", "*", "r", "finish")

	result, err := f.session.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if diff := cmp.Diff([]string{"a"}, names(result.Updated)); diff != "" {
		t.Errorf("updated mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"c"}, names(result.Ignored)); diff != "" {
		t.Errorf("ignored mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"d"}, names(result.Remaining)); diff != "" {
		t.Errorf("remaining mismatch (-want +got):\n%s", diff)
	}
	if !result.Finished {
		t.Error("expected session to be finished")
	}

	wantManifest := fakeManifest{"a": "^2.0.0", "b": "^1.0.0", "c": "^1.0.0", "d": "^1.0.0"}
	if diff := cmp.Diff(wantManifest, f.manifest); diff != "" {
		t.Errorf("manifest mismatch (-want +got):\n%s", diff)
	}

	reloaded := ignore.Load(f.dir)
	if diff := cmp.Diff([]string{"c"}, reloaded.Names()); diff != "" {
		t.Errorf("persisted ignore list mismatch (-want +got):\n%s", diff)
	}
	entry, _ := reloaded.Get("c")
	if entry.Versions != "*" || entry.Reason != "r" {
		t.Errorf("entry = %+v, want versions * and reason r", entry)
	}
	if len(f.prompter.Answers) != 0 {
		t.Errorf("unused answers: %v", f.prompter.Answers)
	}
}

func TestFinishKeepsCurrentModuleQueued(t *testing.T) {
	modules := []*Module{
		mod("a", "^1.0.0", "^2.0.0"),
		mod("b", "^1.0.0", "^2.0.0"),
		mod("c", "^1.0.0", "^2.0.0"),
	}
	f := newFixture(t, modules, "finish")

	result, err := f.session.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, names(result.Remaining)); diff != "" {
		t.Errorf("remaining mismatch (-want +got):\n%s", diff)
	}
	if len(result.Updated) != 0 || len(result.Ignored) != 0 {
		t.Errorf("expected no decisions, got updated %v and ignored %v", names(result.Updated), names(result.Ignored))
	}
}

func TestSpecificVersionUnknownCurrent(t *testing.T) {
	f := newFixture(t, []*Module{mod("x", "^1.1.0", "^2.0.0")}, "specific-version", "", "")
	f.enricher.versions = map[string][]string{"x": {"2.0.0", "1.0.0", "1.5.0"}}

	result, err := f.session.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := f.prompter.Asked[1].DefaultIndex; got != 0 {
		t.Errorf("version cursor = %d, want 0", got)
	}
	if len(result.Updated) != 1 || result.Updated[0].To != "^1.0.0" {
		t.Errorf("updated = %+v", result.Updated)
	}
}

func TestRunAcceptClearsIgnoreEntry(t *testing.T) {
	f := newFixture(t, []*Module{mod("a", "1.0.0", "2.0.0")}, "yes")
	f.store.Set("a", "<2", "old")
	if err := f.store.Save(); err != nil {
		t.Fatal(err)
	}

	if _, err := f.session.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.dir, ignore.FileName)); !os.IsNotExist(err) {
		t.Errorf("expected ignore file to be removed, stat error = %v", err)
	}
}

func TestShowChangelogRequeuesSameModule(t *testing.T) {
	modules := []*Module{mod("x", "1.0.0", "2.0.0"), mod("y", "1.0.0", "2.0.0")}
	f := newFixture(t, modules, "changelog", "changelog", "changelog", "no", "no")
	f.enricher.changelogs = map[string]string{"x": "https://example.com/x/CHANGELOG.md"}

	if _, err := f.session.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var asked []string
	for _, a := range f.prompter.Asked {
		asked = append(asked, a.Message)
	}
	want := []string{
		`Update "x" in package.json from 1.0.0 to 2.0.0?`,
		`So, update "x" in package.json from 1.0.0 to 2.0.0?`,
		`So, update "x" in package.json from 1.0.0 to 2.0.0?`,
		`So, update "x" in package.json from 1.0.0 to 2.0.0?`,
		`Update "y" in package.json from 1.0.0 to 2.0.0?`,
	}
	if diff := cmp.Diff(want, asked); diff != "" {
		t.Errorf("questions mismatch (-want +got):\n%s", diff)
	}
	if f.enricher.changelogCalls != 1 {
		t.Errorf("changelog resolved %d times, want 1", f.enricher.changelogCalls)
	}
	if len(f.browser.opened) != 3 {
		t.Errorf("browser opened %d times, want 3", len(f.browser.opened))
	}
}

func TestMissingChangelogOffersHomepage(t *testing.T) {
	f := newFixture(t, []*Module{mod("x", "1.0.0", "2.0.0")}, "changelog", "", "")
	f.enricher.homepages = map[string]string{"x": "https://x.dev"}

	result, err := f.session.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	second := f.prompter.Asked[1]
	if prompt.IndexOf(second.Choices, choiceChangelog) != -1 {
		t.Error("changelog offered after it was found missing")
	}
	if got := second.Choices[second.DefaultIndex].Value; got != choiceHomepage {
		t.Errorf("default choice = %q, want %q", got, choiceHomepage)
	}
	if diff := cmp.Diff([]string{"https://x.dev"}, f.browser.opened); diff != "" {
		t.Errorf("opened mismatch (-want +got):\n%s", diff)
	}
	if third := f.prompter.Asked[2]; third.DefaultIndex != 0 {
		t.Errorf("default index after homepage lookup = %d, want 0", third.DefaultIndex)
	}
	if diff := cmp.Diff([]string{"x"}, names(result.Updated)); diff != "" {
		t.Errorf("updated mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(f.presenter.out.String(), "https://example.com/issues") {
		t.Errorf("missing report hint in output:\n%s", f.presenter.out.String())
	}
}

func TestSpecificVersion(t *testing.T) {
	f := newFixture(t, []*Module{mod("x", "^1.0.0", "^2.0.0")}, "specific-version", "1.5.0", "")
	f.enricher.versions = map[string][]string{"x": {"2.0.0", "1.0.0", "1.5.0"}}

	result, err := f.session.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	pick := f.prompter.Asked[1]
	if diff := cmp.Diff(prompt.Strings([]string{"1.0.0", "1.5.0", "2.0.0"}), pick.Choices); diff != "" {
		t.Errorf("version choices mismatch (-want +got):\n%s", diff)
	}
	if pick.DefaultIndex != 0 {
		t.Errorf("version cursor = %d, want 0", pick.DefaultIndex)
	}
	if got := f.prompter.Asked[2].DefaultIndex; got != 2 {
		t.Errorf("range cursor = %d, want 2", got)
	}
	if f.manifest["x"] != "^1.5.0" {
		t.Errorf("manifest version = %q, want ^1.5.0", f.manifest["x"])
	}
	if len(result.Updated) != 1 || result.Updated[0].To != "^1.5.0" {
		t.Errorf("updated = %+v", result.Updated)
	}
}

func TestIgnoreRepromptsOnInvalidRange(t *testing.T) {
	f := newFixture(t, []*Module{mod("x", "1.0.0", "2.0.0")}, "ignore", "abc", "~2", "because")

	if _, err := f.session.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	entry, ok := ignore.Load(f.dir).Get("x")
	if !ok || entry.Versions != "~2" || entry.Reason != "because" {
		t.Errorf("entry = %+v, %v", entry, ok)
	}
	if !strings.Contains(f.presenter.out.String(), "Input valid semver version range") {
		t.Error("expected validation message")
	}
	if f.prompter.Asked[1].Default != IgnoreEverything {
		t.Errorf("range default = %q, want %q", f.prompter.Asked[1].Default, IgnoreEverything)
	}
}

func TestRecencyNotice(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, []*Module{mod("x", "1.0.0", "2.0.0")}, "no")
	f.session.Now = func() time.Time { return now }
	f.enricher.published = map[string]time.Time{"x@2.0.0": now.Add(-5 * time.Hour)}

	if _, err := f.session.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out := f.presenter.out.String(); !strings.Contains(out, "Caution: x@2.0.0 was published 5 hours ago") {
		t.Errorf("missing caution notice:\n%s", out)
	}
}

func TestDecisionChoices(t *testing.T) {
	tests := []struct {
		name        string
		module      Module
		hasVersions bool
		want        []string
		wantDefault string
	}{
		{
			name:        "unresolved",
			want:        []string{choiceYes, choiceNo, choiceChangelog, choiceIgnore, choiceFinish},
			wantDefault: choiceYes,
		},
		{
			name:        "with versions",
			hasVersions: true,
			want:        []string{choiceYes, choiceNo, choiceSpecific, choiceChangelog, choiceIgnore, choiceFinish},
			wantDefault: choiceYes,
		},
		{
			name:        "changelog found",
			module:      Module{Changelog: Link{State: Found, URL: "u"}},
			want:        []string{choiceYes, choiceNo, choiceChangelog, choiceIgnore, choiceFinish},
			wantDefault: choiceYes,
		},
		{
			name:        "changelog absent",
			module:      Module{Changelog: Link{State: Absent}},
			want:        []string{choiceYes, choiceNo, choiceHomepage, choiceIgnore, choiceFinish},
			wantDefault: choiceHomepage,
		},
		{
			name:        "homepage found",
			module:      Module{Changelog: Link{State: Absent}, Homepage: Link{State: Found, URL: "u"}},
			want:        []string{choiceYes, choiceNo, choiceHomepage, choiceIgnore, choiceFinish},
			wantDefault: choiceYes,
		},
		{
			name:        "both absent",
			module:      Module{Changelog: Link{State: Absent}, Homepage: Link{State: Absent}},
			want:        []string{choiceYes, choiceNo, choiceIgnore, choiceFinish},
			wantDefault: choiceYes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			choices, cursor := decisionChoices(&tt.module, tt.hasVersions)
			var got []string
			for _, c := range choices {
				got = append(got, c.Value)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("choices mismatch (-want +got):\n%s", diff)
			}
			if choices[cursor].Value != tt.wantDefault {
				t.Errorf("default = %q, want %q", choices[cursor].Value, tt.wantDefault)
			}
		})
	}
}

func TestFilteredModulesEnterQueue(t *testing.T) {
	keep := filter.Compile("!eslint*")
	var modules []*Module
	for _, m := range []*Module{
		mod("eslint", "1.0.0", "2.0.0"),
		mod("eslint-plugin-foo", "1.0.0", "2.0.0"),
		mod("lodash", "4.0.0", "5.0.0"),
	} {
		if keep(m.Name) {
			modules = append(modules, m)
		}
	}

	session := NewSession(modules)
	if diff := cmp.Diff([]string{"lodash"}, names(session.Queue())); diff != "" {
		t.Errorf("queue mismatch (-want +got):\n%s", diff)
	}
}

func TestPartition(t *testing.T) {
	store := ignore.Load(t.TempDir())
	store.Set("a", "<3", "")
	store.Set("b", "1.x", "")

	modules := []*Module{
		{Name: "a", Latest: "2.0.0"},
		{Name: "b", Latest: "2.0.0"},
		{Name: "c", Latest: "2.0.0"},
	}
	ignored, active := Partition(modules, store)

	if diff := cmp.Diff([]string{"a"}, names(ignored)); diff != "" {
		t.Errorf("ignored mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b", "c"}, names(active)); diff != "" {
		t.Errorf("active mismatch (-want +got):\n%s", diff)
	}
}
