// Package ignore persists the modules a developer chose not to upgrade.
package ignore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog/log"
)

// FileName is the project relative location of the ignore list.
const FileName = ".npm-upgrade.json"

// Entry silences upgrade prompts for a module while its latest version
// stays within Versions.
type Entry struct {
	Versions string `json:"versions,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

func (e Entry) empty() bool {
	return e.Versions == "" && e.Reason == ""
}

// Store keeps the entries read from disk apart from the live, mutable
// entries so Save can tell whether anything changed.
type Store struct {
	path           string
	loadedSnapshot map[string]Entry
	liveValues     map[string]Entry
}

// Load reads the ignore list of the project in dir. A missing or
// unreadable file yields an empty store.
func Load(dir string) *Store {
	path := filepath.Join(dir, FileName)
	s := &Store{
		path:           path,
		loadedSnapshot: map[string]Entry{},
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Trace().Str("path", path).Msg("No ignore list found")
	case err != nil:
		log.Warn().Err(err).Str("path", path).Msg("Failed to read ignore list, starting empty")
	default:
		if err := json.Unmarshal(data, &s.loadedSnapshot); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to parse ignore list, starting empty")
			s.loadedSnapshot = map[string]Entry{}
		}
	}

	s.liveValues = maps.Clone(s.loadedSnapshot)
	if s.liveValues == nil {
		s.liveValues = map[string]Entry{}
	}
	log.Debug().Str("path", path).Int("entries", len(s.liveValues)).Msg("Loaded ignore list")
	return s
}

// Get returns the entry for name.
func (s *Store) Get(name string) (Entry, bool) {
	entry, ok := s.liveValues[name]
	return entry, ok
}

// Set adds or replaces the entry for name.
func (s *Store) Set(name, versions, reason string) {
	s.liveValues[name] = Entry{Versions: versions, Reason: reason}
}

// Unset removes the entry for name, if any.
func (s *Store) Unset(name string) {
	delete(s.liveValues, name)
}

// Names returns the ignored module names in alphabetical order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.liveValues))
	for name := range s.liveValues {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	return len(s.liveValues)
}

// IsIgnored reports whether version of name falls into the ignored range.
func (s *Store) IsIgnored(name, version string) bool {
	entry, ok := s.liveValues[name]
	if !ok {
		return false
	}
	return Satisfies(version, entry.Versions)
}

// Save writes the live entries when they differ from what was loaded.
// Empty entries are dropped first and an empty result removes the file.
func (s *Store) Save() error {
	data := clean(s.liveValues)
	if maps.Equal(data, s.loadedSnapshot) {
		log.Trace().Str("path", s.path).Msg("Ignore list unchanged")
		return nil
	}

	if len(data) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("unable to update npm-upgrade config file: %w", err)
		}
		log.Debug().Str("path", s.path).Msg("Removed empty ignore list")
		s.loadedSnapshot = data
		return nil
	}

	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to update npm-upgrade config file: %w", err)
	}
	if err := os.WriteFile(s.path, content, 0o644); err != nil {
		return fmt.Errorf("unable to update npm-upgrade config file: %w", err)
	}

	log.Debug().Str("path", s.path).Int("entries", len(data)).Msg("Saved ignore list")
	s.loadedSnapshot = data
	return nil
}

func clean(values map[string]Entry) map[string]Entry {
	cleaned := make(map[string]Entry, len(values))
	for name, entry := range values {
		if name == "" || entry.empty() {
			continue
		}
		cleaned[name] = entry
	}
	return cleaned
}

// ValidRange reports whether r parses as a semver range.
func ValidRange(r string) bool {
	if strings.TrimSpace(r) == "" {
		return false
	}
	_, err := semver.NewConstraint(r)
	return err == nil
}

// Satisfies reports whether version lies within versionRange. Unparsable
// input never satisfies.
func Satisfies(version, versionRange string) bool {
	constraint, err := semver.NewConstraint(versionRange)
	if err != nil {
		log.Debug().Err(err).Str("range", versionRange).Msg("Ignoring unparsable version range")
		return false
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return constraint.Check(v)
}
