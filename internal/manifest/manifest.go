// Package manifest reads and rewrites the dependency sections of package.json.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// FileName is the manifest looked up in the project directory.
const FileName = "package.json"

// DepsGroup describes one dependency section of the manifest.
type DepsGroup struct {
	Name  string // flag name, e.g. "production"
	Field string // manifest field, e.g. "dependencies"
	Flag  string // short flag alias
}

// DepsGroups lists the sections in the order they are searched.
var DepsGroups = []DepsGroup{
	{Name: "production", Field: "dependencies", Flag: "p"},
	{Name: "development", Field: "devDependencies", Flag: "d"},
	{Name: "optional", Field: "optionalDependencies", Flag: "o"},
}

// Dependency is a declared module and its version specifier.
type Dependency struct {
	Name    string
	Version string
	Group   string
}

// Manifest is a loaded package.json. Versions are rewritten in place, so
// everything else in the file is saved byte for byte.
type Manifest struct {
	Path   string
	Global bool
	raw    []byte
}

// Load reads the manifest at path.
func Load(path string) (*Manifest, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, &ReadError{Path: absPath, Err: err}
	}

	m, err := Parse(data)
	if err != nil {
		return nil, &ReadError{Path: absPath, Err: err}
	}
	m.Path = absPath

	log.Debug().Str("path", absPath).Msg("Loaded manifest")
	return m, nil
}

// Parse builds a manifest from raw package.json content.
func Parse(data []byte) (*Manifest, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("failed to parse JSON: invalid document")
	}
	if !gjson.ParseBytes(data).IsObject() {
		return nil, fmt.Errorf("failed to parse JSON: top level value is not an object")
	}
	return &Manifest{raw: append([]byte(nil), data...)}, nil
}

// pathKey escapes name so gjson and sjson treat it as one object key.
// Module names like "lodash.merge" or "@types/node" would otherwise be
// read as nested paths or modifiers.
func pathKey(name string) string {
	var b strings.Builder
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (m *Manifest) section(group DepsGroup) gjson.Result {
	return gjson.GetBytes(m.raw, pathKey(group.Field))
}

// Dependencies returns the modules declared in the given groups that pass
// keep, in manifest order. A module declared in several groups is
// reported once, for the first group.
func (m *Manifest) Dependencies(groups []DepsGroup, keep func(string) bool) []Dependency {
	seen := map[string]bool{}
	var deps []Dependency

	for _, group := range groups {
		section := m.section(group)
		if !section.IsObject() {
			continue
		}
		section.ForEach(func(key, value gjson.Result) bool {
			name := key.String()
			if seen[name] || (keep != nil && !keep(name)) {
				return true
			}
			if value.Type != gjson.String {
				log.Warn().Str("module", name).Str("group", group.Field).Msg("Skipping dependency with non-string version")
				return true
			}
			seen[name] = true
			deps = append(deps, Dependency{Name: name, Version: value.Str, Group: group.Field})
			return true
		})
	}
	return deps
}

// Names returns the module names of a single group in manifest order.
func (m *Manifest) Names(group DepsGroup) []string {
	section := m.section(group)
	if !section.IsObject() {
		return nil
	}
	var names []string
	section.ForEach(func(key, _ gjson.Result) bool {
		names = append(names, key.String())
		return true
	})
	return names
}

// versionPath returns the path of the first non-empty string declaration
// of name.
func (m *Manifest) versionPath(name string) (string, gjson.Result) {
	for _, group := range DepsGroups {
		path := pathKey(group.Field) + "." + pathKey(name)
		if v := gjson.GetBytes(m.raw, path); v.Type == gjson.String && v.Str != "" {
			return path, v
		}
	}
	return "", gjson.Result{}
}

// Version returns the declared version specifier of name.
func (m *Manifest) Version(name string) (string, bool) {
	path, v := m.versionPath(name)
	if path == "" {
		return "", false
	}
	return v.Str, true
}

// SetVersion writes version into whichever group declares name. It
// reports false when no group does.
func (m *Manifest) SetVersion(name, version string) bool {
	path, _ := m.versionPath(name)
	if path == "" {
		return false
	}
	raw, err := sjson.SetBytes(m.raw, path, version)
	if err != nil {
		log.Error().Err(err).Str("module", name).Msg("Failed to set version")
		return false
	}
	m.raw = raw
	return true
}

// Bytes returns the current manifest content.
func (m *Manifest) Bytes() []byte {
	return append([]byte(nil), m.raw...)
}

// Save writes the manifest back to Path.
func (m *Manifest) Save() error {
	if m.Global {
		return fmt.Errorf("global package list cannot be saved")
	}
	if err := os.WriteFile(m.Path, m.raw, 0o644); err != nil {
		return &WriteError{Path: m.Path, Err: err}
	}
	log.Debug().Str("path", m.Path).Msg("Saved manifest")
	return nil
}
