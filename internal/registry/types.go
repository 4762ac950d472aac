package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Package is the subset of an npm registry package document (packument)
// used to decide on and describe upgrades.
type Package struct {
	Name       string            `json:"name"`
	DistTags   map[string]string `json:"dist-tags"`
	Versions   VersionList       `json:"versions"`
	Time       map[string]string `json:"time"`
	Homepage   string            `json:"homepage"`
	URL        string            `json:"url"`
	Repository Repository        `json:"repository"`
	Changelog  string            `json:"changelog"`
}

// Latest returns the version tagged "latest".
func (p *Package) Latest() string {
	return p.DistTags["latest"]
}

// PublishedAt returns the publish time of version.
func (p *Package) PublishedAt(version string) (time.Time, bool) {
	raw, ok := p.Time[version]
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// VersionList holds the keys of the "versions" object in document order,
// which the registry keeps in publish order.
type VersionList []string

func (l *VersionList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	token, err := dec.Token()
	if err != nil {
		return err
	}
	if token == nil {
		*l = nil
		return nil
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("versions: expected object, got %v", token)
	}

	var versions VersionList
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return err
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return err
		}
		versions = append(versions, key.(string))
	}
	*l = versions
	return nil
}

// Repository accepts both the string and the {type, url} forms.
type Repository struct {
	Type string `json:"type,omitempty"`
	URL  string `json:"url,omitempty"`
}

func (r *Repository) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.URL = s
		return nil
	}
	type plain Repository
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return nil
	}
	*r = Repository(p)
	return nil
}
