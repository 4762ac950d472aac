package upgrade

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func modulesNamed(list ...string) []*Module {
	modules := make([]*Module, len(list))
	for i, n := range list {
		modules[i] = &Module{Name: n}
	}
	return modules
}

func TestBaseName(t *testing.T) {
	tests := map[string]string{
		"@types/node":        "node",
		"@types/babel__core": "@babel/core",
		"@types/":            "",
		"lodash":             "",
		"@babel/core":        "",
	}
	for name, want := range tests {
		if got := BaseName(name); got != want {
			t.Errorf("BaseName(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestReorder(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "companion before base",
			input: []string{"@types/lodash", "a", "lodash", "b"},
			want:  []string{"a", "lodash", "@types/lodash", "b"},
		},
		{
			name:  "companion after base",
			input: []string{"lodash", "a", "b", "@types/lodash"},
			want:  []string{"lodash", "@types/lodash", "a", "b"},
		},
		{
			name:  "already adjacent",
			input: []string{"react", "@types/react", "x"},
			want:  []string{"react", "@types/react", "x"},
		},
		{
			name:  "base missing",
			input: []string{"@types/node", "a"},
			want:  []string{"@types/node", "a"},
		},
		{
			name:  "scoped base",
			input: []string{"@types/babel__core", "x", "@babel/core"},
			want:  []string{"x", "@babel/core", "@types/babel__core"},
		},
		{
			name:  "several pairs",
			input: []string{"@types/a", "@types/b", "b", "c", "a"},
			want:  []string{"b", "@types/b", "c", "a", "@types/a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			modules := modulesNamed(tt.input...)
			Reorder(modules)
			if diff := cmp.Diff(tt.want, names(modules)); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}

			Reorder(modules)
			if diff := cmp.Diff(tt.want, names(modules)); diff != "" {
				t.Errorf("second pass changed order (-want +got):\n%s", diff)
			}

			for i, m := range modules {
				base := BaseName(m.Name)
				if base == "" {
					continue
				}
				if j := indexOf(modules, base); j != -1 && j != i-1 {
					t.Errorf("%s at %d, base %s at %d", m.Name, i, base, j)
				}
			}
		})
	}
}
