package upgrade

import "strings"

// CompanionPrefix marks packages that only carry type declarations for the
// package named by the rest of their name.
const CompanionPrefix = "@types/"

// BaseName returns the package a companion belongs to, or "" when name is
// not a companion.
func BaseName(name string) string {
	if !strings.HasPrefix(name, CompanionPrefix) || len(name) == len(CompanionPrefix) {
		return ""
	}
	base := strings.TrimPrefix(name, CompanionPrefix)
	// @types/babel__core declares the scoped package @babel/core.
	if scope, pkg, ok := strings.Cut(base, "__"); ok && scope != "" && pkg != "" {
		return "@" + scope + "/" + pkg
	}
	return base
}

// Reorder moves every companion entry right below its base package. Entries
// whose base package is absent keep their position.
func Reorder(modules []*Module) {
	processed := map[*Module]bool{}

	for i := 0; i < len(modules); i++ {
		module := modules[i]
		if processed[module] {
			continue
		}

		base := BaseName(module.Name)
		if base == "" {
			continue
		}

		baseIndex := indexOf(modules, base)
		if baseIndex == -1 || i == baseIndex+1 {
			continue
		}

		if baseIndex > i {
			// Moving forward shifts the base one slot to the left.
			copy(modules[i:baseIndex], modules[i+1:baseIndex+1])
			modules[baseIndex] = module
			processed[module] = true
			i--
		} else {
			copy(modules[baseIndex+2:i+1], modules[baseIndex+1:i])
			modules[baseIndex+1] = module
		}
	}
}

func indexOf(modules []*Module, name string) int {
	for i, m := range modules {
		if m.Name == name {
			return i
		}
	}
	return -1
}
