package manifest

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Runner executes an external command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands through os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = os.Stderr
	return cmd.Output()
}

// LoadGlobal builds a manifest from the globally installed npm packages.
// All of them are reported as production dependencies.
func LoadGlobal(ctx context.Context, run Runner) (*Manifest, error) {
	out, err := run(ctx, "npm", "ls", "--global", "--depth=0", "--json")
	if err != nil && len(out) == 0 {
		return nil, &ReadError{Path: "global packages", Err: err}
	}

	if !gjson.ValidBytes(out) {
		return nil, &ReadError{Path: "global packages", Err: fmt.Errorf("failed to parse npm output")}
	}

	versions := map[string]string{}
	gjson.GetBytes(out, "dependencies").ForEach(func(key, value gjson.Result) bool {
		if version := value.Get("version").String(); version != "" {
			versions[key.String()] = version
		}
		return true
	})
	names := make([]string, 0, len(versions))
	for name := range versions {
		names = append(names, name)
	}
	sort.Strings(names)

	raw := []byte(`{}`)
	for _, name := range names {
		raw, err = sjson.SetBytes(raw, pathKey(DepsGroups[0].Field)+"."+pathKey(name), versions[name])
		if err != nil {
			return nil, &ReadError{Path: "global packages", Err: err}
		}
	}

	log.Debug().Int("packages", len(names)).Msg("Loaded global packages")
	return &Manifest{Path: "global", Global: true, raw: raw}, nil
}

// InstallGlobal installs the given name@version specs globally.
func InstallGlobal(ctx context.Context, run Runner, specs []string) error {
	args := append([]string{"install", "--global"}, specs...)
	log.Debug().Strs("args", args).Msg("Running npm")
	if _, err := run(ctx, "npm", args...); err != nil {
		return fmt.Errorf("npm install --global failed: %w", err)
	}
	return nil
}
