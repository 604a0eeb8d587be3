package integration

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/danieljhkim/bulkren/internal/clock"
	"github.com/danieljhkim/bulkren/internal/config"
	"github.com/danieljhkim/bulkren/internal/engine"
	"github.com/danieljhkim/bulkren/internal/fsops"
	"github.com/danieljhkim/bulkren/internal/hash"
	"github.com/danieljhkim/bulkren/internal/journal"
)

// testEnv holds a workspace directory and a bulkren root with an on-disk journal.
type testEnv struct {
	t     *testing.T
	work  string
	paths *config.Paths
	clock *clock.FakeClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	paths := config.PathsAt(t.TempDir())
	if err := paths.EnsureDirectories(); err != nil {
		t.Fatalf("failed to create bulkren root: %v", err)
	}

	clk := clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	clk.SetStep(time.Second)

	return &testEnv{t: t, work: t.TempDir(), paths: paths, clock: clk}
}

// open starts a "process": an engine over a freshly opened journal. The
// returned func closes the journal.
func (env *testEnv) open(fs fsops.FS) (*engine.Engine, func()) {
	env.t.Helper()
	if fs == nil {
		fs = fsops.NewRealFS()
	}
	store, err := journal.Open(env.paths.Journal, journal.WithClock(env.clock))
	if err != nil {
		env.t.Fatalf("failed to open journal: %v", err)
	}
	eng := engine.New(fs, hash.NewSHA256Hasher(), env.clock, store, nil)
	return eng, func() {
		if err := store.Close(); err != nil {
			env.t.Errorf("failed to close journal: %v", err)
		}
	}
}

func (env *testEnv) path(rel string) string {
	return filepath.Join(env.work, filepath.FromSlash(rel))
}

// write creates rel with content, creating parent directories.
func (env *testEnv) write(rel, content string) {
	env.t.Helper()
	p := env.path(rel)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		env.t.Fatalf("failed to create parent of %s: %v", rel, err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		env.t.Fatalf("failed to write %s: %v", rel, err)
	}
}

// snapshot maps every file under the workspace to its content. Directories
// appear with a trailing slash.
func (env *testEnv) snapshot() map[string]string {
	env.t.Helper()
	out := make(map[string]string)
	err := filepath.WalkDir(env.work, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == env.work {
			return nil
		}
		rel, _ := filepath.Rel(env.work, p)
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			out[rel+"/"] = ""
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out[rel] = string(data)
		return nil
	})
	if err != nil {
		env.t.Fatalf("failed to snapshot workspace: %v", err)
	}
	return out
}

func assertSnapshot(t *testing.T, got, want map[string]string) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("workspace has %d entries, want %d:\n got: %s\nwant: %s", len(got), len(want), keys(got), keys(want))
		return
	}
	for k, v := range want {
		if gv, ok := got[k]; !ok || gv != v {
			t.Errorf("entry %s = %q (present %v), want %q", k, gv, ok, v)
		}
	}
}

func keys(m map[string]string) string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
