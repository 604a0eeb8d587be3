package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/bulkren/internal/clock"
	"github.com/danieljhkim/bulkren/internal/fsops"
	"github.com/danieljhkim/bulkren/internal/hash"
	"github.com/danieljhkim/bulkren/internal/journal"
	"github.com/danieljhkim/bulkren/internal/rename"
)

type testEnv struct {
	dir     string
	journal *journal.BadgerStore
	clock   *clock.FakeClock
	engine  *Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clk := clock.NewFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	clk.SetStep(time.Second)

	store, err := journal.Open("", journal.WithClock(clk))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	env := &testEnv{dir: t.TempDir(), journal: store, clock: clk}
	env.engine = env.withFS(fsops.NewRealFS())
	return env
}

// withFS returns an engine over the same journal but a different filesystem.
func (env *testEnv) withFS(fs fsops.FS) *Engine {
	return New(fs, hash.NewSHA256Hasher(), env.clock, env.journal, nil)
}

func (env *testEnv) path(name string) string {
	return filepath.Join(env.dir, name)
}

func (env *testEnv) write(t *testing.T, name, content string) string {
	t.Helper()
	p := env.path(name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func (env *testEnv) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(env.path(name))
	require.NoError(t, err)
	return string(data)
}

func (env *testEnv) missing(t *testing.T, name string) {
	t.Helper()
	_, err := os.Lstat(env.path(name))
	assert.True(t, os.IsNotExist(err), "%s should not exist", name)
}

// listing returns the names in the test directory.
func (env *testEnv) listing(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(env.dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func (env *testEnv) pair(src, dst string) rename.Pair {
	return rename.Pair{Source: env.path(src), Target: env.path(dst)}
}
