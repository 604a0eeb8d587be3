package integration

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/danieljhkim/bulkren/internal/engine"
	"github.com/danieljhkim/bulkren/internal/fsops"
	"github.com/danieljhkim/bulkren/internal/journal"
	"github.com/danieljhkim/bulkren/internal/rename"
)

func TestRenameAndUndoAcrossProcesses(t *testing.T) {
	env := newTestEnv(t)
	env.write("docs/a.txt", "alpha")
	env.write("docs/sub/b.txt", "beta")
	env.write("src/x.go", "package x")
	env.write("notes.md", "# notes")
	env.write("archive/.keep", "")
	before := env.snapshot()

	pairs := []rename.Pair{
		{Source: env.path("docs"), Target: env.path("documents")},
		{Source: env.path("src/x.go"), Target: env.path("src/main.go")},
		{Source: env.path("notes.md"), Target: env.path("archive/notes.md")},
	}

	eng, closeJournal := env.open(nil)
	result, err := eng.Run(context.Background(), &engine.RunRequest{
		Pairs:    pairs,
		Mode:     rename.ModeError,
		Rollback: true,
		Verify:   true,
	})
	closeJournal()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Verified != len(pairs) {
		t.Errorf("verified %d pairs, want %d", result.Verified, len(pairs))
	}

	assertSnapshot(t, env.snapshot(), map[string]string{
		"documents/":          "",
		"documents/a.txt":     "alpha",
		"documents/sub/":      "",
		"documents/sub/b.txt": "beta",
		"src/":                "",
		"src/main.go":         "package x",
		"archive/":            "",
		"archive/.keep":       "",
		"archive/notes.md":    "# notes",
	})

	eng, closeJournal = env.open(nil)
	defer closeJournal()
	undo, err := eng.Undo(context.Background(), &engine.UndoRequest{})
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if undo.Entry.ID != result.EntryID {
		t.Errorf("undid %s, want %s", undo.Entry.ID, result.EntryID)
	}
	assertSnapshot(t, env.snapshot(), before)
}

func TestRotateManyFiles(t *testing.T) {
	const n = 12
	env := newTestEnv(t)

	var pairs []rename.Pair
	for i := 0; i < n; i++ {
		env.write(fmt.Sprintf("f%02d", i), fmt.Sprintf("content %d", i))
		pairs = append(pairs, rename.Pair{
			Source: env.path(fmt.Sprintf("f%02d", i)),
			Target: env.path(fmt.Sprintf("f%02d", (i+1)%n)),
		})
	}
	before := env.snapshot()

	eng, closeJournal := env.open(nil)
	defer closeJournal()

	if _, err := eng.Run(context.Background(), &engine.RunRequest{Pairs: pairs, Mode: rename.ModeError}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	after := env.snapshot()
	for i := 0; i < n; i++ {
		got := after[fmt.Sprintf("f%02d", (i+1)%n)]
		if want := fmt.Sprintf("content %d", i); got != want {
			t.Errorf("f%02d = %q, want %q", (i+1)%n, got, want)
		}
	}
	if len(after) != n {
		t.Errorf("workspace has %d entries after rotation, want %d: %s", len(after), n, keys(after))
	}

	if _, err := eng.Undo(context.Background(), &engine.UndoRequest{}); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	assertSnapshot(t, env.snapshot(), before)
}

func TestInterruptedRunRecoveredLater(t *testing.T) {
	env := newTestEnv(t)
	env.write("a", "A")
	env.write("b", "B")
	env.write("c", "C")
	before := env.snapshot()

	pairs := []rename.Pair{
		{Source: env.path("a"), Target: env.path("a2")},
		{Source: env.path("b"), Target: env.path("b2")},
		{Source: env.path("c"), Target: env.path("c2")},
	}

	faulty := fsops.NewFaultFS(nil)
	faulty.FailRenameTo(env.path("c2"), nil)

	eng, closeJournal := env.open(faulty)
	result, err := eng.Run(context.Background(), &engine.RunRequest{Pairs: pairs, Mode: rename.ModeError})
	closeJournal()

	if !errors.Is(err, fsops.ErrInjected) {
		t.Fatalf("Run() error = %v, want injected fault", err)
	}
	if result.Outcome != journal.OutcomeInterrupted {
		t.Fatalf("outcome = %s, want interrupted", result.Outcome)
	}
	if got := env.snapshot(); got["a2"] != "A" || got["b2"] != "B" {
		t.Errorf("committed pairs should stay in place, got %s", keys(got))
	}

	// A later process finds the partial run in the journal and reverses it.
	eng, closeJournal = env.open(nil)
	defer closeJournal()

	entry, err := eng.Show(context.Background(), "")
	if err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if entry.State != rename.NotYetReversible || entry.Outcome != journal.OutcomeInterrupted {
		t.Errorf("entry state = %s outcome = %s", entry.State, entry.Outcome)
	}

	if _, err := eng.Undo(context.Background(), &engine.UndoRequest{}); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	assertSnapshot(t, env.snapshot(), before)
}

func TestChangeNameModeStacksUnderscores(t *testing.T) {
	env := newTestEnv(t)
	env.write("in/a", "A")
	env.write("in/b", "B")
	env.write("out/t", "T")
	before := env.snapshot()

	eng, closeJournal := env.open(nil)
	defer closeJournal()

	result, err := eng.Run(context.Background(), &engine.RunRequest{
		Pairs: []rename.Pair{
			{Source: env.path("in/a"), Target: env.path("out/t")},
			{Source: env.path("in/b"), Target: env.path("out/t")},
		},
		Mode: rename.ModeChangeFileName,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := result.Plan.Items[1].Final; got != env.path("out/__t") {
		t.Errorf("predicted final = %s, want out/__t", got)
	}

	assertSnapshot(t, env.snapshot(), map[string]string{
		"in/":     "",
		"out/":    "",
		"out/t":   "T",
		"out/_t":  "A",
		"out/__t": "B",
	})

	if _, err := eng.Undo(context.Background(), &engine.UndoRequest{}); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	assertSnapshot(t, env.snapshot(), before)
}

func TestHistoryLimitAcrossProcesses(t *testing.T) {
	env := newTestEnv(t)
	env.write("v0", "x")

	for i := 0; i < 5; i++ {
		eng, closeJournal := env.open(nil)
		_, err := eng.Run(context.Background(), &engine.RunRequest{
			Pairs:        []rename.Pair{{Source: env.path(fmt.Sprintf("v%d", i)), Target: env.path(fmt.Sprintf("v%d", i+1))}},
			Mode:         rename.ModeError,
			HistoryLimit: 3,
		})
		closeJournal()
		if err != nil {
			t.Fatalf("run %d error = %v", i, err)
		}
	}

	eng, closeJournal := env.open(nil)
	defer closeJournal()

	history, err := eng.History(context.Background(), &engine.HistoryRequest{})
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history.Entries) != 3 {
		t.Fatalf("history has %d entries, want 3", len(history.Entries))
	}

	// Undo walks back through the kept runs only.
	for i := 0; i < 3; i++ {
		if _, err := eng.Undo(context.Background(), &engine.UndoRequest{}); err != nil {
			t.Fatalf("undo %d error = %v", i, err)
		}
	}
	if got := env.snapshot()["v2"]; got != "x" {
		t.Errorf("v2 = %q after undoing the kept runs, want x", got)
	}
	if _, err := eng.Undo(context.Background(), &engine.UndoRequest{}); !errors.Is(err, engine.ErrNothingToUndo) {
		t.Errorf("Undo() error = %v, want ErrNothingToUndo", err)
	}
}
