package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danieljhkim/bulkren/internal/config"
	"github.com/danieljhkim/bulkren/internal/engine"
	"github.com/danieljhkim/bulkren/internal/journal"
	"github.com/danieljhkim/bulkren/internal/planner"
)

func TestRunAndUndo(t *testing.T) {
	dir := setupTestEnv(t)
	a, b := filepath.Join(dir, "a"), filepath.Join(dir, "b")
	writeFile(t, a, "A")
	writeFile(t, b, "B")

	output, err := execute(t, "run", a, b, b, a)
	if err != nil {
		t.Fatalf("run error = %v\n%s", err, output)
	}
	if !strings.Contains(output, "Renamed 2 pairs") {
		t.Errorf("run output = %q", output)
	}
	if got := readFile(t, a); got != "B" {
		t.Errorf("after swap a = %q, want B", got)
	}

	output, err = execute(t, "undo")
	if err != nil {
		t.Fatalf("undo error = %v\n%s", err, output)
	}
	if !strings.Contains(output, "Undid run") {
		t.Errorf("undo output = %q", output)
	}
	if got := readFile(t, a); got != "A" {
		t.Errorf("after undo a = %q, want A", got)
	}

	output, err = execute(t, "undo")
	if err != nil {
		t.Fatalf("second undo error = %v", err)
	}
	if !strings.Contains(output, "Nothing to undo") {
		t.Errorf("second undo output = %q", output)
	}
}

func TestRun_Conflict(t *testing.T) {
	dir := setupTestEnv(t)
	a, b := filepath.Join(dir, "a"), filepath.Join(dir, "b")
	writeFile(t, a, "A")
	writeFile(t, b, "B")

	output, err := execute(t, "run", a, b)
	if !errors.Is(err, engine.ErrConflict) {
		t.Fatalf("run error = %v, want ErrConflict", err)
	}
	if !strings.Contains(output, "Conflicts Detected") || !strings.Contains(output, "--force") {
		t.Errorf("run output = %q", output)
	}
	if got := readFile(t, a); got != "A" {
		t.Error("conflicting run must not touch the source")
	}

	output, err = execute(t, "run", "--force", a, b)
	if err == nil || !strings.Contains(err.Error(), "rename is not applied") {
		t.Fatalf("forced run error = %v\n%s", err, output)
	}
	if got := readFile(t, b); got != "B" {
		t.Error("rolled back run must leave the target untouched")
	}
}

func TestRun_ChangeNameMode(t *testing.T) {
	dir := setupTestEnv(t)
	a, b := filepath.Join(dir, "a"), filepath.Join(dir, "b")
	writeFile(t, a, "A")
	writeFile(t, b, "B")

	output, err := execute(t, "run", "--mode", "change-name", a, b)
	if err != nil {
		t.Fatalf("run error = %v\n%s", err, output)
	}
	if got := readFile(t, filepath.Join(dir, "_b")); got != "A" {
		t.Errorf("_b = %q, want A", got)
	}
}

func TestRun_DefaultModeFromConfig(t *testing.T) {
	dir := setupTestEnv(t)
	paths, err := config.DefaultPaths()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(paths.Root, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, paths.Config, "default_mode: change-name\n")

	a, b := filepath.Join(dir, "a"), filepath.Join(dir, "b")
	writeFile(t, a, "A")
	writeFile(t, b, "B")

	if output, err := execute(t, "run", a, b); err != nil {
		t.Fatalf("run error = %v\n%s", err, output)
	}
	if got := readFile(t, filepath.Join(dir, "_b")); got != "A" {
		t.Errorf("_b = %q, want A", got)
	}
}

func TestRun_DryRun(t *testing.T) {
	dir := setupTestEnv(t)
	a, b := filepath.Join(dir, "a"), filepath.Join(dir, "b")
	writeFile(t, a, "A")

	output, err := execute(t, "run", "--dry-run", a, b)
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if !strings.Contains(output, "Dry Run") || !strings.Contains(output, "ok") {
		t.Errorf("dry run output = %q", output)
	}
	if _, err := os.Stat(b); !os.IsNotExist(err) {
		t.Error("dry run must not rename")
	}
}

func TestRun_FromFileWithJSON(t *testing.T) {
	dir := setupTestEnv(t)
	a := filepath.Join(dir, "a")
	writeFile(t, a, "A")
	list := filepath.Join(dir, "pairs.tsv")
	writeFile(t, list, a+"\t"+filepath.Join(dir, "b")+"\n")

	output, err := execute(t, "run", "--json", "-f", list)
	if err != nil {
		t.Fatalf("run error = %v\n%s", err, output)
	}

	var result struct {
		EntryID string
		Outcome journal.Outcome
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, output)
	}
	if result.EntryID == "" || result.Outcome != journal.OutcomeApplied {
		t.Errorf("result = %+v", result)
	}
}

func TestPreview(t *testing.T) {
	dir := setupTestEnv(t)
	a, b := filepath.Join(dir, "a"), filepath.Join(dir, "b")
	writeFile(t, a, "A")
	writeFile(t, b, "B")

	output, err := execute(t, "preview", "-m", "change-name", a, b)
	if err != nil {
		t.Fatalf("preview error = %v", err)
	}
	if !strings.Contains(output, string(planner.StatusRenamed)) || !strings.Contains(output, "_b") {
		t.Errorf("preview output = %q", output)
	}

	output, err = execute(t, "preview", "-m", "overwrite", a, b)
	if err != nil {
		t.Fatalf("preview error = %v", err)
	}
	if !strings.Contains(output, "cannot be undone") {
		t.Errorf("overwrite preview should warn, got %q", output)
	}

	if _, err := execute(t, "preview", "-m", "bogus", a, b); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestCheck(t *testing.T) {
	dir := setupTestEnv(t)
	a := filepath.Join(dir, "a")
	writeFile(t, a, "A")

	output, err := execute(t, "check", a, filepath.Join(dir, "b"))
	if err != nil {
		t.Fatalf("check error = %v", err)
	}
	if !strings.Contains(output, "All 1 source present") {
		t.Errorf("check output = %q", output)
	}

	missing := filepath.Join(dir, "missing")
	output, err = execute(t, "check", a, filepath.Join(dir, "b"), missing, filepath.Join(dir, "c"))
	if err == nil || !strings.Contains(err.Error(), "1 source of 2 missing") {
		t.Fatalf("check error = %v", err)
	}
	if !strings.Contains(output, "missing") {
		t.Errorf("check output should list the missing source, got %q", output)
	}
}

func TestHistoryCommands(t *testing.T) {
	dir := setupTestEnv(t)
	p := func(name string) string { return filepath.Join(dir, name) }
	writeFile(t, p("one"), "x")

	if _, err := execute(t, "run", p("one"), p("two")); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "run", p("two"), p("three")); err != nil {
		t.Fatal(err)
	}

	output, err := execute(t, "history", "--json")
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	var entries []journal.Entry
	if err := json.Unmarshal([]byte(output), &entries); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, output)
	}
	if len(entries) != 2 {
		t.Fatalf("history has %d entries, want 2", len(entries))
	}
	newest, oldest := entries[0], entries[1]

	output, err = execute(t, "history", "ls", "-n", "1")
	if err != nil {
		t.Fatalf("history ls error = %v", err)
	}
	if !strings.Contains(output, newest.ShortID()) || strings.Contains(output, oldest.ShortID()) {
		t.Errorf("history ls -n 1 output = %q", output)
	}

	output, err = execute(t, "history", "show", oldest.ID[:8])
	if err != nil {
		t.Fatalf("history show error = %v", err)
	}
	if !strings.Contains(output, oldest.ID) || !strings.Contains(output, "Undo (1)") {
		t.Errorf("history show output = %q", output)
	}

	out := p("undo.tsv")
	if _, err := execute(t, "history", "export", "-o", out); err != nil {
		t.Fatalf("history export error = %v", err)
	}
	if got := readFile(t, out); got != p("three")+"\t"+p("two")+"\n" {
		t.Errorf("exported pairs = %q", got)
	}

	output, err = execute(t, "history", "prune", "--keep", "1")
	if err != nil {
		t.Fatalf("history prune error = %v", err)
	}
	if !strings.Contains(output, "Pruned 1 run") {
		t.Errorf("history prune output = %q", output)
	}

	if _, err := execute(t, "history", "show", oldest.ID); !errors.Is(err, journal.ErrNotFound) {
		t.Errorf("pruned entry lookup error = %v, want ErrNotFound", err)
	}
}

func TestUndo_UnknownID(t *testing.T) {
	setupTestEnv(t)

	_, err := execute(t, "undo", "deadbeef")
	if !engine.IsJournalMiss(err) {
		t.Errorf("undo error = %v, want a journal miss", err)
	}
}

func TestReportRunFailure(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name    string
		outcome journal.Outcome
		want    string
	}{
		{"rolled back", journal.OutcomeNotApplied, "rename is not applied: boom"},
		{"interrupted", journal.OutcomeInterrupted, "rename is interrupted: boom"},
		{"unknown", "", "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reportRunFailure(&engine.RunResult{Outcome: tt.outcome}, cause)
			if err.Error() != tt.want {
				t.Errorf("reportRunFailure() = %q, want %q", err.Error(), tt.want)
			}
			if !errors.Is(err, cause) {
				t.Error("reportRunFailure() should wrap the cause")
			}
		})
	}
}
