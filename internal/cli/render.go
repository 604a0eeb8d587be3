package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/danieljhkim/bulkren/internal/journal"
	"github.com/danieljhkim/bulkren/internal/planner"
	"github.com/danieljhkim/bulkren/internal/rename"
)

// displayPath shortens paths under the working directory.
func displayPath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil || filepath.IsAbs(rel) || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// renderPlan prints one row per pair and then the conflicts.
func renderPlan(plan *planner.Plan) {
	rows := make([][]string, 0, len(plan.Items))
	for _, item := range plan.Items {
		final := item.Final
		if final == "" {
			final = "-"
		} else {
			final = displayPath(final)
		}
		rows = append(rows, []string{
			string(item.Status),
			displayPath(item.Pair.Source),
			final,
		})
	}
	PrintTable([]string{"STATUS", "SOURCE", "FINAL"}, rows, func(row, col int) *color.Color {
		if col != 0 {
			return nil
		}
		return statusColors[plan.Items[row].Status]
	})

	if plan.HasConflicts() {
		renderConflicts(plan.Conflicts)
	}
}

func renderConflicts(conflicts []planner.Conflict) {
	PrintSection("Conflicts Detected")
	for _, c := range conflicts {
		msg := fmt.Sprintf("pair %d: %s: %s", c.Index+1, displayPath(c.Path), c.Reason)
		if c.Existing != "" {
			msg += fmt.Sprintf(" (%s)", c.Existing)
		}
		PrintError(msg)
	}
}

// renderSummary prints the status counts of a plan.
func renderSummary(plan *planner.Plan) {
	fmt.Fprintln(stdout)
	PrintLabelValue("Pairs", fmt.Sprintf("%d", len(plan.Items)))
	for _, status := range []planner.Status{planner.StatusRenamed, planner.StatusOverwrite, planner.StatusNoop, planner.StatusConflict} {
		if n := plan.Count(status); n > 0 {
			PrintLabelValue(string(status), fmt.Sprintf("%d", n))
		}
	}
	if plan.Irreversible() {
		PrintWarning("Existing entries will be overwritten. This run cannot be undone.")
	}
}

// renderPairs prints pairs as "source -> target" bullets.
func renderPairs(pairs []rename.Pair) {
	items := make([]string, 0, len(pairs))
	for _, p := range pairs {
		items = append(items, fmt.Sprintf("%s -> %s", displayPath(p.Source), displayPath(p.Target)))
	}
	PrintList(items, 1)
}

// entryState is the one-word state shown in history listings.
func entryState(entry *journal.Entry) string {
	switch {
	case entry.Undone():
		return "undone"
	case entry.Outcome == journal.OutcomeInterrupted:
		return string(journal.OutcomeInterrupted)
	default:
		return entry.State.String()
	}
}

func renderEntry(entry *journal.Entry) {
	PrintSection(fmt.Sprintf("Run %s", entry.ShortID()))
	PrintLabelValue("ID", entry.ID)
	PrintLabelValue("Created", fmt.Sprintf("%s (%s)", entry.CreatedAt.Format("2006-01-02 15:04:05"), humanize.Time(entry.CreatedAt)))
	PrintLabelValue("Mode", entry.Mode.String())
	PrintLabelValue("Outcome", string(entry.Outcome))
	PrintLabelValue("State", entryState(entry))
	if entry.UndoneAt != nil {
		PrintLabelValue("Undone", humanize.Time(*entry.UndoneAt))
	}
	if entry.Error != "" {
		PrintLabelValue("Error", entry.Error)
	}

	fmt.Fprintln(stdout)
	PrintSubsection(fmt.Sprintf("Pairs (%d):", len(entry.Pairs)))
	renderPairs(entry.Pairs)
	if len(entry.Undo) > 0 {
		fmt.Fprintln(stdout)
		PrintSubsection(fmt.Sprintf("Undo (%d):", len(entry.Undo)))
		renderPairs(entry.Undo)
	}
}
