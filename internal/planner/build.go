package planner

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/danieljhkim/bulkren/internal/fsops"
	"github.com/danieljhkim/bulkren/internal/rename"
)

// Build predicts the result of executing pairs under mode. It only reads the
// filesystem.
//
// Algorithm steps:
// 1. Reject pairs with empty paths, unnamed targets or duplicate sources
// 2. Reject pairs whose source is missing or whose target directory will not exist
// 3. Walk the remaining pairs in order, predicting each final path against
//    the filesystem minus all sources plus the finals claimed so far
// 4. Reject pairs whose target lies inside a path another pair overwrites
func Build(fs fsops.FS, pairs []rename.Pair, mode rename.OverwriteMode) *Plan {
	plan := NewPlan(mode)

	valid := make([]bool, len(pairs))
	var sources []string
	seen := make(map[string]int, len(pairs))

	for i, pair := range pairs {
		if conflict := checkPair(fs, pair, i, seen); conflict != nil {
			plan.Conflicts = append(plan.Conflicts, *conflict)
			continue
		}
		valid[i] = true
		sources = append(sources, pair.Source)
	}

	checker := NewConflictChecker(fs, sources)

	for i, pair := range pairs {
		if !valid[i] {
			plan.Items = append(plan.Items, Item{Index: i, Pair: pair, Status: StatusConflict})
			continue
		}

		if conflict := checkTargetDir(fs, checker, pair, i); conflict != nil {
			plan.AddConflict(pair, *conflict)
			continue
		}

		item, conflict := predict(checker, pair, i, mode)
		if conflict != nil {
			plan.AddConflict(pair, *conflict)
			continue
		}
		checker.Claim(item.Final, i)
		plan.AddItem(item)
	}

	checkOverwrittenDirs(plan)

	sort.SliceStable(plan.Conflicts, func(a, b int) bool {
		return plan.Conflicts[a].Index < plan.Conflicts[b].Index
	})
	return plan
}

// checkPair validates a pair on its own.
func checkPair(fs fsops.FS, pair rename.Pair, index int, seen map[string]int) *Conflict {
	if pair.Source == "" || pair.Target == "" {
		return &Conflict{Index: index, Path: pair.Source, Reason: "empty path"}
	}
	if _, _, ok := rename.SplitTarget(pair.Target); !ok {
		return &Conflict{Index: index, Path: pair.Target, Reason: "target has no file name"}
	}

	clean := filepath.Clean(pair.Source)
	if first, ok := seen[clean]; ok {
		return &Conflict{
			Index:    index,
			Path:     pair.Source,
			Reason:   "duplicate source",
			Existing: fmt.Sprintf("source of pair %d", first+1),
		}
	}
	seen[clean] = index

	exists, err := fs.Exists(pair.Source)
	if err != nil {
		return &Conflict{Index: index, Path: pair.Source, Reason: fmt.Sprintf("failed to check source: %v", err)}
	}
	if !exists {
		return &Conflict{Index: index, Path: pair.Source, Reason: "source not found"}
	}
	return nil
}

// checkTargetDir makes sure staging can place a placeholder next to the target.
func checkTargetDir(fs fsops.FS, checker *ConflictChecker, pair rename.Pair, index int) *Conflict {
	dir, _, _ := rename.SplitTarget(pair.Target)
	for d := filepath.Clean(dir); ; d = filepath.Dir(d) {
		if checker.vacated[d] {
			if d == filepath.Clean(pair.Source) {
				return &Conflict{Index: index, Path: d, Reason: "target is inside its own source"}
			}
			return &Conflict{Index: index, Path: d, Reason: "target directory is moved by another pair"}
		}
		if filepath.Dir(d) == d {
			break
		}
	}
	exists, err := fs.Exists(dir)
	if err != nil {
		return &Conflict{Index: index, Path: dir, Reason: fmt.Sprintf("failed to check target directory: %v", err)}
	}
	if !exists {
		return &Conflict{Index: index, Path: dir, Reason: "target directory does not exist"}
	}
	return nil
}

// predict applies mode to a pair whose source and target directory are valid.
func predict(checker *ConflictChecker, pair rename.Pair, index int, mode rename.OverwriteMode) (Item, *Conflict) {
	item := Item{Index: index, Pair: pair, Final: pair.Target, Status: StatusOK}

	occupied, existing, err := checker.Occupied(pair.Target)
	if err != nil {
		return item, &Conflict{Index: index, Path: pair.Target, Reason: err.Error()}
	}
	if !occupied {
		if filepath.Clean(pair.Source) == filepath.Clean(pair.Target) {
			item.Status = StatusNoop
		}
		return item, nil
	}

	switch mode {
	case rename.ModeChangeFileName:
		final, err := checker.Resolve(pair.Target)
		if err != nil {
			return item, &Conflict{Index: index, Path: pair.Target, Reason: err.Error()}
		}
		item.Final = final
		item.Status = StatusRenamed
		return item, nil

	case rename.ModeOverwrite:
		item.Status = StatusOverwrite
		return item, nil

	default:
		return item, &Conflict{
			Index:    index,
			Path:     pair.Target,
			Reason:   "target already exists",
			Existing: existing,
		}
	}
}

// checkOverwrittenDirs turns items into conflicts when another pair overwrites
// one of their target's ancestors. Commit removes an overwritten directory
// with everything below it, placeholders and committed entries included.
func checkOverwrittenDirs(plan *Plan) {
	overwritten := make(map[string]int)
	for _, item := range plan.Items {
		if item.Status == StatusOverwrite {
			overwritten[filepath.Clean(item.Final)] = item.Index
		}
	}
	if len(overwritten) == 0 {
		return
	}

	for k, item := range plan.Items {
		if item.Status == StatusConflict {
			continue
		}
		for d := filepath.Dir(filepath.Clean(item.Final)); ; d = filepath.Dir(d) {
			if owner, ok := overwritten[d]; ok && owner != item.Index {
				plan.Items[k] = Item{Index: item.Index, Pair: item.Pair, Status: StatusConflict}
				plan.Conflicts = append(plan.Conflicts, Conflict{
					Index:    item.Index,
					Path:     d,
					Reason:   "target directory is replaced by another pair",
					Existing: fmt.Sprintf("overwritten by pair %d", owner+1),
				})
				break
			}
			if filepath.Dir(d) == d {
				break
			}
		}
	}
}
