package planner

import (
	"fmt"
	"path/filepath"

	"github.com/danieljhkim/bulkren/internal/fsops"
	"github.com/danieljhkim/bulkren/internal/rename"
)

// ConflictChecker predicts whether a path is occupied at the moment a pair
// commits. By then every source has been staged away, and every earlier
// pair has claimed its final path.
type ConflictChecker struct {
	fs      fsops.FS
	vacated map[string]bool
	claimed map[string]int
}

// NewConflictChecker creates a ConflictChecker for pairs. Every source is
// treated as vacated; callers drop sources that do not exist.
func NewConflictChecker(fs fsops.FS, sources []string) *ConflictChecker {
	vacated := make(map[string]bool, len(sources))
	for _, s := range sources {
		vacated[filepath.Clean(s)] = true
	}
	return &ConflictChecker{
		fs:      fs,
		vacated: vacated,
		claimed: make(map[string]int),
	}
}

// Occupied reports whether path will be taken when the next pair commits.
// existing describes the occupant.
func (c *ConflictChecker) Occupied(path string) (occupied bool, existing string, err error) {
	clean := filepath.Clean(path)
	if i, ok := c.claimed[clean]; ok {
		return true, fmt.Sprintf("final path of pair %d", i+1), nil
	}
	if c.vacated[clean] {
		return false, "", nil
	}

	exists, err := c.fs.Exists(clean)
	if err != nil {
		return false, "", fmt.Errorf("failed to check path: %w", err)
	}
	if exists {
		return true, "existing entry", nil
	}
	return false, "", nil
}

// Claim records that pair index lands on path.
func (c *ConflictChecker) Claim(path string, index int) {
	c.claimed[filepath.Clean(path)] = index
}

// Resolve predicts the name chosen by rename.ResolveNonconflicting.
func (c *ConflictChecker) Resolve(target string) (string, error) {
	dir, name, ok := rename.SplitTarget(target)
	if !ok {
		return "", fmt.Errorf("target %q has no file name", target)
	}

	candidate := target
	for n := 1; ; n++ {
		occupied, _, err := c.Occupied(candidate)
		if err != nil {
			return "", err
		}
		if !occupied {
			return candidate, nil
		}
		candidate = rename.Candidate(dir, name, n)
	}
}
