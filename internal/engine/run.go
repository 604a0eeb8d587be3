package engine

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/danieljhkim/bulkren/internal/journal"
	"github.com/danieljhkim/bulkren/internal/planner"
)

// Run renames the requested pairs.
//
// Algorithm steps:
// 1. Validate the request and build the plan
// 2. Stop here on DryRun
// 3. Reject predicted conflicts unless Force
// 4. Hash every source (if Verify)
// 5. Execute, rolling back on failure (if Rollback)
// 6. Journal the run so it can be undone later
// 7. Verify every final path against its source digest
// 8. Prune the journal to HistoryLimit
func (e *Engine) Run(ctx context.Context, req *RunRequest) (*RunResult, error) {
	if len(req.Pairs) == 0 {
		return nil, fmt.Errorf("%w: no pairs to rename", ErrValidation)
	}
	if !req.Mode.Valid() {
		return nil, fmt.Errorf("%w: invalid overwrite mode %v", ErrValidation, req.Mode)
	}

	plan := planner.Build(e.fs, req.Pairs, req.Mode)
	result := &RunResult{Plan: plan, DryRun: req.DryRun}

	if req.DryRun {
		return result, nil
	}

	if plan.HasConflicts() && !req.Force {
		return result, fmt.Errorf("%w: %d conflicting pair(s)", ErrConflict, len(plan.Conflicts))
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	var digests []string
	if req.Verify {
		var err error
		digests, err = e.digestSources(req)
		if err != nil {
			return result, err
		}
	}

	x := e.execute(req.Pairs, req.Mode, req.Rollback)
	result.Ledger = x.ledger
	result.Outcome = x.outcome

	id, jerr := e.record(req.Pairs, req.Mode, x)
	result.EntryID = id

	if x.err != nil {
		return result, multierr.Append(x.err, jerr)
	}
	if jerr != nil {
		return result, jerr
	}

	if req.Verify {
		verified, err := e.verifyFinals(digests, result)
		result.Verified = verified
		if err != nil {
			return result, err
		}
	}

	if req.HistoryLimit > 0 && e.journal != nil {
		pruned, err := e.journal.Prune(req.HistoryLimit)
		if err != nil {
			return result, fmt.Errorf("failed to prune journal: %w", err)
		}
		result.Pruned = pruned
	}

	return result, nil
}

func (e *Engine) digestSources(req *RunRequest) ([]string, error) {
	digests := make([]string, len(req.Pairs))
	for i, pair := range req.Pairs {
		digest, err := e.hasher.HashPath(pair.Source)
		if err != nil {
			return nil, fmt.Errorf("%w: hashing %s: %v", ErrVerify, pair.Source, err)
		}
		digests[i] = digest
	}
	return digests, nil
}

// verifyFinals compares each final path with the digest of its source.
func (e *Engine) verifyFinals(digests []string, result *RunResult) (int, error) {
	if result.Outcome != journal.OutcomeApplied {
		return 0, nil
	}

	verified := 0
	for i, entry := range result.Ledger.Entries {
		digest, err := e.hasher.HashPath(entry.Source)
		if err != nil {
			return verified, fmt.Errorf("%w: hashing %s: %v", ErrVerify, entry.Source, err)
		}
		if digest != digests[i] {
			return verified, fmt.Errorf("%w: content of %s does not match %s", ErrVerify, entry.Source, entry.Target)
		}
		verified++
	}
	return verified, nil
}
