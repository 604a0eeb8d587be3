package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/danieljhkim/bulkren/internal/planner"
	"github.com/danieljhkim/bulkren/internal/rename"
)

// Check verifies that every source exists without changing anything.
func (e *Engine) Check(ctx context.Context, req *CheckRequest) (*CheckResult, error) {
	if len(req.Pairs) == 0 {
		return nil, fmt.Errorf("%w: no pairs to check", ErrValidation)
	}

	result := &CheckResult{Total: len(req.Pairs)}
	err := rename.New(req.Pairs, rename.WithFS(e.fs), rename.WithLogger(e.logger)).CheckSourcesExist()

	var rerr *rename.Error
	if errors.As(err, &rerr) && rerr.Kind == rename.KindSourceNotFound {
		result.Missing = rerr.Missing
	}
	return result, err
}

// Preview predicts the result of running the pairs under a mode.
func (e *Engine) Preview(ctx context.Context, req *PreviewRequest) (*planner.Plan, error) {
	if !req.Mode.Valid() {
		return nil, fmt.Errorf("%w: invalid overwrite mode %v", ErrValidation, req.Mode)
	}
	return planner.Build(e.fs, req.Pairs, req.Mode), nil
}
