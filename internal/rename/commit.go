package rename

import (
	"errors"
	"io/fs"

	"go.uber.org/zap"
)

// commit moves every staged placeholder to its final target.
func (o *Operation) commit(ledger Ledger, mode OverwriteMode) (Ledger, error) {
	for i, pair := range o.pairs {
		temp := ledger.Entries[i].Source

		final, err := o.finalTarget(&ledger, pair, mode)
		if err != nil {
			return ledger, err
		}

		if err := o.clearTarget(temp, final); err != nil {
			return ledger, newError(KindIO, pair, err)
		}

		if err := o.fs.Rename(temp, final); err != nil {
			return ledger, newError(KindIO, pair, err)
		}

		ledger.committed(i, final)
		o.logger.Debug("committed",
			zap.Int("index", i),
			zap.String("temp", temp),
			zap.String("final", final))
	}

	ledger.complete()
	return ledger, nil
}

// finalTarget applies mode to the requested target.
func (o *Operation) finalTarget(ledger *Ledger, pair Pair, mode OverwriteMode) (string, error) {
	switch mode {
	case ModeChangeFileName:
		final, err := ResolveNonconflicting(o.fs, pair.Target)
		var rerr *Error
		if errors.As(err, &rerr) {
			rerr.Pair = pair
		}
		if err != nil {
			return "", err
		}
		return final, nil

	case ModeOverwrite:
		exists, err := o.fs.Exists(pair.Target)
		if err != nil {
			return "", newError(KindIO, pair, err)
		}
		if exists {
			if ledger.State != Irreversible {
				o.logger.Warn("overwriting existing entry, run is no longer reversible",
					zap.String("target", pair.Target))
			}
			ledger.markIrreversible()
		}
		return pair.Target, nil

	default:
		exists, err := o.fs.Exists(pair.Target)
		if err != nil {
			return "", newError(KindIO, pair, err)
		}
		if exists {
			return "", newError(KindTargetExists, pair, nil)
		}
		return pair.Target, nil
	}
}

// clearTarget removes whatever occupies final unless a plain file is about
// to replace a plain file, which rename handles atomically.
func (o *Operation) clearTarget(temp, final string) error {
	targetInfo, err := o.fs.Lstat(final)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	tempInfo, err := o.fs.Lstat(temp)
	if err != nil {
		return err
	}
	if tempInfo.Mode().IsRegular() && targetInfo.Mode().IsRegular() {
		return nil
	}

	if targetInfo.IsDir() {
		return o.fs.RemoveAll(final)
	}
	return o.fs.Remove(final)
}
