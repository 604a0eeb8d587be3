package rename

import (
	"unicode/utf8"

	"go.uber.org/zap"
)

// maxTempPrefix bounds the part of the target name copied into placeholder
// names so that long targets do not exceed NAME_MAX.
const maxTempPrefix = 64

// stage moves every source to a placeholder in its target's directory.
// The returned ledger holds one entry per staged pair, even on error.
func (o *Operation) stage(ledger Ledger) (Ledger, error) {
	ledger.begin(len(o.pairs))

	for i, pair := range o.pairs {
		dir, name, ok := SplitTarget(pair.Target)
		if !ok {
			return ledger, newError(KindIllegalOperation, pair, nil)
		}

		// Placeholder lives next to the target so the commit rename never
		// crosses a device boundary.
		temp, err := o.fs.CreateTemp(dir, tempPattern(name))
		if err != nil {
			return ledger, newError(KindTargetDirNotWritable, pair, err)
		}

		info, err := o.fs.Lstat(pair.Source)
		if err != nil {
			_ = o.fs.Remove(temp)
			return ledger, newError(KindIO, pair, err)
		}

		// Renaming a directory over an existing file fails, so directories
		// (and anything else that is not a regular file) need the name free.
		regular := info.Mode().IsRegular()
		if !regular {
			if err := o.fs.Remove(temp); err != nil {
				return ledger, newError(KindIO, pair, err)
			}
		}

		if err := o.fs.Rename(pair.Source, temp); err != nil {
			if regular {
				_ = o.fs.Remove(temp)
			}
			return ledger, newError(KindIO, pair, err)
		}

		ledger.staged(temp, pair.Source)
		o.logger.Debug("staged",
			zap.Int("index", i),
			zap.String("source", pair.Source),
			zap.String("temp", temp))
	}

	return ledger, nil
}

// tempPattern builds the os.CreateTemp pattern for a target name.
func tempPattern(name string) string {
	if len(name) > maxTempPrefix {
		cut := maxTempPrefix
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut]
	}
	return "." + name + ".bulkren-*"
}
