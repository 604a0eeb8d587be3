package rename

import (
	"path/filepath"
	"strings"

	"github.com/danieljhkim/bulkren/internal/fsops"
)

// ResolveNonconflicting returns target if nothing exists there. Otherwise it
// prefixes the file name with "_", "__", "___", ... and returns the first
// candidate in the same directory that is free.
//
// The check races with concurrent modification of the directory; callers are
// assumed to be the only writer.
func ResolveNonconflicting(fs fsops.FS, target string) (string, error) {
	dir, name, ok := SplitTarget(target)
	if !ok {
		return "", newError(KindIllegalOperation, Pair{Target: target}, nil)
	}

	exists, err := fs.Exists(target)
	if err != nil {
		return "", newError(KindIO, Pair{Target: target}, err)
	}
	if !exists {
		return target, nil
	}

	for n := 1; ; n++ {
		candidate := Candidate(dir, name, n)
		exists, err := fs.Exists(candidate)
		if err != nil {
			return "", newError(KindIO, Pair{Target: candidate}, err)
		}
		if !exists {
			return candidate, nil
		}
	}
}

// Candidate returns the n-th alternative name tried for dir/name.
func Candidate(dir, name string, n int) string {
	return filepath.Join(dir, strings.Repeat("_", n)+name)
}

// SplitTarget returns the parent directory and file name of path. ok is false
// when path has no file-name component (empty, a root, "." or "..").
func SplitTarget(path string) (dir, name string, ok bool) {
	if path == "" {
		return "", "", false
	}
	clean := filepath.Clean(path)
	name = filepath.Base(clean)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", "", false
	}
	if vol := filepath.VolumeName(clean); vol != "" && (clean == vol || clean == vol+string(filepath.Separator)) {
		return "", "", false
	}
	return filepath.Dir(clean), name, true
}
