package fsops

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// ErrInjected is returned by FaultFS for operations configured to fail.
var ErrInjected = errors.New("injected fault")

// FaultFS wraps an FS and fails selected operations. It is used to exercise
// partial-failure paths that are hard to provoke on a real filesystem
// (for example an unwritable directory when running as root).
type FaultFS struct {
	FS

	mu          sync.Mutex
	tempDirs    map[string]error
	renameFrom  map[string]error
	renameTo    map[string]error
	removePaths map[string]error
	calls       []string
}

// NewFaultFS wraps inner. A nil inner wraps a RealFS.
func NewFaultFS(inner FS) *FaultFS {
	if inner == nil {
		inner = NewRealFS()
	}
	return &FaultFS{
		FS:          inner,
		tempDirs:    make(map[string]error),
		renameFrom:  make(map[string]error),
		renameTo:    make(map[string]error),
		removePaths: make(map[string]error),
	}
}

// FailCreateTemp makes CreateTemp in dir return err (ErrInjected when nil).
func (f *FaultFS) FailCreateTemp(dir string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tempDirs[filepath.Clean(dir)] = orInjected(err)
}

// FailRenameFrom makes any Rename whose source is path fail.
func (f *FaultFS) FailRenameFrom(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renameFrom[filepath.Clean(path)] = orInjected(err)
}

// FailRenameTo makes any Rename whose destination is path fail.
func (f *FaultFS) FailRenameTo(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renameTo[filepath.Clean(path)] = orInjected(err)
}

// FailRemove makes Remove and RemoveAll of path fail.
func (f *FaultFS) FailRemove(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removePaths[filepath.Clean(path)] = orInjected(err)
}

// Calls returns the mutating calls seen so far, e.g. "rename a -> b".
func (f *FaultFS) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// CreateTemp fails when dir was registered with FailCreateTemp.
func (f *FaultFS) CreateTemp(dir, pattern string) (string, error) {
	f.record("create-temp " + dir)
	if err := f.lookup(f.tempDirs, dir); err != nil {
		return "", &os.PathError{Op: "createtemp", Path: dir, Err: err}
	}
	return f.FS.CreateTemp(dir, pattern)
}

// Rename fails when either side was registered.
func (f *FaultFS) Rename(oldpath, newpath string) error {
	f.record("rename " + oldpath + " -> " + newpath)
	if err := f.lookup(f.renameFrom, oldpath); err != nil {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: err}
	}
	if err := f.lookup(f.renameTo, newpath); err != nil {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: err}
	}
	return f.FS.Rename(oldpath, newpath)
}

// Remove fails when path was registered with FailRemove.
func (f *FaultFS) Remove(path string) error {
	f.record("remove " + path)
	if err := f.lookup(f.removePaths, path); err != nil {
		return &os.PathError{Op: "remove", Path: path, Err: err}
	}
	return f.FS.Remove(path)
}

// RemoveAll fails when path was registered with FailRemove.
func (f *FaultFS) RemoveAll(path string) error {
	f.record("remove-all " + path)
	if err := f.lookup(f.removePaths, path); err != nil {
		return &os.PathError{Op: "removeall", Path: path, Err: err}
	}
	return f.FS.RemoveAll(path)
}

func (f *FaultFS) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *FaultFS) lookup(m map[string]error, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return m[filepath.Clean(path)]
}

func orInjected(err error) error {
	if err == nil {
		return ErrInjected
	}
	return err
}
