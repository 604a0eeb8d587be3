package planner

import (
	"errors"
	"os"
	"testing"
)

// mockFS is a mock implementation of fsops.FS for testing
type mockFS struct {
	exists    map[string]bool
	existsErr map[string]error
}

func newMockFS(paths ...string) *mockFS {
	m := &mockFS{
		exists:    make(map[string]bool),
		existsErr: make(map[string]error),
	}
	for _, p := range paths {
		m.exists[p] = true
	}
	return m
}

func (m *mockFS) setExists(path string, exists bool) {
	m.exists[path] = exists
}

func (m *mockFS) Exists(path string) (bool, error) {
	if err, ok := m.existsErr[path]; ok {
		return false, err
	}
	return m.exists[path], nil
}

func (m *mockFS) Lstat(path string) (os.FileInfo, error)                       { return nil, os.ErrNotExist }
func (m *mockFS) Rename(oldpath, newpath string) error                         { return errors.New("read-only") }
func (m *mockFS) CreateTemp(dir, pattern string) (string, error)               { return "", errors.New("read-only") }
func (m *mockFS) MkdirAll(path string, perm os.FileMode) error                 { return errors.New("read-only") }
func (m *mockFS) Remove(path string) error                                     { return errors.New("read-only") }
func (m *mockFS) RemoveAll(path string) error                                  { return errors.New("read-only") }
func (m *mockFS) AtomicWrite(path string, data []byte, perm os.FileMode) error { return errors.New("read-only") }
func (m *mockFS) ReadFile(path string) ([]byte, error)                         { return nil, os.ErrNotExist }

func TestConflictChecker_Occupied(t *testing.T) {
	fs := newMockFS("/d/a", "/d/b", "/d/c")
	checker := NewConflictChecker(fs, []string{"/d/a"})

	tests := []struct {
		name         string
		path         string
		wantOccupied bool
		wantExisting string
	}{
		{name: "vacated source", path: "/d/a", wantOccupied: false},
		{name: "vacated source, uncleaned", path: "/d/./a", wantOccupied: false},
		{name: "existing entry", path: "/d/b", wantOccupied: true, wantExisting: "existing entry"},
		{name: "free path", path: "/d/z", wantOccupied: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			occupied, existing, err := checker.Occupied(tt.path)
			if err != nil {
				t.Fatalf("Occupied failed: %v", err)
			}
			if occupied != tt.wantOccupied {
				t.Errorf("Occupied(%q) = %v, want %v", tt.path, occupied, tt.wantOccupied)
			}
			if existing != tt.wantExisting {
				t.Errorf("existing = %q, want %q", existing, tt.wantExisting)
			}
		})
	}

	t.Run("claimed path", func(t *testing.T) {
		checker.Claim("/d/a", 4)
		occupied, existing, err := checker.Occupied("/d/a")
		if err != nil {
			t.Fatalf("Occupied failed: %v", err)
		}
		if !occupied || existing != "final path of pair 5" {
			t.Errorf("claimed path: occupied=%v existing=%q", occupied, existing)
		}
	})

	t.Run("filesystem error", func(t *testing.T) {
		fs.existsErr["/d/broken"] = errors.New("permission denied")
		if _, _, err := checker.Occupied("/d/broken"); err == nil {
			t.Error("expected error")
		}
	})
}

func TestConflictChecker_Resolve(t *testing.T) {
	fs := newMockFS("/d/t", "/d/_t", "/d/___t")
	checker := NewConflictChecker(fs, nil)

	got, err := checker.Resolve("/d/t")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "/d/__t" {
		t.Errorf("Resolve = %q, want /d/__t", got)
	}

	checker.Claim("/d/__t", 0)
	got, err = checker.Resolve("/d/t")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "/d/____t" {
		t.Errorf("Resolve after claim = %q, want /d/____t", got)
	}

	fs.setExists("/d/free", false)
	got, err = checker.Resolve("/d/free")
	if err != nil || got != "/d/free" {
		t.Errorf("free target resolved to %q, %v", got, err)
	}

	if _, err := checker.Resolve("/"); err == nil {
		t.Error("expected error for a target without file name")
	}
}
