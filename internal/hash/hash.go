// Package hash provides content digests for renamed entries.
//
// Bulkren hashes every source before a run and every final path after it to
// prove that content arrived intact. A regular file hashes to the digest of
// its bytes; a directory hashes to a digest over its sorted tree; a symlink
// hashes to a digest of its link target. The package provides SHA-256 and
// xxHash implementations plus a fake implementation for testing.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	gohash "hash"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// Hasher provides an abstraction for content hashing operations.
type Hasher interface {
	// HashPath computes the digest of the entry at path.
	HashPath(path string) (string, error)
}

// Algorithm names accepted by New.
const (
	SHA256 = "sha256"
	XXHash = "xxhash"
)

// New returns the hasher for algorithm.
func New(algorithm string) (Hasher, error) {
	switch algorithm {
	case "", SHA256:
		return NewSHA256Hasher(), nil
	case XXHash:
		return NewXXHasher(), nil
	default:
		return nil, fmt.Errorf("unknown hash algorithm %q (want %s or %s)", algorithm, SHA256, XXHash)
	}
}

// TreeHasher implements Hasher over any hash.Hash constructor.
type TreeHasher struct {
	newHash func() gohash.Hash
}

// NewSHA256Hasher creates a TreeHasher using SHA-256.
func NewSHA256Hasher() *TreeHasher {
	return &TreeHasher{newHash: sha256.New}
}

// NewXXHasher creates a TreeHasher using 64-bit xxHash. It is much faster
// than SHA-256 and is fine for detecting accidental corruption.
func NewXXHasher() *TreeHasher {
	return &TreeHasher{newHash: func() gohash.Hash { return xxhash.New() }}
}

// HashPath computes the digest of a file, symlink or directory tree.
func (h *TreeHasher) HashPath(path string) (string, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	switch {
	case info.Mode().IsRegular():
		return h.hashFile(path)
	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			return "", fmt.Errorf("failed to read link: %w", err)
		}
		sum := h.newHash()
		_, _ = io.WriteString(sum, "link:"+target)
		return hex.EncodeToString(sum.Sum(nil)), nil
	case info.IsDir():
		return h.hashTree(path)
	default:
		return "", fmt.Errorf("cannot hash %s: unsupported file type %v", path, info.Mode().Type())
	}
}

func (h *TreeHasher) hashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	sum := h.newHash()
	if _, err := io.Copy(sum, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return hex.EncodeToString(sum.Sum(nil)), nil
}

// hashTree digests relative names, entry kinds and per-entry digests in
// lexical walk order. The root's own name is not part of the digest, so a
// renamed directory hashes the same as before.
func (h *TreeHasher) hashTree(root string) (string, error) {
	sum := h.newHash()

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			_, _ = fmt.Fprintf(sum, "dir %s\n", rel)
			return nil
		}

		digest, err := h.HashPath(path)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(sum, "entry %s %s\n", rel, digest)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to hash tree %s: %w", root, err)
	}

	return hex.EncodeToString(sum.Sum(nil)), nil
}

// FakeHasher implements Hasher with deterministic hashes for testing.
type FakeHasher struct {
	hashes map[string]string
}

// NewFakeHasher creates a new FakeHasher.
func NewFakeHasher() *FakeHasher {
	return &FakeHasher{
		hashes: make(map[string]string),
	}
}

// SetHash sets the hash for a specific path (for testing).
func (h *FakeHasher) SetHash(path, hash string) {
	h.hashes[path] = hash
}

// HashPath returns the predetermined hash for the given path.
func (h *FakeHasher) HashPath(path string) (string, error) {
	if hash, ok := h.hashes[path]; ok {
		return hash, nil
	}
	// Default hash if not set
	return "fakehash", nil
}
