// Package rename implements bulk renaming of files and directories as one
// reversible operation.
//
// An Operation is built from an ordered list of (source, target) pairs and
// executed once. Execution runs in two phases over the filesystem:
//
//   - Staging moves every source to a uniquely named placeholder inside its
//     target's parent directory. Once every source has been vacated, cyclic
//     and overlapping rename sets (a→b, b→a) no longer collide.
//   - Commit moves each placeholder to its final target, resolving collisions
//     with the caller's OverwriteMode.
//
// Both phases record their progress in a Ledger of (current, original) pairs.
// Undo builds the reverse Operation from the ledger unless a destructive
// overwrite made the run irreversible. Failures are never rolled back
// automatically; whatever has been staged or committed so far stays in place
// and is reflected in the ledger.
package rename
