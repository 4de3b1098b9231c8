package storage

import "errors"

// Common storage errors
var (
	// ErrNotFound indicates that no record matched the given key
	ErrNotFound = errors.New("product not found")

	// ErrSnapshotNotFound indicates a missing undo snapshot
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrWorkspaceNotFound indicates a missing saved base
	ErrWorkspaceNotFound = errors.New("saved base not found")

	// ErrNoBackup indicates a restore with no system backup present
	ErrNoBackup = errors.New("no backup available")

	// ErrNotSupported indicates an operation the active backend lacks
	ErrNotSupported = errors.New("operation not supported by this backend")
)
