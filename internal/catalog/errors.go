// Package catalog is the product master-data core: identity matching,
// import merging, the query pipeline, and audited mutations. It works
// on in-memory collections and talks to persistence, snapshot, and
// audit collaborators through the interfaces in internal/storage.
package catalog

import "errors"

// Conditions callers must detect and surface. Query, merge, and
// identity operations never raise on malformed records; these cover
// mutation arguments and destructive operations only.
var (
	// ErrFieldRequired indicates a mutation invoked without a target attribute
	ErrFieldRequired = errors.New("field required")

	// ErrFieldNotEditable indicates an attempt to mutate the identity attribute
	ErrFieldNotEditable = errors.New("field not editable")

	// ErrUnknownField indicates a field name outside the fixed schema
	ErrUnknownField = errors.New("unknown field")

	// ErrNotFound indicates a mutation target that matches no record
	ErrNotFound = errors.New("product not found")

	// ErrConfirmationRequired indicates a destructive clear without confirm
	ErrConfirmationRequired = errors.New("confirmation required")

	// ErrNoHistory indicates an undo with no snapshots left
	ErrNoHistory = errors.New("no history")
)
