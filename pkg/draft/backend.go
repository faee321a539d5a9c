package draft

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Backend.Get for unknown identities.
	ErrNotFound = errors.New("draft: not found")
	// ErrTransport marks recoverable commit and hydration failures.
	ErrTransport = errors.New("draft: transport failure")
)

// Backend is the storage collaborator holding draft records.
type Backend interface {
	// Create stores rec and returns the identity assigned to it.
	Create(ctx context.Context, rec Record) (Identity, error)
	// Update replaces the record stored under id. It is idempotent.
	Update(ctx context.Context, id Identity, rec Record) error
	// Get reads the record stored under id or returns ErrNotFound.
	Get(ctx context.Context, id Identity) (Record, error)
}

// IdentityStore persists the last-known draft identity between sessions. It
// holds exactly one value.
type IdentityStore interface {
	// Load returns the cached identity, or the empty identity when none is
	// cached.
	Load(ctx context.Context) (Identity, error)
	Save(ctx context.Context, id Identity) error
	Clear(ctx context.Context) error
}

// CommitError reports a failed commit. Form state is left untouched and a
// retry reuses Identity when one was already assigned.
type CommitError struct {
	Final    bool
	Identity Identity
	Err      error
}

func (e *CommitError) Error() string {
	kind := "save"
	if e.Final {
		kind = "final submission"
	}
	if e.Identity == "" {
		return fmt.Sprintf("draft: %s failed: %v", kind, e.Err)
	}
	return fmt.Sprintf("draft: %s failed for %s: %v", kind, e.Identity, e.Err)
}

// Unwrap exposes both ErrTransport and the underlying cause.
func (e *CommitError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}
