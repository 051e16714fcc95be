package auth

import (
	"context"
	"time"
)

// Store describes persistence required by the account lifecycle.
type Store interface {
	Accounts(ctx context.Context) AccountStore
	RevokedTokens(ctx context.Context) RevocationStore
}

// AccountStore manages account records. All cross-request invariants
// (email uniqueness, at-most-once approval) are enforced here with atomic
// constraint/compare-and-swap primitives, not read-then-write logic.
type AccountStore interface {
	// Create persists a new account. Returns ErrEmailTaken when the email
	// is already registered, including when a concurrent registration wins
	// the race; the storage-level unique constraint is the real guard.
	Create(ctx context.Context, a *Account) error

	// Find returns the account by id, or ErrNotFound. PENDING records past
	// their retention window are treated as absent.
	Find(ctx context.Context, id string) (*Account, error)

	// FindByEmail returns the account for a normalized email, or ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// ListPending returns undecided registrations newest first. The
	// projection never includes the credential hash.
	ListPending(ctx context.Context) ([]*Account, error)

	// Approve transitions a PENDING account to APPROVED with the given role
	// in a single conditional write. Returns ErrNotFound when the record is
	// absent or already left PENDING, so a duplicate approval cannot
	// re-trigger side effects.
	Approve(ctx context.Context, id, role, approvedBy string) (*Account, error)

	// DeletePending removes a PENDING record outright. Returns ErrNotFound
	// when the record is absent or already decided.
	DeletePending(ctx context.Context, id string) error

	// Promote sets the super-admin role on an APPROVED account. Returns
	// ErrNotFound when the account is absent or not approved.
	Promote(ctx context.Context, id string) (*Account, error)

	// HasSuperAdmin reports whether any APPROVED super admin exists. Guards
	// the startup bootstrap.
	HasSuperAdmin(ctx context.Context) (bool, error)

	// PurgeExpiredPending physically removes PENDING rows older than the
	// retention window. Reads already filter them out; this is cleanup.
	PurgeExpiredPending(ctx context.Context, before time.Time) (int64, error)
}

// RevocationStore records tokens that must be treated as invalid before
// their natural expiry.
type RevocationStore interface {
	// Record inserts a revocation. Duplicate insertion (double logout) is
	// silently ignored.
	Record(ctx context.Context, token string, expiresAt time.Time) error

	// IsRevoked reports whether the token is currently revoked. Entries
	// past their expiry no longer count: an expired revoked token is
	// harmless since signature verification rejects it anyway.
	IsRevoked(ctx context.Context, token string) (bool, error)

	// PurgeExpired physically removes revocation rows past their expiry.
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}
