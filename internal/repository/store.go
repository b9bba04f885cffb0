// Package repository persists user records, the single source of truth for
// credentials and the refresh-token fingerprint.
package repository

import (
	"context"
	"errors"

	"github.com/zenithdocs/zenith-api/internal/model"
)

// Sentinel errors for stable mapping in the handler layer.
var (
	// ErrNotFound indicates the requested user does not exist.
	ErrNotFound = errors.New("user not found")

	// ErrEmailExists indicates a unique-email violation on create/update.
	ErrEmailExists = errors.New("email already exists")

	// ErrVersionConflict indicates a fingerprint compare-and-swap lost a
	// race: the token_version read by the caller was stale.
	ErrVersionConflict = errors.New("token version conflict")
)

// UserStore is the credential-store surface the handlers depend on. The MySQL
// implementation lives in this package; tests substitute in-memory fakes.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id uint64) error

	// SetRefreshFingerprint rotates the stored fingerprint iff the row still
	// carries expectedVersion, bumping the version on success. Passing an
	// empty fingerprint revokes the session outright.
	SetRefreshFingerprint(ctx context.Context, id uint64, fingerprint string, expectedVersion uint64) error
}
