package model

import "time"

// User mirrors the 'users' table. The refresh fingerprint is the SHA-256 hex
// digest of the single currently valid refresh token for this user; it is
// overwritten on every login and cleared on logout. TokenVersion guards
// fingerprint writes: every successful write increments it and writers must
// present the version they read (compare-and-swap), so two concurrent logins
// cannot silently clobber each other's session.
type User struct {
	ID                 uint64    // users.id
	Email              string    // users.email, stored lowercase
	PasswordHash       string    // users.password_hash (bcrypt)
	Role               Role      // users.role
	Plan               Plan      // users.plan
	TokensUsed         uint64    // users.tokens_used
	RefreshFingerprint string    // users.refresh_fingerprint, "" when no session
	TokenVersion       uint64    // users.token_version (optimistic lock)
	CreatedAt          time.Time // users.created_at
	UpdatedAt          time.Time // users.updated_at
}

// HasSession reports whether a refresh token is currently valid for the user.
func (u User) HasSession() bool { return u.RefreshFingerprint != "" }
