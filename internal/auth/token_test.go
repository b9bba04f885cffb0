package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenithdocs/zenith-api/internal/model"
)

const (
	testAccessSecret  = "access-secret-for-tests"
	testRefreshSecret = "refresh-secret-for-tests"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken(testAccessSecret, 42, model.RoleAdmin, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Minute), tok.Exp, 5*time.Second)

	id, err := ParseAccessToken(testAccessSecret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id.SubjectID)
	assert.Equal(t, model.RoleAdmin, id.Role)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	tok, err := NewRefreshToken(testRefreshSecret, 7, 24*time.Hour)
	require.NoError(t, err)

	uid, err := ParseRefreshToken(testRefreshSecret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), uid)
}

func TestExpiredTokenRejected(t *testing.T) {
	tok, err := NewAccessToken(testAccessSecret, 1, model.RoleUser, -time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(testAccessSecret, tok.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	ref, err := NewRefreshToken(testRefreshSecret, 1, -time.Minute)
	require.NoError(t, err)

	_, err = ParseRefreshToken(testRefreshSecret, ref.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestWrongSecretRejected(t *testing.T) {
	tok, err := NewAccessToken(testAccessSecret, 1, model.RoleUser, time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken("some-other-secret", tok.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

// An access token must never verify as a refresh token and vice versa, even
// when the verifier is handed the matching secret: claim-shape validation is
// structural, not convention.
func TestTokenKindSeparation(t *testing.T) {
	access, err := NewAccessToken(testAccessSecret, 5, model.RoleUser, time.Minute)
	require.NoError(t, err)
	refresh, err := NewRefreshToken(testRefreshSecret, 5, time.Minute)
	require.NoError(t, err)

	// Cross-secret: signature checks alone already reject.
	_, err = ParseRefreshToken(testRefreshSecret, access.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = ParseAccessToken(testAccessSecret, refresh.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	// Same-secret: claim shape still rejects.
	_, err = ParseRefreshToken(testAccessSecret, access.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = ParseAccessToken(testRefreshSecret, refresh.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestGarbageTokensRejected(t *testing.T) {
	for _, raw := range []string{"", "garbage", "a.b.c", "eyJhbGciOiJIUzI1NiJ9.e30."} {
		_, err := ParseAccessToken(testAccessSecret, raw)
		assert.ErrorIs(t, err, ErrTokenInvalid, "raw=%q", raw)
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("token-a")
	b := Fingerprint("token-b")

	assert.Len(t, a, 64) // sha256 hex
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, Fingerprint("token-a"))
}
