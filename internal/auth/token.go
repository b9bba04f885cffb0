// Package auth issues and verifies the two credential kinds: short-lived
// access tokens carried in the Authorization header and long-lived refresh
// tokens carried only in an http-only cookie. The kinds are separated twice
// over: each is signed with its own secret, and each has its own claim shape
// (access carries sub+role, refresh carries user_id and no role). Verification
// enforces both, so a refresh token can never pass as an access token even if
// the secrets were ever misconfigured to the same value.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/zenithdocs/zenith-api/internal/model"
)

// Identity is the decoded assertion an access token makes about a request.
type Identity struct {
	SubjectID uint64
	Role      model.Role
}

// AccessToken is a signed JWT access token along with its expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// RefreshToken is a signed JWT refresh token along with its expiry. Only the
// SHA-256 fingerprint of Token is persisted server-side.
type RefreshToken struct {
	Token string
	Exp   time.Time
}

// Verification failures are collapsed into two sentinels so callers can map
// them onto distinct response codes: expired tells a client to call refresh,
// invalid tells it to re-authenticate.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// NewAccessToken builds and signs an HS256 JWT asserting {sub, role}.
func NewAccessToken(secret string, userID uint64, role model.Role, ttl time.Duration) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(userID, 10),
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken builds and signs an HS256 JWT asserting {user_id}. It
// deliberately carries no role claim: role is re-read from the credential
// store at refresh time, so a demoted admin does not keep minting admin
// access tokens for the refresh token's lifetime.
func NewRefreshToken(secret string, userID uint64, ttl time.Duration) (RefreshToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"user_id": strconv.FormatUint(userID, 10),
		"iat":     now.Unix(),
		"exp":     exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature, expiry and claim shape of an access
// token and returns the identity it asserts.
func ParseAccessToken(secret, raw string) (Identity, error) {
	claims, err := parseHS256(secret, raw)
	if err != nil {
		return Identity{}, err
	}
	// Shape check: a refresh token must never be accepted here.
	if _, hasRefreshShape := claims["user_id"]; hasRefreshShape {
		return Identity{}, ErrTokenInvalid
	}
	sub, err := claimUint64(claims, "sub")
	if err != nil {
		return Identity{}, ErrTokenInvalid
	}
	roleStr, _ := claims["role"].(string)
	role, err := model.ParseRole(roleStr)
	if err != nil {
		return Identity{}, ErrTokenInvalid
	}
	return Identity{SubjectID: sub, Role: role}, nil
}

// ParseRefreshToken verifies signature, expiry and claim shape of a refresh
// token and returns the subject it names. The caller must still match the
// token's fingerprint against the credential store before trusting it.
func ParseRefreshToken(secret, raw string) (uint64, error) {
	claims, err := parseHS256(secret, raw)
	if err != nil {
		return 0, err
	}
	// Shape check: an access token must never be accepted here.
	if _, hasAccessShape := claims["role"]; hasAccessShape {
		return 0, ErrTokenInvalid
	}
	uid, err := claimUint64(claims, "user_id")
	if err != nil {
		return 0, ErrTokenInvalid
	}
	return uid, nil
}

// Fingerprint returns the SHA-256 hex digest of a raw token. The store keeps
// only this digest, so a leaked users table yields nothing replayable.
func Fingerprint(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func parseHS256(secret, raw string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// claimUint64 reads a numeric identity claim. Subjects are serialized as
// strings, but json decoding of older tokens may surface numbers, so both
// forms are accepted.
func claimUint64(claims jwt.MapClaims, key string) (uint64, error) {
	switch v := claims[key].(type) {
	case string:
		return strconv.ParseUint(v, 10, 64)
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("negative %s claim", key)
		}
		return uint64(v), nil
	default:
		return 0, fmt.Errorf("missing %s claim", key)
	}
}
