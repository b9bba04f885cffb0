package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenithdocs/zenith-api/internal/model"
)

func newMockRepo(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepo(db), mock
}

func userRows(u model.User) *sqlmock.Rows {
	fp := sql.NullString{String: u.RefreshFingerprint, Valid: u.RefreshFingerprint != ""}
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "role", "plan",
		"tokens_used", "refresh_fingerprint", "token_version", "created_at", "updated_at",
	}).AddRow(u.ID, u.Email, u.PasswordHash, string(u.Role), string(u.Plan),
		u.TokensUsed, fp, u.TokenVersion, u.CreatedAt, u.UpdatedAt)
}

func TestCreateAssignsID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO users (email, password_hash, role, plan) VALUES (?,?,?,?)").
		WithArgs("alice@example.com", "hash", "user", "free").
		WillReturnResult(sqlmock.NewResult(7, 1))

	u := model.User{Email: "alice@example.com", PasswordHash: "hash", Role: model.RoleUser, Plan: model.PlanFree}
	require.NoError(t, repo.Create(context.Background(), &u))
	assert.Equal(t, uint64(7), u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO users (email, password_hash, role, plan) VALUES (?,?,?,?)").
		WithArgs("alice@example.com", "hash", "user", "free").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice@example.com' for key 'users.email'"})

	u := model.User{Email: "alice@example.com", PasswordHash: "hash", Role: model.RoleUser, Plan: model.PlanFree}
	err := repo.Create(context.Background(), &u)
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOtherErrorPassesThrough(t *testing.T) {
	repo, mock := newMockRepo(t)

	// Only the driver's duplicate-key error maps to ErrEmailExists; anything
	// mentioning 1062 in passing does not.
	cause := errors.New("read tcp 10.0.0.1:1062: connection reset")
	mock.ExpectExec("INSERT INTO users (email, password_hash, role, plan) VALUES (?,?,?,?)").
		WithArgs("alice@example.com", "hash", "user", "free").
		WillReturnError(cause)

	u := model.User{Email: "alice@example.com", PasswordHash: "hash", Role: model.RoleUser, Plan: model.PlanFree}
	err := repo.Create(context.Background(), &u)
	assert.NotErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmailNormalizes(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	stored := model.User{
		ID: 3, Email: "alice@example.com", PasswordHash: "hash",
		Role: model.RoleAdmin, Plan: model.PlanPremium,
		RefreshFingerprint: "abc123", TokenVersion: 4,
		CreatedAt: now, UpdatedAt: now,
	}
	mock.ExpectQuery("SELECT " + userColumns + " FROM users WHERE email=? LIMIT 1").
		WithArgs("alice@example.com").
		WillReturnRows(userRows(stored))

	u, err := repo.GetByEmail(context.Background(), "  Alice@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, u.ID)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.Equal(t, "abc123", u.RefreshFingerprint)
	assert.Equal(t, uint64(4), u.TokenVersion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT " + userColumns + " FROM users WHERE id=? LIMIT 1").
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

const casQuery = "UPDATE users SET refresh_fingerprint=?, token_version=token_version+1 WHERE id=? AND token_version=?"

func TestSetRefreshFingerprint(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(casQuery).
		WithArgs("fp-new", uint64(3), uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetRefreshFingerprint(context.Background(), 3, "fp-new", 4)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetRefreshFingerprintClears(t *testing.T) {
	repo, mock := newMockRepo(t)

	// Empty fingerprint is stored as NULL.
	mock.ExpectExec(casQuery).
		WithArgs(nil, uint64(3), uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetRefreshFingerprint(context.Background(), 3, "", 4)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetRefreshFingerprintVersionConflict(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(casQuery).
		WithArgs("fp-new", uint64(3), uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	// Zero rows: the repo re-checks existence to tell a stale version from a
	// deleted user.
	mock.ExpectQuery("SELECT " + userColumns + " FROM users WHERE id=? LIMIT 1").
		WithArgs(uint64(3)).
		WillReturnRows(userRows(model.User{ID: 3, Email: "a@b.c", Role: model.RoleUser, Plan: model.PlanFree, TokenVersion: 5}))

	err := repo.SetRefreshFingerprint(context.Background(), 3, "fp-new", 4)
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetRefreshFingerprintUserGone(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(casQuery).
		WithArgs("fp-new", uint64(3), uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT " + userColumns + " FROM users WHERE id=? LIMIT 1").
		WithArgs(uint64(3)).
		WillReturnError(sql.ErrNoRows)

	err := repo.SetRefreshFingerprint(context.Background(), 3, "fp-new", 4)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM users WHERE id=?").
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
