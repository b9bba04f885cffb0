package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/zenithdocs/zenith-api/internal/model"
)

// UserRepo is the MySQL-backed UserStore.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var _ UserStore = (*UserRepo)(nil)

const userColumns = "id,email,password_hash,role,plan,tokens_used,refresh_fingerprint,token_version,created_at,updated_at"

// Create inserts a user and fills in its assigned ID. The caller hashes the
// password and normalizes the email before reaching this layer.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role, plan) VALUES (?,?,?,?)",
		u.Email, u.PasswordHash, string(u.Role), string(u.Plan))
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getOne(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// List returns all users ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update persists mutable profile fields (email, password hash, plan).
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET email=?, password_hash=?, plan=? WHERE id=?",
		u.Email, u.PasswordHash, string(u.Plan), u.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL also reports 0 when nothing changed; re-check existence.
		if _, gerr := r.GetByID(ctx, u.ID); gerr != nil {
			return gerr
		}
	}
	return nil
}

// Delete removes a user; the fingerprint disappears with the row, revoking
// any outstanding refresh token.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRefreshFingerprint is the only write path for session state. The WHERE
// clause on token_version makes rotation a compare-and-swap: a concurrent
// login or logout that already rotated the row leaves zero affected rows and
// the caller gets ErrVersionConflict instead of clobbering the newer session.
func (r *UserRepo) SetRefreshFingerprint(ctx context.Context, id uint64, fingerprint string, expectedVersion uint64) error {
	fp := sql.NullString{String: fingerprint, Valid: fingerprint != ""}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_fingerprint=?, token_version=token_version+1 WHERE id=? AND token_version=?",
		fp, id, expectedVersion)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, gerr := r.GetByID(ctx, id); gerr != nil {
			return gerr
		}
		return ErrVersionConflict
	}
	return nil
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg interface{}) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		u    model.User
		role string
		plan string
		fp   sql.NullString
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &plan,
		&u.TokensUsed, &fp, &u.TokenVersion, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)
	u.Plan = model.Plan(plan)
	if fp.Valid {
		u.RefreshFingerprint = fp.String
	}
	return u, nil
}

// isDuplicate detects MySQL error 1062 (duplicate entry).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
