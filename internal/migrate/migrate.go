// Package migrate applies embedded SQL migrations on startup.
package migrate

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"

	"github.com/zenithdocs/zenith-api/migrations"
)

// Up runs all pending migrations from the embedded filesystem against the
// already opened connection pool.
func Up(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("mysql"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}
