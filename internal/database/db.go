// Package database opens the MySQL credential store.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/zenithdocs/zenith-api/internal/config"
)

// pingTimeout bounds the startup connectivity check.
const pingTimeout = 5 * time.Second

// Open connects to MySQL with the pool sized from configuration and verifies
// connectivity before returning. DATETIME columns decode into time.Time in
// UTC so token expiry comparisons never depend on the session time zone.
func Open(cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn(cfg))
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func dsn(cfg config.Config) string {
	auth := cfg.DBUser
	if cfg.DBPass != "" {
		auth = cfg.DBUser + ":" + cfg.DBPass
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, cfg.DBHost, cfg.DBPort, cfg.DBName)
}
