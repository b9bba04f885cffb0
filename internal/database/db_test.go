package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zenithdocs/zenith-api/internal/config"
)

func TestDSN(t *testing.T) {
	cfg := config.Config{
		DBUser: "app",
		DBHost: "db.internal",
		DBPort: "3306",
		DBName: "zenith",
	}
	// Passwordless local setups omit the credential separator entirely.
	assert.Equal(t,
		"app@tcp(db.internal:3306)/zenith?charset=utf8mb4&parseTime=true&loc=UTC",
		dsn(cfg))

	cfg.DBPass = "s3cret"
	assert.Equal(t,
		"app:s3cret@tcp(db.internal:3306)/zenith?charset=utf8mb4&parseTime=true&loc=UTC",
		dsn(cfg))
}
