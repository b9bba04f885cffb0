package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/zenithdocs/zenith-api/internal/model"
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable. Secrets and connection parameters are required and
// enforced with must(); token lifetimes and the bcrypt cost have defaults.
type Config struct {
	Env            string // application environment ("dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	AccessSecret   string // secret signing access tokens
	RefreshSecret  string // secret signing refresh tokens (distinct from AccessSecret)
	APIKey         string // shared x-api-key value gating the /api surface
	AllowedOrigins string // comma-separated CORS origins

	AccessTTL       time.Duration // access token lifetime for regular users
	AdminAccessTTL  time.Duration // access token lifetime for admins
	RefreshTTL      time.Duration // refresh token lifetime for regular users
	AdminRefreshTTL time.Duration // refresh token lifetime for admins
	BcryptCost      int           // bcrypt cost for password hashing

	DBMaxOpenConns    int           // connection pool upper bound
	DBMaxIdleConns    int           // idle connections kept around
	DBConnMaxLifetime time.Duration // recycle connections after this long
}

// Load reads configuration values from environment variables and returns a
// Config. Missing required variables cause the program to exit with a fatal
// log message. The two signing secrets must differ: sharing one collapses the
// structural separation between token kinds.
func Load() Config {
	cfg := Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		AccessSecret:   must("ACCESS_TOKEN_SECRET"),
		RefreshSecret:  must("REFRESH_TOKEN_SECRET"),
		APIKey:         must("API_KEY"),
		AllowedOrigins: getenv("ALLOWED_ORIGINS", "http://localhost:5000"),

		AccessTTL:       time.Duration(envInt("ACCESS_TOKEN_TTL_MIN", 60)) * time.Minute,
		AdminAccessTTL:  time.Duration(envInt("ADMIN_ACCESS_TOKEN_TTL_MIN", 7*24*60)) * time.Minute,
		RefreshTTL:      time.Duration(envInt("REFRESH_TOKEN_TTL_DAYS", 7)) * 24 * time.Hour,
		AdminRefreshTTL: time.Duration(envInt("ADMIN_REFRESH_TOKEN_TTL_DAYS", 30)) * 24 * time.Hour,
		BcryptCost:      envInt("BCRYPT_COST", 10),

		DBMaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetime: envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute),
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		log.Fatal("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	return cfg
}

// IsProd reports whether the app runs in production mode. Cookie security
// flags and error detail redaction key off this.
func (c Config) IsProd() bool { return c.Env == "prod" || c.Env == "production" }

// AccessTTLFor returns the access token lifetime for a role.
func (c Config) AccessTTLFor(role model.Role) time.Duration {
	if role == model.RoleAdmin {
		return c.AdminAccessTTL
	}
	return c.AccessTTL
}

// RefreshTTLFor returns the refresh token lifetime for a role.
func (c Config) RefreshTTLFor(role model.Role) time.Duration {
	if role == model.RoleAdmin {
		return c.AdminRefreshTTL
	}
	return c.RefreshTTL
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}
