package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	ErrMissingDatabaseConfig = errors.New("missing required database environment variables")
	ErrInvalidPort           = errors.New("invalid port")
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	AppPort string
	AppEnv  string

	DBHost      string
	DBPort      int
	DBUser      string
	DBPassword  string
	DBName      string
	DatabaseURL string

	// Pool sizing
	DBMaxConns       int32
	DBMaxIdleTime    time.Duration
	DBConnectTimeout time.Duration

	SchemaPath string
	PublicDir  string

	LogLevel string
	LogJSON  bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	APIRateLimit   int
	APIRateWindow  time.Duration
	AllowedOrigins []string
}

// Load reads .env (if present) and then the process environment. Relative
// schema and public paths fall back to the binary's directory when the
// working directory does not hold them.
func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		return nil, err
	}
	cfg.SchemaPath = ResolvePath(cfg.SchemaPath, os.Executable)
	cfg.PublicDir = ResolvePath(cfg.PublicDir, os.Executable)
	return cfg, nil
}

// ResolvePath returns path unchanged when it is absolute or exists relative
// to the working directory. Otherwise it tries the same name next to the
// executable reported by exe, and returns path as given if that is missing too.
func ResolvePath(path string, exe func() (string, error)) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	bin, err := exe()
	if err != nil {
		return path
	}
	if resolved, err := filepath.EvalSymlinks(bin); err == nil {
		bin = resolved
	}
	candidate := filepath.Join(filepath.Dir(bin), path)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return path
}

// FromEnv builds a Config from the given lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	first := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				return v
			}
		}
		return ""
	}
	intOr := func(def int, keys ...string) int {
		if v := first(keys...); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				return n
			}
		}
		return def
	}

	cfg := &Config{
		AppPort:          "3000",
		AppEnv:           EnvProduction,
		DBHost:           "localhost",
		DBPort:           5432,
		DBMaxConns:       20,
		DBMaxIdleTime:    30 * time.Second,
		DBConnectTimeout: 5 * time.Second,
		SchemaPath:       "schema.json",
		PublicDir:        "public",
		LogLevel:         "info",
		AllowedOrigins:   []string{"*"},
	}

	if v := first("PORT", "APP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err != nil || n <= 0 || n > 65535 {
			return nil, fmt.Errorf("%w: PORT=%q", ErrInvalidPort, v)
		}
		cfg.AppPort = v
	}
	if v := first("APP_ENV", "NODE_ENV"); v != "" {
		cfg.AppEnv = strings.ToLower(v)
	}

	if v := first("PGHOST", "DB_HOST"); v != "" {
		cfg.DBHost = v
	}
	if v := first("PGPORT", "DB_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 65535 {
			return nil, fmt.Errorf("%w: PGPORT/DB_PORT=%q", ErrInvalidPort, v)
		}
		cfg.DBPort = n
	}
	cfg.DBUser = first("PGUSER", "DB_USER")
	cfg.DBPassword = first("PGPASSWORD", "DB_PASSWORD")
	cfg.DBName = first("PGDATABASE", "DB_NAME")
	cfg.DatabaseURL = first("DATABASE_URL")

	if cfg.DatabaseURL == "" {
		var missing []string
		if cfg.DBUser == "" {
			missing = append(missing, "user")
		}
		if cfg.DBPassword == "" {
			missing = append(missing, "password")
		}
		if cfg.DBName == "" {
			missing = append(missing, "database")
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s. Set PGUSER/DB_USER, PGPASSWORD/DB_PASSWORD, PGDATABASE/DB_NAME (and optionally PGHOST/DB_HOST, PGPORT/DB_PORT)",
				ErrMissingDatabaseConfig, strings.Join(missing, ", "))
		}
	}

	if v := first("SCHEMA_PATH"); v != "" {
		cfg.SchemaPath = v
	}
	if v := first("PUBLIC_DIR"); v != "" {
		cfg.PublicDir = v
	}
	if v := first("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	cfg.LogJSON = strings.EqualFold(first("LOG_FORMAT"), "json")

	cfg.RedisAddr = first("REDIS_ADDR")
	cfg.RedisPassword = first("REDIS_PASSWORD")
	cfg.RedisDB = intOr(0, "REDIS_DB")

	cfg.APIRateLimit = intOr(120, "API_RATE_LIMIT")
	cfg.APIRateWindow = time.Duration(intOr(60, "API_RATE_WINDOW_SECONDS")) * time.Second

	if v := first("ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.AllowedOrigins = origins
	}

	return cfg, nil
}

// IsDevelopment reports whether verbose error details may be returned to clients.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

// DSN returns DATABASE_URL when set, otherwise a postgres URL built from the parts.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:   "/" + c.DBName,
	}
	return u.String()
}
