package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}
	if strings.TrimSpace(c.Auth.JWTIssuer) == "" {
		return errors.New("auth.jwt_issuer is required")
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("auth.access_token_ttl must be > 0 (got %v)", c.Auth.AccessTokenTTL)
	}

	switch c.Storage.Driver {
	case StoragePostgres:
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for the postgres storage driver")
		}
		if c.Database.MinConns > c.Database.MaxConns {
			return fmt.Errorf("database.min_conns (%d) exceeds max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
		}
		if c.Database.LockTimeout < 0 {
			return fmt.Errorf("database.lock_timeout must be >= 0 (got %v)", c.Database.LockTimeout)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("storage.driver must be %q or %q (got %q)", StoragePostgres, StorageMemory, c.Storage.Driver)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	if c.Documents.Root == "" {
		return errors.New("documents.root is required")
	}
	if c.Documents.MaxBytes <= 0 {
		return fmt.Errorf("documents.max_bytes must be > 0 (got %d)", c.Documents.MaxBytes)
	}

	if c.Assignment.ReviewInterval < 0 {
		return fmt.Errorf("assignment.review_interval must be >= 0 (got %v)", c.Assignment.ReviewInterval)
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("rate_limit.requests_per_minute must be >= 0 (got %d)", c.RateLimit.RequestsPerMinute)
	}

	return nil
}
