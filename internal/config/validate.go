package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Exchange == "" {
		return errors.New("exchange is required")
	}

	f := &c.Fetch
	if f.Endpoint == "" {
		return errors.New("fetch.endpoint is required")
	}

	if f.Pagination.PageSize < 1 || f.Pagination.PageSize > 200 {
		return fmt.Errorf("fetch.pagination.page_size must be between 1 and 200, got %d", f.Pagination.PageSize)
	}
	if f.Pagination.CacheSize < 1 {
		return errors.New("fetch.pagination.cache_size must be >= 1")
	}

	if f.RateLimit.RequestsPerSecond < 0.1 || f.RateLimit.RequestsPerSecond > 10 {
		return fmt.Errorf("fetch.rate_limit.requests_per_second must be between 0.1 and 10, got %g", f.RateLimit.RequestsPerSecond)
	}
	if f.RateLimit.PageDelay < 0 {
		return errors.New("fetch.rate_limit.page_delay must be >= 0")
	}

	if f.Retry.MaxAttempts < 1 || f.Retry.MaxAttempts > 10 {
		return fmt.Errorf("fetch.retry.max_attempts must be between 1 and 10, got %d", f.Retry.MaxAttempts)
	}
	if f.Retry.BackoffMultiplier < 1 {
		return errors.New("fetch.retry.backoff_multiplier must be >= 1.0")
	}
	if f.Retry.InitialDelay <= 0 {
		return errors.New("fetch.retry.initial_delay must be > 0")
	}

	if f.Timeout <= 0 {
		return errors.New("fetch.timeout must be > 0")
	}

	if c.Storage.BaseDir == "" {
		return errors.New("storage.base_dir is required")
	}

	if c.Catalog.Enabled {
		if err := c.Catalog.Database.validate("catalog.database"); err != nil {
			return err
		}
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
