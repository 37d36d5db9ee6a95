package config

import (
	"sort"
	"strings"
	"time"
)

// Config is the root configuration for a universe fetch run.
type Config struct {
	Exchange string        `yaml:"exchange"`
	Fetch    FetchConfig   `yaml:"fetch"`
	Storage  StorageConfig `yaml:"storage"`
	Catalog  CatalogConfig `yaml:"catalog"`
}

// FetchConfig holds everything the transport client and pagination
// engine need for one exchange endpoint.
type FetchConfig struct {
	Endpoint string            `yaml:"endpoint"`
	Query    map[string]string `yaml:"query"`
	Filters  map[string]string `yaml:"filters"`
	Headers  map[string]string `yaml:"headers"`
	Cookies  map[string]string `yaml:"cookies"`

	Pagination PaginationConfig `yaml:"pagination"`
	JSONP      JSONPConfig      `yaml:"jsonp"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Retry      RetryConfig      `yaml:"retry"`
	Timeout    time.Duration    `yaml:"timeout"`
}

// PaginationConfig holds page-request settings.
type PaginationConfig struct {
	PageSize  int `yaml:"page_size"`
	CacheSize int `yaml:"cache_size"`
}

// JSONPConfig holds JSONP envelope settings.
type JSONPConfig struct {
	ParamName      string `yaml:"param_name"`
	CallbackPrefix string `yaml:"callback_prefix"`
}

// RateLimitConfig holds request pacing settings.
type RateLimitConfig struct {
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	PageDelay         time.Duration `yaml:"page_delay"`
}

// RetryConfig holds transient-failure retry settings.
type RetryConfig struct {
	MaxAttempts       int           `yaml:"max_attempts"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
	InitialDelay      time.Duration `yaml:"initial_delay"`
}

// StorageConfig holds snapshot storage settings.
type StorageConfig struct {
	BaseDir string `yaml:"base_dir"`
}

// CatalogConfig holds the optional Postgres snapshot catalog settings.
type CatalogConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Database DBConfig `yaml:"database"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// CookieHeader builds a Cookie header value from configured cookie
// pairs. Returns "" when no cookies are configured.
func (f *FetchConfig) CookieHeader() string {
	if len(f.Cookies) == 0 {
		return ""
	}
	keys := make([]string, 0, len(f.Cookies))
	for k := range f.Cookies {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+f.Cookies[k])
	}
	return strings.Join(pairs, "; ")
}

// SafeHeaders returns request headers with credential-bearing entries
// stripped, suitable for logging and manifests.
func (f *FetchConfig) SafeHeaders() map[string]string {
	safe := make(map[string]string, len(f.Headers))
	for k, v := range f.Headers {
		if strings.EqualFold(k, "cookie") || strings.EqualFold(k, "authorization") {
			continue
		}
		safe[k] = v
	}
	return safe
}
