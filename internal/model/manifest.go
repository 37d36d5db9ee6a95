package model

import "time"

// ManifestVersion is the manifest schema version.
const ManifestVersion = "1.0"

// ErrorSample is one recorded failure, bounded in count per run.
type ErrorSample struct {
	Type            string `json:"type"`
	Page            int    `json:"page,omitempty"`
	Symbol          string `json:"symbol,omitempty"`
	Error           string `json:"error"`
	ResponseSnippet string `json:"response_snippet,omitempty"`
}

// FetchStats summarizes one fetch run for the manifest.
type FetchStats struct {
	TotalPages      int            `json:"total_pages"`
	TotalRecords    int            `json:"total_records"`
	UniqueRecords   int            `json:"unique_records"`
	FailedPages     int            `json:"failed_pages"`
	RetryCount      int            `json:"retry_count"`
	DurationSeconds float64        `json:"duration_seconds"`
	Categories      map[string]int `json:"categories"`
}

// PaginationInfo echoes the pagination settings used for a run.
type PaginationInfo struct {
	PageSize  int `json:"page_size"`
	CacheSize int `json:"cache_size"`
}

// RateLimitInfo echoes the rate-limit settings used for a run.
type RateLimitInfo struct {
	RequestsPerSecond float64 `json:"requests_per_second"`
	PageDelaySeconds  float64 `json:"page_delay_seconds"`
}

// RetryInfo echoes the retry settings used for a run.
type RetryInfo struct {
	MaxAttempts         int     `json:"max_attempts"`
	BackoffMultiplier   float64 `json:"backoff_multiplier"`
	InitialDelaySeconds float64 `json:"initial_delay_seconds"`
}

// Manifest is the reproducibility record for one snapshot.
//
// A snapshot is valid only if its manifest exists. The manifest never
// contains cookies or other credential-bearing headers; request
// headers must pass through config.SafeHeaders before ending up here.
type Manifest struct {
	Exchange string    `json:"exchange"`
	Asof     time.Time `json:"asof"`
	RunID    string    `json:"run_id"`
	Version  string    `json:"version"`

	Endpoint    string            `json:"endpoint"`
	QueryParams map[string]string `json:"query_params"`
	Filters     map[string]string `json:"filters"`
	Pagination  PaginationInfo    `json:"pagination"`
	Headers     map[string]string `json:"headers"`

	RateLimit      RateLimitInfo `json:"rate_limit"`
	Retry          RetryInfo     `json:"retry"`
	TimeoutSeconds float64       `json:"timeout_seconds"`

	Stats       FetchStats    `json:"stats"`
	Errors      []ErrorSample `json:"errors"`
	OutputFiles []string      `json:"output_files"`
}
