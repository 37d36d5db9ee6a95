package config

import "time"

// Default values for optional configuration fields. Endpoint and query
// defaults target the SSE commonQuery.do stock list service.
const (
	DefaultExchange          = "sse"
	DefaultEndpoint          = "https://query.sse.com.cn/sseQuery/commonQuery.do"
	DefaultPageSize          = 25
	DefaultCacheSize         = 1
	DefaultJSONPParamName    = "jsonCallBack"
	DefaultCallbackPrefix    = "jsonpCallback"
	DefaultRequestsPerSecond = 2.0
	DefaultPageDelay         = 500 * time.Millisecond
	DefaultMaxAttempts       = 3
	DefaultBackoffMultiplier = 2.0
	DefaultInitialDelay      = 1 * time.Second
	DefaultTimeout           = 30 * time.Second
	DefaultBaseDir           = "data/universe"
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 10
	DefaultMinConns          = 2
)

func defaultQuery() map[string]string {
	return map[string]string{
		"sqlId":        "COMMON_SSE_CP_GPJCTPZ_GPLB_GP_L",
		"type":         "inParams",
		"isPagination": "true",
	}
}

func defaultFilters() map[string]string {
	return map[string]string{
		"STOCK_TYPE":     "1",
		"REG_PROVINCE":   "",
		"CSRC_CODE":      "",
		"STOCK_CODE":     "",
		"COMPANY_STATUS": "2,4,5,7,8",
	}
}

func (c *Config) applyDefaults() {
	if c.Exchange == "" {
		c.Exchange = DefaultExchange
	}

	f := &c.Fetch
	if f.Endpoint == "" {
		f.Endpoint = DefaultEndpoint
	}
	if len(f.Query) == 0 {
		f.Query = defaultQuery()
	}
	if len(f.Filters) == 0 {
		f.Filters = defaultFilters()
	}
	if f.Pagination.PageSize == 0 {
		f.Pagination.PageSize = DefaultPageSize
	}
	if f.Pagination.CacheSize == 0 {
		f.Pagination.CacheSize = DefaultCacheSize
	}
	if f.JSONP.ParamName == "" {
		f.JSONP.ParamName = DefaultJSONPParamName
	}
	if f.JSONP.CallbackPrefix == "" {
		f.JSONP.CallbackPrefix = DefaultCallbackPrefix
	}
	if f.RateLimit.RequestsPerSecond == 0 {
		f.RateLimit.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if f.RateLimit.PageDelay == 0 {
		f.RateLimit.PageDelay = DefaultPageDelay
	}
	if f.Retry.MaxAttempts == 0 {
		f.Retry.MaxAttempts = DefaultMaxAttempts
	}
	if f.Retry.BackoffMultiplier == 0 {
		f.Retry.BackoffMultiplier = DefaultBackoffMultiplier
	}
	if f.Retry.InitialDelay == 0 {
		f.Retry.InitialDelay = DefaultInitialDelay
	}
	if f.Timeout == 0 {
		f.Timeout = DefaultTimeout
	}

	if c.Storage.BaseDir == "" {
		c.Storage.BaseDir = DefaultBaseDir
	}

	if c.Catalog.Enabled {
		applyDBDefaults(&c.Catalog.Database)
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
