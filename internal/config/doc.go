// Package config loads and validates YAML configuration for universe fetches.
//
// Config files support ${VAR} environment variable substitution. Load
// order: parse YAML, apply defaults, validate. Cookies and the Cookie
// header are treated as secrets and never exposed via SafeHeaders.
package config
