// Package api provides the transport client for the SSE commonQuery.do
// JSONP endpoint.
//
// The client owns one HTTP session per fetch run and handles request
// pacing, bounded exponential-backoff retry for transient network
// failures, and JSONP envelope unwrapping. Protocol errors (error-page
// markers, malformed envelopes, missing pageHelp) are surfaced as
// *APIError and are never retried.
package api
