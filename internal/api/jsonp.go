package api

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
)

// snippetLen bounds diagnostic excerpts of offending response text.
const snippetLen = 500

// lenientPattern matches any identifier-wrapped JSONP body. Used as a
// fallback when the exact callback name fails to match; the strict
// match stays first to keep false-positive risk low.
var lenientPattern = regexp.MustCompile(`^(?s)\w+\s*\(\s*(.*?)\s*\)\s*;?\s*$`)

// callbackName generates a fresh randomized JSONP callback identifier.
// Randomization defeats upstream caching and callback collisions.
func (c *Client) callbackName() string {
	return fmt.Sprintf("%s%d", c.cfg.JSONP.CallbackPrefix, 10000000+rand.Intn(90000000))
}

// unwrapJSONP strips the callbackName(...) wrapper and returns the
// interior JSON text. Known error markers in the body fail fast before
// any unwrapping is attempted.
func unwrapJSONP(text, callbackName string) (string, error) {
	text = strings.TrimSpace(text)

	if strings.Contains(text, "System Error") || strings.Contains(text, "系统繁忙") {
		return "", &APIError{
			Message: "exchange returned System Error",
			Snippet: snippet(text),
		}
	}

	if strings.HasPrefix(text, "<!") || strings.HasPrefix(text, "<html") {
		return "", &APIError{
			Message: "exchange returned HTML error page",
			Snippet: snippet(text),
		}
	}

	strict := regexp.MustCompile(`^(?s)` + regexp.QuoteMeta(callbackName) + `\s*\(\s*(.*?)\s*\)\s*;?\s*$`)
	m := strict.FindStringSubmatch(text)
	if m == nil {
		m = lenientPattern.FindStringSubmatch(text)
	}
	if m == nil {
		return "", &APIError{
			Message: "failed to parse JSONP envelope",
			Snippet: snippet(text),
		}
	}

	return m[1], nil
}

// snippet truncates text for error diagnostics.
func snippet(s string) string {
	if len(s) > snippetLen {
		return s[:snippetLen]
	}
	return s
}
