package api

import (
	"errors"
	"strings"
	"testing"
)

func TestUnwrapJSONP(t *testing.T) {
	t.Run("strict match", func(t *testing.T) {
		got, err := unwrapJSONP(`jsonpCallback12345678({"pageHelp":{}})`, "jsonpCallback12345678")
		if err != nil {
			t.Fatalf("unwrapJSONP failed: %v", err)
		}
		if got != `{"pageHelp":{}}` {
			t.Errorf("payload = %q, want %q", got, `{"pageHelp":{}}`)
		}
	})

	t.Run("trailing semicolon and whitespace", func(t *testing.T) {
		got, err := unwrapJSONP("  jsonpCallback99 ( {\"a\":1} ) ;\n", "jsonpCallback99")
		if err != nil {
			t.Fatalf("unwrapJSONP failed: %v", err)
		}
		if got != `{"a":1}` {
			t.Errorf("payload = %q, want %q", got, `{"a":1}`)
		}
	})

	t.Run("lenient fallback on mismatched callback", func(t *testing.T) {
		// The exchange occasionally answers with a different callback
		// identifier than requested.
		got, err := unwrapJSONP(`otherCallback42({"pageHelp":{"total":3}})`, "jsonpCallback12345678")
		if err != nil {
			t.Fatalf("unwrapJSONP failed: %v", err)
		}
		if !strings.Contains(got, `"total":3`) {
			t.Errorf("payload = %q, want total field present", got)
		}
	})

	t.Run("multiline payload", func(t *testing.T) {
		got, err := unwrapJSONP("cb({\n  \"x\": 1\n})", "cb")
		if err != nil {
			t.Fatalf("unwrapJSONP failed: %v", err)
		}
		if !strings.Contains(got, `"x": 1`) {
			t.Errorf("payload = %q, want x field present", got)
		}
	})

	t.Run("no wrapper at all", func(t *testing.T) {
		_, err := unwrapJSONP(`{"pageHelp":{}}`, "cb")
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("err = %v, want *APIError", err)
		}
		if !strings.Contains(apiErr.Message, "JSONP") {
			t.Errorf("Message = %q, want JSONP parse failure", apiErr.Message)
		}
	})

	t.Run("system error marker", func(t *testing.T) {
		_, err := unwrapJSONP(`cb({"error":"System Error"})`, "cb")
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("err = %v, want *APIError", err)
		}
		if !strings.Contains(apiErr.Message, "System Error") {
			t.Errorf("Message = %q, want System Error marker", apiErr.Message)
		}
	})

	t.Run("busy marker", func(t *testing.T) {
		_, err := unwrapJSONP("系统繁忙，请稍后再试", "cb")
		if err == nil {
			t.Fatal("expected error for busy marker")
		}
	})

	t.Run("html error page", func(t *testing.T) {
		_, err := unwrapJSONP("<!DOCTYPE html><html><body>502</body></html>", "cb")
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("err = %v, want *APIError", err)
		}
		if !strings.Contains(apiErr.Message, "HTML") {
			t.Errorf("Message = %q, want HTML error page", apiErr.Message)
		}
	})

	t.Run("snippet is truncated", func(t *testing.T) {
		long := "<html>" + strings.Repeat("x", 2000)
		_, err := unwrapJSONP(long, "cb")
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("err = %v, want *APIError", err)
		}
		if len(apiErr.Snippet) != snippetLen {
			t.Errorf("len(Snippet) = %d, want %d", len(apiErr.Snippet), snippetLen)
		}
	})
}

func TestCallbackName(t *testing.T) {
	c := NewClient(testFetchConfig("http://example.com"))

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		name := c.callbackName()
		if !strings.HasPrefix(name, "jsonpCallback") {
			t.Fatalf("callbackName() = %q, want jsonpCallback prefix", name)
		}
		digits := strings.TrimPrefix(name, "jsonpCallback")
		if len(digits) != 8 {
			t.Fatalf("callbackName() = %q, want 8 random digits", name)
		}
		seen[name] = true
	}
	if len(seen) < 2 {
		t.Error("callback names should vary between calls")
	}
}
