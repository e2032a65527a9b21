// Package middleware provides a framework-free helper for validating HTTP
// JSON request bodies against a compiled schema and shaping Issues for
// JSON responses.
package middleware

import (
	"net/http"

	"github.com/goccy/go-json"

	skemacore "github.com/reoring/skemacore"
)

// DefaultValidateOpt is the recommended posture for HTTP JSON boundaries:
// duplicate keys are errors and request bodies are capped at 1 MiB.
func DefaultValidateOpt() skemacore.ValidateOpt {
	return skemacore.ValidateOpt{
		OnDuplicateKey: skemacore.DupKeyError,
		MaxBytes:       1 << 20,
	}
}

// DecodeRequest validates the request body against s and returns the
// coerced value. The returned error, when non-nil, is always
// skemacore.Issues.
func DecodeRequest(s *skemacore.Schema, r *http.Request, opts ...skemacore.ValidateOpt) (any, error) {
	if len(opts) == 0 {
		opts = []skemacore.ValidateOpt{DefaultValidateOpt()}
	}
	return s.ValidateJSONReader(r.Context(), r.Body, opts...)
}

// ErrorPayload shapes issues for a JSON error response body.
func ErrorPayload(issues skemacore.Issues) map[string]any {
	return map[string]any{"issues": issues}
}

// WriteIssues renders issues as an application/json response with the
// given status code.
func WriteIssues(w http.ResponseWriter, status int, issues skemacore.Issues) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(ErrorPayload(issues))
}
