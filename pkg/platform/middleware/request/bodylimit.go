package request

import (
	"net/http"
)

// DefaultMaxBodyBytes caps enrollment submissions; the form has eight short text fields.
const DefaultMaxBodyBytes int64 = 64 << 10

// BodyLimit wraps request bodies in http.MaxBytesReader. Reads past the limit
// fail, which the form and JSON decoders surface as a 400.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
