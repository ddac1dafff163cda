// Provides response headers and writers for rate limiting.

package ratelimit

import (
	"net/http"
	"strconv"
)

// WriteHeaders writes rate limit headers to the response.
// Headers are written on all responses (both success and 429).
func WriteHeaders(w http.ResponseWriter, result Result) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
	if !result.Allowed {
		h.Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
	}
}

// ResponseWriter injects rate limit headers before the response is written.
type ResponseWriter struct {
	http.ResponseWriter
	result      Result
	wroteHeader bool
}

// NewResponseWriter creates a response writer that injects rate limit headers.
func NewResponseWriter(w http.ResponseWriter, result Result) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, result: result}
}

// WriteHeader injects rate limit headers before writing the status code.
func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.writeHeaders()
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Write ensures headers are written before any body content.
func (rw *ResponseWriter) Write(b []byte) (int, error) {
	rw.writeHeaders()
	return rw.ResponseWriter.Write(b)
}

// Unwrap returns the underlying ResponseWriter.
func (rw *ResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func (rw *ResponseWriter) writeHeaders() {
	if !rw.wroteHeader {
		WriteHeaders(rw.ResponseWriter, rw.result)
		rw.wroteHeader = true
	}
}

// BuildKey creates a bucket key from a client identifier and a tier name.
func BuildKey(identifier, tier string) string {
	return "ip:" + identifier + ":" + tier
}

// IsMutating returns true for HTTP methods that modify state.
func IsMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
