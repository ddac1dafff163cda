// Provides middleware for standardizing HTTP handlers.

package server

import (
	"bytes"
	"context"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"reflect"
	"slices"
	"strconv"

	"github.com/maruel/blogdb/internal/history"
	"github.com/maruel/blogdb/internal/server/dto"
	"github.com/maruel/blogdb/internal/server/ratelimit"
	"github.com/maruel/blogdb/internal/server/reqctx"
)

// Config holds the settings shared by every wrapped handler.
type Config struct {
	// MaxRequestBodyBytes caps request bodies. 0 means no limit.
	MaxRequestBodyBytes int64
	// WriteLimiter, if set, limits mutating requests per client IP.
	WriteLimiter *ratelimit.Limiter
	// History, if set, receives a commit of Files after each mutating request.
	History *history.Repo
	// Files maps table names to the table file paths.
	Files map[string]string
	// Version is reported by the health endpoint.
	Version string
}

// addRequestMetadataToContext adds the client IP to the context.
func addRequestMetadataToContext(ctx context.Context, r *http.Request) context.Context {
	return reqctx.WithClientIP(ctx, reqctx.GetClientIP(r))
}

// commitIfMutating commits the table files after a mutating request.
//
// It always attempts the commit regardless of handler outcome. When no file
// changed, no commit is created.
func commitIfMutating(ctx context.Context, r *http.Request, cfg *Config) {
	if cfg == nil || cfg.History == nil || !ratelimit.IsMutating(r.Method) || len(cfg.Files) == 0 {
		return
	}
	files := slices.Sorted(maps.Values(cfg.Files))
	msg := fmt.Sprintf("%s %s", r.Method, r.URL.Path)
	if _, err := cfg.History.Commit(ctx, msg, files...); err != nil {
		slog.ErrorContext(ctx, "Failed to commit table changes", "err", err)
	}
}

// checkRateLimit checks the write limit and wraps the response writer if needed.
// Returns the (possibly wrapped) writer and whether the request should proceed.
func checkRateLimit(w http.ResponseWriter, r *http.Request, cfg *Config) (http.ResponseWriter, bool) {
	if cfg == nil || cfg.WriteLimiter == nil || !ratelimit.IsMutating(r.Method) {
		return w, true
	}
	key := ratelimit.BuildKey(reqctx.GetClientIP(r), "write")
	result := cfg.WriteLimiter.Allow(key)
	w = ratelimit.NewResponseWriter(w, result)
	if !result.Allowed {
		writeRateLimitError(w, result)
		return w, false
	}
	return w, true
}

// readAndDecodeBody reads the request body with size limit and decodes JSON into input.
// Returns false if an error occurred and was written to the response.
func readAndDecodeBody[In any](ctx context.Context, w http.ResponseWriter, r *http.Request, input *In, cfg *Config) bool {
	if cfg != nil && cfg.MaxRequestBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxRequestBodyBytes)
	}

	body, err := io.ReadAll(r.Body)
	if err2 := r.Body.Close(); err == nil {
		err = err2
	}
	if err != nil {
		if maxBytesErr := checkMaxBytesError(err); maxBytesErr != nil {
			apiErr := dto.PayloadTooLarge(maxBytesErr.Limit)
			writeErrorResponseWithCode(w, apiErr.StatusCode(), apiErr.Code(), apiErr.Error(), apiErr.Details())
			return false
		}
		slog.ErrorContext(ctx, "Failed to read request body", "err", err)
		writeBadRequestError(w, "Failed to read request body")
		return false
	}

	if len(body) > 0 {
		d := json.NewDecoder(bytes.NewReader(body))
		d.DisallowUnknownFields()
		if err := d.Decode(input); err != nil {
			slog.ErrorContext(ctx, "Failed to decode request body", "err", err)
			writeBadRequestError(w, "Invalid request body")
			return false
		}
	}
	return true
}

// writeJSONResponse writes a JSON response or error response.
func writeJSONResponse[Out any](ctx context.Context, w http.ResponseWriter, status int, output *Out, err error) {
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorCode := dto.ErrorCodeInternal
		message := "Internal server error"
		details := make(map[string]any)

		var ewsErr dto.ErrorWithStatus
		if errors.As(err, &ewsErr) {
			statusCode = ewsErr.StatusCode()
			errorCode = ewsErr.Code()
			message = ewsErr.Message()
			if d := ewsErr.Details(); d != nil {
				details = d
			}
		}

		// Server-side failures carry file paths and the like; they are only logged.
		if statusCode >= http.StatusInternalServerError {
			slog.ErrorContext(ctx, "Handler error", "err", err, "statusCode", statusCode, "code", errorCode)
		} else {
			slog.InfoContext(ctx, "Handler error", "err", err, "statusCode", statusCode, "code", errorCode)
			message = err.Error()
		}
		writeErrorResponseWithCode(w, statusCode, errorCode, message, details)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(output); err != nil {
		slog.ErrorContext(ctx, "Failed to encode response", "err", err)
	}
}

// Wrap wraps a handler function to work as an http.Handler.
// The function must have signature: func(context.Context, *In) (*Out, error)
// where In can be unmarshalled from JSON and Out is a struct.
// Path parameters can be extracted by tagging struct fields with `path:"name"`.
// *In must implement dto.Validatable.
//
// Example:
//
//	type GetPostRequest struct {
//	    ID int `path:"id" json:"-"`
//	}
//
//	func (h *Handler) GetPost(ctx context.Context, req *GetPostRequest) (*Response, error)
func Wrap[In any, PtrIn interface {
	*In
	dto.Validatable
}, Out any](fn func(context.Context, PtrIn) (*Out, error), cfg *Config) http.Handler {
	return wrap[In, PtrIn, Out](fn, cfg, http.StatusOK)
}

// WrapCreated is like Wrap but answers 201 Created on success.
func WrapCreated[In any, PtrIn interface {
	*In
	dto.Validatable
}, Out any](fn func(context.Context, PtrIn) (*Out, error), cfg *Config) http.Handler {
	return wrap[In, PtrIn, Out](fn, cfg, http.StatusCreated)
}

func wrap[In any, PtrIn interface {
	*In
	dto.Validatable
}, Out any](fn func(context.Context, PtrIn) (*Out, error), cfg *Config, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := addRequestMetadataToContext(r.Context(), r)

		var ok bool
		if w, ok = checkRateLimit(w, r, cfg); !ok {
			return
		}

		input := new(In)
		if !readAndDecodeBody(ctx, w, r, input, cfg) {
			return
		}

		if err := populatePathParams(r, input); err != nil {
			handleValidationError(ctx, w, err)
			return
		}
		populateQueryParams(r, input)

		if err := PtrIn(input).Validate(); err != nil {
			handleValidationError(ctx, w, err)
			return
		}

		output, err := fn(ctx, PtrIn(input))
		commitIfMutating(ctx, r, cfg)
		writeJSONResponse(ctx, w, status, output, err)
	})
}

// checkMaxBytesError checks if an error is a MaxBytesError and returns it, or nil.
func checkMaxBytesError(err error) *http.MaxBytesError {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return maxBytesErr
	}
	return nil
}

// populatePathParams extracts path parameters from the request and populates
// struct fields tagged with `path:"paramName"`.
//
// Integer fields that do not parse yield an INVALID_FORMAT error.
func populatePathParams(r *http.Request, input any) error {
	val := reflect.ValueOf(input)
	if val.Kind() != reflect.Pointer {
		return nil
	}

	elem := val.Elem()
	if elem.Kind() != reflect.Struct {
		return nil
	}

	typ := elem.Type()
	for i := range typ.NumField() {
		field := typ.Field(i)
		tag := field.Tag.Get("path")
		if tag == "" {
			continue
		}

		paramValue := r.PathValue(tag)
		if paramValue == "" {
			continue
		}

		//nolint:exhaustive // Only string and int path parameters are used.
		switch field.Type.Kind() {
		case reflect.String:
			elem.Field(i).SetString(paramValue)
		case reflect.Int:
			n, err := strconv.Atoi(paramValue)
			if err != nil {
				return dto.InvalidField(tag, "must be an integer")
			}
			elem.Field(i).SetInt(int64(n))
		}
	}
	return nil
}

// populateQueryParams extracts query parameters from the request and populates
// struct fields tagged with `query:"paramName"`.
func populateQueryParams(r *http.Request, input any) {
	val := reflect.ValueOf(input)
	if val.Kind() != reflect.Pointer {
		return
	}

	elem := val.Elem()
	if elem.Kind() != reflect.Struct {
		return
	}

	query := r.URL.Query()
	typ := elem.Type()
	for i := range typ.NumField() {
		field := typ.Field(i)
		tag := field.Tag.Get("query")
		if tag == "" {
			continue
		}

		paramValue := query.Get(tag)
		if paramValue == "" {
			continue
		}

		fieldVal := elem.Field(i)
		switch field.Type.Kind() {
		case reflect.String:
			fieldVal.SetString(paramValue)
		case reflect.Int:
			if intVal, err := strconv.Atoi(paramValue); err == nil {
				fieldVal.SetInt(int64(intVal))
			}
		default:
			if fieldVal.CanAddr() {
				if unmarshaler, ok := fieldVal.Addr().Interface().(encoding.TextUnmarshaler); ok {
					_ = unmarshaler.UnmarshalText([]byte(paramValue))
				}
			}
		}
	}
}

// handleValidationError handles a validation error from a request's Validate method.
func handleValidationError(ctx context.Context, w http.ResponseWriter, err error) {
	statusCode := http.StatusBadRequest
	errorCode := dto.ErrorCodeValidationFailed
	details := make(map[string]any)

	var ewsErr dto.ErrorWithStatus
	if errors.As(err, &ewsErr) {
		statusCode = ewsErr.StatusCode()
		errorCode = ewsErr.Code()
		if d := ewsErr.Details(); d != nil {
			details = d
		}
	}

	slog.InfoContext(ctx, "Validation error", "err", err, "statusCode", statusCode, "code", errorCode)
	writeErrorResponseWithCode(w, statusCode, errorCode, err.Error(), details)
}

// writeBadRequestError writes a 400 Bad Request error response as JSON.
func writeBadRequestError(w http.ResponseWriter, message string) {
	writeErrorResponseWithCode(w, http.StatusBadRequest, dto.ErrorCodeInvalidFormat, message, nil)
}

// writeErrorResponseWithCode writes a detailed error response as JSON with code and details.
func writeErrorResponseWithCode(w http.ResponseWriter, statusCode int, code dto.ErrorCode, message string, details map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := dto.ErrorResponse{
		Error: dto.ErrorDetails{
			Code:    code,
			Message: message,
		},
		Details: details,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}

// writeRateLimitError writes a 429 rate limit error response.
func writeRateLimitError(w http.ResponseWriter, result ratelimit.Result) {
	retryAfter := int(result.RetryAfter.Seconds())
	apiErr := dto.RateLimitExceeded(retryAfter)
	writeErrorResponseWithCode(w, apiErr.StatusCode(), apiErr.Code(), apiErr.Error(), apiErr.Details())
}
