package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// ErrorKind classifies a client error.
type ErrorKind int

// Error kinds.
const (
	// KindTransport means the HTTP call itself failed.
	KindTransport ErrorKind = iota + 1
	// KindMalformedResponse means the response body was not a JSON object.
	KindMalformedResponse
	// KindAPI means the API answered with status >= 400.
	KindAPI
	// KindPrecondition means a local argument check failed before any request was sent.
	KindPrecondition
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindMalformedResponse:
		return "malformed_response"
	case KindAPI:
		return "api"
	case KindPrecondition:
		return "precondition"
	default:
		return "unknown"
	}
}

// UnknownAPIErrorMessage is used when an error response carries no usable message.
const UnknownAPIErrorMessage = "Unknown API error"

// OriginalErrorKey wraps a bare string "error" field in Error.Payload.
const OriginalErrorKey = "__original_error"

// Error is returned by every failing client call.
type Error struct {
	Kind    ErrorKind
	Message string
	// Code is the API-supplied error code or the HTTP status.
	Code int
	// Status is the HTTP status of the response, 0 when none was received.
	Status int
	// Payload is the raw error structure from the response, if any.
	Payload any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Kind == KindAPI {
		return fmt.Sprintf("searchcraft: %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("searchcraft: %s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

func preconditionErrorf(format string, args ...any) *Error {
	return &Error{Kind: KindPrecondition, Message: fmt.Sprintf(format, args...)}
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: err.Error(), Err: err}
}

func malformedResponseError(status int, err error) *Error {
	return &Error{Kind: KindMalformedResponse, Message: "malformed response: " + err.Error(), Code: status, Status: status, Err: err}
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func isKind(err error, kind ErrorKind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}

// IsAPIError returns true if the API answered with an error status.
func IsAPIError(err error) bool { return isKind(err, KindAPI) }

// IsTransport returns true if the request never got a response.
func IsTransport(err error) bool { return isKind(err, KindTransport) }

// IsMalformedResponse returns true if the response body could not be decoded.
func IsMalformedResponse(err error) bool { return isKind(err, KindMalformedResponse) }

// IsPrecondition returns true if the call was rejected locally.
func IsPrecondition(err error) bool { return isKind(err, KindPrecondition) }

// IsNotFound returns true if the API answered 404.
func IsNotFound(err error) bool { return apiStatus(err) == http.StatusNotFound }

// IsUnauthorized returns true if the key was rejected (401) or lacks permission (403).
func IsUnauthorized(err error) bool {
	status := apiStatus(err)
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// IsRateLimited returns true if the error is a 429 rate limit.
func IsRateLimited(err error) bool { return apiStatus(err) == http.StatusTooManyRequests }

// apiStatus returns the HTTP status of an API error. Code may carry an
// API-specific number instead, so helpers never look at it.
func apiStatus(err error) int {
	if e, ok := AsError(err); ok && e.Kind == KindAPI {
		return e.Status
	}
	return 0
}

// parseAPIError maps an error response body onto an *Error. Shapes are tried
// in order; the first match wins.
func parseAPIError(status int, body Response) *Error {
	apiErr := &Error{Kind: KindAPI, Message: UnknownAPIErrorMessage, Code: status, Status: status}

	switch e := body["error"].(type) {
	case map[string]any:
		if msg, ok := e["message"].(string); ok && msg != "" {
			apiErr.Message = msg
		}
		if code, ok := numberField(e["code"]); ok {
			apiErr.Code = code
		}
		apiErr.Payload = e
		return apiErr
	case string:
		apiErr.Payload = map[string]any{OriginalErrorKey: e}
		return apiErr
	}

	bodyStatus, hasStatus := numberField(body["status"])
	data, hasData := body["data"]
	if !hasStatus || !hasData {
		return apiErr
	}

	switch d := data.(type) {
	case string:
		apiErr.Message = d
		apiErr.Code = bodyStatus
	case map[string]any:
		apiErr.Code = bodyStatus
		apiErr.Payload = d
		if msg, ok := d["error"].(string); ok && msg != "" {
			apiErr.Message = msg
		} else if msg, ok := d["message"].(string); ok && msg != "" {
			apiErr.Message = msg
		}
		if details := detailString(d["details"]); details != "" {
			apiErr.Message += ": " + details
		}
	}

	return apiErr
}

// numberField reads a JSON number (decoded as float64) or numeric string as int.
func numberField(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i, true
		}
	}
	return 0, false
}

func detailString(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case string:
		return d
	default:
		b, err := json.Marshal(d)
		if err != nil {
			return fmt.Sprint(d)
		}
		return string(b)
	}
}
