package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"
)

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 32 << 20

// Params is a request parameter map: query string for GET, JSON body otherwise.
type Params = map[string]any

// Response is a decoded JSON object returned by the API, passed through as-is.
type Response map[string]any

// Status returns the numeric "status" field of the response, or 0.
func (r Response) Status() int {
	n, _ := numberField(r["status"])
	return n
}

// Data returns the "data" field of the response.
func (r Response) Data() any { return r["data"] }

// Result is the outcome of one dispatched request: a Response or an *Error.
type Result struct {
	resp Response
	err  *Error
}

// Unwrap returns the response, or the error as a non-nil error value.
func (r Result) Unwrap() (Response, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.resp, nil
}

// OK reports whether the request succeeded.
func (r Result) OK() bool { return r.err == nil }

// Err returns the typed error, or nil.
func (r Result) Err() *Error { return r.err }

// Response returns the decoded response (nil on failure).
func (r Result) Response() Response { return r.resp }

func failed(err *Error) Result { return Result{err: err} }

// RequestInfo describes a completed dispatch for observers.
type RequestInfo struct {
	Method   Method
	Path     string
	Status   int
	Duration time.Duration
	Err      error
}

// RequestObserver is called once per dispatched request.
type RequestObserver func(RequestInfo)

// Dispatcher sends one HTTP request per call and normalises the outcome.
type Dispatcher struct {
	endpoint  string
	apiKey    string
	userAgent string
	http      Doer
	observer  RequestObserver
}

// Do executes method on path with params. Empty params never produce a body
// or query string. Extra headers are applied after the base headers.
func (d *Dispatcher) Do(ctx context.Context, method Method, path string, params any, header http.Header) Result {
	start := time.Now()
	path = normalizePath(path)

	status, res := d.do(ctx, method, path, params, header)

	if d.observer != nil {
		info := RequestInfo{Method: method, Path: path, Status: status, Duration: time.Since(start)}
		if res.err != nil {
			info.Err = res.err
		}
		d.observer(info)
	}
	return res
}

func (d *Dispatcher) do(ctx context.Context, method Method, path string, params any, header http.Header) (int, Result) {
	if !method.valid() {
		return 0, failed(preconditionErrorf("unsupported HTTP method"))
	}

	u := d.endpoint + path
	var body io.Reader

	if !isEmptyParams(params) {
		switch method.enc {
		case encodeQuery:
			q, ok := params.(map[string]any)
			if !ok {
				return 0, failed(preconditionErrorf("%s parameters must be a map, got %T", method, params))
			}
			sep := "?"
			if strings.Contains(u, "?") {
				sep = "&"
			}
			u += sep + buildQuery(q)
		case encodeJSONBody:
			data, err := json.Marshal(params)
			if err != nil {
				return 0, failed(&Error{Kind: KindPrecondition, Message: "encode request body: " + err.Error(), Err: err})
			}
			body = bytes.NewReader(data)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method.name, u, body)
	if err != nil {
		return 0, failed(transportError(err))
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Authorization", d.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for name, values := range header {
		req.Header.Del(name)
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return 0, failed(transportError(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return resp.StatusCode, failed(transportError(fmt.Errorf("read response: %w", err)))
	}

	decoded, err := decodeObject(raw)
	if err != nil {
		return resp.StatusCode, failed(malformedResponseError(resp.StatusCode, err))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, failed(parseAPIError(resp.StatusCode, decoded))
	}

	return resp.StatusCode, Result{resp: decoded}
}

// normalizePath prepends a slash when path lacks one.
func normalizePath(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}

func isEmptyParams(params any) bool {
	if params == nil {
		return true
	}
	v := reflect.ValueOf(params)
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String:
		return v.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

func decodeObject(raw []byte) (Response, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %s", jsonKind(v))
	}
	return Response(obj), nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
