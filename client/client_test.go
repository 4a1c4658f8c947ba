package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"
)

// newTestServer creates a test server that routes to the given handler map.
// Keys are "METHOD /path", values are handler funcs.
func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, handler)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, "test-key", KeyTypeAdmin)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return srv, c
}

func jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// doerFunc adapts a function to Doer.
type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

// offlineClient returns a client whose transport fails the test if used.
func offlineClient(t *testing.T, keyType KeyType) (*Client, error) {
	t.Helper()
	return New("https://example.invalid", "k", keyType, WithHTTPClient(doerFunc(func(r *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected network call: %s %s", r.Method, r.URL)
		return nil, nil
	})))
}

func TestHealthcheck(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /healthcheck": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, map[string]any{"status": 200, "data": "Searchcraft is healthy."})
		},
	})
	resp, err := c.Healthcheck().Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if resp.Status() != 200 {
		t.Errorf("got status %d, want 200", resp.Status())
	}
	if resp.Data() != "Searchcraft is healthy." {
		t.Errorf("got data %v", resp.Data())
	}
}

func TestNewRejectsUnknownKeyType(t *testing.T) {
	_, err := offlineClient(t, KeyType("superuser"))
	if err == nil {
		t.Fatal("expected error for unknown key type")
	}
	if !IsPrecondition(err) {
		t.Errorf("expected precondition error, got %v", err)
	}

	for _, kt := range []KeyType{KeyTypeIngest, KeyTypeRead, KeyTypeAdmin} {
		c, err := offlineClient(t, kt)
		if err != nil {
			t.Fatalf("New(%s) error: %v", kt, err)
		}
		if c.KeyType() != kt {
			t.Errorf("KeyType() = %s, want %s", c.KeyType(), kt)
		}
	}
}

func TestParseKeyType(t *testing.T) {
	tests := []struct {
		in      string
		want    KeyType
		wantErr bool
	}{
		{"read", KeyTypeRead, false},
		{" Ingest ", KeyTypeIngest, false},
		{"ADMIN", KeyTypeAdmin, false},
		{"superuser", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKeyType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKeyType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseKeyType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEndpointTrailingSlash(t *testing.T) {
	c, err := New("https://example.searchcraft.io/", "k", KeyTypeRead)
	if err != nil {
		t.Fatal(err)
	}
	if c.Endpoint() != "https://example.searchcraft.io" {
		t.Errorf("Endpoint() = %q", c.Endpoint())
	}
}

func TestDeleteKeyEmptyFailsLocally(t *testing.T) {
	c, err := offlineClient(t, KeyTypeAdmin)
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Authentication().DeleteKey(context.Background(), "")
	if !IsPrecondition(err) {
		t.Fatalf("expected precondition error, got %v", err)
	}
}

func TestEmptyIdentifiersFailLocally(t *testing.T) {
	c, err := offlineClient(t, KeyTypeAdmin)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	calls := map[string]func() error{
		"index get":         func() error { _, err := c.Index().Get(ctx, ""); return err },
		"documents add":     func() error { _, err := c.Documents().Add(ctx, "", []Document{{"id": "1"}}); return err },
		"documents none":    func() error { _, err := c.Documents().Add(ctx, "posts", nil); return err },
		"document get":      func() error { _, err := c.Documents().Get(ctx, "posts", " "); return err },
		"federation search": func() error { _, err := c.Federation().Search(ctx, "", "q", nil); return err },
		"search nil query":  func() error { _, err := c.Search().Query(ctx, "posts", nil, nil); return err },
		"commit":            func() error { _, err := c.Transactions().Commit(ctx, ""); return err },
		"delete keys":       func() error { _, err := c.Authentication().DeleteKeys(ctx, nil); return err },
		"stopwords add":     func() error { _, err := c.Stopwords().Add(ctx, "posts", nil); return err },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			if err := call(); !IsPrecondition(err) {
				t.Errorf("expected precondition error, got %v", err)
			}
		})
	}
}

// recorded captures a request seen by the recording server.
type recorded struct {
	method string
	path   string
	query  string
	body   []byte
	header http.Header
}

func newRecordingServer(t *testing.T) (*Client, *[]recorded) {
	t.Helper()
	var seen []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen = append(seen, recorded{
			method: r.Method,
			path:   r.URL.EscapedPath(),
			query:  r.URL.RawQuery,
			body:   body,
			header: r.Header.Clone(),
		})
		jsonResponse(w, 200, map[string]any{"status": 200, "data": map[string]any{}})
	}))
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, "admin-key", KeyTypeAdmin)
	if err != nil {
		t.Fatal(err)
	}
	return c, &seen
}

func TestFacadeEndpoints(t *testing.T) {
	c, seen := newRecordingServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		want string
	}{
		{"list keys", func() error { _, err := c.Authentication().ListKeys(ctx); return err }, "GET /auth/key"},
		{"create key", func() error { _, err := c.Authentication().CreateKey(ctx, Params{"name": "k"}); return err }, "POST /auth/key"},
		{"get key", func() error { _, err := c.Authentication().GetKey(ctx, "abc"); return err }, "GET /auth/key/abc"},
		{"update key", func() error { _, err := c.Authentication().UpdateKey(ctx, "abc", Params{"status": 0}); return err }, "POST /auth/key/abc"},
		{"delete key", func() error { _, err := c.Authentication().DeleteKey(ctx, "abc"); return err }, "DELETE /auth/key/abc"},
		{"delete keys", func() error { _, err := c.Authentication().DeleteKeys(ctx, []string{"a", "b"}); return err }, "DELETE /auth/key"},
		{"delete all keys", func() error { _, err := c.Authentication().DeleteAllKeys(ctx); return err }, "DELETE /auth/key/all"},
		{"app keys", func() error { _, err := c.Authentication().KeysForApplication(ctx, "app1"); return err }, "GET /auth/application/app1"},
		{"org keys", func() error { _, err := c.Authentication().KeysForOrganization(ctx, "org1"); return err }, "GET /auth/organization/org1"},
		{"federation keys", func() error { _, err := c.Authentication().KeysForFederation(ctx, "fed"); return err }, "GET /auth/federation/fed"},
		{"add documents", func() error { _, err := c.Documents().Add(ctx, "posts", []Document{{"id": "1"}}); return err }, "POST /index/posts/documents"},
		{"get document", func() error { _, err := c.Documents().Get(ctx, "posts", "42"); return err }, "GET /index/posts/documents/42"},
		{"delete documents", func() error { _, err := c.Documents().Delete(ctx, "posts", []string{"1"}); return err }, "DELETE /index/posts/documents"},
		{"delete by field", func() error { _, err := c.Documents().DeleteByField(ctx, "posts", Params{"term": Params{"type": "page"}}); return err }, "DELETE /index/posts/documents/query"},
		{"delete all documents", func() error { _, err := c.Documents().DeleteAll(ctx, "posts"); return err }, "DELETE /index/posts/documents/all"},
		{"list federations", func() error { _, err := c.Federation().List(ctx); return err }, "GET /federation"},
		{"get federation", func() error { _, err := c.Federation().Get(ctx, "fed"); return err }, "GET /federation/fed"},
		{"federation stats", func() error { _, err := c.Federation().Stats(ctx, "fed"); return err }, "GET /federation/fed/stats"},
		{"create federation", func() error { _, err := c.Federation().Create(ctx, Params{"name": "fed"}); return err }, "POST /federation"},
		{"update federation", func() error { _, err := c.Federation().Update(ctx, "fed", Params{"name": "fed"}); return err }, "PUT /federation/fed"},
		{"delete federation", func() error { _, err := c.Federation().Delete(ctx, "fed"); return err }, "DELETE /federation/fed"},
		{"federation search", func() error { _, err := c.Federation().Search(ctx, "fed", "cats", nil); return err }, "POST /federation/fed/search"},
		{"list indices", func() error { _, err := c.Index().List(ctx); return err }, "GET /index"},
		{"get index", func() error { _, err := c.Index().Get(ctx, "posts"); return err }, "GET /index/posts"},
		{"index stats", func() error { _, err := c.Index().Stats(ctx, "posts"); return err }, "GET /index/posts/stats"},
		{"create index", func() error { _, err := c.Index().Create(ctx, Params{"index": Params{"name": "posts"}}); return err }, "POST /index"},
		{"replace index", func() error { _, err := c.Index().Replace(ctx, "posts", Params{"index": Params{}}); return err }, "PUT /index/posts"},
		{"patch index", func() error { _, err := c.Index().Patch(ctx, "posts", Params{"search_fields": []string{"title"}}); return err }, "PATCH /index/posts"},
		{"delete index", func() error { _, err := c.Index().Delete(ctx, "posts"); return err }, "DELETE /index/posts"},
		{"search", func() error { _, err := c.Search().Query(ctx, "posts", "cats", nil); return err }, "POST /index/posts/search"},
		{"list stopwords", func() error { _, err := c.Stopwords().List(ctx, "posts"); return err }, "GET /index/posts/stopwords"},
		{"add stopwords", func() error { _, err := c.Stopwords().Add(ctx, "posts", []string{"the"}); return err }, "POST /index/posts/stopwords"},
		{"delete stopwords", func() error { _, err := c.Stopwords().Delete(ctx, "posts", []string{"the"}); return err }, "DELETE /index/posts/stopwords"},
		{"delete all stopwords", func() error { _, err := c.Stopwords().DeleteAll(ctx, "posts"); return err }, "DELETE /index/posts/stopwords/all"},
		{"list synonyms", func() error { _, err := c.Synonyms().List(ctx, "posts"); return err }, "GET /index/posts/synonyms"},
		{"add synonyms", func() error { _, err := c.Synonyms().Add(ctx, "posts", []string{"cat,kitty"}); return err }, "POST /index/posts/synonyms"},
		{"delete synonyms", func() error { _, err := c.Synonyms().Delete(ctx, "posts", []string{"cat"}); return err }, "DELETE /index/posts/synonyms"},
		{"delete all synonyms", func() error { _, err := c.Synonyms().DeleteAll(ctx, "posts"); return err }, "DELETE /index/posts/synonyms/all"},
		{"commit", func() error { _, err := c.Transactions().Commit(ctx, "posts"); return err }, "POST /index/posts/commit"},
		{"rollback", func() error { _, err := c.Transactions().Rollback(ctx, "posts"); return err }, "POST /index/posts/rollback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(*seen)
			if err := tt.call(); err != nil {
				t.Fatalf("call error: %v", err)
			}
			if len(*seen) != before+1 {
				t.Fatalf("expected exactly one request, got %d", len(*seen)-before)
			}
			last := (*seen)[len(*seen)-1]
			if got := last.method + " " + last.path; got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPathSegmentsAreEscaped(t *testing.T) {
	c, seen := newRecordingServer(t)
	if _, err := c.Index().Get(context.Background(), "my index/2"); err != nil {
		t.Fatal(err)
	}
	if got := (*seen)[0].path; got != "/index/my%20index%2F2" {
		t.Errorf("got path %q", got)
	}
}

func TestSearchBodyForStringQuery(t *testing.T) {
	c, seen := newRecordingServer(t)
	ctx := context.Background()

	if _, err := c.Search().Query(ctx, "posts", "cats", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Search().Query(ctx, "posts", "cats", &SearchOptions{Mode: ModeExact}); err != nil {
		t.Fatal(err)
	}

	want := []string{
		`{"query":{"fuzzy":{"ctx":"cats"}}}`,
		`{"query":{"exact":{"ctx":"cats"}}}`,
	}
	for i, w := range want {
		var got, exp any
		if err := json.Unmarshal((*seen)[i].body, &got); err != nil {
			t.Fatalf("body %d not JSON: %v", i, err)
		}
		_ = json.Unmarshal([]byte(w), &exp)
		if !reflect.DeepEqual(got, exp) {
			t.Errorf("body %d = %s, want %s", i, (*seen)[i].body, w)
		}
	}
}

func TestBuildSearchRequest(t *testing.T) {
	structured := map[string]any{"occur": "must", "exact": map[string]any{"ctx": "title:cats"}}

	tests := []struct {
		name  string
		query any
		opts  *SearchOptions
		want  Params
	}{
		{
			name:  "string defaults to fuzzy",
			query: "cats",
			want:  Params{"query": map[string]any{"fuzzy": map[string]any{"ctx": "cats"}}},
		},
		{
			name:  "string exact",
			query: "cats",
			opts:  &SearchOptions{Mode: ModeExact},
			want:  Params{"query": map[string]any{"exact": map[string]any{"ctx": "cats"}}},
		},
		{
			name:  "structured passes through",
			query: structured,
			opts:  &SearchOptions{Mode: ModeExact},
			want:  Params{"query": structured},
		},
		{
			name:  "pagination and ordering",
			query: "cats",
			opts:  &SearchOptions{Limit: 20, Offset: 40, OrderBy: "date", Sort: "desc"},
			want: Params{
				"query":    map[string]any{"fuzzy": map[string]any{"ctx": "cats"}},
				"limit":    20,
				"offset":   40,
				"order_by": "date",
				"sort":     "desc",
			},
		},
		{
			name:  "extras merged without overwriting reserved keys",
			query: "cats",
			opts: &SearchOptions{
				Limit: 5,
				Extra: map[string]any{"query": "hijack", "limit": 999, "facets": []string{"type"}},
			},
			want: Params{
				"query":  map[string]any{"fuzzy": map[string]any{"ctx": "cats"}},
				"limit":  5,
				"facets": []string{"type"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildSearchRequest(tt.query, tt.opts)
			if err != nil {
				t.Fatalf("error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestBuildSearchRequestDoesNotMutateExtra(t *testing.T) {
	extra := map[string]any{"query": "x", "facets": true}
	if _, err := BuildSearchRequest("cats", &SearchOptions{Extra: extra}); err != nil {
		t.Fatal(err)
	}
	if len(extra) != 2 {
		t.Errorf("extra was mutated: %v", extra)
	}
}

func TestErrorHelpers(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /index/missing": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 404, map[string]any{"status": 404, "data": "Index not found"})
		},
		"GET /auth/key": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 401, map[string]any{"status": 401, "data": "Unauthorized"})
		},
		"GET /index": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 429, map[string]any{"status": 429, "data": "slow down"})
		},
	})
	ctx := context.Background()

	_, err := c.Index().Get(ctx, "missing")
	if !IsNotFound(err) || !IsAPIError(err) {
		t.Errorf("expected not found API error, got %v", err)
	}
	_, err = c.Authentication().ListKeys(ctx)
	if !IsUnauthorized(err) {
		t.Errorf("expected unauthorized, got %v", err)
	}
	_, err = c.Index().List(ctx)
	if !IsRateLimited(err) {
		t.Errorf("expected rate limited, got %v", err)
	}

	wrapped := errors.Join(errors.New("outer"), err)
	if !IsRateLimited(wrapped) {
		t.Error("helpers should see through wrapping")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error string %q should include code", err.Error())
	}
}

func TestErrorHelpersUseHTTPStatus(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		wantNotFound bool
		wantLimited  bool
	}{
		{name: "not found with own code", status: 404, wantNotFound: true},
		{name: "rate limited with own code", status: 429, wantLimited: true},
		{name: "bad request with own code", status: 400},
		{name: "unavailable with own code", status: 503},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := newTestServer(t, map[string]http.HandlerFunc{
				"GET /index": func(w http.ResponseWriter, _ *http.Request) {
					jsonResponse(w, tt.status, map[string]any{"error": map[string]any{"message": "nope", "code": 1003}})
				},
			})

			_, err := c.Index().List(context.Background())
			apiErr, ok := AsError(err)
			if !ok {
				t.Fatalf("expected *Error, got %T: %v", err, err)
			}
			if apiErr.Code != 1003 {
				t.Errorf("Code = %d, want 1003", apiErr.Code)
			}
			if apiErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", apiErr.Status, tt.status)
			}
			if got := IsNotFound(err); got != tt.wantNotFound {
				t.Errorf("IsNotFound = %v, want %v", got, tt.wantNotFound)
			}
			if got := IsRateLimited(err); got != tt.wantLimited {
				t.Errorf("IsRateLimited = %v, want %v", got, tt.wantLimited)
			}
		})
	}
}

func TestWithTimeoutLeavesCallerClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	c, err := New("https://example.invalid", "k", KeyTypeRead, WithHTTPClient(shared), WithTimeout(5*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if shared.Timeout != time.Minute {
		t.Errorf("caller's client timeout = %s, want 1m0s", shared.Timeout)
	}
	hc, ok := c.httpClient.(*http.Client)
	if !ok {
		t.Fatalf("httpClient = %T, want *http.Client", c.httpClient)
	}
	if hc == shared {
		t.Error("client should hold a copy of the caller's *http.Client")
	}
	if hc.Timeout != 5*time.Second {
		t.Errorf("client timeout = %s, want 5s", hc.Timeout)
	}
}
