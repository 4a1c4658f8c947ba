package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/searchcraftinc/searchcraft-connect/internal/api"
	"github.com/searchcraftinc/searchcraft-connect/internal/crypto"
	"github.com/searchcraftinc/searchcraft-connect/internal/domain"
	"github.com/searchcraftinc/searchcraft-connect/internal/frontend"
	"github.com/searchcraftinc/searchcraft-connect/internal/ingest"
	"github.com/searchcraftinc/searchcraft-connect/internal/middleware"
	"github.com/searchcraftinc/searchcraft-connect/internal/nonce"
	"github.com/searchcraftinc/searchcraft-connect/internal/settings"
)

const (
	testAdminToken = "admin-token-0123456789"
	testKeyHex     = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)

	return l
}

// recordingSink collects submitted events.
type recordingSink struct {
	mu     sync.Mutex
	events []ingest.Event
	err    error
}

func (s *recordingSink) Submit(_ context.Context, events []ingest.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, events...)
	return nil
}

type testEnv struct {
	router   http.Handler
	settings *settings.Service
	sink     *recordingSink
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	provider, err := crypto.NewStaticProvider(testKeyHex)
	if err != nil {
		t.Fatal(err)
	}
	svc := settings.NewService(settings.NewMemoryStore(), crypto.NewService(provider), testLogger())

	issuer, err := nonce.New([]byte("nonce-secret"), time.Hour, nonce.WithGuard(nonce.NewMemoryGuard()))
	if err != nil {
		t.Fatal(err)
	}

	renderer, err := frontend.NewRenderer("https://cdn.example.com/sdk/searchcraft.js")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	sink := &recordingSink{}
	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:         testLogger(),
		Settings:    svc,
		Nonces:      issuer,
		Content:     sink,
		Renderer:    renderer,
		ReadClient:  domain.ReadClientFactory(),
		AdminToken:  testAdminToken,
		CORSOrigins: []string{"http://localhost:8080"},
		Version:     "test-v1",
	})

	return &testEnv{router: router, settings: svc, sink: sink}
}

// configure stores options pointing at endpoint.
func (e *testEnv) configure(t *testing.T, endpoint string) {
	t.Helper()
	_, err := e.settings.Save(context.Background(), settings.Options{
		ReadKey:     "sc_read_abcdef123456",
		IngestKey:   "sc_ingest_abcdef123456",
		EndpointURL: endpoint,
		IndexID:     "posts",
	})
	if err != nil {
		t.Fatalf("save settings: %v", err)
	}
}

type request struct {
	method string
	path   string
	body   string
	nonce  string
	admin  bool
}

func (e *testEnv) do(r request) *httptest.ResponseRecorder {
	var body *strings.Reader
	if r.body != "" {
		body = strings.NewReader(r.body)
	} else {
		body = strings.NewReader("")
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(r.method, r.path, body)
	if r.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.admin {
		req.Header.Set("Authorization", "Bearer "+testAdminToken)
	}
	if r.nonce != "" {
		req.Header.Set(middleware.NonceHeader, r.nonce)
	}
	e.router.ServeHTTP(w, req)

	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON %q: %v", w.Body.String(), err)
	}
	return body
}

// fakeSearchcraft serves canned responses keyed by "METHOD /path".
func fakeSearchcraft(t *testing.T, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.HandleFunc(pattern, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func jsonReply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body)) //nolint:errcheck
	}
}
