// Package client provides a Go SDK for the Searchcraft REST API.
package client

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Version is reported in the User-Agent header.
var Version = "0.4.0"

// Client is the top-level Searchcraft API client. It holds one credential and
// one endpoint for its whole lifetime; resource accessors share its transport.
type Client struct {
	endpoint   string
	apiKey     string
	keyType    KeyType
	httpClient Doer
	userAgent  string
	observer   RequestObserver

	dispatcher *Dispatcher
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport used for every request.
func WithHTTPClient(hc Doer) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the timeout of the transport when it is an *http.Client.
// A client passed through WithHTTPClient is copied, not modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if hc, ok := c.httpClient.(*http.Client); ok {
			cp := *hc
			cp.Timeout = d
			c.httpClient = &cp
		}
	}
}

// WithUserAgent overrides the client identifier sent with each request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRequestObserver registers a hook called after every request.
func WithRequestObserver(fn RequestObserver) Option {
	return func(c *Client) { c.observer = fn }
}

// New creates a Searchcraft client for the given endpoint (e.g.
// "https://example.searchcraft.io"). It fails if keyType is not one of the
// known key types; nothing is sent over the network.
func New(endpoint, apiKey string, keyType KeyType, opts ...Option) (*Client, error) {
	if !keyType.Valid() {
		return nil, preconditionErrorf("invalid key type %q: must be one of ingest, read, admin", string(keyType))
	}

	c := &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		keyType:    keyType,
		httpClient: DefaultTransport(),
		userAgent:  "searchcraft-connect/" + Version,
	}
	for _, o := range opts {
		o(c)
	}
	if c.httpClient == nil {
		c.httpClient = DefaultTransport()
	}

	c.dispatcher = &Dispatcher{
		endpoint:  c.endpoint,
		apiKey:    c.apiKey,
		userAgent: c.userAgent,
		http:      c.httpClient,
		observer:  c.observer,
	}
	return c, nil
}

// Endpoint returns the base URL requests are sent to.
func (c *Client) Endpoint() string { return c.endpoint }

// KeyType returns the scope of the client's API key.
func (c *Client) KeyType() KeyType { return c.keyType }

// Dispatcher returns the shared request dispatcher, for endpoints without a facade.
func (c *Client) Dispatcher() *Dispatcher { return c.dispatcher }

// Authentication returns the API key management facade.
func (c *Client) Authentication() *AuthenticationService {
	return &AuthenticationService{d: c.dispatcher}
}

// Documents returns the document facade.
func (c *Client) Documents() *DocumentService { return &DocumentService{d: c.dispatcher} }

// Federation returns the federation facade.
func (c *Client) Federation() *FederationService { return &FederationService{d: c.dispatcher} }

// Healthcheck returns the healthcheck facade.
func (c *Client) Healthcheck() *HealthcheckService { return &HealthcheckService{d: c.dispatcher} }

// Index returns the index management facade.
func (c *Client) Index() *IndexService { return &IndexService{d: c.dispatcher} }

// Search returns the search facade.
func (c *Client) Search() *SearchService { return &SearchService{d: c.dispatcher} }

// Stopwords returns the stopword facade.
func (c *Client) Stopwords() *StopwordService { return &StopwordService{d: c.dispatcher} }

// Synonyms returns the synonym facade.
func (c *Client) Synonyms() *SynonymService { return &SynonymService{d: c.dispatcher} }

// Transactions returns the commit/rollback facade.
func (c *Client) Transactions() *TransactionService {
	return &TransactionService{d: c.dispatcher}
}

// requireID rejects an empty identifier before any request is made.
func requireID(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return preconditionErrorf("%s must not be empty", field)
	}
	return nil
}

// seg escapes an identifier for use as a path segment.
func seg(id string) string { return url.PathEscape(id) }
