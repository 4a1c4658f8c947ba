package client

import (
	"context"
	"maps"
)

// SearchMode selects how a plain-text query is matched.
type SearchMode int

// Search modes. ModeFuzzy is the default.
const (
	ModeFuzzy SearchMode = iota
	ModeExact
)

// String returns the mode's name as used in the query body.
func (m SearchMode) String() string {
	if m == ModeExact {
		return "exact"
	}
	return "fuzzy"
}

// SearchOptions holds pagination, ordering and extra request fields.
type SearchOptions struct {
	Mode    SearchMode
	Limit   int
	Offset  int
	OrderBy string
	Sort    string // "asc" or "desc"
	// Extra fields are merged into the request body. Reserved keys (query,
	// mode, limit, offset, order_by, sort) are ignored.
	Extra map[string]any
}

var reservedSearchKeys = map[string]bool{
	"query":    true,
	"mode":     true,
	"limit":    true,
	"offset":   true,
	"order_by": true,
	"sort":     true,
}

// BuildSearchRequest builds the body of a search request. A string query is
// wrapped as {"<mode>": {"ctx": query}}; any other query value is passed
// through untouched.
func BuildSearchRequest(query any, opts *SearchOptions) (Params, error) {
	if query == nil {
		return nil, preconditionErrorf("search query must not be nil")
	}
	if opts == nil {
		opts = &SearchOptions{}
	}

	var q any = query
	if text, ok := query.(string); ok {
		q = map[string]any{opts.Mode.String(): map[string]any{"ctx": text}}
	}

	params := Params{"query": q}
	if opts.Limit > 0 {
		params["limit"] = opts.Limit
	}
	if opts.Offset > 0 {
		params["offset"] = opts.Offset
	}
	if opts.OrderBy != "" {
		params["order_by"] = opts.OrderBy
	}
	if opts.Sort != "" {
		params["sort"] = opts.Sort
	}

	extra := maps.Clone(opts.Extra)
	maps.DeleteFunc(extra, func(k string, _ any) bool { return reservedSearchKeys[k] })
	maps.Copy(params, extra)

	return params, nil
}

// SearchService runs queries against a single index. Requires a read key.
type SearchService struct {
	d *Dispatcher
}

// Query searches an index. query is either a plain string or a structured
// Searchcraft query object.
func (s *SearchService) Query(ctx context.Context, index string, query any, opts *SearchOptions) (Response, error) {
	path, err := indexPath(index, "/search")
	if err != nil {
		return nil, err
	}
	params, err := BuildSearchRequest(query, opts)
	if err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodPost, path, params, nil).Unwrap()
}
