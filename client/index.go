package client

import "context"

// IndexService manages index definitions. Requires an admin key.
type IndexService struct {
	d *Dispatcher
}

// List returns the names of all indices.
func (s *IndexService) List(ctx context.Context) (Response, error) {
	return s.d.Do(ctx, MethodGet, "/index", nil, nil).Unwrap()
}

// Get returns an index's schema and settings.
func (s *IndexService) Get(ctx context.Context, name string) (Response, error) {
	path, err := indexPath(name, "")
	if err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodGet, path, nil, nil).Unwrap()
}

// Stats returns the document count and other statistics of an index.
func (s *IndexService) Stats(ctx context.Context, name string) (Response, error) {
	path, err := indexPath(name, "/stats")
	if err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodGet, path, nil, nil).Unwrap()
}

// Create creates an index. params carries {"index": {name, fields, ...}}.
func (s *IndexService) Create(ctx context.Context, params Params) (Response, error) {
	if len(params) == 0 {
		return nil, preconditionErrorf("index definition must not be empty")
	}
	return s.d.Do(ctx, MethodPost, "/index", params, nil).Unwrap()
}

// Replace overwrites an index definition. Existing documents are dropped.
func (s *IndexService) Replace(ctx context.Context, name string, params Params) (Response, error) {
	path, err := indexPath(name, "")
	if err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodPut, path, params, nil).Unwrap()
}

// Patch updates index settings that can change without reindexing
// (search_fields, weight_multipliers, ...).
func (s *IndexService) Patch(ctx context.Context, name string, params Params) (Response, error) {
	path, err := indexPath(name, "")
	if err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodPatch, path, params, nil).Unwrap()
}

// Delete removes an index and all of its documents.
func (s *IndexService) Delete(ctx context.Context, name string) (Response, error) {
	path, err := indexPath(name, "")
	if err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodDelete, path, nil, nil).Unwrap()
}
