package client

import "context"

// FederationService manages federations: named groups of indices searched as one.
type FederationService struct {
	d *Dispatcher
}

func federationPath(name, suffix string) (string, error) {
	if err := requireID("federation name", name); err != nil {
		return "", err
	}
	return "/federation/" + seg(name) + suffix, nil
}

// List returns all federations.
func (s *FederationService) List(ctx context.Context) (Response, error) {
	return s.d.Do(ctx, MethodGet, "/federation", nil, nil).Unwrap()
}

// Get returns a federation's definition.
func (s *FederationService) Get(ctx context.Context, name string) (Response, error) {
	path, err := federationPath(name, "")
	if err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodGet, path, nil, nil).Unwrap()
}

// Stats returns document counts for each index in a federation.
func (s *FederationService) Stats(ctx context.Context, name string) (Response, error) {
	path, err := federationPath(name, "/stats")
	if err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodGet, path, nil, nil).Unwrap()
}

// Create creates a federation from its definition (name, friendly_name,
// index_configurations, ...).
func (s *FederationService) Create(ctx context.Context, params Params) (Response, error) {
	return s.d.Do(ctx, MethodPost, "/federation", params, nil).Unwrap()
}

// Update replaces a federation's definition.
func (s *FederationService) Update(ctx context.Context, name string, params Params) (Response, error) {
	path, err := federationPath(name, "")
	if err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodPut, path, params, nil).Unwrap()
}

// Delete removes a federation. Member indices are left untouched.
func (s *FederationService) Delete(ctx context.Context, name string) (Response, error) {
	path, err := federationPath(name, "")
	if err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodDelete, path, nil, nil).Unwrap()
}

// Search queries every index of a federation. See BuildSearchRequest for how
// query and opts are combined.
func (s *FederationService) Search(ctx context.Context, name string, query any, opts *SearchOptions) (Response, error) {
	path, err := federationPath(name, "/search")
	if err != nil {
		return nil, err
	}
	params, err := BuildSearchRequest(query, opts)
	if err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodPost, path, params, nil).Unwrap()
}
