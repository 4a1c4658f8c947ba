package client

import "context"

// AuthenticationService manages API keys. Requires an admin key.
type AuthenticationService struct {
	d *Dispatcher
}

// ListKeys returns every key visible to the caller.
func (s *AuthenticationService) ListKeys(ctx context.Context) (Response, error) {
	return s.d.Do(ctx, MethodGet, "/auth/key", nil, nil).Unwrap()
}

// CreateKey creates a key. params typically carries name, allowed_indexes,
// permissions and status.
func (s *AuthenticationService) CreateKey(ctx context.Context, params Params) (Response, error) {
	return s.d.Do(ctx, MethodPost, "/auth/key", params, nil).Unwrap()
}

// GetKey returns the details of one key.
func (s *AuthenticationService) GetKey(ctx context.Context, key string) (Response, error) {
	if err := requireID("key", key); err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodGet, "/auth/key/"+seg(key), nil, nil).Unwrap()
}

// UpdateKey changes the settings of an existing key.
func (s *AuthenticationService) UpdateKey(ctx context.Context, key string, params Params) (Response, error) {
	if err := requireID("key", key); err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodPost, "/auth/key/"+seg(key), params, nil).Unwrap()
}

// DeleteKey revokes one key.
func (s *AuthenticationService) DeleteKey(ctx context.Context, key string) (Response, error) {
	if err := requireID("key", key); err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodDelete, "/auth/key/"+seg(key), nil, nil).Unwrap()
}

// DeleteKeys revokes several keys in one call.
func (s *AuthenticationService) DeleteKeys(ctx context.Context, keys []string) (Response, error) {
	if len(keys) == 0 {
		return nil, preconditionErrorf("keys must not be empty")
	}
	return s.d.Do(ctx, MethodDelete, "/auth/key", Params{"keys": keys}, nil).Unwrap()
}

// DeleteAllKeys revokes every key the caller can see.
func (s *AuthenticationService) DeleteAllKeys(ctx context.Context) (Response, error) {
	return s.d.Do(ctx, MethodDelete, "/auth/key/all", nil, nil).Unwrap()
}

// KeysForApplication lists the keys attached to an application.
func (s *AuthenticationService) KeysForApplication(ctx context.Context, applicationID string) (Response, error) {
	if err := requireID("application id", applicationID); err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodGet, "/auth/application/"+seg(applicationID), nil, nil).Unwrap()
}

// KeysForOrganization lists the keys attached to an organization.
func (s *AuthenticationService) KeysForOrganization(ctx context.Context, organizationID string) (Response, error) {
	if err := requireID("organization id", organizationID); err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodGet, "/auth/organization/"+seg(organizationID), nil, nil).Unwrap()
}

// KeysForFederation lists the keys scoped to a federation.
func (s *AuthenticationService) KeysForFederation(ctx context.Context, federation string) (Response, error) {
	if err := requireID("federation name", federation); err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodGet, "/auth/federation/"+seg(federation), nil, nil).Unwrap()
}
