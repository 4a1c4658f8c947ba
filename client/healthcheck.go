package client

import "context"

// HealthcheckService reports whether the Searchcraft service is up.
type HealthcheckService struct {
	d *Dispatcher
}

// Check calls the unauthenticated health endpoint.
func (s *HealthcheckService) Check(ctx context.Context) (Response, error) {
	return s.d.Do(ctx, MethodGet, "/healthcheck", nil, nil).Unwrap()
}
