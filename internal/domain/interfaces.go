// Package domain defines the service interfaces shared by the HTTP layer and
// the command wiring. Consumers should depend on these interfaces rather than
// re-declaring equivalent ones.
package domain

import (
	"context"
	"time"

	"github.com/searchcraftinc/searchcraft-connect/client"
	"github.com/searchcraftinc/searchcraft-connect/internal/ingest"
	"github.com/searchcraftinc/searchcraft-connect/internal/settings"
)

// SettingsLoader reads the current options.
type SettingsLoader interface {
	Load(ctx context.Context) (settings.Options, error)
}

// SettingsService manages the persisted options.
type SettingsService interface {
	SettingsLoader
	Update(ctx context.Context, u settings.Update) (settings.Options, error)
	Reset(ctx context.Context) error
	Ping(ctx context.Context) error
}

// NonceService issues and spends nonces.
type NonceService interface {
	Create(action, subject string) string
	Consume(ctx context.Context, action, subject, token string) (int, error)
	Lifetime() time.Duration
}

// ContentSink accepts content sync events.
type ContentSink = ingest.Sink

// ClientFactory builds a Searchcraft client from the current options.
type ClientFactory func(opts settings.Options) (*client.Client, error)

// ReadClientFactory returns a ClientFactory using the stored read key.
func ReadClientFactory(clientOpts ...client.Option) ClientFactory {
	return func(opts settings.Options) (*client.Client, error) {
		return client.New(opts.EndpointURL, opts.ReadKey, client.KeyTypeRead, clientOpts...)
	}
}
