// Package crypto provides AES-256-GCM encryption for secrets kept in option
// storage.
package crypto

import "context"

// KeyProvider returns AES-256 encryption keys.
type KeyProvider interface {
	// GetKey returns the 32-byte AES-256 key used for values of the given purpose
	// (e.g. "read_key").
	GetKey(ctx context.Context, purpose string) ([]byte, error)
}
