package crypto

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/hkdf"
)

// minSecretLen is the shortest site secret accepted as key material.
const minSecretLen = 32

// derivedKeyInfo prefixes the HKDF info string; the purpose is appended.
const derivedKeyInfo = "searchcraft-connect/v1/"

// DerivedProvider derives per-purpose keys from the site secret with
// HKDF-SHA256, so no separate key has to be provisioned.
type DerivedProvider struct {
	secret []byte
	salt   []byte
	cache  sync.Map
}

// NewDerivedProvider creates a DerivedProvider. salt may be empty.
func NewDerivedProvider(secret, salt string) (*DerivedProvider, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("crypto/derived: secret must be at least %d bytes, got %d", minSecretLen, len(secret))
	}

	return &DerivedProvider{secret: []byte(secret), salt: []byte(salt)}, nil
}

// GetKey returns the key derived for purpose. Keys are cached after first use.
func (p *DerivedProvider) GetKey(_ context.Context, purpose string) ([]byte, error) {
	if cached, ok := p.cache.Load(purpose); ok {
		key := cached.([]byte)
		out := make([]byte, len(key))
		copy(out, key)
		return out, nil
	}

	key := make([]byte, 32)
	r := hkdf.New(sha256.New, p.secret, p.salt, []byte(derivedKeyInfo+purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("crypto/derived: derive key: %w", err)
	}

	p.cache.Store(purpose, key)

	out := make([]byte, len(key))
	copy(out, key)
	return out, nil
}
