package client

import "strings"

// KeyType is the permission scope of a Searchcraft API key.
type KeyType string

// Key types issued by Searchcraft.
const (
	KeyTypeIngest KeyType = "ingest"
	KeyTypeRead   KeyType = "read"
	KeyTypeAdmin  KeyType = "admin"
)

// Valid reports whether k is one of the known key types.
func (k KeyType) Valid() bool {
	switch k {
	case KeyTypeIngest, KeyTypeRead, KeyTypeAdmin:
		return true
	}
	return false
}

// ParseKeyType converts a user-supplied string (case-insensitive) to a KeyType.
func ParseKeyType(s string) (KeyType, error) {
	k := KeyType(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", preconditionErrorf("invalid key type %q: must be one of ingest, read, admin", s)
	}
	return k, nil
}

// String implements fmt.Stringer.
func (k KeyType) String() string { return string(k) }
