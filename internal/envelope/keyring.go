package envelope

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"
)

// KeyRing memoizes derived keys so PBKDF2 runs once per passphrase.
// Entries are indexed by a digest of the passphrase.
type KeyRing struct {
	keys *cache.Cache
}

// NewKeyRing creates a key ring whose entries expire after ttl.
// A ttl <= 0 keeps keys for the lifetime of the ring.
func NewKeyRing(ttl time.Duration) *KeyRing {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	// No janitor: expired entries are simply re-derived on the next lookup.
	return &KeyRing{keys: cache.New(ttl, 0)}
}

// Key returns the key for passphrase, deriving it on first use.
func (r *KeyRing) Key(passphrase string) (*Key, error) {
	id := digest(passphrase)
	if k, ok := r.keys.Get(id); ok {
		return k.(*Key), nil
	}

	key, err := DeriveKey(passphrase)
	if err != nil {
		return nil, err
	}
	r.keys.SetDefault(id, key)
	return key, nil
}

// Forget drops every cached key.
func (r *KeyRing) Forget() {
	r.keys.Flush()
}

func digest(passphrase string) string {
	sum := sha256.Sum256([]byte(passphrase))
	return hex.EncodeToString(sum[:])
}
