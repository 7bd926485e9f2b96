package security

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TokenRegistry maps opaque session tokens to user ids. Tokens live in
// process memory and expire after the configured TTL; expired entries are
// reaped lazily on lookup.
type TokenRegistry struct {
	mu     sync.RWMutex
	tokens map[string]tokenEntry
	ttl    time.Duration
	now    func() time.Time
}

type tokenEntry struct {
	userID    string
	expiresAt time.Time
}

// NewTokenRegistry creates a registry with the given token TTL. A zero TTL
// means tokens never expire.
func NewTokenRegistry(ttl time.Duration) *TokenRegistry {
	return &TokenRegistry{
		tokens: make(map[string]tokenEntry),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue mints a new opaque token bound to the user id.
func (r *TokenRegistry) Issue(userID string) string {
	token := uuid.NewString()

	var expiresAt time.Time
	if r.ttl > 0 {
		expiresAt = r.now().Add(r.ttl)
	}

	r.mu.Lock()
	r.tokens[token] = tokenEntry{userID: userID, expiresAt: expiresAt}
	r.mu.Unlock()

	return token
}

// Resolve returns the user id bound to the token, if the token is known and
// unexpired.
func (r *TokenRegistry) Resolve(token string) (string, bool) {
	if token == "" {
		return "", false
	}

	r.mu.RLock()
	entry, ok := r.tokens[token]
	r.mu.RUnlock()
	if !ok {
		return "", false
	}

	if !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt) {
		r.mu.Lock()
		delete(r.tokens, token)
		r.mu.Unlock()
		return "", false
	}

	return entry.userID, true
}

// Revoke forgets a token.
func (r *TokenRegistry) Revoke(token string) {
	r.mu.Lock()
	delete(r.tokens, token)
	r.mu.Unlock()
}

// HashPassword returns the hex-encoded sha256 digest of the password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
