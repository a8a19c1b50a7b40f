package guest

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

type tokenMeta struct {
	GuestID   string
	ExpiresAt time.Time
}

type tokenManager struct {
	mu     sync.RWMutex
	tokens map[string]tokenMeta
	now    func() time.Time
}

func newTokenManager() *tokenManager {
	return &tokenManager{
		tokens: make(map[string]tokenMeta),
		now:    time.Now,
	}
}

func (m *tokenManager) Issue(guestID string, ttl time.Duration) (string, error) {
	token, err := randomToken()
	if err != nil {
		return "", err
	}
	meta := tokenMeta{
		GuestID:   guestID,
		ExpiresAt: m.now().Add(ttl),
	}
	m.mu.Lock()
	m.tokens[token] = meta
	m.mu.Unlock()
	return token, nil
}

// Validate reports whether token is live. Expired tokens stay in the map until
// Sweep collects them, so their guest IDs are always handed back once.
func (m *tokenManager) Validate(token string) (tokenMeta, bool) {
	m.mu.RLock()
	meta, ok := m.tokens[token]
	m.mu.RUnlock()
	if !ok || m.now().After(meta.ExpiresAt) {
		return tokenMeta{}, false
	}
	return meta, true
}

func (m *tokenManager) Revoke(token string) {
	m.mu.Lock()
	delete(m.tokens, token)
	m.mu.Unlock()
}

func (m *tokenManager) Sweep() []string {
	now := m.now()
	var expired []string
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, meta := range m.tokens {
		if now.After(meta.ExpiresAt) {
			expired = append(expired, meta.GuestID)
			delete(m.tokens, token)
		}
	}
	return expired
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
