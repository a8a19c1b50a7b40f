package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"fixiestore/internal/domain"
	sessionrepo "fixiestore/internal/repository/session"
)

type sessionMeta struct {
	UserID    string
	ExpiresAt time.Time
}

type sessionManager struct {
	repo sessionrepo.Repository
	now  func() time.Time
}

func newSessionManager(repo sessionrepo.Repository) *sessionManager {
	return &sessionManager{repo: repo, now: time.Now}
}

func (m *sessionManager) Issue(ctx context.Context, userID string, ttl time.Duration) (string, time.Time, error) {
	expiresAt := m.now().Add(ttl).UTC()
	for i := 0; i < 5; i++ {
		token, err := randomToken()
		if err != nil {
			return "", time.Time{}, err
		}
		err = m.repo.Create(ctx, sessionrepo.Session{
			Token:     token,
			UserID:    userID,
			ExpiresAt: expiresAt,
		})
		if err == nil {
			return token, expiresAt, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return "", time.Time{}, err
	}
	return "", time.Time{}, errors.New("token collision")
}

func (m *sessionManager) Validate(ctx context.Context, token string) (sessionMeta, bool) {
	if token == "" {
		return sessionMeta{}, false
	}
	s, err := m.repo.Get(ctx, token)
	if err != nil {
		return sessionMeta{}, false
	}
	if m.now().After(s.ExpiresAt) {
		_ = m.repo.Delete(ctx, token)
		return sessionMeta{}, false
	}
	return sessionMeta{UserID: s.UserID, ExpiresAt: s.ExpiresAt}, true
}

func (m *sessionManager) Revoke(ctx context.Context, token string) error {
	return m.repo.Delete(ctx, token)
}

func (m *sessionManager) Purge(ctx context.Context) (int64, error) {
	return m.repo.DeleteExpired(ctx, m.now())
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
