// Package guest issues short-lived sessions for shoppers who have not signed in.
// Sessions live in process memory only.
package guest

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

type Service struct {
	tokens *tokenManager
	ttl    time.Duration
}

func New(ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Service{
		tokens: newTokenManager(),
		ttl:    ttl,
	}
}

// Issue opens a guest session and returns its bearer token and guest ID.
func (s *Service) Issue(_ context.Context) (token, guestID string, err error) {
	guestID = uuid.NewString()
	token, err = s.tokens.Issue(guestID, s.ttl)
	if err != nil {
		return "", "", err
	}
	return token, guestID, nil
}

func (s *Service) Lookup(_ context.Context, token string) (string, error) {
	meta, ok := s.tokens.Validate(token)
	if !ok {
		return "", ErrInvalidToken
	}
	return meta.GuestID, nil
}

// Revoke ends a guest session. Unknown tokens are ignored.
func (s *Service) Revoke(_ context.Context, token string) {
	s.tokens.Revoke(token)
}

// Sweep drops expired sessions and returns the guest IDs that were removed.
func (s *Service) Sweep(_ context.Context) []string {
	return s.tokens.Sweep()
}

func (s *Service) TTLSeconds() int {
	return int(s.ttl.Seconds())
}
