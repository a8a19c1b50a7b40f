package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"fixiestore/internal/domain"
	"fixiestore/internal/identity"
	sessionrepo "fixiestore/internal/repository/session"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
)

type userRepo interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type publisher interface {
	Publish(ctx context.Context, ev identity.Event) error
}

// Service handles signup, sign-in and session lookup. Sign-in and sign-out are
// announced on the identity hub.
type Service struct {
	repo        userRepo
	sessions    *sessionManager
	hub         publisher
	logger      *log.Logger
	validate    *validator.Validate
	sessionTTL  time.Duration
	passwordMin int
}

type Options struct {
	SessionTTL  time.Duration
	PasswordMin int
	Logger      *log.Logger
}

func New(repo userRepo, sessions sessionrepo.Repository, hub publisher, opts Options) *Service {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 48 * time.Hour
	}
	if opts.PasswordMin <= 0 {
		opts.PasswordMin = 8
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		repo:        repo,
		sessions:    newSessionManager(sessions),
		hub:         hub,
		logger:      opts.Logger,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		sessionTTL:  opts.SessionTTL,
		passwordMin: opts.PasswordMin,
	}
}

// SignupInput captures fields expected by the signup endpoint.
type SignupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// Session is the result of a successful sign-in.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

func (s *Service) SignUp(ctx context.Context, in SignupInput) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" {
		return nil, fmt.Errorf("%w: email required", domain.ErrInvalid)
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return nil, fmt.Errorf("%w: email is not valid", domain.ErrInvalid)
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalid, err.Error())
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.Create(ctx, domain.User{
		Email:        email,
		PasswordHash: string(hashed),
		FullName:     strings.TrimSpace(in.FullName),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("auth: signed up user=%s", u.ID)
	return u, nil
}

// SignIn validates credentials and opens a session. guestID, when set, names the
// guest session the caller is leaving behind.
func (s *Service) SignIn(ctx context.Context, email, password, guestID string) (*Session, error) {
	password = strings.TrimSpace(password)
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.sessions.Issue(ctx, u.ID, s.sessionTTL)
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		if err := s.hub.Publish(ctx, identity.Event{Kind: identity.SignedIn, UserID: u.ID, GuestID: guestID}); err != nil {
			s.logger.Printf("auth: sign-in subscribers user=%s error=%v", u.ID, err)
		}
	}
	s.logger.Printf("auth: signed in user=%s", u.ID)
	return &Session{User: u, Token: token, ExpiresAt: expiresAt}, nil
}

// SignOut revokes the session behind token.
func (s *Service) SignOut(ctx context.Context, token string) error {
	meta, ok := s.sessions.Validate(ctx, token)
	if !ok {
		return ErrInvalidToken
	}
	if err := s.sessions.Revoke(ctx, token); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if s.hub != nil {
		if err := s.hub.Publish(ctx, identity.Event{Kind: identity.SignedOut, UserID: meta.UserID}); err != nil {
			s.logger.Printf("auth: sign-out subscribers user=%s error=%v", meta.UserID, err)
		}
	}
	s.logger.Printf("auth: signed out user=%s", meta.UserID)
	return nil
}

// CurrentUser returns the user bound to a valid session token.
func (s *Service) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	meta, ok := s.sessions.Validate(ctx, token)
	if !ok {
		return nil, ErrInvalidToken
	}
	u, err := s.repo.GetByID(ctx, meta.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}

// PurgeExpired drops sessions whose lifetime has ended.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessions.Purge(ctx)
}

func (s *Service) SessionTTLSeconds() int {
	return int(s.sessionTTL.Seconds())
}

func validatePassword(p string, min int) error {
	trimmed := strings.TrimSpace(p)
	if len(trimmed) < min {
		return fmt.Errorf("password must be at least %d characters", min)
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range trimmed {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number")
	}
	return nil
}
