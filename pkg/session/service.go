package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Messages returned by the mock sign-in.
const (
	MessageCredentialsRequired = "Email and password are required"
	MessageFieldsRequired      = "All fields are required"
	MessagePasswordTooShort    = "Password must be at least 6 characters"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 6

// Simulated round trips of the mock endpoints.
const (
	LoginDelay    = time.Second
	RegisterDelay = 1200 * time.Millisecond
	LogoutDelay   = 300 * time.Millisecond
)

// Failure is a rejected sign-in carrying a display message.
type Failure struct {
	Message string
}

func (f *Failure) Error() string { return f.Message }

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for ids and tokens.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithoutDelay disables the simulated latency.
func WithoutDelay() Option {
	return func(s *Service) {
		s.delay = false
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service signs users in and out against a Store. It satisfies the token
// source flows take at construction.
type Service struct {
	store  Store
	now    func() time.Time
	delay  bool
	logger *slog.Logger
}

// NewService returns a service over store.
func NewService(store Store, options ...Option) *Service {
	s := &Service{
		store:  store,
		now:    time.Now,
		delay:  true,
		logger: slog.New(slog.DiscardHandler),
	}
	if s.store == nil {
		s.store = NewMemoryStore()
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Login signs in any non-empty email and password pair.
func (s *Service) Login(ctx context.Context, email, password string) (State, error) {
	if err := s.wait(ctx, LoginDelay); err != nil {
		return State{}, err
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return State{}, &Failure{Message: MessageCredentialsRequired}
	}

	name, _, _ := strings.Cut(email, "@")
	return s.start(ctx, User{ID: "user_1", Name: name, Email: email})
}

// Register creates an account and signs it in.
func (s *Service) Register(ctx context.Context, name, email, password string) (State, error) {
	if err := s.wait(ctx, RegisterDelay); err != nil {
		return State{}, err
	}
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return State{}, &Failure{Message: MessageFieldsRequired}
	}
	if len(password) < MinPasswordLength {
		return State{}, &Failure{Message: MessagePasswordTooShort}
	}
	return s.start(ctx, User{ID: fmt.Sprintf("user_%d", s.now().UnixMilli()), Name: name, Email: email})
}

// Logout clears the stored session.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.wait(ctx, LogoutDelay); err != nil {
		return err
	}
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info("signed out")
	return nil
}

// Current returns the signed-in user, or nil.
func (s *Service) Current(ctx context.Context) (*User, error) {
	state, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if state.Empty() {
		return nil, nil
	}
	return state.User, nil
}

// Authenticated reports whether a token is stored.
func (s *Service) Authenticated(ctx context.Context) bool {
	state, err := s.store.Load(ctx)
	return err == nil && !state.Empty()
}

// Token returns the stored token, or "" when signed out or unreadable.
func (s *Service) Token() string {
	state, err := s.store.Load(context.Background())
	if err != nil {
		s.logger.Warn("session unreadable", "error", err)
		return ""
	}
	return state.Token
}

func (s *Service) start(ctx context.Context, user User) (State, error) {
	state := State{
		Token: fmt.Sprintf("mock_token_%d", s.now().UnixMilli()),
		User:  &user,
	}
	if err := s.store.Save(ctx, state); err != nil {
		return State{}, err
	}
	s.logger.Info("signed in", "user_id", user.ID, "email", user.Email)
	return state, nil
}

func (s *Service) wait(ctx context.Context, d time.Duration) error {
	if !s.delay {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
