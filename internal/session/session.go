package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"taskdeck/internal/api"
	"taskdeck/internal/logging"
	"taskdeck/internal/model"
)

type State string

const (
	StateChecking        State = "checking"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

type Route string

const (
	RouteLanding   Route = "/landing"
	RouteDashboard Route = "/dashboard"
)

// Navigator receives redirect decisions. The TUI switches screens; the CLI ignores them.
type Navigator interface {
	Navigate(route Route)
}

type NopNavigator struct{}

func (NopNavigator) Navigate(Route) {}

// TokenStore is the persisted token slot. The session is its only writer.
type TokenStore interface {
	AccessToken(ctx context.Context) (string, error)
	SetAccessToken(ctx context.Context, token string) error
	ClearAccessToken(ctx context.Context) error
}

// Backend is the subset of the API client the session drives.
type Backend interface {
	Login(ctx context.Context, username, password string) (api.TokenResponse, error)
	Signup(ctx context.Context, req api.SignupRequest) (model.User, error)
	CurrentUser(ctx context.Context) (model.User, error)
}

var ErrLoginInFlight = errors.New("a login is already in progress")

type Options struct {
	Tokens    TokenStore
	Backend   Backend
	Navigator Navigator
	Logger    *zap.Logger
	// Now defaults to time.Now. Used for the token expiry pre-check.
	Now func() time.Time
}

// Session holds the current user and auth state.
type Session struct {
	tokens  TokenStore
	backend Backend
	nav     Navigator
	log     *zap.Logger
	now     func() time.Time

	loginInFlight atomic.Bool

	mu    sync.RWMutex
	state State
	user  *model.User
}

func New(opts Options) *Session {
	s := &Session{
		tokens:  opts.Tokens,
		backend: opts.Backend,
		nav:     opts.Navigator,
		log:     opts.Logger,
		now:     opts.Now,
		state:   StateChecking,
	}
	if s.nav == nil {
		s.nav = NopNavigator{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) IsAuthenticated() bool { return s.State() == StateAuthenticated }

// User returns a copy of the current user.
func (s *Session) User() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// OwnerID is the id new records are attributed to.
func (s *Session) OwnerID() (int, bool) {
	u, ok := s.User()
	if !ok {
		return 0, false
	}
	return u.ID, true
}

// Token reads the persisted token on every call.
func (s *Session) Token(ctx context.Context) (string, error) {
	return s.tokens.AccessToken(ctx)
}

func (s *Session) set(state State, user *model.User) {
	s.mu.Lock()
	s.state = state
	s.user = user
	s.mu.Unlock()
}

// Restore resolves the initial state from the stored token.
func (s *Session) Restore(ctx context.Context) error {
	s.set(StateChecking, nil)

	tok, err := s.tokens.AccessToken(ctx)
	if err != nil {
		s.set(StateUnauthenticated, nil)
		s.nav.Navigate(RouteLanding)
		return fmt.Errorf("read token: %w", err)
	}
	if tok == "" {
		s.set(StateUnauthenticated, nil)
		s.nav.Navigate(RouteLanding)
		return nil
	}

	if claims, ok := ReadClaims(tok); ok && claims.Expired(s.now()) {
		s.log.Info("stored token expired", zap.String("token", logging.MaskToken(tok)))
		s.invalidate(ctx)
		return nil
	}

	user, err := s.backend.CurrentUser(ctx)
	if err != nil {
		s.log.Warn("restore session failed", zap.String("kind", string(api.KindOf(err))), zap.String("error", logging.SanitizeError(err)))
		s.invalidate(ctx)
		return err
	}
	s.set(StateAuthenticated, &user)
	return nil
}

func (s *Session) invalidate(ctx context.Context) {
	if err := s.tokens.ClearAccessToken(ctx); err != nil {
		s.log.Warn("clear token failed", zap.Error(err))
	}
	s.set(StateUnauthenticated, nil)
	s.nav.Navigate(RouteLanding)
}

// Login persists a token only after both the token exchange and the user lookup succeed.
func (s *Session) Login(ctx context.Context, username, password string) error {
	if !s.loginInFlight.CompareAndSwap(false, true) {
		return ErrLoginInFlight
	}
	defer s.loginInFlight.Store(false)

	tr, err := s.backend.Login(ctx, username, password)
	if err != nil {
		s.set(StateUnauthenticated, nil)
		return err
	}
	if err := s.tokens.SetAccessToken(ctx, tr.AccessToken); err != nil {
		s.set(StateUnauthenticated, nil)
		return fmt.Errorf("save token: %w", err)
	}
	user, err := s.backend.CurrentUser(ctx)
	if err != nil {
		if cerr := s.tokens.ClearAccessToken(ctx); cerr != nil {
			s.log.Warn("clear token failed", zap.Error(cerr))
		}
		s.set(StateUnauthenticated, nil)
		return err
	}
	s.set(StateAuthenticated, &user)
	s.log.Info("logged in", zap.Int("user_id", user.ID))
	s.nav.Navigate(RouteDashboard)
	return nil
}

// Signup creates the account and then logs in with the same credentials.
func (s *Session) Signup(ctx context.Context, username, email, password string) error {
	if _, err := s.backend.Signup(ctx, api.SignupRequest{Username: username, Email: email, Password: password}); err != nil {
		return err
	}
	return s.Login(ctx, username, password)
}

func (s *Session) Logout(ctx context.Context) error {
	err := s.tokens.ClearAccessToken(ctx)
	s.set(StateUnauthenticated, nil)
	s.nav.Navigate(RouteLanding)
	return err
}
