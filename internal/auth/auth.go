// Package auth owns the process-wide authentication state: who is signed in,
// whether the session is still being read, and the login, register and
// logout flows that create or destroy the persisted session.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"tms-cli/internal/api"
	"tms-cli/internal/logging"
	"tms-cli/internal/model"
	"tms-cli/internal/route"
	"tms-cli/internal/session"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNotAuthenticated = errors.New("not authenticated: run `tms login` first")

var errMissingToken = errors.New("auth response without a token")

type State int

const (
	StateUnknown State = iota
	StateLoading
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Client is the part of the API the manager calls.
type Client interface {
	Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error)
}

type Manager struct {
	store  session.Store
	client Client
	nav    route.Navigator
	logger *slog.Logger

	checkExpiry bool
	now         func() time.Time

	mu    sync.RWMutex
	state State
	user  *model.User
}

type Option func(*Manager)

// WithNavigator sets where Logout sends the user.
func WithNavigator(n route.Navigator) Option {
	return func(m *Manager) {
		if n != nil {
			m.nav = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = logging.OrDiscard(l) }
}

// WithTokenExpiryCheck makes Init discard a stored JWT whose exp has passed.
// Tokens that are not JWTs, or carry no exp, are kept.
func WithTokenExpiryCheck(enabled bool) Option {
	return func(m *Manager) { m.checkExpiry = enabled }
}

func withClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func New(store session.Store, client Client, opts ...Option) *Manager {
	if store == nil {
		store = &session.Memory{}
	}
	m := &Manager{
		store:  store,
		client: client,
		nav:    route.Nowhere,
		logger: logging.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init reads the persisted session once. It never touches the network.
func (m *Manager) Init(ctx context.Context) {
	m.setState(StateLoading, nil)

	token := m.store.Token()
	if token == "" {
		m.setState(StateUnauthenticated, nil)
		return
	}
	if m.checkExpiry && tokenExpired(token, m.now()) {
		m.logger.Info("stored session expired; signing out")
		m.clearSession()
		m.setState(StateUnauthenticated, nil)
		return
	}
	u := m.store.User()
	if u == nil {
		m.logger.Debug("session token without a cached user; discarding")
		m.clearSession()
		m.setState(StateUnauthenticated, nil)
		return
	}
	m.setState(StateAuthenticated, u)
}

func (m *Manager) Login(ctx context.Context, req model.LoginRequest) (model.User, error) {
	return m.authenticate(ctx, "login", func(ctx context.Context) (model.AuthResponse, error) {
		return m.client.Login(ctx, req)
	})
}

// Register creates the account and signs in with the returned token.
func (m *Manager) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	return m.authenticate(ctx, "register", func(ctx context.Context) (model.AuthResponse, error) {
		return m.client.Register(ctx, req)
	})
}

func (m *Manager) authenticate(ctx context.Context, op string, call func(context.Context) (model.AuthResponse, error)) (model.User, error) {
	m.mu.Lock()
	prevState, prevUser := m.state, m.user
	m.state = StateLoading
	m.mu.Unlock()

	resp, err := call(ctx)
	if err == nil && resp.Token == "" {
		err = api.Unexpected(errMissingToken)
	}
	if err == nil {
		err = m.persist(resp)
	}
	if err != nil {
		m.logger.Debug(op+" failed", slog.String("error", err.Error()))
		m.setState(prevState, prevUser)
		return model.User{}, err
	}

	u := resp.User
	m.setState(StateAuthenticated, &u)
	m.logger.Info(op+" succeeded", slog.Int64("user_id", u.ID), slog.String("role", string(u.Role)))
	return u, nil
}

func (m *Manager) persist(resp model.AuthResponse) error {
	if err := m.store.SetToken(resp.Token); err != nil {
		return err
	}
	if err := m.store.SetUser(resp.User); err != nil {
		m.clearSession()
		return err
	}
	return nil
}

// Logout clears the session and sends the user to the login screen.
func (m *Manager) Logout() error {
	err := m.store.Clear()
	if err != nil {
		m.logger.Warn("clear session", slog.String("error", err.Error()))
	}
	m.setState(StateUnauthenticated, nil)
	m.mu.RLock()
	nav := m.nav
	m.mu.RUnlock()
	nav.Navigate(route.To(route.Login))
	return err
}

// SetNavigator replaces the Logout destination after construction. The TUI
// uses it because its navigator only exists once the program starts.
func (m *Manager) SetNavigator(n route.Navigator) {
	if n == nil {
		n = route.Nowhere
	}
	m.mu.Lock()
	m.nav = n
	m.mu.Unlock()
}

func (m *Manager) User() *model.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) IsAuthenticated() bool { return m.State() == StateAuthenticated }

func (m *Manager) IsLoading() bool { return m.State() == StateLoading }

// RequireAuth is the route guard for protected screens and commands.
func (m *Manager) RequireAuth() error {
	if !m.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

// Token exposes the stored bearer token to the API client.
func (m *Manager) Token() string { return m.store.Token() }

func (m *Manager) setState(s State, u *model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
	m.user = u
}

func (m *Manager) clearSession() {
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("clear session", slog.String("error", err.Error()))
	}
}

func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
