package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"tms-cli/internal/api"
	"tms-cli/internal/apitest"
	"tms-cli/internal/model"
	"tms-cli/internal/route"
	"tms-cli/internal/session"

	"github.com/golang-jwt/jwt/v5"
)

func newManager(t *testing.T, opts ...Option) (*Manager, *apitest.Server, *session.FileStore) {
	t.Helper()
	srv := apitest.New(t)
	store := &session.FileStore{Dir: t.TempDir()}
	client := api.New(srv.URL, store)
	return New(store, client, opts...), srv, store
}

func TestInit_NoTokenIsUnauthenticatedWithoutNetwork(t *testing.T) {
	t.Parallel()

	m, srv, _ := newManager(t)
	if m.State() != StateUnknown {
		t.Fatalf("expected unknown before init, got %s", m.State())
	}
	m.Init(context.Background())

	if m.IsAuthenticated() || m.IsLoading() {
		t.Fatalf("expected unauthenticated and not loading, got %s", m.State())
	}
	if m.User() != nil {
		t.Fatalf("expected no user")
	}
	if n := len(srv.Requests()); n != 0 {
		t.Fatalf("expected no network calls, got %d", n)
	}
	if !errors.Is(m.RequireAuth(), ErrNotAuthenticated) {
		t.Fatalf("expected guard to reject")
	}
}

func TestInit_RestoresCachedUser(t *testing.T) {
	t.Parallel()

	m, srv, store := newManager(t)
	_ = store.SetToken("opaque")
	_ = store.SetUser(model.User{ID: 7, Name: "Ann", Role: model.RoleAdmin})

	m.Init(context.Background())
	if !m.IsAuthenticated() {
		t.Fatalf("expected authenticated, got %s", m.State())
	}
	if u := m.User(); u == nil || u.ID != 7 || !u.IsAdmin() {
		t.Fatalf("unexpected user %#v", u)
	}
	if m.RequireAuth() != nil {
		t.Fatalf("expected guard to pass")
	}
	if len(srv.Requests()) != 0 {
		t.Fatalf("expected no network calls")
	}
}

func TestInit_TokenWithoutUserIsDiscarded(t *testing.T) {
	t.Parallel()

	m, _, store := newManager(t)
	_ = store.SetToken("opaque")

	m.Init(context.Background())
	if m.IsAuthenticated() {
		t.Fatalf("expected unauthenticated")
	}
	if store.Token() != "" {
		t.Fatalf("expected stale token cleared")
	}
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestInit_TokenExpiryCheck(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		token    func(t *testing.T) string
		check    bool
		wantAuth bool
	}{
		{name: "expired jwt", token: func(t *testing.T) string { return signed(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()}) }, check: true, wantAuth: false},
		{name: "valid jwt", token: func(t *testing.T) string { return signed(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()}) }, check: true, wantAuth: true},
		{name: "jwt without exp", token: func(t *testing.T) string { return signed(t, jwt.MapClaims{"sub": "1"}) }, check: true, wantAuth: true},
		{name: "opaque token", token: func(*testing.T) string { return "not-a-jwt" }, check: true, wantAuth: true},
		{name: "expired jwt, check off", token: func(t *testing.T) string { return signed(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()}) }, check: false, wantAuth: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m, _, store := newManager(t, WithTokenExpiryCheck(tc.check), withClock(func() time.Time { return now }))
			_ = store.SetToken(tc.token(t))
			_ = store.SetUser(model.User{ID: 1})

			m.Init(context.Background())
			if m.IsAuthenticated() != tc.wantAuth {
				t.Fatalf("authenticated: got %v want %v", m.IsAuthenticated(), tc.wantAuth)
			}
			if !tc.wantAuth && store.Token() != "" {
				t.Fatalf("expected expired session cleared")
			}
		})
	}
}

func TestLogin_StoresSessionAndAuthenticates(t *testing.T) {
	t.Parallel()

	m, srv, store := newManager(t)
	want := srv.AddUser("Ann", "ann@example.com", "secret1", model.RoleUser)
	m.Init(context.Background())

	got, err := m.Login(context.Background(), model.LoginRequest{Email: "ann@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != want.ID || !m.IsAuthenticated() {
		t.Fatalf("expected authenticated as %d, got %#v (%s)", want.ID, got, m.State())
	}
	if store.Token() != srv.IssuedToken {
		t.Fatalf("expected token stored, got %q", store.Token())
	}
	if u := store.User(); u == nil || u.ID != want.ID || u.Email != want.Email {
		t.Fatalf("expected stored user to equal returned profile, got %#v", u)
	}
	if u := m.User(); u == nil || u.ID != store.User().ID || u.Email != store.User().Email {
		t.Fatalf("manager user and session user differ")
	}
}

func TestLogin_FailureRestoresPreviousState(t *testing.T) {
	t.Parallel()

	m, srv, store := newManager(t)
	srv.AddUser("Ann", "ann@example.com", "secret1", model.RoleUser)
	m.Init(context.Background())

	_, err := m.Login(context.Background(), model.LoginRequest{Email: "ann@example.com", Password: "nope!!"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if api.Message(err) != "Invalid email or password" {
		t.Fatalf("expected server message, got %q", api.Message(err))
	}
	if m.State() != StateUnauthenticated {
		t.Fatalf("expected previous state restored, got %s", m.State())
	}
	if store.Token() != "" {
		t.Fatalf("expected nothing stored")
	}
}

type tokenlessClient struct{ user model.User }

func (c tokenlessClient) Login(context.Context, model.LoginRequest) (model.AuthResponse, error) {
	return model.AuthResponse{User: c.user}, nil
}

func (c tokenlessClient) Register(context.Context, model.RegisterRequest) (model.AuthResponse, error) {
	return model.AuthResponse{User: c.user}, nil
}

func TestLogin_ResponseWithoutTokenFails(t *testing.T) {
	t.Parallel()

	store := &session.FileStore{Dir: t.TempDir()}
	m := New(store, tokenlessClient{user: model.User{ID: 1, Name: "Ann", Role: model.RoleUser}})
	m.Init(context.Background())

	_, err := m.Login(context.Background(), model.LoginRequest{Email: "ann@example.com", Password: "secret1"})
	if err == nil {
		t.Fatalf("expected error for a response without a token")
	}
	if got := api.Message(err); got != "An unexpected error occurred" {
		t.Fatalf("unexpected message %q", got)
	}
	if m.State() != StateUnauthenticated || m.User() != nil {
		t.Fatalf("expected signed out, got %s", m.State())
	}
	if store.Token() != "" || store.User() != nil {
		t.Fatalf("expected nothing stored")
	}

	_, err = m.Register(context.Background(), model.RegisterRequest{Name: "Ann", Email: "ann@example.com", Password: "secret1", RoleName: model.RoleUser})
	if err == nil || m.State() != StateUnauthenticated {
		t.Fatalf("expected register without a token to fail, got %v %s", err, m.State())
	}
}

func TestRegister_AutoLogin(t *testing.T) {
	t.Parallel()

	m, srv, store := newManager(t)
	m.Init(context.Background())

	u, err := m.Register(context.Background(), model.RegisterRequest{
		Name: "Bob", Email: "bob@example.com", Password: "secret1", RoleName: model.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !m.IsAuthenticated() || !u.IsAdmin() {
		t.Fatalf("expected authenticated admin, got %#v (%s)", u, m.State())
	}
	if store.Token() != srv.IssuedToken {
		t.Fatalf("expected token stored")
	}
}

func TestRegister_ServerFailure(t *testing.T) {
	t.Parallel()

	m, srv, _ := newManager(t)
	srv.FailNext(http.MethodPost, "/auth/register", http.StatusBadRequest, "Email already registered")
	m.Init(context.Background())

	if _, err := m.Register(context.Background(), model.RegisterRequest{Name: "x", Email: "x@y.io", Password: "secret1", RoleName: model.RoleUser}); api.Message(err) != "Email already registered" {
		t.Fatalf("unexpected error %v", err)
	}
	if m.IsAuthenticated() {
		t.Fatalf("expected unauthenticated")
	}
}

func TestLogout_ClearsSessionAndNavigates(t *testing.T) {
	t.Parallel()

	rec := &route.Recorder{}
	m, srv, store := newManager(t, WithNavigator(rec))
	srv.AddUser("Ann", "ann@example.com", "secret1", model.RoleUser)
	m.Init(context.Background())
	if _, err := m.Login(context.Background(), model.LoginRequest{Email: "ann@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := m.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if store.Token() != "" || store.User() != nil {
		t.Fatalf("expected session cleared")
	}
	if m.IsAuthenticated() || m.User() != nil {
		t.Fatalf("expected signed out")
	}
	if rec.Last() != route.To(route.Login) {
		t.Fatalf("expected navigation to login, got %v", rec.Routes())
	}

	fresh := New(&session.FileStore{Dir: store.Dir}, nil)
	fresh.Init(context.Background())
	if fresh.IsAuthenticated() {
		t.Fatalf("expected a fresh manager to be unauthenticated")
	}
}

func TestSetNavigator_ReplacesLogoutDestination(t *testing.T) {
	t.Parallel()

	first := &route.Recorder{}
	second := &route.Recorder{}
	m := New(nil, nil, WithNavigator(first))
	m.SetNavigator(second)
	_ = m.Logout()

	if len(first.Routes()) != 0 {
		t.Fatalf("expected the replaced navigator to be unused, got %v", first.Routes())
	}
	if second.Last() != route.To(route.Login) {
		t.Fatalf("expected navigation to login, got %v", second.Routes())
	}

	m.SetNavigator(nil)
	_ = m.Logout()
}

func TestManager_TokenReadsSession(t *testing.T) {
	t.Parallel()

	store := &session.Memory{}
	m := New(store, nil)
	if m.Token() != "" {
		t.Fatalf("expected empty token")
	}
	_ = store.SetToken("abc")
	if m.Token() != "abc" {
		t.Fatalf("expected token from session")
	}
}

func TestNew_NilStoreUsesMemory(t *testing.T) {
	t.Parallel()

	m := New(nil, nil)
	m.Init(context.Background())
	if m.State() != StateUnauthenticated {
		t.Fatalf("unexpected state %s", m.State())
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()

	for s, want := range map[State]string{
		StateUnknown: "unknown", StateLoading: "loading",
		StateAuthenticated: "authenticated", StateUnauthenticated: "unauthenticated",
	} {
		if s.String() != want {
			t.Fatalf("got %q want %q", s.String(), want)
		}
	}
}

