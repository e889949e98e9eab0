// Package session holds the signed-in user and the in-memory access token,
// restores sessions from the durable login hint, and refreshes tokens for
// the API client.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mockprep/mockprep-go/internal/apiclient"
	"github.com/mockprep/mockprep-go/internal/localstore"
	"github.com/mockprep/mockprep-go/internal/model"
)

// HintKey is the only auth-related key kept in durable storage.
const HintKey = "isLoggedIn"

const (
	loginPath         = "/api/auth/login"
	registerPath      = "/api/auth/register"
	googlePath        = "/api/auth/google-signup"
	logoutPath        = "/api/auth/logout"
	profilePath       = "/api/auth/profile"
	expertProfilePath = "/api/expert/profile"
)

// State is the lifecycle position of a Manager.
type State int

const (
	Uninitialized State = iota
	Restoring
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Restoring:
		return "restoring"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	}
	return "unknown"
}

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Email    string
	Password string
	UserType string
	Name     string
	GoogleID string
}

// GoogleLoginResult reports whether the Google account is already registered.
// When Success is false, GoogleData prefills registration and the session is
// left untouched.
type GoogleLoginResult struct {
	Success    bool
	User       *model.User
	GoogleData *model.GoogleData
}

// Manager owns the session state. All mutation goes through its methods.
type Manager struct {
	client *apiclient.Client
	store  localstore.Store
	logger *slog.Logger

	mu      sync.RWMutex
	state   State
	user    *model.User
	token   string
	loading bool
}

// New creates a Manager and binds it to client as token source and refresher.
func New(client *apiclient.Client, store localstore.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		client:  client,
		store:   store,
		logger:  logger,
		state:   Uninitialized,
		loading: true,
	}
	client.UseAuth(m)
	return m
}

// Init restores a previous session when the durable hint is present. Without
// the hint it goes straight to Anonymous and makes no request.
func (m *Manager) Init(ctx context.Context) State {
	if !m.hasHint() {
		m.mu.Lock()
		m.state = Anonymous
		m.loading = false
		m.mu.Unlock()
		return Anonymous
	}

	m.mu.Lock()
	m.state = Restoring
	m.loading = true
	m.mu.Unlock()

	if _, err := m.Refresh(ctx); err != nil {
		m.logger.Info("session restore failed", "error", err)
		return m.State()
	}

	if user := m.FetchProfile(ctx); user == nil {
		m.clear()
		return Anonymous
	}

	m.mu.Lock()
	m.state = Authenticated
	m.loading = false
	m.mu.Unlock()
	return Authenticated
}

// Login signs in with email and password.
func (m *Manager) Login(ctx context.Context, email, password string) (*model.User, error) {
	var resp model.AuthResponse
	req := model.LoginRequest{Email: email, Password: password}
	if err := m.client.Post(apiclient.NoRefresh(ctx), loginPath, req, &resp); err != nil {
		return nil, newAuthError("login", err, "Login failed")
	}
	return m.establish("login", resp.AccessToken, resp.User)
}

// GoogleLogin verifies a Google OAuth access token with the backend.
func (m *Manager) GoogleLogin(ctx context.Context, oauthAccessToken string) (GoogleLoginResult, error) {
	var resp model.GoogleAuthResponse
	req := model.GoogleAuthRequest{AccessToken: oauthAccessToken}
	if err := m.client.Post(apiclient.NoRefresh(ctx), googlePath, req, &resp); err != nil {
		return GoogleLoginResult{}, newAuthError("google login", err, "Google login failed")
	}

	if !resp.UserExists || resp.User == nil {
		return GoogleLoginResult{Success: false, GoogleData: resp.GoogleData}, nil
	}

	user, err := m.establish("google login", resp.AccessToken, *resp.User)
	if err != nil {
		return GoogleLoginResult{}, err
	}
	return GoogleLoginResult{Success: true, User: user}, nil
}

// Register creates an account and signs in with it.
func (m *Manager) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	var resp model.AuthResponse
	req := model.RegisterRequest{
		Email:    in.Email,
		Password: in.Password,
		UserType: in.UserType,
		Name:     in.Name,
		GoogleID: in.GoogleID,
	}
	if err := m.client.Post(apiclient.NoRefresh(ctx), registerPath, req, &resp); err != nil {
		return nil, newAuthError("register", err, "Registration failed")
	}
	return m.establish("register", resp.AccessToken, resp.User)
}

// Logout asks the backend to end the session and then clears local state
// whatever the answer was.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.client.Post(apiclient.NoRefresh(ctx), logoutPath, nil, nil); err != nil {
		m.logger.Warn("logout request failed", "error", err)
	}
	m.clear()
}

// FetchProfile loads the current profile. Experts get their expert photo in
// place of the general one. It returns nil on failure.
func (m *Manager) FetchProfile(ctx context.Context) *model.User {
	var resp model.ProfileResponse
	if err := m.client.Get(ctx, profilePath, &resp); err != nil {
		m.logger.Warn("fetching profile failed", "error", err)
		return nil
	}
	raw := resp.Unwrap()

	if raw.UserType == model.UserTypeExpert {
		var expert model.ExpertProfileResponse
		if err := m.client.Get(ctx, expertProfilePath, &expert); err != nil {
			m.logger.Warn("fetching expert profile failed", "error", err)
		} else if photo := expert.Unwrap().Photo; photo != "" {
			raw.ProfileImage = photo
		}
	}

	user := raw.Normalize()
	m.mu.Lock()
	m.user = &user
	m.mu.Unlock()

	out := user
	return &out
}

// Refresh exchanges the refresh cookie for a new access token. Any failure
// ends the session.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	var resp model.RefreshResponse
	if err := m.client.Post(ctx, m.client.RefreshPath(), nil, &resp); err != nil {
		m.clear()
		return "", err
	}
	if resp.AccessToken == "" {
		m.clear()
		return "", apiclient.ErrEmptyToken
	}

	m.mu.Lock()
	m.token = resp.AccessToken
	m.mu.Unlock()
	return resp.AccessToken, nil
}

// Token returns the current access token, or "" when signed out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// User returns a copy of the signed-in user, or nil.
func (m *Manager) User() *model.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// IsLoading reports whether initialization is still in progress.
func (m *Manager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// State returns the lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsAuthenticated reports whether a user is signed in.
func (m *Manager) IsAuthenticated() bool {
	return m.State() == Authenticated
}

func (m *Manager) establish(op, token string, raw model.RawUser) (*model.User, error) {
	if token == "" {
		return nil, &AuthError{Op: op, Message: "Server returned no access token", Err: apiclient.ErrEmptyToken}
	}

	user := raw.Normalize()
	m.mu.Lock()
	m.token = token
	m.user = &user
	m.state = Authenticated
	m.loading = false
	m.mu.Unlock()

	if err := m.store.Set(HintKey, "true"); err != nil {
		m.logger.Warn("saving login hint failed", "error", err)
	}

	out := user
	return &out, nil
}

func (m *Manager) clear() {
	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.state = Anonymous
	m.loading = false
	m.mu.Unlock()

	if err := m.store.Remove(HintKey); err != nil {
		m.logger.Warn("removing login hint failed", "error", err)
	}
}

func (m *Manager) hasHint() bool {
	v, ok, err := m.store.Get(HintKey)
	if err != nil {
		m.logger.Warn("reading login hint failed", "error", err)
		return false
	}
	return ok && v == "true"
}

// AuthError is returned by the sign-in operations. Message is meant for the user.
type AuthError struct {
	Op      string
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

func newAuthError(op string, err error, fallback string) *AuthError {
	return &AuthError{Op: op, Message: apiclient.Message(err, fallback), Err: err}
}

// ErrorMessage extracts the user-facing message from a sign-in error.
func ErrorMessage(err error) string {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
