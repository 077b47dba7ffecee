package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/logger"
)

// User is the profile of the logged-in user.
type User struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	DateJoined time.Time `json:"date_joined"`
}

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

// Session holds the current user and credentials. It is the only writer of
// the Store; every entity service is built on a Session.
type Session struct {
	mu        sync.Mutex
	store     Store
	creds     Credentials
	user      *User
	listeners []func()
	client    *Client
}

// NewSession creates a Session backed by store that talks to the API at
// baseURL (for example http://localhost:8080/api).
func NewSession(store Store, baseURL string, opts ...Option) *Session {
	s := &Session{store: store}
	s.client = newClient(baseURL, s, opts...)
	return s
}

// Client returns the authenticated client bound to the session.
func (s *Session) Client() *Client {
	return s.client
}

// User returns the logged-in user, or nil.
func (s *Session) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// OnTerminated registers fn to run whenever the session is terminated
// because its credentials could not be renewed.
func (s *Session) OnTerminated(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Restore loads persisted credentials and validates them by fetching the
// profile. It returns (nil, nil) when nothing is stored or the credentials
// are no longer accepted; transport failures are returned and the stored
// credentials kept.
func (s *Session) Restore(ctx context.Context) (*User, error) {
	creds, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if creds.Empty() {
		return nil, nil
	}

	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()

	user, err := s.fetchProfile(ctx)
	if err != nil {
		if errors.Is(err, ErrSessionTerminated) || errors.Is(err, ErrUnauthorized) {
			if err := s.clear(ctx); err != nil {
				return nil, err
			}
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// Login authenticates, persists the issued credentials and returns the
// profile.
func (s *Session) Login(ctx context.Context, username, password string) (*User, error) {
	var out struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	err := s.client.call(ctx, &Request{
		Method: http.MethodPost,
		Path:   "/auth/login/",
		Body:   map[string]string{"username": username, "password": password},
		Public: true,
	}, &out)
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, Credentials{Access: out.Access, Refresh: out.Refresh}); err != nil {
		return nil, err
	}
	return s.fetchProfile(ctx)
}

// Register creates an account. It does not log in.
func (s *Session) Register(ctx context.Context, req RegisterRequest) error {
	return s.client.call(ctx, &Request{
		Method: http.MethodPost,
		Path:   "/auth/register/",
		Body:   req,
		Public: true,
	}, nil)
}

// Logout asks the server to revoke the refresh token and then clears local
// state. The server call is best effort; local state is always cleared.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.revoke(ctx); err != nil {
		logger.Get().Debugw("server logout failed", "error", err)
	}
	return s.clear(ctx)
}

// revoke calls /auth/logout/. An expired access token is exchanged once so
// the refresh token does not outlive the logout; unlike Client.Do, failure
// here never terminates the session.
func (s *Session) revoke(ctx context.Context) error {
	access, refresh := s.accessToken(), s.refreshToken()
	if access == "" && refresh == "" {
		return nil
	}

	req := &Request{Method: http.MethodPost, Path: "/auth/logout/"}
	resp, err := s.client.send(ctx, req, access)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized && refresh != "" {
		if access, err = s.client.refreshAccess(ctx, refresh); err != nil {
			return err
		}
		if resp, err = s.client.send(ctx, req, access); err != nil {
			return err
		}
	}
	return checkStatus(resp)
}

// Terminate clears the credentials and notifies OnTerminated listeners.
// Listeners only fire when there was something to clear.
func (s *Session) Terminate(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	active := !s.creds.Empty() || s.user != nil
	s.creds = Credentials{}
	s.user = nil
	if err := s.store.Clear(ctx); err != nil {
		logger.Get().Warnw("failed to clear stored session", "error", err)
	}
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()

	if !active {
		return
	}
	logger.Get().Debug("session terminated")
	for _, fn := range listeners {
		fn()
	}
}

func (s *Session) fetchProfile(ctx context.Context) (*User, error) {
	var user User
	if err := s.client.call(ctx, &Request{Method: http.MethodGet, Path: "/auth/profile/"}, &user); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	u := user
	return &u, nil
}

func (s *Session) accessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.Access
}

func (s *Session) refreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.Refresh
}

func (s *Session) setAccessToken(ctx context.Context, access string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds := s.creds
	creds.Access = access
	if err := s.store.Save(ctx, creds); err != nil {
		return err
	}
	s.creds = creds
	return nil
}

func (s *Session) save(ctx context.Context, creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(ctx, creds); err != nil {
		return err
	}
	s.creds = creds
	return nil
}

func (s *Session) clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	s.user = nil
	return s.store.Clear(context.WithoutCancel(ctx))
}
