// Package session owns the client-side authentication lifecycle: credential
// exchange, token persistence, identity and role derivation, re-validation on
// startup, and forced logout when the server rejects the credential. It is
// the single source of truth for "who is signed in, with what privileges".
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"elibrary/internal/authclient"
	"elibrary/internal/tokenstore"
	"elibrary/pkg/domain"
)

// Status is the session lifecycle state.
type Status string

const (
	StatusAnonymous     Status = "anonymous"
	StatusVerifying     Status = "verifying"
	StatusAuthenticated Status = "authenticated"
	StatusInvalid       Status = "invalid"
)

// Session is a read-only snapshot of the authentication state. Status is
// authenticated exactly when both Token and Identity are set.
type Session struct {
	Token    string
	Identity *domain.User
	Roles    []domain.Role
	Status   Status
}

// Authenticated reports whether the snapshot holds a verified identity.
func (s Session) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.Token != "" && s.Identity != nil
}

// IsAdmin reports whether the snapshot carries the admin role.
func (s Session) IsAdmin() bool {
	return s.Authenticated() && s.Identity.IsAdmin()
}

// LoginResult is the discriminated outcome of a login attempt. Expected
// failures (bad input, bad credentials) land in Reason; only transport
// failures surface as errors, meaning the outcome could not be determined.
type LoginResult struct {
	OK     bool
	Reason string
}

// IdentityAPI is the slice of the auth client the manager needs.
type IdentityAPI interface {
	Login(ctx context.Context, email, password string) (string, error)
	Profile(ctx context.Context) (domain.User, error)
}

const expiredNotice = "Your session has expired or is invalid. Please sign in again."

// Manager serializes all session mutations. Network calls run outside the
// lock; the epoch counter makes logout win over any in-flight verification,
// so identity data arriving after logout is discarded instead of
// resurrecting the authenticated state.
type Manager struct {
	mu       sync.Mutex
	session  Session
	epoch    uint64
	notified bool

	store  tokenstore.Store
	api    IdentityAPI
	notify func(string)
}

// NewManager builds a manager over the given token store and identity API.
// notify receives the single "session expired" notice; nil discards it.
func NewManager(store tokenstore.Store, api IdentityAPI, notify func(string)) *Manager {
	if notify == nil {
		notify = func(string) {}
	}
	return &Manager{
		session: Session{Status: StatusAnonymous},
		store:   store,
		api:     api,
		notify:  notify,
	}
}

// Token implements transport.TokenSource.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Token
}

// Current returns a defensive copy of the session state.
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.session
	if m.session.Identity != nil {
		identity := *m.session.Identity
		snap.Identity = &identity
		snap.Roles = append([]domain.Role(nil), m.session.Roles...)
	}
	return snap
}

// Initialize restores the session from the persisted token, if any. Without
// a token the session stays anonymous and no network call is made. With one,
// the identity is fetched and either adopted or the token is discarded.
// Dependent views must await this call before trusting session state.
func (m *Manager) Initialize(ctx context.Context) error {
	token, err := m.store.Load()
	if errors.Is(err, tokenstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load persisted token: %w", err)
	}

	epoch := m.beginVerifying(token)
	user, err := m.api.Profile(ctx)
	if err != nil {
		m.discardVerification(epoch)
		if isAuthFailure(err) {
			// The transport hook already forced logout and notified.
			return nil
		}
		return fmt.Errorf("verify persisted token: %w", err)
	}
	m.completeVerification(epoch, user)
	return nil
}

// Login exchanges credentials for a token on the public channel, persists
// it, then runs the same identity fetch as Initialize.
func (m *Manager) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return LoginResult{Reason: "a valid email address is required"}, nil
	}
	if password == "" {
		return LoginResult{Reason: "a password is required"}, nil
	}

	epoch := m.beginVerifying("")
	token, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.discardVerification(epoch)
		var apiErr *authclient.APIError
		if errors.As(err, &apiErr) {
			return LoginResult{Reason: apiErr.Message}, nil
		}
		return LoginResult{}, fmt.Errorf("login: %w", err)
	}

	if !m.adoptToken(epoch, token) {
		// A logout raced the exchange and wins.
		return LoginResult{Reason: "signed out during sign-in"}, nil
	}

	user, err := m.api.Profile(ctx)
	if err != nil {
		m.discardVerification(epoch)
		if isAuthFailure(err) {
			return LoginResult{Reason: expiredNotice}, nil
		}
		return LoginResult{}, fmt.Errorf("fetch profile: %w", err)
	}
	if !m.completeVerification(epoch, user) {
		return LoginResult{Reason: "signed out during sign-in"}, nil
	}
	return LoginResult{OK: true}, nil
}

// Logout discards the persisted token and resets the session. Safe to call
// when already anonymous.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logoutLocked()
}

// RefreshIdentity re-runs the identity fetch with the current token, used
// after profile-mutating operations. Same handling as Initialize.
func (m *Manager) RefreshIdentity(ctx context.Context) error {
	m.mu.Lock()
	token := m.session.Token
	m.mu.Unlock()
	if token == "" {
		return nil
	}

	epoch := m.beginVerifying(token)
	user, err := m.api.Profile(ctx)
	if err != nil {
		m.discardVerification(epoch)
		if isAuthFailure(err) {
			return nil
		}
		return fmt.Errorf("refresh identity: %w", err)
	}
	m.completeVerification(epoch, user)
	return nil
}

// HandleAuthFailure implements the global interceptor contract: any
// authorized call answered 401/403 forces one logout and one user notice.
// Once the session is torn down further failures are no-ops, so concurrent
// rejections cannot loop or double-notify.
func (m *Manager) HandleAuthFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session.Token == "" {
		return
	}
	m.session.Status = StatusInvalid
	m.logoutLocked()
	if !m.notified {
		m.notified = true
		m.notify(expiredNotice)
	}
}

// TokenExpiry reports the exp claim of the held token for display. The
// signature is not verified; the server stays authoritative.
func (m *Manager) TokenExpiry() (time.Time, bool) {
	token := m.Token()
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func (m *Manager) beginVerifying(token string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = Session{Token: token, Status: StatusVerifying}
	return m.epoch
}

// adoptToken persists the freshly issued token unless a logout won the race.
func (m *Manager) adoptToken(epoch uint64, token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch {
		return false
	}
	if err := m.store.Save(token); err != nil {
		slog.Warn("persist token", "err", err)
	}
	m.session.Token = token
	return true
}

// completeVerification adopts the fetched identity unless a logout won.
func (m *Manager) completeVerification(epoch uint64, user domain.User) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch {
		return false
	}
	m.session.Identity = &user
	m.session.Roles = append([]domain.Role(nil), user.Roles...)
	m.session.Status = StatusAuthenticated
	m.notified = false
	slog.Debug("session authenticated", "user_id", user.ID)
	return true
}

// discardVerification tears a failed verification back down to anonymous,
// discarding the persisted token. No-op when a logout already won.
func (m *Manager) discardVerification(epoch uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch {
		return
	}
	m.logoutLocked()
}

// logoutLocked resets to anonymous and bumps the epoch so in-flight
// verifications discard their results. Purely local: it never issues a
// network call, so the interceptor path cannot re-enter itself.
func (m *Manager) logoutLocked() {
	m.epoch++
	if err := m.store.Delete(); err != nil {
		slog.Warn("discard token", "err", err)
	}
	m.session = Session{Status: StatusAnonymous}
}

func isAuthFailure(err error) bool {
	var apiErr *authclient.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == 401 || apiErr.Status == 403
}
