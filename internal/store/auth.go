package store

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/bincshop/storefront-client/internal/alert"
	"github.com/bincshop/storefront-client/internal/identity"
	"github.com/bincshop/storefront-client/internal/session"
)

// Auth tracks the authentication state. It is seeded synchronously from the
// persisted session, but a persisted token is never trusted: authenticated
// stays false and the operation stays loading until Verify confirms the
// token with the server.
type Auth struct {
	mu sync.Mutex

	identity *identity.Service
	sessions *session.Manager
	notify   alert.Notifier

	user          *session.User
	authenticated bool
	op            OpState

	onLogin []func(context.Context)
}

func NewAuth(svc *identity.Service, sessions *session.Manager, notify alert.Notifier) *Auth {
	a := &Auth{
		identity: svc,
		sessions: sessions,
		notify:   notify,
	}

	current := sessions.Current()
	a.user = seedUser(current)
	if current.AccessToken != "" {
		// Verification pending until Verify runs.
		a.op.Loading = true
	}
	return a
}

// seedUser prefers the persisted user record and falls back to the access
// token's claims for display before verification.
func seedUser(s session.Session) *session.User {
	if s.User != nil {
		return s.User
	}
	if s.AccessToken == "" {
		return nil
	}
	claims, err := session.ParseClaims(s.AccessToken)
	if err != nil {
		return nil
	}
	return &session.User{
		ID:       claims.UserID,
		UserType: claims.UserRole(),
	}
}

// OnLogin registers a hook that runs after every successful login, such as
// the guest favorites merge. Hook failures are non-fatal to the login.
func (a *Auth) OnLogin(hook func(context.Context)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onLogin = append(a.onLogin, hook)
}

// Verify settles the seeded state: a confirmed token flips authenticated, a
// rejected or absent one leaves the store anonymous. A rejected persisted
// token is cleared so it cannot be re-seeded on the next start.
func (a *Auth) Verify(ctx context.Context) {
	a.mu.Lock()
	if a.sessions.AccessToken() == "" {
		a.user = nil
		a.op.succeed()
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	err := a.identity.Verify(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		log.Warn().Err(err).Msg("persisted session rejected by server")
		a.identity.Clear()
		a.user = nil
		a.authenticated = false
		a.op.fail(err)
		return
	}
	a.authenticated = true
	a.op.succeed()
}

// Login authenticates and, on success, runs the registered login hooks. A
// failed login records the error and leaves any prior user and token
// untouched.
func (a *Auth) Login(ctx context.Context, creds identity.Credentials, remember bool) error {
	a.mu.Lock()
	a.op.start()
	a.mu.Unlock()

	sess, err := a.identity.Login(ctx, creds, remember)

	a.mu.Lock()
	if err != nil {
		a.op.fail(err)
		a.mu.Unlock()
		return err
	}
	a.user = seedUser(sess)
	a.authenticated = true
	a.op.succeed()
	hooks := a.onLogin
	a.mu.Unlock()

	for _, hook := range hooks {
		hook(ctx)
	}
	return nil
}

// Register creates an account without authenticating: the server issues no
// tokens at registration, so the new user logs in separately.
func (a *Auth) Register(ctx context.Context, reg identity.Registration) (*session.User, error) {
	a.mu.Lock()
	a.op.start()
	a.mu.Unlock()

	user, err := a.identity.Register(ctx, reg)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.op.fail(err)
		return nil, err
	}
	a.op.succeed()
	return user, nil
}

// Logout drops the authenticated state. Local state is cleared even when the
// server call fails.
func (a *Auth) Logout(ctx context.Context) error {
	err := a.identity.Logout(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.user = nil
	a.authenticated = false
	a.op = OpState{}
	return err
}

func (a *Auth) Authenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.authenticated
}

func (a *Auth) User() *session.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user
}

func (a *Auth) State() OpState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.op
}
