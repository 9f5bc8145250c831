package session

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Manager owns the in-memory session and mirrors it to the storage scope
// chosen at login. It satisfies the API client's TokenProvider.
type Manager struct {
	mu        sync.Mutex
	current   Session
	remember  bool
	durable   Store
	ephemeral Store
}

// NewManager seeds the current session from the durable store first, then
// the ephemeral store. The presence of persisted data does not imply a valid
// session; callers verify the token before trusting it.
func NewManager(durable, ephemeral Store) *Manager {
	m := &Manager{
		durable:   durable,
		ephemeral: ephemeral,
	}

	if s, ok, err := durable.Load(); err == nil && ok {
		m.current = s
		m.remember = true
		return m
	} else if err != nil {
		log.Warn().Err(err).Msg("durable session load failed")
	}

	if s, ok, err := ephemeral.Load(); err == nil && ok {
		m.current = s
	}

	return m
}

// Current returns a copy of the session.
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.AccessToken
}

func (m *Manager) RefreshToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.RefreshToken
}

// Establish records a freshly authenticated session. The remember flag
// selects the storage scope; the other scope is cleared so stale copies
// cannot resurrect a logged-out session.
func (m *Manager) Establish(s Session, remember bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = s
	m.remember = remember

	if remember {
		if err := m.ephemeral.Clear(); err != nil {
			log.Warn().Err(err).Msg("ephemeral session clear failed")
		}
		return m.durable.Save(s)
	}
	if err := m.durable.Clear(); err != nil {
		log.Warn().Err(err).Msg("durable session clear failed")
	}
	return m.ephemeral.Save(s)
}

// UpdateAccessToken replaces the access token after a refresh, keeping the
// user and refresh token.
func (m *Manager) UpdateAccessToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current.AccessToken = token
	if m.remember {
		return m.durable.Save(m.current)
	}
	return m.ephemeral.Save(m.current)
}

// Clear destroys the session in memory and in both storage scopes.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = Session{}
	if err := m.durable.Clear(); err != nil {
		log.Warn().Err(err).Msg("durable session clear failed")
	}
	if err := m.ephemeral.Clear(); err != nil {
		log.Warn().Err(err).Msg("ephemeral session clear failed")
	}
}
