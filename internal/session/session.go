// Package session holds the device session: which user, if any, the local
// client is signed in as. The state machine is anonymous → authenticated →
// anonymous; the authenticated user id is mirrored to durable storage under
// a fixed key so it survives restarts and is restored once at boot.
package session

import (
	"sync"

	"centavo/internal/models"
)

// Key is the fixed name the persisted user id is stored under.
const Key = "session_user_id"

// Store persists the session user id across process restarts.
type Store interface {
	// Save durably records the signed-in user id.
	Save(userID int64) error
	// Load returns the persisted user id, or ok=false when none is stored.
	Load() (int64, bool, error)
	// Clear removes the persisted id. Clearing an absent id is not an error.
	Clear() error
}

// Manager is the process-wide session object. All access to the current
// user goes through it; nothing else holds ambient auth state.
type Manager struct {
	store Store

	mu   sync.RWMutex
	user *models.User
}

// NewManager creates a Manager in the anonymous state.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Establish transitions to the authenticated state, persisting the user id
// first. The in-memory state is untouched when persistence fails.
func (m *Manager) Establish(user *models.User) error {
	if err := m.store.Save(user.ID); err != nil {
		return err
	}
	m.mu.Lock()
	m.user = user
	m.mu.Unlock()
	return nil
}

// Set installs the current user without touching durable storage. Used by
// the boot-time restore, which re-reads what login already persisted.
func (m *Manager) Set(user *models.User) {
	m.mu.Lock()
	m.user = user
	m.mu.Unlock()
}

// Clear transitions back to anonymous. The persisted id is deleted
// best-effort: a failing store never blocks sign-out, so the in-memory
// user is dropped regardless.
func (m *Manager) Clear() {
	_ = m.store.Clear()
	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()
}

// Current returns the signed-in user, or nil when anonymous.
func (m *Manager) Current() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// PersistedID returns the user id recorded by a previous login, if any.
func (m *Manager) PersistedID() (int64, bool, error) {
	return m.store.Load()
}
