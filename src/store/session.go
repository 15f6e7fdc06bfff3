package store

import (
	"sync"

	"drift-observer/src/models"
)

// -----------------------------------------------------------------------------
// SessionStore holds the wallet viewing context: the connected wallet's
// public key or a read-only lookup address. Constructor-injected and
// mutex-guarded so sessions can be tested and reset deterministically.
// -----------------------------------------------------------------------------

type SessionStore struct {
	mu    sync.RWMutex
	state models.MSessionState
}

// -----------------------------------------------------------------------------

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// -----------------------------------------------------------------------------

// State returns a copy of the current session state.
func (s *SessionStore) State() models.MSessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// -----------------------------------------------------------------------------

// SetConnecting marks a connection attempt in progress.
func (s *SessionStore) SetConnecting(connecting bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Connecting = connecting
}

// -----------------------------------------------------------------------------

// SetDisconnecting marks a disconnect in progress.
func (s *SessionStore) SetDisconnecting(disconnecting bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Disconnecting = disconnecting
}

// -----------------------------------------------------------------------------

// SetConnected records an authenticated wallet connection. Connecting a
// wallet replaces any lookup context: only one viewing context is active.
func (s *SessionStore) SetConnected(publicKey, walletName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PublicKey = publicKey
	s.state.WalletName = walletName
	s.state.Connected = true
	s.state.Connecting = false
	s.state.LookupAddress = ""
}

// -----------------------------------------------------------------------------

// SetLookupAddress switches to read-only viewing of another wallet. Setting
// a lookup address replaces any connected-wallet context.
func (s *SessionStore) SetLookupAddress(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = models.MSessionState{LookupAddress: address}
}

// -----------------------------------------------------------------------------

// ActiveAuthority returns the address currently under view and whether any
// viewing context is active at all.
func (s *SessionStore) ActiveAuthority() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state.Connected && s.state.PublicKey != "" {
		return s.state.PublicKey, true
	}
	if s.state.LookupAddress != "" {
		return s.state.LookupAddress, true
	}
	return "", false
}

// -----------------------------------------------------------------------------

// Disconnect resets the store to the logged-out state.
func (s *SessionStore) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = models.MSessionState{}
}
