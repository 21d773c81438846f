package login

import (
	"errors"
	"sync"

	"github.com/lab1702/ironclad-sim/internal/idgen"
	"github.com/lab1702/ironclad-sim/internal/logging"
	"github.com/lab1702/ironclad-sim/internal/shipmodel"
)

// Sentinel errors for the protocol/authentication error taxonomy of
// spec.md §7(a).
var (
	ErrNoSuchAccount   = errors.New("login: no such account")
	ErrWrongPassword   = errors.New("login: wrong password")
	ErrAlreadyLoggedIn = errors.New("login: already logged in")
)

// loggedInSentinel replaces an account's map entry while it is connected,
// enforcing the single-login invariant of spec.md §3/§4.8 without needing
// a second "is logged in" map.
var loggedInSentinel = &Account{Username: "\x00loggedin"}

// Manager is the in-memory AccountManager of spec.md §4.8/§6 ("Persisted
// state: Only the in-memory AccountManager map").
type Manager struct {
	mu       sync.Mutex
	accounts map[string]*Account
	log      logging.Logger
	seed     int64
}

// NewManager creates an empty account manager. seed drives deterministic
// ship generation for newly created accounts (spec.md §9 Determinism).
func NewManager(log logging.Logger, seed int64) *Manager {
	return &Manager{accounts: make(map[string]*Account), log: log, seed: seed}
}

// Login resolves credentials against the account map, auto-creating a
// level-5 ship for a brand-new username (spec.md §4.8), and replaces the
// account's map entry with the single-login sentinel on success. clientID
// is the caller's already-connected transport identity (spec.md §4.1): the
// account binds to it rather than minting a second, disconnected one.
func (m *Manager) Login(clientID idgen.ClientId, username, password string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, exists := m.accounts[username]
	switch {
	case exists && acct == loggedInSentinel:
		return nil, ErrAlreadyLoggedIn
	case !exists:
		acct = m.createAccount(username, password)
	case acct.Password != password:
		return nil, ErrWrongPassword
	}

	acct.ClientID = clientID
	m.accounts[username] = loggedInSentinel
	m.log.Info("account logged in", logging.Str("username", username))
	return acct, nil
}

func (m *Manager) createAccount(username, password string) *Account {
	shipID := idgen.NewShipId()
	sh := shipmodel.Generate(m.seed, shipID, username+"'s ship", shipmodel.HullDestroyer, 5)
	stored := sh.ToStored()

	acct := &Account{
		ID:       idgen.NewAccountId(),
		Username: username,
		Password: password,
		Ship:     &stored,
	}
	m.log.Info("account created", logging.Str("username", username))
	return acct
}

// Logout returns an account to the available map under its username,
// releasing the single-login sentinel.
func (m *Manager) Logout(acct *Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct.ClientID = idgen.NilClientId
	m.accounts[acct.Username] = acct
	m.log.Info("account logged out", logging.Str("username", acct.Username))
}
