// Package domain defines the core domain models for authgate.
package domain

// Status enumerates the states of the authentication state machine.
type Status string

const (
	// StatusAnonymous means no session is established.
	StatusAnonymous Status = "anonymous"

	// StatusAuthenticating means a login or registration is in flight.
	StatusAuthenticating Status = "authenticating"

	// StatusAuthenticated means a valid session and identity are held.
	StatusAuthenticated Status = "authenticated"

	// StatusError means the last login or registration attempt failed.
	// The UI may re-attempt, returning to StatusAuthenticating.
	StatusError Status = "error"
)

// transitions is the explicit transition table of the state machine.
// Anything not listed here is an illegal transition.
var transitions = map[Status]map[Status]bool{
	StatusAnonymous: {
		StatusAuthenticating: true,
	},
	StatusAuthenticating: {
		StatusAuthenticated: true,
		StatusError:         true,
		// Registration that succeeds without auto-issued tokens drops
		// back to anonymous with no error.
		StatusAnonymous: true,
	},
	StatusAuthenticated: {
		// Refresh success re-enters authenticated with a new pair.
		StatusAuthenticated: true,
		// Logout, or forced logout on refresh failure.
		StatusAnonymous: true,
	},
	StatusError: {
		StatusAuthenticating: true,
		StatusAnonymous:      true,
	},
}

// CanTransition reports whether the machine may move from s to next.
func (s Status) CanTransition(next Status) bool {
	return transitions[s][next]
}

// State is an immutable snapshot of the authentication state machine.
// Exactly one live state exists per controller; callers receive copies.
type State struct {
	Status Status

	// Loading is true from controller start until the startup check
	// (vault load, identity fetch, recovery refresh) completes. Guards
	// must not render protected content while Loading is set.
	Loading bool

	Session  *Session
	Identity *Identity
	Tenant   *Tenant

	// LastError records the most recent failure surfaced to the UI.
	// It is only meaningful when Status is StatusError.
	LastError error
}

// Authenticated reports whether the snapshot holds a live session.
func (s State) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.Session.Valid()
}
