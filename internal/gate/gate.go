// Package gate blocks protected views until session state has resolved and
// routes unauthenticated users back to the login entry point.
package gate

import (
	"sync"

	"github.com/Rrens/deskflow/internal/session"
)

// State is the gate's resolution state
type State int

const (
	// StateResolving means session restore has not completed yet. Nothing
	// protected may render and no redirect may fire in this state.
	StateResolving State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Navigator performs the client-side redirect to the login view
type Navigator interface {
	NavigateToLogin()
}

// SessionSource is the slice of the session store the gate observes
type SessionSource interface {
	Subscribe(fn func(session.Event))
	Authenticated() bool
}

// Gate is a three-state machine driven by session store events
type Gate struct {
	src SessionSource
	nav Navigator

	mu         sync.Mutex
	state      State
	redirected bool
}

// New creates a gate in the resolving state and subscribes it to src
func New(src SessionSource, nav Navigator) *Gate {
	g := &Gate{src: src, nav: nav, state: StateResolving}
	src.Subscribe(g.onEvent)
	return g
}

// State returns the current gate state
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Allow reports whether protected content may render. While resolving this
// is false but no redirect has happened either; callers show a loading
// indicator instead.
func (g *Gate) Allow() bool {
	return g.State() == StateAuthenticated
}

func (g *Gate) onEvent(event session.Event) {
	switch event {
	case session.EventRestored:
		if g.src.Authenticated() {
			g.toAuthenticated()
		} else {
			g.toUnauthenticated()
		}
	case session.EventLoggedIn, session.EventUserUpdated:
		g.toAuthenticated()
	case session.EventLoggedOut, session.EventInvalidated:
		g.toUnauthenticated()
	}
}

func (g *Gate) toAuthenticated() {
	g.mu.Lock()
	g.state = StateAuthenticated
	g.redirected = false
	g.mu.Unlock()
}

// toUnauthenticated redirects at most once per unauthenticated episode:
// repeated 401 signals while already on the login view must not stack
// navigation events.
func (g *Gate) toUnauthenticated() {
	g.mu.Lock()
	redirect := !g.redirected
	g.state = StateUnauthenticated
	g.redirected = true
	g.mu.Unlock()

	if redirect && g.nav != nil {
		g.nav.NavigateToLogin()
	}
}
