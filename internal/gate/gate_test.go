package gate

import (
	"testing"

	"github.com/Rrens/deskflow/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource hands the gate's subscription back to the test so events can be
// driven directly.
type fakeSource struct {
	fn            func(session.Event)
	authenticated bool
}

func (f *fakeSource) Subscribe(fn func(session.Event)) { f.fn = fn }
func (f *fakeSource) Authenticated() bool              { return f.authenticated }

type fakeNavigator struct {
	calls int
}

func (f *fakeNavigator) NavigateToLogin() { f.calls++ }

func TestGate_StartsResolving(t *testing.T) {
	src := &fakeSource{}
	nav := &fakeNavigator{}
	g := New(src, nav)

	assert.Equal(t, StateResolving, g.State())
	assert.False(t, g.Allow())
	// No redirect may fire before restore resolved.
	assert.Zero(t, nav.calls)
}

func TestGate_RestoreResolves(t *testing.T) {
	t.Run("with session", func(t *testing.T) {
		src := &fakeSource{authenticated: true}
		nav := &fakeNavigator{}
		g := New(src, nav)
		require.NotNil(t, src.fn)

		src.fn(session.EventRestored)

		assert.Equal(t, StateAuthenticated, g.State())
		assert.True(t, g.Allow())
		assert.Zero(t, nav.calls)
	})

	t.Run("without session", func(t *testing.T) {
		src := &fakeSource{authenticated: false}
		nav := &fakeNavigator{}
		g := New(src, nav)

		src.fn(session.EventRestored)

		assert.Equal(t, StateUnauthenticated, g.State())
		assert.False(t, g.Allow())
		assert.Equal(t, 1, nav.calls)
	})
}

func TestGate_LoginAndLogout(t *testing.T) {
	src := &fakeSource{}
	nav := &fakeNavigator{}
	g := New(src, nav)

	src.fn(session.EventLoggedIn)
	assert.True(t, g.Allow())

	src.fn(session.EventLoggedOut)
	assert.Equal(t, StateUnauthenticated, g.State())
	assert.Equal(t, 1, nav.calls)
}

func TestGate_RedirectOncePerEpisode(t *testing.T) {
	src := &fakeSource{}
	nav := &fakeNavigator{}
	g := New(src, nav)

	// A burst of 401 teardowns produces exactly one redirect.
	src.fn(session.EventInvalidated)
	src.fn(session.EventInvalidated)
	src.fn(session.EventInvalidated)
	assert.Equal(t, 1, nav.calls)

	// Logging back in arms the redirect again for the next episode.
	src.fn(session.EventLoggedIn)
	assert.True(t, g.Allow())

	src.fn(session.EventInvalidated)
	assert.Equal(t, 2, nav.calls)
}

func TestGate_UserUpdatedKeepsAuthenticated(t *testing.T) {
	src := &fakeSource{}
	nav := &fakeNavigator{}
	g := New(src, nav)

	src.fn(session.EventLoggedIn)
	src.fn(session.EventUserUpdated)

	assert.Equal(t, StateAuthenticated, g.State())
	assert.Zero(t, nav.calls)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "resolving", StateResolving.String())
	assert.Equal(t, "authenticated", StateAuthenticated.String())
	assert.Equal(t, "unauthenticated", StateUnauthenticated.String())
	assert.Equal(t, "unknown", State(42).String())
}
