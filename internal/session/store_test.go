package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Rrens/deskflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuthAPI is a function-field test double so individual tests can
// inject behavior, including behavior that calls back into the store.
type fakeAuthAPI struct {
	login         func(ctx context.Context, email, password string) (*domain.Session, error)
	register      func(ctx context.Context, input domain.RegisterInput) (*domain.Session, error)
	updateProfile func(ctx context.Context, input domain.ProfileUpdate) (*domain.User, error)
}

func (f *fakeAuthAPI) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	return f.login(ctx, email, password)
}

func (f *fakeAuthAPI) Register(ctx context.Context, input domain.RegisterInput) (*domain.Session, error) {
	return f.register(ctx, input)
}

func (f *fakeAuthAPI) UpdateProfile(ctx context.Context, input domain.ProfileUpdate) (*domain.User, error) {
	return f.updateProfile(ctx, input)
}

// gatedCreds wraps a credential store and holds Save open until released,
// so a test can overlap a teardown with an in-flight persistence write.
type gatedCreds struct {
	inner     domain.CredentialStore
	saveBegan chan struct{}
	release   chan struct{}
}

func (g *gatedCreds) Load() (*domain.Session, error) { return g.inner.Load() }
func (g *gatedCreds) Clear() error                   { return g.inner.Clear() }

func (g *gatedCreds) Save(session *domain.Session) error {
	g.saveBegan <- struct{}{}
	<-g.release
	return g.inner.Save(session)
}

func testUser() *domain.User {
	return &domain.User{ID: "u1", Name: "Cust Omer", Email: "c@example.com", Role: domain.RoleCustomer}
}

func testSession() *domain.Session {
	return &domain.Session{Token: "tok-1", User: testUser()}
}

func recordEvents(t *testing.T, s *Store) *[]Event {
	t.Helper()
	var events []Event
	s.Subscribe(func(e Event) { events = append(events, e) })
	return &events
}

func TestStore_RestoreEmpty(t *testing.T) {
	store := NewStore(&fakeAuthAPI{}, NewFileStore(t.TempDir()))
	events := recordEvents(t, store)

	require.NoError(t, store.Restore())

	assert.False(t, store.Authenticated())
	assert.Empty(t, store.Token())
	assert.Nil(t, store.User())
	assert.Equal(t, []Event{EventRestored}, *events)
}

func TestStore_RestoreFull(t *testing.T) {
	dir := t.TempDir()
	creds := NewFileStore(dir)
	require.NoError(t, creds.Save(testSession()))

	store := NewStore(&fakeAuthAPI{}, creds)
	events := recordEvents(t, store)

	require.NoError(t, store.Restore())

	assert.True(t, store.Authenticated())
	assert.Equal(t, "tok-1", store.Token())
	require.NotNil(t, store.User())
	assert.Equal(t, "c@example.com", store.User().Email)
	assert.True(t, store.IsCustomer())
	assert.False(t, store.IsAdmin())
	assert.Equal(t, []Event{EventRestored}, *events)
}

func TestStore_RestorePartialState(t *testing.T) {
	// A token with no user entry must come back as fully unauthenticated,
	// and the leftover entry must be cleaned up.
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "token"), []byte("orphan"), 0o600))

	store := NewStore(&fakeAuthAPI{}, NewFileStore(dir))
	require.NoError(t, store.Restore())

	assert.False(t, store.Authenticated())
	_, err := os.Stat(filepath.Join(dir, "token"))
	assert.True(t, os.IsNotExist(err))
}

func TestStore_RestoreCorruptUser(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "token"), []byte("tok"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user.json"), []byte("{not json"), 0o600))

	store := NewStore(&fakeAuthAPI{}, NewFileStore(dir))
	require.NoError(t, store.Restore())

	assert.False(t, store.Authenticated())
}

func TestStore_Login(t *testing.T) {
	dir := t.TempDir()
	api := &fakeAuthAPI{
		login: func(_ context.Context, email, password string) (*domain.Session, error) {
			assert.Equal(t, "c@example.com", email)
			assert.Equal(t, "secret", password)
			return testSession(), nil
		},
	}
	store := NewStore(api, NewFileStore(dir))
	events := recordEvents(t, store)

	user, err := store.Login(context.Background(), "c@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.True(t, store.Authenticated())
	// Role queries reflect the returned user synchronously.
	assert.True(t, store.IsCustomer())
	assert.False(t, store.IsAgent())
	assert.Equal(t, []Event{EventLoggedIn}, *events)

	// Both entries persisted, so a fresh store restores the same session.
	fresh := NewStore(api, NewFileStore(dir))
	require.NoError(t, fresh.Restore())
	assert.True(t, fresh.Authenticated())
	assert.Equal(t, "tok-1", fresh.Token())
}

func TestStore_LoginFailure(t *testing.T) {
	wantErr := errors.New("invalid email or password")
	store := NewStore(&fakeAuthAPI{
		login: func(context.Context, string, string) (*domain.Session, error) {
			return nil, wantErr
		},
	}, NewFileStore(t.TempDir()))
	events := recordEvents(t, store)

	_, err := store.Login(context.Background(), "c@example.com", "wrong")
	assert.ErrorIs(t, err, wantErr)
	assert.False(t, store.Authenticated())
	assert.Empty(t, *events)
}

func TestStore_LoginIncompleteResponse(t *testing.T) {
	store := NewStore(&fakeAuthAPI{
		login: func(context.Context, string, string) (*domain.Session, error) {
			return &domain.Session{Token: "tok-only"}, nil
		},
	}, NewFileStore(t.TempDir()))

	_, err := store.Login(context.Background(), "c@example.com", "secret")
	require.Error(t, err)
	assert.False(t, store.Authenticated())
}

func TestStore_Register(t *testing.T) {
	store := NewStore(&fakeAuthAPI{
		register: func(_ context.Context, input domain.RegisterInput) (*domain.Session, error) {
			assert.Equal(t, "New User", input.Name)
			return testSession(), nil
		},
	}, NewFileStore(t.TempDir()))
	events := recordEvents(t, store)

	user, err := store.Register(context.Background(), domain.RegisterInput{
		Name: "New User", Email: "c@example.com", Password: "longenough",
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.True(t, store.Authenticated())
	assert.Equal(t, []Event{EventLoggedIn}, *events)
}

func TestStore_Logout(t *testing.T) {
	dir := t.TempDir()
	creds := NewFileStore(dir)
	require.NoError(t, creds.Save(testSession()))

	store := NewStore(&fakeAuthAPI{}, creds)
	require.NoError(t, store.Restore())
	events := recordEvents(t, store)

	store.Logout()

	assert.False(t, store.Authenticated())
	assert.Empty(t, store.Token())
	assert.Equal(t, []Event{EventLoggedOut}, *events)

	// Persisted entries are gone too.
	loaded, err := creds.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStore_Invalidate(t *testing.T) {
	creds := NewFileStore(t.TempDir())
	require.NoError(t, creds.Save(testSession()))

	store := NewStore(&fakeAuthAPI{}, creds)
	require.NoError(t, store.Restore())
	events := recordEvents(t, store)

	store.Invalidate()

	assert.False(t, store.Authenticated())
	assert.Equal(t, []Event{EventInvalidated}, *events)
}

func TestStore_UpdateUser(t *testing.T) {
	t.Run("replaces user and keeps token", func(t *testing.T) {
		creds := NewFileStore(t.TempDir())
		require.NoError(t, creds.Save(testSession()))

		store := NewStore(&fakeAuthAPI{
			updateProfile: func(_ context.Context, input domain.ProfileUpdate) (*domain.User, error) {
				updated := testUser()
				updated.Name = input.Name
				updated.Phone = input.Phone
				return updated, nil
			},
		}, creds)
		require.NoError(t, store.Restore())
		events := recordEvents(t, store)

		user, err := store.UpdateUser(context.Background(), domain.ProfileUpdate{Name: "Renamed", Phone: "555"})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", user.Name)
		assert.Equal(t, "Renamed", store.User().Name)
		assert.Equal(t, "tok-1", store.Token())
		assert.Equal(t, []Event{EventUserUpdated}, *events)

		// The new user is what a later restore sees.
		loaded, err := creds.Load()
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, "Renamed", loaded.User.Name)
	})

	t.Run("unauthenticated is a misuse error", func(t *testing.T) {
		store := NewStore(&fakeAuthAPI{}, NewFileStore(t.TempDir()))
		_, err := store.UpdateUser(context.Background(), domain.ProfileUpdate{Name: "X"})
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("teardown racing the persistence write", func(t *testing.T) {
		// The profile update has passed its validity check and is writing
		// to disk when the 401 teardown lands. The teardown must wait for
		// the write and then clear everything; the dead session must not
		// survive on disk.
		dir := t.TempDir()
		inner := NewFileStore(dir)
		require.NoError(t, inner.Save(testSession()))

		creds := &gatedCreds{
			inner:     inner,
			saveBegan: make(chan struct{}),
			release:   make(chan struct{}),
		}
		store := NewStore(&fakeAuthAPI{
			updateProfile: func(_ context.Context, input domain.ProfileUpdate) (*domain.User, error) {
				updated := testUser()
				updated.Name = input.Name
				return updated, nil
			},
		}, creds)
		require.NoError(t, store.Restore())

		done := make(chan error, 1)
		go func() {
			_, err := store.UpdateUser(context.Background(), domain.ProfileUpdate{Name: "Renamed"})
			done <- err
		}()

		<-creds.saveBegan

		invalidated := make(chan struct{})
		go func() {
			store.Invalidate()
			close(invalidated)
		}()

		close(creds.release)
		require.NoError(t, <-done)
		<-invalidated

		assert.False(t, store.Authenticated())
		loaded, err := inner.Load()
		require.NoError(t, err)
		assert.Nil(t, loaded)

		// A fresh restore sees nothing to resurrect.
		fresh := NewStore(&fakeAuthAPI{}, inner)
		require.NoError(t, fresh.Restore())
		assert.False(t, fresh.Authenticated())
	})

	t.Run("teardown during in-flight update is not resurrected", func(t *testing.T) {
		creds := NewFileStore(t.TempDir())
		require.NoError(t, creds.Save(testSession()))

		var store *Store
		store = NewStore(&fakeAuthAPI{
			updateProfile: func(_ context.Context, input domain.ProfileUpdate) (*domain.User, error) {
				// Session dies while the request is in flight.
				store.Invalidate()
				updated := testUser()
				updated.Name = input.Name
				return updated, nil
			},
		}, creds)
		require.NoError(t, store.Restore())

		_, err := store.UpdateUser(context.Background(), domain.ProfileUpdate{Name: "Renamed"})
		assert.ErrorIs(t, err, ErrNotAuthenticated)
		assert.False(t, store.Authenticated())

		loaded, loadErr := creds.Load()
		require.NoError(t, loadErr)
		assert.Nil(t, loaded)
	})
}

func TestStore_UserReturnsCopy(t *testing.T) {
	creds := NewFileStore(t.TempDir())
	require.NoError(t, creds.Save(testSession()))

	store := NewStore(&fakeAuthAPI{}, creds)
	require.NoError(t, store.Restore())

	store.User().Name = "mutated"
	assert.Equal(t, "Cust Omer", store.User().Name)
}

func TestFileStore_SaveRejectsInvalidSession(t *testing.T) {
	creds := NewFileStore(t.TempDir())
	assert.Error(t, creds.Save(nil))
	assert.Error(t, creds.Save(&domain.Session{Token: "tok"}))
	assert.Error(t, creds.Save(&domain.Session{User: testUser()}))
}
