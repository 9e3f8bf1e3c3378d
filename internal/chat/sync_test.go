package chat

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/Rrens/deskflow/internal/api"
	"github.com/Rrens/deskflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInterval = 10 * time.Millisecond

// fakeMessageService serves a mutable per-ticket message list and can hold a
// fetch open until released, which is how the stale-response tests model a
// slow backend.
type fakeMessageService struct {
	mu       sync.Mutex
	messages map[string][]domain.Message
	listErr  error
	sendErr  error
	fetches  int
	hold     chan struct{}
	nextID   int
}

func newFakeService() *fakeMessageService {
	return &fakeMessageService{messages: make(map[string][]domain.Message)}
}

func (f *fakeMessageService) ListMessages(ctx context.Context, ticketID string) ([]domain.Message, error) {
	f.mu.Lock()
	f.fetches++
	hold := f.hold
	err := f.listErr
	out := make([]domain.Message, len(f.messages[ticketID]))
	copy(out, f.messages[ticketID])
	f.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeMessageService) SendMessage(ctx context.Context, ticketID, body string) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.nextID++
	m := domain.Message{
		ID:        fmt.Sprintf("sent-%d", f.nextID),
		TicketID:  ticketID,
		Body:      body,
		CreatedAt: time.Now(),
	}
	f.messages[ticketID] = append(f.messages[ticketID], m)
	return &m, nil
}

func (f *fakeMessageService) add(ticketID string, m domain.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[ticketID] = append(f.messages[ticketID], m)
}

func (f *fakeMessageService) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func msg(id string, offset time.Duration) domain.Message {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return domain.Message{ID: id, TicketID: "t1", Body: "body-" + id, CreatedAt: base.Add(offset)}
}

// updates collects update-handler snapshots for assertion
type updates struct {
	mu    sync.Mutex
	snaps [][]domain.Message
}

func (u *updates) handler(_ string, messages []domain.Message) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.snaps = append(u.snaps, messages)
}

func (u *updates) latest() []domain.Message {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.snaps) == 0 {
		return nil
	}
	return u.snaps[len(u.snaps)-1]
}

func (u *updates) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.snaps)
}

func (u *updates) all() [][]domain.Message {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([][]domain.Message, len(u.snaps))
	copy(out, u.snaps)
	return out
}

func ids(messages []domain.Message) []string {
	out := make([]string, len(messages))
	for i, m := range messages {
		out[i] = m.ID
	}
	return out
}

func TestSynchronizer_ActivateFetchesImmediately(t *testing.T) {
	svc := newFakeService()
	svc.add("t1", msg("m1", 0))
	svc.add("t1", msg("m2", time.Minute))

	u := &updates{}
	s := New(svc, WithInterval(time.Hour), WithUpdateHandler(u.handler))
	s.Activate("t1")
	defer s.Deactivate()

	require.Eventually(t, func() bool { return u.count() > 0 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"m1", "m2"}, ids(u.latest()))
	assert.Equal(t, []string{"m1", "m2"}, ids(s.Snapshot()))

	active, ok := s.Active()
	assert.True(t, ok)
	assert.Equal(t, "t1", active)
}

func TestSynchronizer_MergeDeduplicates(t *testing.T) {
	svc := newFakeService()
	svc.add("t1", msg("m1", 0))

	u := &updates{}
	s := New(svc, WithInterval(testInterval), WithUpdateHandler(u.handler))
	s.Activate("t1")
	defer s.Deactivate()

	require.Eventually(t, func() bool { return u.count() > 0 }, time.Second, time.Millisecond)

	// The next poll returns the old message plus a new one; only the new
	// one is added, and ordering follows createdAt.
	svc.add("t1", msg("m0", -time.Minute))

	require.Eventually(t, func() bool {
		return u.count() >= 2
	}, time.Second, time.Millisecond)
	assert.Equal(t, []string{"m0", "m1"}, ids(s.Snapshot()))
	assert.Equal(t, []string{"m0", "m1"}, ids(u.latest()))

	// Polls that bring nothing new do not fire the update handler again.
	fired := u.count()
	require.Eventually(t, func() bool {
		return svc.fetchCount() > 4
	}, time.Second, time.Millisecond)
	assert.Equal(t, fired, u.count())
}

func TestSynchronizer_StaleResponseDiscarded(t *testing.T) {
	svc := newFakeService()
	svc.add("t1", msg("old-ticket", 0))
	svc.add("t2", msg("new-ticket", 0))

	hold := make(chan struct{})
	svc.mu.Lock()
	svc.hold = hold
	svc.mu.Unlock()

	u := &updates{}
	s := New(svc, WithInterval(time.Hour), WithUpdateHandler(u.handler))

	// The fetch for t1 is in flight when the user switches to t2.
	s.Activate("t1")
	s.Activate("t2")
	defer s.Deactivate()

	svc.mu.Lock()
	svc.hold = nil
	svc.mu.Unlock()
	close(hold)

	require.Eventually(t, func() bool { return len(s.Snapshot()) > 0 }, time.Second, time.Millisecond)
	// Only t2's conversation ever lands in the buffer. t1's late response
	// was cancelled or discarded, never merged.
	assert.Equal(t, []string{"new-ticket"}, ids(s.Snapshot()))
	for _, snap := range u.all() {
		assert.Equal(t, []string{"new-ticket"}, ids(snap))
	}
}

func TestSynchronizer_ActivateSameTicketIsNoop(t *testing.T) {
	svc := newFakeService()
	s := New(svc, WithInterval(time.Hour))
	s.Activate("t1")
	defer s.Deactivate()

	require.Eventually(t, func() bool { return svc.fetchCount() == 1 }, time.Second, time.Millisecond)
	s.Activate("t1")

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, svc.fetchCount())
}

func TestSynchronizer_Send(t *testing.T) {
	t.Run("inactive", func(t *testing.T) {
		s := New(newFakeService())
		_, err := s.Send(context.Background(), "hello")
		assert.ErrorIs(t, err, ErrInactive)
	})

	t.Run("echo merged without duplicate", func(t *testing.T) {
		svc := newFakeService()
		u := &updates{}
		s := New(svc, WithInterval(testInterval), WithUpdateHandler(u.handler))
		s.Activate("t1")
		defer s.Deactivate()

		sent, err := s.Send(context.Background(), "any update?")
		require.NoError(t, err)
		assert.Equal(t, "any update?", sent.Body)

		// The echo is in the buffer at once, and later polls returning the
		// same ID leave exactly one copy.
		require.Eventually(t, func() bool { return len(s.Snapshot()) == 1 }, time.Second, time.Millisecond)
		before := svc.fetchCount()
		require.Eventually(t, func() bool {
			return svc.fetchCount() > before+2
		}, time.Second, time.Millisecond)
		assert.Equal(t, []string{sent.ID}, ids(s.Snapshot()))
	})

	t.Run("failure leaves buffer untouched", func(t *testing.T) {
		svc := newFakeService()
		svc.mu.Lock()
		svc.sendErr = fmt.Errorf("boom")
		svc.mu.Unlock()

		s := New(svc, WithInterval(time.Hour))
		s.Activate("t1")
		defer s.Deactivate()

		_, err := s.Send(context.Background(), "hello")
		require.Error(t, err)
		assert.Empty(t, s.Snapshot())
	})
}

func TestSynchronizer_DeactivateStopsPolling(t *testing.T) {
	svc := newFakeService()
	s := New(svc, WithInterval(testInterval))
	s.Activate("t1")

	require.Eventually(t, func() bool { return svc.fetchCount() > 1 }, time.Second, time.Millisecond)
	s.Deactivate()

	_, ok := s.Active()
	assert.False(t, ok)
	assert.Empty(t, s.Snapshot())

	count := svc.fetchCount()
	time.Sleep(5 * testInterval)
	assert.LessOrEqual(t, svc.fetchCount(), count+1)

	_, err := s.Send(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrInactive)
}

func TestSynchronizer_ForbiddenSurfacesError(t *testing.T) {
	svc := newFakeService()
	svc.mu.Lock()
	svc.listErr = &api.APIError{Status: http.StatusForbidden, Message: "access denied"}
	svc.mu.Unlock()

	errs := make(chan error, 4)
	s := New(svc, WithInterval(time.Hour), WithErrorHandler(func(_ string, err error) {
		errs <- err
	}))
	s.Activate("t1")
	defer s.Deactivate()

	select {
	case err := <-errs:
		assert.True(t, api.IsForbidden(err))
	case <-time.After(time.Second):
		t.Fatal("error handler was not called")
	}
}

func TestSynchronizer_TransientErrorKeepsPolling(t *testing.T) {
	svc := newFakeService()
	svc.mu.Lock()
	svc.listErr = fmt.Errorf("connection refused")
	svc.mu.Unlock()

	u := &updates{}
	s := New(svc, WithInterval(testInterval), WithUpdateHandler(u.handler))
	s.Activate("t1")
	defer s.Deactivate()

	require.Eventually(t, func() bool { return svc.fetchCount() > 2 }, time.Second, time.Millisecond)

	// Backend recovers; the next poll delivers.
	svc.mu.Lock()
	svc.listErr = nil
	svc.messages["t1"] = []domain.Message{msg("m1", 0)}
	svc.mu.Unlock()

	require.Eventually(t, func() bool { return u.count() > 0 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"m1"}, ids(u.latest()))
}
