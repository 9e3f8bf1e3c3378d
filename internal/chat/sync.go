// Package chat keeps a per-ticket message list live over a poll-only
// backend: fetch on activation, refetch on a fixed interval, merge without
// duplicates, and never let a late response from a previous ticket touch
// the buffer of the current one.
package chat

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Rrens/deskflow/internal/api"
	"github.com/Rrens/deskflow/internal/domain"
	"github.com/rs/zerolog/log"
)

// DefaultPollInterval matches the refresh cadence of the dashboard chat view
const DefaultPollInterval = 5 * time.Second

// ErrInactive is returned by Send when no conversation is active
var ErrInactive = errors.New("chat: no active conversation")

// MessageService is the slice of the backend client the synchronizer uses
type MessageService interface {
	ListMessages(ctx context.Context, ticketID string) ([]domain.Message, error)
	SendMessage(ctx context.Context, ticketID, body string) (*domain.Message, error)
}

// Synchronizer owns the conversation buffer for at most one ticket at a
// time. Every fetch carries the generation captured when it was scheduled;
// a response whose generation no longer matches is discarded, which is what
// makes rapid ticket switching safe.
type Synchronizer struct {
	svc      MessageService
	interval time.Duration

	onUpdate func(ticketID string, messages []domain.Message)
	onError  func(ticketID string, err error)

	mu       sync.Mutex
	gen      uint64
	ticketID string
	cancel   context.CancelFunc
	buf      []domain.Message
	seen     map[string]bool
}

// Option configures a Synchronizer
type Option func(*Synchronizer)

// WithInterval overrides the poll interval
func WithInterval(d time.Duration) Option {
	return func(s *Synchronizer) { s.interval = d }
}

// WithUpdateHandler sets the callback fired after every merge that changed
// the buffer. It receives a copy and may be called from the poll goroutine.
func WithUpdateHandler(fn func(ticketID string, messages []domain.Message)) Option {
	return func(s *Synchronizer) { s.onUpdate = fn }
}

// WithErrorHandler sets the callback for access-denied fetch failures.
// Transient failures are logged and polling continues without it.
func WithErrorHandler(fn func(ticketID string, err error)) Option {
	return func(s *Synchronizer) { s.onError = fn }
}

// New creates a synchronizer over the given message service
func New(svc MessageService, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		svc:      svc,
		interval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Activate starts polling for ticketID, replacing any previous conversation.
// Activating the already-active ticket is a no-op.
func (s *Synchronizer) Activate(ticketID string) {
	s.mu.Lock()
	if s.ticketID == ticketID && s.cancel != nil {
		s.mu.Unlock()
		return
	}
	s.stopLocked()

	s.gen++
	gen := s.gen
	s.ticketID = ticketID
	s.buf = nil
	s.seen = make(map[string]bool)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	go s.poll(ctx, gen, ticketID)
}

// Deactivate cancels the poll timer and discards the buffer. After it
// returns, no fetch result for the old ticket can be accepted.
func (s *Synchronizer) Deactivate() {
	s.mu.Lock()
	s.stopLocked()
	s.gen++
	s.ticketID = ""
	s.buf = nil
	s.seen = nil
	s.mu.Unlock()
}

// Active returns the currently polled ticket ID, if any
func (s *Synchronizer) Active() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticketID, s.cancel != nil
}

// Snapshot returns a copy of the current buffer in ascending createdAt order
func (s *Synchronizer) Snapshot() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.buf))
	copy(out, s.buf)
	return out
}

// Send posts body to the active conversation and merges the authoritative
// server echo into the buffer. There is no pending placeholder to roll
// back: on failure the buffer is untouched, and on success the next poll
// tick sees the same message ID and skips it.
func (s *Synchronizer) Send(ctx context.Context, body string) (*domain.Message, error) {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return nil, ErrInactive
	}
	gen := s.gen
	ticketID := s.ticketID
	s.mu.Unlock()

	message, err := s.svc.SendMessage(ctx, ticketID, body)
	if err != nil {
		return nil, err
	}

	s.accept(gen, ticketID, []domain.Message{*message})
	return message, nil
}

func (s *Synchronizer) stopLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Synchronizer) poll(ctx context.Context, gen uint64, ticketID string) {
	s.fetch(ctx, gen, ticketID)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fetch(ctx, gen, ticketID)
		}
	}
}

func (s *Synchronizer) fetch(ctx context.Context, gen uint64, ticketID string) {
	messages, err := s.svc.ListMessages(ctx, ticketID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if api.IsForbidden(err) {
			if s.onError != nil {
				s.onError(ticketID, err)
			}
			return
		}
		// Transient failure: keep polling.
		log.Debug().Err(err).Str("ticket", ticketID).Msg("Message poll failed")
		return
	}

	s.accept(gen, ticketID, messages)
}

// accept merges messages into the buffer iff gen still identifies the
// active conversation.
func (s *Synchronizer) accept(gen uint64, ticketID string, messages []domain.Message) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		log.Debug().Str("ticket", ticketID).Msg("Discarding stale poll result")
		return
	}

	changed := false
	for _, m := range messages {
		if s.seen[m.ID] {
			continue
		}
		s.seen[m.ID] = true
		s.buf = append(s.buf, m)
		changed = true
	}
	if changed {
		sort.SliceStable(s.buf, func(i, j int) bool {
			return s.buf[i].CreatedAt.Before(s.buf[j].CreatedAt)
		})
	}

	var snapshot []domain.Message
	if changed && s.onUpdate != nil {
		snapshot = make([]domain.Message, len(s.buf))
		copy(snapshot, s.buf)
	}
	s.mu.Unlock()

	if snapshot != nil {
		s.onUpdate(ticketID, snapshot)
	}
}
