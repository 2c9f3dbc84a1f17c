package chatsync

import (
	"context"
	"sync"
	"time"
)

const DefaultInterval = 2 * time.Second

// Session mirrors one conversation while it is active. Each poll replaces the
// local list wholesale; Send appends its reply without waiting for the next
// poll.
type Session struct {
	feed     ConversationFeed
	peerID   string
	interval time.Duration

	// OnChange, if set, is called with a copy of the list after every change
	// and once when the first fetch finishes.
	OnChange func([]Message)

	mu       sync.Mutex
	messages []Message
	loading  bool
	err      error
	cancel   context.CancelFunc
	done     chan struct{}

	fetching sync.Mutex
}

type Option func(*Session)

func WithInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.interval = d
		}
	}
}

func NewSession(feed ConversationFeed, peerID string, opts ...Option) *Session {
	s := &Session{feed: feed, peerID: peerID, interval: DefaultInterval, loading: true}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Activate fetches once, then polls until Deactivate or ctx is done. Calling
// it on an active session does nothing.
func (s *Session) Activate(ctx context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	s.mu.Unlock()

	s.fetch(ctx)

	go s.loop(ctx, done)
}

// Deactivate stops polling and waits for the loop to exit.
func (s *Session) Deactivate() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Session) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.fetch(ctx)
		}
	}
}

// fetch skips when another fetch is still running.
func (s *Session) fetch(ctx context.Context) {
	if !s.fetching.TryLock() {
		return
	}
	defer s.fetching.Unlock()

	msgs, err := s.feed.History(ctx, s.peerID)
	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	first := s.loading
	s.loading = false
	s.err = err
	changed := err == nil
	if changed {
		s.messages = msgs
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if changed || first {
		s.notify(snapshot)
	}
}

// Send posts text and appends the stored message locally.
func (s *Session) Send(ctx context.Context, text string) (Message, error) {
	msg, err := s.feed.Send(ctx, s.peerID, text)
	if err != nil {
		return Message{}, err
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
	return msg, nil
}

// Messages returns a copy of the current list.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Loading is true until the first fetch completes, successfully or not.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err is the result of the latest fetch.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) snapshotLocked() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) notify(msgs []Message) {
	if s.OnChange != nil {
		s.OnChange(msgs)
	}
}
