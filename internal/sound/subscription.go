package sound

import "sync"

const eventBufferSize = 64

// Subscription is an Emitter that exposes events on buffered channels.
// Sends never block: events are dropped when a buffer is full.
type Subscription struct {
	PlayingState <-chan PlayingStateEvent
	Progress     <-chan ProgressEvent
	Done         <-chan struct{}

	stateCh    chan PlayingStateEvent
	progressCh chan ProgressEvent
	doneCh     chan struct{}

	mu      sync.Mutex
	closed  bool
	dropped int
}

// NewSubscription creates a subscription with buffered channels.
func NewSubscription() *Subscription {
	s := &Subscription{
		stateCh:    make(chan PlayingStateEvent, eventBufferSize),
		progressCh: make(chan ProgressEvent, eventBufferSize),
		doneCh:     make(chan struct{}),
	}
	s.PlayingState = s.stateCh
	s.Progress = s.progressCh
	s.Done = s.doneCh
	return s
}

// Emit implements Emitter.
func (s *Subscription) Emit(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	var sent bool
	switch ev := e.(type) {
	case PlayingStateEvent:
		select {
		case s.stateCh <- ev:
			sent = true
		default:
		}
	case ProgressEvent:
		select {
		case s.progressCh <- ev:
			sent = true
		default:
		}
	}
	if !sent {
		s.dropped++
	}
}

// Dropped returns how many events were discarded.
func (s *Subscription) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close signals subscribers to stop. Safe to call more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.doneCh)
}
