package sound

import (
	"context"
	"sync"
)

// PrepareResult is delivered when a backend becomes ready.
type PrepareResult struct {
	Duration         float64 // seconds
	NumberOfChannels int
	Title            string
	Artist           string
	Album            string
}

// Completion is the one-shot outcome of a Prepare call.
//
// It completes exactly once, either with a result or with an error. A
// second completion attempt is rejected with ErrAlreadyCompleted.
type Completion struct {
	mu     sync.Mutex
	done   chan struct{}
	result PrepareResult
	err    error
	key    int
}

func newCompletion(key int) *Completion {
	return &Completion{key: key, done: make(chan struct{})}
}

// Key returns the player key the completion belongs to.
func (c *Completion) Key() int { return c.key }

// Done is closed once the completion holds its outcome.
func (c *Completion) Done() <-chan struct{} { return c.done }

// Result returns the outcome. It blocks until Done is closed.
func (c *Completion) Result() (PrepareResult, error) {
	<-c.done
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result, c.err
}

// Wait blocks until the completion finishes or ctx is done.
func (c *Completion) Wait(ctx context.Context) (PrepareResult, error) {
	select {
	case <-c.done:
		return c.Result()
	case <-ctx.Done():
		return PrepareResult{}, ctx.Err()
	}
}

// Completed reports whether the outcome is available.
func (c *Completion) Completed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Completion) succeed(res PrepareResult) error {
	return c.complete(res, nil)
}

func (c *Completion) fail(err error) error {
	return c.complete(PrepareResult{}, err)
}

func (c *Completion) complete(res PrepareResult, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.done:
		return ErrAlreadyCompleted
	default:
	}
	c.result = res
	c.err = err
	close(c.done)
	return nil
}
