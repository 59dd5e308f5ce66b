package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrStaleHandle is returned when an element found on an earlier page
	// generation is used after the session moved on.
	ErrStaleHandle = errors.New("stale element handle")

	// ErrTimeout is returned when a page never reaches the awaited state.
	ErrTimeout = errors.New("timed out waiting for page")
)

// DefaultPollInterval is used by WaitUntil when no interval is configured.
const DefaultPollInterval = 250 * time.Millisecond

// Condition is polled by WaitUntil until it reports true.
type Condition func() (bool, error)

// Element is a handle to one DOM element, valid for a single page generation.
type Element interface {
	// Text is the trimmed visible text, one line per rendered block.
	Text() (string, error)
	Attribute(name string) (string, bool, error)
	FindAll(selector string) ([]Element, error)
	// Closest returns the nearest ancestor matching selector, or nil.
	Closest(selector string) (Element, error)
	IsEnabled() (bool, error)
	// Detached reports whether the element left the document. It is the one
	// call that stays legal on a stale handle.
	Detached() bool
}

// Session is a single browser tab driven sequentially.
type Session interface {
	// Navigate loads url and fails if marker does not show up in time.
	// An empty marker only waits for the document itself.
	Navigate(ctx context.Context, url, marker string) error
	FindAll(selector string) ([]Element, error)
	Click(ctx context.Context, el Element) error
	WaitUntil(ctx context.Context, cond Condition, timeout time.Duration) error
	// Invalidate starts a new page generation; earlier handles become stale.
	Invalidate()
	Generation() uint64
	URL() string
	Content() (string, error)
	Close() error
}

// Screenshotter is implemented by sessions that can capture the viewport.
type Screenshotter interface {
	Screenshot(name, message string) error
}

// Generation counts page states of a session.
type Generation struct {
	n uint64
}

func (g *Generation) Current() uint64 { return g.n }

func (g *Generation) Advance() uint64 {
	g.n++
	return g.n
}

func (g *Generation) scope() scope {
	return scope{gen: g, born: g.n}
}

// scope pins a handle to the generation it was created in.
type scope struct {
	gen  *Generation
	born uint64
}

func (s scope) check() error {
	if s.gen.n != s.born {
		return fmt.Errorf("%w: found in generation %d, session is at %d", ErrStaleHandle, s.born, s.gen.n)
	}
	return nil
}

// Poll evaluates cond every interval until it is true, the timeout elapses
// or ctx is done. Errors from cond count as "not yet".
func Poll(ctx context.Context, cond Condition, timeout, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	deadline := time.Now().Add(timeout)

	var lastErr error
	for {
		ok, err := cond()
		if err == nil && ok {
			return nil
		}
		if err != nil {
			lastErr = err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			if lastErr != nil {
				return fmt.Errorf("%w after %s: %v", ErrTimeout, timeout, lastErr)
			}
			return fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}

		timer := time.NewTimer(min(interval, remaining))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
