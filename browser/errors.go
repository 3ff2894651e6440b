package browser

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrNoPage is returned when a session is queried before any Goto.
var ErrNoPage = errors.New("browser: no page loaded")

// WaitTimeoutError indicates a selector never reached the awaited state
// within the bound.
type WaitTimeoutError struct {
	Selector string
	URL      string
	Timeout  time.Duration
}

func (e *WaitTimeoutError) Error() string {
	return fmt.Sprintf("wait for %q on %s: timeout after %s", e.Selector, e.URL, e.Timeout)
}

// IsWaitTimeout reports whether err is, or wraps, a WaitTimeoutError.
func IsWaitTimeout(err error) bool {
	var timeout *WaitTimeoutError
	return errors.As(err, &timeout)
}

// StrictModeError indicates a strict wait matched more than one element.
type StrictModeError struct {
	Selector string
	Count    int
}

func (e *StrictModeError) Error() string {
	return fmt.Sprintf("strict wait for %q matched %d elements", e.Selector, e.Count)
}

// NavigationError indicates a page could not be loaded at all.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate to %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// ErrTimeout indicates the page request itself timed out.
type ErrTimeout struct {
	Err error
}

func (e ErrTimeout) Error() string {
	return fmt.Errorf("timeout: %w", e.Err).Error()
}

func (e ErrTimeout) Unwrap() error {
	return e.Err
}

// ErrConnection indicates a network connectivity failure.
type ErrConnection struct {
	Err error
}

func (e ErrConnection) Error() string {
	return fmt.Errorf("connection: %w", e.Err).Error()
}

func (e ErrConnection) Unwrap() error {
	return e.Err
}

func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection{Err: err}
	}
	return err
}
