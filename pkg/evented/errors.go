package evented

import (
	"fmt"
)

// DispatchError describes a single listener failure during an
// asynchronous dispatch run.
type DispatchError struct {
	Event      string // event being dispatched
	DispatchID string // identifies the dispatch run
	Listener   int    // position of the failing listener in dispatch order
	Err        error  // what the listener returned
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s: event %s: listener %d: %v", e.DispatchID, e.Event, e.Listener, e.Err)
}

// Unwrap returns the listener's error.
func (e *DispatchError) Unwrap() error {
	return e.Err
}
