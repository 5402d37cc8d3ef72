package evented

import (
	"context"
	"reflect"
	"sync"
)

// Callback handles one emission of an event. It receives the binding the
// listener was registered with and the emission payload. Callbacks that do
// asynchronous work block until that work completes and return its outcome;
// purely synchronous callbacks return nil immediately.
type Callback func(ctx context.Context, binding any, args ...any) error

// Listener pairs a callback with the binding it is invoked with.
type Listener struct {
	Callback Callback
	Binding  any
}

// entry is a registered listener. id is the identity of the callback the
// caller registered with, which for one-shot listeners differs from the
// wrapper stored in fn.
type entry struct {
	fn      Callback
	id      uintptr
	binding any
}

// Notifier maintains the ordered listener list for a single event and
// dispatches emissions to it in registration order.
//
// Identity for removal purposes is the (callback, binding) pair, not the
// callback alone. Registration performs no deduplication: adding the same
// pair twice means the callback fires twice per emission.
type Notifier struct {
	mu      sync.RWMutex
	entries []*entry
}

// NewNotifier creates an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// callbackID returns a stable identity for a callback function.
func callbackID(cb Callback) uintptr {
	return reflect.ValueOf(cb).Pointer()
}

// sameBinding reports whether two bindings match for removal purposes.
// Comparable values use ==; anything else never matches.
func sameBinding(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.ValueOf(a).Comparable() && reflect.ValueOf(b).Comparable() {
		return a == b
	}
	return false
}

// AddListener appends (callback, binding) to the listener list.
func (n *Notifier) AddListener(cb Callback, binding any) {
	n.add(&entry{fn: cb, id: callbackID(cb), binding: binding})
}

func (n *Notifier) add(e *entry) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries = append(n.entries, e)
}

// RemoveListener removes every listener whose (callback, binding) pair
// matches both arguments. Removing a pair that was never registered is a
// no-op.
func (n *Notifier) RemoveListener(cb Callback, binding any) {
	id := callbackID(cb)

	n.mu.Lock()
	defer n.mu.Unlock()

	kept := make([]*entry, 0, len(n.entries))
	for _, e := range n.entries {
		if e.id == id && sameBinding(e.binding, binding) {
			continue
		}
		kept = append(kept, e)
	}
	n.entries = kept
}

// removeEntry removes a single registration by identity. One-shot wrappers
// use it to drop themselves without touching duplicate registrations of
// the same pair.
func (n *Notifier) removeEntry(target *entry) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, e := range n.entries {
		if e == target {
			n.entries = append(n.entries[:i:i], n.entries[i+1:]...)
			return
		}
	}
}

func (n *Notifier) contains(target *entry) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, e := range n.entries {
		if e == target {
			return true
		}
	}
	return false
}

// Emit synchronously invokes every listener registered at emission start,
// in registration order. A listener removed mid-emission (a one-shot
// dropping itself, for instance) is skipped when its turn comes. The first
// error returned by a listener aborts the emission and is returned to the
// caller unmodified; remaining listeners are not invoked.
func (n *Notifier) Emit(ctx context.Context, args ...any) error {
	for _, e := range n.snapshot() {
		if !n.contains(e) {
			continue
		}
		if err := e.fn(ctx, e.binding, args...); err != nil {
			return err
		}
	}
	return nil
}

func (n *Notifier) snapshot() []*entry {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*entry, len(n.entries))
	copy(out, n.entries)
	return out
}

// Listeners returns a copy of the current ordered listener list.
func (n *Notifier) Listeners() []Listener {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]Listener, len(n.entries))
	for i, e := range n.entries {
		out[i] = Listener{Callback: e.fn, Binding: e.binding}
	}
	return out
}

// Len returns the number of registered listeners.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.entries)
}
