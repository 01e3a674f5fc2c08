// Package notify holds the ordered subscriber list a store fans change
// events out to.
package notify

import (
	"crypto/rand"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"
)

// Subscription identifies one registration of a callback.
// Registering the same callback twice yields two distinct subscriptions.
type Subscription struct {
	ID ulid.ULID
}

// IsZero reports whether s was never issued by a Registry.
func (s Subscription) IsZero() bool {
	return s.ID == (ulid.ULID{})
}

func (s Subscription) String() string {
	return s.ID.String()
}

type entry struct {
	sub Subscription
	fn  func()
}

// Registry is an ordered list of zero-argument callbacks.
// It is scoped to its owner and is not safe for concurrent use.
type Registry struct {
	entries []entry
	entropy *ulid.MonotonicEntropy
}

// Subscribe appends fn and returns the handle that removes it.
func (r *Registry) Subscribe(fn func()) Subscription {
	if r.entropy == nil {
		r.entropy = ulid.Monotonic(rand.Reader, 0)
	}
	sub := Subscription{ID: ulid.MustNew(ulid.Timestamp(time.Now()), r.entropy)}
	r.entries = append(r.entries, entry{sub: sub, fn: fn})
	return sub
}

// Unsubscribe removes the registration identified by sub.
// It reports whether the registration was present.
func (r *Registry) Unsubscribe(sub Subscription) bool {
	i := slices.IndexFunc(r.entries, func(e entry) bool { return e.sub == sub })
	if i < 0 {
		return false
	}
	r.entries = slices.Delete(r.entries, i, i+1)
	return true
}

// Notify invokes every callback in registration order.
// The pass runs over the list as it stood when Notify was called: a callback
// that unsubscribes a later one does not stop it from running in this pass,
// and one subscribed during the pass first runs on the next.
// A panicking callback propagates to the caller and the callbacks after it
// are not run.
func (r *Registry) Notify() {
	// Snapshot so a callback may unsubscribe itself mid-pass.
	for _, e := range slices.Clone(r.entries) {
		e.fn()
	}
}

// Len returns the number of active registrations.
func (r *Registry) Len() int {
	return len(r.entries)
}
