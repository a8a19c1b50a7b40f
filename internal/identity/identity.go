// Package identity broadcasts sign-in and sign-out events to interested components.
package identity

import (
	"context"
	"errors"
	"sync"
)

type Kind string

const (
	SignedIn  Kind = "signed_in"
	SignedOut Kind = "signed_out"
)

// Event describes an identity change. GuestID is set on SignedIn when the caller
// presented a guest session that should be folded into the user's state.
type Event struct {
	Kind    Kind
	UserID  string
	GuestID string
}

type Handler func(ctx context.Context, ev Event) error

type subscription struct {
	id int
	fn Handler
}

// Hub delivers events synchronously to its subscribers in subscription order.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscription
}

func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers fn and returns a function that removes it again.
// Calling the returned function more than once is harmless.
func (h *Hub) Subscribe(fn Handler) (unsubscribe func()) {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscription{id: id, fn: fn})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, s := range h.subs {
				if s.id == id {
					h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish calls every current subscriber, even when an earlier one fails, and
// returns their errors joined.
func (h *Hub) Publish(ctx context.Context, ev Event) error {
	h.mu.RLock()
	subs := make([]subscription, len(h.subs))
	copy(subs, h.subs)
	h.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if err := s.fn(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len reports the number of active subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
