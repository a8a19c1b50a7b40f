package cart

import (
	"sync"

	"fixiestore/internal/domain"
)

// guestStore holds guest carts keyed by guest ID. Updates are serialized so each
// one sees the result of the previous.
type guestStore struct {
	mu    sync.Mutex
	carts map[string]domain.Cart
}

func newGuestStore() *guestStore {
	return &guestStore{carts: make(map[string]domain.Cart)}
}

func (g *guestStore) get(id string) domain.Cart {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.carts[id]; ok {
		return c
	}
	return domain.EmptyCart()
}

func (g *guestStore) update(id string, fn func(domain.Cart) domain.Cart) domain.Cart {
	g.mu.Lock()
	defer g.mu.Unlock()
	current, ok := g.carts[id]
	if !ok {
		current = domain.EmptyCart()
	}
	next := fn(current)
	if next.IsEmpty() {
		delete(g.carts, id)
	} else {
		g.carts[id] = next
	}
	return next
}

func (g *guestStore) take(id string) domain.Cart {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.carts[id]
	if !ok {
		return domain.EmptyCart()
	}
	delete(g.carts, id)
	return c
}

func (g *guestStore) put(id string, c domain.Cart) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if existing, ok := g.carts[id]; ok {
		for _, line := range existing.Lines {
			c = c.AddLine(line.Product, line.Quantity)
		}
	}
	g.carts[id] = c
}
