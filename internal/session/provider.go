package session

import (
	"log"
	"sync"
)

// Identity is the signed-in user announced to listeners
type Identity struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
}

// Listener receives the new identity on every transition, nil on sign-out.
type Listener func(identity *Identity)

// Provider publishes sign-in and sign-out transitions to subscribers.
// Listeners run synchronously, in subscription order, on the goroutine
// that reported the transition.
type Provider struct {
	mu        sync.Mutex
	nextID    int
	order     []int
	listeners map[int]Listener
}

func NewProvider() *Provider {
	return &Provider{listeners: map[int]Listener{}}
}

// Subscribe registers l and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (p *Provider) Subscribe(l Listener) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = l
	p.order = append(p.order, id)
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.listeners, id)
			for i, existing := range p.order {
				if existing == id {
					p.order = append(p.order[:i], p.order[i+1:]...)
					break
				}
			}
		})
	}
}

// SignIn announces identity to every listener.
func (p *Provider) SignIn(identity Identity) {
	log.Printf("[Session] sign-in: %s", identity.UserID)
	p.publish(&identity)
}

// SignOut announces that nobody is signed in.
func (p *Provider) SignOut() {
	p.publish(nil)
}

func (p *Provider) publish(identity *Identity) {
	// Snapshot so a listener may unsubscribe itself without deadlocking.
	p.mu.Lock()
	snapshot := make([]Listener, 0, len(p.order))
	for _, id := range p.order {
		snapshot = append(snapshot, p.listeners[id])
	}
	p.mu.Unlock()

	for _, l := range snapshot {
		l(identity)
	}
}
