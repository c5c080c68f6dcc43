package emberforge

import (
	"sync"

	"github.com/google/uuid"
)

// clientRegistry holds every connected, past-login client, keyed by UUID.
// The tick loop is its only writer; Snapshot gives embedding code (and the
// tick phases themselves) a stable slice to range over without holding the
// registry's lock for the duration of a phase.
type clientRegistry struct {
	mu      sync.Mutex
	clients map[uuid.UUID]*Client
}

func newClientRegistry() *clientRegistry {
	return &clientRegistry{clients: make(map[uuid.UUID]*Client)}
}

func (r *clientRegistry) insert(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.UUID] = c
}

func (r *clientRegistry) remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, id)
}

// Snapshot returns the current clients as a slice, safe to range over
// concurrently with further inserts/removes.
func (r *clientRegistry) Snapshot() []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}
