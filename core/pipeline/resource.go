package pipeline

import "sync"

// Resource is a registry-minted handle over encoded image bytes, the
// in-process equivalent of an object URL bound to a display surface.
// The pipeline owns every handle it mints; superseding a handle revokes
// the previous one so at most one live resource backs the display.
type Resource struct {
	id   uint64
	reg  *Registry
	once sync.Once

	mu      sync.Mutex
	data    []byte
	revoked bool
}

// ID returns the handle's registry identifier.
func (r *Resource) ID() uint64 { return r.id }

// Bytes returns the encoded image bytes, or nil once revoked.
func (r *Resource) Bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data
}

// Revoked reports whether the handle has been released.
func (r *Resource) Revoked() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.revoked
}

// Revoke releases the handle's backing bytes and drops it from the
// registry. Safe to call more than once; only the first call has any
// effect.
func (r *Resource) Revoke() {
	r.once.Do(func() {
		r.mu.Lock()
		r.data = nil
		r.revoked = true
		r.mu.Unlock()
		r.reg.drop(r.id)
	})
}

// Registry mints and tracks live resource handles.
type Registry struct {
	mu   sync.Mutex
	next uint64
	live map[uint64]*Resource
}

// NewRegistry returns an empty resource registry.
func NewRegistry() *Registry {
	return &Registry{live: make(map[uint64]*Resource)}
}

// Mint wraps encoded bytes in a new live handle.
func (g *Registry) Mint(data []byte) *Resource {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	res := &Resource{id: g.next, reg: g, data: data}
	g.live[res.id] = res
	return res
}

// Live returns the number of unrevoked handles.
func (g *Registry) Live() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.live)
}

func (g *Registry) drop(id uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.live, id)
}
