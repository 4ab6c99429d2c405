package bind_group_provider

import "github.com/Carmen-Shannon/oxy-cone/engine/geometry"

// Cache keeps one provider per mesh across frames. Providers that were not used since the
// last Prune are released by it, so meshes that leave the scene give their GPU memory back.
// Not safe for concurrent use; the backend serializes access.
type Cache struct {
	providers map[uint64]BindGroupProvider
	used      map[uint64]bool
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{
		providers: make(map[uint64]BindGroupProvider),
		used:      make(map[uint64]bool),
	}
}

// Lookup returns the provider for meshID if it was built from g and marks it used.
// A provider built from a different geometry is released and forgotten, and Lookup reports a miss.
//
// Parameters:
//   - meshID: the mesh's ID
//   - g: the mesh's current geometry
//
// Returns:
//   - BindGroupProvider: the cached provider, or nil
//   - bool: true on a hit
func (c *Cache) Lookup(meshID uint64, g geometry.Geometry) (BindGroupProvider, bool) {
	p, ok := c.providers[meshID]
	if !ok {
		return nil, false
	}
	if p.Source() != g {
		p.Release()
		delete(c.providers, meshID)
		return nil, false
	}
	c.used[meshID] = true
	return p, true
}

// Store caches p under its mesh ID, replacing and releasing any previous provider, and marks it used.
func (c *Cache) Store(p BindGroupProvider) {
	id := p.MeshID()
	if old, ok := c.providers[id]; ok && old != p {
		old.Release()
	}
	c.providers[id] = p
	c.used[id] = true
}

// Prune releases every provider that was not looked up or stored since the previous Prune.
//
// Returns:
//   - int: the number of providers released
func (c *Cache) Prune() int {
	released := 0
	for id, p := range c.providers {
		if !c.used[id] {
			p.Release()
			delete(c.providers, id)
			released++
		}
	}
	clear(c.used)
	return released
}

// Len returns the number of cached providers.
func (c *Cache) Len() int {
	return len(c.providers)
}

// Release frees every cached provider.
func (c *Cache) Release() {
	for id, p := range c.providers {
		p.Release()
		delete(c.providers, id)
	}
	clear(c.used)
}
