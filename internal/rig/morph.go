// Package rig binds a loaded avatar scene to the controls the retargeting
// driver writes: morph target influences by name and bones by name.
package rig

import (
	"sort"

	"github.com/normanking/hologram/internal/face"
)

// MorphTargetCache indexes which mesh components own which named morph
// target. An avatar is usually split into several meshes (eyelids, teeth,
// head) that each expose a different subset of targets; the cache fans a
// value out to every owner without scanning the others.
//
// The influence slices are borrowed from the scene graph for the lifetime
// of the loaded model and written in place.
type MorphTargetCache struct {
	components [][]float32
	indices    []map[string]int
	owners     map[string][]int
}

// NewMorphTargetCache returns an empty cache.
func NewMorphTargetCache() *MorphTargetCache {
	return &MorphTargetCache{owners: make(map[string][]int)}
}

// Add registers one component's influence buffer and its name-to-index
// dictionary. Entries pointing outside the buffer are ignored.
func (c *MorphTargetCache) Add(influences []float32, indices map[string]int) {
	component := len(c.components)
	valid := make(map[string]int, len(indices))
	for name, idx := range indices {
		if idx < 0 || idx >= len(influences) {
			continue
		}
		valid[name] = idx
		c.owners[name] = append(c.owners[name], component)
	}
	c.components = append(c.components, influences)
	c.indices = append(c.indices, valid)
}

// Apply writes value, range-remapped to [0, 1], into every component that
// owns name. It reports whether any component owns name.
func (c *MorphTargetCache) Apply(name string, value float64) bool {
	owners, ok := c.owners[name]
	if !ok {
		return false
	}
	v := float32(face.RangeTransform(0, 1, 0, 1, value))
	for _, i := range owners {
		c.components[i][c.indices[i][name]] = v
	}
	return true
}

// Magnify multiplies the current value of name by factor in every owner.
func (c *MorphTargetCache) Magnify(name string, factor float64) {
	for _, i := range c.owners[name] {
		idx := c.indices[i][name]
		cur := float64(c.components[i][idx])
		c.components[i][idx] = float32(face.RangeTransform(0, 1, 0, 1, cur*factor))
	}
}

// Increment adds delta to the current value of name in every owner.
func (c *MorphTargetCache) Increment(name string, delta float64) {
	for _, i := range c.owners[name] {
		idx := c.indices[i][name]
		cur := float64(c.components[i][idx])
		c.components[i][idx] = float32(face.RangeTransform(0, 1, 0, 1, cur+delta))
	}
}

// Has reports whether any component owns name.
func (c *MorphTargetCache) Has(name string) bool {
	_, ok := c.owners[name]
	return ok
}

// Names returns every registered target name, sorted.
func (c *MorphTargetCache) Names() []string {
	names := make([]string, 0, len(c.owners))
	for n := range c.owners {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered components.
func (c *MorphTargetCache) Len() int { return len(c.components) }
