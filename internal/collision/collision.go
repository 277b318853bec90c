// Package collision decides whether an actor may occupy a tile.
package collision

import (
	"github.com/samdwyer/tilequest/internal/feature"
	"github.com/samdwyer/tilequest/internal/scene"
	"github.com/samdwyer/tilequest/internal/world"
)

// Option configures a Resolver.
type Option func(*Resolver)

// WithPassableKeys sets the tile properties that make a tile impassable when
// explicitly false. The default is "passable".
func WithPassableKeys(keys ...string) Option {
	return func(r *Resolver) {
		if len(keys) > 0 {
			r.passableKeys = append([]string(nil), keys...)
		}
	}
}

// Resolver checks features and terrain of a scene.
type Resolver struct {
	scene        *scene.Scene
	passableKeys []string
}

// New creates a resolver for s.
func New(s *scene.Scene, opts ...Option) *Resolver {
	r := &Resolver{
		scene:        s,
		passableKeys: []string{world.PropPassable},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Collide reports whether actor is blocked from tile (x, y). Feature objects
// found at the tile are appended to results, which may be nil; the returned
// slice is the extended results.
//
// Features are checked first: a feature with no type or marked passable never
// blocks, walkable kinds never block, anything else blocks. Then every layer
// of the active map is checked and a passable key set to false on any layer
// blocks. Without an active map the terrain check passes.
func (r *Resolver) Collide(actor *scene.Object, x, y int, results []*scene.Object) (bool, []*scene.Object) {
	p := world.Pt(x, y)

	for _, o := range scene.ObjectsAt[feature.Component](r.scene, p, actor) {
		results = append(results, o)
		if blocksFeature(o) {
			return true, results
		}
	}

	return r.terrainBlocked(scene.ActiveMap(r.scene), x, y), results
}

// Blocked is Collide without collecting features.
func (r *Resolver) Blocked(actor *scene.Object, p world.Point) bool {
	blocked, _ := r.Collide(actor, p.X, p.Y, nil)
	return blocked
}

func blocksFeature(o *scene.Object) bool {
	for _, f := range scene.ComponentsOf[feature.Component](o) {
		if f.TypeName() == "" || f.Passable() {
			continue
		}
		if f.Kind().Walkable() {
			continue
		}
		return true
	}
	return false
}

func (r *Resolver) terrainBlocked(m *world.TileMap, x, y int) bool {
	if m == nil {
		return false
	}
	for _, layer := range m.GetLayers() {
		props := m.TileData(layer, x, y)
		if props == nil {
			continue
		}
		for _, key := range r.passableKeys {
			if passable, ok := props.Bool(key); ok && !passable {
				return true
			}
		}
	}
	return false
}
