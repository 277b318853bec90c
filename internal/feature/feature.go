package feature

import (
	"github.com/samdwyer/tilequest/internal/event"
	"github.com/samdwyer/tilequest/internal/scene"
	"github.com/samdwyer/tilequest/internal/world"
)

// ObjectKind is the scene object type tag for features.
const ObjectKind = "feature"

// Component is implemented by every feature variant.
type Component interface {
	scene.Collidable
	TypeName() string
	Kind() Kind
	Properties() world.Properties
}

// Feature is the collidable part shared by every feature variant. On its own
// (an unrecognized map object type) it is a plain obstacle.
type Feature struct {
	scene.Base
	typeName string
	kind     Kind
	passable bool
	props    world.Properties
}

func newFeature(def world.ObjectDef, kind Kind) Feature {
	passable, _ := def.Properties.Bool(world.PropPassable)
	return Feature{
		typeName: def.Type,
		kind:     kind,
		passable: passable,
		props:    def.Properties,
	}
}

// TypeName returns the raw map object type, which may be empty.
func (f *Feature) TypeName() string { return f.typeName }

// Kind returns the feature kind.
func (f *Feature) Kind() Kind { return f.kind }

// Passable reports whether the feature was explicitly marked passable.
func (f *Feature) Passable() bool { return f.passable }

// Properties returns the map object's properties.
func (f *Feature) Properties() world.Properties { return f.props }

// trigger publishes on the host scene's bus. Handler failures are logged by
// the bus.
func (f *Feature) trigger(name event.Name, payload any) {
	if bus := f.Bus(); bus != nil {
		_ = bus.Trigger(name, payload, nil)
	}
}

// Block is an impassable feature with no interaction.
type Block struct {
	Feature
}
