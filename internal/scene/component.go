package scene

import "github.com/samdwyer/tilequest/internal/event"

// Component is a capability attached to one Object at a time.
//
// Connect is called when the host enters a scene (or when the component is
// added to an object that is already in one). A component that returns an
// error from Connect is not attached. Disconnect is called when the component
// or its host is removed; components drop their bus subscriptions there.
type Component interface {
	Connect(host *Object) error
	Disconnect()
	Host() *Object
}

// Collidable components take part in collision checks. A passable collidable
// never blocks movement on its own.
type Collidable interface {
	Component
	Passable() bool
}

// Interactable components react to an actor entering or leaving their tiles.
type Interactable interface {
	Component
	Enter(actor *Object)
	Exit(actor *Object)
}

// Stateful components carry state that outlives a map visit, such as a
// cleared fixed encounter. State keys are per-object.
type Stateful interface {
	Component
	State() string
	SetState(state string) error
}

// Base is embedded by components to provide the host back-reference. The host
// is for lookup only; components never own their host.
type Base struct {
	host *Object
}

// Connect records the host.
func (b *Base) Connect(host *Object) error {
	b.host = host
	return nil
}

// Disconnect clears the host.
func (b *Base) Disconnect() {
	b.host = nil
}

// Host returns the object the component is attached to, or nil.
func (b *Base) Host() *Object {
	return b.host
}

// Scene returns the host's scene, or nil when detached.
func (b *Base) Scene() *Scene {
	if b.host == nil {
		return nil
	}
	return b.host.scene
}

// Bus returns the host scene's event bus, or nil when detached.
func (b *Base) Bus() *event.Bus {
	if s := b.Scene(); s != nil {
		return s.bus
	}
	return nil
}
