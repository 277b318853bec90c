package scene

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/samdwyer/tilequest/internal/world"
)

var (
	// ErrNilObject is returned when a nil object is added.
	ErrNilObject = errors.New("scene: nil object")
	// ErrDuplicateObject is returned when an object is already in the scene.
	ErrDuplicateObject = errors.New("scene: duplicate object")
	// ErrForeignObject is returned when an object belongs to another scene.
	ErrForeignObject = errors.New("scene: object belongs to another scene")
	// ErrDuplicateComponent is returned when a component is added twice.
	ErrDuplicateComponent = errors.New("scene: duplicate component")
	// ErrComponentAttached is returned when a component already has a host.
	ErrComponentAttached = errors.New("scene: component already attached")
)

// Object is an entity in the scene, composed of components.
type Object struct {
	ID   uuid.UUID
	Kind string // Type tag, e.g. "player" or "feature"
	Name string

	Point  world.Point
	Width  int // Tiles covered; zero means one
	Height int

	components []Component
	scene      *Scene
}

// NewObject creates a detached object at p.
func NewObject(kind, name string, p world.Point, components ...Component) *Object {
	return &Object{
		ID:         uuid.New(),
		Kind:       kind,
		Name:       name,
		Point:      p,
		components: slices.Clone(components),
	}
}

// String returns a short description for logs and errors.
func (o *Object) String() string {
	if o == nil {
		return "<nil>"
	}
	if o.Name != "" {
		return fmt.Sprintf("%s %q", o.Kind, o.Name)
	}
	return fmt.Sprintf("%s %s", o.Kind, o.ID)
}

// Scene returns the owning scene, or nil when the object is not in one.
func (o *Object) Scene() *Scene {
	return o.scene
}

// Bounds returns the tile area covered by the object.
func (o *Object) Bounds() world.Rect {
	r := world.Rect{X: o.Point.X, Y: o.Point.Y, Width: o.Width, Height: o.Height}
	if r.Width <= 0 {
		r.Width = 1
	}
	if r.Height <= 0 {
		r.Height = 1
	}
	return r
}

// Covers reports whether the object overlaps tile p.
func (o *Object) Covers(p world.Point) bool {
	return o.Bounds().Contains(p)
}

// Components returns a copy of the object's components in insertion order.
func (o *Object) Components() []Component {
	return slices.Clone(o.components)
}

// AddComponent attaches c. If the object is in a scene, c is connected
// immediately and is not attached when Connect fails.
func (o *Object) AddComponent(c Component) error {
	if slices.Contains(o.components, c) {
		return ErrDuplicateComponent
	}
	if c.Host() != nil {
		return fmt.Errorf("%w: %T on %s", ErrComponentAttached, c, c.Host())
	}
	if o.scene != nil {
		if err := c.Connect(o); err != nil {
			return fmt.Errorf("failed to connect %T to %s: %w", c, o, err)
		}
	}
	o.components = append(o.components, c)
	return nil
}

// RemoveComponent detaches c, disconnecting it if the object is in a scene.
func (o *Object) RemoveComponent(c Component) bool {
	i := slices.Index(o.components, c)
	if i < 0 {
		return false
	}
	o.components = slices.Delete(slices.Clone(o.components), i, i+1)
	if o.scene != nil {
		c.Disconnect()
	}
	return true
}

// connect attaches every component, rolling back on the first failure.
func (o *Object) connect() error {
	for i, c := range o.components {
		if err := c.Connect(o); err != nil {
			for j := i - 1; j >= 0; j-- {
				o.components[j].Disconnect()
			}
			return fmt.Errorf("failed to connect %T to %s: %w", c, o, err)
		}
	}
	return nil
}

// disconnect detaches components in reverse order.
func (o *Object) disconnect() {
	for i := len(o.components) - 1; i >= 0; i-- {
		o.components[i].Disconnect()
	}
}
