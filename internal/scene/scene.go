// Package scene holds the objects of the active map and lets components find
// each other by capability.
//
// The scene is single-writer: objects are added and removed by the load and
// travel path on the game loop. Queries return snapshots.
package scene

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/samdwyer/tilequest/internal/event"
)

// Option configures a Scene.
type Option func(*Scene)

// WithLogger sets the scene logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Scene is the registry of scene objects.
type Scene struct {
	bus     *event.Bus
	objects []*Object
	byID    map[uuid.UUID]*Object
	paused  bool
	logger  *zap.Logger
}

// New creates an empty scene that publishes on bus.
func New(bus *event.Bus, opts ...Option) *Scene {
	s := &Scene{
		bus:    bus,
		byID:   make(map[uuid.UUID]*Object),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bus returns the scene's event bus.
func (s *Scene) Bus() *event.Bus {
	return s.bus
}

// Paused reports whether movement in the scene is suspended.
func (s *Scene) Paused() bool {
	return s.paused
}

// SetPaused suspends or resumes movement.
func (s *Scene) SetPaused(paused bool) {
	s.paused = paused
}

// AddObject connects all of o's components and registers it. Either every
// component connects and the object becomes visible to queries, or nothing
// changes.
func (s *Scene) AddObject(o *Object) error {
	if o == nil {
		return ErrNilObject
	}
	if o.scene == s || s.byID[o.ID] != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateObject, o)
	}
	if o.scene != nil {
		return fmt.Errorf("%w: %s", ErrForeignObject, o)
	}

	o.scene = s
	if err := o.connect(); err != nil {
		o.scene = nil
		return err
	}
	s.objects = append(s.objects, o)
	s.byID[o.ID] = o

	s.notify(event.ObjectAdded, o)
	return nil
}

// RemoveObject unregisters o and disconnects its components. It returns false
// when o is not in this scene.
func (s *Scene) RemoveObject(o *Object) bool {
	if o == nil || o.scene != s {
		return false
	}
	i := slices.Index(s.objects, o)
	if i < 0 {
		return false
	}
	s.objects = slices.Delete(slices.Clone(s.objects), i, i+1)
	delete(s.byID, o.ID)

	o.disconnect()
	o.scene = nil

	s.notify(event.ObjectRemoved, o)
	return true
}

// Clear removes every object, newest first.
func (s *Scene) Clear() {
	for i := len(s.objects) - 1; i >= 0; i-- {
		s.RemoveObject(s.objects[i])
	}
}

// Objects returns a snapshot of the scene's objects in insertion order.
func (s *Scene) Objects() []*Object {
	return slices.Clone(s.objects)
}

// Len returns the number of objects in the scene.
func (s *Scene) Len() int {
	return len(s.objects)
}

// ObjectByID returns the object with the given id.
func (s *Scene) ObjectByID(id uuid.UUID) (*Object, bool) {
	o, ok := s.byID[id]
	return o, ok
}

// ObjectByName returns the first object with the given name.
func (s *Scene) ObjectByName(name string) (*Object, bool) {
	for _, o := range s.objects {
		if o.Name == name {
			return o, true
		}
	}
	return nil, false
}

func (s *Scene) notify(name event.Name, o *Object) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Trigger(name, o, nil); err != nil {
		s.logger.Warn("scene notification failed",
			zap.String("event", string(name)),
			zap.Stringer("object", o),
			zap.Error(err),
		)
	}
}
