package scene

import (
	"go.uber.org/zap"

	"github.com/samdwyer/tilequest/internal/event"
	"github.com/samdwyer/tilequest/internal/world"
)

// MapComponent holds the active tile map. There is one per scene.
type MapComponent struct {
	Base
	tileMap *world.TileMap
}

// NewMapComponent creates a map component for m, which may be nil.
func NewMapComponent(m *world.TileMap) *MapComponent {
	return &MapComponent{tileMap: m}
}

// Map returns the active map, or nil before one is loaded.
func (c *MapComponent) Map() *world.TileMap {
	if c == nil {
		return nil
	}
	return c.tileMap
}

// SetMap replaces the active map wholesale and announces it.
func (c *MapComponent) SetMap(m *world.TileMap) {
	c.tileMap = m
	s := c.Scene()
	if s == nil || s.bus == nil || m == nil {
		return
	}
	if err := s.bus.Trigger(event.MapLoaded, m, nil); err != nil {
		s.logger.Warn("map loaded handler failed", zap.String("map", m.Name), zap.Error(err))
	}
}

// ActiveMap returns the map of the scene's map component, or nil.
func ActiveMap(s *Scene) *world.TileMap {
	c, _ := FindComponent[*MapComponent](s)
	return c.Map()
}
