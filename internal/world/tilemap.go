// Package world provides tile maps: layers, per-tile properties, map loading
// and procedural dungeon generation.
package world

import (
	"errors"
	"fmt"
)

// Well-known tile property keys.
const (
	PropPassable = "passable"
	PropGlyph    = "glyph"
	PropColor    = "color"
	PropZone     = "zone"
)

// Properties is a property-name to value table attached to a tile id or a
// map object.
type Properties map[string]any

// Bool returns the boolean value of key and whether it was set as a bool.
func (p Properties) Bool(key string) (value, ok bool) {
	v, ok := p[key].(bool)
	return v, ok
}

// String returns the string value of key, or "".
func (p Properties) String(key string) string {
	v, _ := p[key].(string)
	return v
}

// Int returns the integer value of key and whether it was set as a number.
func (p Properties) Int(key string) (int, bool) {
	switch v := p[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// Strings returns the value of key as a string slice.
func (p Properties) Strings(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{v}
	default:
		return nil
	}
}

// Glyph returns the display rune for a tile, or 0 if none is set.
func (p Properties) Glyph() rune {
	s := p.String(PropGlyph)
	if s == "" {
		return 0
	}
	return []rune(s)[0]
}

// Layer is one grid of tile ids. Id 0 means no tile.
type Layer struct {
	Name string  `yaml:"name"`
	Data [][]int `yaml:"data"`
}

// At returns the tile id at (x, y), or 0 when out of bounds.
func (l *Layer) At(x, y int) int {
	if l == nil || y < 0 || y >= len(l.Data) || x < 0 || x >= len(l.Data[y]) {
		return 0
	}
	return l.Data[y][x]
}

// ObjectDef describes an interactive map object (a feature) placed on the map.
type ObjectDef struct {
	Name       string     `yaml:"name"`
	Type       string     `yaml:"type"`
	X          int        `yaml:"x"`
	Y          int        `yaml:"y"`
	Width      int        `yaml:"width,omitempty"`
	Height     int        `yaml:"height,omitempty"`
	Properties Properties `yaml:"properties,omitempty"`
}

// Bounds returns the tile area covered by the object. Zero sizes mean one tile.
func (o ObjectDef) Bounds() Rect {
	r := Rect{X: o.X, Y: o.Y, Width: o.Width, Height: o.Height}
	if r.Width <= 0 {
		r.Width = 1
	}
	if r.Height <= 0 {
		r.Height = 1
	}
	return r
}

// TileMap is a loaded map. It is not modified after loading; travel replaces
// the whole map.
type TileMap struct {
	Name    string             `yaml:"name"`
	Width   int                `yaml:"width"`
	Height  int                `yaml:"height"`
	Zone    string             `yaml:"zone,omitempty"`
	Start   *Point             `yaml:"start,omitempty"`
	Tiles   map[int]Properties `yaml:"tiles"`
	Layers  []*Layer           `yaml:"layers"`
	Objects []ObjectDef        `yaml:"objects,omitempty"`

	// Rooms is filled by Generate; loaded maps leave it empty.
	Rooms []Rect `yaml:"-"`
}

var (
	// ErrMapNotFound is returned when a named map has no backing file.
	ErrMapNotFound = errors.New("world: map not found")
	// ErrInvalidMap is returned when map data is inconsistent.
	ErrInvalidMap = errors.New("world: invalid map")
)

// Validate checks that every layer matches the map dimensions.
func (m *TileMap) Validate() error {
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("%w: %q has size %dx%d", ErrInvalidMap, m.Name, m.Width, m.Height)
	}
	for i, l := range m.Layers {
		if l == nil {
			return fmt.Errorf("%w: %q layer %d is empty", ErrInvalidMap, m.Name, i)
		}
		if len(l.Data) != m.Height {
			return fmt.Errorf("%w: %q layer %q has %d rows, want %d", ErrInvalidMap, m.Name, l.Name, len(l.Data), m.Height)
		}
		for y, row := range l.Data {
			if len(row) != m.Width {
				return fmt.Errorf("%w: %q layer %q row %d has %d columns, want %d", ErrInvalidMap, m.Name, l.Name, y, len(row), m.Width)
			}
		}
	}
	return nil
}

// InBounds reports whether (x, y) lies on the map.
func (m *TileMap) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// GetLayers returns the layers from bottom to top.
func (m *TileMap) GetLayers() []*Layer {
	if m == nil {
		return nil
	}
	return m.Layers
}

// Layer returns the layer with the given name, or nil.
func (m *TileMap) Layer(name string) *Layer {
	for _, l := range m.GetLayers() {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// TileData returns the property table of the tile at (x, y) on layer.
// It returns nil when the coordinate is out of bounds, the cell is empty, or
// the tile id has no properties.
func (m *TileMap) TileData(layer *Layer, x, y int) Properties {
	if m == nil || !m.InBounds(x, y) {
		return nil
	}
	id := layer.At(x, y)
	if id == 0 {
		return nil
	}
	props := m.Tiles[id]
	if len(props) == 0 {
		return nil
	}
	return props
}

// ZoneAt returns the encounter zone at (x, y): the topmost tile zone
// property, falling back to the map zone.
func (m *TileMap) ZoneAt(x, y int) string {
	layers := m.GetLayers()
	for i := len(layers) - 1; i >= 0; i-- {
		if zone := m.TileData(layers[i], x, y).String(PropZone); zone != "" {
			return zone
		}
	}
	return m.Zone
}

// GlyphAt returns the topmost glyph at (x, y), or a space.
func (m *TileMap) GlyphAt(x, y int) rune {
	_, props := m.topmost(x, y, PropGlyph)
	if g := props.Glyph(); g != 0 {
		return g
	}
	return ' '
}

// ColorAt returns the topmost color property at (x, y), or "".
func (m *TileMap) ColorAt(x, y int) string {
	_, props := m.topmost(x, y, PropColor)
	return props.String(PropColor)
}

func (m *TileMap) topmost(x, y int, key string) (*Layer, Properties) {
	layers := m.GetLayers()
	for i := len(layers) - 1; i >= 0; i-- {
		props := m.TileData(layers[i], x, y)
		if _, ok := props[key]; ok {
			return layers[i], props
		}
	}
	return nil, nil
}

// StartPoint returns the configured start point, or the map center.
func (m *TileMap) StartPoint() Point {
	if m.Start != nil {
		return *m.Start
	}
	if len(m.Rooms) > 0 {
		return m.Rooms[0].Center()
	}
	return Point{X: m.Width / 2, Y: m.Height / 2}
}
