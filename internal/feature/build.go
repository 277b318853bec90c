package feature

import (
	"github.com/samdwyer/tilequest/internal/scene"
	"github.com/samdwyer/tilequest/internal/world"
)

// Build creates a scene object for a map object definition. Unrecognized
// types become plain obstacles.
func Build(def world.ObjectDef) *scene.Object {
	kind, _ := ParseKind(def.Type)
	base := newFeature(def, kind)
	props := def.Properties

	var c scene.Component
	switch kind {
	case KindSign:
		c = &Sign{Feature: base, Text: props.String("text")}
	case KindDialog:
		c = &Dialog{Feature: base, Info: DialogInfo{
			Title: props.String("title"),
			Text:  props.String("text"),
			Icon:  props.String("icon"),
		}}
	case KindStore:
		level, _ := props.Int("level")
		name := props.String("name")
		if name == "" {
			name = def.Name
		}
		c = &Store{
			Feature:  base,
			Name:     name,
			Groups:   props.Strings("groups"),
			Category: props.String("category"),
			Level:    level,
		}
	case KindTemple:
		cost, _ := props.Int("cost")
		c = &Temple{Feature: base, Cost: cost}
	case KindPortal:
		p := &Portal{Feature: base, Map: props.String("map")}
		x, okX := props.Int("targetX")
		y, okY := props.Int("targetY")
		if okX && okY {
			p.Target = &world.Point{X: x, Y: y}
		}
		c = p
	case KindEncounter:
		id := props.String("id")
		if id == "" {
			id = def.Name
		}
		c = &Encounter{Feature: base, ID: id}
	case KindBlock:
		c = &Block{Feature: base}
	default:
		f := base
		c = &f
	}

	bounds := def.Bounds()
	o := scene.NewObject(ObjectKind, def.Name, world.Pt(bounds.X, bounds.Y), c)
	o.Width, o.Height = bounds.Width, bounds.Height
	return o
}

// BuildAll creates objects for every object definition of m.
func BuildAll(m *world.TileMap) []*scene.Object {
	objects := make([]*scene.Object, 0, len(m.Objects))
	for _, def := range m.Objects {
		objects = append(objects, Build(def))
	}
	return objects
}
