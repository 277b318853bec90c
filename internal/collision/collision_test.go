package collision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/tilequest/internal/event"
	"github.com/samdwyer/tilequest/internal/feature"
	"github.com/samdwyer/tilequest/internal/scene"
	"github.com/samdwyer/tilequest/internal/world"
)

const (
	tileFloor   = 1
	tileWall    = 2
	tileShallow = 3
	tileBare    = 4
)

// newMap returns a 6x6 map with two layers. The tile at (3,4) is set on both
// layers to ground and top.
func newMap(ground, top int) *world.TileMap {
	grid := func(fill int) [][]int {
		data := make([][]int, 6)
		for y := range data {
			data[y] = make([]int, 6)
			for x := range data[y] {
				data[y][x] = fill
			}
		}
		return data
	}
	groundLayer := &world.Layer{Name: "ground", Data: grid(tileFloor)}
	topLayer := &world.Layer{Name: "top", Data: grid(0)}
	groundLayer.Data[4][3] = ground
	topLayer.Data[4][3] = top
	return &world.TileMap{
		Name: "test", Width: 6, Height: 6,
		Tiles: map[int]world.Properties{
			tileFloor:   {world.PropPassable: true},
			tileWall:    {world.PropPassable: false},
			tileShallow: {world.PropPassable: true, "shallowWater": false},
			tileBare:    {},
		},
		Layers: []*world.Layer{groundLayer, topLayer},
	}
}

func newScene(t *testing.T, m *world.TileMap) (*scene.Scene, *scene.Object) {
	t.Helper()
	s := scene.New(event.NewBus())
	if m != nil {
		require.NoError(t, s.AddObject(scene.NewObject("map", "map", world.Pt(0, 0), scene.NewMapComponent(m))))
	}
	actor := scene.NewObject("player", "hero", world.Pt(0, 0))
	require.NoError(t, s.AddObject(actor))
	return s, actor
}

func TestTerrain(t *testing.T) {
	tests := []struct {
		name    string
		ground  int
		top     int
		blocked bool
	}{
		{"wall on second layer, nothing on first", 0, tileWall, true},
		{"wall on second layer, bare tile on first", tileBare, tileWall, true},
		{"wall on first layer", tileWall, 0, true},
		{"floor on both", tileFloor, tileFloor, false},
		{"no layer says impassable", tileBare, 0, false},
		{"empty cell everywhere", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, actor := newScene(t, newMap(tt.ground, tt.top))
			blocked, hits := New(s).Collide(actor, 3, 4, nil)
			assert.Equal(t, tt.blocked, blocked)
			assert.Empty(t, hits)
		})
	}
}

func TestPassableKeys(t *testing.T) {
	s, actor := newScene(t, newMap(tileShallow, 0))

	assert.False(t, New(s).Blocked(actor, world.Pt(3, 4)))
	assert.True(t, New(s, WithPassableKeys("passable", "shallowWater")).Blocked(actor, world.Pt(3, 4)))
}

func TestMissingMapFailsOpen(t *testing.T) {
	s, actor := newScene(t, nil)
	assert.False(t, New(s).Blocked(actor, world.Pt(3, 4)))
}

func TestOutOfBoundsIsSkipped(t *testing.T) {
	s, actor := newScene(t, newMap(tileWall, tileWall))
	r := New(s)
	assert.False(t, r.Blocked(actor, world.Pt(-1, 0)))
	assert.False(t, r.Blocked(actor, world.Pt(6, 6)))
}

func TestFeatures(t *testing.T) {
	tests := []struct {
		name    string
		def     world.ObjectDef
		blocked bool
	}{
		{"unknown type blocks", world.ObjectDef{Type: "statue"}, true},
		{"block blocks", world.ObjectDef{Type: "block"}, true},
		{"sign is walkable", world.ObjectDef{Type: "sign"}, false},
		{"dialog is walkable", world.ObjectDef{Type: "dialog"}, false},
		{"store is walkable", world.ObjectDef{Type: "store"}, false},
		{"temple is walkable", world.ObjectDef{Type: "temple"}, false},
		{"portal is walkable", world.ObjectDef{Type: "portal", Properties: world.Properties{"map": "cave"}}, false},
		{"encounter is walkable", world.ObjectDef{Type: "encounter"}, false},
		{"missing type does not block", world.ObjectDef{}, false},
		{"passable unknown type does not block", world.ObjectDef{Type: "statue", Properties: world.Properties{"passable": true}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, actor := newScene(t, newMap(tileFloor, 0))
			tt.def.Name, tt.def.X, tt.def.Y = "obstacle", 3, 4
			obstacle := feature.Build(tt.def)
			require.NoError(t, s.AddObject(obstacle))

			blocked, hits := New(s).Collide(actor, 3, 4, nil)
			assert.Equal(t, tt.blocked, blocked)
			assert.Equal(t, []*scene.Object{obstacle}, hits)
		})
	}
}

func TestWalkableFeatureDoesNotOverrideTerrain(t *testing.T) {
	s, actor := newScene(t, newMap(tileFloor, tileWall))
	require.NoError(t, s.AddObject(feature.Build(world.ObjectDef{Name: "notice", Type: "sign", X: 3, Y: 4})))

	blocked, hits := New(s).Collide(actor, 3, 4, nil)
	assert.True(t, blocked)
	assert.Len(t, hits, 1)
}

func TestBlockingFeatureStopsEvaluation(t *testing.T) {
	s, actor := newScene(t, newMap(tileFloor, 0))
	rock := feature.Build(world.ObjectDef{Name: "rock", Type: "block", X: 3, Y: 4})
	sign := feature.Build(world.ObjectDef{Name: "notice", Type: "sign", X: 3, Y: 4})
	require.NoError(t, s.AddObject(rock))
	require.NoError(t, s.AddObject(sign))

	prior := []*scene.Object{actor}
	blocked, hits := New(s).Collide(actor, 3, 4, prior)
	assert.True(t, blocked)
	assert.Equal(t, []*scene.Object{actor, rock}, hits, "results are appended to and stop at the blocking feature")
}

func TestActorIsExcluded(t *testing.T) {
	s, _ := newScene(t, newMap(tileFloor, 0))
	statue := feature.Build(world.ObjectDef{Name: "statue", Type: "statue", X: 3, Y: 4})
	require.NoError(t, s.AddObject(statue))

	blocked, hits := New(s).Collide(statue, 3, 4, nil)
	assert.False(t, blocked)
	assert.Empty(t, hits)
}
