package game

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/tilequest/internal/combat"
	"github.com/samdwyer/tilequest/internal/feature"
	"github.com/samdwyer/tilequest/internal/gamedata"
	"github.com/samdwyer/tilequest/internal/player"
	"github.com/samdwyer/tilequest/internal/scene"
	"github.com/samdwyer/tilequest/internal/ui"
	"github.com/samdwyer/tilequest/internal/world"
)

const arenaYAML = `
name: arena
width: 5
height: 3
start: {x: 0, y: 1}
tiles:
  1: {glyph: ".", passable: true}
layers:
  - name: ground
    data:
      - [1, 1, 1, 1, 1]
      - [1, 1, 1, 1, 1]
      - [1, 1, 1, 1, 1]
objects:
  - name: King
    type: encounter
    x: 1
    y: 1
    properties:
      id: goblin-king
  - name: Exit
    type: portal
    x: 4
    y: 1
    properties:
      map: arena
      targetX: 0
      targetY: 0
`

func testConfig() Config {
	return Config{
		Seed:          1,
		StartMap:      "town",
		StartX:        -1,
		StartY:        -1,
		GeneratedMaps: []string{"crypt"},
	}
}

func newGame(t *testing.T, cfg Config, opts ...Option) *Game {
	t.Helper()
	g, err := New(context.Background(), cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(g.Close)
	return g
}

func newArena(t *testing.T) *Game {
	t.Helper()
	cfg := testConfig()
	cfg.StartMap = "arena"
	return newGame(t, cfg, WithMaps(fstest.MapFS{"arena.yaml": {Data: []byte(arenaYAML)}}))
}

// playCombat answers every prompt until the combat is over.
func playCombat(t *testing.T, g *Game, action combat.Action) {
	t.Helper()
	for i := 0; g.Prompter().Waiting(); i++ {
		require.Less(t, i, 200, "combat did not finish")
		if g.Prompter().Current().Kind == ui.PromptChoice {
			g.Prompter().Choose(action)
		} else {
			g.Prompter().Acknowledge()
		}
		g.Bus().Flush()
	}
}

func TestNewEntersStartMap(t *testing.T) {
	g := newGame(t, testConfig())

	require.NotNil(t, g.CurrentMap())
	assert.Equal(t, "town", g.CurrentMap().Name)
	assert.Equal(t, world.Pt(2, 4), g.Player().Position())
	assert.Equal(t, StateMap, g.Overworld().State())
	assert.Len(t, scene.FindObjects[feature.Component](g.Scene()), 7)
	assert.Len(t, g.Party().Members, 4)
}

func TestNewHonorsStartOverride(t *testing.T) {
	cfg := testConfig()
	cfg.StartX, cfg.StartY = 5, 6
	g := newGame(t, cfg)
	assert.Equal(t, world.Pt(5, 6), g.Player().Position())
}

func TestNewFailsForMissingMap(t *testing.T) {
	cfg := testConfig()
	cfg.StartMap = "nowhere"
	_, err := New(context.Background(), cfg)
	assert.ErrorIs(t, err, world.ErrMapNotFound)
}

func TestUnknownFeatureBlocks(t *testing.T) {
	g := newGame(t, testConfig())
	g.Player().Place(world.Pt(7, 4))

	assert.Equal(t, player.Blocked, g.Move(1, 0), "the well has no known kind")
	assert.Equal(t, world.Pt(7, 4), g.Player().Position())
}

func TestPortalTravelsToGeneratedMap(t *testing.T) {
	g := newGame(t, testConfig())
	g.Player().Place(world.Pt(16, 3))

	require.Equal(t, player.Moved, g.Move(1, 0))
	require.Equal(t, "crypt", g.CurrentMap().Name)
	assert.Equal(t, g.CurrentMap().StartPoint(), g.Player().Position())

	stairs, ok := g.Scene().ObjectByName("Stairs Up")
	require.True(t, ok)
	portal, ok := scene.ComponentOf[*feature.Portal](stairs)
	require.True(t, ok)
	assert.Equal(t, "town", portal.Map)
}

func TestTempleRest(t *testing.T) {
	g := newGame(t, testConfig())
	g.Player().Place(world.Pt(13, 2))
	hurt := g.Party().Members[0]
	hurt.TakeDamage(10)

	assert.False(t, g.Rest(), "not at a temple")

	require.Equal(t, player.Moved, g.Move(1, 0))
	assert.False(t, g.Rest(), "no gold")
	assert.Contains(t, g.Prompter().Text(), "10 gold")

	g.Party().Gold = 15
	assert.True(t, g.Rest())
	assert.Equal(t, 5, g.Party().Gold)
	assert.Equal(t, hurt.MaxHP, hurt.HP)

	require.Equal(t, player.Moved, g.Move(0, 1))
	assert.False(t, g.Rest(), "left the temple")
}

func TestFixedEncounterVictoryClearsFeature(t *testing.T) {
	g := newArena(t)
	for _, m := range g.Party().Members {
		m.Attack = 100
	}

	require.Equal(t, player.Moved, g.Move(1, 0))
	require.Equal(t, StateCombat, g.Overworld().State())
	assert.True(t, g.Scene().Paused())
	assert.Equal(t, player.Paused, g.Move(1, 0))

	playCombat(t, g, combat.ActionAttack)

	assert.Equal(t, StateMap, g.Overworld().State())
	assert.False(t, g.Scene().Paused())

	enemies, err := gamedata.LoadEnemyRegistry()
	require.NoError(t, err)
	wantGold := enemies.GetByID("goblin-king").Gold + 2*enemies.GetByID("goblin").Gold
	assert.Equal(t, wantGold, g.Party().Gold)
	wantExp := (enemies.GetByID("goblin-king").Exp + 2*enemies.GetByID("goblin").Exp) / len(g.Party().Members)
	for _, m := range g.Party().Members {
		assert.Equal(t, wantExp, m.Exp, m.Name)
	}

	king, ok := scene.FindComponent[*feature.Encounter](g.Scene())
	require.True(t, ok)
	assert.True(t, king.Cleared())

	// The cleared state survives leaving and re-entering the map.
	require.NoError(t, g.Travel(context.Background(), "arena", nil))
	king, ok = scene.FindComponent[*feature.Encounter](g.Scene())
	require.True(t, ok)
	assert.True(t, king.Cleared())

	require.Equal(t, player.Moved, g.Move(1, 0))
	assert.Equal(t, StateMap, g.Overworld().State(), "a cleared encounter does not fight again")
}

func TestDefeatRevivesParty(t *testing.T) {
	g := newArena(t)
	for _, m := range g.Party().Members {
		m.HP, m.Attack, m.Defense = 1, 0, 0
	}

	require.Equal(t, player.Moved, g.Move(1, 0))
	playCombat(t, g, combat.ActionAttack)

	assert.Equal(t, StateMap, g.Overworld().State())
	assert.False(t, g.Scene().Paused())
	assert.Zero(t, g.Party().Gold)
	for _, m := range g.Party().Members {
		assert.Equal(t, 1, m.HP, m.Name)
	}
	king, ok := scene.FindComponent[*feature.Encounter](g.Scene())
	require.True(t, ok)
	assert.False(t, king.Cleared())
}

func TestRandomEncounterInZone(t *testing.T) {
	cfg := testConfig()
	cfg.EncounterRate = 1
	g := newGame(t, cfg)
	g.Player().Place(world.Pt(2, 6))

	require.Equal(t, player.Moved, g.Move(1, 0))
	require.Equal(t, StateCombat, g.Overworld().State())
	c := g.Overworld().Combat()
	require.NotNil(t, c)
	assert.Contains(t, []string{"meadow-goblins", "meadow-orc"}, c.Encounter.ID)
	assert.False(t, c.Encounter.Fixed)
}

func TestBuildEncounterUnknown(t *testing.T) {
	g := newGame(t, testConfig())
	_, err := g.buildEncounter(feature.EncounterRequest{ID: "nope"})
	assert.ErrorIs(t, err, ErrUnknownEncounter)
	_, err = g.buildEncounter(feature.EncounterRequest{Zone: "desert"})
	assert.ErrorIs(t, err, ErrUnknownEncounter)
}

func TestRunProcessesKeysUntilQuit(t *testing.T) {
	sim := tcell.NewSimulationScreen("UTF-8")
	screen, err := ui.NewScreenFrom(sim)
	require.NoError(t, err)
	sim.SetSize(40, 15)

	g := newGame(t, testConfig(), WithScreen(screen))
	sim.InjectKey(tcell.KeyRight, 0, tcell.ModNone)
	sim.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	require.NoError(t, g.Run(context.Background()))
	assert.Equal(t, world.Pt(3, 4), g.Player().Position())
}
