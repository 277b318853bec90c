package game

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/samdwyer/tilequest/data"
	"github.com/samdwyer/tilequest/internal/combat"
	"github.com/samdwyer/tilequest/internal/entity"
	"github.com/samdwyer/tilequest/internal/event"
	"github.com/samdwyer/tilequest/internal/feature"
	"github.com/samdwyer/tilequest/internal/gamedata"
	"github.com/samdwyer/tilequest/internal/player"
	"github.com/samdwyer/tilequest/internal/scene"
	"github.com/samdwyer/tilequest/internal/telemetry"
	"github.com/samdwyer/tilequest/internal/ui"
	"github.com/samdwyer/tilequest/internal/world"
)

// ErrUnknownEncounter is returned when an encounter request matches no
// encounter definition.
var ErrUnknownEncounter = errors.New("game: unknown encounter")

// Option configures a Game.
type Option func(*Game)

// WithLogger sets the game logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Game) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMaps overrides where maps are loaded from.
func WithMaps(fsys fs.FS) Option {
	return func(g *Game) { g.mapsFS = fsys }
}

// WithScreen sets the screen Run draws on instead of the terminal.
func WithScreen(screen *ui.Screen) Option {
	return func(g *Game) { g.screen = screen }
}

// Game holds the entire game state.
type Game struct {
	cfg    Config
	logger *zap.Logger
	ctx    context.Context
	rng    *rand.Rand

	bus       *event.Bus
	scene     *scene.Scene
	mapComp   *scene.MapComponent
	player    *player.Player
	party     *entity.Party
	overworld *Overworld
	prompter  *ui.Prompter
	temple    *feature.Temple

	classes    *gamedata.ClassRegistry
	enemies    *gamedata.EnemyRegistry
	encounters *gamedata.EncounterRegistry

	mapsFS  fs.FS
	loader  *world.Loader
	maps    map[string]*world.TileMap
	cleared map[string]map[string]string // Map name to object name to state

	screen   *ui.Screen
	renderer *ui.Renderer
	running  bool
}

// New creates a game session and enters the start map.
func New(ctx context.Context, cfg Config, opts ...Option) (*Game, error) {
	g := &Game{
		cfg:     cfg,
		logger:  zap.NewNop(),
		ctx:     ctx,
		maps:    make(map[string]*world.TileMap),
		cleared: make(map[string]map[string]string),
	}
	for _, opt := range opts {
		opt(g)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g.rng = rand.New(rand.NewSource(seed))

	initCtx, span := telemetry.Tracer("game").Start(ctx, "game.init")
	defer span.End()
	span.SetAttributes(attribute.Int64("seed", seed))

	if err := g.loadData(); err != nil {
		return nil, err
	}
	g.party = entity.NewDefaultParty(g.classes)

	if g.mapsFS == nil {
		if cfg.MapDir != "" {
			g.mapsFS = os.DirFS(cfg.MapDir)
		} else {
			g.mapsFS = data.Maps()
		}
	}
	g.loader = world.NewLoader(g.mapsFS)

	g.bus = event.NewBus(event.WithLogger(g.logger))
	g.scene = scene.New(g.bus, scene.WithLogger(g.logger))
	g.mapComp = scene.NewMapComponent(nil)
	if err := g.scene.AddObject(scene.NewObject("map", "map", world.Point{}, g.mapComp)); err != nil {
		return nil, err
	}
	g.player = player.New(
		player.WithEncounterRate(cfg.EncounterRate),
		player.WithRand(g.rng),
		player.WithLogger(g.logger),
	)
	if err := g.scene.AddObject(player.NewObject("party", world.Point{}, g.player)); err != nil {
		return nil, err
	}

	g.overworld = NewOverworld(g.scene,
		WithOutcome(g.applyOutcome),
		WithCombatOptions(combat.WithResolver(combat.NewResolver(g.rng))),
		WithOverworldLogger(g.logger),
		WithOverworldContext(ctx),
	)
	g.prompter = ui.NewPrompter(g.bus, g.logger)
	g.subscribe()

	var target *world.Point
	if pt, ok := cfg.StartPoint(); ok {
		target = &pt
	}
	if err := g.Travel(initCtx, cfg.StartMap, target); err != nil {
		return nil, err
	}
	g.preload(initCtx, g.CurrentMap())
	g.overworld.Start()

	span.SetAttributes(
		attribute.String("map", cfg.StartMap),
		attribute.Int("party.start_x", g.player.Position().X),
		attribute.Int("party.start_y", g.player.Position().Y),
	)
	return g, nil
}

func (g *Game) loadData() error {
	var err error
	if g.classes, err = gamedata.LoadClassRegistry(); err != nil {
		return fmt.Errorf("failed to load classes: %w", err)
	}
	if g.enemies, err = gamedata.LoadEnemyRegistry(); err != nil {
		return fmt.Errorf("failed to load enemies: %w", err)
	}
	if g.encounters, err = gamedata.LoadEncounterRegistry(g.enemies); err != nil {
		return fmt.Errorf("failed to load encounters: %w", err)
	}
	return nil
}

func (g *Game) subscribe() {
	g.bus.On(event.EncounterTriggered, g.onEncounter, g)
	g.bus.On(event.PortalEntered, g.onPortal, g)
	g.bus.On(event.TempleEntered, func(ev *event.Event) {
		g.temple, _ = ev.Payload.(*feature.Temple)
	}, g)
	g.bus.On(event.TempleExited, func(*event.Event) { g.temple = nil }, g)
}

// Close releases the session's subscriptions and stops any running combat.
func (g *Game) Close() {
	g.prompter.Close()
	g.overworld.Close()
	g.bus.OffAll(g)
}

// Bus returns the session's event bus.
func (g *Game) Bus() *event.Bus { return g.bus }

// Scene returns the session's scene.
func (g *Game) Scene() *scene.Scene { return g.scene }

// Party returns the player's party.
func (g *Game) Party() *entity.Party { return g.party }

// Player returns the party's movement component.
func (g *Game) Player() *player.Player { return g.player }

// Overworld returns the mode machine.
func (g *Game) Overworld() *Overworld { return g.overworld }

// Prompter returns the prompt driver.
func (g *Game) Prompter() *ui.Prompter { return g.prompter }

// CurrentMap returns the active map.
func (g *Game) CurrentMap() *world.TileMap { return g.mapComp.Map() }

// Move steps the party and runs deferred work it caused, such as travel.
func (g *Game) Move(dx, dy int) player.MoveResult {
	res := g.player.Move(dx, dy)
	g.bus.Flush()
	return res
}

// Rest heals the party at the temple it stands on, for the temple's fee.
func (g *Game) Rest() bool {
	if g.temple == nil {
		return false
	}
	if !g.party.SpendGold(g.temple.Cost) {
		g.prompter.SetMessage(fmt.Sprintf("You need %d gold to rest here.", g.temple.Cost))
		return false
	}
	g.party.Rest()
	g.prompter.SetMessage("Your party is fully rested.")
	return true
}

func (g *Game) onEncounter(ev *event.Event) {
	req, ok := ev.Payload.(feature.EncounterRequest)
	if !ok {
		return
	}
	enc, err := g.buildEncounter(req)
	if err != nil {
		g.logger.Debug("no encounter", zap.String("zone", req.Zone), zap.Error(err))
		return
	}
	if _, err := g.overworld.StartEncounter(enc); err != nil {
		g.logger.Warn("failed to start encounter", zap.String("encounter", enc.ID), zap.Error(err))
	}
}

// buildEncounter resolves a request to combatants: a fixed encounter by id,
// otherwise a random one for the zone.
func (g *Game) buildEncounter(req feature.EncounterRequest) (*combat.Encounter, error) {
	var def *gamedata.EncounterDef
	if req.ID != "" {
		def = g.encounters.GetByID(req.ID)
	} else {
		def = g.encounters.SpawnRandom(req.Zone, g.rng)
	}
	if def == nil {
		return nil, fmt.Errorf("%w: id %q zone %q", ErrUnknownEncounter, req.ID, req.Zone)
	}

	enemies := make([]combat.Combatant, 0, len(def.Enemies))
	for _, id := range def.Enemies {
		enemies = append(enemies, entity.NewEnemyFromDef(g.enemies.GetByID(id)))
	}
	return &combat.Encounter{
		ID:      def.ID,
		Name:    def.Name,
		Party:   g.party.Combatants(),
		Enemies: enemies,
		Fixed:   def.Fixed || req.Fixed != nil,
		Rewards: g.party,
	}, nil
}

// applyOutcome runs before the overworld returns to the map. Spoils were
// already paid to the party when the combat summarized its victory.
func (g *Game) applyOutcome(res *combat.Result) {
	enc := res.Combat.Encounter
	switch res.Outcome {
	case combat.OutcomeVictory:
		if enc.Fixed {
			g.clearEncounter(enc.ID)
		}
	case combat.OutcomeDefeat:
		g.party.Revive(1)
	}
}

func (g *Game) clearEncounter(id string) {
	for _, enc := range scene.FindComponents[*feature.Encounter](g.scene) {
		if enc.ID != id {
			continue
		}
		if err := enc.SetState(feature.StateCleared); err != nil {
			g.logger.Warn("failed to clear encounter", zap.String("encounter", id), zap.Error(err))
			continue
		}
		g.remember(enc.Host().Name, enc.State())
	}
}

func (g *Game) remember(object, state string) {
	m := g.CurrentMap()
	if m == nil {
		return
	}
	states := g.cleared[m.Name]
	if states == nil {
		states = make(map[string]string)
		g.cleared[m.Name] = states
	}
	states[object] = state
}

func (g *Game) onPortal(ev *event.Event) {
	req, ok := ev.Payload.(feature.PortalRequest)
	if !ok {
		return
	}
	// Travel replaces the scene's objects; wait until the move that entered
	// the portal has finished.
	g.bus.Defer(func() {
		if err := g.Travel(g.ctx, req.Map, req.Target); err != nil {
			g.logger.Error("travel failed", zap.String("map", req.Map), zap.Error(err))
			g.prompter.SetMessage("The way is barred.")
		}
	})
}

// Travel replaces the active map with the named one and places the party at
// target, or at the map's start point when target is nil.
func (g *Game) Travel(ctx context.Context, name string, target *world.Point) error {
	ctx, span := telemetry.Tracer("game").Start(ctx, "map.travel")
	defer span.End()
	from := ""
	if m := g.CurrentMap(); m != nil {
		from = m.Name
	}
	span.SetAttributes(attribute.String("map.from", from), attribute.String("map.to", name))

	m, err := g.tileMap(ctx, name)
	if err != nil {
		span.SetAttributes(attribute.Bool("failed", true))
		return err
	}
	g.enterMap(m)

	pt := m.StartPoint()
	if target != nil {
		pt = *target
	}
	g.player.Place(pt)
	g.prompter.SetMessage("")

	g.logger.Info("entered map",
		zap.String("map", m.Name),
		zap.String("from", from),
		zap.Int("x", pt.X),
		zap.Int("y", pt.Y),
	)
	return nil
}

// enterMap swaps the map and its features. Remembered feature states, such as
// cleared encounters, are restored.
func (g *Game) enterMap(m *world.TileMap) {
	for _, o := range g.scene.Objects() {
		if o.Kind == feature.ObjectKind {
			g.scene.RemoveObject(o)
		}
	}
	g.temple = nil
	g.mapComp.SetMap(m)

	states := g.cleared[m.Name]
	for _, o := range feature.BuildAll(m) {
		if state, ok := states[o.Name]; ok {
			for _, st := range scene.ComponentsOf[scene.Stateful](o) {
				if err := st.SetState(state); err != nil {
					g.logger.Warn("failed to restore state", zap.Stringer("object", o), zap.Error(err))
				}
			}
		}
		if err := g.scene.AddObject(o); err != nil {
			g.logger.Warn("skipping map object", zap.String("map", m.Name), zap.Error(err))
		}
	}
}

func (g *Game) tileMap(ctx context.Context, name string) (*world.TileMap, error) {
	if m, ok := g.maps[name]; ok {
		return m, nil
	}
	var m *world.TileMap
	if slices.Contains(g.cfg.GeneratedMaps, name) {
		m = g.generate(ctx, name)
	} else {
		var err error
		if m, err = g.loader.LoadOne(ctx, name); err != nil {
			return nil, err
		}
	}
	g.maps[name] = m
	return m, nil
}

// generate builds a dungeon with stairs back to the start map and the goblin
// king waiting in the last room.
func (g *Game) generate(ctx context.Context, name string) *world.TileMap {
	m := world.Generate(ctx, name, world.DefaultWidth, world.DefaultHeight, g.rng)
	start := m.StartPoint()
	m.Objects = append(m.Objects, world.ObjectDef{
		Name: "Stairs Up", Type: feature.KindPortal.String(), X: start.X, Y: start.Y,
		Properties: world.Properties{"map": g.cfg.StartMap},
	})
	if len(m.Rooms) > 1 && g.encounters.GetByID("goblin-king") != nil {
		lair := m.Rooms[len(m.Rooms)-1].Center()
		m.Objects = append(m.Objects, world.ObjectDef{
			Name: "Goblin King", Type: feature.KindEncounter.String(), X: lair.X, Y: lair.Y,
			Properties: world.Properties{"id": "goblin-king"},
		})
	}
	return m
}

// preload loads the maps m's portals lead to. Failures are only logged;
// travel reports them.
func (g *Game) preload(ctx context.Context, m *world.TileMap) {
	var names []string
	for _, def := range m.Objects {
		target := def.Properties.String("map")
		if kind, _ := feature.ParseKind(def.Type); kind != feature.KindPortal || target == "" {
			continue
		}
		if _, cached := g.maps[target]; cached || slices.Contains(g.cfg.GeneratedMaps, target) || slices.Contains(names, target) {
			continue
		}
		names = append(names, target)
	}
	if len(names) == 0 {
		return
	}
	maps, err := g.loader.Load(ctx, names...)
	if err != nil {
		g.logger.Warn("preload failed", zap.Strings("maps", names), zap.Error(err))
		return
	}
	for i, loaded := range maps {
		g.maps[names[i]] = loaded
	}
}

// reload re-reads the active map after its file changed. The party keeps its
// position when it is still on the map.
func (g *Game) reload(ctx context.Context, name string) {
	m := g.CurrentMap()
	if m == nil || m.Name != name {
		delete(g.maps, name)
		return
	}
	if g.overworld.State() != StateMap {
		g.logger.Info("map reload skipped during combat", zap.String("map", name))
		return
	}
	fresh, err := g.loader.LoadOne(ctx, name)
	if err != nil {
		g.logger.Warn("map reload failed", zap.String("map", name), zap.Error(err))
		g.prompter.SetMessage("Map reload failed: " + err.Error())
		return
	}
	g.maps[name] = fresh

	pos := g.player.Position()
	g.enterMap(fresh)
	if !fresh.InBounds(pos.X, pos.Y) {
		pos = fresh.StartPoint()
	}
	g.player.Place(pos)
	g.logger.Info("map reloaded", zap.String("map", name))
}
