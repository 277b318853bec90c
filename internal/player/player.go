// Package player provides the component that walks the party across the map.
package player

import (
	"math/rand"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/samdwyer/tilequest/internal/collision"
	"github.com/samdwyer/tilequest/internal/event"
	"github.com/samdwyer/tilequest/internal/feature"
	"github.com/samdwyer/tilequest/internal/scene"
	"github.com/samdwyer/tilequest/internal/world"
)

// ObjectKind is the scene object type tag for the player.
const ObjectKind = "player"

// MoveResult is the outcome of a move request.
type MoveResult int

const (
	Moved MoveResult = iota
	Blocked
	Paused
	Detached
)

// String returns a human-readable result name.
func (r MoveResult) String() string {
	switch r {
	case Moved:
		return "moved"
	case Blocked:
		return "blocked"
	case Paused:
		return "paused"
	case Detached:
		return "detached"
	default:
		return "unknown"
	}
}

// Movement is the payload of player:moved.
type Movement struct {
	From, To world.Point
}

// Option configures a Player.
type Option func(*Player)

// WithEncounterRate sets the chance per step of a random encounter in a zone.
func WithEncounterRate(rate float64) Option {
	return func(p *Player) { p.rate = rate }
}

// WithRand sets the random source for encounter rolls.
func WithRand(rng *rand.Rand) Option {
	return func(p *Player) {
		if rng != nil {
			p.rng = rng
		}
	}
}

// WithCollision sets resolver options used when the player joins a scene.
func WithCollision(opts ...collision.Option) Option {
	return func(p *Player) { p.collisionOpts = append(p.collisionOpts, opts...) }
}

// WithLogger sets the player logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Player) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Player moves its host object one tile at a time. It tracks the features
// under the host so each is entered and exited once per visit.
type Player struct {
	scene.Base

	resolver      *collision.Resolver
	collisionOpts []collision.Option
	occupied      []*scene.Object
	rng           *rand.Rand
	rate          float64
	logger        *zap.Logger
}

// New creates a player component. Random encounters are off until a rate is
// set.
func New(opts ...Option) *Player {
	p := &Player{
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewObject creates a player object at pt carrying p.
func NewObject(name string, pt world.Point, p *Player) *scene.Object {
	return scene.NewObject(ObjectKind, name, pt, p)
}

// Connect builds the collision resolver for the host's scene.
func (p *Player) Connect(host *scene.Object) error {
	if err := p.Base.Connect(host); err != nil {
		return err
	}
	p.resolver = collision.New(host.Scene(), p.collisionOpts...)
	p.occupied = nil
	return nil
}

// Disconnect drops the resolver and forgets occupied features.
func (p *Player) Disconnect() {
	p.resolver = nil
	p.occupied = nil
	p.Base.Disconnect()
}

// Position returns the host's tile.
func (p *Player) Position() world.Point {
	if host := p.Host(); host != nil {
		return host.Point
	}
	return world.Point{}
}

// Occupied returns the feature objects under the host.
func (p *Player) Occupied() []*scene.Object {
	return slices.Clone(p.occupied)
}

// Place puts the host at pt without entering or exiting features. Used when
// arriving on a map.
func (p *Player) Place(pt world.Point) {
	if host := p.Host(); host != nil {
		host.Point = pt
	}
	p.occupied = nil
}

// Move steps the host by dx, dy. Features no longer under the host are exited
// before newly reached ones are entered. A successful step in an encounter
// zone may trigger a random encounter.
func (p *Player) Move(dx, dy int) MoveResult {
	host := p.Host()
	s := p.Scene()
	if host == nil || s == nil || p.resolver == nil {
		return Detached
	}
	if s.Paused() {
		return Paused
	}

	to := host.Point.Add(dx, dy)
	m := scene.ActiveMap(s)
	if m != nil && !m.InBounds(to.X, to.Y) {
		return Blocked
	}
	blocked, found := p.resolver.Collide(host, to.X, to.Y, nil)
	if blocked {
		p.logger.Debug("move blocked", zap.Int("x", to.X), zap.Int("y", to.Y))
		return Blocked
	}

	from := host.Point
	host.Point = to
	p.visit(host, found)

	if bus := s.Bus(); bus != nil {
		_ = bus.Trigger(event.PlayerMoved, Movement{From: from, To: to}, nil)
	}

	// Entering a fixed encounter or a portal may have paused or cleared the
	// scene; no random encounter then.
	if host.Scene() == s && !s.Paused() {
		p.rollEncounter(m, to)
	}
	return Moved
}

func (p *Player) visit(host *scene.Object, found []*scene.Object) {
	left := make([]*scene.Object, 0, len(p.occupied))
	for _, o := range p.occupied {
		if !slices.Contains(found, o) {
			left = append(left, o)
		}
	}
	var entered []*scene.Object
	for _, o := range found {
		if !slices.Contains(p.occupied, o) {
			entered = append(entered, o)
		}
	}
	p.occupied = found

	for _, o := range left {
		for _, c := range scene.ComponentsOf[scene.Interactable](o) {
			c.Exit(host)
		}
	}
	for _, o := range entered {
		for _, c := range scene.ComponentsOf[scene.Interactable](o) {
			c.Enter(host)
		}
	}
}

func (p *Player) rollEncounter(m *world.TileMap, at world.Point) {
	if m == nil || p.rate <= 0 {
		return
	}
	zone := m.ZoneAt(at.X, at.Y)
	if zone == "" {
		return
	}
	if p.rng.Float64() >= p.rate {
		return
	}
	p.logger.Debug("random encounter", zap.String("zone", zone))
	if bus := p.Bus(); bus != nil {
		_ = bus.Trigger(event.EncounterTriggered, feature.EncounterRequest{Zone: zone}, nil)
	}
}
