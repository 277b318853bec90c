package combat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/tilequest/internal/event"
)

// mockCombatant is a test implementation of the Combatant interface.
type mockCombatant struct {
	name      string
	hp, maxHP int
	attack    int
	defense   int
	gold, exp int
}

func newMock(name string, hp, attack, defense int) *mockCombatant {
	return &mockCombatant{name: name, hp: hp, maxHP: hp, attack: attack, defense: defense}
}

func (m *mockCombatant) GetName() string { return m.name }
func (m *mockCombatant) IsAlive() bool   { return m.hp > 0 }
func (m *mockCombatant) GetHP() int      { return m.hp }
func (m *mockCombatant) GetMaxHP() int   { return m.maxHP }
func (m *mockCombatant) GetAttack() int  { return m.attack }
func (m *mockCombatant) GetDefense() int { return m.defense }
func (m *mockCombatant) GoldReward() int { return m.gold }
func (m *mockCombatant) ExpReward() int  { return m.exp }

func (m *mockCombatant) TakeDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	actual := min(amount, m.hp)
	m.hp -= actual
	return actual
}

func (m *mockCombatant) Heal(amount int) int {
	if amount <= 0 {
		return 0
	}
	actual := min(amount, m.maxHP-m.hp)
	m.hp += actual
	return actual
}

type fixture struct {
	bus    *event.Bus
	combat *Combat
	hero   *mockCombatant
	enemy  *mockCombatant
	events []event.Name
	ends   []*Result
}

func newFixture(t *testing.T, hero, enemy *mockCombatant, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{bus: event.NewBus(), hero: hero, enemy: enemy}
	for _, name := range []event.Name{
		event.CombatStart, event.CombatChooseAction, event.CombatTurn,
		event.CombatVictory, event.CombatDefeat, event.CombatEscape,
	} {
		f.bus.On(name, func(ev *event.Event) { f.events = append(f.events, ev.Name) }, f)
	}
	f.bus.On(event.CombatEnd, func(ev *event.Event) { f.ends = append(f.ends, ev.Payload.(*Result)) }, f)

	enc := &Encounter{ID: "test", Party: []Combatant{hero}, Enemies: []Combatant{enemy}}
	opts = append([]Option{WithResolver(NewResolver(rand.New(rand.NewSource(1))))}, opts...)
	f.combat = New(enc, f.bus, opts...)
	return f
}

func TestStartDefersAnnouncement(t *testing.T) {
	f := newFixture(t, newMock("Hero", 30, 10, 2), newMock("Goblin", 5, 3, 0))
	var release func()
	f.bus.On(event.CombatStart, func(ev *event.Event) { release = ev.Wait() }, nil)

	f.combat.Start()
	assert.Equal(t, StateStarted, f.combat.State())
	assert.Empty(t, f.events, "combat:start waits for the deferred queue")

	f.bus.Flush()
	assert.Equal(t, []event.Name{event.CombatStart}, f.events)
	assert.Equal(t, StateStarted, f.combat.State(), "advance waits for the continuation")

	release()
	assert.Equal(t, StateChooseAction, f.combat.State())
	assert.Equal(t, []event.Name{event.CombatStart}, f.events, "the round is requested on the next flush")
	assert.Zero(t, f.combat.Round)

	f.bus.Flush()
	assert.Equal(t, StateVictory, f.combat.State())
}

func TestVictoryEndsCombatOnce(t *testing.T) {
	goblin := newMock("Goblin", 5, 3, 0)
	goblin.gold, goblin.exp = 4, 6
	f := newFixture(t, newMock("Hero", 30, 10, 2), goblin)

	f.combat.Start()
	f.bus.Flush()

	assert.Equal(t, StateVictory, f.combat.State())
	assert.Equal(t, []event.Name{
		event.CombatStart, event.CombatChooseAction, event.CombatTurn, event.CombatVictory,
	}, f.events)
	require.Len(t, f.ends, 1)

	result := f.ends[0]
	assert.Same(t, f.combat, result.Combat)
	assert.Equal(t, OutcomeVictory, result.Outcome)
	assert.Equal(t, 4, result.Gold)
	assert.Equal(t, 6, result.Exp)
	assert.Equal(t, 1, result.Rounds)
	assert.True(t, f.combat.Ended())

	f.combat.finish()
	assert.Len(t, f.ends, 1)
}

type paymaster struct {
	gold, exp int
	calls     int
	ups       []LevelUp
}

func (p *paymaster) Reward(gold, exp int) []LevelUp {
	p.gold, p.exp = gold, exp
	p.calls++
	return p.ups
}

func TestVictoryPaysRewarderAndReportsLevelUps(t *testing.T) {
	goblin := newMock("Goblin", 5, 3, 0)
	goblin.gold, goblin.exp = 4, 12
	f := newFixture(t, newMock("Hero", 30, 10, 2), goblin)
	pay := &paymaster{ups: []LevelUp{{Name: "Hero", Level: 2}}}
	f.combat.Encounter.Rewards = pay

	f.combat.Start()
	f.bus.Flush()

	require.Len(t, f.ends, 1)
	assert.Equal(t, 1, pay.calls)
	assert.Equal(t, 4, pay.gold)
	assert.Equal(t, 12, pay.exp)
	assert.Equal(t, []LevelUp{{Name: "Hero", Level: 2}}, f.ends[0].LevelUps)
	assert.Equal(t, "Victory! Found 4 gold and earned 12 experience. Hero reached level 2!", f.combat.LastMessage)
}

func TestDefeatPaysNothing(t *testing.T) {
	f := newFixture(t, newMock("Hero", 3, 1, 0), newMock("Ogre", 50, 10, 5))
	pay := &paymaster{}
	f.combat.Encounter.Rewards = pay

	f.combat.Start()
	f.bus.Flush()

	require.Len(t, f.ends, 1)
	assert.Zero(t, pay.calls)
	assert.Empty(t, f.ends[0].LevelUps)
}

func TestVictoryWaitsForAcknowledgement(t *testing.T) {
	f := newFixture(t, newMock("Hero", 30, 10, 2), newMock("Goblin", 5, 3, 0))
	var release func()
	f.bus.On(event.CombatVictory, func(ev *event.Event) { release = ev.Wait() }, nil)

	f.combat.Start()
	f.bus.Flush()
	assert.Equal(t, StateVictory, f.combat.State())
	assert.Empty(t, f.ends)

	release()
	assert.Len(t, f.ends, 1)
}

func TestDefeat(t *testing.T) {
	f := newFixture(t, newMock("Hero", 3, 1, 0), newMock("Ogre", 50, 10, 5))

	f.combat.Start()
	f.bus.Flush()

	assert.Equal(t, StateDefeat, f.combat.State())
	require.Len(t, f.ends, 1)
	assert.Equal(t, OutcomeDefeat, f.ends[0].Outcome)
	assert.Zero(t, f.ends[0].Gold)
}

func TestEscape(t *testing.T) {
	resolver := NewResolver(rand.New(rand.NewSource(1)))
	resolver.EscapeChance = 1
	f := newFixture(t, newMock("Hero", 30, 1, 2), newMock("Ogre", 50, 3, 5), WithResolver(resolver))
	f.bus.On(event.CombatChooseAction, func(ev *event.Event) {
		choices := ev.Payload.(*Choices)
		require.NoError(t, choices.Choose(f.hero, ActionRun, nil))
	}, nil)

	f.combat.Start()
	f.bus.Flush()

	assert.Equal(t, StateEscape, f.combat.State())
	require.Len(t, f.ends, 1)
	assert.Equal(t, OutcomeEscape, f.ends[0].Outcome)
	assert.Equal(t, 50, f.enemy.hp, "nobody was hurt")
}

func TestRoundsContinueUntilDecided(t *testing.T) {
	// Hero deals 2 per round, the orc needs 3 rounds to fall.
	f := newFixture(t, newMock("Hero", 40, 5, 2), newMock("Orc", 6, 4, 3))
	var rounds []int
	f.bus.On(event.CombatChooseAction, func(ev *event.Event) {
		rounds = append(rounds, ev.Payload.(*Choices).Round)
	}, nil)

	f.combat.Start()
	f.bus.Flush()

	assert.Equal(t, []int{1, 2, 3}, rounds)
	assert.Equal(t, StateVictory, f.combat.State())
	assert.Equal(t, 40-2*2, f.hero.hp, "the orc acts after the hero and falls before its third turn")
}

func TestGuardHalvesDamage(t *testing.T) {
	f := newFixture(t, newMock("Hero", 40, 1, 0), newMock("Orc", 100, 9, 0))
	var releases []func()
	f.bus.On(event.CombatChooseAction, func(ev *event.Event) {
		require.NoError(t, ev.Payload.(*Choices).Choose(f.hero, ActionGuard, nil))
		releases = append(releases, ev.Wait())
	}, nil)

	f.combat.Start()
	f.bus.Flush()
	require.Len(t, releases, 1)

	releases[0]()
	f.bus.Flush()

	assert.Equal(t, 40-4, f.hero.hp)
	assert.Equal(t, StateChooseAction, f.combat.State())
	assert.Equal(t, 2, f.combat.Round)
	assert.False(t, f.combat.Guarding(f.hero), "guarding lasts one round")
}

func TestStoppedCombatIgnoresContinuations(t *testing.T) {
	f := newFixture(t, newMock("Hero", 30, 10, 2), newMock("Goblin", 5, 3, 0))
	var release func()
	f.bus.On(event.CombatStart, func(ev *event.Event) { release = ev.Wait() }, nil)

	f.combat.Start()
	f.bus.Flush()
	f.combat.Stop()
	release()
	f.bus.Flush()

	assert.Equal(t, "", f.combat.State())
	assert.Empty(t, f.ends)
}

func TestChoicesValidate(t *testing.T) {
	hero, goblin := newMock("Hero", 10, 1, 1), newMock("Goblin", 10, 1, 1)
	choices := &Choices{
		Party:   []Combatant{hero},
		Enemies: []Combatant{goblin},
		chosen:  map[Combatant]Choice{},
	}

	assert.ErrorIs(t, choices.Choose(goblin, ActionAttack, hero), ErrNotInParty)
	assert.ErrorIs(t, choices.Choose(hero, ActionAttack, hero), ErrInvalidTarget)
	require.NoError(t, choices.Choose(hero, ActionAttack, goblin))

	got, ok := choices.Chosen(hero)
	require.True(t, ok)
	assert.Same(t, goblin, got.Target)
}

func TestCalculateDamage(t *testing.T) {
	r := NewResolver(rand.New(rand.NewSource(1)))
	tests := []struct {
		name     string
		attack   int
		defense  int
		guarding bool
		want     int
	}{
		{"attack minus defense", 8, 3, false, 5},
		{"minimum one", 2, 9, false, 1},
		{"guard halves", 9, 1, true, 4},
		{"guard keeps minimum one", 2, 9, true, 1},
	}
	for _, tt := range tests {
		got := r.CalculateDamage(newMock("a", 1, tt.attack, 0), newMock("b", 1, 0, tt.defense), tt.guarding)
		if got != tt.want {
			t.Errorf("%s: CalculateDamage() = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{ActionAttack.String(), "attack"},
		{ActionGuard.String(), "guard"},
		{ActionRun.String(), "run"},
		{Action(99).String(), "unknown"},
		{OutcomeVictory.String(), "victory"},
		{OutcomeDefeat.String(), "defeat"},
		{OutcomeEscape.String(), "escape"},
		{Outcome(99).String(), "unknown"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}
