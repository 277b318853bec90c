// Package entity provides the party and the monsters it fights.
package entity

import (
	"github.com/samdwyer/tilequest/internal/combat"
	"github.com/samdwyer/tilequest/internal/gamedata"
)

// Class represents an adventurer's class.
type Class int

const (
	ClassWarrior Class = iota
	ClassRogue
	ClassWizard
	ClassCleric
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassWarrior:
		return "Warrior"
	case ClassRogue:
		return "Rogue"
	case ClassWizard:
		return "Wizard"
	case ClassCleric:
		return "Cleric"
	default:
		return "Unknown"
	}
}

// ID returns the class identifier for data lookup.
func (c Class) ID() string {
	switch c {
	case ClassWarrior:
		return "warrior"
	case ClassRogue:
		return "rogue"
	case ClassWizard:
		return "wizard"
	case ClassCleric:
		return "cleric"
	default:
		return "unknown"
	}
}

// Symbol returns the default display symbol for a class.
func (c Class) Symbol() rune {
	switch c {
	case ClassWarrior:
		return 'W'
	case ClassRogue:
		return 'R'
	case ClassWizard:
		return 'Z'
	case ClassCleric:
		return 'C'
	default:
		return '?'
	}
}

// Member represents an individual party member.
type Member struct {
	Name   string
	Class  Class
	Symbol rune

	HP, MaxHP int
	Attack    int
	Defense   int
	Magic     int
	Exp       int
	Level     int

	growth gamedata.StatGrowth
}

// defaultGrowth applies to members without class data.
var defaultGrowth = gamedata.StatGrowth{HP: 4, Attack: 1, Defense: 1, Magic: 1}

// ExpForLevel returns the total experience needed to reach level. Each level
// costs ten more than the one before: 10, 30, 60, ...
func ExpForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return 5 * level * (level - 1)
}

// NewMember creates a new party member with the given name and class.
// Stats are set to default values; use InitFromClassDef to load from data.
func NewMember(name string, class Class) *Member {
	return &Member{
		Name:    name,
		Class:   class,
		Symbol:  class.Symbol(),
		HP:      20,
		MaxHP:   20,
		Attack:  5,
		Defense: 3,
		Magic:   3,
		Level:   1,
		growth:  defaultGrowth,
	}
}

// InitFromClassDef initializes member stats from a class definition.
func (m *Member) InitFromClassDef(def *gamedata.ClassDef) {
	if def == nil {
		return
	}
	m.HP = def.HP
	m.MaxHP = def.HP
	m.Attack = def.Attack
	m.Defense = def.Defense
	m.Magic = def.Magic
	m.Symbol = def.SymbolRune()
	if def.Growth != (gamedata.StatGrowth{}) {
		m.growth = def.Growth
	}
}

// GainExp adds experience and applies every level up it earns. It returns
// the number of levels gained.
func (m *Member) GainExp(exp int) int {
	if exp <= 0 {
		return 0
	}
	m.Exp += exp
	gained := 0
	for m.Exp >= ExpForLevel(m.Level+1) {
		m.levelUp()
		gained++
	}
	return gained
}

func (m *Member) levelUp() {
	m.Level++
	m.MaxHP += m.growth.HP
	m.HP += m.growth.HP
	m.Attack += m.growth.Attack
	m.Defense += m.growth.Defense
	m.Magic += m.growth.Magic
}

// GetName returns the member's name.
func (m *Member) GetName() string { return m.Name }

// IsAlive returns true if the member has HP remaining.
func (m *Member) IsAlive() bool { return m.HP > 0 }

// GetHP returns current HP.
func (m *Member) GetHP() int { return m.HP }

// GetMaxHP returns maximum HP.
func (m *Member) GetMaxHP() int { return m.MaxHP }

// GetAttack returns attack stat.
func (m *Member) GetAttack() int { return m.Attack }

// GetDefense returns defense stat.
func (m *Member) GetDefense() int { return m.Defense }

// TakeDamage reduces HP and returns actual damage taken.
func (m *Member) TakeDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	actual := min(amount, m.HP)
	m.HP -= actual
	return actual
}

// Heal restores HP and returns actual amount healed.
func (m *Member) Heal(amount int) int {
	if amount <= 0 {
		return 0
	}
	actual := min(amount, m.MaxHP-m.HP)
	m.HP += actual
	return actual
}

// Ensure Member implements combat.Combatant
var _ combat.Combatant = (*Member)(nil)
