package entity

import (
	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/tilequest/internal/combat"
	"github.com/samdwyer/tilequest/internal/gamedata"
)

// Enemy is a hostile creature met in an encounter.
type Enemy struct {
	Def    *gamedata.EnemyDef
	Name   string
	Symbol rune
	HP     int
	MaxHP  int
}

// NewEnemyFromDef creates a new enemy from a data-driven definition.
func NewEnemyFromDef(def *gamedata.EnemyDef) *Enemy {
	return &Enemy{
		Def:    def,
		Name:   def.Name,
		Symbol: def.GlyphRune(),
		HP:     def.HP,
		MaxHP:  def.HP,
	}
}

// ID returns the enemy's type identifier.
func (e *Enemy) ID() string { return e.Def.ID }

// Color returns the tcell color for this enemy.
func (e *Enemy) Color() tcell.Color { return e.Def.TCellColor() }

// GetName returns the enemy's name.
func (e *Enemy) GetName() string { return e.Name }

// IsAlive returns true if the enemy has HP remaining.
func (e *Enemy) IsAlive() bool { return e.HP > 0 }

// GetHP returns current HP.
func (e *Enemy) GetHP() int { return e.HP }

// GetMaxHP returns maximum HP.
func (e *Enemy) GetMaxHP() int { return e.MaxHP }

// GetAttack returns the enemy's attack power.
func (e *Enemy) GetAttack() int { return e.Def.Attack }

// GetDefense returns the enemy's defense value.
func (e *Enemy) GetDefense() int { return e.Def.Defense }

// GoldReward returns the gold dropped on defeat.
func (e *Enemy) GoldReward() int { return e.Def.Gold }

// ExpReward returns the experience awarded on defeat.
func (e *Enemy) ExpReward() int { return e.Def.Exp }

// TakeDamage reduces HP and returns actual damage taken.
func (e *Enemy) TakeDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	actual := min(amount, e.HP)
	e.HP -= actual
	return actual
}

// Heal restores HP and returns actual amount healed.
func (e *Enemy) Heal(amount int) int {
	if amount <= 0 {
		return 0
	}
	actual := min(amount, e.MaxHP-e.HP)
	e.HP += actual
	return actual
}

var (
	_ combat.Combatant = (*Enemy)(nil)
	_ combat.Bounty    = (*Enemy)(nil)
)
