package entity

import (
	"github.com/samdwyer/tilequest/internal/combat"
	"github.com/samdwyer/tilequest/internal/gamedata"
)

// Symbol is the party's glyph on the map.
const Symbol = '&'

// Party represents the player's party of adventurers.
type Party struct {
	Members []*Member
	Gold    int
}

// NewParty creates a party from members.
func NewParty(members ...*Member) *Party {
	return &Party{Members: members}
}

// NewDefaultParty creates one member of each class, with stats from classes.
func NewDefaultParty(classes *gamedata.ClassRegistry) *Party {
	names := []string{"Aldric", "Wren", "Morwen", "Bede"}
	p := &Party{}
	for i, class := range []Class{ClassWarrior, ClassRogue, ClassWizard, ClassCleric} {
		m := NewMember(names[i], class)
		if classes != nil {
			m.InitFromClassDef(classes.GetByID(class.ID()))
		}
		p.Members = append(p.Members, m)
	}
	return p
}

// Combatants returns the members as combatants.
func (p *Party) Combatants() []combat.Combatant {
	out := make([]combat.Combatant, len(p.Members))
	for i, m := range p.Members {
		out[i] = m
	}
	return out
}

// AliveMemberCount returns the number of members with HP left.
func (p *Party) AliveMemberCount() int {
	count := 0
	for _, m := range p.Members {
		if m.IsAlive() {
			count++
		}
	}
	return count
}

// IsDefeated returns true if no member is alive.
func (p *Party) IsDefeated() bool {
	return p.AliveMemberCount() == 0
}

// Reward adds gold and splits experience between living members. It returns
// the members that levelled up, with their new level.
func (p *Party) Reward(gold, exp int) []combat.LevelUp {
	p.Gold += gold
	alive := p.AliveMemberCount()
	if alive == 0 {
		return nil
	}
	share := exp / alive
	var ups []combat.LevelUp
	for _, m := range p.Members {
		if m.IsAlive() && m.GainExp(share) > 0 {
			ups = append(ups, combat.LevelUp{Name: m.Name, Level: m.Level})
		}
	}
	return ups
}

// Revive brings fallen members back with hp, capped at their maximum.
func (p *Party) Revive(hp int) {
	for _, m := range p.Members {
		if !m.IsAlive() {
			m.HP = min(hp, m.MaxHP)
		}
	}
}

// Rest restores every member to full HP.
func (p *Party) Rest() {
	for _, m := range p.Members {
		m.HP = m.MaxHP
	}
}

// SpendGold removes amount if the party can afford it.
func (p *Party) SpendGold(amount int) bool {
	if amount > p.Gold {
		return false
	}
	p.Gold -= amount
	return true
}

// Ensure Party pays out combat rewards
var _ combat.Rewarder = (*Party)(nil)
