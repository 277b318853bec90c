package entity

import (
	"testing"

	"github.com/samdwyer/tilequest/internal/combat"
	"github.com/samdwyer/tilequest/internal/gamedata"
)

func TestClassString(t *testing.T) {
	tests := []struct {
		class Class
		name  string
		id    string
		sym   rune
	}{
		{ClassWarrior, "Warrior", "warrior", 'W'},
		{ClassRogue, "Rogue", "rogue", 'R'},
		{ClassWizard, "Wizard", "wizard", 'Z'},
		{ClassCleric, "Cleric", "cleric", 'C'},
		{Class(99), "Unknown", "unknown", '?'},
	}
	for _, tt := range tests {
		if got := tt.class.String(); got != tt.name {
			t.Errorf("Class(%d).String() = %q, want %q", tt.class, got, tt.name)
		}
		if got := tt.class.ID(); got != tt.id {
			t.Errorf("Class(%d).ID() = %q, want %q", tt.class, got, tt.id)
		}
		if got := tt.class.Symbol(); got != tt.sym {
			t.Errorf("Class(%d).Symbol() = %c, want %c", tt.class, got, tt.sym)
		}
	}
}

func TestMemberDamageAndHealing(t *testing.T) {
	m := NewMember("Test", ClassWarrior)

	if got := m.TakeDamage(5); got != 5 {
		t.Errorf("TakeDamage(5) = %d, want 5", got)
	}
	if got := m.TakeDamage(100); got != 15 {
		t.Errorf("TakeDamage(100) = %d, want 15 (capped at remaining HP)", got)
	}
	if m.IsAlive() {
		t.Error("member should be dead at 0 HP")
	}
	if got := m.Heal(100); got != 20 {
		t.Errorf("Heal(100) = %d, want 20", got)
	}
	if got := m.TakeDamage(-3); got != 0 {
		t.Errorf("TakeDamage(-3) = %d, want 0", got)
	}
}

func TestNewDefaultParty(t *testing.T) {
	classes, err := gamedata.LoadClassRegistry()
	if err != nil {
		t.Fatalf("LoadClassRegistry() error = %v", err)
	}
	p := NewDefaultParty(classes)

	if len(p.Members) != 4 {
		t.Fatalf("len(Members) = %d, want 4", len(p.Members))
	}
	warrior := p.Members[0]
	def := classes.GetByID("warrior")
	if warrior.MaxHP != def.HP || warrior.Attack != def.Attack {
		t.Errorf("warrior stats = %d/%d, want %d/%d", warrior.MaxHP, warrior.Attack, def.HP, def.Attack)
	}
	if len(p.Combatants()) != 4 {
		t.Errorf("len(Combatants()) = %d, want 4", len(p.Combatants()))
	}
}

func TestPartyRewardReviveRest(t *testing.T) {
	a, b, c := NewMember("A", ClassWarrior), NewMember("B", ClassRogue), NewMember("C", ClassCleric)
	p := NewParty(a, b, c)
	c.TakeDamage(c.HP)

	p.Reward(30, 10)
	if p.Gold != 30 {
		t.Errorf("Gold = %d, want 30", p.Gold)
	}
	if a.Exp != 5 || b.Exp != 5 || c.Exp != 0 {
		t.Errorf("Exp = %d/%d/%d, want 5/5/0", a.Exp, b.Exp, c.Exp)
	}

	a.TakeDamage(a.HP)
	b.TakeDamage(b.HP)
	if !p.IsDefeated() {
		t.Fatal("IsDefeated() = false, want true")
	}
	p.Revive(1)
	for _, m := range p.Members {
		if m.HP != 1 {
			t.Errorf("%s HP = %d after Revive(1), want 1", m.Name, m.HP)
		}
	}

	p.Rest()
	if a.HP != a.MaxHP {
		t.Errorf("HP = %d after Rest, want %d", a.HP, a.MaxHP)
	}
	if p.SpendGold(31) || !p.SpendGold(30) || p.Gold != 0 {
		t.Errorf("SpendGold misbehaved, gold = %d", p.Gold)
	}
}

func TestEnemyFromDef(t *testing.T) {
	def := &gamedata.EnemyDef{ID: "orc", Name: "Orc", Glyph: "o", Color: "#FF0000", HP: 16, Attack: 8, Defense: 3, Gold: 10, Exp: 14}
	e := NewEnemyFromDef(def)

	if e.ID() != "orc" || e.Symbol != 'o' || e.HP != 16 {
		t.Errorf("NewEnemyFromDef() = %+v", e)
	}
	if e.GoldReward() != 10 || e.ExpReward() != 14 {
		t.Errorf("rewards = %d/%d, want 10/14", e.GoldReward(), e.ExpReward())
	}
	e.TakeDamage(20)
	if e.IsAlive() {
		t.Error("enemy should be dead")
	}
}

func TestExpForLevel(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{1, 0},
		{2, 10},
		{3, 30},
		{4, 60},
	}
	for _, tt := range tests {
		if got := ExpForLevel(tt.level); got != tt.want {
			t.Errorf("ExpForLevel(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestGainExpLevelsUpWithClassGrowth(t *testing.T) {
	m := NewMember("Aldric", ClassWarrior)
	m.InitFromClassDef(&gamedata.ClassDef{
		ID: "warrior", Symbol: "W", HP: 30, Attack: 8, Defense: 5,
		Growth: gamedata.StatGrowth{HP: 6, Attack: 2, Defense: 2},
	})
	m.TakeDamage(10)

	if got := m.GainExp(9); got != 0 || m.Level != 1 {
		t.Fatalf("GainExp(9) = %d, level %d, want 0, 1", got, m.Level)
	}
	if got := m.GainExp(21); got != 2 {
		t.Fatalf("GainExp(21) = %d, want 2", got)
	}
	if m.Level != 3 || m.Exp != 30 {
		t.Errorf("level/exp = %d/%d, want 3/30", m.Level, m.Exp)
	}
	if m.MaxHP != 42 || m.HP != 32 || m.Attack != 12 || m.Defense != 9 {
		t.Errorf("stats = %d/%d atk %d def %d, want 42/32 atk 12 def 9", m.HP, m.MaxHP, m.Attack, m.Defense)
	}
	if m.GainExp(-5) != 0 || m.Exp != 30 {
		t.Errorf("negative exp changed the member: exp %d", m.Exp)
	}
}

func TestPartyRewardReportsLevelUps(t *testing.T) {
	a, b := NewMember("A", ClassWarrior), NewMember("B", ClassRogue)
	p := NewParty(a, b)

	ups := p.Reward(5, 24)
	if len(ups) != 2 {
		t.Fatalf("len(Reward()) = %d, want 2", len(ups))
	}
	if ups[0] != (combat.LevelUp{Name: "A", Level: 2}) || ups[1] != (combat.LevelUp{Name: "B", Level: 2}) {
		t.Errorf("Reward() = %+v", ups)
	}
	if a.MaxHP != 24 || a.Attack != 6 {
		t.Errorf("default growth = %d HP atk %d, want 24 atk 6", a.MaxHP, a.Attack)
	}

	if ups := p.Reward(0, 4); ups != nil {
		t.Errorf("Reward(0, 4) = %+v, want none", ups)
	}
}
