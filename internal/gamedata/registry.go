package gamedata

import (
	"errors"
	"fmt"
	"math/rand"
)

// EnemyRegistry holds loaded enemy definitions and provides spawning utilities.
type EnemyRegistry struct {
	enemies     []EnemyDef
	totalWeight int
}

// NewEnemyRegistry creates a registry from loaded enemy definitions.
func NewEnemyRegistry(enemies []EnemyDef) *EnemyRegistry {
	totalWeight := 0
	for _, e := range enemies {
		totalWeight += e.SpawnWeight
	}
	return &EnemyRegistry{
		enemies:     enemies,
		totalWeight: totalWeight,
	}
}

// LoadEnemyRegistry loads and creates a registry from the embedded enemies.json.
func LoadEnemyRegistry() (*EnemyRegistry, error) {
	enemies, err := LoadEnemies()
	if err != nil {
		return nil, err
	}
	if len(enemies) == 0 {
		return nil, errors.New("no enemies loaded from enemies.json")
	}
	return NewEnemyRegistry(enemies), nil
}

// SpawnRandom selects a random enemy definition using weighted probability.
// Enemies with higher spawnWeight are more likely to be selected.
func (r *EnemyRegistry) SpawnRandom(rng *rand.Rand) *EnemyDef {
	if r.totalWeight <= 0 || len(r.enemies) == 0 {
		return nil
	}

	roll := rng.Intn(r.totalWeight)
	cumulative := 0
	for i := range r.enemies {
		cumulative += r.enemies[i].SpawnWeight
		if roll < cumulative {
			return &r.enemies[i]
		}
	}
	return &r.enemies[0]
}

// GetByID returns the enemy definition with the given ID, or nil if not found.
func (r *EnemyRegistry) GetByID(id string) *EnemyDef {
	for i := range r.enemies {
		if r.enemies[i].ID == id {
			return &r.enemies[i]
		}
	}
	return nil
}

// Count returns the number of enemy types in the registry.
func (r *EnemyRegistry) Count() int {
	return len(r.enemies)
}

// ClassRegistry holds loaded class definitions.
type ClassRegistry struct {
	classes map[string]*ClassDef
	all     []ClassDef
}

// NewClassRegistry creates a registry from loaded class definitions.
func NewClassRegistry(classes []ClassDef) *ClassRegistry {
	registry := &ClassRegistry{
		classes: make(map[string]*ClassDef),
		all:     classes,
	}
	for i := range classes {
		registry.classes[classes[i].ID] = &classes[i]
	}
	return registry
}

// LoadClassRegistry loads and creates a registry from the embedded classes.json.
func LoadClassRegistry() (*ClassRegistry, error) {
	classes, err := LoadClasses()
	if err != nil {
		return nil, err
	}
	if len(classes) == 0 {
		return nil, errors.New("no classes loaded from classes.json")
	}
	return NewClassRegistry(classes), nil
}

// GetByID returns the class definition with the given ID, or nil if not found.
func (r *ClassRegistry) GetByID(id string) *ClassDef {
	return r.classes[id]
}

// All returns all class definitions in file order.
func (r *ClassRegistry) All() []ClassDef {
	return r.all
}

// EncounterRegistry holds encounter definitions indexed by id and zone.
type EncounterRegistry struct {
	byID   map[string]*EncounterDef
	byZone map[string][]*EncounterDef
}

// NewEncounterRegistry creates a registry, checking that every enemy an
// encounter references exists in enemies.
func NewEncounterRegistry(encounters []EncounterDef, enemies *EnemyRegistry) (*EncounterRegistry, error) {
	registry := &EncounterRegistry{
		byID:   make(map[string]*EncounterDef),
		byZone: make(map[string][]*EncounterDef),
	}
	for i := range encounters {
		enc := &encounters[i]
		if _, dup := registry.byID[enc.ID]; dup {
			return nil, fmt.Errorf("duplicate encounter %q", enc.ID)
		}
		if len(enc.Enemies) == 0 {
			return nil, fmt.Errorf("encounter %q has no enemies", enc.ID)
		}
		for _, id := range enc.Enemies {
			if enemies.GetByID(id) == nil {
				return nil, fmt.Errorf("encounter %q references unknown enemy %q", enc.ID, id)
			}
		}
		registry.byID[enc.ID] = enc
		if !enc.Fixed && enc.Zone != "" {
			registry.byZone[enc.Zone] = append(registry.byZone[enc.Zone], enc)
		}
	}
	return registry, nil
}

// LoadEncounterRegistry loads encounters.json and validates it against enemies.
func LoadEncounterRegistry(enemies *EnemyRegistry) (*EncounterRegistry, error) {
	encounters, err := LoadEncounters()
	if err != nil {
		return nil, err
	}
	return NewEncounterRegistry(encounters, enemies)
}

// GetByID returns the encounter with the given ID, or nil if not found.
func (r *EncounterRegistry) GetByID(id string) *EncounterDef {
	return r.byID[id]
}

// ForZone returns the random encounters of a zone.
func (r *EncounterRegistry) ForZone(zone string) []*EncounterDef {
	return r.byZone[zone]
}

// SpawnRandom picks a random encounter for zone by weight. Encounters without
// a weight count as 1. It returns nil for zones without encounters.
func (r *EncounterRegistry) SpawnRandom(zone string, rng *rand.Rand) *EncounterDef {
	candidates := r.byZone[zone]
	total := 0
	for _, enc := range candidates {
		total += max(enc.Weight, 1)
	}
	if total == 0 {
		return nil
	}

	roll := rng.Intn(total)
	for _, enc := range candidates {
		roll -= max(enc.Weight, 1)
		if roll < 0 {
			return enc
		}
	}
	return candidates[0]
}
