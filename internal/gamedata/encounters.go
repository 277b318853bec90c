package gamedata

// EncounterDef defines a battle: a group of enemies met in a zone.
// Fixed encounters are placed on maps and referenced by id; the others are
// rolled at random while walking through their zone.
type EncounterDef struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Zone    string   `json:"zone,omitempty"`
	Enemies []string `json:"enemies"` // Enemy ids, one per combatant
	Fixed   bool     `json:"fixed,omitempty"`
	Weight  int      `json:"weight,omitempty"` // Relative frequency among the zone's random encounters
}

// EncountersFile represents the structure of encounters.json.
type EncountersFile struct {
	Encounters []EncounterDef `json:"encounters"`
}

// LoadEncounters loads encounter definitions from the embedded encounters.json file.
func LoadEncounters() ([]EncounterDef, error) {
	file, err := Load[EncountersFile]("encounters.json")
	if err != nil {
		return nil, err
	}
	return file.Encounters, nil
}
