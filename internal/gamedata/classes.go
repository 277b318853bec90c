package gamedata

// ClassDef defines a playable class loaded from JSON.
type ClassDef struct {
	ID      string `json:"id"`      // Unique identifier (e.g., "warrior")
	Name    string `json:"name"`    // Display name (e.g., "Warrior")
	Symbol  string `json:"symbol"`  // Single character for rendering (e.g., "W")
	HP      int    `json:"hp"`      // Base hit points
	Attack  int    `json:"attack"`  // Base attack power
	Defense int    `json:"defense"` // Base defense value
	Magic   int    `json:"magic"`   // Base magic power

	Growth StatGrowth `json:"growth"` // Gained on each level up
}

// StatGrowth is the stat increase applied on level up.
type StatGrowth struct {
	HP      int `json:"hp"`
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Magic   int `json:"magic"`
}

// SymbolRune returns the symbol as a rune for rendering.
func (c *ClassDef) SymbolRune() rune {
	if len(c.Symbol) == 0 {
		return '?'
	}
	return rune(c.Symbol[0])
}

// ClassesFile represents the structure of classes.json.
type ClassesFile struct {
	Classes []ClassDef `json:"classes"`
}

// LoadClasses loads class definitions from the embedded classes.json file.
func LoadClasses() ([]ClassDef, error) {
	file, err := Load[ClassesFile]("classes.json")
	if err != nil {
		return nil, err
	}
	return file.Classes, nil
}
