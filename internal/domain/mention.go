package domain

// Unit is the portion unit attached to a food mention
type Unit string

const (
	UnitCup     Unit = "cup"
	UnitSlice   Unit = "slice"
	UnitBowl    Unit = "bowl"
	UnitTbsp    Unit = "tbsp"
	UnitCount   Unit = "count"
	UnitServing Unit = "serving"
)

// unitFactors maps each unit to its multiple of a 100 g portion
var unitFactors = map[Unit]float64{
	UnitCup:     1.5,
	UnitSlice:   0.3,
	UnitBowl:    2.0,
	UnitTbsp:    0.15,
	UnitCount:   1.0,
	UnitServing: 1.0,
}

// Factor returns the portion multiplier for the unit, or 0 for an unknown unit
func (u Unit) Factor() float64 {
	return unitFactors[u]
}

// Valid reports whether u is one of the known units
func (u Unit) Valid() bool {
	_, ok := unitFactors[u]
	return ok
}

// FoodMention is one food found in the input text
type FoodMention struct {
	Food       string  `json:"food"`
	Quantity   float64 `json:"quantity"`
	Unit       Unit    `json:"unit"`
	SourceText string  `json:"sourceText"`
}

// UnresolvedFragment is a piece of input that matched no reference food
type UnresolvedFragment struct {
	Text string `json:"text"`
}

// Lexicon holds the word lists used to segment input and normalize fragments
type Lexicon struct {
	Modifiers  []string `yaml:"modifiers" json:"modifiers"`
	Connectors []string `yaml:"connectors" json:"connectors"`
	MealLabels []string `yaml:"meal_labels" json:"mealLabels"`
}

// DefaultLexicon returns the built-in word lists
func DefaultLexicon() Lexicon {
	return Lexicon{
		Modifiers: []string{
			"with", "and", "of",
			"small", "large", "medium",
			"boiled", "fried", "grilled", "cooked", "raw", "baked", "steamed",
		},
		Connectors: []string{"with", "and"},
		MealLabels: []string{"breakfast", "lunch", "dinner", "snack", "morning", "afternoon", "evening"},
	}
}
