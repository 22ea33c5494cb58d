package skill

// Recipe converts one input item into an output at a crafting station.
type Recipe struct {
	Input         int32
	Output        int32
	Skill         string
	LevelRequired int
	XP            float64
	// Failure is the item produced on a failed attempt (burnt food); 0
	// means the input is simply lost.
	Failure int32
}

// recipesByInput indexes the production recipes by input item id. Item ids
// follow the data catalog in data/yaml/items.yaml.
var recipesByInput = map[int32]Recipe{
	// raw shrimp → cooked shrimp / burnt shrimp
	2001: {Input: 2001, Output: 2002, Skill: Cooking, LevelRequired: 1, XP: 30, Failure: 2003},
	// raw trout → cooked trout / burnt trout
	2004: {Input: 2004, Output: 2005, Skill: Cooking, LevelRequired: 15, XP: 70, Failure: 2006},
	// copper ore → bronze bar
	1001: {Input: 1001, Output: 1101, Skill: Smithing, LevelRequired: 1, XP: 25},
	// iron ore → iron bar
	1002: {Input: 1002, Output: 1102, Skill: Smithing, LevelRequired: 15, XP: 50},
}

// RecipeFor returns the production recipe consuming an input item.
func RecipeFor(itemID int32) (Recipe, bool) {
	r, ok := recipesByInput[itemID]
	return r, ok
}
