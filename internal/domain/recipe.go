package domain

// Ingredient units accepted by the recipe builder
const (
	IngredientUnitGram       = "g"
	IngredientUnitMilliliter = "ml"
	IngredientUnitServings   = "servings"
)

// Ingredient references a catalog product by index. Amount is already
// resolved to grams (or millilitres); Quantity and Unit are what the user typed.
type Ingredient struct {
	ProductIndex int     `json:"productIndex"`
	Amount       float64 `json:"amount"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
}

// Recipe is a named list of ingredients yielding Servings portions
type Recipe struct {
	Name        string       `json:"name"`
	Servings    int          `json:"servings"`
	Ingredients []Ingredient `json:"ingredients"`
}

// IngredientInput is one line of the recipe builder
type IngredientInput struct {
	ProductIndex int     `json:"productIndex"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
}

// RecipeInput is the recipe builder payload
type RecipeInput struct {
	Name        string            `json:"name"`
	Servings    int               `json:"servings"`
	Ingredients []IngredientInput `json:"ingredients"`
}
