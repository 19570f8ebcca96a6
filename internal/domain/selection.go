package domain

import "time"

// MealTime buckets an entry within a day
type MealTime string

const (
	MealBreakfast     MealTime = "breakfast"
	MealLunch         MealTime = "lunch"
	MealEveningSnacks MealTime = "evening_snacks"
	MealDinner        MealTime = "dinner"
	MealOther         MealTime = "other"
)

// MealTimes lists meal times in display order
var MealTimes = []MealTime{MealBreakfast, MealLunch, MealEveningSnacks, MealDinner, MealOther}

// ParseMealTime validates a meal time name
func ParseMealTime(s string) (MealTime, bool) {
	for _, mt := range MealTimes {
		if string(mt) == s {
			return mt, true
		}
	}
	return "", false
}

// Group returns the display bucket for the meal time; unknown values group as other
func (mt MealTime) Group() MealTime {
	if _, ok := ParseMealTime(string(mt)); ok {
		return mt
	}
	return MealOther
}

// Label is the human readable meal time name
func (mt MealTime) Label() string {
	switch mt.Group() {
	case MealBreakfast:
		return "Breakfast"
	case MealLunch:
		return "Lunch"
	case MealEveningSnacks:
		return "Evening Snacks"
	case MealDinner:
		return "Dinner"
	default:
		return "Other"
	}
}

// Category is the catalog tab an item was picked from
type Category string

const (
	CategoryRaw      Category = "raw"
	CategoryPackaged Category = "packaged"
	CategoryRecipe   Category = "recipe"
)

// ParseCategory validates a category name
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryRaw, CategoryPackaged, CategoryRecipe:
		return Category(s), true
	}
	return "", false
}

// EntryKind distinguishes product and recipe selection entries
type EntryKind string

const (
	EntryProduct EntryKind = "product"
	EntryRecipe  EntryKind = "recipe"
)

// Unit choices when adding a product to the selection
const (
	SelectionUnitNative   = "custom"
	SelectionUnitServings = "servings"
)

// SelectionEntry is one item of the in-progress selection ("cart").
//
// Product entries keep a copy of the product and the consumed Amount in its
// native unit. Only the index matching Kind is set, so index 0 still
// serializes. Recipe entries keep Nutrition frozen at add time; later catalog
// edits never change it.
type SelectionEntry struct {
	ID       string    `json:"id"`
	Kind     EntryKind `json:"type"`
	Category Category  `json:"category"`
	MealTime MealTime  `json:"mealTime"`

	ProductIndex  *int     `json:"productIndex,omitempty"`
	Product       *Product `json:"product,omitempty"`
	Amount        float64  `json:"amount,omitempty"`
	DisplayAmount float64  `json:"displayAmount"`
	DisplayUnit   string   `json:"displayUnit"`

	RecipeIndex *int    `json:"recipeIndex,omitempty"`
	RecipeName  string  `json:"recipeName,omitempty"`
	Servings    float64 `json:"servings,omitempty"`

	Nutrition    NutrientMap `json:"nutrition"`
	DisplayName  string      `json:"displayName"`
	DisplayBrand string      `json:"displayBrand"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// ResolvedNutrition is the nutrition this entry contributes. Product entries
// are recomputed from the product copy; recipe entries return the snapshot.
func (e SelectionEntry) ResolvedNutrition() NutrientMap {
	if e.Kind == EntryProduct && e.Product != nil {
		return e.Product.NutritionPer100.Scale(e.Amount / 100)
	}
	return e.Nutrition.Clone()
}

// ItemBreakdown is one row of the per-item nutrition breakdown
type ItemBreakdown struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Brand         string      `json:"brand"`
	Kind          EntryKind   `json:"type"`
	Category      Category    `json:"category"`
	MealTime      MealTime    `json:"mealTime"`
	Amount        float64     `json:"amount"`
	DisplayAmount float64     `json:"displayAmount"`
	DisplayUnit   string      `json:"displayUnit"`
	Nutrition     NutrientMap `json:"nutrition"`
}

// SelectionTotals is the aggregate of a selection
type SelectionTotals struct {
	Totals        NutrientMap     `json:"totals"`
	PerItem       []ItemBreakdown `json:"perItem"`
	CarbsCombined float64         `json:"carbsCombined"`
}

// MealGroup is a run of selection entries sharing a meal time
type MealGroup struct {
	MealTime MealTime         `json:"mealTime"`
	Label    string           `json:"label"`
	Entries  []SelectionEntry `json:"entries"`
}
