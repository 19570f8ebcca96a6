package usecase

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanskarmk/NutritionTracker/internal/domain"
)

var fixedNow = time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func testRecipes() []domain.Recipe {
	return []domain.Recipe{{
		Name:        "Yogurt Bowl",
		Servings:    2,
		Ingredients: []domain.Ingredient{{ProductIndex: 0, Amount: 200, Quantity: 200, Unit: "g"}},
	}}
}

func TestSelection_AddProductNativeUnit(t *testing.T) {
	selection := NewSelection(fixedClock)

	entry, err := selection.AddProduct(testCatalog(), AddProductInput{ProductIndex: 0, Quantity: 150, MealTime: domain.MealLunch})
	require.NoError(t, err)

	assert.Equal(t, 150.0, entry.Amount)
	assert.Equal(t, domain.NutrientMap{domain.KeyEnergyKcal: 300, domain.KeyProteinG: 15}, entry.Nutrition)
	assert.Equal(t, domain.CategoryPackaged, entry.Category)
	assert.Equal(t, "g", entry.DisplayUnit)
	assert.Equal(t, "Epigamia", entry.DisplayBrand)
	assert.Equal(t, "packaged-lunch-1710059400000", entry.ID)
}

func TestSelection_AddProductServings(t *testing.T) {
	selection := NewSelection(fixedClock)

	entry, err := selection.AddProduct(testCatalog(), AddProductInput{ProductIndex: 2, Quantity: 2, Unit: "servings"})
	require.NoError(t, err)

	assert.Equal(t, 236.0, entry.Amount)
	assert.Equal(t, 2.0, entry.DisplayAmount)
	assert.Equal(t, "servings", entry.DisplayUnit)
	assert.Equal(t, domain.MealBreakfast, entry.MealTime, "meal time defaults to breakfast")
	assert.Equal(t, domain.CategoryRaw, entry.Category)
	assert.Equal(t, "Fresh", entry.DisplayBrand)
}

func TestSelection_AddProductRejectsBadQuantity(t *testing.T) {
	selection := NewSelection(fixedClock)

	for _, q := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := selection.AddProduct(testCatalog(), AddProductInput{ProductIndex: 0, Quantity: q})
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity, "quantity %v", q)
	}
	assert.Equal(t, 0, selection.Len(), "rejected adds leave the selection untouched")

	_, err := selection.AddProduct(testCatalog(), AddProductInput{ProductIndex: 5, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestSelection_UniqueIDsWithinSameMillisecond(t *testing.T) {
	selection := NewSelection(fixedClock)

	first, err := selection.AddProduct(testCatalog(), AddProductInput{ProductIndex: 0, Quantity: 1})
	require.NoError(t, err)
	second, err := selection.AddProduct(testCatalog(), AddProductInput{ProductIndex: 0, Quantity: 1})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, strings.HasPrefix(second.ID, first.ID))
}

func TestSelection_AddRecipeFreezesNutrition(t *testing.T) {
	catalog := testCatalog()
	selection := NewSelection(fixedClock)

	entry, err := selection.AddRecipe(testRecipes(), catalog, AddRecipeInput{RecipeIndex: 0, Servings: 1, MealTime: domain.MealDinner})
	require.NoError(t, err)

	assert.Equal(t, domain.NutrientMap{domain.KeyEnergyKcal: 200, domain.KeyProteinG: 10}, entry.Nutrition)
	assert.Equal(t, "Recipe (1 serving)", entry.DisplayBrand)
	assert.Equal(t, domain.CategoryRecipe, entry.Category)

	// later catalog edits do not reach the entry
	catalog[0].NutritionPer100[domain.KeyEnergyKcal] = 1000
	totals := ComputeTotals(selection.Entries())
	assert.Equal(t, 200.0, totals.Totals[domain.KeyEnergyKcal])

	plural, err := selection.AddRecipe(testRecipes(), catalog, AddRecipeInput{RecipeIndex: 0, Servings: 2.5})
	require.NoError(t, err)
	assert.Equal(t, "Recipe (2.5 servings)", plural.DisplayBrand)

	_, err = selection.AddRecipe(testRecipes(), catalog, AddRecipeInput{RecipeIndex: 3, Servings: 1})
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestSelectionEntry_JSONKeepsIndexZero(t *testing.T) {
	selection := NewSelection(fixedClock)

	product, err := selection.AddProduct(testCatalog(), AddProductInput{ProductIndex: 0, Quantity: 100})
	require.NoError(t, err)
	recipe, err := selection.AddRecipe(testRecipes(), testCatalog(), AddRecipeInput{RecipeIndex: 0, Servings: 1})
	require.NoError(t, err)

	var decoded map[string]interface{}
	data, err := json.Marshal(product)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 0.0, decoded["productIndex"])
	assert.NotContains(t, decoded, "recipeIndex")

	decoded = nil
	data, err = json.Marshal(recipe)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 0.0, decoded["recipeIndex"])
	assert.NotContains(t, decoded, "productIndex")
}

func TestSelection_Remove(t *testing.T) {
	selection := NewSelection(fixedClock)
	entry, _ := selection.AddProduct(testCatalog(), AddProductInput{ProductIndex: 0, Quantity: 1})

	require.NoError(t, selection.Remove(entry.ID))
	assert.Equal(t, 0, selection.Len())
	assert.ErrorIs(t, selection.Remove(entry.ID), domain.ErrEntryNotFound)
}

func TestComputeTotals(t *testing.T) {
	selection := NewSelection(fixedClock)
	_, _ = selection.AddProduct(testCatalog(), AddProductInput{ProductIndex: 0, Quantity: 100})
	_, _ = selection.AddProduct(testCatalog(), AddProductInput{ProductIndex: 1, Quantity: 50, MealTime: domain.MealLunch})
	_, _ = selection.AddRecipe(testRecipes(), testCatalog(), AddRecipeInput{RecipeIndex: 0, Servings: 2})

	entries := selection.Entries()
	totals := ComputeTotals(entries)

	assert.InDelta(t, 200+30+400, totals.Totals[domain.KeyEnergyKcal], 1e-9)
	assert.InDelta(t, 10+20, totals.Totals[domain.KeyProteinG], 1e-9)
	assert.InDelta(t, 60, totals.Totals[domain.KeyCalciumMg], 1e-9, "keys from any entry survive")
	require.Len(t, totals.PerItem, 3)
	assert.Equal(t, entries[1].ID, totals.PerItem[1].ID)
	assert.Equal(t, 2.0, totals.PerItem[2].Amount, "recipe breakdown reports servings")

	// computing totals does not touch the entries
	assert.Equal(t, entries, selection.Entries())
}

func TestComputeTotals_CombinedCarbs(t *testing.T) {
	tests := []struct {
		name  string
		per   domain.NutrientMap
		carbs float64
	}{
		{name: "total key only", per: domain.NutrientMap{domain.KeyTotalCarbohydratesG: 30}, carbs: 30},
		{name: "legacy key only", per: domain.NutrientMap{domain.KeyCarbohydratesG: 12}, carbs: 12},
		{name: "both present uses first", per: domain.NutrientMap{domain.KeyTotalCarbohydratesG: 30, domain.KeyCarbohydratesG: 12}, carbs: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := []domain.Product{{Name: "x", ServingSize: 100, Unit: domain.UnitGram, NutritionPer100: tt.per}}
			selection := NewSelection(fixedClock)
			_, err := selection.AddProduct(catalog, AddProductInput{ProductIndex: 0, Quantity: 100})
			require.NoError(t, err)

			assert.Equal(t, tt.carbs, ComputeTotals(selection.Entries()).CarbsCombined)
		})
	}
}

func TestGroupByMealTime(t *testing.T) {
	entries := []domain.SelectionEntry{
		{ID: "a", MealTime: domain.MealDinner},
		{ID: "b", MealTime: domain.MealBreakfast},
		{ID: "c", MealTime: "midnight"},
		{ID: "d", MealTime: domain.MealDinner},
	}

	groups := GroupByMealTime(entries)

	require.Len(t, groups, 3)
	assert.Equal(t, domain.MealBreakfast, groups[0].MealTime)
	assert.Equal(t, domain.MealDinner, groups[1].MealTime)
	assert.Equal(t, []string{"a", "d"}, []string{groups[1].Entries[0].ID, groups[1].Entries[1].ID})
	assert.Equal(t, domain.MealOther, groups[2].MealTime)
	assert.Equal(t, "Other", groups[2].Label)
}
