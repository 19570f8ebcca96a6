package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanskarmk/NutritionTracker/internal/domain"
)

func testCatalog() []domain.Product {
	return []domain.Product{
		{
			Name:            "Greek Yogurt",
			Brand:           "Epigamia",
			ServingSize:     100,
			Unit:            domain.UnitGram,
			NutritionPer100: domain.NutrientMap{domain.KeyEnergyKcal: 200, domain.KeyProteinG: 10},
		},
		{
			Name:            "Milk",
			Brand:           "Amul",
			ServingSize:     250,
			Unit:            domain.UnitMilliliter,
			NutritionPer100: domain.NutrientMap{domain.KeyEnergyKcal: 60, domain.KeyCalciumMg: 120},
		},
		{
			Name:            "Banana",
			Brand:           "Fresh",
			ServingSize:     118,
			Unit:            domain.UnitGram,
			NutritionPer100: domain.NutrientMap{domain.KeyEnergyKcal: 89, domain.KeyCarbohydratesG: 23},
		},
	}
}

func TestResolveRecipeNutrition(t *testing.T) {
	recipe := domain.Recipe{
		Name:        "Yogurt",
		Servings:    2,
		Ingredients: []domain.Ingredient{{ProductIndex: 0, Amount: 200, Quantity: 200, Unit: "g"}},
	}

	got := ResolveRecipeNutrition(recipe, testCatalog(), 1.0/2.0)

	assert.Equal(t, domain.NutrientMap{domain.KeyEnergyKcal: 200, domain.KeyProteinG: 10}, got)
}

func TestResolveRecipeNutrition_KeyUnionAndMillilitres(t *testing.T) {
	recipe := domain.Recipe{
		Name:     "Smoothie",
		Servings: 1,
		Ingredients: []domain.Ingredient{
			{ProductIndex: 1, Amount: 200, Unit: "ml"},
			{ProductIndex: 2, Amount: 100, Unit: "g"},
		},
	}

	got := ResolveRecipeNutrition(recipe, testCatalog(), 1)

	assert.InDelta(t, 120+89, got[domain.KeyEnergyKcal], 1e-9)
	assert.InDelta(t, 240, got[domain.KeyCalciumMg], 1e-9)
	assert.InDelta(t, 23, got[domain.KeyCarbohydratesG], 1e-9)
}

func TestResolveRecipeNutrition_ScalesLinearly(t *testing.T) {
	recipe := domain.Recipe{
		Name:     "Bowl",
		Servings: 3,
		Ingredients: []domain.Ingredient{
			{ProductIndex: 0, Amount: 150},
			{ProductIndex: 2, Amount: 90},
		},
	}

	for _, m := range []float64{0.25, 1, 1.7} {
		single := ResolveRecipeNutrition(recipe, testCatalog(), m)
		double := ResolveRecipeNutrition(recipe, testCatalog(), 2*m)
		for key, value := range single {
			assert.InDelta(t, 2*value, double[key], 1e-9, key)
		}
	}
}

func TestResolveRecipeNutrition_DanglingReference(t *testing.T) {
	recipe := domain.Recipe{
		Name:     "Partial",
		Servings: 1,
		Ingredients: []domain.Ingredient{
			{ProductIndex: 0, Amount: 100},
			{ProductIndex: 99, Amount: 500},
			{ProductIndex: -1, Amount: 500},
		},
	}

	got := ResolveRecipeNutrition(recipe, testCatalog(), 1)

	assert.Equal(t, domain.NutrientMap{domain.KeyEnergyKcal: 200, domain.KeyProteinG: 10}, got)
}

func TestBuildRecipe(t *testing.T) {
	t.Run("resolves servings to grams", func(t *testing.T) {
		recipe, err := BuildRecipe(domain.RecipeInput{
			Name:     "  Banana Milk  ",
			Servings: 2,
			Ingredients: []domain.IngredientInput{
				{ProductIndex: 2, Quantity: 2, Unit: "servings"},
				{ProductIndex: 1, Quantity: 300, Unit: "ml"},
				{ProductIndex: 0, Quantity: 50},
			},
		}, testCatalog())
		require.NoError(t, err)

		assert.Equal(t, "Banana Milk", recipe.Name)
		require.Len(t, recipe.Ingredients, 3)
		assert.Equal(t, 236.0, recipe.Ingredients[0].Amount)
		assert.Equal(t, 300.0, recipe.Ingredients[1].Amount)
		assert.Equal(t, "g", recipe.Ingredients[2].Unit)
	})

	tests := []struct {
		name  string
		input domain.RecipeInput
	}{
		{name: "empty name", input: domain.RecipeInput{Name: " ", Servings: 1, Ingredients: []domain.IngredientInput{{Quantity: 1}}}},
		{name: "no ingredients", input: domain.RecipeInput{Name: "x", Servings: 1}},
		{name: "zero servings", input: domain.RecipeInput{Name: "x", Servings: 0, Ingredients: []domain.IngredientInput{{Quantity: 1}}}},
		{name: "zero quantity", input: domain.RecipeInput{Name: "x", Servings: 1, Ingredients: []domain.IngredientInput{{Quantity: 0}}}},
		{name: "unknown product", input: domain.RecipeInput{Name: "x", Servings: 1, Ingredients: []domain.IngredientInput{{ProductIndex: 7, Quantity: 1}}}},
		{name: "unknown unit", input: domain.RecipeInput{Name: "x", Servings: 1, Ingredients: []domain.IngredientInput{{Quantity: 1, Unit: "cup"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildRecipe(tt.input, testCatalog())
			assert.ErrorIs(t, err, domain.ErrInvalidRecipe)
		})
	}
}
