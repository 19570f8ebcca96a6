package usecase

import (
	"fmt"
	"strings"

	"github.com/sanskarmk/NutritionTracker/internal/domain"
)

// ResolveRecipeNutrition computes the nutrition of a recipe scaled by
// servingMultiplier (requested servings / recipe servings).
//
// Each ingredient contributes nutritionPer100 * amount/100 * servingMultiplier.
// Millilitres count as grams. Ingredients whose product index no longer
// resolves contribute nothing.
func ResolveRecipeNutrition(recipe domain.Recipe, catalog []domain.Product, servingMultiplier float64) domain.NutrientMap {
	nutrition := domain.NutrientMap{}

	for _, ingredient := range recipe.Ingredients {
		product, ok := productAt(catalog, ingredient.ProductIndex)
		if !ok || product.NutritionPer100 == nil {
			continue
		}

		multiplier := (ingredient.Amount / 100) * servingMultiplier
		for key, per100 := range product.NutritionPer100 {
			nutrition[key] += per100 * multiplier
		}
	}

	return nutrition
}

// BuildRecipe validates builder input and resolves each ingredient amount to
// grams. A "servings" quantity becomes quantity * product serving size.
func BuildRecipe(input domain.RecipeInput, catalog []domain.Product) (domain.Recipe, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.Recipe{}, fmt.Errorf("%w: please enter a recipe name", domain.ErrInvalidRecipe)
	}
	if len(input.Ingredients) == 0 {
		return domain.Recipe{}, fmt.Errorf("%w: please add at least one ingredient", domain.ErrInvalidRecipe)
	}
	if input.Servings <= 0 {
		return domain.Recipe{}, fmt.Errorf("%w: please enter a valid number of servings", domain.ErrInvalidRecipe)
	}

	ingredients := make([]domain.Ingredient, 0, len(input.Ingredients))
	for i, line := range input.Ingredients {
		product, ok := productAt(catalog, line.ProductIndex)
		if !ok {
			return domain.Recipe{}, fmt.Errorf("%w: ingredient %d: %v", domain.ErrInvalidRecipe, i+1, domain.ErrProductNotFound)
		}
		if !(line.Quantity > 0) {
			return domain.Recipe{}, fmt.Errorf("%w: ingredient %d: %v", domain.ErrInvalidRecipe, i+1, domain.ErrInvalidQuantity)
		}

		unit := line.Unit
		if unit == "" {
			unit = domain.IngredientUnitGram
		}

		amount := line.Quantity
		switch unit {
		case domain.IngredientUnitGram, domain.IngredientUnitMilliliter:
		case domain.IngredientUnitServings:
			amount = line.Quantity * product.ServingSize
		default:
			return domain.Recipe{}, fmt.Errorf("%w: ingredient %d: unknown unit %q", domain.ErrInvalidRecipe, i+1, unit)
		}

		ingredients = append(ingredients, domain.Ingredient{
			ProductIndex: line.ProductIndex,
			Amount:       amount,
			Quantity:     line.Quantity,
			Unit:         unit,
		})
	}

	return domain.Recipe{
		Name:        name,
		Servings:    input.Servings,
		Ingredients: ingredients,
	}, nil
}

func productAt(catalog []domain.Product, index int) (domain.Product, bool) {
	if index < 0 || index >= len(catalog) {
		return domain.Product{}, false
	}
	return catalog[index], true
}
