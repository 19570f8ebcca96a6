package usecase

import (
	"regexp"
	"strings"

	"github.com/sanskarmk/NutritionTracker/internal/domain"
)

var multipleSpacesRegex = regexp.MustCompile(`\s+`)

// ProductMatch is a catalog product together with its catalog index
type ProductMatch struct {
	Index   int            `json:"index"`
	Product domain.Product `json:"product"`
}

// RecipeMatch is a recipe together with its collection index
type RecipeMatch struct {
	Index  int           `json:"index"`
	Recipe domain.Recipe `json:"recipe"`
}

// normalizeSearchTerm lowercases, trims and collapses whitespace
func normalizeSearchTerm(term string) string {
	term = strings.ToLower(term)
	term = multipleSpacesRegex.ReplaceAllString(term, " ")
	return strings.TrimSpace(term)
}

// FilterProducts returns catalog products in the category whose name or brand
// contains term. An empty category matches both raw and packaged products.
func FilterProducts(catalog []domain.Product, category domain.Category, term string) []ProductMatch {
	term = normalizeSearchTerm(term)
	matches := make([]ProductMatch, 0)

	for i, product := range catalog {
		switch category {
		case domain.CategoryRaw:
			if !product.IsRaw() {
				continue
			}
		case domain.CategoryPackaged:
			if product.IsRaw() {
				continue
			}
		}

		if term != "" &&
			!strings.Contains(strings.ToLower(product.Name), term) &&
			!strings.Contains(strings.ToLower(product.Brand), term) {
			continue
		}
		matches = append(matches, ProductMatch{Index: i, Product: product})
	}

	return matches
}

// FilterRecipes returns recipes whose name contains term
func FilterRecipes(recipes []domain.Recipe, term string) []RecipeMatch {
	term = normalizeSearchTerm(term)
	matches := make([]RecipeMatch, 0)
	for i, recipe := range recipes {
		if term != "" && !strings.Contains(strings.ToLower(recipe.Name), term) {
			continue
		}
		matches = append(matches, RecipeMatch{Index: i, Recipe: recipe})
	}
	return matches
}
