package usecase

import (
	"fmt"
	"math"
	"time"

	"github.com/sanskarmk/NutritionTracker/internal/domain"
)

// AddProductInput adds a catalog product to the selection. Unit is
// "servings" or the product's native unit ("custom" or empty also mean native).
type AddProductInput struct {
	ProductIndex int             `json:"productIndex"`
	Quantity     float64         `json:"quantity"`
	Unit         string          `json:"unit"`
	MealTime     domain.MealTime `json:"mealTime"`
}

// AddRecipeInput adds Servings portions of a recipe to the selection
type AddRecipeInput struct {
	RecipeIndex int             `json:"recipeIndex"`
	Servings    float64         `json:"servings"`
	MealTime    domain.MealTime `json:"mealTime"`
}

// Selection is the in-progress set of foods, kept in insertion order
type Selection struct {
	entries []domain.SelectionEntry
	now     func() time.Time
}

// NewSelection creates an empty selection. now stamps entry ids.
func NewSelection(now func() time.Time) *Selection {
	if now == nil {
		now = time.Now
	}
	return &Selection{
		entries: make([]domain.SelectionEntry, 0),
		now:     now,
	}
}

// Entries returns a copy of the entries
func (s *Selection) Entries() []domain.SelectionEntry {
	out := make([]domain.SelectionEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len is the number of entries
func (s *Selection) Len() int {
	return len(s.entries)
}

// Clear drops every entry
func (s *Selection) Clear() {
	s.entries = make([]domain.SelectionEntry, 0)
}

// AddProduct resolves the consumed amount and appends a product entry
func (s *Selection) AddProduct(catalog []domain.Product, in AddProductInput) (domain.SelectionEntry, error) {
	product, ok := productAt(catalog, in.ProductIndex)
	if !ok {
		return domain.SelectionEntry{}, fmt.Errorf("%w: index %d", domain.ErrProductNotFound, in.ProductIndex)
	}
	if err := validateQuantity(in.Quantity); err != nil {
		return domain.SelectionEntry{}, err
	}
	mealTime, err := resolveMealTime(in.MealTime)
	if err != nil {
		return domain.SelectionEntry{}, err
	}

	amount := in.Quantity
	displayUnit := string(product.Unit)
	switch in.Unit {
	case domain.SelectionUnitServings:
		amount = in.Quantity * product.ServingSize
		displayUnit = domain.SelectionUnitServings
	case "", domain.SelectionUnitNative, string(product.Unit):
	default:
		return domain.SelectionEntry{}, fmt.Errorf("%w: unknown unit %q", domain.ErrInvalidRequest, in.Unit)
	}

	category := domain.CategoryPackaged
	if product.IsRaw() {
		category = domain.CategoryRaw
	}

	productIndex := in.ProductIndex
	snapshot := product
	snapshot.NutritionPer100 = product.NutritionPer100.Clone()

	entry := domain.SelectionEntry{
		ID:            s.nextID(category, mealTime),
		Kind:          domain.EntryProduct,
		Category:      category,
		MealTime:      mealTime,
		ProductIndex:  &productIndex,
		Product:       &snapshot,
		Amount:        amount,
		DisplayAmount: in.Quantity,
		DisplayUnit:   displayUnit,
		Nutrition:     snapshot.NutritionPer100.Scale(amount / 100),
		DisplayName:   product.Name,
		DisplayBrand:  product.DisplayBrand(),
		CreatedAt:     s.now(),
	}
	s.entries = append(s.entries, entry)
	return entry, nil
}

// AddRecipe resolves recipe nutrition now and freezes it onto the entry
func (s *Selection) AddRecipe(recipes []domain.Recipe, catalog []domain.Product, in AddRecipeInput) (domain.SelectionEntry, error) {
	if in.RecipeIndex < 0 || in.RecipeIndex >= len(recipes) {
		return domain.SelectionEntry{}, fmt.Errorf("%w: index %d", domain.ErrRecipeNotFound, in.RecipeIndex)
	}
	recipeIndex := in.RecipeIndex
	recipe := recipes[recipeIndex]
	if err := validateQuantity(in.Servings); err != nil {
		return domain.SelectionEntry{}, err
	}
	mealTime, err := resolveMealTime(in.MealTime)
	if err != nil {
		return domain.SelectionEntry{}, err
	}

	servingMultiplier := in.Servings
	if recipe.Servings > 0 {
		servingMultiplier = in.Servings / float64(recipe.Servings)
	}

	plural := ""
	if in.Servings > 1 {
		plural = "s"
	}

	entry := domain.SelectionEntry{
		ID:            s.nextID(domain.CategoryRecipe, mealTime),
		Kind:          domain.EntryRecipe,
		Category:      domain.CategoryRecipe,
		MealTime:      mealTime,
		RecipeIndex:   &recipeIndex,
		RecipeName:    recipe.Name,
		Servings:      in.Servings,
		DisplayAmount: in.Servings,
		DisplayUnit:   domain.SelectionUnitServings,
		Nutrition:     ResolveRecipeNutrition(recipe, catalog, servingMultiplier),
		DisplayName:   recipe.Name,
		DisplayBrand:  fmt.Sprintf("Recipe (%s serving%s)", formatNumber(in.Servings), plural),
		CreatedAt:     s.now(),
	}
	s.entries = append(s.entries, entry)
	return entry, nil
}

// Remove deletes the entry with the given id
func (s *Selection) Remove(id string) error {
	for i, entry := range s.entries {
		if entry.ID == id {
			s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrEntryNotFound, id)
}

// nextID builds "{category}-{mealTime}-{unix ms}", suffixed when two entries
// land on the same millisecond.
func (s *Selection) nextID(category domain.Category, mealTime domain.MealTime) string {
	base := fmt.Sprintf("%s-%s-%d", category, mealTime, s.now().UnixMilli())
	id := base
	for n := 1; s.has(id); n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return id
}

func (s *Selection) has(id string) bool {
	for _, entry := range s.entries {
		if entry.ID == id {
			return true
		}
	}
	return false
}

// ComputeTotals sums every entry over the union of nutrient keys and
// returns the per-item breakdown in selection order. Entries are not modified.
func ComputeTotals(entries []domain.SelectionEntry) domain.SelectionTotals {
	totals := domain.NutrientMap{}
	perItem := make([]domain.ItemBreakdown, 0, len(entries))

	for _, entry := range entries {
		nutrition := entry.ResolvedNutrition()
		totals.Accumulate(nutrition)

		amount := entry.Amount
		if entry.Kind == domain.EntryRecipe {
			amount = entry.Servings
		}
		displayUnit := entry.DisplayUnit
		if displayUnit == "" {
			displayUnit = domain.SelectionUnitServings
		}

		perItem = append(perItem, domain.ItemBreakdown{
			ID:            entry.ID,
			Name:          entry.DisplayName,
			Brand:         entry.DisplayBrand,
			Kind:          entry.Kind,
			Category:      entry.Category,
			MealTime:      entry.MealTime,
			Amount:        amount,
			DisplayAmount: entry.DisplayAmount,
			DisplayUnit:   displayUnit,
			Nutrition:     nutrition,
		})
	}

	return domain.SelectionTotals{
		Totals:        totals,
		PerItem:       perItem,
		CarbsCombined: domain.CombinedCarbs(totals),
	}
}

// GroupByMealTime buckets entries in display order, skipping empty groups
func GroupByMealTime(entries []domain.SelectionEntry) []domain.MealGroup {
	buckets := make(map[domain.MealTime][]domain.SelectionEntry, len(domain.MealTimes))
	for _, entry := range entries {
		group := entry.MealTime.Group()
		buckets[group] = append(buckets[group], entry)
	}

	groups := make([]domain.MealGroup, 0, len(buckets))
	for _, mealTime := range domain.MealTimes {
		if len(buckets[mealTime]) == 0 {
			continue
		}
		groups = append(groups, domain.MealGroup{
			MealTime: mealTime,
			Label:    mealTime.Label(),
			Entries:  buckets[mealTime],
		})
	}
	return groups
}

func validateQuantity(quantity float64) error {
	if !(quantity > 0) || math.IsInf(quantity, 0) {
		return domain.ErrInvalidQuantity
	}
	return nil
}

// resolveMealTime defaults an empty meal time to breakfast
func resolveMealTime(mealTime domain.MealTime) (domain.MealTime, error) {
	if mealTime == "" {
		return domain.MealBreakfast, nil
	}
	parsed, ok := domain.ParseMealTime(string(mealTime))
	if !ok {
		return "", fmt.Errorf("%w: unknown meal time %q", domain.ErrInvalidRequest, mealTime)
	}
	return parsed, nil
}
