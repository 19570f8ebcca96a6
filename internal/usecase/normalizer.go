package usecase

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/sanskarmk/NutritionTracker/internal/domain"
)

// servingSizeRegex extracts "{number}{unit}" from free-form serving size text
var servingSizeRegex = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(g|ml|kg|l)`)

const defaultServingSize = "100g"

// per-100 keys searched in priority order inside nested nutrition objects
var per100Keys = []string{"per_100g", "per_100ml", "per_100"}

const perServeKey = "per_serve"

// Normalize converts a raw catalog record into the canonical Product.
// It never fails: missing or unreadable data degrades to defaults or zero.
func Normalize(raw domain.RawProduct) domain.Product {
	servingSize, unit := parseServingSize(string(raw.ServingSize))

	servingsPerContainer, ok := parseLeadingInt(string(raw.ServingsPerContainer))
	if !ok || servingsPerContainer == 0 {
		servingsPerContainer = 1
	}

	product := domain.Product{
		Name:                 raw.ProductName,
		Brand:                raw.Brand,
		ServingSize:          servingSize,
		Unit:                 unit,
		ServingsPerContainer: servingsPerContainer,
		Ingredients:          strings.Join(raw.Ingredients, ", "),
		Allergens:            normalizeAllergens(raw.Allergens),
		Notes:                raw.Notes,
		NutritionPer100:      domain.NutrientMap{},
	}

	for key, value := range raw.Nutrition {
		switch value.Kind {
		case domain.RawValueNumber:
			product.NutritionPer100[key] = value.Number
		case domain.RawValueNested:
			product.NutritionPer100[key] = nestedPer100(value, servingSize)
		}
	}

	return product
}

// NormalizeAll normalizes every product of a seed document
func NormalizeAll(raws []domain.RawProduct) []domain.Product {
	products := make([]domain.Product, 0, len(raws))
	for _, raw := range raws {
		products = append(products, Normalize(raw))
	}
	return products
}

// ParseRawProduct decodes user-submitted product JSON and checks the
// required fields. Errors wrap domain.ErrInvalidProduct with the parser message.
func ParseRawProduct(text string) (domain.RawProduct, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.RawProduct{}, fmt.Errorf("%w: please enter product JSON", domain.ErrInvalidProduct)
	}

	var raw domain.RawProduct
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return domain.RawProduct{}, fmt.Errorf("%w: invalid JSON: %v", domain.ErrInvalidProduct, err)
	}
	if raw.ProductName == "" {
		return domain.RawProduct{}, fmt.Errorf("%w: missing required field: product_name", domain.ErrInvalidProduct)
	}
	if raw.Nutrition == nil {
		return domain.RawProduct{}, fmt.Errorf("%w: missing required field: nutrition", domain.ErrInvalidProduct)
	}
	return raw, nil
}

// ParseCatalogSeed decodes a {"products": [...]} seed document
func ParseCatalogSeed(data []byte) (domain.CatalogSeed, error) {
	var seed domain.CatalogSeed
	if err := json.Unmarshal(data, &seed); err != nil {
		return domain.CatalogSeed{}, fmt.Errorf("%w: catalog seed: %v", domain.ErrInvalidProduct, err)
	}
	return seed, nil
}

// parseServingSize reads "250ml", "1.5 kg" and the like, defaulting to 100 g
func parseServingSize(text string) (float64, domain.Unit) {
	if text == "" {
		text = defaultServingSize
	}
	match := servingSizeRegex.FindStringSubmatch(text)
	if match == nil {
		return 100, domain.UnitGram
	}
	return floatOrZero(match[1]), domain.Unit(strings.ToLower(match[2]))
}

// nestedPer100 resolves a nested nutrition object to its per-100 value:
// an explicit per-100 key, else per_serve scaled by the serving size, else
// the first numeric value in document order.
func nestedPer100(value domain.RawNutrientValue, servingSize float64) float64 {
	for _, key := range per100Keys {
		if raw, ok := value.Lookup(key); ok {
			return rawToFloat(raw)
		}
	}

	if raw, ok := value.Lookup(perServeKey); ok {
		if servingSize <= 0 {
			return 0
		}
		return rawToFloat(raw) / servingSize * 100
	}

	for _, field := range value.Nested {
		if n, ok := field.Number(); ok {
			return n
		}
	}
	return 0
}

func normalizeAllergens(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	allergens := make([]string, 0, len(raw))
	for _, allergen := range raw {
		allergen = strings.TrimSpace(allergen)
		if allergen == "" {
			continue
		}
		if _, dup := seen[allergen]; dup {
			continue
		}
		seen[allergen] = struct{}{}
		allergens = append(allergens, allergen)
	}
	return allergens
}
