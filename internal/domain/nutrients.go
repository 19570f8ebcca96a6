package domain

import "sort"

// Well-known nutrient keys. The key set of a NutrientMap is open; these are
// only the ones the engine reads by name.
const (
	KeyEnergyKcal          = "energy_kcal"
	KeyProteinG            = "protein_g"
	KeyCarbohydratesG      = "carbohydrates_g"
	KeyTotalCarbohydratesG = "total_carbohydrates_g"
	KeyFatG                = "fat_g"
	KeyTotalFatG           = "total_fat_g"
	KeyFiberG              = "fiber_g"
	KeySugarG              = "sugar_g"
	KeySodiumMg            = "sodium_mg"
	KeyCalciumMg           = "calcium_mg"
	KeyIronMg              = "iron_mg"
	KeyVitaminAMcg         = "vitamin_a_mcg"
	KeyVitaminCMg          = "vitamin_c_mg"
)

// FixedNutrientKeys is the closed key set summed by the history import path.
var FixedNutrientKeys = []string{
	KeyEnergyKcal,
	KeyProteinG,
	KeyCarbohydratesG,
	KeyFatG,
	KeyFiberG,
	KeySugarG,
	KeySodiumMg,
	KeyCalciumMg,
	KeyIronMg,
	KeyVitaminAMcg,
	KeyVitaminCMg,
}

// NutrientMap maps a nutrient key to a quantity. A missing key reads as zero.
type NutrientMap map[string]float64

// Get returns the value for key, or zero when absent
func (m NutrientMap) Get(key string) float64 {
	return m[key]
}

// Clone returns an independent copy
func (m NutrientMap) Clone() NutrientMap {
	out := make(NutrientMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Scale returns a new map with every value multiplied by factor
func (m NutrientMap) Scale(factor float64) NutrientMap {
	out := make(NutrientMap, len(m))
	for k, v := range m {
		out[k] = v * factor
	}
	return out
}

// Accumulate adds every key of other into m
func (m NutrientMap) Accumulate(other NutrientMap) {
	for k, v := range other {
		m[k] += v
	}
}

// Keys returns the keys in sorted order
func (m NutrientMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AggregateOpenKeys sums maps elementwise over the union of their keys.
// No key present in any input is dropped.
func AggregateOpenKeys(maps ...NutrientMap) NutrientMap {
	total := NutrientMap{}
	for _, m := range maps {
		total.Accumulate(m)
	}
	return total
}

// AggregateFixedKeys sums only FixedNutrientKeys. Every fixed key is present in
// the result, zero when no input carries it; all other keys are dropped.
func AggregateFixedKeys(maps ...NutrientMap) NutrientMap {
	total := make(NutrientMap, len(FixedNutrientKeys))
	for _, key := range FixedNutrientKeys {
		total[key] = 0
	}
	for _, m := range maps {
		for _, key := range FixedNutrientKeys {
			total[key] += m[key]
		}
	}
	return total
}

// CombinedCarbs reads carbohydrates from the two legacy keys. The first key
// with a non-zero value wins; the two are never added together.
func CombinedCarbs(m NutrientMap) float64 {
	if v := m[KeyTotalCarbohydratesG]; v != 0 {
		return v
	}
	return m[KeyCarbohydratesG]
}

// CombinedFat reads fat from total_fat_g, falling back to fat_g
func CombinedFat(m NutrientMap) float64 {
	if v := m[KeyTotalFatG]; v != 0 {
		return v
	}
	return m[KeyFatG]
}

// MacroSummary is the four-macro headline view of a nutrient map
type MacroSummary struct {
	EnergyKcal float64 `json:"energyKcal"`
	ProteinG   float64 `json:"proteinG"`
	CarbsG     float64 `json:"carbsG"`
	FatG       float64 `json:"fatG"`
}

// SummarizeMacros builds a MacroSummary using the combined carbs and fat rules
func SummarizeMacros(m NutrientMap) MacroSummary {
	return MacroSummary{
		EnergyKcal: m[KeyEnergyKcal],
		ProteinG:   m[KeyProteinG],
		CarbsG:     CombinedCarbs(m),
		FatG:       CombinedFat(m),
	}
}
