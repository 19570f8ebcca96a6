package usecase

import (
	"fmt"
	"math"
	"time"

	"github.com/sanskarmk/NutritionTracker/internal/domain"
)

const weekLength = 7

// DayCalories is one point of the weekly calorie trend
type DayCalories struct {
	Date     string  `json:"date"`
	Label    string  `json:"label"`
	Calories float64 `json:"calories"`
}

// DailySummary is the headline macro view of one date
type DailySummary struct {
	Date      string              `json:"date"`
	MealCount int                 `json:"mealCount"`
	Macros    domain.MacroSummary `json:"macros"`
}

// CommitSelection appends one simple meal per selection entry to the date's
// log and returns the next history. The input history is not modified.
func CommitSelection(history domain.History, entries []domain.SelectionEntry, date string, at time.Time) (domain.History, error) {
	if _, err := domain.ParseDate(date); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, domain.ErrEmptySelection
	}

	next := shallowCopy(history)
	entry := domain.DailyLogEntry{Date: date, Meals: []domain.MealRecord{}}
	if existing, ok := history[date]; ok {
		entry = existing.Clone()
		entry.Date = date
	}

	for _, selected := range entries {
		meal := domain.NewSimpleMeal(selected.MealTime, selected.DisplayName, selected.DisplayBrand, selected.ResolvedNutrition(), at)
		meal.Category = selected.Category
		meal.Quantity = selected.DisplayAmount
		meal.Unit = selected.DisplayUnit
		entry.Meals = append(entry.Meals, meal)
	}
	entry.TotalNutrition = RecomputeOpenTotals(entry.Meals)

	next[date] = entry
	return next, nil
}

// RemoveMeal deletes the index-th meal among those logged under mealTime on
// date. The index counts only meals with exactly that meal time.
func RemoveMeal(history domain.History, date string, mealTime domain.MealTime, index int) (domain.History, error) {
	existing, ok := history[date]
	if !ok {
		return nil, fmt.Errorf("%w: no log for %s", domain.ErrMealNotFound, date)
	}

	position := -1
	seen := 0
	for i, meal := range existing.Meals {
		if meal.MealTime != mealTime {
			continue
		}
		if seen == index {
			position = i
			break
		}
		seen++
	}
	if index < 0 || position < 0 {
		return nil, fmt.Errorf("%w: %s %s #%d", domain.ErrMealNotFound, date, mealTime, index)
	}

	entry := existing.Clone()
	entry.Date = date
	entry.Meals = append(entry.Meals[:position:position], entry.Meals[position+1:]...)
	entry.TotalNutrition = RecomputeOpenTotals(entry.Meals)

	next := shallowCopy(history)
	next[date] = entry
	return next, nil
}

// GetLog returns the log for date. A date with nothing logged yields an
// empty entry rather than an error.
func GetLog(history domain.History, date string) (domain.DailyLogEntry, error) {
	if _, err := domain.ParseDate(date); err != nil {
		return domain.DailyLogEntry{}, err
	}
	entry, ok := history[date]
	if !ok {
		return domain.DailyLogEntry{
			Date:           date,
			Meals:          []domain.MealRecord{},
			TotalNutrition: domain.NutrientMap{},
		}, nil
	}
	out := entry.Clone()
	out.Date = date
	if out.TotalNutrition == nil {
		out.TotalNutrition = domain.NutrientMap{}
	}
	return out, nil
}

// Summarize builds the macro headline for a log entry
func Summarize(entry domain.DailyLogEntry) DailySummary {
	return DailySummary{
		Date:      entry.Date,
		MealCount: len(entry.Meals),
		Macros:    domain.SummarizeMacros(entry.TotalNutrition),
	}
}

// WeeklyCalories returns the seven days ending at end, oldest first
func WeeklyCalories(history domain.History, end time.Time) []DayCalories {
	days := make([]DayCalories, 0, weekLength)
	for offset := weekLength - 1; offset >= 0; offset-- {
		day := end.AddDate(0, 0, -offset)
		date := day.Format(domain.DateLayout)

		var calories float64
		if entry, ok := history[date]; ok {
			calories = math.Round(entry.TotalNutrition.Get(domain.KeyEnergyKcal))
		}
		days = append(days, DayCalories{
			Date:     date,
			Label:    day.Format("Jan 2"),
			Calories: calories,
		})
	}
	return days
}

// RecomputeOpenTotals sums every meal over the union of nutrient keys
func RecomputeOpenTotals(meals []domain.MealRecord) domain.NutrientMap {
	maps := make([]domain.NutrientMap, 0, len(meals))
	for _, meal := range meals {
		maps = append(maps, meal.Nutrients())
	}
	return domain.AggregateOpenKeys(maps...)
}

// RecomputeFixedTotals sums every meal over the fixed import key set
func RecomputeFixedTotals(meals []domain.MealRecord) domain.NutrientMap {
	maps := make([]domain.NutrientMap, 0, len(meals))
	for _, meal := range meals {
		maps = append(maps, meal.Nutrients())
	}
	return domain.AggregateFixedKeys(maps...)
}

func shallowCopy(history domain.History) domain.History {
	next := make(domain.History, len(history)+1)
	for date, entry := range history {
		next[date] = entry
	}
	return next
}
