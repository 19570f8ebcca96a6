package usecase

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sanskarmk/NutritionTracker/internal/domain"
)

// HistoryFormatVersion tags JSON history exports
const HistoryFormatVersion = "1.0"

const exportTimestampLayout = "2006-01-02T15:04:05.000Z"

// Export and import formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// historyCSVHeader is the exact header row of the history CSV export
var historyCSVHeader = []string{
	"Date",
	"Meal Time",
	"Food Name",
	"Brand",
	"Quantity",
	"Unit",
	"Calories",
	"Protein (g)",
	"Carbs (g)",
	"Fat (g)",
}

const defaultImportUnit = "g"

// ImportStrategy decides how imported days meet existing history
type ImportStrategy string

const (
	// ImportMerge inserts new dates and appends meals to existing ones
	ImportMerge ImportStrategy = "merge"
	// ImportReplace discards existing history
	ImportReplace ImportStrategy = "replace"
)

// ParseImportStrategy validates a strategy name; empty means merge
func ParseImportStrategy(s string) (ImportStrategy, error) {
	switch ImportStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ImportMerge:
		return ImportMerge, nil
	case ImportReplace:
		return ImportReplace, nil
	}
	return "", fmt.Errorf("%w: unknown import strategy %q", domain.ErrInvalidRequest, s)
}

// HistoryDocument is the JSON history export file
type HistoryDocument struct {
	Version    string         `json:"version"`
	ExportDate string         `json:"exportDate"`
	DailyLogs  domain.History `json:"dailyLogs"`
}

// ExportHistoryJSON wraps the full history with a version tag and export time
func ExportHistoryJSON(history domain.History, at time.Time) ([]byte, error) {
	logs := history
	if logs == nil {
		logs = domain.History{}
	}
	doc := HistoryDocument{
		Version:    HistoryFormatVersion,
		ExportDate: at.UTC().Format(exportTimestampLayout),
		DailyLogs:  logs,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode history: %w", err)
	}
	return data, nil
}

// ParseHistoryJSON reads a JSON history export. Any version is accepted as
// long as a dailyLogs object is present.
func ParseHistoryJSON(data []byte) (domain.History, error) {
	var doc struct {
		DailyLogs json.RawMessage `json:"dailyLogs"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", domain.ErrInvalidImport, err)
	}
	if len(doc.DailyLogs) == 0 || bytes.Equal(bytes.TrimSpace(doc.DailyLogs), []byte("null")) {
		return nil, fmt.Errorf("%w: invalid file format: missing dailyLogs", domain.ErrInvalidImport)
	}

	var logs domain.History
	if err := json.Unmarshal(doc.DailyLogs, &logs); err != nil {
		return nil, fmt.Errorf("%w: invalid dailyLogs: %v", domain.ErrInvalidImport, err)
	}

	for date, entry := range logs {
		if _, err := domain.ParseDate(date); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImport, err)
		}
		entry.Date = date
		if entry.Meals == nil {
			entry.Meals = []domain.MealRecord{}
		}
		logs[date] = entry
	}
	return logs, nil
}

// ExportHistoryCSV writes one row per line item in date order. Only the four
// headline macros survive; every other nutrient key is dropped.
func ExportHistoryCSV(history domain.History) ([]byte, error) {
	var output bytes.Buffer
	writer := csv.NewWriter(&output)
	if err := writer.Write(historyCSVHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	dates := make([]string, 0, len(history))
	for date := range history {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		for _, meal := range history[date].Meals {
			mealTime := meal.MealTime
			if mealTime == "" {
				mealTime = domain.MealOther
			}
			for _, item := range meal.LineItems() {
				quantity := ""
				if item.Quantity != 0 {
					quantity = formatNumber(item.Quantity)
				}
				if err := writer.Write([]string{
					date,
					string(mealTime),
					item.FoodName,
					item.Brand,
					quantity,
					item.Unit,
					formatFixed(item.Nutrition.Get(domain.KeyEnergyKcal), 0),
					formatFixed(item.Nutrition.Get(domain.KeyProteinG), 1),
					formatFixed(item.Nutrition.Get(domain.KeyCarbohydratesG), 1),
					formatFixed(item.Nutrition.Get(domain.KeyFatG), 1),
				}); err != nil {
					return nil, fmt.Errorf("failed to write csv row: %w", err)
				}
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to build csv: %w", err)
	}
	return output.Bytes(), nil
}

// ParseHistoryCSV reads a history CSV into itemized meals keyed by
// (date, meal time). The first record is the header. Rows with fewer than
// ten fields, no date, no food name or an unreadable date are skipped.
func ParseHistoryCSV(data []byte) (domain.History, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records := make([][]string, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImport, err)
		}
		if isBlankRecord(record) {
			continue
		}
		records = append(records, record)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: CSV file is empty or invalid", domain.ErrInvalidImport)
	}

	logs := domain.History{}
	// meal position per date and meal time, in first-seen order
	mealIndex := make(map[string]map[domain.MealTime]int)

	for _, record := range records[1:] {
		if len(record) < len(historyCSVHeader) {
			continue
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}

		date, foodName := record[0], record[2]
		if date == "" || foodName == "" {
			continue
		}
		day, err := domain.ParseDate(date)
		if err != nil {
			continue
		}

		mealTime := domain.MealTime(record[1])
		if mealTime == "" {
			mealTime = domain.MealOther
		}
		unit := record[5]
		if unit == "" {
			unit = defaultImportUnit
		}

		entry, ok := logs[date]
		if !ok {
			entry = domain.DailyLogEntry{Date: date, Meals: []domain.MealRecord{}}
			mealIndex[date] = make(map[domain.MealTime]int)
		}

		position, ok := mealIndex[date][mealTime]
		if !ok {
			entry.Meals = append(entry.Meals, domain.NewItemizedMeal(mealTime, day))
			position = len(entry.Meals) - 1
			mealIndex[date][mealTime] = position
		}

		entry.Meals[position].Items = append(entry.Meals[position].Items, domain.LineItem{
			FoodName: foodName,
			Brand:    record[3],
			Quantity: floatOrZero(record[4]),
			Unit:     unit,
			Nutrition: domain.NutrientMap{
				domain.KeyEnergyKcal:     floatOrZero(record[6]),
				domain.KeyProteinG:       floatOrZero(record[7]),
				domain.KeyCarbohydratesG: floatOrZero(record[8]),
				domain.KeyFatG:           floatOrZero(record[9]),
			},
		})
		logs[date] = entry
	}

	if len(logs) == 0 {
		return nil, fmt.Errorf("%w: no valid rows found", domain.ErrInvalidImport)
	}

	for date, entry := range logs {
		entry.TotalNutrition = RecomputeFixedTotals(entry.Meals)
		logs[date] = entry
	}
	return logs, nil
}

// ParseHistory dispatches on format
func ParseHistory(format string, data []byte) (domain.History, error) {
	switch format {
	case FormatJSON:
		return ParseHistoryJSON(data)
	case FormatCSV:
		return ParseHistoryCSV(data)
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
}

// ApplyImport reconciles imported days with existing history and returns
// the next history. Neither input is modified.
//
// Replace substitutes the imported set as is. Merge inserts absent dates as
// is; for dates already present the imported meals are appended without
// deduplication and totals are recomputed over the fixed key set.
func ApplyImport(existing, imported domain.History, strategy ImportStrategy) (domain.History, error) {
	switch strategy {
	case ImportReplace:
		return imported.Clone(), nil
	case ImportMerge:
	default:
		return nil, fmt.Errorf("%w: unknown import strategy %q", domain.ErrInvalidRequest, strategy)
	}

	next := shallowCopy(existing)
	for date, incoming := range imported {
		current, ok := existing[date]
		if !ok {
			entry := incoming.Clone()
			entry.Date = date
			next[date] = entry
			continue
		}

		merged := current.Clone()
		merged.Date = date
		for _, meal := range incoming.Meals {
			merged.Meals = append(merged.Meals, meal.Clone())
		}
		merged.TotalNutrition = RecomputeFixedTotals(merged.Meals)
		next[date] = merged
	}
	return next, nil
}

// HistoryFilename is the attachment name of a history export made on day
func HistoryFilename(day time.Time, format string) string {
	return fmt.Sprintf("nutrition-history-%s.%s", day.Format(domain.DateLayout), format)
}

func isBlankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// formatFixed renders v with the given decimals, never as "-0"
func formatFixed(v float64, decimals int) string {
	scale := math.Pow(10, float64(decimals))
	rounded := math.Round(v*scale) / scale
	if rounded == 0 {
		rounded = 0
	}
	return strconv.FormatFloat(rounded, 'f', decimals, 64)
}
