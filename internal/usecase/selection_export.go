package usecase

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sanskarmk/NutritionTracker/internal/domain"
)

// SelectionExport is the one-way JSON snapshot of the current selection
type SelectionExport struct {
	ExportDate         string                `json:"export_date"`
	SelectedItems      []SelectedItemExport  `json:"selected_items"`
	NutritionTotals    domain.NutrientMap    `json:"nutrition_totals"`
	NutritionBreakdown []BreakdownItemExport `json:"nutrition_breakdown"`
}

// SelectedItemExport describes one selected entry
type SelectedItemExport struct {
	Name     string           `json:"name"`
	Type     domain.EntryKind `json:"type"`
	Category domain.Category  `json:"category"`
	MealTime domain.MealTime  `json:"meal_time"`
	Amount   float64          `json:"amount"`
	Unit     string           `json:"unit"`
	Brand    string           `json:"brand"`
}

// BreakdownItemExport is the nutrition of one selected entry
type BreakdownItemExport struct {
	Name      string             `json:"name"`
	Type      domain.EntryKind   `json:"type"`
	MealTime  domain.MealTime    `json:"meal_time"`
	Amount    float64            `json:"amount"`
	Unit      string             `json:"unit"`
	Nutrition domain.NutrientMap `json:"nutrition"`
}

// BuildSelectionExport snapshots entries and their computed totals
func BuildSelectionExport(entries []domain.SelectionEntry, at time.Time) SelectionExport {
	totals := ComputeTotals(entries)

	export := SelectionExport{
		ExportDate:         at.UTC().Format(exportTimestampLayout),
		SelectedItems:      make([]SelectedItemExport, 0, len(totals.PerItem)),
		NutritionTotals:    totals.Totals,
		NutritionBreakdown: make([]BreakdownItemExport, 0, len(totals.PerItem)),
	}
	for _, item := range totals.PerItem {
		export.SelectedItems = append(export.SelectedItems, SelectedItemExport{
			Name:     item.Name,
			Type:     item.Kind,
			Category: item.Category,
			MealTime: item.MealTime,
			Amount:   item.Amount,
			Unit:     item.DisplayUnit,
			Brand:    item.Brand,
		})
		export.NutritionBreakdown = append(export.NutritionBreakdown, BreakdownItemExport{
			Name:      item.Name,
			Type:      item.Kind,
			MealTime:  item.MealTime,
			Amount:    item.Amount,
			Unit:      item.DisplayUnit,
			Nutrition: item.Nutrition,
		})
	}
	return export
}

// ExportSelection renders the selection snapshot as JSON or CSV
func ExportSelection(entries []domain.SelectionEntry, format string, at time.Time) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(BuildSelectionExport(entries, at), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode selection: %w", err)
		}
		return data, nil
	case FormatCSV:
		return exportSelectionCSV(entries)
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
}

// exportSelectionCSV writes Product,Amount,Unit then one column per nutrient
// key of the totals, one row per entry and a closing TOTALS row.
func exportSelectionCSV(entries []domain.SelectionEntry) ([]byte, error) {
	totals := ComputeTotals(entries)
	keys := totals.Totals.Keys()

	var output bytes.Buffer
	writer := csv.NewWriter(&output)

	header := append([]string{"Product", "Amount", "Unit"}, keys...)
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, item := range totals.PerItem {
		row := []string{item.Name, formatNumber(item.Amount), item.DisplayUnit}
		for _, key := range keys {
			row = append(row, formatNumber(item.Nutrition.Get(key)))
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	row := []string{"TOTALS", "", ""}
	for _, key := range keys {
		row = append(row, formatNumber(totals.Totals.Get(key)))
	}
	if err := writer.Write(row); err != nil {
		return nil, fmt.Errorf("failed to write csv totals: %w", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to build csv: %w", err)
	}
	return output.Bytes(), nil
}

// SelectionFilename is the attachment name of a selection export made on day
func SelectionFilename(day time.Time, format string) string {
	return fmt.Sprintf("nutrition-data-%s.%s", day.Format(domain.DateLayout), format)
}
