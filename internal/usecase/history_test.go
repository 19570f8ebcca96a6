package usecase

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanskarmk/NutritionTracker/internal/domain"
)

const csvHeaderLine = "Date,Meal Time,Food Name,Brand,Quantity,Unit,Calories,Protein (g),Carbs (g),Fat (g)"

func sampleHistory() domain.History {
	committed := domain.NewSimpleMeal(domain.MealLunch, `Dal, "Tadka"`, "Haldiram's",
		domain.NutrientMap{
			domain.KeyEnergyKcal:     250,
			domain.KeyProteinG:       12.5,
			domain.KeyCarbohydratesG: 30.2,
			domain.KeyFatG:           8,
			domain.KeyFiberG:         6,
		}, fixedNow)
	committed.Category = domain.CategoryPackaged
	committed.Quantity = 200
	committed.Unit = "g"

	imported := domain.NewItemizedMeal(domain.MealBreakfast, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))
	imported.Items = append(imported.Items, domain.LineItem{
		FoodName:  "Poha",
		Brand:     "",
		Quantity:  1,
		Unit:      "bowl",
		Nutrition: domain.NutrientMap{domain.KeyEnergyKcal: 180, domain.KeyProteinG: 4},
	})

	return domain.History{
		"2024-03-10": {
			Date:           "2024-03-10",
			Meals:          []domain.MealRecord{committed},
			TotalNutrition: RecomputeOpenTotals([]domain.MealRecord{committed}),
		},
		"2024-03-09": {
			Date:           "2024-03-09",
			Meals:          []domain.MealRecord{imported},
			TotalNutrition: RecomputeFixedTotals([]domain.MealRecord{imported}),
		},
	}
}

func TestHistoryJSON_RoundTrip(t *testing.T) {
	history := sampleHistory()

	data, err := ExportHistoryJSON(history, fixedNow)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "1.0", doc["version"])
	assert.Equal(t, "2024-03-10T08:30:00.000Z", doc["exportDate"])

	imported, err := ParseHistoryJSON(data)
	require.NoError(t, err)

	restored, err := ApplyImport(domain.History{"2020-01-01": {}}, imported, ImportReplace)
	require.NoError(t, err)
	assert.Equal(t, history, restored)
}

func TestParseHistoryJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "malformed", data: `{"dailyLogs":`},
		{name: "missing dailyLogs", data: `{"version":"1.0"}`},
		{name: "null dailyLogs", data: `{"dailyLogs":null}`},
		{name: "dailyLogs not an object", data: `{"dailyLogs":[1,2]}`},
		{name: "bad date key", data: `{"dailyLogs":{"yesterday":{"meals":[]}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHistoryJSON([]byte(tt.data))
			assert.ErrorIs(t, err, domain.ErrInvalidImport)
		})
	}
}

func TestParseHistoryJSON_LenientTimestamps(t *testing.T) {
	tests := []struct {
		name      string
		timestamp string
		want      time.Time
	}{
		{name: "unix millis", timestamp: `1709978400000`, want: time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)},
		{name: "RFC3339", timestamp: `"2024-03-09T10:00:00.000Z"`, want: time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)},
		{name: "no zone", timestamp: `"2024-03-09T10:00:00"`, want: time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)},
		{name: "date only", timestamp: `"2024-03-09"`, want: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)},
		{name: "unreadable", timestamp: `"yesterday morning"`, want: time.Time{}},
		{name: "wrong type", timestamp: `true`, want: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `{"dailyLogs":{"2024-03-09":{"meals":[{"displayName":"Tea","mealTime":"breakfast",` +
				`"nutrition":{"energy_kcal":30},"timestamp":` + tt.timestamp + `}]}}}`

			history, err := ParseHistoryJSON([]byte(doc))
			require.NoError(t, err)
			require.Len(t, history["2024-03-09"].Meals, 1)
			assert.True(t, tt.want.Equal(history["2024-03-09"].Meals[0].Timestamp),
				"timestamp = %v, want %v", history["2024-03-09"].Meals[0].Timestamp, tt.want)
			assert.Equal(t, "Tea", history["2024-03-09"].Meals[0].DisplayName)
		})
	}
}

func TestExportHistoryCSV(t *testing.T) {
	data, err := ExportHistoryCSV(sampleHistory())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, csvHeaderLine, lines[0])
	assert.Equal(t, "2024-03-09,breakfast,Poha,,1,bowl,180,4.0,0.0,0.0", lines[1])
	assert.Equal(t, `2024-03-10,lunch,"Dal, ""Tadka""",Haldiram's,200,g,250,12.5,30.2,8.0`, lines[2])
}

func TestHistoryCSV_RoundTripIsLossy(t *testing.T) {
	history := sampleHistory()

	data, err := ExportHistoryCSV(history)
	require.NoError(t, err)
	imported, err := ParseHistoryCSV(data)
	require.NoError(t, err)

	entry := imported["2024-03-10"]
	require.Len(t, entry.Meals, 1)
	meal := entry.Meals[0]
	assert.Equal(t, domain.MealItemized, meal.Kind, "CSV import always produces itemized meals")
	require.Len(t, meal.Items, 1)

	item := meal.Items[0]
	assert.Equal(t, `Dal, "Tadka"`, item.FoodName)
	assert.Equal(t, 200.0, item.Quantity)

	// the four macro columns survive exactly
	committed := history["2024-03-10"].Meals[0].Nutrition
	for _, key := range []string{domain.KeyEnergyKcal, domain.KeyProteinG, domain.KeyCarbohydratesG, domain.KeyFatG} {
		assert.Equal(t, committed[key], item.Nutrition[key], key)
	}

	// every other key is lost
	_, hasFiber := item.Nutrition[domain.KeyFiberG]
	assert.False(t, hasFiber)
	assert.Equal(t, 0.0, entry.TotalNutrition[domain.KeyFiberG])
	assert.NotEqual(t, history["2024-03-10"].TotalNutrition, entry.TotalNutrition)
}

func TestParseHistoryCSV(t *testing.T) {
	csvText := csvHeaderLine + "\n" +
		"2024-03-01,breakfast,Oats,Quaker,40,g,150,5,27,3\n" +
		"2024-03-01,lunch,Rice,,1,cup,200,4,45,0.5\n" +
		"2024-03-01,breakfast,Milk,Amul,200,,120,6,10,6\n" +
		"2024-03-01,lunch, \"Rice, basmati\",India Gate,150,g,195,4,43,0.4\n" +
		"2024-03-02,,\"Multi\nline\",,,,50,1,2,3\n" +
		"2024-03-03,dinner,Short row\n" +
		",dinner,No date,,1,g,1,1,1,1\n" +
		"2024-03-03,dinner,,Brand,1,g,1,1,1,1\n" +
		"03/04/2024,dinner,Bad date,,1,g,1,1,1,1\n" +
		"\n"

	history, err := ParseHistoryCSV([]byte(csvText))
	require.NoError(t, err)
	require.Len(t, history, 2)

	day := history["2024-03-01"]
	require.Len(t, day.Meals, 2, "rows group by (date, meal time)")
	breakfast := day.Meals[0]
	assert.Equal(t, domain.MealBreakfast, breakfast.MealTime)
	require.Len(t, breakfast.Items, 2)
	assert.Equal(t, "g", breakfast.Items[1].Unit, "unit defaults to g")
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), breakfast.Timestamp)
	assert.Equal(t, 665.0, day.TotalNutrition[domain.KeyEnergyKcal])

	lunch := day.Meals[1]
	require.Len(t, lunch.Items, 2)
	assert.Equal(t, "Rice, basmati", lunch.Items[1].FoodName, "a space before an opening quote keeps the field whole")
	assert.Equal(t, "India Gate", lunch.Items[1].Brand)
	assert.Equal(t, 150.0, lunch.Items[1].Quantity)
	assert.Equal(t, 195.0, lunch.Items[1].Nutrition[domain.KeyEnergyKcal])
	assert.Len(t, day.TotalNutrition, len(domain.FixedNutrientKeys))

	quoted := history["2024-03-02"].Meals[0]
	assert.Equal(t, domain.MealOther, quoted.MealTime, "missing meal time becomes other")
	assert.Equal(t, "Multi\nline", quoted.Items[0].FoodName)
	assert.Equal(t, 0.0, quoted.Items[0].Quantity)
}

func TestParseHistoryCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "header only", data: csvHeaderLine + "\n\n"},
		{name: "no valid rows", data: csvHeaderLine + "\nshort,row\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHistoryCSV([]byte(tt.data))
			assert.ErrorIs(t, err, domain.ErrInvalidImport)
		})
	}
}

func TestApplyImport_Merge(t *testing.T) {
	existingMeal := domain.NewSimpleMeal(domain.MealLunch, "Soup", "", domain.NutrientMap{
		domain.KeyEnergyKcal: 100,
		"omega_3_mg":         5,
	}, fixedNow)
	existing := domain.History{
		"2024-03-10": {
			Date:           "2024-03-10",
			Meals:          []domain.MealRecord{existingMeal},
			TotalNutrition: domain.NutrientMap{domain.KeyEnergyKcal: 100, "omega_3_mg": 5},
		},
	}

	importedMeal := domain.NewItemizedMeal(domain.MealLunch, fixedNow)
	importedMeal.Items = []domain.LineItem{{FoodName: "Bread", Nutrition: domain.NutrientMap{domain.KeyEnergyKcal: 80}}}
	imported := domain.History{
		"2024-03-10": {Meals: []domain.MealRecord{importedMeal}},
		"2024-03-11": {Meals: []domain.MealRecord{importedMeal}, TotalNutrition: domain.NutrientMap{"custom": 1}},
	}

	next, err := ApplyImport(existing, imported, ImportMerge)
	require.NoError(t, err)

	merged := next["2024-03-10"]
	require.Len(t, merged.Meals, 2, "meals are concatenated without deduplication")
	assert.Equal(t, "Soup", merged.Meals[0].DisplayName)
	assert.Equal(t, 180.0, merged.TotalNutrition[domain.KeyEnergyKcal])
	_, kept := merged.TotalNutrition["omega_3_mg"]
	assert.False(t, kept, "merge recomputes over the fixed key set")

	inserted := next["2024-03-11"]
	assert.Equal(t, domain.NutrientMap{"custom": 1}, inserted.TotalNutrition, "absent dates are inserted as is")

	assert.Len(t, existing["2024-03-10"].Meals, 1, "existing history is not modified")
}

func TestApplyImport_MergeDisjointIsOrderIndependent(t *testing.T) {
	a := domain.History{"2024-03-01": {Date: "2024-03-01", Meals: []domain.MealRecord{simpleMeal(domain.MealLunch, "a", 1)}}}
	b := domain.History{"2024-03-02": {Date: "2024-03-02", Meals: []domain.MealRecord{simpleMeal(domain.MealDinner, "b", 2)}}}

	ab, err := ApplyImport(a, b, ImportMerge)
	require.NoError(t, err)
	ba, err := ApplyImport(b, a, ImportMerge)
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
	assert.Len(t, ab, 2)
}

func TestApplyImport_Replace(t *testing.T) {
	existing := domain.History{"2024-03-01": {Date: "2024-03-01"}}
	imported := domain.History{"2024-03-02": {Date: "2024-03-02", Meals: []domain.MealRecord{}}}

	next, err := ApplyImport(existing, imported, ImportReplace)
	require.NoError(t, err)

	assert.Equal(t, imported, next)
	_, stillThere := next["2024-03-01"]
	assert.False(t, stillThere)

	_, err = ApplyImport(existing, imported, ImportStrategy("upsert"))
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestParseImportStrategy(t *testing.T) {
	tests := []struct {
		input   string
		want    ImportStrategy
		wantErr bool
	}{
		{input: "", want: ImportMerge},
		{input: "merge", want: ImportMerge},
		{input: " Replace ", want: ImportReplace},
		{input: "overwrite", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseImportStrategy(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseImportStrategy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseImportStrategy(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestFilenames(t *testing.T) {
	day := time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "nutrition-history-2024-03-10.csv", HistoryFilename(day, FormatCSV))
	assert.Equal(t, "nutrition-data-2024-03-10.json", SelectionFilename(day, FormatJSON))
}
