package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used as history keys
const DateLayout = "2006-01-02"

// isoLayout matches JavaScript's Date.toISOString output
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// ParseDate validates a YYYY-MM-DD date
func ParseDate(s string) (time.Time, error) {
	day, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return day, nil
}

// MealKind tags the two MealRecord shapes that coexist in history
type MealKind int

const (
	// MealSimple records carry one flat nutrition map (written by commit)
	MealSimple MealKind = iota
	// MealItemized records carry a list of line items (written by CSV import)
	MealItemized
)

// LineItem is one food inside an itemized meal
type LineItem struct {
	FoodName  string      `json:"product_name"`
	Brand     string      `json:"brand"`
	Quantity  float64     `json:"selectedQuantity"`
	Unit      string      `json:"selectedUnit"`
	Nutrition NutrientMap `json:"nutrition"`
}

// MealRecord is a tagged variant: Simple uses DisplayName..Nutrition, Itemized
// uses Items. Consumers must handle both.
type MealRecord struct {
	Kind      MealKind
	MealTime  MealTime
	Timestamp time.Time

	DisplayName  string
	DisplayBrand string
	Category     Category
	Quantity     float64
	Unit         string
	Nutrition    NutrientMap

	Items []LineItem
}

// NewSimpleMeal builds a flat-nutrition meal record
func NewSimpleMeal(mealTime MealTime, name, brand string, nutrition NutrientMap, at time.Time) MealRecord {
	return MealRecord{
		Kind:         MealSimple,
		MealTime:     mealTime,
		Timestamp:    at.UTC().Truncate(time.Millisecond),
		DisplayName:  name,
		DisplayBrand: brand,
		Nutrition:    nutrition,
	}
}

// NewItemizedMeal builds an empty itemized meal record
func NewItemizedMeal(mealTime MealTime, at time.Time) MealRecord {
	return MealRecord{
		Kind:      MealItemized,
		MealTime:  mealTime,
		Timestamp: at.UTC().Truncate(time.Millisecond),
		Items:     []LineItem{},
	}
}

// Nutrients is the open-key nutrition of the meal: the flat map for simple
// meals, the sum of the items for itemized ones.
func (m MealRecord) Nutrients() NutrientMap {
	if m.Kind == MealItemized {
		maps := make([]NutrientMap, 0, len(m.Items))
		for _, item := range m.Items {
			maps = append(maps, item.Nutrition)
		}
		return AggregateOpenKeys(maps...)
	}
	return m.Nutrition.Clone()
}

// LineItems projects the meal as line items. A simple meal is one item.
func (m MealRecord) LineItems() []LineItem {
	if m.Kind == MealItemized {
		return m.Items
	}
	return []LineItem{{
		FoodName:  m.DisplayName,
		Brand:     m.DisplayBrand,
		Quantity:  m.Quantity,
		Unit:      m.Unit,
		Nutrition: m.Nutrition,
	}}
}

// Clone returns a deep copy
func (m MealRecord) Clone() MealRecord {
	out := m
	if m.Nutrition != nil {
		out.Nutrition = m.Nutrition.Clone()
	}
	if m.Items != nil {
		out.Items = make([]LineItem, len(m.Items))
		for i, item := range m.Items {
			item.Nutrition = item.Nutrition.Clone()
			out.Items[i] = item
		}
	}
	return out
}

type simpleMealJSON struct {
	DisplayName  string      `json:"displayName"`
	DisplayBrand string      `json:"displayBrand"`
	MealTime     MealTime    `json:"mealTime"`
	Category     Category    `json:"category,omitempty"`
	Quantity     float64     `json:"quantity,omitempty"`
	Unit         string      `json:"unit,omitempty"`
	Nutrition    NutrientMap `json:"nutrition"`
	Timestamp    *int64      `json:"timestamp,omitempty"`
}

type itemizedMealJSON struct {
	MealTime  MealTime   `json:"mealTime"`
	Timestamp string     `json:"timestamp,omitempty"`
	Items     []LineItem `json:"items"`
}

type mealRecordJSON struct {
	DisplayName  string          `json:"displayName"`
	DisplayBrand string          `json:"displayBrand"`
	MealTime     MealTime        `json:"mealTime"`
	Category     Category        `json:"category"`
	Quantity     float64         `json:"quantity"`
	Unit         string          `json:"unit"`
	Nutrition    NutrientMap     `json:"nutrition"`
	Timestamp    json.RawMessage `json:"timestamp"`
	Items        *[]LineItem     `json:"items"`
}

// MarshalJSON writes the shape matching the record's kind
func (m MealRecord) MarshalJSON() ([]byte, error) {
	if m.Kind == MealItemized {
		out := itemizedMealJSON{MealTime: m.MealTime, Items: m.Items}
		if out.Items == nil {
			out.Items = []LineItem{}
		}
		if !m.Timestamp.IsZero() {
			out.Timestamp = m.Timestamp.UTC().Format(isoLayout)
		}
		return json.Marshal(out)
	}

	out := simpleMealJSON{
		DisplayName:  m.DisplayName,
		DisplayBrand: m.DisplayBrand,
		MealTime:     m.MealTime,
		Category:     m.Category,
		Quantity:     m.Quantity,
		Unit:         m.Unit,
		Nutrition:    m.Nutrition,
	}
	if out.Nutrition == nil {
		out.Nutrition = NutrientMap{}
	}
	if !m.Timestamp.IsZero() {
		ms := m.Timestamp.UnixMilli()
		out.Timestamp = &ms
	}
	return json.Marshal(out)
}

// UnmarshalJSON picks the itemized shape when an "items" list is present
func (m *MealRecord) UnmarshalJSON(data []byte) error {
	var aux mealRecordJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	ts := decodeTimestamp(aux.Timestamp)

	if aux.Items != nil {
		*m = MealRecord{
			Kind:      MealItemized,
			MealTime:  aux.MealTime,
			Timestamp: ts,
			Items:     *aux.Items,
		}
		return nil
	}

	*m = MealRecord{
		Kind:         MealSimple,
		MealTime:     aux.MealTime,
		Timestamp:    ts,
		DisplayName:  aux.DisplayName,
		DisplayBrand: aux.DisplayBrand,
		Category:     aux.Category,
		Quantity:     aux.Quantity,
		Unit:         aux.Unit,
		Nutrition:    aux.Nutrition,
	}
	return nil
}

// timestampLayouts are tried in order for string timestamps. Zone-less
// layouts are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	DateLayout,
}

// decodeTimestamp accepts unix milliseconds or an ISO-8601 string. A value it
// cannot read becomes the zero time rather than failing the whole document.
func decodeTimestamp(raw json.RawMessage) time.Time {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}
	}
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return time.Time{}
		}
		text = strings.TrimSpace(text)
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, text); err == nil {
				return ts.UTC()
			}
		}
		return time.Time{}
	}
	var ms float64
	if err := json.Unmarshal(raw, &ms); err != nil {
		return time.Time{}
	}
	return time.UnixMilli(int64(ms)).UTC()
}

// DailyLogEntry holds all meals logged for one date. TotalNutrition is always
// recomputed from Meals after a mutation, never patched.
type DailyLogEntry struct {
	Date           string       `json:"-"`
	Meals          []MealRecord `json:"meals"`
	TotalNutrition NutrientMap  `json:"totalNutrition"`
}

// Clone returns a deep copy
func (e DailyLogEntry) Clone() DailyLogEntry {
	out := DailyLogEntry{Date: e.Date, Meals: make([]MealRecord, len(e.Meals))}
	for i, meal := range e.Meals {
		out.Meals[i] = meal.Clone()
	}
	if e.TotalNutrition != nil {
		out.TotalNutrition = e.TotalNutrition.Clone()
	}
	return out
}

// History maps YYYY-MM-DD dates to their daily log
type History map[string]DailyLogEntry

// Clone returns a deep copy
func (h History) Clone() History {
	out := make(History, len(h))
	for date, entry := range h {
		out[date] = entry.Clone()
	}
	return out
}
