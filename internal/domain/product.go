package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Unit is the canonical serving unit of a product
type Unit string

const (
	UnitGram       Unit = "g"
	UnitMilliliter Unit = "ml"
	UnitKilogram   Unit = "kg"
	UnitLiter      Unit = "l"
)

// freshBrand marks produce entered with a placeholder brand
const freshBrand = "Fresh"

// RawValueKind tags the shape of a nutrition value in a catalog record
type RawValueKind int

const (
	RawValueUnknown RawValueKind = iota
	RawValueNumber
	RawValueNested
)

// NestedField is one key of a nested nutrition object, kept in document order
type NestedField struct {
	Key   string
	Value json.RawMessage
}

// Number reports whether the field holds a JSON number, and its value
func (f NestedField) Number() (float64, bool) {
	var v float64
	if err := json.Unmarshal(f.Value, &v); err != nil {
		return 0, false
	}
	return v, true
}

// RawNutrientValue is a nutrition value as found in catalog JSON: either a
// bare number or a nested object such as {"per_100g": 12, "per_serve": 6}.
type RawNutrientValue struct {
	Kind   RawValueKind
	Number float64
	Nested []NestedField
}

// NumberValue builds a bare-number RawNutrientValue
func NumberValue(v float64) RawNutrientValue {
	return RawNutrientValue{Kind: RawValueNumber, Number: v}
}

// Lookup returns the raw JSON of a nested key
func (v RawNutrientValue) Lookup(key string) (json.RawMessage, bool) {
	for _, field := range v.Nested {
		if field.Key == key {
			return field.Value, true
		}
	}
	return nil, false
}

// UnmarshalJSON decodes numbers and objects; anything else becomes RawValueUnknown
func (v *RawNutrientValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*v = RawNutrientValue{}
	if len(trimmed) == 0 {
		return nil
	}

	switch trimmed[0] {
	case '{':
		fields, err := decodeOrderedObject(trimmed)
		if err != nil {
			return err
		}
		v.Kind = RawValueNested
		v.Nested = fields
	case '"', 'n', 't', 'f', '[':
		// strings, null, booleans and arrays carry no usable nutrition value
	default:
		var n float64
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return err
		}
		v.Kind = RawValueNumber
		v.Number = n
	}
	return nil
}

// MarshalJSON writes the value back in its original shape
func (v RawNutrientValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case RawValueNumber:
		return json.Marshal(v.Number)
	case RawValueNested:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, field := range v.Nested {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(field.Key)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(field.Value)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return []byte("null"), nil
	}
}

func decodeOrderedObject(data []byte) ([]NestedField, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	fields := make([]NestedField, 0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		fields = append(fields, NestedField{Key: key, Value: raw})
	}
	return fields, nil
}

// FlexString accepts a JSON string or number and keeps its text
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] == 'n' {
		*s = ""
		return nil
	}
	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*s = FlexString(text)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		*s = ""
		return nil
	}
	*s = FlexString(n.String())
	return nil
}

// StringList accepts a JSON array of strings or a single comma separated string
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*l = nil
	if len(trimmed) == 0 || trimmed[0] == 'n' {
		return nil
	}
	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		for _, part := range strings.Split(text, ",") {
			if part = strings.TrimSpace(part); part != "" {
				*l = append(*l, part)
			}
		}
		return nil
	}
	var items []string
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

// RawProduct is a catalog record as supplied by the seed file or a user
type RawProduct struct {
	ProductName          string                      `json:"product_name"`
	Brand                string                      `json:"brand,omitempty"`
	ServingSize          FlexString                  `json:"serving_size,omitempty"`
	ServingsPerContainer FlexString                  `json:"servings_per_container,omitempty"`
	Ingredients          StringList                  `json:"ingredients,omitempty"`
	Allergens            StringList                  `json:"allergens,omitempty"`
	Notes                string                      `json:"notes,omitempty"`
	Nutrition            map[string]RawNutrientValue `json:"nutrition"`
}

// CatalogSeed is the seed document shape: {"products": [...]}
type CatalogSeed struct {
	Products []RawProduct `json:"products"`
}

// Product is the canonical catalog entry. NutritionPer100 is always on a
// 100 g / 100 ml basis.
type Product struct {
	Name                 string      `json:"product_name"`
	Brand                string      `json:"brand"`
	ServingSize          float64     `json:"serving_size"`
	Unit                 Unit        `json:"unit"`
	ServingsPerContainer int         `json:"servings_per_container"`
	Ingredients          string      `json:"ingredients"`
	Allergens            []string    `json:"allergens"`
	Notes                string      `json:"notes"`
	NutritionPer100      NutrientMap `json:"nutrition_per_100"`
}

// IsRaw reports whether the product is fresh food rather than packaged
func (p Product) IsRaw() bool {
	return p.Brand == "" || p.Brand == freshBrand
}

// DisplayBrand is the brand label shown for the product
func (p Product) DisplayBrand() string {
	if p.Brand == "" {
		return "Raw Food"
	}
	return p.Brand
}

// ToRaw projects the product back to the raw catalog shape with bare
// per-100 numbers, so normalizing the result reproduces the product.
func (p Product) ToRaw() RawProduct {
	nutrition := make(map[string]RawNutrientValue, len(p.NutritionPer100))
	for key, value := range p.NutritionPer100 {
		nutrition[key] = NumberValue(value)
	}

	var ingredients StringList
	if p.Ingredients != "" {
		ingredients = StringList{p.Ingredients}
	}

	return RawProduct{
		ProductName:          p.Name,
		Brand:                p.Brand,
		ServingSize:          FlexString(strconv.FormatFloat(p.ServingSize, 'f', -1, 64) + string(p.Unit)),
		ServingsPerContainer: FlexString(strconv.Itoa(p.ServingsPerContainer)),
		Ingredients:          ingredients,
		Allergens:            append(StringList(nil), p.Allergens...),
		Notes:                p.Notes,
		Nutrition:            nutrition,
	}
}
