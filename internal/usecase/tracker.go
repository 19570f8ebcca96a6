package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sanskarmk/NutritionTracker/internal/domain"
)

// TrackerConfig holds configuration for the tracker service
type TrackerConfig struct {
	// Location decides which calendar day "today" is
	Location *time.Location
	// Now overrides the clock in tests
	Now func() time.Time
}

// AppState is everything the tracker holds in memory
type AppState struct {
	Catalog   []domain.Product
	Recipes   []domain.Recipe
	Selection *Selection
	History   domain.History
}

// Tracker serializes every operation on the catalog, recipes, selection and
// history behind one mutex and flushes each mutation to the blob store.
//
// Mutations build the next state, save it, and only then swap it in, so a
// failed validation or save leaves memory and storage unchanged.
type Tracker struct {
	mu            sync.Mutex
	store         domain.BlobStore
	recorder      domain.Recorder
	location      *time.Location
	now           func() time.Time
	state         AppState
	catalogLoaded bool
}

// NewTracker creates a tracker with empty state. Call Load before use.
func NewTracker(store domain.BlobStore, recorder domain.Recorder, config TrackerConfig) *Tracker {
	if recorder == nil {
		recorder = domain.NopRecorder{}
	}
	location := config.Location
	if location == nil {
		location = time.Local
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}

	return &Tracker{
		store:    store,
		recorder: recorder,
		location: location,
		now:      now,
		state: AppState{
			Catalog:   []domain.Product{},
			Recipes:   []domain.Recipe{},
			Selection: NewSelection(now),
			History:   domain.History{},
		},
	}
}

// Load reads the catalog, recipes and history from the store. Missing keys
// leave the corresponding collection empty.
func (t *Tracker) Load(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var catalog []domain.Product
	found, err := t.loadJSON(ctx, domain.StoreKeyProducts, &catalog)
	if err != nil {
		return err
	}
	t.catalogLoaded = found
	if catalog != nil {
		t.state.Catalog = catalog
	}

	var recipes []domain.Recipe
	if _, err := t.loadJSON(ctx, domain.StoreKeyRecipes, &recipes); err != nil {
		return err
	}
	if recipes != nil {
		t.state.Recipes = recipes
	}

	var history domain.History
	if _, err := t.loadJSON(ctx, domain.StoreKeyDailyLogs, &history); err != nil {
		return err
	}
	if history != nil {
		for date, entry := range history {
			entry.Date = date
			history[date] = entry
		}
		t.state.History = history
	}

	t.recorder.HistorySize(len(t.state.History))
	log.Printf("[Tracker] Loaded %d products, %d recipes, %d logged days",
		len(t.state.Catalog), len(t.state.Recipes), len(t.state.History))
	return nil
}

// SeedCatalog normalizes and stores a {"products": [...]} seed document
// unless a catalog was already persisted. It reports whether it seeded.
func (t *Tracker) SeedCatalog(ctx context.Context, data []byte) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.catalogLoaded {
		return false, nil
	}

	seed, err := ParseCatalogSeed(data)
	if err != nil {
		return false, err
	}
	catalog := NormalizeAll(seed.Products)
	if err := t.saveJSON(ctx, domain.StoreKeyProducts, catalog); err != nil {
		return false, err
	}

	t.state.Catalog = catalog
	t.catalogLoaded = true
	log.Printf("[Tracker] Seeded catalog with %d products", len(catalog))
	return true, nil
}

// Today is the current calendar date in the tracker's location
func (t *Tracker) Today() string {
	return t.now().In(t.location).Format(domain.DateLayout)
}

// Products lists catalog products matching category and search term
func (t *Tracker) Products(category domain.Category, term string) []ProductMatch {
	t.mu.Lock()
	defer t.mu.Unlock()
	return FilterProducts(t.state.Catalog, category, term)
}

// AddProductJSON parses, normalizes and appends a user-entered product
func (t *Tracker) AddProductJSON(ctx context.Context, text string) (ProductMatch, error) {
	raw, err := ParseRawProduct(text)
	if err != nil {
		return ProductMatch{}, err
	}
	product := Normalize(raw)

	t.mu.Lock()
	defer t.mu.Unlock()

	next := make([]domain.Product, len(t.state.Catalog), len(t.state.Catalog)+1)
	copy(next, t.state.Catalog)
	next = append(next, product)

	if err := t.saveJSON(ctx, domain.StoreKeyProducts, next); err != nil {
		return ProductMatch{}, err
	}
	t.state.Catalog = next
	t.catalogLoaded = true

	return ProductMatch{Index: len(next) - 1, Product: product}, nil
}

// Recipes lists recipes whose name matches term
func (t *Tracker) Recipes(term string) []RecipeMatch {
	t.mu.Lock()
	defer t.mu.Unlock()
	return FilterRecipes(t.state.Recipes, term)
}

// CreateRecipe validates builder input and appends the recipe
func (t *Tracker) CreateRecipe(ctx context.Context, input domain.RecipeInput) (RecipeMatch, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	recipe, err := BuildRecipe(input, t.state.Catalog)
	if err != nil {
		return RecipeMatch{}, err
	}

	next := make([]domain.Recipe, len(t.state.Recipes), len(t.state.Recipes)+1)
	copy(next, t.state.Recipes)
	next = append(next, recipe)

	if err := t.saveJSON(ctx, domain.StoreKeyRecipes, next); err != nil {
		return RecipeMatch{}, err
	}
	t.state.Recipes = next

	return RecipeMatch{Index: len(next) - 1, Recipe: recipe}, nil
}

// AddProductToSelection adds a catalog product to the selection
func (t *Tracker) AddProductToSelection(input AddProductInput) (domain.SelectionEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, err := t.state.Selection.AddProduct(t.state.Catalog, input)
	if err != nil {
		return domain.SelectionEntry{}, err
	}
	t.recorder.SelectionAdded(entry.Kind)
	return entry, nil
}

// AddRecipeToSelection adds recipe servings to the selection
func (t *Tracker) AddRecipeToSelection(input AddRecipeInput) (domain.SelectionEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, err := t.state.Selection.AddRecipe(t.state.Recipes, t.state.Catalog, input)
	if err != nil {
		return domain.SelectionEntry{}, err
	}
	t.recorder.SelectionAdded(entry.Kind)
	return entry, nil
}

// RemoveFromSelection drops one selection entry by id
func (t *Tracker) RemoveFromSelection(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Selection.Remove(id)
}

// SelectionView is the grouped selection with its totals
type SelectionView struct {
	Groups []domain.MealGroup     `json:"groups"`
	Totals domain.SelectionTotals `json:"totals"`
	Macros domain.MacroSummary    `json:"macros"`
	Count  int                    `json:"count"`
}

// Selection returns the current selection grouped by meal time with totals
func (t *Tracker) Selection() SelectionView {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := t.state.Selection.Entries()
	totals := ComputeTotals(entries)
	return SelectionView{
		Groups: GroupByMealTime(entries),
		Totals: totals,
		Macros: domain.SummarizeMacros(totals.Totals),
		Count:  len(entries),
	}
}

// ExportSelection renders the current selection as JSON or CSV and returns
// the attachment filename alongside.
func (t *Tracker) ExportSelection(format string) ([]byte, string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	data, err := ExportSelection(t.state.Selection.Entries(), format, now)
	if err != nil {
		return nil, "", err
	}
	return data, SelectionFilename(now.In(t.location), format), nil
}

// Commit logs the whole selection under date (today when empty) and clears
// the selection once the history is saved.
func (t *Tracker) Commit(ctx context.Context, date string) (domain.DailyLogEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if date == "" {
		date = t.Today()
	}

	entries := t.state.Selection.Entries()
	next, err := CommitSelection(t.state.History, entries, date, t.now())
	if err != nil {
		return domain.DailyLogEntry{}, err
	}
	if err := t.saveJSON(ctx, domain.StoreKeyDailyLogs, next); err != nil {
		return domain.DailyLogEntry{}, err
	}

	t.state.History = next
	t.state.Selection.Clear()

	t.recorder.MealsCommitted(len(entries))
	t.recorder.HistorySize(len(next))
	log.Printf("[Tracker] Committed %d items to %s", len(entries), date)

	return GetLog(next, date)
}

// RemoveMeal deletes the index-th meal of mealTime on date
func (t *Tracker) RemoveMeal(ctx context.Context, date string, mealTime domain.MealTime, index int) (domain.DailyLogEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := domain.ParseDate(date); err != nil {
		return domain.DailyLogEntry{}, err
	}
	next, err := RemoveMeal(t.state.History, date, mealTime, index)
	if err != nil {
		return domain.DailyLogEntry{}, err
	}
	if err := t.saveJSON(ctx, domain.StoreKeyDailyLogs, next); err != nil {
		return domain.DailyLogEntry{}, err
	}

	t.state.History = next
	t.recorder.MealRemoved()

	return GetLog(next, date)
}

// DailyLog returns the log for date (today when empty)
func (t *Tracker) DailyLog(date string) (domain.DailyLogEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if date == "" {
		date = t.Today()
	}
	return GetLog(t.state.History, date)
}

// DailySummary returns the macro headline for date (today when empty)
func (t *Tracker) DailySummary(date string) (DailySummary, error) {
	entry, err := t.DailyLog(date)
	if err != nil {
		return DailySummary{}, err
	}
	return Summarize(entry), nil
}

// Weekly returns calories for the seven days ending at date (today when empty)
func (t *Tracker) Weekly(date string) ([]DayCalories, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if date == "" {
		date = t.Today()
	}
	end, err := domain.ParseDate(date)
	if err != nil {
		return nil, err
	}
	return WeeklyCalories(t.state.History, end), nil
}

// ExportHistory renders the full history as JSON or CSV and returns the
// attachment filename alongside.
func (t *Tracker) ExportHistory(format string) ([]byte, string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = ExportHistoryJSON(t.state.History, now)
	case FormatCSV:
		data, err = ExportHistoryCSV(t.state.History)
	default:
		err = fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, "", err
	}

	t.recorder.HistoryExported(format)
	return data, HistoryFilename(now.In(t.location), format), nil
}

// ImportResult reports what an import changed
type ImportResult struct {
	Strategy     ImportStrategy `json:"strategy"`
	ImportedDays int            `json:"importedDays"`
	TotalDays    int            `json:"totalDays"`
}

// ImportHistory parses data in format and reconciles it with the current
// history using strategy. Nothing changes when parsing or saving fails.
func (t *Tracker) ImportHistory(ctx context.Context, format string, strategy ImportStrategy, data []byte) (ImportResult, error) {
	imported, err := ParseHistory(format, data)
	if err != nil {
		return ImportResult{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	next, err := ApplyImport(t.state.History, imported, strategy)
	if err != nil {
		return ImportResult{}, err
	}
	if err := t.saveJSON(ctx, domain.StoreKeyDailyLogs, next); err != nil {
		return ImportResult{}, err
	}
	t.state.History = next

	t.recorder.HistoryImported(format, string(strategy), len(imported))
	t.recorder.HistorySize(len(next))
	log.Printf("[Tracker] Imported %d days from %s (%s), history now has %d days",
		len(imported), format, strategy, len(next))

	return ImportResult{
		Strategy:     strategy,
		ImportedDays: len(imported),
		TotalDays:    len(next),
	}, nil
}

// loadJSON decodes the value stored under key into out. found is false when
// the key was never saved.
func (t *Tracker) loadJSON(ctx context.Context, key string, out interface{}) (bool, error) {
	value, err := t.store.Load(ctx, key)
	if errors.Is(err, domain.ErrBlobNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (t *Tracker) saveJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrPersistFailed, key, err)
	}
	if err := t.store.Save(ctx, key, string(data)); err != nil {
		log.Printf("[Tracker] Failed to save %s: %v", key, err)
		return fmt.Errorf("%w: %s: %v", domain.ErrPersistFailed, key, err)
	}
	return nil
}
