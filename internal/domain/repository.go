package domain

import "context"

// Persistence keys for the three documents the tracker stores
const (
	StoreKeyProducts  = "nutrition_products"
	StoreKeyRecipes   = "nutrition_recipes"
	StoreKeyDailyLogs = "nutrition_daily_logs"
)

// BlobStore is an opaque key to string store. Writes replace the whole value.
type BlobStore interface {
	// Load returns ErrBlobNotFound when the key was never saved
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key string, value string) error
}

// Recorder receives tracker activity for metrics
type Recorder interface {
	SelectionAdded(kind EntryKind)
	MealsCommitted(count int)
	MealRemoved()
	HistoryExported(format string)
	HistoryImported(format, strategy string, days int)
	HistorySize(days int)
}

// NopRecorder discards everything
type NopRecorder struct{}

func (NopRecorder) SelectionAdded(EntryKind)            {}
func (NopRecorder) MealsCommitted(int)                  {}
func (NopRecorder) MealRemoved()                        {}
func (NopRecorder) HistoryExported(string)              {}
func (NopRecorder) HistoryImported(string, string, int) {}
func (NopRecorder) HistorySize(int)                     {}
