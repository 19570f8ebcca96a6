package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidQuantity is returned for zero, negative or non-numeric quantities
	ErrInvalidQuantity = errors.New("please enter a valid quantity")

	// ErrInvalidProduct is returned when a submitted product cannot be parsed or lacks required fields
	ErrInvalidProduct = errors.New("invalid product")

	// ErrInvalidRecipe is returned when a recipe fails validation
	ErrInvalidRecipe = errors.New("invalid recipe")

	// ErrProductNotFound is returned when a product index does not resolve in the catalog
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrRecipeNotFound is returned when a recipe index does not resolve
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrEntryNotFound is returned when a selection entry id is unknown
	ErrEntryNotFound = errors.New("selection entry not found")

	// ErrEmptySelection is returned when committing a selection with no entries
	ErrEmptySelection = errors.New("please add some foods first")

	// ErrInvalidDate is returned when a date is not in YYYY-MM-DD form
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

	// ErrMealNotFound is returned when a positional meal deletion matches nothing
	ErrMealNotFound = errors.New("meal not found in daily log")

	// ErrInvalidImport is returned when a history import document is malformed
	ErrInvalidImport = errors.New("invalid import data")

	// ErrUnsupportedFormat is returned for unknown export/import formats or strategies
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrBlobNotFound is returned by a BlobStore when a key has never been written
	ErrBlobNotFound = errors.New("blob not found")

	// ErrPersistFailed is returned when the blob store rejects a write
	ErrPersistFailed = errors.New("failed to persist state")
)
