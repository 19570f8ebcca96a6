package http

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sanskarmk/NutritionTracker/internal/domain"
	"github.com/sanskarmk/NutritionTracker/internal/usecase"
)

// maxImportBytes caps history import bodies
const maxImportBytes = 10 << 20

// HandlerConfig holds delivery-level policy
type HandlerConfig struct {
	// AllowPastDeletes lets clients delete meals logged before today
	AllowPastDeletes bool
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	tracker *usecase.Tracker
	config  HandlerConfig
}

// NewHandler creates a new HTTP handler
func NewHandler(tracker *usecase.Tracker, config HandlerConfig) *Handler {
	return &Handler{
		tracker: tracker,
		config:  config,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "nutrition-tracker",
		"version": "1.0.0",
	})
}

// ListProducts handles GET /products?category=&q=
func (h *Handler) ListProducts(c *gin.Context) {
	var category domain.Category
	if raw := c.Query("category"); raw != "" {
		parsed, ok := domain.ParseCategory(raw)
		if !ok || parsed == domain.CategoryRecipe {
			respondError(c, fmt.Errorf("%w: unknown product category %q", domain.ErrInvalidRequest, raw))
			return
		}
		category = parsed
	}

	c.JSON(http.StatusOK, gin.H{"products": h.tracker.Products(category, c.Query("q"))})
}

// AddProduct handles POST /products with a raw product JSON body
func (h *Handler) AddProduct(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	match, err := h.tracker.AddProductJSON(c.Request.Context(), string(body))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, match)
}

// ListRecipes handles GET /recipes?q=
func (h *Handler) ListRecipes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"recipes": h.tracker.Recipes(c.Query("q"))})
}

// CreateRecipe handles POST /recipes
func (h *Handler) CreateRecipe(c *gin.Context) {
	var input domain.RecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRecipe, err))
		return
	}

	match, err := h.tracker.CreateRecipe(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, match)
}

// GetSelection handles GET /selection
func (h *Handler) GetSelection(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.Selection())
}

// AddProductToSelection handles POST /selection/products
func (h *Handler) AddProductToSelection(c *gin.Context) {
	var input usecase.AddProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidQuantity, err))
		return
	}

	entry, err := h.tracker.AddProductToSelection(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// AddRecipeToSelection handles POST /selection/recipes
func (h *Handler) AddRecipeToSelection(c *gin.Context) {
	var input usecase.AddRecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidQuantity, err))
		return
	}

	entry, err := h.tracker.AddRecipeToSelection(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// RemoveFromSelection handles DELETE /selection/:id
func (h *Handler) RemoveFromSelection(c *gin.Context) {
	if err := h.tracker.RemoveFromSelection(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportSelection handles GET /selection/export?format=json|csv
func (h *Handler) ExportSelection(c *gin.Context) {
	format := exportFormat(c)
	data, filename, err := h.tracker.ExportSelection(format)
	if err != nil {
		respondError(c, err)
		return
	}
	sendAttachment(c, format, filename, data)
}

type commitRequest struct {
	Date string `json:"date"`
}

// CommitSelection handles POST /logs/commit. An empty body logs to today.
func (h *Handler) CommitSelection(c *gin.Context) {
	var req commitRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
			return
		}
	}

	entry, err := h.tracker.Commit(c.Request.Context(), req.Date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"date": entry.Date, "log": entry})
}

// GetDailyLog handles GET /logs/:date ("today" is accepted)
func (h *Handler) GetDailyLog(c *gin.Context) {
	date := h.dateParam(c)
	entry, err := h.tracker.DailyLog(date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": entry.Date, "log": entry})
}

// GetDailySummary handles GET /logs/:date/summary
func (h *Handler) GetDailySummary(c *gin.Context) {
	summary, err := h.tracker.DailySummary(h.dateParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetWeekly handles GET /logs/:date/weekly
func (h *Handler) GetWeekly(c *gin.Context) {
	days, err := h.tracker.Weekly(h.dateParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}

// RemoveMeal handles DELETE /logs/:date/meals/:mealTime/:index
func (h *Handler) RemoveMeal(c *gin.Context) {
	date := h.dateParam(c)
	if _, err := domain.ParseDate(date); err != nil {
		respondError(c, err)
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondError(c, fmt.Errorf("%w: index must be an integer", domain.ErrInvalidRequest))
		return
	}
	// YYYY-MM-DD compares in calendar order
	if !h.config.AllowPastDeletes && date < h.tracker.Today() {
		c.JSON(http.StatusForbidden, gin.H{"error": "meals logged before today cannot be deleted"})
		return
	}

	entry, err := h.tracker.RemoveMeal(c.Request.Context(), date, domain.MealTime(c.Param("mealTime")), index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": entry.Date, "log": entry})
}

// ExportHistory handles GET /history/export?format=json|csv
func (h *Handler) ExportHistory(c *gin.Context) {
	format := exportFormat(c)
	data, filename, err := h.tracker.ExportHistory(format)
	if err != nil {
		respondError(c, err)
		return
	}
	sendAttachment(c, format, filename, data)
}

// ImportHistory handles POST /history/import?format=json|csv&strategy=merge|replace
// with the file contents as the request body.
func (h *Handler) ImportHistory(c *gin.Context) {
	strategy, err := usecase.ParseImportStrategy(c.Query("strategy"))
	if err != nil {
		respondError(c, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes))
	if err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidImport, err))
		return
	}

	result, err := h.tracker.ImportHistory(c.Request.Context(), exportFormat(c), strategy, body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) dateParam(c *gin.Context) string {
	date := c.Param("date")
	if date == "today" {
		return h.tracker.Today()
	}
	return date
}

// exportFormat reads ?format=, defaulting to json
func exportFormat(c *gin.Context) string {
	format := strings.ToLower(strings.TrimSpace(c.Query("format")))
	if format == "" {
		return usecase.FormatJSON
	}
	return format
}

func sendAttachment(c *gin.Context, format, filename string, data []byte) {
	contentType := "application/json"
	if format == usecase.FormatCSV {
		contentType = "text/csv"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

// respondError maps domain errors to status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrRecipeNotFound),
		errors.Is(err, domain.ErrEntryNotFound),
		errors.Is(err, domain.ErrMealNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidProduct),
		errors.Is(err, domain.ErrInvalidRecipe),
		errors.Is(err, domain.ErrEmptySelection),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidImport),
		errors.Is(err, domain.ErrUnsupportedFormat):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
