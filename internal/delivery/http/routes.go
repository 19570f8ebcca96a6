package http

import (
	"github.com/gin-gonic/gin"

	"github.com/sanskarmk/NutritionTracker/config"
	"github.com/sanskarmk/NutritionTracker/internal/infrastructure/metrics"
)

// SetupRouter creates and configures the Gin router. collector may be nil
// when metrics are disabled.
func SetupRouter(cfg *config.Config, handler *Handler, collector *metrics.Collector) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	if collector != nil {
		router.Use(MetricsMiddleware(collector))
	}
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	if collector != nil {
		router.GET("/metrics", gin.WrapH(collector.Handler()))
	}

	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst))
	{
		v1.GET("/products", handler.ListProducts)
		v1.POST("/products", handler.AddProduct)

		v1.GET("/recipes", handler.ListRecipes)
		v1.POST("/recipes", handler.CreateRecipe)

		selection := v1.Group("/selection")
		{
			selection.GET("", handler.GetSelection)
			selection.POST("/products", handler.AddProductToSelection)
			selection.POST("/recipes", handler.AddRecipeToSelection)
			selection.DELETE("/:id", handler.RemoveFromSelection)
			selection.GET("/export", handler.ExportSelection)
		}

		logs := v1.Group("/logs")
		{
			logs.POST("/commit", handler.CommitSelection)
			logs.GET("/:date", handler.GetDailyLog)
			logs.GET("/:date/summary", handler.GetDailySummary)
			logs.GET("/:date/weekly", handler.GetWeekly)
			logs.DELETE("/:date/meals/:mealTime/:index", handler.RemoveMeal)
		}

		history := v1.Group("/history")
		{
			history.GET("/export", handler.ExportHistory)
			history.POST("/import", handler.ImportHistory)
		}
	}

	return router
}
