package router

import (
	"github.com/VisaTrek/visa-trek-backend/config"
	"github.com/VisaTrek/visa-trek-backend/handlers"
	"github.com/VisaTrek/visa-trek-backend/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Dependencies holds everything required for setting up routes.
type Dependencies struct {
	Config             *config.Config
	HealthHandler      *handlers.HealthHandler
	CountryHandler     *handlers.CountryHandler
	ApplicationHandler *handlers.ApplicationHandler
	TripHandler        *handlers.TripHandler
	ChecklistHandler   *handlers.ChecklistHandler
	UploadHandler      *handlers.UploadHandler
	MappingHandler     *handlers.MappingHandler
	Logger             *zap.SugaredLogger
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.SecurityHeaders(deps.Config))
	r.Use(middleware.CORS(&deps.Config.Server))

	// Health and metrics
	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.GET("/countries", deps.CountryHandler.ListCountriesHandler)

		appRoutes := v1.Group("/applications")
		{
			appRoutes.POST("", deps.ApplicationHandler.CreateApplicationHandler)
			appRoutes.GET("", deps.ApplicationHandler.ListApplicationsHandler)
			appRoutes.POST("/clear", deps.ApplicationHandler.ClearApplicationsHandler)
			appRoutes.GET("/current", deps.ApplicationHandler.CurrentApplicationHandler)
			appRoutes.POST("/:id/activate", deps.ApplicationHandler.ActivateApplicationHandler)
			appRoutes.POST("/:id/duplicate", deps.ApplicationHandler.DuplicateApplicationHandler)
			appRoutes.DELETE("/:id", deps.ApplicationHandler.DeleteApplicationHandler)
		}

		v1.PATCH("/trip", deps.TripHandler.UpdateTripHandler)

		v1.GET("/checklist", deps.ChecklistHandler.GetChecklistHandler)
		v1.POST("/checklist/:itemId/toggle", deps.ChecklistHandler.ToggleChecklistItemHandler)

		v1.POST("/uploads", deps.UploadHandler.UploadDocumentHandler)
		v1.GET("/uploads", deps.UploadHandler.ListUploadsHandler)

		v1.GET("/extraction", deps.MappingHandler.GetExtractionHandler)
		v1.GET("/mapping", deps.MappingHandler.GetMappingHandler)
		v1.PUT("/mapping/:formField", deps.MappingHandler.UpdateMappingValueHandler)
	}

	return r
}
