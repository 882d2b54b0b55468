package routes

import (
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"schema-modeler/controllers"
)

func SetupRoutes(e *echo.Echo, healthController *controllers.HealthController, modelController *controllers.ModelController) {
	// Health check route
	e.GET("/health", healthController.HealthCheck)

	// API routes
	api := e.Group("/api")

	api.GET("/tables", modelController.ListTables)
	api.POST("/generate", modelController.GenerateModel)
	api.POST("/ask", modelController.AskQuestion)

	// Serve static files if they exist (for combined deployment)
	staticDir := "./static"
	if _, err := os.Stat(staticDir); err == nil {
		e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
			Root:   "static",
			Index:  "index.html",
			HTML5:  true,
			Browse: false,
		}))
	}
}
