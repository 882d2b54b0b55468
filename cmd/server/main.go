package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"schema-modeler/cache"
	"schema-modeler/config"
	"schema-modeler/controllers"
	"schema-modeler/internal/database"
	"schema-modeler/internal/openai"
	"schema-modeler/internal/pipeline"
	"schema-modeler/routes"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := database.Open(context.Background(), cfg.DSN(), cfg.Database.Schema)
	if err != nil {
		log.Fatalf("Failed to connect to the metadata source: %v", err)
	}
	defer func() { _ = store.Close() }()

	generator := pipeline.NewGenerator(cfg, store, cache.NewCache(cfg), openai.NewClient(cfg))

	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize controllers
	healthController := controllers.NewHealthController()
	modelController := controllers.NewModelController(generator)

	// Setup routes
	routes.SetupRoutes(e, healthController, modelController)

	// Start server
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", cfg.Server.Port)))
}
