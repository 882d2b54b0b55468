package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"schema-modeler/cache"
	"schema-modeler/cli"
	"schema-modeler/config"
	"schema-modeler/controllers"
	"schema-modeler/internal/database"
	"schema-modeler/internal/openai"
	"schema-modeler/internal/pipeline"
	"schema-modeler/routes"
)

func main() {
	mode := flag.String("mode", "server", "Mode to run: 'server' or 'cli'")
	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	generator, store, err := buildGenerator(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to the metadata source: %v", err)
	}
	defer func() { _ = store.Close() }()

	switch *mode {
	case "server":
		runServer(cfg, generator)
	case "cli":
		runCLI(generator)
	default:
		fmt.Printf("Unknown mode: %s\n", *mode)
		fmt.Println("Available modes: server, cli")
		os.Exit(1)
	}
}

func buildGenerator(cfg *config.Config) (*pipeline.Generator, *database.Store, error) {
	store, err := database.Open(context.Background(), cfg.DSN(), cfg.Database.Schema)
	if err != nil {
		return nil, nil, err
	}

	generator := pipeline.NewGenerator(cfg, store, cache.NewCache(cfg), openai.NewClient(cfg))
	return generator, store, nil
}

func runServer(cfg *config.Config, generator *pipeline.Generator) {
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

func runCLI(generator *pipeline.Generator) {
	repl := cli.NewREPL(generator)
	repl.Start()
}
