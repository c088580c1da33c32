package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"floorplan-engine/internal/common/config"
	"floorplan-engine/internal/common/middleware"
	"floorplan-engine/internal/planner/handlers"
	"floorplan-engine/internal/planner/network"
	"floorplan-engine/internal/planner/repository"
	"floorplan-engine/internal/planner/schema"
	"floorplan-engine/internal/planner/service"
	"floorplan-engine/internal/planner/tool"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Planner Service
// ============================================================

func main() {
	cfg := config.Load()

	tol, err := cfg.Tolerances()
	if err != nil {
		log.Fatalf("load tolerances: %v", err)
	}

	db, err := repository.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background()); err != nil {
		log.Fatalf("init db: %v", err)
	}

	planner := service.NewPlanner(repo, network.NewRules(tol), tool.DefaultSettings())
	plannerHandler := handlers.NewPlannerHandler(planner, schema.NewProjectValidator())

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Planner Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS(cfg.CORSOrigins))

	// ============================================================
	// Health Check Routes
	// ============================================================

	handlers.NewHealthHandler(db).Register(app)

	// ============================================================
	// Planner Routes
	// ============================================================

	plannerHandler.Register(app)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Planner Service on %s (env: %s)", addr, cfg.Environment)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
