package main

import (
	"log"
	"net/http"

	_ "go-stats-dashboard/docs"
	"go-stats-dashboard/internal/api"
	"go-stats-dashboard/internal/api/handler"
	"go-stats-dashboard/internal/config"
	"go-stats-dashboard/internal/pipeline"
	"go-stats-dashboard/internal/session"
	"go-stats-dashboard/internal/store"
	"go-stats-dashboard/pkg/router"

	"github.com/joho/godotenv"
)

// @title Stats Dashboard API
// @version 1.0
// @description Livestock and penguin dashboards over tabular data.
// @host localhost:8080
// @BasePath /api/v1
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("ℹ️ No .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	// Init DB
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer st.Close()

	loader := &pipeline.SourceLoader{
		Client: &http.Client{Timeout: cfg.Server.HTTPTimeout},
		Livestock: pipeline.Source{
			Location:  cfg.Livestock.File,
			Encoding:  cfg.Livestock.Encoding,
			Delimiter: cfg.Livestock.Delimiter,
		},
		ReferenceURL: cfg.Livestock.ReferenceURL,
		PenguinsURL:  cfg.Penguins.URL,
	}

	h := handler.NewDashboardHandler(session.NewManager(loader), st, handler.Defaults{
		CategoryColumn: cfg.Livestock.CategoryColumn,
		MetricColumns:  cfg.Livestock.MetricColumns,
		Reducer:        cfg.Livestock.DefaultReducer,
		Separators:     cfg.Livestock.Separators,
	})

	// Create router
	r := router.New()

	// Register API routes
	api.RegisterRoutes(r, h)

	// Start server
	if err := r.Start(":"+cfg.Server.Port, cfg.Server.HTTPTimeout); err != nil {
		log.Fatalf("❌ Server stopped: %v", err)
	}
}
