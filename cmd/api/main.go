package main

import (
	"ai-course-concepts/config"
	apiconcepts "ai-course-concepts/internal/api/concepts"
	"ai-course-concepts/internal/api/healthcheck"
	apihybrid "ai-course-concepts/internal/api/hybrid"
	apiingest "ai-course-concepts/internal/api/ingest"
	apisearch "ai-course-concepts/internal/api/search"
	"ai-course-concepts/internal/api/upload"
	"ai-course-concepts/internal/core/conceptstore"
	"ai-course-concepts/internal/core/enrich"
	"ai-course-concepts/internal/core/generator"
	hybridcore "ai-course-concepts/internal/core/hybrid"
	"ai-course-concepts/internal/core/rag"
	"ai-course-concepts/internal/database"
	"ai-course-concepts/internal/database/model"
	"ai-course-concepts/internal/middleware"
	"ai-course-concepts/pkg/logger"
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	milvus "github.com/milvus-io/milvus-sdk-go/v2/client"
)

func main() {
	app := fiber.New(fiber.Config{
		AppName: config.Cfg.Server.AppName,
	})

	app.Use(middleware.PanicRecovery())
	if config.Cfg.Server.Concurrency > 0 {
		app.Use(middleware.ConnectionLimit(middleware.NewConnectionLimiter(config.Cfg.Server.Concurrency)))
	}

	db, err := database.GetDB()
	if err != nil {
		logger.Fatal(err, "database unavailable at startup")
	}
	if err := db.AutoMigrate(
		&model.Course{},
		&model.Book{},
		&model.Document{},
		&model.Chunk{},
		&model.ConceptMapRow{},
	); err != nil {
		logger.Fatal(err, "migrate failed")
	}

	// Milvus connectivity check on startup
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	cli, err := milvus.NewClient(ctx, milvus.Config{Address: config.Cfg.Milvus.Address})
	cancel()
	if err != nil {
		logger.Error(err, "milvus connect error")
	} else {
		cli.Close()
		logger.Info("milvus ok")
	}

	// Wiring: one store and one bounded backend, shared by every request.
	store := conceptstore.NewMySQLStore(db)
	backend := rag.NewMilvusBackend()
	bounded := rag.NewBoundedBackend(backend, time.Duration(config.Cfg.RAG.TimeoutSeconds)*time.Second)
	enricher := enrich.NewEnricher(enrich.NewRegexMiner())
	hybridSvc := hybridcore.NewService(store, bounded, enricher)
	gen := generator.NewOpenAIGenerator(store)

	// routes
	apihybrid.RegisterRoutes(app, hybridSvc)
	apiconcepts.RegisterRoutes(app, store, gen)
	apisearch.RegisterRoutes(app, backend)
	upload.RegisterRoutes(app)
	apiingest.RegisterRoutes(app)
	healthcheck.RegisterRoutes(app)

	addr := fmt.Sprintf(":%d", config.Cfg.Server.Port)
	if err := app.Listen(addr); err != nil {
		logger.Error(err, "server error")
	}
}
