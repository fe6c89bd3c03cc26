package main

import (
	"context"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/seanwkelley/belief-sensitivity-explorer/adapters/llm"
	"github.com/seanwkelley/belief-sensitivity-explorer/adapters/postgres"
	"github.com/seanwkelley/belief-sensitivity-explorer/app"
	"github.com/seanwkelley/belief-sensitivity-explorer/internal/api"
	"github.com/seanwkelley/belief-sensitivity-explorer/internal/config"
	"github.com/seanwkelley/belief-sensitivity-explorer/internal/probing"
)

func main() {
	// Local development convenience; a missing .env is fine
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("configuration error: ", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("database connection failed: ", err)
	}
	defer db.Close()

	repository := postgres.NewResultRepository(db)
	if impl, ok := repository.(*postgres.ResultRepositoryImpl); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := impl.EnsureSchema(ctx); err != nil {
			log.Fatal("schema setup failed: ", err)
		}
	}

	forecaster := llm.NewForecasterAdapter(llm.NewClient(cfg.AI))
	executor := probing.NewExecutor(forecaster, int64(cfg.Probes.MaxConcurrent))
	service := app.NewQuestionService(forecaster, repository, executor)

	server := api.NewServer(service)
	addr := ":" + cfg.Server.Port
	log.Printf("[API] belief sensitivity explorer listening on %s", addr)
	if err := server.Router().Run(addr); err != nil {
		log.Fatal("server failed: ", err)
	}
}
