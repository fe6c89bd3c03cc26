package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/seanwkelley/belief-sensitivity-explorer/adapters/postgres"
	"github.com/seanwkelley/belief-sensitivity-explorer/ui"
)

func main() {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Fatal("database connection failed: ", err)
	}
	defer db.Close()

	app, err := ui.NewApp(postgres.NewResultRepository(db))
	if err != nil {
		log.Fatal("failed to create report viewer: ", err)
	}

	port := os.Getenv("UI_PORT")
	if port == "" {
		port = "8090"
	}
	log.Printf("starting report viewer on http://localhost:%s", port)
	log.Fatal(app.Start(":" + port))
}
