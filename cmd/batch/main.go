package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/seanwkelley/belief-sensitivity-explorer/adapters/postgres"
	"github.com/seanwkelley/belief-sensitivity-explorer/adapters/report"
	"github.com/seanwkelley/belief-sensitivity-explorer/internal/analysis"
)

// The batch pass reloads every stored question, recomputes its aggregate
// metrics from the raw probe results with the same fold the live path uses,
// and exports an Excel workbook with per-question rows and a corpus summary.
func main() {
	out := flag.String("out", "belief_sensitivity_report.xlsx", "output workbook path")
	recompute := flag.Bool("recompute", true, "recompute aggregate metrics from stored probe results")
	flag.Parse()

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

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	repository := postgres.NewResultRepository(db)
	results, err := repository.List(ctx)
	if err != nil {
		log.Fatal("failed to load results: ", err)
	}
	if len(results) == 0 {
		fmt.Println("no stored questions, nothing to export")
		return
	}

	if *recompute {
		for _, r := range results {
			r.AggregateMetrics = analysis.ComputeAggregateMetrics(r.ProbeResults)
		}
	}

	summary := report.Summarize(results)
	if err := report.ExportWorkbook(*out, results, summary); err != nil {
		log.Fatal("export failed: ", err)
	}

	fmt.Printf("exported %d questions (%d probes, %d successful) to %s\n",
		summary.Questions, summary.ProbeCount, summary.SuccessfulProbes, *out)
	if summary.MeanSSR != nil {
		fmt.Printf("mean SSR %.3f", *summary.MeanSSR)
		if summary.MedianSSR != nil {
			fmt.Printf(" (median %.3f)", *summary.MedianSSR)
		}
		fmt.Println()
	}
	if summary.MeanCriticalPathPremium != nil {
		fmt.Printf("mean critical-path premium %.3f", *summary.MeanCriticalPathPremium)
		if summary.PremiumPValue != nil {
			fmt.Printf(" (one-sided p=%.4f)", *summary.PremiumPValue)
		}
		fmt.Println()
	}
}
