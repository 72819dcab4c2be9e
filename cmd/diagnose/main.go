package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"ask-engine-be/internal/bootstrap"
	"ask-engine-be/internal/config"
	"ask-engine-be/internal/service"
	"ask-engine-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

// Runs one query through the full answering pipeline and prints per-stage
// timings. Useful for checking retrieval quality and model latency without
// standing up the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using system env")
	}

	query := "What documents do I need for a study permit application?"
	if len(os.Args) > 1 {
		query = os.Args[1]
	}

	cfg := config.Load()

	dsn := cfg.Database.Connection
	if dsn == "" {
		log.Fatal("DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Failed to connect to DB:", err)
	}

	container := bootstrap.NewContainer(db, cfg)

	color.Cyan("🚀 Answer Pipeline Diagnostic\n")
	color.Yellow("Query: %s", query)
	fmt.Println()

	res, err := container.AskService.Ask(context.Background(), query, service.AskOptions{})
	if err != nil {
		color.Red("Pipeline failed: %v", err)
		os.Exit(1)
	}

	color.Green("Answer:")
	fmt.Println(res.Answer)
	fmt.Println()

	color.Green("Sources (%d):", len(res.Sources))
	for i, src := range res.Sources {
		fmt.Printf("  %2d. [%.4f] %s / %s\n", i+1, src.Similarity, src.Source, src.Title)
	}
	fmt.Println()

	color.Green("Timings:")
	stages := make([]string, 0, len(res.Timings))
	for stage := range res.Timings {
		stages = append(stages, stage)
	}
	sort.Strings(stages)
	for _, stage := range stages {
		fmt.Printf("  %-22s %8.2f ms\n", stage, res.Timings[stage])
	}
}
