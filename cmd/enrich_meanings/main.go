// Command enrich_meanings asks a local LLM for extra accepted Thai meanings
// and stores them on the questions of one level or of every level.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"vocab-quiz/internal/adapter/enricher"
	"vocab-quiz/internal/config"
	"vocab-quiz/internal/database"
	"vocab-quiz/internal/logger"
	"vocab-quiz/internal/repository"
	"vocab-quiz/internal/service"
)

func main() {
	level := flag.Int("level", 0, "level number to enrich (default: all levels)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()
	log.Info("Enrichment starting up...", zap.String("model", cfg.LLM.Model))

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	suggester, err := enricher.NewOllamaSuggester(cfg.LLM)
	if err != nil {
		log.Fatal("Failed to initialize Ollama client", zap.Error(err))
	}

	levelRepo := repository.NewLevelDatabaseAdapter(db)
	svc := service.NewEnrichService(levelRepo, repository.NewQuestionDatabaseAdapter(db), suggester, cfg.Enricher)

	numbers := []int{*level}
	if *level <= 0 {
		levels, err := levelRepo.ListLevels(ctx)
		if err != nil {
			log.Fatal("Failed to list levels", zap.Error(err))
		}
		numbers = numbers[:0]
		for _, l := range levels {
			numbers = append(numbers, l.Number)
		}
	}

	for _, n := range numbers {
		report, err := svc.EnrichLevel(ctx, n)
		if err != nil {
			log.Error("Enrichment failed", zap.Int("level", n), zap.Error(err))
			continue
		}
		log.Info("Level enriched",
			zap.Int("level", n),
			zap.Int("total", report.Total),
			zap.Int("updated", report.Updated),
			zap.Int("skipped", report.Skipped),
			zap.Int("failed", report.Failed))
	}
}
