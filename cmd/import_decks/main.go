// Command import_decks loads vocabulary decks (CSV, XLSX or YAML) into the
// level catalog. Each file replaces the questions of its level.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"vocab-quiz/internal/config"
	"vocab-quiz/internal/database"
	"vocab-quiz/internal/importer"
	"vocab-quiz/internal/logger"
	"vocab-quiz/internal/repository"
	"vocab-quiz/internal/service"
)

func main() {
	dir := flag.String("dir", "data", "directory scanned for deck files")
	level := flag.Int("level", 0, "level number for every file (default: derived from the file name)")
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

	files := flag.Args()
	if len(files) == 0 {
		files, err = deckFiles(*dir)
		if err != nil {
			log.Fatal("Failed to list deck directory", zap.String("dir", *dir), zap.Error(err))
		}
	}
	if len(files) == 0 {
		log.Warn("No deck files found", zap.String("dir", *dir))
		return
	}

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	decks := service.NewDeckService(
		repository.NewLevelDatabaseAdapter(db),
		repository.NewQuestionDatabaseAdapter(db),
		repository.NewTransactionManagerAdapter(db),
		cfg.Quiz.DefaultPassingScore,
	)

	failed := 0
	for _, path := range files {
		if err := importFile(ctx, decks, path, *level, log); err != nil {
			log.Error("Deck import failed", zap.String("file", path), zap.Error(err))
			failed++
		}
	}
	log.Info("Deck import finished", zap.Int("files", len(files)), zap.Int("failed", failed))
	if failed > 0 {
		os.Exit(1)
	}
}

func importFile(ctx context.Context, decks service.DeckService, path string, level int, log *zap.Logger) error {
	res, err := importer.LoadFile(path, level)
	if err != nil {
		return err
	}
	for _, rowErr := range res.Errors {
		log.Warn("Skipping row", zap.String("file", path), zap.Int("row", rowErr.Row), zap.String("reason", rowErr.Message))
	}

	report, err := decks.ImportDeck(ctx, res.Deck)
	if err != nil {
		return err
	}
	log.Info("Imported deck",
		zap.String("file", path),
		zap.Int("level", report.LevelNumber),
		zap.Int("imported", report.Imported),
		zap.Int("skipped", report.Skipped+len(res.Errors)))
	return nil
}

func deckFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if !e.IsDir() && importer.IsDeckFile(path) {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}
