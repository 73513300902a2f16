package main

import (
	"context"
	"flag"
	"log"
	"time"

	"photodrop/internal/config"
	"photodrop/internal/database"
	"photodrop/internal/modules/ingest"
	"photodrop/internal/repository"
	"photodrop/internal/storage"

	"github.com/joho/godotenv"
)

// Sweeps the storage tree for artifacts whose database commit never landed.
// Safe to run on a schedule; a second run right after the first removes
// nothing.
func main() {
	grace := flag.Duration("grace", time.Hour, "skip files younger than this, they may still be committing")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	store := storage.New(cfg.StoragePath)
	uploadRepo := repository.NewUploadRepository(db)

	r := ingest.NewReconciler(uploadRepo, store, *grace)
	report, err := r.Run(context.Background())
	if err != nil {
		log.Fatalf("reconcile failed: %v", err)
	}

	log.Printf("reconcile completed: scanned=%d removed=%d skipped=%d",
		report.Scanned, report.Removed, report.Skipped)
}
