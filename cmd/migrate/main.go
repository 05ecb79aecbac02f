package main

// Run database migrations:
//   go run ./cmd/migrate          # apply pending
//   go run ./cmd/migrate status
//   go run ./cmd/migrate down

import (
	"context"
	"log"
	"os"

	"ui-feedback-backend/internal/shared/config"
	"ui-feedback-backend/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	action := "up"
	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	switch action {
	case "up":
		err = db.RunMigrations(ctx, sqlDB)
	case "down":
		err = db.RollbackMigration(ctx, sqlDB)
	case "status":
		err = db.MigrationStatus(ctx, sqlDB)
	default:
		log.Printf("unknown action %q (want up, down or status)", action)
		os.Exit(2)
	}
	if err != nil {
		log.Printf("migrate %s failed: %v", action, err)
		os.Exit(1)
	}
}
