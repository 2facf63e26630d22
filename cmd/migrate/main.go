package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/pageza/pantrychef/backend/config"
	"github.com/pageza/pantrychef/backend/internal/database"
	"github.com/pageza/pantrychef/backend/internal/logging"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	dir := flag.String("dir", "migrations", "Directory holding the SQL migrations")
	flag.Parse()

	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("failed to load configuration: %v", err)
		}
		if cfg.Database.Driver != "postgres" {
			log.Fatal("SQL migrations require the postgres driver; sqlite is auto-migrated on startup")
		}
		dsn = cfg.Database.DSN()
	}

	logger, err := logging.New(os.Getenv("LOG_LEVEL"), "console")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("failed to reach database", zap.Error(err))
	}

	if *rollback {
		name, err := database.RollbackLastMigration(ctx, db, *dir, logger)
		if errors.Is(err, database.ErrNoMigrations) {
			fmt.Println("No migrations to rollback")
			return
		}
		if err != nil {
			logger.Fatal("rollback failed", zap.Error(err))
		}
		fmt.Printf("Successfully rolled back migration: %s\n", name)
		return
	}

	applied, err := database.ApplySQLMigrations(ctx, db, *dir, logger)
	if err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	for _, name := range applied {
		fmt.Printf("Applied migration: %s\n", name)
	}
	fmt.Println("All migrations applied successfully.")
}
