package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/pantrychef/backend/config"
	"github.com/pageza/pantrychef/backend/internal/database"
	"github.com/pageza/pantrychef/backend/internal/importer"
	"github.com/pageza/pantrychef/backend/internal/logging"
	"github.com/pageza/pantrychef/backend/internal/service"
)

var (
	csvFile   string
	batchSize int
	userCount int
	password  string
)

var rootCmd = &cobra.Command{
	Use:          "importer",
	Short:        "Load recipes and demo accounts into the database",
	SilenceUsage: true,
}

var csvCmd = &cobra.Command{
	Use:   "csv",
	Short: "Import recipes from a dataset CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, db *gorm.DB, logger *zap.Logger) error {
			res, err := importer.New(db, batchSize, logger).ImportFile(ctx, csvFile)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			fmt.Printf("Import finished: %d imported, %d skipped.\n", res.Imported, res.Failed)
			return nil
		})
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Create demo accounts demo1..demoN",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, db *gorm.DB, logger *zap.Logger) error {
			auth := service.NewAuthService(db, "", 0)
			res, err := importer.SeedUsers(ctx, auth, userCount, password, logger)
			if err != nil {
				return fmt.Errorf("seed users: %w", err)
			}
			fmt.Printf("Created %d users, %d already existed. Password: %s\n", res.Imported, res.Failed, password)
			return nil
		})
	},
}

func init() {
	csvCmd.Flags().StringVarP(&csvFile, "file", "f", "", "path to the recipes CSV")
	csvCmd.MarkFlagRequired("file")
	csvCmd.Flags().IntVar(&batchSize, "batch-size", importer.DefaultBatchSize, "rows per insert statement")

	usersCmd.Flags().IntVarP(&userCount, "count", "n", 5, "number of demo accounts")
	usersCmd.Flags().StringVar(&password, "password", "testpassword123", "password for every demo account")

	rootCmd.AddCommand(csvCmd, usersCmd)
}

func withDB(ctx context.Context, fn func(context.Context, *gorm.DB, *zap.Logger) error) error {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Log.Level, "console")
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := database.New(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer database.Close(db)

	if err := database.RunMigrations(ctx, db, "migrations", logger); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return fn(ctx, db, logger)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
