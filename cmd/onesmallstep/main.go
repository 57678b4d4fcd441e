package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"onesmallstep/internal/config"
	"onesmallstep/internal/live"
	"onesmallstep/internal/logger"
	"onesmallstep/internal/repository"
	"onesmallstep/internal/service"
)

var (
	// Global flags
	dbPath  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "onesmallstep",
	Short: "One Small Step - gradual exposure therapy tracker",
	Long: `One Small Step helps you face a phobia gradually: pick one from the
catalog, work through four levels of exposure steps and track your streak.

Run "onesmallstep bot" to start the Telegram bot.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides DATABASE_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	catalogCmd.Flags().StringVar(&catalogCategory, "category", service.CategoryAll, "Category to list: common, rare or all")
	catalogCmd.Flags().StringVar(&catalogSearch, "search", "", "Case-insensitive name search")
	resetCmd.Flags().BoolVar(&resetConfirmed, "yes", false, "Delete without asking")

	rootCmd.AddCommand(botCmd, catalogCmd, progressCmd, resetCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app holds the wired dependencies shared by every command.
type app struct {
	cfg      config.Config
	log      *logger.Logger
	db       *gorm.DB
	hub      *live.Hub
	catalog  *service.CatalogService
	exposure *service.ExposureService
	progress *service.ProgressService
	reminder *service.ReminderService
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if verbose {
		cfg.LogMode = "dev"
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	db, err := repository.NewDB(cfg.DatabasePath, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("db: %w", err)
	}

	hub := live.NewHub(log)
	catalogRepo := repository.NewCatalogRepository(db, hub)
	progressRepo := repository.NewProgressRepository(db, hub)
	progress := service.NewProgressService(catalogRepo, progressRepo, log)

	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		hub:      hub,
		catalog:  service.NewCatalogService(catalogRepo, progress, log),
		exposure: service.NewExposureService(catalogRepo, progressRepo, log),
		progress: progress,
		reminder: service.NewReminderService(progress),
	}, nil
}

func (a *app) Close() {
	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Warn("close database", "error", err)
		}
	}
	a.log.Sync()
}
