package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"onesmallstep/internal/logger"
	"onesmallstep/internal/model"
	"onesmallstep/internal/seed"
)

// NewDB opens a SQLite database and runs migrations. The seed catalog is
// inserted only when the schema is created, never on later starts.
func NewDB(dsn string, log *logger.Logger) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "data/onesmallstep.db"
	}

	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := gormlogger.New(
		log.With("component", "gorm").StdLog(),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: dbLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection: SQLite has a single writer, and ":memory:" databases
	// exist per connection.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	fresh := !db.Migrator().HasTable(&model.Phobia{})

	if err := db.AutoMigrate(&model.Phobia{}, &model.ExposureLevel{}, &model.ExposureStep{}, &model.UserProgress{}); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	if fresh {
		catalog, err := seed.Load()
		if err != nil {
			return nil, err
		}
		if err := insertSeedData(context.Background(), db, catalog.Phobias, catalog.Levels, catalog.Steps); err != nil {
			return nil, err
		}
		log.Info("seeded catalog", "phobias", len(catalog.Phobias), "levels", len(catalog.Levels), "steps", len(catalog.Steps))
	}

	return db, nil
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
