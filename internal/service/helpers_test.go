package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"onesmallstep/internal/live"
	"onesmallstep/internal/logger"
	"onesmallstep/internal/repository"
)

type fixture struct {
	db       *gorm.DB
	hub      *live.Hub
	catalog  *CatalogService
	exposure *ExposureService
	progress *ProgressService
	reminder *ReminderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.Nop()
	db, err := repository.NewDB(":memory:", log)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	hub := live.NewHub(log)
	catalogRepo := repository.NewCatalogRepository(db, hub)
	progressRepo := repository.NewProgressRepository(db, hub)
	progress := NewProgressService(catalogRepo, progressRepo, log)

	return &fixture{
		db:       db,
		hub:      hub,
		catalog:  NewCatalogService(catalogRepo, progress, log),
		exposure: NewExposureService(catalogRepo, progressRepo, log),
		progress: progress,
		reminder: NewReminderService(progress),
	}
}
