package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"onesmallstep/internal/live"
	"onesmallstep/internal/logger"
	"onesmallstep/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDB(":memory:", logger.Nop())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func newTestRepos(t *testing.T) (*CatalogRepository, *ProgressRepository, *live.Hub) {
	t.Helper()
	db := newTestDB(t)
	hub := live.NewHub(logger.Nop())
	return NewCatalogRepository(db, hub), NewProgressRepository(db, hub), hub
}

func completedRow(phobiaID, levelID, stepID uint, at time.Time) *model.UserProgress {
	rating := 5
	return &model.UserProgress{
		PhobiaID:      phobiaID,
		LevelID:       levelID,
		StepID:        stepID,
		IsCompleted:   true,
		AnxietyRating: &rating,
		CompletedDate: model.NewMillis(at),
	}
}
