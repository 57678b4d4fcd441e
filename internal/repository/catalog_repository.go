package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"onesmallstep/internal/live"
	"onesmallstep/internal/model"
)

// CatalogRepository reads phobias, levels and steps. Catalog rows are written
// once by the seed and afterwards only the phobia display fields change.
type CatalogRepository struct {
	db  *gorm.DB
	hub *live.Hub
}

func NewCatalogRepository(db *gorm.DB, hub *live.Hub) *CatalogRepository {
	return &CatalogRepository{db: db, hub: hub}
}

func (r *CatalogRepository) ListPhobias(ctx context.Context) ([]model.Phobia, error) {
	var phobias []model.Phobia
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&phobias).Error; err != nil {
		return nil, fmt.Errorf("list phobias: %w", err)
	}
	return phobias, nil
}

// ListPhobiasByCategory matches category exactly; unknown categories yield
// an empty list.
func (r *CatalogRepository) ListPhobiasByCategory(ctx context.Context, category string) ([]model.Phobia, error) {
	var phobias []model.Phobia
	if err := r.db.WithContext(ctx).Where("category = ?", category).Order("name ASC").Find(&phobias).Error; err != nil {
		return nil, fmt.Errorf("list phobias by category: %w", err)
	}
	return phobias, nil
}

// SearchPhobias is a case-insensitive substring match on name or scientific
// name. The empty query matches every phobia.
func (r *CatalogRepository) SearchPhobias(ctx context.Context, query string) ([]model.Phobia, error) {
	if query == "" {
		return r.ListPhobias(ctx)
	}
	var phobias []model.Phobia
	err := r.db.WithContext(ctx).
		Where("instr(lower(name), lower(?)) > 0 OR instr(lower(scientific_name), lower(?)) > 0", query, query).
		Order("name ASC").
		Find(&phobias).Error
	if err != nil {
		return nil, fmt.Errorf("search phobias: %w", err)
	}
	return phobias, nil
}

func (r *CatalogRepository) ListActivePhobias(ctx context.Context) ([]model.Phobia, error) {
	var phobias []model.Phobia
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&phobias).Error; err != nil {
		return nil, fmt.Errorf("list active phobias: %w", err)
	}
	return phobias, nil
}

// GetPhobiaByID returns nil when the id is unknown.
func (r *CatalogRepository) GetPhobiaByID(ctx context.Context, id uint) (*model.Phobia, error) {
	var phobia model.Phobia
	err := r.db.WithContext(ctx).First(&phobia, id).Error
	switch {
	case err == nil:
		return &phobia, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("get phobia: %w", err)
	}
}

func (r *CatalogRepository) GetLevelsForPhobia(ctx context.Context, phobiaID uint) ([]model.ExposureLevel, error) {
	var levels []model.ExposureLevel
	if err := r.db.WithContext(ctx).Where("phobia_id = ?", phobiaID).Order("level_number ASC").Find(&levels).Error; err != nil {
		return nil, fmt.Errorf("get levels: %w", err)
	}
	return levels, nil
}

// GetLevelByID returns nil when the id is unknown.
func (r *CatalogRepository) GetLevelByID(ctx context.Context, id uint) (*model.ExposureLevel, error) {
	var level model.ExposureLevel
	err := r.db.WithContext(ctx).First(&level, id).Error
	switch {
	case err == nil:
		return &level, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("get level: %w", err)
	}
}

func (r *CatalogRepository) GetStepsForLevel(ctx context.Context, levelID uint) ([]model.ExposureStep, error) {
	var steps []model.ExposureStep
	if err := r.db.WithContext(ctx).Where("level_id = ?", levelID).Order("step_number ASC").Find(&steps).Error; err != nil {
		return nil, fmt.Errorf("get steps: %w", err)
	}
	return steps, nil
}

// GetStepByID returns nil when the id is unknown.
func (r *CatalogRepository) GetStepByID(ctx context.Context, id uint) (*model.ExposureStep, error) {
	var step model.ExposureStep
	err := r.db.WithContext(ctx).First(&step, id).Error
	switch {
	case err == nil:
		return &step, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("get step: %w", err)
	}
}

// UpdatePhobia replaces the stored phobia with the same id.
func (r *CatalogRepository) UpdatePhobia(ctx context.Context, phobia *model.Phobia) error {
	err := r.db.WithContext(ctx).Model(phobia).
		Select("name", "scientific_name", "description", "icon_resource", "category", "is_active").
		Updates(phobia).Error
	if err != nil {
		return fmt.Errorf("update phobia: %w", err)
	}
	r.hub.Publish(live.TopicCatalog)
	return nil
}

// InsertSeedData bulk inserts catalog rows, replacing rows with the same id.
func (r *CatalogRepository) InsertSeedData(ctx context.Context, phobias []model.Phobia, levels []model.ExposureLevel, steps []model.ExposureStep) error {
	if err := insertSeedData(ctx, r.db, phobias, levels, steps); err != nil {
		return err
	}
	r.hub.Publish(live.TopicCatalog)
	return nil
}

func (r *CatalogRepository) WatchPhobias(ctx context.Context) *live.Subscription[[]model.Phobia] {
	return live.Watch(ctx, r.hub, r.ListPhobias, live.TopicCatalog)
}

func (r *CatalogRepository) WatchPhobiasByCategory(ctx context.Context, category string) *live.Subscription[[]model.Phobia] {
	return live.Watch(ctx, r.hub, func(ctx context.Context) ([]model.Phobia, error) {
		return r.ListPhobiasByCategory(ctx, category)
	}, live.TopicCatalog)
}

func (r *CatalogRepository) WatchSearch(ctx context.Context, query string) *live.Subscription[[]model.Phobia] {
	return live.Watch(ctx, r.hub, func(ctx context.Context) ([]model.Phobia, error) {
		return r.SearchPhobias(ctx, query)
	}, live.TopicCatalog)
}

func insertSeedData(ctx context.Context, db *gorm.DB, phobias []model.Phobia, levels []model.ExposureLevel, steps []model.ExposureStep) error {
	replace := clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(phobias) > 0 {
			if err := tx.Clauses(replace).CreateInBatches(phobias, 100).Error; err != nil {
				return fmt.Errorf("insert phobias: %w", err)
			}
		}
		if len(levels) > 0 {
			if err := tx.Clauses(replace).CreateInBatches(levels, 100).Error; err != nil {
				return fmt.Errorf("insert levels: %w", err)
			}
		}
		if len(steps) > 0 {
			if err := tx.Clauses(replace).CreateInBatches(steps, 100).Error; err != nil {
				return fmt.Errorf("insert steps: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert seed data: %w", err)
	}
	return nil
}
