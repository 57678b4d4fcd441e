package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"onesmallstep/internal/live"
	"onesmallstep/internal/model"
)

// ProgressRepository handles user progress rows.
type ProgressRepository struct {
	db  *gorm.DB
	hub *live.Hub
}

func NewProgressRepository(db *gorm.DB, hub *live.Hub) *ProgressRepository {
	return &ProgressRepository{db: db, hub: hub}
}

// GetProgressForPhobia returns every row for the phobia, repeats included.
func (r *ProgressRepository) GetProgressForPhobia(ctx context.Context, phobiaID uint) ([]model.UserProgress, error) {
	var rows []model.UserProgress
	if err := r.db.WithContext(ctx).Where("phobia_id = ?", phobiaID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return rows, nil
}

// GetCompletedSteps returns completed rows across all phobias.
func (r *ProgressRepository) GetCompletedSteps(ctx context.Context) ([]model.UserProgress, error) {
	var rows []model.UserProgress
	if err := r.db.WithContext(ctx).Where("is_completed = ?", true).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("get completed steps: %w", err)
	}
	return rows, nil
}

// InsertProgress always appends a new row; any id on the record is ignored
// and replaced by the assigned one. Referenced ids are not checked.
func (r *ProgressRepository) InsertProgress(ctx context.Context, progress *model.UserProgress) error {
	progress.ID = 0
	if err := r.db.WithContext(ctx).Create(progress).Error; err != nil {
		return fmt.Errorf("insert progress: %w", err)
	}
	r.hub.Publish(live.TopicProgress)
	return nil
}

// UpdateProgress replaces the row with the record's id. Unknown ids are a no-op.
func (r *ProgressRepository) UpdateProgress(ctx context.Context, progress *model.UserProgress) error {
	if progress.ID == 0 {
		return fmt.Errorf("update progress: missing id")
	}
	err := r.db.WithContext(ctx).Model(progress).
		Select("phobia_id", "level_id", "step_id", "is_completed", "anxiety_rating", "completed_date", "notes").
		Updates(progress).Error
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	r.hub.Publish(live.TopicProgress)
	return nil
}

func (r *ProgressRepository) GetCompletedStepsCount(ctx context.Context, phobiaID uint) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UserProgress{}).
		Where("phobia_id = ? AND is_completed = ?", phobiaID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count completed steps: %w", err)
	}
	return int(count), nil
}

// GetTotalStepsCount counts the steps of every level owned by the phobia.
func (r *ProgressRepository) GetTotalStepsCount(ctx context.Context, phobiaID uint) (int, error) {
	db := r.db.WithContext(ctx)
	levelIDs := db.Model(&model.ExposureLevel{}).Select("id").Where("phobia_id = ?", phobiaID)

	var count int64
	if err := db.Model(&model.ExposureStep{}).Where("level_id IN (?)", levelIDs).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count total steps: %w", err)
	}
	return int(count), nil
}

// DeleteProgressForPhobia removes every row for the phobia. Catalog rows are
// left alone.
func (r *ProgressRepository) DeleteProgressForPhobia(ctx context.Context, phobiaID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("phobia_id = ?", phobiaID).Delete(&model.UserProgress{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete progress: %w", res.Error)
	}
	r.hub.Publish(live.TopicProgress)
	return res.RowsAffected, nil
}

func (r *ProgressRepository) WatchProgressForPhobia(ctx context.Context, phobiaID uint) *live.Subscription[[]model.UserProgress] {
	return live.Watch(ctx, r.hub, func(ctx context.Context) ([]model.UserProgress, error) {
		return r.GetProgressForPhobia(ctx, phobiaID)
	}, live.TopicProgress)
}

func (r *ProgressRepository) WatchCompletedSteps(ctx context.Context) *live.Subscription[[]model.UserProgress] {
	return live.Watch(ctx, r.hub, r.GetCompletedSteps, live.TopicProgress)
}
