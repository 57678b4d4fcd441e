package service

import (
	"context"
	"strings"
	"time"

	"onesmallstep/internal/logger"
	"onesmallstep/internal/model"
	"onesmallstep/internal/repository"
)

// StepCompletion is the input for completing an exposure step. LevelID and
// PhobiaID may be left zero; they are taken from the step.
type StepCompletion struct {
	PhobiaID      uint
	LevelID       uint
	StepID        uint
	AnxietyRating int
	Notes         string
	CompletedAt   time.Time
}

// LevelPlan is a level with its ordered steps.
type LevelPlan struct {
	Level model.ExposureLevel
	Steps []model.ExposureStep
}

// ExposureService records work on exposure steps.
type ExposureService struct {
	catalog  *repository.CatalogRepository
	progress *repository.ProgressRepository
	log      *logger.Logger
}

func NewExposureService(catalog *repository.CatalogRepository, progress *repository.ProgressRepository, log *logger.Logger) *ExposureService {
	return &ExposureService{catalog: catalog, progress: progress, log: log.With("component", "ExposureService")}
}

// Level loads a level and its steps.
func (s *ExposureService) Level(ctx context.Context, levelID uint) (*LevelPlan, error) {
	level, err := s.catalog.GetLevelByID(ctx, levelID)
	if err != nil {
		return nil, err
	}
	if level == nil {
		return nil, ErrUnknownLevel
	}
	steps, err := s.catalog.GetStepsForLevel(ctx, levelID)
	if err != nil {
		return nil, err
	}
	return &LevelPlan{Level: *level, Steps: steps}, nil
}

// CompleteStep appends a completed progress row. Completing the same step
// again appends another row.
func (s *ExposureService) CompleteStep(ctx context.Context, in StepCompletion) (*model.UserProgress, error) {
	if in.AnxietyRating < 1 || in.AnxietyRating > 10 {
		return nil, ErrInvalidRating
	}
	level, err := s.resolve(ctx, &in)
	if err != nil {
		return nil, err
	}

	rating := in.AnxietyRating
	completedAt := in.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}
	row := &model.UserProgress{
		PhobiaID:      level.PhobiaID,
		LevelID:       level.ID,
		StepID:        in.StepID,
		IsCompleted:   true,
		AnxietyRating: &rating,
		CompletedDate: model.NewMillis(completedAt),
		Notes:         optionalText(in.Notes),
	}
	if err := s.progress.InsertProgress(ctx, row); err != nil {
		s.log.Error("complete step failed", "step_id", in.StepID, "error", err)
		return nil, err
	}
	s.log.Info("step completed", "step_id", row.StepID, "phobia_id", row.PhobiaID, "rating", rating)
	return row, nil
}

// LogAttempt records that a step was tried without completing it.
func (s *ExposureService) LogAttempt(ctx context.Context, stepID uint, notes string) (*model.UserProgress, error) {
	in := StepCompletion{StepID: stepID}
	level, err := s.resolve(ctx, &in)
	if err != nil {
		return nil, err
	}
	row := &model.UserProgress{
		PhobiaID: level.PhobiaID,
		LevelID:  level.ID,
		StepID:   stepID,
		Notes:    optionalText(notes),
	}
	if err := s.progress.InsertProgress(ctx, row); err != nil {
		return nil, err
	}
	s.log.Info("step attempt logged", "step_id", stepID)
	return row, nil
}

// resolve checks that the step exists and matches the given level and phobia.
func (s *ExposureService) resolve(ctx context.Context, in *StepCompletion) (*model.ExposureLevel, error) {
	step, err := s.catalog.GetStepByID(ctx, in.StepID)
	if err != nil {
		return nil, err
	}
	if step == nil || (in.LevelID != 0 && in.LevelID != step.LevelID) {
		return nil, ErrUnknownStep
	}
	level, err := s.catalog.GetLevelByID(ctx, step.LevelID)
	if err != nil {
		return nil, err
	}
	if level == nil || (in.PhobiaID != 0 && in.PhobiaID != level.PhobiaID) {
		return nil, ErrUnknownStep
	}
	return level, nil
}

func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
