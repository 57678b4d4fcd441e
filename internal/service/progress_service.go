package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"onesmallstep/internal/live"
	"onesmallstep/internal/logger"
	"onesmallstep/internal/metrics"
	"onesmallstep/internal/model"
	"onesmallstep/internal/repository"
)

// percentWorkers bounds concurrent per-phobia count queries.
const percentWorkers = 4

// PhobiaProgress is the completion state of one phobia plan.
type PhobiaProgress struct {
	Phobia    model.Phobia
	Completed int
	Total     int
	Percent   int
}

// Overview is the aggregate progress screen.
type Overview struct {
	ActivePhobias  []PhobiaProgress
	CompletedSteps int
	Streak         int
	Weekly         []model.UserProgress
	Message        string
}

// ProgressService derives progress summaries and resets plans.
type ProgressService struct {
	catalog  *repository.CatalogRepository
	progress *repository.ProgressRepository
	log      *logger.Logger
}

func NewProgressService(catalog *repository.CatalogRepository, progress *repository.ProgressRepository, log *logger.Logger) *ProgressService {
	return &ProgressService{catalog: catalog, progress: progress, log: log.With("component", "ProgressService")}
}

// PhobiaProgress counts completed rows against the plan size.
func (s *ProgressService) PhobiaProgress(ctx context.Context, phobia model.Phobia) (PhobiaProgress, error) {
	completed, err := s.progress.GetCompletedStepsCount(ctx, phobia.ID)
	if err != nil {
		return PhobiaProgress{}, err
	}
	total, err := s.progress.GetTotalStepsCount(ctx, phobia.ID)
	if err != nil {
		return PhobiaProgress{}, err
	}
	return PhobiaProgress{
		Phobia:    phobia,
		Completed: completed,
		Total:     total,
		Percent:   metrics.CompletionPercentage(completed, total),
	}, nil
}

// Overview computes the progress screen as of now.
func (s *ProgressService) Overview(ctx context.Context, now time.Time) (Overview, error) {
	completed, err := s.progress.GetCompletedSteps(ctx)
	if err != nil {
		return Overview{}, err
	}
	active, err := s.catalog.ListActivePhobias(ctx)
	if err != nil {
		return Overview{}, err
	}

	perPhobia := make([]PhobiaProgress, len(active))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(percentWorkers)
	for i, phobia := range active {
		g.Go(func() error {
			p, err := s.PhobiaProgress(gctx, phobia)
			if err != nil {
				return err
			}
			perPhobia[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	streak := metrics.Streak(completed, now)
	return Overview{
		ActivePhobias:  perPhobia,
		CompletedSteps: len(completed),
		Streak:         streak,
		Weekly:         metrics.WeeklyProgress(completed, now),
		Message:        metrics.MotivationalMessage(streak, len(completed)),
	}, nil
}

// WatchOverview recomputes the overview after any progress or catalog write.
// clock supplies "now" for each evaluation.
func (s *ProgressService) WatchOverview(ctx context.Context, hub *live.Hub, clock func() time.Time) *live.Subscription[Overview] {
	return live.Watch(ctx, hub, func(ctx context.Context) (Overview, error) {
		return s.Overview(ctx, clock())
	}, live.TopicProgress, live.TopicCatalog)
}

// Reset deletes every progress row of the phobia.
func (s *ProgressService) Reset(ctx context.Context, phobiaID uint) (int64, error) {
	phobia, err := s.catalog.GetPhobiaByID(ctx, phobiaID)
	if err != nil {
		return 0, err
	}
	if phobia == nil {
		return 0, ErrUnknownPhobia
	}
	deleted, err := s.progress.DeleteProgressForPhobia(ctx, phobiaID)
	if err != nil {
		s.log.Error("reset failed", "phobia_id", phobiaID, "error", err)
		return 0, err
	}
	s.log.Info("progress reset", "phobia_id", phobiaID, "rows", deleted)
	return deleted, nil
}
