package service

import (
	"context"
	"fmt"
	"strings"

	"onesmallstep/internal/live"
	"onesmallstep/internal/logger"
	"onesmallstep/internal/model"
	"onesmallstep/internal/repository"
)

// CategoryAll selects the whole catalog.
const CategoryAll = "all"

// BrowseResult is what the home list shows. Message is set when the list is
// empty and explains why.
type BrowseResult struct {
	Category string
	Query    string
	Phobias  []model.Phobia
	Message  string
}

// PhobiaDetails is the detail view of one phobia.
type PhobiaDetails struct {
	Phobia   model.Phobia
	Levels   []model.ExposureLevel
	Progress PhobiaProgress
}

// CatalogService provides browsing and activation on top of the catalog.
type CatalogService struct {
	catalog  *repository.CatalogRepository
	progress *ProgressService
	log      *logger.Logger
}

func NewCatalogService(catalog *repository.CatalogRepository, progress *ProgressService, log *logger.Logger) *CatalogService {
	return &CatalogService{catalog: catalog, progress: progress, log: log.With("component", "CatalogService")}
}

// Browse lists phobias for a category, or searches when query is not blank.
// A blank query falls back to the category listing.
func (s *CatalogService) Browse(ctx context.Context, category, query string) (BrowseResult, error) {
	category = normalizeCategory(category)
	res := BrowseResult{Category: category, Query: strings.TrimSpace(query)}

	var err error
	switch {
	case res.Query != "":
		res.Phobias, err = s.catalog.SearchPhobias(ctx, res.Query)
		if err == nil && len(res.Phobias) == 0 {
			res.Message = fmt.Sprintf("No phobias found matching '%s'", res.Query)
		}
	case category == CategoryAll:
		res.Phobias, err = s.catalog.ListPhobias(ctx)
		if err == nil && len(res.Phobias) == 0 {
			res.Message = "No phobias found."
		}
	default:
		res.Phobias, err = s.catalog.ListPhobiasByCategory(ctx, category)
		if err == nil && len(res.Phobias) == 0 {
			res.Message = fmt.Sprintf("No phobias found in category '%s'", category)
		}
	}
	if err != nil {
		s.log.Error("browse failed", "category", category, "query", res.Query, "error", err)
		return BrowseResult{}, err
	}
	return res, nil
}

// WatchBrowse re-runs Browse after every catalog write.
func (s *CatalogService) WatchBrowse(ctx context.Context, hub *live.Hub, category, query string) *live.Subscription[BrowseResult] {
	return live.Watch(ctx, hub, func(ctx context.Context) (BrowseResult, error) {
		return s.Browse(ctx, category, query)
	}, live.TopicCatalog)
}

// ToggleActive flips whether the user is working on the phobia.
func (s *CatalogService) ToggleActive(ctx context.Context, phobiaID uint) (*model.Phobia, error) {
	phobia, err := s.catalog.GetPhobiaByID(ctx, phobiaID)
	if err != nil {
		return nil, err
	}
	if phobia == nil {
		return nil, ErrUnknownPhobia
	}
	phobia.IsActive = !phobia.IsActive
	if err := s.catalog.UpdatePhobia(ctx, phobia); err != nil {
		return nil, err
	}
	s.log.Info("phobia toggled", "phobia_id", phobia.ID, "active", phobia.IsActive)
	return phobia, nil
}

// Details loads a phobia with its levels and overall completion.
func (s *CatalogService) Details(ctx context.Context, phobiaID uint) (*PhobiaDetails, error) {
	phobia, err := s.catalog.GetPhobiaByID(ctx, phobiaID)
	if err != nil {
		return nil, err
	}
	if phobia == nil {
		return nil, ErrUnknownPhobia
	}
	levels, err := s.catalog.GetLevelsForPhobia(ctx, phobiaID)
	if err != nil {
		return nil, err
	}
	progress, err := s.progress.PhobiaProgress(ctx, *phobia)
	if err != nil {
		return nil, err
	}
	return &PhobiaDetails{Phobia: *phobia, Levels: levels, Progress: progress}, nil
}

func normalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, CategoryAll) {
		return CategoryAll
	}
	return category
}
