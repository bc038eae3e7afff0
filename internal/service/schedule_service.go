package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Anandhg36/RMIT-Hackathon/internal/models"
	appErrors "github.com/Anandhg36/RMIT-Hackathon/pkg/errors"
)

type rosterSource interface {
	Courses(ctx context.Context, userID string) ([]models.Course, error)
}

type classmateSource interface {
	Results(ctx context.Context, userID string) (*models.MatchResults, error)
}

type scheduleReconciler interface {
	Reconcile(roster []models.Course, matched []models.MatchedRow, unmatched []models.NoMatchRow) []models.CourseSchedule
}

// ScheduleServiceConfig tunes fetch and cache behaviour.
type ScheduleServiceConfig struct {
	FetchTimeout time.Duration
	CacheTTL     time.Duration
	// PreserveSelection rebinds the previous selection by course id across
	// a pass instead of resetting to course 0.
	PreserveSelection bool
}

// ScheduleService orchestrates the two upstream fetches, joins them, and
// hands the snapshot pair to the reconciliation engine. A failure of either
// fetch is fatal to the whole pass: partial data is never reconciled and
// the previously cached collection stays untouched.
type ScheduleService struct {
	roster     rosterSource
	classmates classmateSource
	reconciler scheduleReconciler
	cache      *CacheService
	selections selectionStore
	metrics    *MetricsService
	logger     *zap.Logger
	cfg        ScheduleServiceConfig
}

// ScheduleServiceParams groups constructor dependencies.
type ScheduleServiceParams struct {
	Roster     rosterSource
	Classmates classmateSource
	Reconciler scheduleReconciler
	Cache      *CacheService
	Selections selectionStore
	Metrics    *MetricsService
	Logger     *zap.Logger
	Config     ScheduleServiceConfig
}

// NewScheduleService constructs a ScheduleService with sane defaults.
func NewScheduleService(params ScheduleServiceParams) *ScheduleService {
	cfg := params.Config
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		roster:     params.Roster,
		classmates: params.Classmates,
		reconciler: params.Reconciler,
		cache:      params.Cache,
		selections: params.Selections,
		metrics:    params.Metrics,
		logger:     logger,
		cfg:        cfg,
	}
}

func scheduleCacheKey(userID string) string {
	return fmt.Sprintf("sched:user:%s", userID)
}

// Refresh runs a full reconciliation pass: both upstreams are fetched
// concurrently and joined, then the engine runs synchronously over the
// exclusively-owned snapshots. Cancelling ctx abandons the join; a late
// response is discarded without touching cached state.
func (s *ScheduleService) Refresh(ctx context.Context, userID string) ([]models.CourseSchedule, models.Selection, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	var (
		roster  []models.Course
		results *models.MatchResults
	)

	start := time.Now()
	g, gctx := errgroup.WithContext(fetchCtx)
	g.Go(func() error {
		courses, err := s.roster.Courses(gctx, userID)
		if err != nil {
			return fmt.Errorf("roster fetch: %w", err)
		}
		roster = courses
		return nil
	})
	g.Go(func() error {
		matches, err := s.classmates.Results(gctx, userID)
		if err != nil {
			return fmt.Errorf("classmate match fetch: %w", err)
		}
		results = matches
		return nil
	})

	if err := g.Wait(); err != nil {
		s.metrics.ObserveScheduleJoin("error", time.Since(start))
		s.logger.Warn("schedule join failed", zap.String("user_id", userID), zap.Error(err))
		return nil, models.Selection{}, appErrors.Wrap(err, appErrors.ErrUpstreamJoin.Code, appErrors.ErrUpstreamJoin.Status, "failed to load schedule sources")
	}
	s.metrics.ObserveScheduleJoin("success", time.Since(start))

	if results == nil {
		results = &models.MatchResults{}
	}
	schedules := s.reconciler.Reconcile(roster, results.Matched, results.Unmatched)

	selection := s.deriveSelection(ctx, userID, schedules)

	if err := s.cache.Set(ctx, scheduleCacheKey(userID), schedules, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("schedule cache write failed", zap.String("user_id", userID), zap.Error(err))
	}
	if s.selections != nil {
		if err := s.selections.Set(ctx, userID, selection); err != nil {
			s.logger.Warn("selection persist failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	return schedules, selection, nil
}

// Current returns the cached collection from the most recent successful
// pass, when one exists.
func (s *ScheduleService) Current(ctx context.Context, userID string) ([]models.CourseSchedule, bool, error) {
	var cached []models.CourseSchedule
	hit, err := s.cache.Get(ctx, scheduleCacheKey(userID), &cached)
	if err != nil {
		return nil, false, err
	}
	if !hit {
		return nil, false, nil
	}
	return cached, true, nil
}

// deriveSelection re-derives the default selection for a fresh pass,
// optionally carrying the previous selection over by course identity.
func (s *ScheduleService) deriveSelection(ctx context.Context, userID string, schedules []models.CourseSchedule) models.Selection {
	if !s.cfg.PreserveSelection || s.selections == nil {
		return DefaultSelection(len(schedules))
	}
	prev, err := s.selections.Get(ctx, userID)
	if err != nil || prev == nil {
		return DefaultSelection(len(schedules))
	}
	prevList, ok, err := s.Current(ctx, userID)
	if err != nil || !ok {
		return DefaultSelection(len(schedules))
	}
	return RebindSelection(*prev, prevList, schedules)
}
