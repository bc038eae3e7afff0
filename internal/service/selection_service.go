package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Anandhg36/RMIT-Hackathon/internal/models"
	appErrors "github.com/Anandhg36/RMIT-Hackathon/pkg/errors"
)

// selectionStore persists the per-user selection between requests.
type selectionStore interface {
	Get(ctx context.Context, userID string) (*models.Selection, error)
	Set(ctx context.Context, userID string, sel models.Selection) error
}

// currentScheduleProvider exposes the most recent reconciled collection.
type currentScheduleProvider interface {
	Current(ctx context.Context, userID string) ([]models.CourseSchedule, bool, error)
}

// DefaultSelection selects course 0 when any schedules exist, else nothing,
// always on the theory tab.
func DefaultSelection(size int) models.Selection {
	sel := models.Selection{Tab: models.TabTheory}
	if size > 0 {
		index := 0
		sel.Index = &index
	}
	return sel
}

// ApplySelectCourse moves the selection to index. Out-of-range indices are
// rejected and the previous selection is returned unchanged. Switching
// courses always resets the tab to theory.
func ApplySelectCourse(sel models.Selection, index, size int) (models.Selection, error) {
	if index < 0 || index >= size {
		return sel, appErrors.Clone(appErrors.ErrInvalidSelection, "course index out of range")
	}
	sel.Index = &index
	sel.Tab = models.TabTheory
	return sel, nil
}

// ApplySwitchTab changes the session tab without touching the course index.
func ApplySwitchTab(sel models.Selection, tab models.SessionTab) (models.Selection, error) {
	if !tab.Valid() {
		return sel, appErrors.Clone(appErrors.ErrInvalidSelection, "unknown session tab")
	}
	sel.Tab = tab
	return sel, nil
}

// RebindSelection carries a previous selection across a reconciliation pass
// by course identity: when the previously selected course id survives into
// the new collection the selection follows it (tab preserved), otherwise it
// falls back to the default.
func RebindSelection(prev models.Selection, prevList, next []models.CourseSchedule) models.Selection {
	if prev.Index == nil || *prev.Index < 0 || *prev.Index >= len(prevList) {
		return DefaultSelection(len(next))
	}
	wanted := prevList[*prev.Index].ID
	for i := range next {
		if next[i].ID == wanted {
			index := i
			return models.Selection{Index: &index, Tab: prev.Tab}
		}
	}
	return DefaultSelection(len(next))
}

// SelectionService applies selection transitions against the cached
// schedule collection and persists the result per user.
type SelectionService struct {
	store     selectionStore
	schedules currentScheduleProvider
	logger    *zap.Logger
}

// NewSelectionService constructs a SelectionService.
func NewSelectionService(store selectionStore, schedules currentScheduleProvider, logger *zap.Logger) *SelectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionService{store: store, schedules: schedules, logger: logger}
}

// Current returns the stored selection, deriving the default when none is
// stored yet.
func (s *SelectionService) Current(ctx context.Context, userID string) (models.Selection, error) {
	stored, err := s.store.Get(ctx, userID)
	if err != nil {
		return models.Selection{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load selection")
	}
	if stored != nil {
		return *stored, nil
	}
	size, err := s.collectionSize(ctx, userID)
	if err != nil {
		return models.Selection{}, err
	}
	return DefaultSelection(size), nil
}

// SelectCourse validates the index against the current collection and moves
// the selection there.
func (s *SelectionService) SelectCourse(ctx context.Context, userID string, index int) (models.Selection, error) {
	current, err := s.Current(ctx, userID)
	if err != nil {
		return models.Selection{}, err
	}
	size, err := s.collectionSize(ctx, userID)
	if err != nil {
		return models.Selection{}, err
	}
	next, err := ApplySelectCourse(current, index, size)
	if err != nil {
		return current, err
	}
	return next, s.persist(ctx, userID, next)
}

// SwitchTab flips between the theory and practical panes.
func (s *SelectionService) SwitchTab(ctx context.Context, userID string, tab models.SessionTab) (models.Selection, error) {
	current, err := s.Current(ctx, userID)
	if err != nil {
		return models.Selection{}, err
	}
	next, err := ApplySwitchTab(current, tab)
	if err != nil {
		return current, err
	}
	return next, s.persist(ctx, userID, next)
}

// Reset re-derives the default selection for the current collection.
func (s *SelectionService) Reset(ctx context.Context, userID string) (models.Selection, error) {
	size, err := s.collectionSize(ctx, userID)
	if err != nil {
		return models.Selection{}, err
	}
	next := DefaultSelection(size)
	return next, s.persist(ctx, userID, next)
}

func (s *SelectionService) collectionSize(ctx context.Context, userID string) (int, error) {
	if s.schedules == nil {
		return 0, nil
	}
	schedules, ok, err := s.schedules.Current(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule collection")
	}
	if !ok {
		return 0, nil
	}
	return len(schedules), nil
}

func (s *SelectionService) persist(ctx context.Context, userID string, sel models.Selection) error {
	if err := s.store.Set(ctx, userID, sel); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist selection")
	}
	return nil
}
