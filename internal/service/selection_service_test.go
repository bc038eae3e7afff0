package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Anandhg36/RMIT-Hackathon/internal/models"
	appErrors "github.com/Anandhg36/RMIT-Hackathon/pkg/errors"
)

type fakeSelectionStore struct {
	stored map[string]models.Selection
	err    error
}

func newFakeSelectionStore() *fakeSelectionStore {
	return &fakeSelectionStore{stored: map[string]models.Selection{}}
}

func (f *fakeSelectionStore) Get(_ context.Context, userID string) (*models.Selection, error) {
	if f.err != nil {
		return nil, f.err
	}
	sel, ok := f.stored[userID]
	if !ok {
		return nil, nil
	}
	return &sel, nil
}

func (f *fakeSelectionStore) Set(_ context.Context, userID string, sel models.Selection) error {
	if f.err != nil {
		return f.err
	}
	f.stored[userID] = sel
	return nil
}

type fakeScheduleProvider struct {
	schedules []models.CourseSchedule
	ok        bool
	err       error
}

func (f *fakeScheduleProvider) Current(context.Context, string) ([]models.CourseSchedule, bool, error) {
	return f.schedules, f.ok, f.err
}

func twoCourses() []models.CourseSchedule {
	return []models.CourseSchedule{{ID: "1", Name: "Algo"}, {ID: "2", Name: "DM"}}
}

func TestDefaultSelection(t *testing.T) {
	sel := DefaultSelection(3)
	require.NotNil(t, sel.Index)
	assert.Equal(t, 0, *sel.Index)
	assert.Equal(t, models.TabTheory, sel.Tab)

	empty := DefaultSelection(0)
	assert.Nil(t, empty.Index)
	assert.Equal(t, models.TabTheory, empty.Tab)
}

func TestApplySelectCourseResetsTab(t *testing.T) {
	one := 1
	sel := models.Selection{Index: &one, Tab: models.TabPractical}

	next, err := ApplySelectCourse(sel, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, *next.Index)
	assert.Equal(t, models.TabTheory, next.Tab)
}

func TestApplySelectCourseOutOfRange(t *testing.T) {
	zero := 0
	sel := models.Selection{Index: &zero, Tab: models.TabPractical}

	next, err := ApplySelectCourse(sel, 5, 2)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidSelection.Code, appErrors.FromError(err).Code)
	// State unchanged on rejection.
	assert.Equal(t, sel, next)

	_, err = ApplySelectCourse(sel, -1, 2)
	require.Error(t, err)
}

func TestApplySwitchTabKeepsIndex(t *testing.T) {
	one := 1
	sel := models.Selection{Index: &one, Tab: models.TabTheory}

	next, err := ApplySwitchTab(sel, models.TabPractical)
	require.NoError(t, err)
	assert.Equal(t, 1, *next.Index)
	assert.Equal(t, models.TabPractical, next.Tab)

	_, err = ApplySwitchTab(sel, models.SessionTab("lecture"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidSelection.Code, appErrors.FromError(err).Code)
}

func TestSelectThenSwitchThenReset(t *testing.T) {
	store := newFakeSelectionStore()
	provider := &fakeScheduleProvider{schedules: twoCourses(), ok: true}
	svc := NewSelectionService(store, provider, zap.NewNop())
	ctx := context.Background()

	sel, err := svc.SelectCourse(ctx, "u1", 0)
	require.NoError(t, err)
	require.NotNil(t, sel.Index)

	sel, err = svc.SwitchTab(ctx, "u1", models.TabPractical)
	require.NoError(t, err)
	assert.Equal(t, models.TabPractical, sel.Tab)
	assert.Equal(t, 0, *sel.Index)

	sel, err = svc.Reset(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, *sel.Index)
	assert.Equal(t, models.TabTheory, sel.Tab)
}

func TestSelectCourseRejectedLeavesStateUnchanged(t *testing.T) {
	store := newFakeSelectionStore()
	provider := &fakeScheduleProvider{schedules: twoCourses(), ok: true}
	svc := NewSelectionService(store, provider, zap.NewNop())
	ctx := context.Background()

	_, err := svc.SelectCourse(ctx, "u1", 1)
	require.NoError(t, err)

	_, err = svc.SelectCourse(ctx, "u1", 5)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidSelection.Code, appErrors.FromError(err).Code)

	sel, err := svc.Current(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, *sel.Index)
}

func TestCurrentDerivesDefaultWhenNothingStored(t *testing.T) {
	store := newFakeSelectionStore()
	provider := &fakeScheduleProvider{schedules: twoCourses(), ok: true}
	svc := NewSelectionService(store, provider, zap.NewNop())

	sel, err := svc.Current(context.Background(), "fresh")
	require.NoError(t, err)
	require.NotNil(t, sel.Index)
	assert.Equal(t, 0, *sel.Index)
	assert.Equal(t, models.TabTheory, sel.Tab)
}

func TestCurrentEmptyCollectionSelectsNothing(t *testing.T) {
	store := newFakeSelectionStore()
	provider := &fakeScheduleProvider{ok: false}
	svc := NewSelectionService(store, provider, zap.NewNop())

	sel, err := svc.Current(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Nil(t, sel.Index)
}

func TestRebindSelectionFollowsCourseID(t *testing.T) {
	one := 1
	prev := models.Selection{Index: &one, Tab: models.TabPractical}
	prevList := twoCourses()
	// Course "2" moved to the front of the new pass.
	next := []models.CourseSchedule{{ID: "2"}, {ID: "3"}, {ID: "1"}}

	sel := RebindSelection(prev, prevList, next)
	require.NotNil(t, sel.Index)
	assert.Equal(t, 0, *sel.Index)
	assert.Equal(t, models.TabPractical, sel.Tab)
}

func TestRebindSelectionFallsBackToDefault(t *testing.T) {
	one := 1
	prev := models.Selection{Index: &one, Tab: models.TabPractical}
	prevList := twoCourses()
	next := []models.CourseSchedule{{ID: "7"}}

	sel := RebindSelection(prev, prevList, next)
	require.NotNil(t, sel.Index)
	assert.Equal(t, 0, *sel.Index)
	assert.Equal(t, models.TabTheory, sel.Tab)

	// Nothing previously selected: plain default.
	sel = RebindSelection(models.Selection{Tab: models.TabTheory}, nil, nil)
	assert.Nil(t, sel.Index)
}
