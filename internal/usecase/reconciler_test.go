package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/catalog-sync/internal/entity"
	"github.com/user/catalog-sync/internal/matcher"
)

type reconcileFixture struct {
	catalog  *memCatalog
	attempts *memAttempts
	matcher  *stubMatcher
	rec      Reconciler
}

func newReconcileFixture(threshold float64) *reconcileFixture {
	f := &reconcileFixture{
		catalog: newMemCatalog(
			&entity.CatalogEntry{ID: 1, Name: "Notion", Developer: "Notion Labs", Description: "Workspace"},
			&entity.CatalogEntry{ID: 2, Name: "Bear", Developer: entity.UnknownValue},
			&entity.CatalogEntry{ID: 3, Name: "Xcode", CanonicalID: ptr("497799835"), CanonicalURL: ptr("https://apps.apple.com/app/id497799835")},
			&entity.CatalogEntry{ID: 5, Name: "Rectangle", Developer: "Ryan Hanson"},
		),
		attempts: &memAttempts{},
		matcher: &stubMatcher{results: map[string]matcher.Result{
			"Notion":    {Found: true, Confidence: 0.95, CanonicalID: "1232780281", CanonicalURL: "https://apps.apple.com/app/id1232780281"},
			"Rectangle": {Found: true, Confidence: 0.85, CanonicalID: "1095678254", CanonicalURL: "https://apps.apple.com/app/id1095678254"},
		}},
	}
	f.rec = NewReconciler(f.catalog, f.attempts, f.matcher, ReconcileSettings{AutoApplyThreshold: threshold}, zap.NewNop())
	return f
}

func TestReconcileAutoApply(t *testing.T) {
	f := newReconcileFixture(0.9)

	res, err := f.rec.Reconcile(context.Background(), ReconcileRequest{EntryIDs: []int64{1, 2, 3, 4, 5}, AutoApply: true})
	require.NoError(t, err)

	assert.Equal(t, ReconcileSummary{Total: 5, Found: 2, AutoApplied: 1, Failed: 2, Skipped: 1}, res.Summary)
	require.Len(t, res.Results, 5)

	notion := res.Results[0]
	assert.Equal(t, entity.ResultOK, notion.Status)
	assert.True(t, notion.AutoApplied)
	assert.Equal(t, "1232780281", notion.CanonicalID)

	assert.Equal(t, entity.ResultFailed, res.Results[1].Status)
	assert.NotEmpty(t, res.Results[1].Error)
	assert.Equal(t, entity.ResultSkipped, res.Results[2].Status)
	assert.Equal(t, entity.ResultFailed, res.Results[3].Status)
	assert.Equal(t, "catalog entry not found", res.Results[3].Error)

	rectangle := res.Results[4]
	assert.True(t, rectangle.Found)
	assert.False(t, rectangle.AutoApplied, "0.85 is below the configured 0.9")

	entry := f.catalog.entries[1]
	require.True(t, entry.HasCanonical())
	assert.Equal(t, "1232780281", *entry.CanonicalID)
	assert.True(t, entry.OnCanonicalStore)
	assert.Equal(t, "Workspace", entry.Description)
	assert.Equal(t, []int64{1}, f.catalog.applied)

	require.Len(t, f.attempts.saved, 3)
	assert.Equal(t, entity.MatchConfirmed, f.attempts.saved[0].Status)
	assert.Equal(t, entity.MatchFailed, f.attempts.saved[1].Status)
	assert.NotNil(t, f.attempts.saved[1].ErrorMessage)
	assert.Equal(t, entity.MatchFound, f.attempts.saved[2].Status)
	assert.Equal(t, []int64{notion.AttemptID}, f.attempts.confirmed)
}

func TestReconcileWithoutAutoApply(t *testing.T) {
	f := newReconcileFixture(0.8)

	res, err := f.rec.Reconcile(context.Background(), ReconcileRequest{EntryIDs: []int64{1, 5}})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Summary.Found)
	assert.Zero(t, res.Summary.AutoApplied)
	assert.Empty(t, f.catalog.applied)
	assert.Empty(t, f.attempts.confirmed)
	assert.False(t, f.catalog.entries[1].HasCanonical())
}

func TestReconcileThresholdNeverBelowMatchThreshold(t *testing.T) {
	f := newReconcileFixture(0.5)
	f.matcher.results["Notion"] = matcher.Result{Found: true, Confidence: 0.79, CanonicalID: "1", CanonicalURL: "u"}

	res, err := f.rec.Reconcile(context.Background(), ReconcileRequest{EntryIDs: []int64{1}, AutoApply: true})
	require.NoError(t, err)
	assert.False(t, res.Results[0].AutoApplied)
}

func TestReconcileAttemptPersistenceIsBestEffort(t *testing.T) {
	f := newReconcileFixture(0.8)
	f.attempts.saveErr = errors.New("disk full")

	res, err := f.rec.Reconcile(context.Background(), ReconcileRequest{EntryIDs: []int64{1, 5}, AutoApply: true})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Summary.AutoApplied)
	assert.Zero(t, res.Results[0].AttemptID)
	assert.Empty(t, f.attempts.confirmed)
}

func TestReconcileApplyFailureIsReported(t *testing.T) {
	f := newReconcileFixture(0.8)
	f.catalog.applyErr = errors.New("row locked")

	res, err := f.rec.Reconcile(context.Background(), ReconcileRequest{EntryIDs: []int64{1}, AutoApply: true})
	require.NoError(t, err)

	assert.True(t, res.Results[0].Found)
	assert.False(t, res.Results[0].AutoApplied)
	assert.Contains(t, res.Results[0].Error, "row locked")
	assert.Empty(t, f.attempts.confirmed)
}

func TestReconcileDropsUnknownDeveloper(t *testing.T) {
	f := newReconcileFixture(0.8)

	_, err := f.rec.Reconcile(context.Background(), ReconcileRequest{EntryIDs: []int64{2, 1}})
	require.NoError(t, err)
	assert.Equal(t, []string{"", "Notion Labs"}, f.matcher.developers)
}

func TestReconcileRequiresEntryIDs(t *testing.T) {
	f := newReconcileFixture(0.8)

	_, err := f.rec.Reconcile(context.Background(), ReconcileRequest{})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestReconcileRecordsAttemptWhenRequestEnds(t *testing.T) {
	f := newReconcileFixture(0.9)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.matcher.afterSearch = cancel

	res, err := f.rec.Reconcile(ctx, ReconcileRequest{EntryIDs: []int64{1, 5}, AutoApply: true})
	require.NoError(t, err)

	require.Len(t, f.attempts.saved, 1)
	assert.Equal(t, entity.MatchConfirmed, f.attempts.saved[0].Status)
	assert.Equal(t, []int64{1}, f.catalog.applied)
	assert.True(t, res.Results[0].AutoApplied)

	assert.Equal(t, entity.ResultFailed, res.Results[1].Status)
	assert.Equal(t, ReconcileSummary{Total: 2, Found: 1, AutoApplied: 1, Failed: 1}, res.Summary)
}
