package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/user/catalog-sync/internal/entity"
	"github.com/user/catalog-sync/internal/matcher"
	"github.com/user/catalog-sync/internal/ratelimit"
	"github.com/user/catalog-sync/internal/repository"
	"github.com/user/catalog-sync/pkg/metrics"
)

// AppMatcher is satisfied by *matcher.Matcher.
type AppMatcher interface {
	SearchApp(ctx context.Context, name, developer string) matcher.Result
}

type ReconcileRequest struct {
	EntryIDs  []int64
	AutoApply bool
}

// MatchOutcome is one entry's reconciliation result.
type MatchOutcome struct {
	EntryID      int64               `json:"entry_id"`
	Name         string              `json:"name,omitempty"`
	Status       entity.ResultStatus `json:"status"`
	Found        bool                `json:"found"`
	Confidence   float64             `json:"confidence"`
	CanonicalID  string              `json:"canonical_id,omitempty"`
	CanonicalURL string              `json:"canonical_url,omitempty"`
	AutoApplied  bool                `json:"auto_applied"`
	AttemptID    int64               `json:"attempt_id,omitempty"`
	Error        string              `json:"error,omitempty"`
}

type ReconcileSummary struct {
	Total       int `json:"total"`
	Found       int `json:"found"`
	AutoApplied int `json:"auto_applied"`
	Failed      int `json:"failed"`
	Skipped     int `json:"skipped"`
}

type ReconcileResult struct {
	Results []MatchOutcome   `json:"results"`
	Summary ReconcileSummary `json:"summary"`
}

// ReconcileSettings holds the inter-request delay and the auto-apply bar.
type ReconcileSettings struct {
	Delay              time.Duration
	AutoApplyThreshold float64
}

// Reconciler attaches canonical identifiers to catalog entries.
type Reconciler interface {
	Reconcile(ctx context.Context, req ReconcileRequest) (*ReconcileResult, error)
}

type reconciler struct {
	catalog  repository.CatalogRepository
	attempts repository.MatchAttemptRepository
	matcher  AppMatcher
	settings ReconcileSettings
	logger   *zap.Logger
}

// NewReconciler creates a new Reconciler use case. The auto-apply threshold
// never drops below matcher.MatchThreshold.
func NewReconciler(
	catalog repository.CatalogRepository,
	attempts repository.MatchAttemptRepository,
	m AppMatcher,
	settings ReconcileSettings,
	logger *zap.Logger,
) Reconciler {
	settings.AutoApplyThreshold = max(settings.AutoApplyThreshold, matcher.MatchThreshold)
	return &reconciler{
		catalog:  catalog,
		attempts: attempts,
		matcher:  m,
		settings: settings,
		logger:   logger,
	}
}

// Reconcile processes the entries one at a time, in order. Per-entry
// failures end up in the results, never in the returned error.
func (r *reconciler) Reconcile(ctx context.Context, req ReconcileRequest) (*ReconcileResult, error) {
	if len(req.EntryIDs) == 0 {
		return nil, fmt.Errorf("%w: entry_ids is required", ErrInvalidInput)
	}

	limiter := ratelimit.New(r.settings.Delay)
	res := &ReconcileResult{Results: make([]MatchOutcome, 0, len(req.EntryIDs))}
	for _, id := range req.EntryIDs {
		res.Results = append(res.Results, r.reconcileEntry(ctx, limiter, id, req.AutoApply))
	}
	res.Summary = summarize(res.Results)

	r.logger.Info("Reconciliation finished",
		zap.Int("total", res.Summary.Total),
		zap.Int("found", res.Summary.Found),
		zap.Int("auto_applied", res.Summary.AutoApplied),
		zap.Int("failed", res.Summary.Failed),
	)
	return res, nil
}

func (r *reconciler) reconcileEntry(ctx context.Context, limiter *ratelimit.Limiter, id int64, autoApply bool) MatchOutcome {
	out := MatchOutcome{EntryID: id, Status: entity.ResultFailed}

	entry, err := r.catalog.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			out.Error = "catalog entry not found"
		} else {
			out.Error = err.Error()
		}
		return out
	}
	out.Name = entry.Name

	if entry.HasCanonical() {
		out.Status = entity.ResultSkipped
		out.CanonicalID = *entry.CanonicalID
		out.CanonicalURL = *entry.CanonicalURL
		out.Error = "already has canonical identifiers"
		return out
	}

	if err := limiter.Wait(ctx); err != nil {
		out.Error = err.Error()
		return out
	}

	developer := entry.Developer
	if developer == entity.UnknownValue {
		developer = ""
	}
	m := r.matcher.SearchApp(ctx, entry.Name, developer)
	out.Found = m.Found
	out.Confidence = m.Confidence
	out.CanonicalID = m.CanonicalID
	out.CanonicalURL = m.CanonicalURL
	out.Error = m.Error
	if m.Found {
		out.Status = entity.ResultOK
	}

	// The search already happened; record it even if the request is done.
	ctx, cancel := detached(ctx)
	defer cancel()

	attempt := newAttempt(id, developer, m)
	if err := r.attempts.Save(ctx, attempt); err != nil {
		r.logger.Warn("Failed to record match attempt", zap.Int64("entry_id", id), zap.Error(err))
	} else {
		out.AttemptID = attempt.ID
	}

	if autoApply && m.Found && m.Confidence >= r.settings.AutoApplyThreshold {
		r.apply(ctx, entry.ID, attempt.ID, m, &out)
	}
	return out
}

// apply writes the canonical fields and confirms the attempt.
func (r *reconciler) apply(ctx context.Context, entryID, attemptID int64, m matcher.Result, out *MatchOutcome) {
	patch := entity.CanonicalPatch{
		CanonicalID:      m.CanonicalID,
		CanonicalURL:     m.CanonicalURL,
		OnCanonicalStore: true,
	}
	if err := r.catalog.ApplyCanonical(ctx, entryID, patch); err != nil {
		r.logger.Error("Auto-apply failed", zap.Int64("entry_id", entryID), zap.Error(err))
		out.Error = "auto-apply failed: " + err.Error()
		return
	}
	out.AutoApplied = true
	metrics.AutoAppliedTotal.Inc()

	if attemptID == 0 {
		return
	}
	if err := r.attempts.Confirm(ctx, attemptID); err != nil {
		r.logger.Warn("Failed to confirm match attempt", zap.Int64("attempt_id", attemptID), zap.Error(err))
	}
}

func newAttempt(entryID int64, developer string, m matcher.Result) *entity.MatchAttempt {
	a := &entity.MatchAttempt{
		EntryID:     entryID,
		SearchTerm:  m.SearchTerm,
		Developer:   developer,
		RawResponse: m.RawResult,
		Confidence:  m.Confidence,
		Status:      entity.MatchFailed,
	}
	if m.Found {
		a.Status = entity.MatchFound
		a.CanonicalID = &m.CanonicalID
		a.CanonicalURL = &m.CanonicalURL
	}
	if m.Error != "" {
		a.ErrorMessage = &m.Error
	}
	return a
}

func summarize(results []MatchOutcome) ReconcileSummary {
	s := ReconcileSummary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case entity.ResultOK:
			s.Found++
		case entity.ResultSkipped:
			s.Skipped++
		default:
			s.Failed++
		}
		if r.AutoApplied {
			s.AutoApplied++
		}
	}
	return s
}
