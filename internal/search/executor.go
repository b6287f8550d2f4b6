package search

import (
	"context"
	"log/slog"

	"real-estate-marketplace/internal/apperr"
	"real-estate-marketplace/internal/models"
	"real-estate-marketplace/internal/query"
)

// Result is the search response envelope: one page of listings plus the
// total match count. Items is never nil.
type Result struct {
	Items []models.Listing `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// Executor runs query plans against a backend, choosing find-mode for plain
// plans and aggregate-mode once relevance scoring is required.
type Executor struct {
	backend Backend
	logger  *slog.Logger
}

// NewExecutor creates an executor over the given backend.
func NewExecutor(backend Backend, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{backend: backend, logger: logger}
}

// Execute runs the plan and returns (items, totalCount, page, limit).
// Failures are wrapped as degraded errors so callers on the search-family
// surface know to take the fallback path rather than reporting them.
func (e *Executor) Execute(ctx context.Context, plan query.Plan) (*Result, error) {
	var (
		items []models.Listing
		total int64
		err   error
	)
	if plan.Scored() {
		items, total, err = e.backend.Aggregate(ctx, plan)
	} else {
		items, total, err = e.backend.Find(ctx, plan)
	}
	if err != nil {
		return nil, apperr.Degraded("plan execution failed", err)
	}
	if items == nil {
		items = []models.Listing{}
	}
	return &Result{Items: items, Total: total, Page: plan.Page(), Limit: plan.Limit()}, nil
}

// Count runs only the total-count side of the plan. Used by the saved-search
// store for result-count refresh.
func (e *Executor) Count(ctx context.Context, plan query.Plan) (int64, error) {
	result, err := e.Execute(ctx, plan.Paged(1, 1))
	if err != nil {
		return 0, err
	}
	return result.Total, nil
}

// ExecuteWithFallback runs the plan and, on any internal failure, degrades
// to a minimal safe query built from a small well-known subset of the raw
// parameters. The public listing-search entry point must never surface a
// server error; degraded mode is visible only in logs. If even the minimal
// query fails, an empty success result is returned.
func (e *Executor) ExecuteWithFallback(ctx context.Context, plan query.Plan, raw map[string][]string) *Result {
	result, err := e.Execute(ctx, plan)
	if err == nil {
		return result
	}
	e.logger.Warn("search degraded, falling back to minimal query",
		"component", "executor", "error", err)

	minimal := query.BuildPublicPlan(query.MinimalParams(raw))
	result, err = e.Execute(ctx, minimal)
	if err == nil {
		return result
	}
	e.logger.Error("fallback query failed, returning empty result",
		"component", "executor", "error", err)

	return &Result{Items: []models.Listing{}, Total: 0, Page: minimal.Page(), Limit: minimal.Limit()}
}
