package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"real-estate-marketplace/internal/apperr"
	"real-estate-marketplace/internal/models"
	"real-estate-marketplace/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBackend records which execution mode was used and returns canned
// results or failures.
type stubBackend struct {
	findItems      []models.Listing
	findTotal      int64
	findErr        error
	aggregateItems []models.Listing
	aggregateTotal int64
	aggregateErr   error

	findCalls      int
	aggregateCalls int
	lastPlan       query.Plan
}

func (s *stubBackend) Find(ctx context.Context, plan query.Plan) ([]models.Listing, int64, error) {
	s.findCalls++
	s.lastPlan = plan
	return s.findItems, s.findTotal, s.findErr
}

func (s *stubBackend) Aggregate(ctx context.Context, plan query.Plan) ([]models.Listing, int64, error) {
	s.aggregateCalls++
	s.lastPlan = plan
	return s.aggregateItems, s.aggregateTotal, s.aggregateErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExecuteUsesFindForUnscoredPlans(t *testing.T) {
	backend := &stubBackend{findItems: []models.Listing{{ID: "a"}}, findTotal: 1}
	executor := NewExecutor(backend, discardLogger())

	plan := query.NewBuilder().Build()
	result, err := executor.Execute(context.Background(), plan)

	require.NoError(t, err)
	assert.Equal(t, 1, backend.findCalls)
	assert.Equal(t, 0, backend.aggregateCalls)
	assert.Equal(t, int64(1), result.Total)
	assert.Len(t, result.Items, 1)
}

func TestExecuteUsesAggregateForScoredPlans(t *testing.T) {
	backend := &stubBackend{aggregateItems: []models.Listing{{ID: "a"}}, aggregateTotal: 1}
	executor := NewExecutor(backend, discardLogger())

	plan := query.NewBuilder().WithText("sea view").Build()
	_, err := executor.Execute(context.Background(), plan)

	require.NoError(t, err)
	assert.Equal(t, 0, backend.findCalls)
	assert.Equal(t, 1, backend.aggregateCalls)
}

func TestExecuteWrapsFailuresAsDegraded(t *testing.T) {
	backend := &stubBackend{findErr: errors.New("connection refused")}
	executor := NewExecutor(backend, discardLogger())

	_, err := executor.Execute(context.Background(), query.NewBuilder().Build())

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindDegraded))
}

func TestExecuteNilItemsBecomeEmptySlice(t *testing.T) {
	backend := &stubBackend{findItems: nil, findTotal: 0}
	executor := NewExecutor(backend, discardLogger())

	result, err := executor.Execute(context.Background(), query.NewBuilder().Build())

	require.NoError(t, err)
	assert.NotNil(t, result.Items)
	assert.Empty(t, result.Items)
}

func TestCountUsesMinimalPage(t *testing.T) {
	backend := &stubBackend{findTotal: 42}
	executor := NewExecutor(backend, discardLogger())

	total, err := executor.Count(context.Background(), query.NewBuilder().Paginate(5, 50).Build())

	require.NoError(t, err)
	assert.Equal(t, int64(42), total)
	assert.Equal(t, 1, backend.lastPlan.Page())
	assert.Equal(t, 1, backend.lastPlan.Limit())
}

// failThenFindBackend fails aggregate-mode calls so scored plans degrade to
// the minimal find-mode fallback.
type failThenFindBackend struct {
	stubBackend
}

func (f *failThenFindBackend) Aggregate(ctx context.Context, plan query.Plan) ([]models.Listing, int64, error) {
	f.aggregateCalls++
	return nil, 0, errors.New("index offline")
}

func TestExecuteWithFallbackDegradesToMinimalPlan(t *testing.T) {
	backend := &failThenFindBackend{}
	backend.findItems = []models.Listing{{ID: "fallback"}}
	backend.findTotal = 1
	executor := NewExecutor(backend, discardLogger())

	raw := map[string][]string{"city": {"mumbai"}, "q": {"sea view"}}
	plan := query.BuildPublicPlan(query.ParseFilterParams(raw))
	require.True(t, plan.Scored())

	result := executor.ExecuteWithFallback(context.Background(), plan, raw)

	require.NotNil(t, result)
	assert.Equal(t, 1, backend.aggregateCalls)
	assert.Equal(t, 1, backend.findCalls)
	assert.Equal(t, int64(1), result.Total)
	assert.Equal(t, "fallback", result.Items[0].ID)
}

// alwaysFailBackend fails both execution modes.
type alwaysFailBackend struct{}

func (alwaysFailBackend) Find(ctx context.Context, plan query.Plan) ([]models.Listing, int64, error) {
	return nil, 0, errors.New("down")
}

func (alwaysFailBackend) Aggregate(ctx context.Context, plan query.Plan) ([]models.Listing, int64, error) {
	return nil, 0, errors.New("down")
}

func TestExecuteWithFallbackNeverFails(t *testing.T) {
	executor := NewExecutor(alwaysFailBackend{}, discardLogger())

	raw := map[string][]string{"city": {"mumbai"}}
	plan := query.BuildPublicPlan(query.ParseFilterParams(raw))

	result := executor.ExecuteWithFallback(context.Background(), plan, raw)

	require.NotNil(t, result)
	assert.NotNil(t, result.Items)
	assert.Empty(t, result.Items)
	assert.Equal(t, int64(0), result.Total)
}
