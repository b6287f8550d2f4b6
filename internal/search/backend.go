package search

import (
	"context"

	"real-estate-marketplace/internal/models"
	"real-estate-marketplace/internal/query"
)

// Backend renders and runs a query plan against a concrete store. The
// executor decides which mode a plan needs; backends only know how to render
// each mode. Both modes return the page of listings and the total count of
// matches computed without skip/limit.
type Backend interface {
	// Find runs an unscored plan as a direct filtered query.
	Find(ctx context.Context, plan query.Plan) ([]models.Listing, int64, error)
	// Aggregate runs a scored plan: filter, text match, relevance
	// computation, sort, pagination.
	Aggregate(ctx context.Context, plan query.Plan) ([]models.Listing, int64, error)
}
