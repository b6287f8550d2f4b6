package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"real-estate-marketplace/internal/models"

	"gorm.io/gorm"
)

// FacetBucket is one count-by-bucket entry for the filter sidebar.
type FacetBucket struct {
	Bucket string `json:"bucket"`
	Count  int64  `json:"count"`
}

// Facets maps facet name to its bucket list. A branch that failed appears
// as an empty (non-nil) list.
type Facets map[string][]FacetBucket

// priceHistogramBounds is the fixed price histogram boundary table; the last
// bucket is unbounded above.
var priceHistogramBounds = []float64{0, 2_500_000, 5_000_000, 10_000_000, 20_000_000, 50_000_000}

// FacetEngine computes filter-sidebar counts over active listings. All
// branches share the same base match; each branch runs concurrently and a
// failing branch degrades to an empty bucket list without aborting siblings.
type FacetEngine struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewFacetEngine creates a facet engine over an open GORM handle.
func NewFacetEngine(db *gorm.DB, logger *slog.Logger) *FacetEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &FacetEngine{db: db, logger: logger}
}

// Compute returns price, bedroom, city, property-type and furnishing facets
// for the active-listings base filter, optionally narrowed by the current
// free-text term.
func (f *FacetEngine) Compute(ctx context.Context, textTerm string) Facets {
	type branch struct {
		name string
		run  func(*gorm.DB) ([]FacetBucket, error)
	}
	branches := []branch{
		{"price", f.priceHistogram},
		{"bedrooms", f.bedroomGroups},
		{"cities", f.topCities},
		{"property_types", groupCounts("property_type")},
		{"furnishing", groupCounts("furnishing")},
	}

	facets := make(Facets, len(branches))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, br := range branches {
		wg.Add(1)
		go func(br branch) {
			defer wg.Done()
			buckets, err := br.run(f.base(ctx, textTerm))
			if err != nil {
				// Degrade this branch only; siblings keep their results.
				f.logger.Warn("facet branch failed",
					"component", "facets", "branch", br.name, "error", err)
				buckets = []FacetBucket{}
			}
			if buckets == nil {
				buckets = []FacetBucket{}
			}
			mu.Lock()
			facets[br.name] = buckets
			mu.Unlock()
		}(br)
	}
	wg.Wait()

	return facets
}

// base builds the shared match stage: active listings, optionally narrowed
// by the free-text term.
func (f *FacetEngine) base(ctx context.Context, textTerm string) *gorm.DB {
	db := f.db.WithContext(ctx).Model(&models.Listing{}).
		Where("status = ?", models.ListingStatusActive)
	if term := strings.TrimSpace(textTerm); len(term) >= 2 {
		db = applyTextMatch(db, term)
	}
	return db
}

// priceHistogram counts listings per fixed price range. One statement with a
// computed bucket index, grouped.
func (f *FacetEngine) priceHistogram(db *gorm.DB) ([]FacetBucket, error) {
	caseExpr := priceBucketCase()

	type row struct {
		Bucket int
		Count  int64
	}
	var rows []row
	err := db.Select(caseExpr + " AS bucket, count(*) AS count").
		Group("bucket").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int64, len(rows))
	for _, r := range rows {
		counts[r.Bucket] = r.Count
	}

	buckets := make([]FacetBucket, 0, len(priceHistogramBounds))
	for i := range priceHistogramBounds {
		label := fmt.Sprintf("%.0f+", priceHistogramBounds[i])
		if i+1 < len(priceHistogramBounds) {
			label = fmt.Sprintf("%.0f-%.0f", priceHistogramBounds[i], priceHistogramBounds[i+1])
		}
		buckets = append(buckets, FacetBucket{Bucket: label, Count: counts[i]})
	}
	return buckets, nil
}

// priceBucketCase renders the histogram boundary table as a CASE expression
// returning the bucket index.
func priceBucketCase() string {
	var sb strings.Builder
	sb.WriteString("(CASE")
	for i := 1; i < len(priceHistogramBounds); i++ {
		fmt.Fprintf(&sb, " WHEN price < %.0f THEN %d", priceHistogramBounds[i], i-1)
	}
	fmt.Fprintf(&sb, " ELSE %d END)", len(priceHistogramBounds)-1)
	return sb.String()
}

func (f *FacetEngine) bedroomGroups(db *gorm.DB) ([]FacetBucket, error) {
	type row struct {
		Bedrooms int
		Count    int64
	}
	var rows []row
	err := db.Select("bedrooms, count(*) AS count").
		Group("bedrooms").
		Order("bedrooms ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	buckets := make([]FacetBucket, 0, len(rows))
	for _, r := range rows {
		buckets = append(buckets, FacetBucket{Bucket: fmt.Sprintf("%d", r.Bedrooms), Count: r.Count})
	}
	return buckets, nil
}

// topCities returns the ten largest cities by active-listing count.
func (f *FacetEngine) topCities(db *gorm.DB) ([]FacetBucket, error) {
	type row struct {
		City  string
		Count int64
	}
	var rows []row
	err := db.Select("city, count(*) AS count").
		Where("city IS NOT NULL AND city != ''").
		Group("city").
		Order("count DESC").
		Limit(10).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	buckets := make([]FacetBucket, 0, len(rows))
	for _, r := range rows {
		buckets = append(buckets, FacetBucket{Bucket: r.City, Count: r.Count})
	}
	return buckets, nil
}

// groupCounts returns a branch that groups by one categorical column.
func groupCounts(column string) func(*gorm.DB) ([]FacetBucket, error) {
	return func(db *gorm.DB) ([]FacetBucket, error) {
		type row struct {
			Value string
			Count int64
		}
		var rows []row
		err := db.Select(column + " AS value, count(*) AS count").
			Where(column + " IS NOT NULL AND " + column + " != ''").
			Group(column).
			Order("count DESC").
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		buckets := make([]FacetBucket, 0, len(rows))
		for _, r := range rows {
			buckets = append(buckets, FacetBucket{Bucket: r.Value, Count: r.Count})
		}
		return buckets, nil
	}
}
