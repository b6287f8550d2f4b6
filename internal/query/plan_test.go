package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderIsImmutable(t *testing.T) {
	base := NewBuilder().Where(Compare{Column: "price", Op: OpGte, Value: 100.0})

	a := base.Where(Compare{Column: "bedrooms", Op: OpEq, Value: 2}).Build()
	b := base.Where(Compare{Column: "bedrooms", Op: OpEq, Value: 3}).Build()

	require.Len(t, a.Predicates(), 2)
	require.Len(t, b.Predicates(), 2)
	assert.Equal(t, 2, a.Predicates()[1].(Compare).Value)
	assert.Equal(t, 3, b.Predicates()[1].(Compare).Value)
	// The shared base is untouched.
	assert.Len(t, base.Build().Predicates(), 1)
}

func TestBuildPublicPlanAlwaysRestrictsToActive(t *testing.T) {
	plan := BuildPublicPlan(FilterParams{Page: 1, Limit: DefaultLimit, SortBy: SortNewest})

	require.NotEmpty(t, plan.Predicates())
	first, ok := plan.Predicates()[0].(Compare)
	require.True(t, ok)
	assert.Equal(t, "status", first.Column)
	assert.Equal(t, OpEq, first.Op)
	assert.Equal(t, "active", first.Value)
}

func TestBuildPublicPlanComposesAllGroupsWithAnd(t *testing.T) {
	params := ParseFilterParams(map[string][]string{
		"city":      {"mumbai"},
		"min_price": {"1000000"},
		"bedrooms":  {"2,3"},
		"amenities": {"gym,pool"},
		"near":      {"central station"},
	})

	plan := BuildPublicPlan(params)

	var (
		hasStatus, hasCity, hasPrice, hasBedrooms, hasAmenities, hasNear bool
	)
	for _, p := range plan.Predicates() {
		switch pred := p.(type) {
		case Compare:
			if pred.Column == "status" {
				hasStatus = true
			}
			if pred.Column == "price" {
				hasPrice = true
			}
		case Substring:
			if pred.Column == "city" {
				hasCity = true
			}
		case In:
			if pred.Column == "bedrooms" {
				hasBedrooms = true
				assert.Len(t, pred.Values, 2)
			}
		case AmenitiesAll:
			hasAmenities = true
			assert.Equal(t, []string{"gym", "pool"}, pred.Names)
		case NearPlace:
			hasNear = true
			assert.Equal(t, NearPlaceRadiusKm, pred.MaxDistanceKm)
		}
	}
	assert.True(t, hasStatus)
	assert.True(t, hasCity)
	assert.True(t, hasPrice)
	assert.True(t, hasBedrooms)
	assert.True(t, hasAmenities)
	assert.True(t, hasNear)
}

func TestBuildPublicPlanSingleValuesCollapseToCompare(t *testing.T) {
	params := ParseFilterParams(map[string][]string{
		"bedrooms":      {"3"},
		"property_type": {"villa"},
	})
	plan := BuildPublicPlan(params)

	var bedroomsEq, typeEq bool
	for _, p := range plan.Predicates() {
		if pred, ok := p.(Compare); ok {
			if pred.Column == "bedrooms" && pred.Op == OpEq {
				bedroomsEq = true
			}
			if pred.Column == "property_type" && pred.Op == OpEq {
				typeEq = true
			}
		}
	}
	assert.True(t, bedroomsEq)
	assert.True(t, typeEq)
}

func TestBuildPublicPlanClampsGeoRadius(t *testing.T) {
	params := ParseFilterParams(map[string][]string{
		"lat":    {"19"},
		"lng":    {"72"},
		"radius": {"500"},
	})
	plan := BuildPublicPlan(params)

	var geo *GeoWithin
	for _, p := range plan.Predicates() {
		if g, ok := p.(GeoWithin); ok {
			geo = &g
		}
	}
	require.NotNil(t, geo)
	assert.Equal(t, MaxRadiusKm, geo.RadiusKm)
	assert.InDelta(t, MaxRadiusKm/earthRadiusKm, geo.Radians(), 1e-9)
}

func TestBuildPublicPlanTextPromotesToScored(t *testing.T) {
	plan := BuildPublicPlan(ParseFilterParams(map[string][]string{"q": {"sea view"}}))

	require.True(t, plan.Scored())
	score := plan.Score()
	require.NotNil(t, score)
	assert.Equal(t, "sea view", score.Term)
	assert.Equal(t, BaseTextWeight, score.BaseWeight)
	assert.Equal(t, TitleBonusWeight, score.TitleWeight)
	assert.Equal(t, CityBonusWeight, score.CityWeight)
}

func TestTitleWeightOutranksCityWeight(t *testing.T) {
	// A title match must outrank a city match at equal base score.
	assert.Greater(t, TitleBonusWeight, CityBonusWeight)
	assert.Greater(t, CityBonusWeight, BaseTextWeight)
}

func TestBuildPublicPlanWithoutTextIsUnscored(t *testing.T) {
	plan := BuildPublicPlan(ParseFilterParams(map[string][]string{"city": {"pune"}}))
	assert.False(t, plan.Scored())
	assert.Nil(t, plan.Score())
}

func TestPlanPagination(t *testing.T) {
	plan := NewBuilder().Paginate(3, 10).Build()
	assert.Equal(t, 3, plan.Page())
	assert.Equal(t, 10, plan.Limit())
	assert.Equal(t, 20, plan.Offset())

	repaged := plan.Paged(1, 1)
	assert.Equal(t, 1, repaged.Page())
	assert.Equal(t, 1, repaged.Limit())
	// The original is unchanged.
	assert.Equal(t, 3, plan.Page())
}

func TestPaginateNormalizesOutOfRange(t *testing.T) {
	plan := NewBuilder().Paginate(0, 0).Build()
	assert.Equal(t, 1, plan.Page())
	assert.Equal(t, DefaultLimit, plan.Limit())

	plan = NewBuilder().Paginate(2, MaxLimit+100).Build()
	assert.Equal(t, MaxLimit, plan.Limit())
}

func TestPriceBucketBounds(t *testing.T) {
	bounds, ok := PriceBucketBounds(1)
	require.True(t, ok)
	assert.Equal(t, [2]float64{0, 2_500_000}, bounds)

	bounds, ok = PriceBucketBounds(6)
	require.True(t, ok)
	assert.Equal(t, 50_000_000.0, bounds[0])
	assert.Less(t, bounds[1], 0.0)

	_, ok = PriceBucketBounds(7)
	assert.False(t, ok)
}
