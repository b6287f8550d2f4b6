package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilterParamsDefaults(t *testing.T) {
	p := ParseFilterParams(map[string][]string{})

	assert.Equal(t, SortNewest, p.SortBy)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Nil(t, p.MinPrice)
	assert.Nil(t, p.Geo)
	assert.Empty(t, p.Query)
}

func TestParseFilterParamsMalformedValuesAreDropped(t *testing.T) {
	p := ParseFilterParams(map[string][]string{
		"min_price": {"not-a-number"},
		"bedrooms":  {"two,3"},
		"lat":       {"91"}, // out of range
		"lng":       {"10"},
		"page":      {"-4"},
	})

	assert.Nil(t, p.MinPrice)
	assert.Equal(t, []int{3}, p.Bedrooms)
	assert.Nil(t, p.Geo)
	assert.Equal(t, 1, p.Page)
}

func TestParseFilterParamsExplicitBoundsBeatBucket(t *testing.T) {
	p := ParseFilterParams(map[string][]string{
		"min_price":    {"1000000"},
		"price_bucket": {"3"},
	})

	require.NotNil(t, p.MinPrice)
	assert.Equal(t, 1_000_000.0, *p.MinPrice)
	assert.Nil(t, p.MaxPrice)
}

func TestParseFilterParamsPriceBucket(t *testing.T) {
	p := ParseFilterParams(map[string][]string{"price_bucket": {"2"}})

	require.NotNil(t, p.MinPrice)
	require.NotNil(t, p.MaxPrice)
	assert.Equal(t, 2_500_000.0, *p.MinPrice)
	assert.Equal(t, 5_000_000.0, *p.MaxPrice)
}

func TestParseFilterParamsOpenEndedBucket(t *testing.T) {
	p := ParseFilterParams(map[string][]string{"price_bucket": {"6"}})

	require.NotNil(t, p.MinPrice)
	assert.Equal(t, 50_000_000.0, *p.MinPrice)
	assert.Nil(t, p.MaxPrice)
}

func TestParseFilterParamsMonthlyBudget(t *testing.T) {
	p := ParseFilterParams(map[string][]string{"monthly_budget": {"50000"}})

	require.NotNil(t, p.MaxPrice)
	// budget * 12 * 20 / 0.8
	assert.InDelta(t, 15_000_000.0, *p.MaxPrice, 0.01)
	assert.Nil(t, p.MinPrice)
}

func TestParseFilterParamsBucketBeatsBudget(t *testing.T) {
	p := ParseFilterParams(map[string][]string{
		"price_bucket":   {"1"},
		"monthly_budget": {"50000"},
	})

	require.NotNil(t, p.MaxPrice)
	assert.Equal(t, 2_500_000.0, *p.MaxPrice)
}

func TestParseFilterParamsStringSets(t *testing.T) {
	p := ParseFilterParams(map[string][]string{
		"property_type": {"Apartment,VILLA", "apartment"},
		"amenities":     {"gym", "pool, gym"},
	})

	assert.Equal(t, []string{"apartment", "villa"}, p.PropertyTypes)
	assert.Equal(t, []string{"gym", "pool"}, p.Amenities)
}

func TestParseFilterParamsGeo(t *testing.T) {
	p := ParseFilterParams(map[string][]string{
		"lat":    {"19.07"},
		"lng":    {"72.87"},
		"radius": {"12"},
	})

	require.NotNil(t, p.Geo)
	assert.Equal(t, 19.07, p.Geo.Latitude)
	assert.Equal(t, 72.87, p.Geo.Longitude)
	assert.Equal(t, 12.0, p.Geo.RadiusKm)
}

func TestParseFilterParamsGeoDefaultRadius(t *testing.T) {
	p := ParseFilterParams(map[string][]string{
		"lat": {"19.07"},
		"lng": {"72.87"},
	})

	require.NotNil(t, p.Geo)
	assert.Equal(t, 5.0, p.Geo.RadiusKm)
}

func TestParseFilterParamsShortQueryIgnored(t *testing.T) {
	p := ParseFilterParams(map[string][]string{"q": {" a "}})
	assert.Empty(t, p.Query)

	p = ParseFilterParams(map[string][]string{"q": {" sea view "}})
	assert.Equal(t, "sea view", p.Query)
}

func TestParseFilterParamsLimitCap(t *testing.T) {
	p := ParseFilterParams(map[string][]string{"limit": {"500"}})
	assert.Equal(t, MaxLimit, p.Limit)
}

func TestParseFilterParamsAgeBuckets(t *testing.T) {
	p := ParseFilterParams(map[string][]string{"age": {"recent"}})
	require.NotNil(t, p.MinAge)
	require.NotNil(t, p.MaxAge)
	assert.Equal(t, 1, *p.MinAge)
	assert.Equal(t, 5, *p.MaxAge)

	p = ParseFilterParams(map[string][]string{"age": {"new"}})
	assert.Nil(t, p.MinAge)
	require.NotNil(t, p.MaxAge)
	assert.Equal(t, 1, *p.MaxAge)

	p = ParseFilterParams(map[string][]string{"age": {"old"}})
	require.NotNil(t, p.MinAge)
	assert.Equal(t, 10, *p.MinAge)
	assert.Nil(t, p.MaxAge)
}

func TestMinimalParamsKeepsOnlySafeSubset(t *testing.T) {
	p := MinimalParams(map[string][]string{
		"city":          {"mumbai"},
		"property_type": {"villa,apartment"},
		"bedrooms":      {"2,3"},
		"min_price":     {"100"},
		"q":             {"sea view"},
		"amenities":     {"gym"},
		"sort":          {"price_low"},
	})

	assert.Equal(t, "mumbai", p.City)
	assert.Equal(t, []string{"villa"}, p.PropertyTypes)
	assert.Equal(t, []int{2}, p.Bedrooms)
	require.NotNil(t, p.MinPrice)
	assert.Empty(t, p.Query)
	assert.Empty(t, p.Amenities)
	assert.Equal(t, SortNewest, p.SortBy)
}

func TestGeoFilterRadians(t *testing.T) {
	g := GeoFilter{RadiusKm: 6378.1}
	assert.InDelta(t, 1.0, g.Radians(), 1e-9)
}
