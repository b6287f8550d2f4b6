package query

import (
	"strconv"
	"strings"
)

// FilterParams is the typed intent record produced from raw query parameters.
// Nil pointer / empty slice means "filter not requested". Malformed values
// never produce an error: the corresponding filter is simply omitted, so a
// bad parameter can degrade a search but never fail it.
type FilterParams struct {
	// Location terms, each a case-insensitive substring match.
	City       string
	Locality   string
	State      string
	PostalCode string
	Address    string

	// Price bounds in absolute currency units.
	MinPrice *float64
	MaxPrice *float64

	// Property attributes.
	Bedrooms      []int
	MinBathrooms  *int
	MinArea       *float64
	MaxArea       *float64
	PropertyTypes []string
	Furnishing    string
	MinParking    *int
	MinAge        *int
	MaxAge        *int
	Facing        []string
	Amenities     []string // intersection: every listed amenity must be present

	// Geo filters.
	Geo       *GeoFilter
	NearPlace string // transit stop / landmark name, fixed 2 km threshold

	// Free-text term; active only when len >= 2 after trimming.
	Query string

	SortBy SortKey
	Page   int
	Limit  int
}

// GeoFilter is a point-plus-radius request. RadiusKm here is the requested
// value; the plan builder applies the 50 km clamp.
type GeoFilter struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

// earthRadiusKm is the spherical Earth radius used for radian conversion.
const earthRadiusKm = 6378.1

// MaxRadiusKm caps geo radius requests regardless of the requested value.
const MaxRadiusKm = 50.0

// NearPlaceRadiusKm is the fixed threshold for named-place proximity.
const NearPlaceRadiusKm = 2.0

// Radians converts the radius to radians on the sphere, the unit a
// center-sphere geo index predicate consumes.
func (g GeoFilter) Radians() float64 {
	return g.RadiusKm / earthRadiusKm
}

// SortKey enumerates the supported sort orders.
type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortPriceLow  SortKey = "price_low"
	SortPriceHigh SortKey = "price_high"
	SortAreaLarge SortKey = "area_large"
	SortAreaSmall SortKey = "area_small"
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortPopular   SortKey = "popular"
)

const (
	// DefaultLimit is the page size when none is requested.
	DefaultLimit = 20
	// MaxLimit caps the requested page size.
	MaxLimit = 50
)

// priceBuckets maps bucket ids to [low, high) boundaries; high < 0 means
// unbounded. Ids outside the table are ignored.
var priceBuckets = map[int][2]float64{
	1: {0, 2_500_000},
	2: {2_500_000, 5_000_000},
	3: {5_000_000, 10_000_000},
	4: {10_000_000, 20_000_000},
	5: {20_000_000, 50_000_000},
	6: {50_000_000, -1},
}

// Monthly-budget amortization: maxPrice = budget * 12 * termYears / downPaymentFraction.
const (
	budgetTermYears    = 20
	budgetDownFraction = 0.8
)

// ageBuckets maps named building-age ranges to [min, max] years; -1 means open.
var ageBuckets = map[string][2]int{
	"new":         {-1, 1},
	"recent":      {1, 5},
	"established": {5, 10},
	"old":         {10, -1},
}

// ParseFilterParams normalizes a flat string-keyed parameter map (the
// url.Values shape) into typed filter intents. It never returns an error;
// unrecognized keys and malformed values are skipped.
func ParseFilterParams(values map[string][]string) FilterParams {
	p := FilterParams{
		SortBy: SortNewest,
		Page:   1,
		Limit:  DefaultLimit,
	}

	// Location terms
	p.City = first(values, "city")
	p.Locality = first(values, "locality")
	if p.Locality == "" {
		p.Locality = first(values, "area")
	}
	p.State = first(values, "state")
	p.PostalCode = first(values, "postal_code")
	p.Address = first(values, "address")

	// Price: explicit bounds, then bucket id, then monthly budget. Explicit
	// bounds win over a bucket; a bucket wins over a budget ceiling.
	p.MinPrice = parseFloat(first(values, "min_price"))
	p.MaxPrice = parseFloat(first(values, "max_price"))
	if p.MinPrice == nil && p.MaxPrice == nil {
		if id, err := strconv.Atoi(first(values, "price_bucket")); err == nil {
			if bounds, ok := priceBuckets[id]; ok {
				low := bounds[0]
				p.MinPrice = &low
				if bounds[1] >= 0 {
					high := bounds[1]
					p.MaxPrice = &high
				}
			}
		}
	}
	if p.MinPrice == nil && p.MaxPrice == nil {
		if budget := parseFloat(first(values, "monthly_budget")); budget != nil && *budget > 0 {
			ceiling := *budget * 12 * budgetTermYears / budgetDownFraction
			p.MaxPrice = &ceiling
		}
	}

	// Attribute filters
	p.Bedrooms = parseIntSet(values["bedrooms"])
	p.MinBathrooms = parseInt(first(values, "bathrooms"))
	p.MinArea = parseFloat(first(values, "min_area"))
	p.MaxArea = parseFloat(first(values, "max_area"))
	p.PropertyTypes = parseStringSet(values["property_type"])
	p.Furnishing = strings.ToLower(strings.TrimSpace(first(values, "furnishing")))
	p.MinParking = parseInt(first(values, "parking"))
	if bounds, ok := ageBuckets[strings.ToLower(strings.TrimSpace(first(values, "age")))]; ok {
		if bounds[0] >= 0 {
			min := bounds[0]
			p.MinAge = &min
		}
		if bounds[1] >= 0 {
			max := bounds[1]
			p.MaxAge = &max
		}
	}
	p.Facing = parseStringSet(values["facing"])
	p.Amenities = parseStringSet(values["amenities"])

	// Geo: point + radius, or named-place proximity
	lat := parseFloat(first(values, "lat"))
	lng := parseFloat(first(values, "lng"))
	if lat != nil && lng != nil && *lat >= -90 && *lat <= 90 && *lng >= -180 && *lng <= 180 {
		radius := 5.0
		if r := parseFloat(first(values, "radius")); r != nil && *r > 0 {
			radius = *r
		}
		p.Geo = &GeoFilter{Latitude: *lat, Longitude: *lng, RadiusKm: radius}
	}
	p.NearPlace = strings.TrimSpace(first(values, "near"))

	// Free-text term: single characters are noise, not a query
	if q := strings.TrimSpace(first(values, "q")); len(q) >= 2 {
		p.Query = q
	}

	// Sort and pagination
	switch SortKey(first(values, "sort")) {
	case SortRelevance:
		p.SortBy = SortRelevance
	case SortPriceLow:
		p.SortBy = SortPriceLow
	case SortPriceHigh:
		p.SortBy = SortPriceHigh
	case SortAreaLarge:
		p.SortBy = SortAreaLarge
	case SortAreaSmall:
		p.SortBy = SortAreaSmall
	case SortOldest:
		p.SortBy = SortOldest
	case SortPopular:
		p.SortBy = SortPopular
	case SortNewest:
		p.SortBy = SortNewest
	}
	if page := parseInt(first(values, "page")); page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit := parseInt(first(values, "limit")); limit != nil && *limit >= 1 {
		p.Limit = *limit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	return p
}

// MinimalParams extracts the small well-known parameter subset used by the
// degraded fallback path: city substring, property type, bedrooms, price
// range, default sort and pagination.
func MinimalParams(values map[string][]string) FilterParams {
	p := FilterParams{
		SortBy: SortNewest,
		Page:   1,
		Limit:  DefaultLimit,
	}
	p.City = first(values, "city")
	if types := parseStringSet(values["property_type"]); len(types) > 0 {
		p.PropertyTypes = types[:1]
	}
	if beds := parseIntSet(values["bedrooms"]); len(beds) > 0 {
		p.Bedrooms = beds[:1]
	}
	p.MinPrice = parseFloat(first(values, "min_price"))
	p.MaxPrice = parseFloat(first(values, "max_price"))
	return p
}

func first(values map[string][]string, key string) string {
	if v, ok := values[key]; ok && len(v) > 0 {
		return v[0]
	}
	return ""
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// parseIntSet accepts repeated values and comma-joined values; malformed
// entries are dropped.
func parseIntSet(raw []string) []int {
	var out []int
	seen := make(map[int]bool)
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// parseStringSet accepts repeated values and comma-joined values, trimmed
// and lower-cased, duplicates dropped.
func parseStringSet(raw []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			out = append(out, part)
		}
	}
	return out
}

// PriceBucketBounds exposes the fixed bucket table for the facet engine and
// tests. The second return is false for unknown ids.
func PriceBucketBounds(id int) ([2]float64, bool) {
	bounds, ok := priceBuckets[id]
	return bounds, ok
}
