package query

import "real-estate-marketplace/internal/models"

// Predicate is one store-agnostic filter condition. All predicates of a plan
// combine with logical AND; set membership and amenity intersection are
// internal to a single predicate. Backends type-switch over the concrete
// predicate types to render them.
type Predicate interface {
	predicate()
}

// CompareOp is a comparison operator on a scalar column.
type CompareOp string

const (
	OpEq  CompareOp = "="
	OpGte CompareOp = ">="
	OpLte CompareOp = "<="
	OpLt  CompareOp = "<"
)

// Compare filters a column against a single value.
type Compare struct {
	Column string
	Op     CompareOp
	Value  interface{}
}

// Substring filters a column by case-insensitive containment.
type Substring struct {
	Column string
	Term   string
}

// In filters a column by set membership.
type In struct {
	Column string
	Values []interface{}
}

// AmenitiesAll requires every named amenity to be present (intersection,
// not union).
type AmenitiesAll struct {
	Names []string
}

// GeoWithin keeps listings whose point lies inside a spherical radius.
// RadiusKm is already clamped by the plan builder.
type GeoWithin struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

// Radians returns the clamped radius in sphere radians for backends with a
// center-sphere index predicate.
func (g GeoWithin) Radians() float64 {
	return g.RadiusKm / earthRadiusKm
}

// NearPlace keeps listings with a nearby transit stop or landmark whose name
// matches, within the fixed proximity threshold.
type NearPlace struct {
	Name          string
	MaxDistanceKm float64
}

func (Compare) predicate()      {}
func (Substring) predicate()    {}
func (In) predicate()           {}
func (AmenitiesAll) predicate() {}
func (GeoWithin) predicate()    {}
func (NearPlace) predicate()    {}

// ScoreSpec is the relevance directive of a scored plan: a weighted sum of
// a base text-match weight plus bonuses when the term appears in the title
// or city fields.
type ScoreSpec struct {
	Term        string
	BaseWeight  int
	TitleWeight int
	CityWeight  int
}

// Default relevance weights.
const (
	BaseTextWeight   = 1
	TitleBonusWeight = 5
	CityBonusWeight  = 3
)

// TextFields are the columns a free-text term matches against.
var TextFields = []string{"title", "description", "address", "city", "locality", "state"}

// Plan is the immutable intermediate representation of one search request:
// AND-combined predicates, an optional scoring directive, a sort key and
// pagination. A Plan belongs to a single request and is never shared.
type Plan struct {
	predicates []Predicate
	score      *ScoreSpec
	sortBy     SortKey
	page       int
	limit      int
}

// Builder accumulates a Plan. Every method returns a new Builder value, so
// partially built plans are never observable and predicate order cannot
// change the result.
type Builder struct {
	plan Plan
}

// NewBuilder returns a builder with default sort and pagination.
func NewBuilder() Builder {
	return Builder{plan: Plan{sortBy: SortNewest, page: 1, limit: DefaultLimit}}
}

// Where appends a predicate.
func (b Builder) Where(p Predicate) Builder {
	preds := make([]Predicate, len(b.plan.predicates), len(b.plan.predicates)+1)
	copy(preds, b.plan.predicates)
	b.plan.predicates = append(preds, p)
	return b
}

// WithText attaches a free-text term, promoting the plan to scored mode with
// the default weight table. An empty term is a no-op.
func (b Builder) WithText(term string) Builder {
	if term == "" {
		return b
	}
	b.plan.score = &ScoreSpec{
		Term:        term,
		BaseWeight:  BaseTextWeight,
		TitleWeight: TitleBonusWeight,
		CityWeight:  CityBonusWeight,
	}
	return b
}

// SortBy sets the sort key.
func (b Builder) SortBy(key SortKey) Builder {
	b.plan.sortBy = key
	return b
}

// Paginate sets page and limit, normalizing out-of-range values.
func (b Builder) Paginate(page, limit int) Builder {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	b.plan.page = page
	b.plan.limit = limit
	return b
}

// Build returns the accumulated plan.
func (b Builder) Build() Plan {
	return b.plan
}

// Scored reports whether the plan requires per-document relevance.
func (p Plan) Scored() bool {
	return p.score != nil
}

// Score returns the scoring directive, nil for unscored plans.
func (p Plan) Score() *ScoreSpec {
	return p.score
}

// Predicates returns the AND-combined predicate list.
func (p Plan) Predicates() []Predicate {
	return p.predicates
}

// Sort returns the requested sort key.
func (p Plan) Sort() SortKey {
	return p.sortBy
}

func (p Plan) Page() int  { return p.page }
func (p Plan) Limit() int { return p.limit }

// Offset returns the skip count implied by page and limit.
func (p Plan) Offset() int {
	return (p.page - 1) * p.limit
}

// Paged returns a copy of the plan with different pagination; the predicate
// set, scoring and sort are shared unchanged.
func (p Plan) Paged(page, limit int) Plan {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	p.page = page
	p.limit = limit
	return p
}

// BuildPublicPlan assembles a plan for the public search surface from parsed
// filter params: all predicate groups, the active-status restriction, the
// free-text directive, and sort/pagination. An empty FilterParams yields a
// match-all plan restricted to active listings.
func BuildPublicPlan(p FilterParams) Plan {
	b := NewBuilder().
		Where(Compare{Column: "status", Op: OpEq, Value: string(models.ListingStatusActive)})

	// Location terms
	if p.City != "" {
		b = b.Where(Substring{Column: "city", Term: p.City})
	}
	if p.Locality != "" {
		b = b.Where(Substring{Column: "locality", Term: p.Locality})
	}
	if p.State != "" {
		b = b.Where(Substring{Column: "state", Term: p.State})
	}
	if p.PostalCode != "" {
		b = b.Where(Substring{Column: "postal_code", Term: p.PostalCode})
	}
	if p.Address != "" {
		b = b.Where(Substring{Column: "address", Term: p.Address})
	}

	// Price bounds
	if p.MinPrice != nil {
		b = b.Where(Compare{Column: "price", Op: OpGte, Value: *p.MinPrice})
	}
	if p.MaxPrice != nil {
		b = b.Where(Compare{Column: "price", Op: OpLt, Value: *p.MaxPrice})
	}

	// Attribute filters
	if len(p.Bedrooms) == 1 {
		b = b.Where(Compare{Column: "bedrooms", Op: OpEq, Value: p.Bedrooms[0]})
	} else if len(p.Bedrooms) > 1 {
		b = b.Where(In{Column: "bedrooms", Values: toValues(p.Bedrooms)})
	}
	if p.MinBathrooms != nil {
		b = b.Where(Compare{Column: "bathrooms", Op: OpGte, Value: *p.MinBathrooms})
	}
	if p.MinArea != nil {
		b = b.Where(Compare{Column: "area_sqft", Op: OpGte, Value: *p.MinArea})
	}
	if p.MaxArea != nil {
		b = b.Where(Compare{Column: "area_sqft", Op: OpLte, Value: *p.MaxArea})
	}
	if len(p.PropertyTypes) == 1 {
		b = b.Where(Compare{Column: "property_type", Op: OpEq, Value: p.PropertyTypes[0]})
	} else if len(p.PropertyTypes) > 1 {
		b = b.Where(In{Column: "property_type", Values: toValues(p.PropertyTypes)})
	}
	if p.Furnishing != "" {
		b = b.Where(Compare{Column: "furnishing", Op: OpEq, Value: p.Furnishing})
	}
	if p.MinParking != nil {
		b = b.Where(Compare{Column: "parking", Op: OpGte, Value: *p.MinParking})
	}
	if p.MinAge != nil {
		b = b.Where(Compare{Column: "age_years", Op: OpGte, Value: *p.MinAge})
	}
	if p.MaxAge != nil {
		b = b.Where(Compare{Column: "age_years", Op: OpLte, Value: *p.MaxAge})
	}
	if len(p.Facing) > 0 {
		b = b.Where(In{Column: "facing", Values: toValues(p.Facing)})
	}
	if len(p.Amenities) > 0 {
		b = b.Where(AmenitiesAll{Names: p.Amenities})
	}

	// Geo filters; radius clamped regardless of the requested value
	if p.Geo != nil {
		radius := p.Geo.RadiusKm
		if radius > MaxRadiusKm {
			radius = MaxRadiusKm
		}
		b = b.Where(GeoWithin{Latitude: p.Geo.Latitude, Longitude: p.Geo.Longitude, RadiusKm: radius})
	}
	if p.NearPlace != "" {
		b = b.Where(NearPlace{Name: p.NearPlace, MaxDistanceKm: NearPlaceRadiusKm})
	}

	return b.WithText(p.Query).
		SortBy(p.SortBy).
		Paginate(p.Page, p.Limit).
		Build()
}

func toValues[T any](in []T) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
