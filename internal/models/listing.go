package models

import "time"

type Listing struct {
	// 基本情報
	ID          string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title       string  `gorm:"type:varchar(200);not null" json:"title"`
	Description string  `gorm:"type:text" json:"description,omitempty"`
	Price       float64 `gorm:"type:decimal(14,2);not null;index" json:"price"`

	// 所在地
	Address    string  `gorm:"type:text" json:"address,omitempty"`
	City       string  `gorm:"type:varchar(100);index" json:"city,omitempty"`
	Locality   string  `gorm:"type:varchar(100);index" json:"locality,omitempty"`
	State      string  `gorm:"type:varchar(100)" json:"state,omitempty"`
	Country    string  `gorm:"type:varchar(100)" json:"country,omitempty"`
	PostalCode string  `gorm:"type:varchar(20)" json:"postal_code,omitempty"`
	Longitude  float64 `gorm:"type:decimal(11,7);index:idx_geo" json:"longitude"`
	Latitude   float64 `gorm:"type:decimal(10,7);index:idx_geo" json:"latitude"`

	// フィルタ用属性
	Bedrooms     int     `gorm:"type:int;index" json:"bedrooms"`
	Bathrooms    int     `gorm:"type:int" json:"bathrooms"`
	AreaSqft     float64 `gorm:"type:decimal(10,2)" json:"area_sqft"`
	PropertyType string  `gorm:"type:varchar(30);index" json:"property_type,omitempty"`
	Furnishing   string  `gorm:"type:varchar(30)" json:"furnishing,omitempty"`
	Facing       string  `gorm:"type:varchar(20)" json:"facing,omitempty"`
	Parking      int     `gorm:"type:int" json:"parking"`
	AgeYears     int     `gorm:"type:int" json:"age_years"`

	// 関連レコード
	Amenities []ListingAmenity `gorm:"foreignKey:ListingID" json:"amenities,omitempty"`
	Places    []ListingPlace   `gorm:"foreignKey:ListingID" json:"places,omitempty"`
	Images    []ListingImage   `gorm:"foreignKey:ListingID" json:"images,omitempty"`

	// ステータス管理
	Status      ListingStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	ModeratedBy string        `gorm:"type:varchar(36)" json:"moderated_by,omitempty"`
	ModeratedAt *time.Time    `gorm:"type:datetime" json:"moderated_at,omitempty"`
	ArchivedAt  *time.Time    `gorm:"type:datetime" json:"archived_at,omitempty"`

	// エンゲージメント
	ViewCount     int64 `gorm:"type:bigint;not null;default:0;index" json:"view_count"`
	InquiryCount  int64 `gorm:"type:bigint;not null;default:0" json:"inquiry_count"`
	ShareCount    int64 `gorm:"type:bigint;not null;default:0" json:"share_count"`
	FavoriteCount int64 `gorm:"type:bigint;not null;default:0" json:"favorite_count"`

	// 掲載枠
	Featured      bool       `gorm:"not null;default:false;index" json:"featured"`
	FeaturedFrom  *time.Time `gorm:"type:datetime" json:"featured_from,omitempty"`
	FeaturedUntil *time.Time `gorm:"type:datetime" json:"featured_until,omitempty"`

	OwnerID string `gorm:"type:varchar(36);not null;index" json:"owner_id"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime;index:idx_created_at,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`
}

func (Listing) TableName() string {
	return "listings"
}

// IsPublic reports whether the listing appears in consumer-facing search.
func (l *Listing) IsPublic() bool {
	return l.Status == ListingStatusActive
}

// FeaturedNow reports whether the featured flag is in effect at t.
// An unset window means the flag holds indefinitely.
func (l *Listing) FeaturedNow(t time.Time) bool {
	if !l.Featured {
		return false
	}
	if l.FeaturedFrom != nil && t.Before(*l.FeaturedFrom) {
		return false
	}
	if l.FeaturedUntil != nil && t.After(*l.FeaturedUntil) {
		return false
	}
	return true
}

// ListingAmenity is one amenity attached to a listing. Amenity filters use
// intersection semantics, so each requested amenity matches this table
// independently.
type ListingAmenity struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	ListingID string `gorm:"type:varchar(36);not null;index:idx_amenity_listing;uniqueIndex:idx_amenity_unique" json:"-"`
	Name      string `gorm:"type:varchar(60);not null;index;uniqueIndex:idx_amenity_unique" json:"name"`
}

func (ListingAmenity) TableName() string {
	return "listing_amenities"
}

// PlaceKind distinguishes transit stops from generic landmarks.
type PlaceKind string

const (
	PlaceKindTransit  PlaceKind = "transit"
	PlaceKindLandmark PlaceKind = "landmark"
)

// ListingPlace is a nearby transit stop or landmark with its distance.
type ListingPlace struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	ListingID  string    `gorm:"type:varchar(36);not null;index" json:"-"`
	Kind       PlaceKind `gorm:"type:varchar(10);not null" json:"kind"`
	Name       string    `gorm:"type:varchar(120);not null;index" json:"name"`
	Type       string    `gorm:"type:varchar(60)" json:"type,omitempty"`
	DistanceKm float64   `gorm:"type:decimal(6,2);not null" json:"distance_km"`
}

func (ListingPlace) TableName() string {
	return "listing_places"
}

type ListingImage struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	ListingID string `gorm:"type:varchar(36);not null;index" json:"-"`
	URL       string `gorm:"type:text;not null" json:"url"`
	IsPrimary bool   `gorm:"not null;default:false" json:"is_primary"`
	Position  int    `gorm:"type:int;not null;default:0" json:"position"`
}

func (ListingImage) TableName() string {
	return "listing_images"
}
