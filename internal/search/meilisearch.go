package search

import (
	"real-estate-marketplace/internal/models"

	"github.com/meilisearch/meilisearch-go"
)

// SuggestDoc is the slim listing projection kept in the suggest index.
type SuggestDoc struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	City         string  `json:"city"`
	Locality     string  `json:"locality"`
	PropertyType string  `json:"property_type"`
	Price        float64 `json:"price"`
}

// SuggestClient maintains the Meilisearch index that backs the
// autocomplete endpoint. It is a sidecar: the ranked search path never
// depends on it, and its unavailability degrades to empty suggestions.
type SuggestClient struct {
	client  *meilisearch.Client
	index   string
	breaker *Breaker
}

// NewSuggestClient creates a suggest client for the given Meilisearch host.
func NewSuggestClient(host, apiKey string) *SuggestClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})

	return &SuggestClient{
		client:  client,
		index:   "listings",
		breaker: NewBreaker(3, defaultBreakerReset),
	}
}

// InitIndex creates the index and configures its attributes.
func (s *SuggestClient) InitIndex() error {
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "id",
	})
	// Ignore error if index already exists
	if err != nil && err.Error() != "index already exists" {
		return err
	}

	_, err = s.client.Index(s.index).UpdateSearchableAttributes(&[]string{
		"title",
		"city",
		"locality",
		"property_type",
	})
	if err != nil {
		return err
	}

	_, err = s.client.Index(s.index).UpdateFilterableAttributes(&[]string{
		"city",
		"property_type",
		"price",
	})
	return err
}

// IndexListing upserts one listing into the suggest index.
func (s *SuggestClient) IndexListing(l *models.Listing) error {
	_, err := s.client.Index(s.index).AddDocuments([]SuggestDoc{toSuggestDoc(l)})
	return err
}

// IndexListings upserts a batch of listings.
func (s *SuggestClient) IndexListings(listings []models.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	docs := make([]SuggestDoc, len(listings))
	for i := range listings {
		docs[i] = toSuggestDoc(&listings[i])
	}
	_, err := s.client.Index(s.index).AddDocuments(docs)
	return err
}

// RemoveListing deletes a listing from the suggest index, e.g. after it
// leaves the active status.
func (s *SuggestClient) RemoveListing(id string) error {
	_, err := s.client.Index(s.index).DeleteDocument(id)
	return err
}

// Suggest returns up to limit prefix matches for q. When the breaker is
// open or the index errors, it returns an empty list and no error: the
// caller-facing contract is degrade, not fail.
func (s *SuggestClient) Suggest(q string, limit int64) ([]SuggestDoc, error) {
	if !s.breaker.CanProceed() {
		return []SuggestDoc{}, nil
	}
	if limit <= 0 {
		limit = 8
	}

	res, err := s.client.Index(s.index).Search(q, &meilisearch.SearchRequest{
		Limit: limit,
	})
	if err != nil {
		s.breaker.RecordFailure()
		return []SuggestDoc{}, nil
	}
	s.breaker.RecordSuccess()

	docs := make([]SuggestDoc, 0, len(res.Hits))
	for _, hit := range res.Hits {
		hitMap, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		doc := SuggestDoc{
			ID:           getString(hitMap, "id"),
			Title:        getString(hitMap, "title"),
			City:         getString(hitMap, "city"),
			Locality:     getString(hitMap, "locality"),
			PropertyType: getString(hitMap, "property_type"),
		}
		if price, ok := hitMap["price"].(float64); ok {
			doc.Price = price
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Healthy reports whether the breaker currently allows requests.
func (s *SuggestClient) Healthy() bool {
	return s.breaker.CanProceed()
}

func toSuggestDoc(l *models.Listing) SuggestDoc {
	return SuggestDoc{
		ID:           l.ID,
		Title:        l.Title,
		City:         l.City,
		Locality:     l.Locality,
		PropertyType: l.PropertyType,
		Price:        l.Price,
	}
}

// getString safely extracts a string from map
func getString(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}
