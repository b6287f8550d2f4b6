package recommend

import (
	"encoding/json"
	"testing"

	"real-estate-marketplace/internal/models"
	"real-estate-marketplace/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func savedWith(t *testing.T, params map[string][]string) models.SavedSearch {
	t.Helper()
	encoded, err := json.Marshal(params)
	require.NoError(t, err)
	return models.SavedSearch{Params: string(encoded), Active: true}
}

func TestExtractPreferencesUnionsSets(t *testing.T) {
	searches := []models.SavedSearch{
		savedWith(t, map[string][]string{"city": {"mumbai"}, "property_type": {"villa"}}),
		savedWith(t, map[string][]string{"city": {"pune"}, "property_type": {"villa,apartment"}, "bedrooms": {"2"}}),
	}

	prefs := ExtractPreferences(searches)

	assert.Equal(t, []string{"mumbai", "pune"}, prefs.Cities)
	assert.Equal(t, []string{"villa", "apartment"}, prefs.PropertyTypes)
	assert.Equal(t, []int{2}, prefs.Bedrooms)
}

func TestExtractPreferencesPriceEnvelopeWithPadding(t *testing.T) {
	searches := []models.SavedSearch{
		savedWith(t, map[string][]string{"min_price": {"2000000"}, "max_price": {"5000000"}}),
		savedWith(t, map[string][]string{"min_price": {"1000000"}, "max_price": {"8000000"}}),
	}

	prefs := ExtractPreferences(searches)

	require.NotNil(t, prefs.MinPrice)
	require.NotNil(t, prefs.MaxPrice)
	// Widest envelope [1M, 8M], padded by 20% on each flank.
	assert.InDelta(t, 800_000, *prefs.MinPrice, 0.01)
	assert.InDelta(t, 9_600_000, *prefs.MaxPrice, 0.01)
}

func TestExtractPreferencesSkipsCorruptRows(t *testing.T) {
	searches := []models.SavedSearch{
		{Params: "{broken", Active: true},
		savedWith(t, map[string][]string{"city": {"mumbai"}}),
	}

	prefs := ExtractPreferences(searches)
	assert.Equal(t, []string{"mumbai"}, prefs.Cities)
}

func TestExtractPreferencesEmpty(t *testing.T) {
	prefs := ExtractPreferences(nil)
	assert.True(t, prefs.Empty())

	prefs = ExtractPreferences([]models.SavedSearch{
		savedWith(t, map[string][]string{"city": {"pune"}}),
	})
	assert.False(t, prefs.Empty())
}

func TestPreferencesPlanUsesMembershipAndPopularity(t *testing.T) {
	min, max := 800_000.0, 9_600_000.0
	prefs := Preferences{
		Cities:        []string{"mumbai", "pune"},
		PropertyTypes: []string{"villa"},
		Bedrooms:      []int{2, 3},
		MinPrice:      &min,
		MaxPrice:      &max,
	}

	plan := prefs.Plan(10)

	assert.Equal(t, query.SortPopular, plan.Sort())
	assert.Equal(t, 10, plan.Limit())
	assert.False(t, plan.Scored())

	var hasStatus, hasCities, hasPriceLow, hasPriceHigh bool
	for _, p := range plan.Predicates() {
		switch pred := p.(type) {
		case query.Compare:
			if pred.Column == "status" {
				hasStatus = true
			}
			if pred.Column == "price" && pred.Op == query.OpGte {
				hasPriceLow = true
			}
			if pred.Column == "price" && pred.Op == query.OpLte {
				hasPriceHigh = true
			}
		case query.In:
			if pred.Column == "city" {
				hasCities = true
				assert.Len(t, pred.Values, 2)
			}
		}
	}
	assert.True(t, hasStatus)
	assert.True(t, hasCities)
	assert.True(t, hasPriceLow)
	assert.True(t, hasPriceHigh)
}
