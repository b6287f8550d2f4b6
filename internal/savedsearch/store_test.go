package savedsearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeParamsScalars(t *testing.T) {
	out := NormalizeParams(map[string]interface{}{
		"city":      "mumbai",
		"min_price": float64(1000000),
		"page":      float64(2),
	})

	assert.Equal(t, []string{"mumbai"}, out["city"])
	assert.Equal(t, []string{"1000000"}, out["min_price"])
	assert.Equal(t, []string{"2"}, out["page"])
}

func TestNormalizeParamsArrayKeysFromCommaString(t *testing.T) {
	out := NormalizeParams(map[string]interface{}{
		"bedrooms":      "2, 3",
		"property_type": "villa",
	})

	assert.Equal(t, []string{"2", "3"}, out["bedrooms"])
	assert.Equal(t, []string{"villa"}, out["property_type"])
}

func TestNormalizeParamsJSONArrays(t *testing.T) {
	out := NormalizeParams(map[string]interface{}{
		"bedrooms":  []interface{}{float64(2), float64(3)},
		"amenities": []interface{}{"gym", "pool"},
	})

	assert.Equal(t, []string{"2", "3"}, out["bedrooms"])
	assert.Equal(t, []string{"gym", "pool"}, out["amenities"])
}

func TestNormalizeParamsSkipsNilAndEmpty(t *testing.T) {
	out := NormalizeParams(map[string]interface{}{
		"city":     nil,
		"bedrooms": "",
	})

	assert.NotContains(t, out, "city")
	assert.NotContains(t, out, "bedrooms")
}

func TestNormalizeParamsNonIntegerFloat(t *testing.T) {
	out := NormalizeParams(map[string]interface{}{"radius": float64(2.5)})
	assert.Equal(t, []string{"2.5"}, out["radius"])
}

func TestDecodeParamsCorruptRowDegradesToMatchAll(t *testing.T) {
	params := decodeParams("{not json")
	assert.NotNil(t, params)
	assert.Empty(t, params)

	params = decodeParams("")
	assert.NotNil(t, params)
	assert.Empty(t, params)
}

func TestDecodeParamsRoundTrip(t *testing.T) {
	params := decodeParams(`{"city":["mumbai"],"bedrooms":["2","3"]}`)
	assert.Equal(t, []string{"mumbai"}, params["city"])
	assert.Equal(t, []string{"2", "3"}, params["bedrooms"])
}
