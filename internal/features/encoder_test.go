package features

import (
	"testing"

	"FraudSight/internal/domain/models"
	"FraudSight/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArtifact(t *testing.T) *model.Artifact {
	t.Helper()
	names := []string{
		"amt", "hour", "day_of_week", "month", "age", "distance_km",
		"cat_personal_care", "state_AR", "merchant_target_enc", "city_target_enc",
	}
	n := len(names)
	a := &model.Artifact{
		Version:      "enc-test",
		FeatureNames: names,
		Scaler: model.Scaler{
			Mean:  make([]float64, n),
			Scale: ones(n),
		},
		Model: model.Coefficients{Coef: make([]float64, n)},
		Encoders: model.EncoderTables{
			Target: map[string]map[string]float64{
				"merchant": {"fraud_Kirlin and Sons": 0.0213},
				"city":     {"Malvern": 0.0045},
			},
			GlobalMean: 0.005727,
			Categories: []string{"personal_care"},
			States:     []string{"AR"},
		},
	}
	require.NoError(t, a.Validate())
	return a
}

func ones(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = 1
	}
	return s
}

func testRecord() *models.TransactionRecord {
	return &models.TransactionRecord{
		TransDateTransTime: "2023-01-15 14:30", // a Sunday
		Merchant:           "fraud_Kirlin and Sons",
		Category:           "personal_care",
		Amt:                29.84,
		City:               "Malvern",
		State:              "AR",
		Lat:                42.1808,
		Long:               -112.2620,
		CityPop:            2071,
		Job:                "Mechanical engineer",
		DOB:                "15-03-1988",
		MerchLat:           43.150704,
		MerchLong:          -112.154481,
	}
}

func TestEncodeFeatureValues(t *testing.T) {
	enc := NewEncoder(testArtifact(t))

	vec, err := enc.Encode(testRecord())
	require.NoError(t, err)
	require.Len(t, vec, 10)

	assert.Equal(t, 29.84, vec[0], "amt")
	assert.Equal(t, 14.0, vec[1], "hour")
	assert.Equal(t, 6.0, vec[2], "day_of_week Monday-indexed, Sunday=6")
	assert.Equal(t, 1.0, vec[3], "month")
	assert.Equal(t, 34.0, vec[4], "age at transaction time")
	assert.InDelta(t, 108.206, vec[5], 0.01, "customer-merchant distance km")
	assert.Equal(t, 1.0, vec[6], "cat_personal_care one-hot")
	assert.Equal(t, 1.0, vec[7], "state_AR one-hot")
	assert.Equal(t, 0.0213, vec[8], "merchant target encoding")
	assert.Equal(t, 0.0045, vec[9], "city target encoding")
}

func TestEncodeDeterministic(t *testing.T) {
	enc := NewEncoder(testArtifact(t))

	a, err := enc.Encode(testRecord())
	require.NoError(t, err)
	b, err := enc.Encode(testRecord())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncodeUnseenCategoricals(t *testing.T) {
	enc := NewEncoder(testArtifact(t))

	rec := testRecord()
	rec.Category = "brand_new_category"
	rec.State = "ZZ"
	rec.Merchant = "never seen"
	rec.City = "Nowhere"

	vec, err := enc.Encode(rec)
	require.NoError(t, err)

	// unseen one-hot values leave their blocks zero, unseen target-encoded
	// values fall back to the global mean
	assert.Equal(t, 0.0, vec[6])
	assert.Equal(t, 0.0, vec[7])
	assert.Equal(t, 0.005727, vec[8])
	assert.Equal(t, 0.005727, vec[9])
}

func TestEncodeLegacyTimestampOrder(t *testing.T) {
	enc := NewEncoder(testArtifact(t))

	rec := testRecord()
	rec.TransDateTransTime = "15-01-2023 14:30"

	vec, err := enc.Encode(rec)
	require.NoError(t, err)
	assert.Equal(t, 14.0, vec[1])
	assert.Equal(t, 1.0, vec[3])
}

func TestEncodeBadTimestamp(t *testing.T) {
	enc := NewEncoder(testArtifact(t))

	rec := testRecord()
	rec.TransDateTransTime = "yesterday"

	_, err := enc.Encode(rec)
	require.Error(t, err)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "trans_date_trans_time", schemaErr.Field)
}

func TestEncodeBadDOB(t *testing.T) {
	enc := NewEncoder(testArtifact(t))

	rec := testRecord()
	rec.DOB = "15/03/1988"

	_, err := enc.Encode(rec)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "dob", schemaErr.Field)
}

func TestEncodeNormalizesTokens(t *testing.T) {
	enc := NewEncoder(testArtifact(t))

	rec := testRecord()
	rec.Category = "  Personal_Care "
	rec.State = "ar"

	vec, err := enc.Encode(rec)
	require.NoError(t, err)
	assert.Equal(t, 1.0, vec[6])
	assert.Equal(t, 1.0, vec[7])
}
