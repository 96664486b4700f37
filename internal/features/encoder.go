package features

import (
	"fmt"
	"math"
	"strings"
	"time"

	"FraudSight/internal/domain/models"
	"FraudSight/internal/model"
	"FraudSight/pkg/util"
)

// SchemaError reports a record field the encoder cannot map into the
// training schema.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("encode %s: %s", e.Field, e.Reason)
}

// Encoder maps raw transaction records into the fixed-order feature vector
// the artifact's scaler and model were fitted on. Encoding rules mirror the
// training pipeline exactly: hour/day-of-week/month from the transaction
// timestamp, age from date of birth at transaction time, one-hot category
// and state, target encoding for merchant/city/job.
//
// Unseen categorical values are not errors: target-encoded columns fall back
// to the artifact's global fraud mean, one-hot columns encode as an all-zero
// block. This matches the training pipeline's fallback for novel values.
type Encoder struct {
	artifact *model.Artifact
}

// NewEncoder creates an encoder bound to a loaded artifact.
func NewEncoder(artifact *model.Artifact) *Encoder {
	return &Encoder{artifact: artifact}
}

// Encode produces the feature vector for a record, aligned to the
// artifact's feature order. Deterministic: identical input yields an
// identical vector.
func (e *Encoder) Encode(rec *models.TransactionRecord) (models.FeatureVector, error) {
	transTime, ok := util.ParseTransTime(rec.TransDateTransTime)
	if !ok {
		return nil, &SchemaError{Field: "trans_date_trans_time", Reason: "unparsable timestamp, want 'YYYY-MM-DD HH:MM'"}
	}
	dob, ok := util.ParseDOB(rec.DOB)
	if !ok {
		return nil, &SchemaError{Field: "dob", Reason: "unparsable date, want 'DD-MM-YYYY'"}
	}

	named := map[string]float64{
		"amt":        rec.Amt,
		"lat":        rec.Lat,
		"long":       rec.Long,
		"city_pop":   float64(rec.CityPop),
		"merch_lat":  rec.MerchLat,
		"merch_long": rec.MerchLong,

		"hour":        float64(transTime.Hour()),
		"day_of_week": float64(mondayIndexed(transTime.Weekday())),
		"month":       float64(int(transTime.Month())),
		"age":         float64(util.YearsBetween(dob, transTime)),

		"distance_km": haversineKm(rec.Lat, rec.Long, rec.MerchLat, rec.MerchLong),

		"merchant_target_enc": e.artifact.TargetMean("merchant", rec.Merchant),
		"city_target_enc":     e.artifact.TargetMean("city", rec.City),
		"job_target_enc":      e.artifact.TargetMean("job", rec.Job),
	}

	// One-hot blocks: set only the matching column; unseen values leave the
	// whole block zero during alignment.
	named["cat_"+normalizeToken(rec.Category)] = 1
	named["state_"+strings.ToUpper(strings.TrimSpace(rec.State))] = 1

	vec := make(models.FeatureVector, len(e.artifact.FeatureNames))
	for i, name := range e.artifact.FeatureNames {
		vec[i] = named[name]
	}
	return vec, nil
}

// mondayIndexed converts Go's Sunday-first weekday to the Monday=0 index
// used at training time.
func mondayIndexed(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// haversineKm computes great-circle distance between customer and merchant
// coordinates.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0

	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
