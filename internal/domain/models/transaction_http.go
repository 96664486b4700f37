package models

// Requests for the prediction HTTP endpoints. Numeric fields are pointers so
// a missing field is distinguishable from a legitimate zero and fails
// validation instead of silently encoding as 0.

type PredictRequest struct {
	TransDateTransTime string   `json:"trans_date_trans_time" validate:"required"`
	Merchant           string   `json:"merchant" validate:"required"`
	Category           string   `json:"category" validate:"required"`
	Amt                *float64 `json:"amt" validate:"required"`
	City               string   `json:"city" validate:"required"`
	State              string   `json:"state" validate:"required"`
	Lat                *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Long               *float64 `json:"long" validate:"required,gte=-180,lte=180"`
	CityPop            *int64   `json:"city_pop" validate:"required,gte=0"`
	Job                string   `json:"job" validate:"required"`
	DOB                string   `json:"dob" validate:"required"`
	TransNum           string   `json:"trans_num"`
	MerchLat           *float64 `json:"merch_lat" validate:"required,gte=-90,lte=90"`
	MerchLong          *float64 `json:"merch_long" validate:"required,gte=-180,lte=180"`
}

// ToRecord converts a validated request into the immutable domain record.
func (r *PredictRequest) ToRecord() *TransactionRecord {
	return &TransactionRecord{
		TransDateTransTime: r.TransDateTransTime,
		Merchant:           r.Merchant,
		Category:           r.Category,
		Amt:                *r.Amt,
		City:               r.City,
		State:              r.State,
		Lat:                *r.Lat,
		Long:               *r.Long,
		CityPop:            *r.CityPop,
		Job:                r.Job,
		DOB:                r.DOB,
		TransNum:           r.TransNum,
		MerchLat:           *r.MerchLat,
		MerchLong:          *r.MerchLong,
	}
}

// BatchPredictRequest scores multiple transactions in one call.
type BatchPredictRequest struct {
	Transactions []PredictRequest `json:"transactions" validate:"required,min=1,max=1000,dive"`
}
