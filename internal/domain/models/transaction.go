package models

// TransactionRecord is the raw input entity scored by the service. Field
// names follow the card-transaction dataset the model was trained on.
// Records are created per request and never mutated.
type TransactionRecord struct {
	TransDateTransTime string  `json:"trans_date_trans_time"`
	Merchant           string  `json:"merchant"`
	Category           string  `json:"category"`
	Amt                float64 `json:"amt"`
	City               string  `json:"city"`
	State              string  `json:"state"`
	Lat                float64 `json:"lat"`
	Long               float64 `json:"long"`
	CityPop            int64   `json:"city_pop"`
	Job                string  `json:"job"`
	DOB                string  `json:"dob"`
	TransNum           string  `json:"trans_num,omitempty"`
	MerchLat           float64 `json:"merch_lat"`
	MerchLong          float64 `json:"merch_long"`
}

// FeatureVector is a fixed-order numeric encoding of a TransactionRecord.
// Length and ordering match the artifact's feature list exactly.
type FeatureVector []float64
