package models

// PredictRequest is the body of the JSON API and the submitted form.
// Omitted fields are zero. Percent changes are signed and unbounded.
type PredictRequest struct {
	Price     float64 `json:"price" form:"price" validate:"gte=0"`
	Change1h  float64 `json:"change_1h" form:"change_1h"`
	Change24h float64 `json:"change_24h" form:"change_24h"`
	Change7d  float64 `json:"change_7d" form:"change_7d"`
	Volume24h float64 `json:"volume_24h" form:"volume_24h" validate:"gte=0"`
	MarketCap float64 `json:"market_cap" form:"market_cap" validate:"gte=0"`
}

// Snapshot converts a validated request into a MarketSnapshot.
func (r *PredictRequest) Snapshot() MarketSnapshot {
	return MarketSnapshot{
		Price:     r.Price,
		Change1h:  r.Change1h,
		Change24h: r.Change24h,
		Change7d:  r.Change7d,
		Volume24h: r.Volume24h,
		MarketCap: r.MarketCap,
	}
}

// PredictResponse is the JSON API view of a Prediction.
type PredictResponse struct {
	Ratio      float64   `json:"ratio"`
	Display    string    `json:"display"`
	Advice     string    `json:"advice"`
	Features   []float64 `json:"features"`
	Normalized []float64 `json:"normalized"`
	Schema     string    `json:"schema"`
	Cached     bool      `json:"cached"`
}

// SchemaResponse describes the feature order the artifacts were fitted on.
type SchemaResponse struct {
	Version string   `json:"version"`
	Fields  []string `json:"fields"`
}
