package features

import (
	"math"

	"CryptoLiquidity/internal/domain/models"
)

// SchemaVersion names the feature layout the scaler and model were fitted on.
// Bump it whenever SchemaFields changes.
const SchemaVersion = "liquidity/v1"

// SchemaFields lists the feature names in vector order.
var SchemaFields = []string{
	"price",
	"change_1h",
	"change_24h",
	"change_7d",
	"volume_24h",
	"market_cap",
	"volatility_24h",
	"volatility_7d",
}

// Width is the length of every FeatureVector built by Build.
func Width() int { return len(SchemaFields) }

// Fields returns a copy of SchemaFields.
func Fields() []string {
	out := make([]string, len(SchemaFields))
	copy(out, SchemaFields)
	return out
}

// Build maps a snapshot to its feature vector: the six raw fields followed by
// the absolute 24h and 7d changes as volatility proxies.
func Build(s models.MarketSnapshot) models.FeatureVector {
	return models.FeatureVector{
		s.Price,
		s.Change1h,
		s.Change24h,
		s.Change7d,
		s.Volume24h,
		s.MarketCap,
		math.Abs(s.Change24h),
		math.Abs(s.Change7d),
	}
}

// AllFinite reports whether every element is neither NaN nor infinite.
func AllFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
