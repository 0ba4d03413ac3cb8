package artifact

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"CryptoLiquidity/internal/domain/models"
	domsvc "CryptoLiquidity/internal/domain/service"
	"CryptoLiquidity/internal/services/features"
)

// Scaler kinds.
const (
	ScalerStandard = "standard"
	ScalerMinMax   = "minmax"
	ScalerRobust   = "robust"
	ScalerIdentity = "identity"
)

// AffineScaler computes y = (x - shift) * mul + add per feature.
// Standard, robust, min-max and identity scalers all reduce to this form.
type AffineScaler struct {
	kind  string
	shift []float64
	mul   []float64
	add   []float64
}

// NewAffineScaler builds a scaler from per-feature parameters of equal length.
func NewAffineScaler(kind string, shift, mul, add []float64) (*AffineScaler, error) {
	n := len(mul)
	if len(shift) != n || len(add) != n {
		return nil, fmt.Errorf("parameter lengths differ: shift=%d mul=%d add=%d", len(shift), n, len(add))
	}
	if n == 0 {
		return nil, fmt.Errorf("no features")
	}
	if !features.AllFinite(shift) || !features.AllFinite(mul) || !features.AllFinite(add) {
		return nil, fmt.Errorf("parameters contain NaN or Inf")
	}
	return &AffineScaler{kind: kind, shift: shift, mul: mul, add: add}, nil
}

// Kind returns the scaler kind it was loaded as.
func (s *AffineScaler) Kind() string { return s.kind }

// Width returns the fitted number of features.
func (s *AffineScaler) Width() int { return len(s.mul) }

// Transform applies the fitted transform. The input is not modified.
func (s *AffineScaler) Transform(v models.FeatureVector) (models.NormalizedVector, error) {
	if err := domsvc.CheckWidth("scaler", s.Width(), len(v)); err != nil {
		return nil, err
	}
	out := make([]float64, len(v))
	floats.SubTo(out, v, s.shift)
	floats.Mul(out, s.mul)
	floats.Add(out, s.add)
	return models.NormalizedVector(out), nil
}

func scalerFromDoc(d *scalerDoc, width int) (*AffineScaler, error) {
	zeros := make([]float64, width)
	ones := make([]float64, width)
	for i := range ones {
		ones[i] = 1
	}
	// with_mean=False / with_centering=False exports omit the offsets,
	// with_std=False / with_scaling=False exports omit the scales.
	orDefault := func(v, def []float64) []float64 {
		if v == nil {
			return def
		}
		return v
	}

	for name, p := range map[string][]float64{"mean": d.Mean, "center": d.Center, "min": d.Min, "scale": d.Scale} {
		if !features.AllFinite(p) {
			return nil, fmt.Errorf("%s contains NaN or Inf", name)
		}
	}

	switch d.Kind {
	case ScalerStandard:
		return NewAffineScaler(d.Kind, orDefault(d.Mean, zeros), orDefault(reciprocal(d.Scale), ones), zeros)
	case ScalerRobust:
		return NewAffineScaler(d.Kind, orDefault(d.Center, zeros), orDefault(reciprocal(d.Scale), ones), zeros)
	case ScalerMinMax:
		if d.Scale == nil || d.Min == nil {
			return nil, fmt.Errorf("minmax scaler requires scale and min")
		}
		return NewAffineScaler(d.Kind, zeros, d.Scale, d.Min)
	case ScalerIdentity:
		return NewAffineScaler(d.Kind, zeros, ones, zeros)
	case "":
		return nil, fmt.Errorf("missing kind")
	default:
		return nil, fmt.Errorf("unknown scaler kind %q", d.Kind)
	}
}

// reciprocal inverts scale factors; a zero scale (constant feature) maps to 1
// the same way sklearn handles it.
func reciprocal(scale []float64) []float64 {
	if scale == nil {
		return nil
	}
	out := make([]float64, len(scale))
	for i, s := range scale {
		if s == 0 {
			out[i] = 1
			continue
		}
		out[i] = 1 / s
	}
	return out
}

var _ domsvc.Scaler = (*AffineScaler)(nil)
