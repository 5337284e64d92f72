package ml

import (
	"math"

	"github.com/cockroachdb/errors"
)

// StandardScaler standardizes each feature to zero mean and unit variance using the
// statistics captured at fit time.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *StandardScaler) NumFeatures() int { return len(s.Mean) }

func (s *StandardScaler) Transform(features []float64) ([]float64, error) {
	if len(features) != len(s.Mean) {
		return nil, dimensionError(len(features), len(s.Mean))
	}
	out := make([]float64, len(features))
	for j, x := range features {
		scale := s.Scale[j]
		if scale == 0 {
			scale = 1
		}
		out[j] = (x - s.Mean[j]) / scale
	}
	return out, nil
}

func (s *StandardScaler) Validate() error {
	if len(s.Mean) == 0 {
		return errors.New("standard scaler has no features")
	}
	if len(s.Scale) != len(s.Mean) {
		return errors.Newf("standard scaler has %d means and %d scales", len(s.Mean), len(s.Scale))
	}
	return checkFinite(s.Mean, s.Scale)
}

// MinMaxScaler scales each feature to [0, 1] using the fitted range.
type MinMaxScaler struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

func (s *MinMaxScaler) NumFeatures() int { return len(s.Min) }

func (s *MinMaxScaler) Transform(features []float64) ([]float64, error) {
	if len(features) != len(s.Min) {
		return nil, dimensionError(len(features), len(s.Min))
	}
	out := make([]float64, len(features))
	for j, x := range features {
		if s.Max[j] != s.Min[j] {
			out[j] = (x - s.Min[j]) / (s.Max[j] - s.Min[j])
		} else {
			out[j] = 0
		}
	}
	return out, nil
}

func (s *MinMaxScaler) Validate() error {
	if len(s.Min) == 0 {
		return errors.New("minmax scaler has no features")
	}
	if len(s.Max) != len(s.Min) {
		return errors.Newf("minmax scaler has %d minimums and %d maximums", len(s.Min), len(s.Max))
	}
	return checkFinite(s.Min, s.Max)
}

func checkFinite(columns ...[]float64) error {
	for _, col := range columns {
		for j, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.Newf("non-finite parameter at feature %d", j)
			}
		}
	}
	return nil
}
