package scale

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/wdm0006/loanprep/pkg/frame"
)

// ErrNotFitted is returned when Transform runs before Fit.
var ErrNotFitted = errors.New("scale: min-max scaler is not fitted")

// MinMax rescales each listed column to (v - min) / (max - min) using the
// min and max seen by Fit. A column whose fitted min equals its max maps
// every value to 0. Nulls are ignored by Fit and stay null.
type MinMax struct {
	Columns []string

	mins   []float64
	maxs   []float64
	fitted bool
}

func NewMinMax(columns ...string) *MinMax {
	return &MinMax{Columns: append([]string(nil), columns...)}
}

func (s *MinMax) Name() string { return "minmax_scale" }

// Fit learns per-column bounds from f.
func (s *MinMax) Fit(f *frame.Frame) error {
	mins := make([]float64, len(s.Columns))
	maxs := make([]float64, len(s.Columns))
	for i, name := range s.Columns {
		col, err := numericColumn(f, name)
		if err != nil {
			return err
		}
		vals := make([]float64, 0, col.Len())
		for r := 0; r < col.Len(); r++ {
			if v, ok := frame.FloatAt(col, r); ok {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			// nothing to learn from; treated as a zero-range column
			continue
		}
		mins[i] = floats.Min(vals)
		maxs[i] = floats.Max(vals)
	}
	s.mins, s.maxs, s.fitted = mins, maxs, true
	return nil
}

// Range returns the fitted bounds of a column.
func (s *MinMax) Range(name string) (min, max float64, ok bool) {
	if !s.fitted {
		return 0, 0, false
	}
	for i, c := range s.Columns {
		if c == name {
			return s.mins[i], s.maxs[i], true
		}
	}
	return 0, 0, false
}

// Transform applies the fitted bounds to f and returns a new Frame. Scaled
// columns become float columns in their original position.
func (s *MinMax) Transform(f *frame.Frame) (*frame.Frame, error) {
	if !s.fitted {
		return nil, ErrNotFitted
	}
	out := f.Clone()
	for i, name := range s.Columns {
		col, err := numericColumn(out, name)
		if err != nil {
			return nil, err
		}
		lo, span := s.mins[i], s.maxs[i]-s.mins[i]
		fc := frame.NewFloatColumn(name, col.Len())
		for r := 0; r < col.Len(); r++ {
			v, ok := frame.FloatAt(col, r)
			switch {
			case !ok:
				fc.SetNull(r)
			case span == 0:
				fc.Set(r, 0)
			default:
				fc.Set(r, (v-lo)/span)
			}
		}
		if err := out.ReplaceColumn(fc); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FitTransform fits on f and returns f transformed.
func (s *MinMax) FitTransform(f *frame.Frame) (*frame.Frame, error) {
	if err := s.Fit(f); err != nil {
		return nil, err
	}
	return s.Transform(f)
}

// Apply transforms with the already-fitted bounds so the scaler can sit in a
// frame.Pipeline.
func (s *MinMax) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	return s.Transform(f)
}

func numericColumn(f *frame.Frame, name string) (frame.Column, error) {
	col, ok := f.ColumnByName(name)
	if !ok {
		return nil, fmt.Errorf("scale: unknown column %s", name)
	}
	if !col.Kind().Numeric() {
		return nil, fmt.Errorf("scale: column %s is %s, not numeric", name, col.Kind())
	}
	return col, nil
}
