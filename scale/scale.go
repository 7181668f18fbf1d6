// Package scale transforms features so each dimension is comparable
// during training. Parameters are fit once, on training data only, and
// then applied identically to held-out data; every variant except None is
// exactly invertible so predictions can be reported in original units.
package scale

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/errs"
)

// Names of the selectable variants.
const (
	NameNone     = "none"
	NameMinMax   = "minmax"
	NameStandard = "standard"
)

// A Scaler learns per-dimension transform parameters from data and
// applies them to individual points in place.
type Scaler interface {
	// SetScale fits the transform parameters from the rows of data.
	// Refitting replaces any previously learned parameters.
	SetScale(data *mat.Dense) error
	// Scale transforms the point in place. Returns errs.NotFitted if
	// SetScale has not been called.
	Scale(point []float64) error
	// Unscale inverts Scale in place.
	Unscale(point []float64) error
	// IsScaled reports whether the transform parameters have been fit.
	IsScaled() bool
	// Dims returns the fitted dimension, or 0 before fitting.
	Dims() int
}

// FromString returns a fresh scaler for the given variant name.
func FromString(name string) (Scaler, error) {
	switch name {
	case NameNone:
		return &None{}, nil
	case NameMinMax:
		return &MinMax{}, nil
	case NameStandard:
		return &Normal{}, nil
	}
	return nil, errs.Configuration{Option: "scaler", Reason: "unknown variant " + name}
}

// None is the identity transform. It still tracks the fitted dimension so
// misuse surfaces the same way as for the real variants.
type None struct {
	dim    int
	scaled bool
}

func (n *None) SetScale(data *mat.Dense) error {
	r, c := data.Dims()
	if r == 0 || c == 0 {
		return errs.InvalidInput{Reason: "scale: empty data"}
	}
	n.dim = c
	n.scaled = true
	return nil
}

func (n *None) Scale(point []float64) error   { return n.check(point) }
func (n *None) Unscale(point []float64) error { return n.check(point) }
func (n *None) IsScaled() bool                { return n.scaled }
func (n *None) Dims() int                     { return n.dim }

func (n *None) check(point []float64) error {
	if !n.scaled {
		return errs.NotFitted{Op: "scale.None"}
	}
	if len(point) != n.dim {
		return dimErr(n.dim, len(point))
	}
	return nil
}

// MinMax maps each dimension linearly onto [0, 1] over the fitted range.
// A constant dimension maps to 0 and unscales back to the constant.
type MinMax struct {
	min    []float64
	span   []float64
	scaled bool
}

func (m *MinMax) SetScale(data *mat.Dense) error {
	r, c := data.Dims()
	if r == 0 || c == 0 {
		return errs.InvalidInput{Reason: "scale: empty data"}
	}
	m.min = make([]float64, c)
	m.span = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, data)
		lo, hi := col[0], col[0]
		for _, v := range col {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		m.min[j] = lo
		m.span[j] = hi - lo
	}
	m.scaled = true
	return nil
}

func (m *MinMax) Scale(point []float64) error {
	if !m.scaled {
		return errs.NotFitted{Op: "scale.MinMax"}
	}
	if len(point) != len(m.min) {
		return dimErr(len(m.min), len(point))
	}
	for j := range point {
		if m.span[j] == 0 {
			point[j] = 0
			continue
		}
		point[j] = (point[j] - m.min[j]) / m.span[j]
	}
	return nil
}

func (m *MinMax) Unscale(point []float64) error {
	if !m.scaled {
		return errs.NotFitted{Op: "scale.MinMax"}
	}
	if len(point) != len(m.min) {
		return dimErr(len(m.min), len(point))
	}
	for j := range point {
		point[j] = point[j]*m.span[j] + m.min[j]
	}
	return nil
}

func (m *MinMax) IsScaled() bool { return m.scaled }
func (m *MinMax) Dims() int      { return len(m.min) }

// Normal standardizes each dimension to zero mean and unit variance. A
// constant dimension is left centered with the deviation treated as one.
type Normal struct {
	mu     []float64
	sigma  []float64
	scaled bool
}

func (n *Normal) SetScale(data *mat.Dense) error {
	r, c := data.Dims()
	if r == 0 || c == 0 {
		return errs.InvalidInput{Reason: "scale: empty data"}
	}
	n.mu = make([]float64, c)
	n.sigma = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, data)
		mu, sigma := stat.MeanStdDev(col, nil)
		if sigma == 0 || r == 1 {
			sigma = 1
		}
		n.mu[j] = mu
		n.sigma[j] = sigma
	}
	n.scaled = true
	return nil
}

func (n *Normal) Scale(point []float64) error {
	if !n.scaled {
		return errs.NotFitted{Op: "scale.Normal"}
	}
	if len(point) != len(n.mu) {
		return dimErr(len(n.mu), len(point))
	}
	for j := range point {
		point[j] = (point[j] - n.mu[j]) / n.sigma[j]
	}
	return nil
}

func (n *Normal) Unscale(point []float64) error {
	if !n.scaled {
		return errs.NotFitted{Op: "scale.Normal"}
	}
	if len(point) != len(n.mu) {
		return dimErr(len(n.mu), len(point))
	}
	for j := range point {
		point[j] = point[j]*n.sigma[j] + n.mu[j]
	}
	return nil
}

func (n *Normal) IsScaled() bool { return n.scaled }
func (n *Normal) Dims() int      { return len(n.mu) }

func dimErr(want, got int) error {
	return errs.InvalidInput{Reason: fmt.Sprintf("scale: point has %d dimensions, scaler fit with %d", got, want)}
}
