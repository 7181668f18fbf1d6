package scale

import "gonum.org/v1/gonum/mat"

// ScaleData transforms every row of data in place.
func ScaleData(s Scaler, data *mat.Dense) error {
	r, _ := data.Dims()
	for i := 0; i < r; i++ {
		if err := s.Scale(data.RawRowView(i)); err != nil {
			return err
		}
	}
	return nil
}

// UnscaleData inverts ScaleData.
func UnscaleData(s Scaler, data *mat.Dense) error {
	r, _ := data.Dims()
	for i := 0; i < r; i++ {
		if err := s.Unscale(data.RawRowView(i)); err != nil {
			return err
		}
	}
	return nil
}

// ScaleVals transforms a single-dimension value slice in place. Used for
// target vectors, which are fit as an n-by-1 matrix.
func ScaleVals(s Scaler, vals []float64) error {
	for i := range vals {
		if err := s.Scale(vals[i : i+1]); err != nil {
			return err
		}
	}
	return nil
}

// UnscaleVals inverts ScaleVals.
func UnscaleVals(s Scaler, vals []float64) error {
	for i := range vals {
		if err := s.Unscale(vals[i : i+1]); err != nil {
			return err
		}
	}
	return nil
}

// FitVals fits the scaler on a value slice viewed as one column.
func FitVals(s Scaler, vals []float64) error {
	col := mat.NewDense(len(vals), 1, append([]float64(nil), vals...))
	return s.SetScale(col)
}
