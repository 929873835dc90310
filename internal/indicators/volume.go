package indicators

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/volume"
)

// OBV is the on-balance volume.
func OBV(closes, volumes []float64) Series {
	n := len(closes)
	if n == 0 || len(volumes) != n {
		return undefinedSeries(n)
	}

	obv := volume.NewObv[float64]()
	return alignRight(n, helper.ChanToSlice(obv.Compute(helper.SliceToChan(closes), helper.SliceToChan(volumes))))
}
