package valleybottom

import (
	openres "github.com/ehestir/OpenRES"
)

// The threshold & statistics engine: a coarse mask from the caller's loose
// threshold, a streaming row-paired scan of the corridor's cost statistics,
// then a refined mask from the corridor mean. Because the mean of values in
// (0,T] never exceeds T, the refined mask is always a subset of the coarse
// mask; the caller's constant only needs to be wide enough to capture one
// qualifying pixel and the effective corridor width self-tunes to the
// terrain's own cost statistics.

// thresholdMask returns a binary raster, 1 where 0 < cost ≤ t
func thresholdMask(cost *openres.Raster, t float64) *openres.Raster {
	m := openres.NewRaster(cost.GD)
	for i, v := range cost.A {
		if v > 0. && v <= t {
			m.A[i] = 1.
		}
	}
	return m
}

// corridorMean streams cost and mask row by row, accumulating the mean cost
// where mask = 1 and cost > 0 in double precision. Cancellation is checked at
// every row boundary; a cancelled scan returns ok=false with no result. A
// zero count returns an EmptySelectionError carrying the threshold that
// selected nothing.
func corridorMean(cost, mask *openres.Raster, t float64, fb openres.Feedback) (mean float64, ok bool, err error) {
	if !cost.GD.Aligned(mask.GD) {
		return 0., false, &openres.AlignmentError{A: cost.GD, B: mask.GD}
	}

	var sum float64
	var count int
	nr := cost.GD.Nrow
	for i := 0; i < nr; i++ {
		if fb.Canceled() {
			return 0., false, nil
		}
		cr, mr := cost.Row(i), mask.Row(i)
		for j, m := range mr {
			if m == 1. && cr[j] > 0. {
				sum += cr[j]
				count++
			}
		}
		if i%64 == 0 {
			fb.SetProgress(float64(i) / float64(nr) * 100.)
		}
	}
	if count == 0 {
		return 0., false, &openres.EmptySelectionError{Threshold: t}
	}
	return sum / float64(count), true, nil
}
