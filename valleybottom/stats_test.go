package valleybottom

import (
	"errors"
	"fmt"
	"testing"

	openres "github.com/ehestir/OpenRES"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

// testFB counts cancellation polls, optionally cancelling after n
type testFB struct {
	cancelAfter int // <0 never
	polls       int
	msgs        []string
}

func (f *testFB) PushInfo(format string, args ...interface{}) {
	f.msgs = append(f.msgs, fmt.Sprintf(format, args...))
}
func (f *testFB) SetProgress(float64) {}
func (f *testFB) Canceled() bool {
	f.polls++
	return f.cancelAfter >= 0 && f.polls > f.cancelAfter
}

func never() *testFB { return &testFB{cancelAfter: -1} }

func costRaster(nr, nc int, f func(row, col int) float64) *openres.Raster {
	gd := &openres.GridDef{Eorig: 0., Norig: float64(nr), Cw: 1., Nrow: nr, Ncol: nc}
	r := openres.NewRaster(gd)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			r.Set(i, j, f(i, j))
		}
	}
	return r
}

func TestThresholdMask(t *testing.T) {
	t.Parallel()

	cost := costRaster(4, 4, func(i, j int) float64 { return float64(i*4 + j) }) // 0..15
	m := thresholdMask(cost, 10.)

	assert.Equal(t, 0., m.A[0], "zero cost excluded")
	for i := 1; i <= 10; i++ {
		assert.Equal(t, 1., m.A[i])
	}
	for i := 11; i < 16; i++ {
		assert.Equal(t, 0., m.A[i])
	}

	t.Run("nodata excluded", func(t *testing.T) {
		t.Parallel()
		c := costRaster(2, 2, func(i, j int) float64 { return openres.NoData })
		for _, v := range thresholdMask(c, 1e6).A {
			assert.Equal(t, 0., v)
		}
	})
}

func TestCorridorMean(t *testing.T) {
	t.Parallel()

	t.Run("matches independent mean of masked values", func(t *testing.T) {
		t.Parallel()
		cost := costRaster(50, 40, func(i, j int) float64 { return float64(i+j) * .7 })
		const T = 30.
		mask := thresholdMask(cost, T)

		mean, ok, err := corridorMean(cost, mask, T, never())
		require.NoError(t, err)
		require.True(t, ok)

		var vals []float64
		for i, v := range cost.A {
			if mask.A[i] == 1. && v > 0. {
				vals = append(vals, v)
			}
		}
		assert.InDelta(t, stat.Mean(vals, nil), mean, 1e-12)
	})

	t.Run("mean bounded by the coarse threshold", func(t *testing.T) {
		t.Parallel()
		cost := costRaster(30, 30, func(i, j int) float64 { return float64(i*30+j) * 3.1 })
		const T = 1500.
		mask := thresholdMask(cost, T)
		mean, ok, err := corridorMean(cost, mask, T, never())
		require.NoError(t, err)
		require.True(t, ok)
		assert.Greater(t, mean, 0.)
		assert.LessOrEqual(t, mean, T)
	})

	t.Run("refined mask is a subset of coarse", func(t *testing.T) {
		t.Parallel()
		cost := costRaster(40, 40, func(i, j int) float64 { return float64((i*i+j*j)%977) * .9 })
		const T = 500.
		coarse := thresholdMask(cost, T)
		mean, ok, err := corridorMean(cost, coarse, T, never())
		require.NoError(t, err)
		require.True(t, ok)
		refined := thresholdMask(cost, mean)
		for i := range refined.A {
			if refined.A[i] == 1. {
				assert.Equal(t, 1., coarse.A[i], "cell %d in refined but not coarse", i)
			}
		}
	})

	t.Run("empty selection errors", func(t *testing.T) {
		t.Parallel()
		cost := costRaster(10, 10, func(i, j int) float64 { return 100. + float64(i) })
		const T = 50. // below the minimum non-zero cost
		mask := thresholdMask(cost, T)
		_, _, err := corridorMean(cost, mask, T, never())
		var ese *openres.EmptySelectionError
		require.True(t, errors.As(err, &ese))
		assert.Equal(t, T, ese.Threshold)
	})

	t.Run("cancellation at a row boundary yields nothing", func(t *testing.T) {
		t.Parallel()
		cost := costRaster(20, 20, func(i, j int) float64 { return 1. })
		mask := thresholdMask(cost, 10.)
		fb := &testFB{cancelAfter: 5} // cancel partway through the scan
		_, ok, err := corridorMean(cost, mask, 10., fb)
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.GreaterOrEqual(t, fb.polls, 6, "polled once per row until cancelled")
	})

	t.Run("misaligned mask rejected", func(t *testing.T) {
		t.Parallel()
		cost := costRaster(10, 10, func(i, j int) float64 { return 1. })
		mask := openres.NewRaster(&openres.GridDef{Eorig: 5., Norig: 10., Cw: 1., Nrow: 10, Ncol: 10})
		_, _, err := corridorMean(cost, mask, 10., never())
		var ae *openres.AlignmentError
		assert.True(t, errors.As(err, &ae))
	})
}
