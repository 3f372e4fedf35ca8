package valleybottom

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"testing"

	openres "github.com/ehestir/OpenRES"
	"github.com/ehestir/OpenRES/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSink collects emitted polygons, optionally failing
type memSink struct {
	polys []openres.Polygon
	err   error
}

func (s *memSink) Add(p openres.Polygon) error {
	if s.err != nil {
		return s.err
	}
	s.polys = append(s.polys, p)
	return nil
}

// scenarioA: 100x100 cells, 10 m pixels, a plane dipping 1 degree toward the
// north and a straight stream along the center row
func scenarioA() (*openres.Raster, openres.StreamNetwork) {
	gd := &openres.GridDef{Eorig: 0., Norig: 1000., Cw: 10., Nrow: 100, Ncol: 100}
	dem := openres.NewRaster(gd)
	grad := math.Tan(1. * math.Pi / 180.)
	for row := 0; row < gd.Nrow; row++ {
		_, y := gd.CellCentroid(row, 0)
		for col := 0; col < gd.Ncol; col++ {
			dem.Set(row, col, grad*y)
		}
	}
	_, ystrm := gd.CellCentroid(50, 0)
	strm := openres.StreamNetwork{Lines: []openres.Polyline{
		{{X: 5., Y: ystrm}, {X: 995., Y: ystrm}},
	}}
	return dem, strm
}

func newWS(t *testing.T) *openres.Workspace {
	t.Helper()
	ws, err := openres.NewWorkspace(t.TempDir())
	require.NoError(t, err)
	return ws
}

func TestScenarioA_BandSymmetry(t *testing.T) {
	t.Parallel()
	e := engine.New()
	dem, strm := scenarioA()
	fb := never()

	frict, err := buildFriction(e, dem, 1e-5, fb)
	require.NoError(t, err)
	for _, v := range frict.A {
		assert.Greater(t, v, 0., "friction must be strictly positive")
	}

	seeds, err := burnSeeds(e, strm, frict, fb)
	require.NoError(t, err)

	cost, err := e.CostDistance(frict, seeds, 0., 300, fb)
	require.NoError(t, err)

	const T = 1500.
	coarse := thresholdMask(cost, T)

	// the coarse band is symmetric about the stream row; its half-width is
	// the number of row-steps whose accumulated cost stays within T
	halfwidth := func(m *openres.Raster, col int) (up, dn int) {
		for k := 1; 50-k >= 0 && m.Value(50-k, col) == 1.; k++ {
			up = k
		}
		for k := 1; 50+k < 100 && m.Value(50+k, col) == 1.; k++ {
			dn = k
		}
		return
	}
	up, dn := halfwidth(coarse, 50)
	assert.Equal(t, up, dn, "band symmetric about the stream")
	assert.True(t, up >= 13 && up <= 15, "expected half-width near 1500/friction, got %d", up)

	mean, ok, err := corridorMean(cost, coarse, T, fb)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Greater(t, mean, 0.)
	assert.LessOrEqual(t, mean, T)

	refined := thresholdMask(cost, mean)
	rup, rdn := halfwidth(refined, 50)
	assert.Equal(t, rup, rdn)
	assert.Less(t, rup, up, "refined mean narrows the band")
	assert.GreaterOrEqual(t, rup, 5)
}

func TestDelineate(t *testing.T) {
	t.Parallel()

	t.Run("scenario A end to end", func(t *testing.T) {
		t.Parallel()
		dem, strm := scenarioA()
		snk := &memSink{}
		err := Delineate(engine.New(), dem, strm, DefaultParams(), newWS(t), snk, never())
		require.NoError(t, err)
		// the stream row itself carries zero cost, splitting the band in two;
		// the gap closer bridges the one-cell split back into one corridor
		require.Len(t, snk.polys, 1)
		assert.Greater(t, snk.polys[0].Area(), 0.)
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		t.Parallel()
		dem, strm := scenarioA()
		s1, s2 := &memSink{}, &memSink{}
		require.NoError(t, Delineate(engine.New(), dem, strm, DefaultParams(), newWS(t), s1, never()))
		require.NoError(t, Delineate(engine.New(), dem, strm, DefaultParams(), newWS(t), s2, never()))
		assert.Equal(t, s1.polys, s2.polys)
	})

	t.Run("scenario B: tight threshold fails with EmptySelectionError", func(t *testing.T) {
		t.Parallel()
		dem, strm := scenarioA()
		par := DefaultParams()
		par.InitialCostThreshold = 50. // below the cheapest single step
		snk := &memSink{}
		err := Delineate(engine.New(), dem, strm, par, newWS(t), snk, never())
		var ese *openres.EmptySelectionError
		require.True(t, errors.As(err, &ese))
		assert.Empty(t, snk.polys, "no partial output")
	})

	t.Run("resource budget failure surfaces unchanged", func(t *testing.T) {
		t.Parallel()
		gd := &openres.GridDef{Eorig: 0., Norig: 2000., Cw: 10., Nrow: 200, Ncol: 200}
		dem := openres.NewRaster(gd)
		_, y := gd.CellCentroid(100, 0)
		strm := openres.StreamNetwork{Lines: []openres.Polyline{{{X: 5., Y: y}, {X: 1995., Y: y}}}}
		par := DefaultParams()
		par.MemoryMB = 1
		err := Delineate(engine.New(), dem, strm, par, newWS(t), &memSink{}, never())
		var re *openres.ResourceError
		assert.True(t, errors.As(err, &re))
	})

	t.Run("missing elevation is an InputError", func(t *testing.T) {
		t.Parallel()
		_, strm := scenarioA()
		err := Delineate(engine.New(), nil, strm, DefaultParams(), newWS(t), &memSink{}, never())
		var ie *openres.InputError
		assert.True(t, errors.As(err, &ie))
	})

	t.Run("empty stream network is an InputError", func(t *testing.T) {
		t.Parallel()
		dem, _ := scenarioA()
		err := Delineate(engine.New(), dem, openres.StreamNetwork{}, DefaultParams(), newWS(t), &memSink{}, never())
		var ie *openres.InputError
		assert.True(t, errors.As(err, &ie))
	})

	t.Run("nil sink is a SinkError", func(t *testing.T) {
		t.Parallel()
		dem, strm := scenarioA()
		err := Delineate(engine.New(), dem, strm, DefaultParams(), newWS(t), nil, never())
		var se *openres.SinkError
		assert.True(t, errors.As(err, &se))
	})

	t.Run("failing sink aborts with SinkError", func(t *testing.T) {
		t.Parallel()
		dem, strm := scenarioA()
		snk := &memSink{err: fmt.Errorf("disk full")}
		err := Delineate(engine.New(), dem, strm, DefaultParams(), newWS(t), snk, never())
		var se *openres.SinkError
		require.True(t, errors.As(err, &se))
	})

	t.Run("cancellation yields no output and no error", func(t *testing.T) {
		t.Parallel()
		dem, strm := scenarioA()
		snk := &memSink{}
		err := Delineate(engine.New(), dem, strm, DefaultParams(), newWS(t), snk, &testFB{cancelAfter: 0})
		assert.NoError(t, err)
		assert.Empty(t, snk.polys)
	})

	t.Run("workspace purged on completion", func(t *testing.T) {
		t.Parallel()
		dem, strm := scenarioA()
		dir := t.TempDir()
		ws, err := openres.NewWorkspace(dir)
		require.NoError(t, err)
		require.NoError(t, Delineate(engine.New(), dem, strm, DefaultParams(), ws, &memSink{}, never()))
		left, err := filepath.Glob(filepath.Join(dir, "vb_*"))
		require.NoError(t, err)
		assert.Empty(t, left, "ephemeral artifacts must be purged")
	})

	t.Run("alignment mismatch from a faulty backend", func(t *testing.T) {
		t.Parallel()
		dem, strm := scenarioA()
		err := Delineate(&misalignedTB{engine.New()}, dem, strm, DefaultParams(), newWS(t), &memSink{}, never())
		var ae *openres.AlignmentError
		assert.True(t, errors.As(err, &ae))
	})
}

// misalignedTB rasterizes seeds onto a shifted grid, simulating a backend
// that ignores the target geometry
type misalignedTB struct{ *engine.Engine }

func (m *misalignedTB) Rasterize(lines []openres.Polyline, gd *openres.GridDef, burn float64) (*openres.Raster, error) {
	off := *gd
	off.Eorig += gd.Cw / 2.
	return m.Engine.Rasterize(lines, &off, burn)
}

func TestCloseGapsPolicies(t *testing.T) {
	t.Parallel()
	e := engine.New()

	square := func(x0 float64) openres.Feature {
		return openres.Feature{Class: 1, Geom: openres.Polygon{Shell: openres.Ring{
			{X: x0, Y: 0.}, {X: x0 + 100., Y: 0.}, {X: x0 + 100., Y: 100.}, {X: x0, Y: 100.},
		}}}
	}
	gapped := func(g float64) *openres.Layer {
		return &openres.Layer{Features: []openres.Feature{square(0.), square(100. + g)}}
	}

	t.Run("merge across gaps (default)", func(t *testing.T) {
		t.Parallel()
		out, err := closeGaps(e, gapped(15.), 10., MergeAcrossGaps, never())
		require.NoError(t, err)
		assert.Len(t, out.Features, 1, "2x gap distance exceeds the gap: segments fuse")
	})

	t.Run("wide gap stays open under either policy", func(t *testing.T) {
		t.Parallel()
		out, err := closeGaps(e, gapped(50.), 10., MergeAcrossGaps, never())
		require.NoError(t, err)
		assert.Len(t, out.Features, 2)
	})

	t.Run("preserve components re-separates fusions", func(t *testing.T) {
		t.Parallel()
		orig := gapped(15.)
		out, err := closeGaps(e, orig, 10., PreserveComponents, never())
		require.NoError(t, err)
		require.Len(t, out.Features, 2)
		assert.Equal(t, orig.Features, out.Features, "fused feature replaced by its source components")
	})
}
