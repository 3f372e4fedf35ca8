package engine

import (
	"math"
	"sort"

	openres "github.com/ehestir/OpenRES"
)

const maxScratchCells = 1 << 26

// Buffer offsets the layer by a signed distance using binary morphology on a
// scratch grid: rings are scanline-filled, then cells within the offset
// distance of the fill (or of its complement, for negative distances) are
// taken and re-polygonized. Because the scratch grid's origin is snapped to
// cell-size multiples, repeating a dilate/erode pair at the same distance
// reproduces the same mask: the closing operation is idempotent. With dissolve
// set, features share one scratch grid and overlaps merge; otherwise each
// feature is buffered on its own grid and kept as a separate feature.
func (e *Engine) Buffer(l *openres.Layer, dist float64, dissolve bool) (*openres.Layer, error) {
	if l == nil {
		return nil, &openres.InputError{Msg: "buffer: no input layer"}
	}
	if len(l.Features) == 0 || dist == 0. {
		out := &openres.Layer{Features: append([]openres.Feature(nil), l.Features...)}
		return out, nil
	}
	if !dissolve && len(l.Features) > 1 {
		out := &openres.Layer{}
		for _, f := range l.Features {
			b, err := e.Buffer(&openres.Layer{Features: []openres.Feature{f}}, dist, true)
			if err != nil {
				return nil, err
			}
			out.Features = append(out.Features, b.Features...)
		}
		return out, nil
	}

	ad := math.Abs(dist)
	res := ad * e.BufferCellFrac
	gd, err := e.scratchGrid(l, ad+2.*res, res)
	if err != nil {
		return nil, err
	}

	mask := openres.NewRaster(gd)
	for _, f := range l.Features {
		fillPolygon(mask, f.Geom)
	}

	out := openres.NewRaster(gd)
	if dist > 0. { // dilate: everything within dist of the fill
		cost, err := e.CostDistance(openres.ConstRaster(gd, 1.), mask, ad, 0, openres.NullFeedback{})
		if err != nil {
			return nil, err
		}
		for i := range out.A {
			if mask.A[i] == 1. || cost.A[i] != openres.NoData {
				out.A[i] = 1.
			}
		}
	} else { // erode: fill cells farther than dist from the complement
		comp := openres.NewRaster(gd)
		for i, v := range mask.A {
			if v != 1. {
				comp.A[i] = 1.
			}
		}
		cost, err := e.CostDistance(openres.ConstRaster(gd, 1.), comp, ad, 0, openres.NullFeedback{})
		if err != nil {
			return nil, err
		}
		for i := range out.A {
			if mask.A[i] == 1. && cost.A[i] == openres.NoData {
				out.A[i] = 1.
			}
		}
	}

	lyr, err := e.Polygonize(out)
	if err != nil {
		return nil, err
	}
	return e.FilterByClass(lyr, 1)
}

// scratchGrid builds a buffer working grid over the layer's extent plus
// margin, origin snapped to res multiples so repeated calls align
func (e *Engine) scratchGrid(l *openres.Layer, margin, res float64) (*openres.GridDef, error) {
	xmin, ymin := math.Inf(1), math.Inf(1)
	xmax, ymax := math.Inf(-1), math.Inf(-1)
	for _, f := range l.Features {
		for _, p := range f.Geom.Shell {
			xmin, xmax = math.Min(xmin, p.X), math.Max(xmax, p.X)
			ymin, ymax = math.Min(ymin, p.Y), math.Max(ymax, p.Y)
		}
	}
	eo := math.Floor((xmin-margin)/res) * res
	no := math.Ceil((ymax+margin)/res) * res
	nc := int(math.Ceil((xmax + margin - eo) / res))
	nr := int(math.Ceil((no - (ymin - margin)) / res))
	if nr <= 0 || nc <= 0 {
		return nil, &openres.InputError{Msg: "buffer: degenerate layer extent"}
	}
	if nr*nc > maxScratchCells {
		return nil, &openres.ResourceError{Op: "buffer", Msg: "scratch grid exceeds cell limit"}
	}
	return &openres.GridDef{Eorig: eo, Norig: no, Cw: res, Nrow: nr, Ncol: nc}, nil
}

// fillPolygon rasterizes a polygon (shell and holes, even-odd rule) onto r
func fillPolygon(r *openres.Raster, p openres.Polygon) {
	gd := r.GD
	rings := append([]openres.Ring{p.Shell}, p.Holes...)
	for row := 0; row < gd.Nrow; row++ {
		y := gd.Norig - (float64(row)+.5)*gd.Cw
		var xs []float64
		for _, rg := range rings {
			n := len(rg)
			for i := 0; i < n; i++ {
				a, b := rg[i], rg[(i+1)%n]
				if (a.Y > y) != (b.Y > y) {
					xs = append(xs, a.X+(y-a.Y)/(b.Y-a.Y)*(b.X-a.X))
				}
			}
		}
		sort.Float64s(xs)
		for k := 0; k+1 < len(xs); k += 2 {
			c0 := int(math.Ceil((xs[k] - gd.Eorig)/gd.Cw - .5))
			c1 := int(math.Floor((xs[k+1] - gd.Eorig)/gd.Cw - .5))
			if c0 < 0 {
				c0 = 0
			}
			if c1 >= gd.Ncol {
				c1 = gd.Ncol - 1
			}
			for c := c0; c <= c1; c++ {
				r.A[row*gd.Ncol+c] = 1.
			}
		}
	}
}
