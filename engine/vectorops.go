package engine

import (
	"math"

	openres "github.com/ehestir/OpenRES"
	"github.com/maseology/mmaths"
)

// FilterByClass keeps only features of the given class
func (e *Engine) FilterByClass(l *openres.Layer, class int) (*openres.Layer, error) {
	if l == nil {
		return nil, &openres.InputError{Msg: "filter: no input layer"}
	}
	out := &openres.Layer{}
	for _, f := range l.Features {
		if f.Class == class {
			out.Features = append(out.Features, f)
		}
	}
	return out, nil
}

// RemoveHoles drops interior rings of area at or below minArea; 0 removes all
func (e *Engine) RemoveHoles(l *openres.Layer, minArea float64) (*openres.Layer, error) {
	if l == nil {
		return nil, &openres.InputError{Msg: "remove-holes: no input layer"}
	}
	out := &openres.Layer{}
	for _, f := range l.Features {
		nf := openres.Feature{Geom: openres.Polygon{Shell: f.Geom.Shell}, Class: f.Class}
		for _, h := range f.Geom.Holes {
			if minArea > 0. && math.Abs(h.Area()) > minArea {
				nf.Geom.Holes = append(nf.Geom.Holes, h)
			}
		}
		out.Features = append(out.Features, nf)
	}
	return out, nil
}

// Smooth relaxes every ring a fixed number of iterations: each edge is
// replaced by the two points at offset and 1-offset along it, rounding off
// raster staircase corners while leaving long straight runs in place.
func (e *Engine) Smooth(l *openres.Layer, iterations int, offset float64) (*openres.Layer, error) {
	if l == nil {
		return nil, &openres.InputError{Msg: "smooth: no input layer"}
	}
	out := &openres.Layer{}
	for _, f := range l.Features {
		nf := openres.Feature{Class: f.Class}
		nf.Geom.Shell = smoothRing(f.Geom.Shell, iterations, offset)
		for _, h := range f.Geom.Holes {
			nf.Geom.Holes = append(nf.Geom.Holes, smoothRing(h, iterations, offset))
		}
		out.Features = append(out.Features, nf)
	}
	return out, nil
}

func smoothRing(rg openres.Ring, iterations int, offset float64) openres.Ring {
	if len(rg) < 3 || iterations <= 0 || offset <= 0. || offset >= .5 {
		return rg
	}
	cur := rg
	for it := 0; it < iterations; it++ {
		n := len(cur)
		next := make(openres.Ring, 0, 2*n)
		for i := 0; i < n; i++ {
			p, q := cur[i], cur[(i+1)%n]
			next = append(next,
				mmaths.Point{X: p.X + (q.X-p.X)*offset, Y: p.Y + (q.Y-p.Y)*offset},
				mmaths.Point{X: p.X + (q.X-p.X)*(1.-offset), Y: p.Y + (q.Y-p.Y)*(1.-offset)})
		}
		cur = next
	}
	return cur
}
