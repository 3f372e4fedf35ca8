package openres

import (
	"fmt"

	"github.com/im7mortal/UTM"
	"github.com/maseology/mmaths"
)

// Polyline is an ordered run of vertices
type Polyline []mmaths.Point

// Ring is a closed run of vertices; the last vertex is implicitly joined to
// the first
type Ring []mmaths.Point

// Area returns the signed area of the ring (positive counter-clockwise)
func (rg Ring) Area() float64 {
	n := len(rg)
	if n < 3 {
		return 0.
	}
	s := 0.
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		s += rg[i].X*rg[j].Y - rg[j].X*rg[i].Y
	}
	return s / 2.
}

// Centroid returns the area-weighted centroid of the ring (falls back to the
// first vertex for degenerate rings)
func (rg Ring) Centroid() mmaths.Point {
	n := len(rg)
	if n == 0 {
		return mmaths.Point{}
	}
	var cx, cy, a float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cr := rg[i].X*rg[j].Y - rg[j].X*rg[i].Y
		cx += (rg[i].X + rg[j].X) * cr
		cy += (rg[i].Y + rg[j].Y) * cr
		a += cr
	}
	if a == 0. {
		return rg[0]
	}
	return mmaths.Point{X: cx / (3. * a), Y: cy / (3. * a)}
}

// Polygon is a shell with zero or more interior rings
type Polygon struct {
	Shell Ring
	Holes []Ring
}

// Area returns shell area less hole areas
func (p Polygon) Area() float64 {
	a := p.Shell.Area()
	if a < 0. {
		a = -a
	}
	for _, h := range p.Holes {
		ha := h.Area()
		if ha < 0. {
			ha = -ha
		}
		a -= ha
	}
	return a
}

// Feature is a polygon tagged with the integer class it was polygonized from
type Feature struct {
	Geom  Polygon
	Class int
}

// Layer is an ordered set of polygon features
type Layer struct {
	Features []Feature
}

// StreamNetwork is the set of channel centerlines seeding the cost transform.
// Geographic flags lon/lat vertex coordinates; these are projected to UTM
// before rasterization rather than rejected.
type StreamNetwork struct {
	Lines      []Polyline
	Geographic bool
}

// Projected returns the network in projected coordinates. Geographic networks
// are converted vertex-wise to UTM; networks spanning zone boundaries lose
// precision (the caller is warned).
func (sn StreamNetwork) Projected(fb Feedback) ([]Polyline, error) {
	if !sn.Geographic {
		return sn.Lines, nil
	}
	fb.PushInfo("WARNING stream network is in geographic coordinates; projecting to UTM (precision limited)")
	out := make([]Polyline, len(sn.Lines))
	for i, ln := range sn.Lines {
		pl := make(Polyline, len(ln))
		for j, p := range ln {
			e, n, _, _, err := UTM.FromLatLon(p.Y, p.X, p.Y >= 0.)
			if err != nil {
				return nil, &InputError{fmt.Sprintf("stream vertex (%g,%g): %v", p.X, p.Y, err)}
			}
			pl[j] = mmaths.Point{X: e, Y: n}
		}
		out[i] = pl
	}
	return out, nil
}
