package engine

import (
	"math"
	"sort"

	openres "github.com/ehestir/OpenRES"
	"github.com/maseology/mmaths"
)

// Polygonize converts each 4-connected region of equal integer cell value
// into one polygon feature (shell plus interior rings) tagged with that value
// as its class. Components are emitted in row-major order of their first
// cell, ring tracing is fully deterministic.
func (e *Engine) Polygonize(r *openres.Raster) (*openres.Layer, error) {
	if r == nil || r.GD == nil {
		return nil, &openres.InputError{Msg: "polygonize: no input raster"}
	}
	gd := r.GD
	n := gd.Ncells()
	class := make([]int, n)
	for i, v := range r.A {
		class[i] = int(math.Round(v))
	}

	// label 4-connected components, row-major seed order
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}
	var comps [][]int // cells per component
	var compClass []int
	for i := 0; i < n; i++ {
		if labels[i] >= 0 {
			continue
		}
		id := len(comps)
		cells := []int{}
		stack := []int{i}
		labels[i] = id
		for len(stack) > 0 {
			c := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			cells = append(cells, c)
			cr, cc := c/gd.Ncol, c%gd.Ncol
			for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
				rr, c2 := cr+d[0], cc+d[1]
				if rr < 0 || rr >= gd.Nrow || c2 < 0 || c2 >= gd.Ncol {
					continue
				}
				j := rr*gd.Ncol + c2
				if labels[j] < 0 && class[j] == class[i] {
					labels[j] = id
					stack = append(stack, j)
				}
			}
		}
		sort.Ints(cells)
		comps = append(comps, cells)
		compClass = append(compClass, class[i])
	}

	lyr := &openres.Layer{}
	for id, cells := range comps {
		rings := traceRings(cells, labels, id, gd)
		if len(rings) == 0 {
			continue
		}
		// the ring of largest extent is the shell, the rest are holes
		shell, amax := 0, 0.
		for k, rg := range rings {
			a := math.Abs(rg.Area())
			if a > amax {
				amax, shell = a, k
			}
		}
		p := openres.Polygon{Shell: rings[shell]}
		for k, rg := range rings {
			if k != shell {
				p.Holes = append(p.Holes, rg)
			}
		}
		lyr.Features = append(lyr.Features, openres.Feature{Geom: p, Class: compClass[id]})
	}
	return lyr, nil
}

// corner-space directed edge endpoints (x=col, y=row, y down)
type corner struct{ x, y int }

// traceRings builds the component's boundary rings by stitching the directed
// cell-side edges (interior kept consistently to one side). At a checkerboard
// pinch two outgoing edges share a corner; the sharpest available clockwise
// turn is taken so each ring stays simple.
func traceRings(cells []int, labels []int, id int, gd *openres.GridDef) []openres.Ring {
	type edge struct{ a, b corner }
	var edges []edge
	in := func(r, c int) bool {
		if r < 0 || r >= gd.Nrow || c < 0 || c >= gd.Ncol {
			return false
		}
		return labels[r*gd.Ncol+c] == id
	}
	for _, cl := range cells {
		r, c := cl/gd.Ncol, cl%gd.Ncol
		tl, tr := corner{c, r}, corner{c + 1, r}
		br, bl := corner{c + 1, r + 1}, corner{c, r + 1}
		if !in(r-1, c) {
			edges = append(edges, edge{tl, tr})
		}
		if !in(r, c+1) {
			edges = append(edges, edge{tr, br})
		}
		if !in(r+1, c) {
			edges = append(edges, edge{br, bl})
		}
		if !in(r, c-1) {
			edges = append(edges, edge{bl, tl})
		}
	}

	out := make(map[corner][]int) // corner -> indices into edges
	for i, e := range edges {
		out[e.a] = append(out[e.a], i)
	}
	used := make([]bool, len(edges))

	var rings []openres.Ring
	for i := range edges {
		if used[i] {
			continue
		}
		var cs []corner
		cur := i
		for !used[cur] {
			used[cur] = true
			cs = append(cs, edges[cur].a)
			at := edges[cur].b
			din := corner{edges[cur].b.x - edges[cur].a.x, edges[cur].b.y - edges[cur].a.y}
			next := -1
			best := 4
			for _, j := range out[at] {
				if used[j] {
					continue
				}
				dout := corner{edges[j].b.x - edges[j].a.x, edges[j].b.y - edges[j].a.y}
				if p := turnPref(din, dout); p < best {
					best, next = p, j
				}
			}
			if next < 0 {
				break // ring closed
			}
			cur = next
		}
		rings = append(rings, toWorldRing(simplify(cs), gd))
	}
	return rings
}

// turnPref ranks an outgoing direction against the incoming one: clockwise
// turn, straight, then counter-clockwise (y-down coordinates)
func turnPref(din, dout corner) int {
	cw := corner{-din.y, din.x}
	switch dout {
	case cw:
		return 0
	case din:
		return 1
	default:
		return 2
	}
}

// simplify drops collinear run-through corners
func simplify(cs []corner) []corner {
	n := len(cs)
	if n < 3 {
		return cs
	}
	var out []corner
	for i := 0; i < n; i++ {
		p, q, r := cs[(i+n-1)%n], cs[i], cs[(i+1)%n]
		if (q.x-p.x)*(r.y-q.y) != (q.y-p.y)*(r.x-q.x) {
			out = append(out, q)
		}
	}
	return out
}

func toWorldRing(cs []corner, gd *openres.GridDef) openres.Ring {
	rg := make(openres.Ring, len(cs))
	for i, c := range cs {
		rg[i] = mmaths.Point{X: gd.Eorig + float64(c.x)*gd.Cw, Y: gd.Norig - float64(c.y)*gd.Cw}
	}
	return rg
}
