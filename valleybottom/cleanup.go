package valleybottom

import (
	"fmt"

	openres "github.com/ehestir/OpenRES"
	"github.com/maseology/mmaths"
)

// vectorize runs the refined mask through the vector cleanup sequence:
// polygonize, keep class 1, strip interior rings, relax the staircase
// boundary. Cancellation mid-sequence discards partial work.
func vectorize(tb openres.Toolbox, refined *openres.Raster, par Params, fb openres.Feedback) (*openres.Layer, error) {
	fb.PushInfo("polygonizing refined mask...")
	lyr, err := tb.Polygonize(refined)
	if err != nil {
		return nil, fmt.Errorf(" vectorize polygonize: %w", err)
	}
	if lyr == nil || fb.Canceled() {
		return nil, nil
	}

	fb.PushInfo("extracting corridor class...")
	lyr, err = tb.FilterByClass(lyr, 1)
	if err != nil {
		return nil, fmt.Errorf(" vectorize filter: %w", err)
	}

	fb.PushInfo("deleting holes...")
	lyr, err = tb.RemoveHoles(lyr, par.MinHoleArea)
	if err != nil {
		return nil, fmt.Errorf(" vectorize holes: %w", err)
	}
	if fb.Canceled() {
		return nil, nil
	}

	fb.PushInfo("smoothing...")
	lyr, err = tb.Smooth(lyr, par.SmoothIterations, par.SmoothOffset)
	if err != nil {
		return nil, fmt.Errorf(" vectorize smooth: %w", err)
	}
	return lyr, nil
}

// closeGaps bridges corridor pinches narrower than twice the gap distance by
// dissolve-buffering out then back in. Under MergeAcrossGaps a fusion of
// originally disjoint components is kept (intended gap-closing); under
// PreserveComponents any feature that fused two or more input components is
// replaced by the components it grew from.
func closeGaps(tb openres.Toolbox, lyr *openres.Layer, gapDist float64, policy MergePolicy, fb openres.Feedback) (*openres.Layer, error) {
	fb.PushInfo("closing narrow gaps (distance %g)...", gapDist)
	out, err := tb.Buffer(lyr, gapDist, true)
	if err != nil {
		return nil, fmt.Errorf(" closeGaps buffer out: %w", err)
	}
	if out == nil || fb.Canceled() {
		return nil, nil
	}
	closed, err := tb.Buffer(out, -gapDist, true)
	if err != nil {
		return nil, fmt.Errorf(" closeGaps buffer in: %w", err)
	}
	if closed == nil {
		return nil, nil
	}

	if policy == PreserveComponents {
		closed = unfuse(closed, lyr)
	}
	return closed, nil
}

// unfuse swaps any closed feature that swallowed two or more of the original
// components back to those originals
func unfuse(closed, orig *openres.Layer) *openres.Layer {
	out := &openres.Layer{}
	for _, f := range closed.Features {
		var members []openres.Feature
		for _, o := range orig.Features {
			if len(o.Geom.Shell) > 0 && pointInRing(o.Geom.Shell.Centroid(), f.Geom.Shell) {
				members = append(members, o)
			}
		}
		if len(members) > 1 {
			out.Features = append(out.Features, members...)
		} else {
			out.Features = append(out.Features, f)
		}
	}
	return out
}

// pointInRing: even-odd ray cast
func pointInRing(p mmaths.Point, rg openres.Ring) bool {
	in := false
	n := len(rg)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		if (rg[i].Y > p.Y) != (rg[j].Y > p.Y) &&
			p.X < (rg[j].X-rg[i].X)*(p.Y-rg[i].Y)/(rg[j].Y-rg[i].Y)+rg[i].X {
			in = !in
		}
	}
	return in
}
