package valleybottom

import (
	"fmt"

	openres "github.com/ehestir/OpenRES"
)

// buildFriction derives the cost-per-unit-distance surface: terrain slope
// scaled by cell width, floored by ε so flat terrain still penalizes
// propagation. Every cell of the result is strictly positive.
func buildFriction(tb openres.Toolbox, dem *openres.Raster, floor float64, fb openres.Feedback) (*openres.Raster, error) {
	if dem == nil || dem.GD == nil || len(dem.A) == 0 {
		return nil, &openres.InputError{Msg: "elevation raster missing or empty"}
	}

	fb.PushInfo("computing slope...")
	slp, err := tb.Slope(dem)
	if err != nil {
		return nil, fmt.Errorf(" buildFriction slope: %w", err)
	}
	if slp == nil { // cancelled
		return nil, nil
	}

	fb.PushInfo("conditioning slope...")
	frict, err := tb.ScaleOffset(slp, dem.GD.Cw, floor)
	if err != nil {
		return nil, fmt.Errorf(" buildFriction condition: %w", err)
	}
	return frict, nil
}

// burnSeeds rasterizes the stream network onto the friction grid's geometry,
// burn value 1 on line footprints. The result is checked explicitly against
// the friction grid before any cell-wise combination downstream.
func burnSeeds(tb openres.Toolbox, streams openres.StreamNetwork, frict *openres.Raster, fb openres.Feedback) (*openres.Raster, error) {
	if len(streams.Lines) == 0 {
		return nil, &openres.InputError{Msg: "stream network missing or empty"}
	}
	lines, err := streams.Projected(fb)
	if err != nil {
		return nil, err
	}

	fb.PushInfo("rasterizing streams...")
	seeds, err := tb.Rasterize(lines, frict.GD, 1.)
	if err != nil {
		return nil, fmt.Errorf(" burnSeeds rasterize: %w", err)
	}
	if seeds == nil { // cancelled
		return nil, nil
	}
	if !seeds.GD.Aligned(frict.GD) {
		return nil, &openres.AlignmentError{A: seeds.GD, B: frict.GD}
	}

	nseed := 0
	for _, v := range seeds.A {
		if v > 0. {
			nseed++
		}
	}
	if nseed == 0 {
		return nil, &openres.InputError{Msg: "stream network footprint does not intersect the elevation grid"}
	}
	return seeds, nil
}
