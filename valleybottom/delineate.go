package valleybottom

import (
	"fmt"

	openres "github.com/ehestir/OpenRES"
	"github.com/maseology/mmio"
)

// Delineate runs the cost-distance valley-bottom pipeline:
//  1. friction surface from terrain steepness
//  2. stream network burned to a seed mask on the same grid
//  3. accumulated cost away from the channel (external transform)
//  4. coarse threshold, corridor mean, refined threshold
//  5. polygonize / filter / de-hole / smooth
//  6. morphological gap closing
//  7. stream polygons to the caller's sink, purge artifacts
//
// Stages execute strictly in sequence; each completes or fails before the
// next starts. Cancellation at any stage boundary (or inside a row scan)
// returns nil with no output. Ephemeral artifacts land in ws and are purged
// on every exit path.
func Delineate(tb openres.Toolbox, dem *openres.Raster, streams openres.StreamNetwork, par Params, ws *openres.Workspace, sink openres.Sink, fb openres.Feedback) error {
	if fb == nil {
		fb = openres.NullFeedback{}
	}
	if sink == nil {
		return &openres.SinkError{Err: fmt.Errorf("no output sink supplied")}
	}
	tt := mmio.NewTimer()
	if ws != nil {
		defer ws.Purge(fb)
	}

	// 1. friction surface
	frict, err := buildFriction(tb, dem, par.FrictionFloor, fb)
	if err != nil {
		return err
	}
	if frict == nil || fb.Canceled() {
		return nil
	}
	spill(ws, "friction", frict, fb)

	// 2. seed mask
	seeds, err := burnSeeds(tb, streams, frict, fb)
	if err != nil {
		return err
	}
	if seeds == nil || fb.Canceled() {
		return nil
	}
	spill(ws, "seeds", seeds, fb)

	// 3. accumulated cost
	fb.PushInfo("running cost-distance transform...")
	cost, err := tb.CostDistance(frict, seeds, par.MaxCost, par.MemoryMB, fb)
	if err != nil {
		return err // ResourceError and the like surface unchanged
	}
	if cost == nil || fb.Canceled() {
		return nil
	}
	if !cost.GD.Aligned(seeds.GD) {
		return &openres.AlignmentError{A: cost.GD, B: seeds.GD}
	}
	spill(ws, "costdist", cost, fb)
	tt.Lap("cost-distance complete")

	// 4. adaptive two-pass threshold
	fb.PushInfo("creating coarse mask (cost <= %g)...", par.InitialCostThreshold)
	coarse := thresholdMask(cost, par.InitialCostThreshold)
	spill(ws, "mask_coarse", coarse, fb)

	fb.PushInfo("computing mean cost inside coarse mask...")
	mean, ok, err := corridorMean(cost, coarse, par.InitialCostThreshold, fb)
	if err != nil {
		return err
	}
	if !ok {
		return nil // cancelled mid-scan
	}
	fb.PushInfo("mean cost inside coarse mask = %g", mean)

	refined := thresholdMask(cost, mean)
	spill(ws, "mask_refined", refined, fb)
	if len(par.CheckDir) > 0 {
		checkandprint(par.CheckDir, frict, cost, coarse, refined)
	}
	tt.Lap("threshold engine complete")

	// 5. vector cleanup
	lyr, err := vectorize(tb, refined, par, fb)
	if err != nil {
		return err
	}
	if lyr == nil || fb.Canceled() {
		return nil
	}

	// 6. gap closing
	gapDist := dem.GD.Cw * par.GapBufferFactor
	lyr, err = closeGaps(tb, lyr, gapDist, par.MergePolicy, fb)
	if err != nil {
		return err
	}
	if lyr == nil || fb.Canceled() {
		return nil
	}

	// 7. stream to sink
	if err := writeOut(lyr, sink, fb); err != nil {
		return err
	}
	tt.Print("valley bottom delineation complete")
	return nil
}

// spill persists a stage raster to the run workspace; entirely best-effort,
// the artifact only exists for inspection and the tolerant purge.
func spill(ws *openres.Workspace, tag string, r *openres.Raster, fb openres.Feedback) {
	if ws == nil {
		return
	}
	if _, err := ws.SaveRaster(tag, r); err != nil {
		fb.PushInfo("WARNING could not spill %s: %v", tag, err)
	}
}

// checkandprint writes intermediate rasters as flat float lists for
// inspection
func checkandprint(dir string, frict, cost, coarse, refined *openres.Raster) {
	mmio.MakeDir(dir)
	mmio.WriteFloats(dir+"/VB-friction.txt", frict.A)
	mmio.WriteFloats(dir+"/VB-costdist.txt", cost.A)
	mmio.WriteFloats(dir+"/VB-mask-coarse.txt", coarse.A)
	mmio.WriteFloats(dir+"/VB-mask-refined.txt", refined.A)
}
