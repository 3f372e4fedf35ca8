// Package engine is the reference in-memory Toolbox backend: every
// geoprocessing capability the delineation pipeline consumes, computed
// directly over in-memory rasters and layers. It exists so the pipeline can
// run and be tested engine-agnostic, without a host GIS; a production
// deployment may swap in any other Toolbox implementation.
package engine

import (
	"math"

	openres "github.com/ehestir/OpenRES"
)

// Engine implements openres.Toolbox
type Engine struct {
	// BufferCellFrac sets the scratch-grid resolution used by Buffer as a
	// fraction of the buffer distance
	BufferCellFrac float64
}

// New returns an Engine with default settings
func New() *Engine { return &Engine{BufferCellFrac: .25} }

var _ openres.Toolbox = (*Engine)(nil)

const rad2deg = 180. / math.Pi

// Slope computes terrain steepness in degrees by Horn's 3x3 method,
// edge-replicated
func (e *Engine) Slope(dem *openres.Raster) (*openres.Raster, error) {
	if dem == nil || dem.GD == nil {
		return nil, &openres.InputError{Msg: "slope: no elevation raster"}
	}
	gd := dem.GD
	out := openres.NewRaster(gd)
	z := func(r, c int) float64 {
		if r < 0 {
			r = 0
		} else if r >= gd.Nrow {
			r = gd.Nrow - 1
		}
		if c < 0 {
			c = 0
		} else if c >= gd.Ncol {
			c = gd.Ncol - 1
		}
		return dem.Value(r, c)
	}
	for r := 0; r < gd.Nrow; r++ {
		for c := 0; c < gd.Ncol; c++ {
			dzdx := ((z(r-1, c+1) + 2*z(r, c+1) + z(r+1, c+1)) - (z(r-1, c-1) + 2*z(r, c-1) + z(r+1, c-1))) / (8. * gd.Cw)
			dzdy := ((z(r+1, c-1) + 2*z(r+1, c) + z(r+1, c+1)) - (z(r-1, c-1) + 2*z(r-1, c) + z(r-1, c+1))) / (8. * gd.Cw)
			out.Set(r, c, math.Atan(math.Sqrt(dzdx*dzdx+dzdy*dzdy))*rad2deg)
		}
	}
	return out, nil
}

// ScaleOffset computes r*scale + offset cell-wise
func (e *Engine) ScaleOffset(r *openres.Raster, scale, offset float64) (*openres.Raster, error) {
	if r == nil {
		return nil, &openres.InputError{Msg: "scale-offset: no input raster"}
	}
	out := r.Copy()
	for i, v := range out.A {
		out.A[i] = v*scale + offset
	}
	return out, nil
}
