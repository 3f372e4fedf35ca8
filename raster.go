package openres

import (
	"encoding/gob"
	"fmt"
	"os"
)

// NoData marks cells carrying no value (unreached by the cost transform,
// outside the active model area, etc.)
const NoData = -9999.

// Raster is a single-band grid of scalar values stored row-major from the
// northwest corner.
type Raster struct {
	GD *GridDef
	A  []float64
}

// NewRaster allocates a raster of zeros over gd
func NewRaster(gd *GridDef) *Raster {
	return &Raster{GD: gd, A: make([]float64, gd.Ncells())}
}

// ConstRaster allocates a raster filled with v
func ConstRaster(gd *GridDef, v float64) *Raster {
	r := NewRaster(gd)
	for i := range r.A {
		r.A[i] = v
	}
	return r
}

// Row returns the i-th row as a slice view (no copy). Long scans iterate rows
// in order so arbitrarily large grids stream with bounded working memory.
func (r *Raster) Row(i int) []float64 {
	return r.A[i*r.GD.Ncol : (i+1)*r.GD.Ncol]
}

// Value at (row,col)
func (r *Raster) Value(row, col int) float64 { return r.A[row*r.GD.Ncol+col] }

// Set value at (row,col)
func (r *Raster) Set(row, col int, v float64) { r.A[row*r.GD.Ncol+col] = v }

// Copy returns a deep copy sharing the grid definition
func (r *Raster) Copy() *Raster {
	a := make([]float64, len(r.A))
	copy(a, r.A)
	return &Raster{GD: r.GD, A: a}
}

// SaveGob Raster to gob
func (r *Raster) SaveGob(fp string) error {
	f, err := os.Create(fp)
	if err != nil {
		return fmt.Errorf(" Raster.SaveGob %v", err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(r); err != nil {
		return fmt.Errorf(" Raster.SaveGob %v", err)
	}
	return nil
}

// LoadGobRaster loads
func LoadGobRaster(fp string) (*Raster, error) {
	var r Raster
	f, err := os.Open(fp)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}
