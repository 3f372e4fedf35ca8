package openres

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/maseology/mmio"
)

// GridDef holds the geometry of a uniform square-celled grid: upper-left
// (northwest) origin, rotation, dimensions and cell width. Elevation,
// friction, seed and cost rasters in a run must all share one GridDef.
type GridDef struct {
	Eorig, Norig, Rotation float64
	Cw                     float64 // cell width
	Nrow, Ncol             int
}

// ReadGDEF imports a grid definition file (6 header lines: OE, ON, ROT, NR,
// NC, U<CS>)
func ReadGDEF(fp string) (*GridDef, error) {
	if _, ok := mmio.FileExists(fp); !ok {
		return nil, &InputError{fmt.Sprintf("gdef %s: file not found", fp)}
	}
	a, _ := mmio.ReadTextLines(fp)
	if len(a) < 6 {
		return nil, &InputError{fmt.Sprintf("gdef %s: %d lines read, 6 needed", fp, len(a))}
	}
	stErr := make([]string, 0)
	parse := func(v, name string) float64 {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			stErr = append(stErr, fmt.Sprintf("failed to read '%s': %v", name, err))
		}
		return f
	}
	oe := parse(a[0], "OE")
	on := parse(a[1], "ON")
	rot := parse(a[2], "ROT")
	nr := int(parse(a[3], "NR"))
	nc := int(parse(a[4], "NC"))

	cstr := strings.TrimSpace(a[5])
	if len(cstr) > 0 && cstr[0] == 'U' { // uniform grid flag
		cstr = cstr[1:]
	}
	cs := parse(cstr, "CS")

	if len(stErr) > 0 {
		return nil, &InputError{fmt.Sprintf("gdef %s: %s", fp, strings.Join(stErr, "; "))}
	}
	if nr <= 0 || nc <= 0 || cs <= 0. {
		return nil, &InputError{fmt.Sprintf("gdef %s: invalid dimensions (NR %d, NC %d, CS %g)", fp, nr, nc, cs)}
	}
	return &GridDef{Eorig: oe, Norig: on, Rotation: rot, Cw: cs, Nrow: nr, Ncol: nc}, nil
}

// Ncells the total cell count
func (gd *GridDef) Ncells() int { return gd.Nrow * gd.Ncol }

// CellArea in squared grid units
func (gd *GridDef) CellArea() float64 { return gd.Cw * gd.Cw }

// CellCentroid returns the world coordinate of the centre of cell (row,col)
func (gd *GridDef) CellCentroid(row, col int) (x, y float64) {
	return gd.Eorig + (float64(col)+.5)*gd.Cw, gd.Norig - (float64(row)+.5)*gd.Cw
}

// CellID converts a world coordinate to a row-major cell index, -1 if outside
func (gd *GridDef) CellID(x, y float64) int {
	col := int(math.Floor((x - gd.Eorig) / gd.Cw))
	row := int(math.Floor((gd.Norig - y) / gd.Cw))
	if row < 0 || row >= gd.Nrow || col < 0 || col >= gd.Ncol {
		return -1
	}
	return row*gd.Ncol + col
}

// Extent returns xmin, ymin, xmax, ymax
func (gd *GridDef) Extent() (xmin, ymin, xmax, ymax float64) {
	return gd.Eorig, gd.Norig - float64(gd.Nrow)*gd.Cw, gd.Eorig + float64(gd.Ncol)*gd.Cw, gd.Norig
}

const alignTol = 1e-9

// Aligned reports whether two grid definitions share identical extent,
// resolution, origin and rotation. Rasters combined cell-by-cell must pass
// this check first.
func (gd *GridDef) Aligned(other *GridDef) bool {
	if other == nil {
		return false
	}
	return math.Abs(gd.Eorig-other.Eorig) < alignTol &&
		math.Abs(gd.Norig-other.Norig) < alignTol &&
		math.Abs(gd.Rotation-other.Rotation) < alignTol &&
		math.Abs(gd.Cw-other.Cw) < alignTol &&
		gd.Nrow == other.Nrow && gd.Ncol == other.Ncol
}

func (gd *GridDef) String() string {
	return fmt.Sprintf("%dx%d cw=%g origin=(%g,%g) rot=%g", gd.Nrow, gd.Ncol, gd.Cw, gd.Eorig, gd.Norig, gd.Rotation)
}
