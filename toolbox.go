package openres

// Toolbox enumerates the geoprocessing capabilities the delineation pipeline
// consumes. A concrete backend (a host GIS binding, or the in-memory engine
// package) is injected at the boundary; the pipeline itself stays
// engine-agnostic. Backends are treated as opaque: no time bound is assumed,
// failures (including budget exhaustion) propagate unchanged, and operations
// accepting a Feedback report progress and honour cancellation by returning
// (nil, nil).
type Toolbox interface {
	// Slope derives terrain steepness (degrees) from an elevation surface
	Slope(dem *Raster) (*Raster, error)

	// ScaleOffset computes r*scale + offset cell-wise
	ScaleOffset(r *Raster, scale, offset float64) (*Raster, error)

	// Rasterize burns the value burn onto the footprint of each line over a
	// grid with geometry gd; all other cells are 0. Deterministic.
	Rasterize(lines []Polyline, gd *GridDef, burn float64) (*Raster, error)

	// CostDistance computes minimum accumulated cost from seed cells
	// (seeds > 0) across friction, 8-connected with diagonal steps scaled by
	// √2. maxCost 0 is unbounded; cells beyond the cutoff are NoData.
	// Exceeding memoryMB returns a ResourceError.
	CostDistance(friction, seeds *Raster, maxCost float64, memoryMB int, fb Feedback) (*Raster, error)

	// Polygonize converts each 4-connected region of equal integer cell value
	// into a polygon feature tagged with that value as its class
	Polygonize(r *Raster) (*Layer, error)

	// FilterByClass keeps only features of the given class
	FilterByClass(l *Layer, class int) (*Layer, error)

	// RemoveHoles drops interior rings of area at or below minArea
	// (0 removes all)
	RemoveHoles(l *Layer, minArea float64) (*Layer, error)

	// Smooth relaxes boundary vertices a fixed number of iterations with a
	// fixed offset, removing raster staircase artifacts
	Smooth(l *Layer, iterations int, offset float64) (*Layer, error)

	// Buffer offsets the layer by a signed distance, optionally dissolving
	// overlaps into single features
	Buffer(l *Layer, dist float64, dissolve bool) (*Layer, error)
}

// Sink receives the final corridor polygons; it is owned by the caller
type Sink interface {
	Add(p Polygon) error
}
