package valleybottom

// MergePolicy governs what the gap closer does when buffering fuses
// originally disjoint corridor components.
type MergePolicy int

const (
	// MergeAcrossGaps keeps fused components: pinches narrower than twice the
	// gap distance are bridged, including across originally separate
	// segments. This is the upstream behaviour.
	MergeAcrossGaps MergePolicy = iota
	// PreserveComponents re-separates components that were disjoint before
	// closing, clipping each closed feature back to the pre-close components
	// it grew from.
	PreserveComponents
)

// Params holds the delineation parameters
type Params struct {
	InitialCostThreshold float64 // coarse accumulated-cost cutoff; a loose upper bound is enough
	GapBufferFactor      float64 // gap distance = factor × cell width
	FrictionFloor        float64 // ε added to every friction cell; keeps cost strictly positive on flats
	SmoothIterations     int
	SmoothOffset         float64
	MinHoleArea          float64 // interior rings at or below this area are removed; 0 removes all
	MaxCost              float64 // cost-distance cutoff; 0 = unbounded
	MemoryMB             int     // cost-distance memory budget
	MergePolicy          MergePolicy
	CheckDir             string // when set, intermediate rasters are printed here for inspection
}

// DefaultParams mirror the upstream tool's defaults
func DefaultParams() Params {
	return Params{
		InitialCostThreshold: 1500.,
		GapBufferFactor:      2.,
		FrictionFloor:        1e-5,
		SmoothIterations:     3,
		SmoothOffset:         .4,
		MinHoleArea:          0.,
		MaxCost:              0.,
		MemoryMB:             300,
		MergePolicy:          MergeAcrossGaps,
	}
}
