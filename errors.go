package openres

import "fmt"

// InputError flags a missing or invalid raster/vector input; the run aborts
// before any downstream stage is attempted.
type InputError struct{ Msg string }

func (e *InputError) Error() string { return "input error: " + e.Msg }

// AlignmentError flags a grid-geometry mismatch between rasters that are
// about to be combined cell-by-cell.
type AlignmentError struct{ A, B *GridDef }

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("alignment error: grid [%v] does not match [%v]", e.A, e.B)
}

// EmptySelectionError flags a coarse threshold that selected zero pixels; the
// caller must widen the initial threshold and retry.
type EmptySelectionError struct{ Threshold float64 }

func (e *EmptySelectionError) Error() string {
	return fmt.Sprintf("empty selection: cost threshold %g selected 0 pixels, increase and retry", e.Threshold)
}

// ResourceError flags a collaborator exceeding its memory/IO budget; it is
// surfaced unchanged, never retried internally.
type ResourceError struct {
	Op  string
	Msg string
}

func (e *ResourceError) Error() string { return fmt.Sprintf("resource error: %s: %s", e.Op, e.Msg) }

// SinkError flags an output sink that cannot be created or written
type SinkError struct{ Err error }

func (e *SinkError) Error() string { return fmt.Sprintf("sink error: %v", e.Err) }
func (e *SinkError) Unwrap() error { return e.Err }

// CleanupWarning reports a failed ephemeral-artifact deletion. It is logged
// only; it never fails a run.
type CleanupWarning struct {
	Path string
	Err  error
}

func (w *CleanupWarning) Error() string {
	return fmt.Sprintf("cleanup warning: could not delete %s: %v", w.Path, w.Err)
}
