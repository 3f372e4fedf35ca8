package openres

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/maseology/mmio"
)

// Workspace scopes one run's ephemeral artifacts. Every file it issues is
// prefixed with a per-run id so concurrent invocations sharing a directory
// never collide, and Purge removes only the files this run created.
type Workspace struct {
	Dir   string
	run   string
	files []string
}

// NewWorkspace readies dir for a run
func NewWorkspace(dir string) (*Workspace, error) {
	mmio.MakeDir(dir)
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return nil, &InputError{fmt.Sprintf("workspace %s: not a writable directory", dir)}
	}
	return &Workspace{Dir: dir, run: uuid.New().String()[:8]}, nil
}

// RunID returns the per-run artifact prefix
func (w *Workspace) RunID() string { return w.run }

// TempFile issues a uniquely-named artifact path and records it for Purge
func (w *Workspace) TempFile(tag string) string {
	fp := filepath.Join(w.Dir, fmt.Sprintf("vb_%s_%s", w.run, tag))
	w.files = append(w.files, fp)
	return fp
}

// SaveRaster spills a stage raster to the workspace, returning its path
func (w *Workspace) SaveRaster(tag string, r *Raster) (string, error) {
	fp := w.TempFile(tag + ".gob")
	if err := r.SaveGob(fp); err != nil {
		return "", fmt.Errorf(" Workspace.SaveRaster %v", err)
	}
	return fp, nil
}

// Purge deletes every artifact this run created. Individual deletion failures
// are reported as CleanupWarning messages and never abort the sweep.
func (w *Workspace) Purge(fb Feedback) {
	for _, fp := range w.files {
		if _, ok := mmio.FileExists(fp); !ok {
			continue
		}
		if err := os.Remove(fp); err != nil {
			cw := &CleanupWarning{Path: fp, Err: err}
			fb.PushInfo("%v", cw)
		}
	}
	w.files = nil
}
