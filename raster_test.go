package openres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRasterCopy(t *testing.T) {
	t.Parallel()
	gd := &GridDef{Eorig: 0., Norig: 30., Cw: 10., Nrow: 3, Ncol: 3}
	r := ConstRaster(gd, 2.)
	r.Set(1, 1, NoData)

	cp := r.Copy()
	require.Equal(t, r.A, cp.A)
	assert.Same(t, r.GD, cp.GD)

	cp.Set(0, 0, 99.)
	assert.Equal(t, 2., r.Value(0, 0)) // mutation stays on the copy
	assert.Equal(t, NoData, cp.Value(1, 1))
}
