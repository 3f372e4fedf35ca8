package engine

import (
	"container/heap"
	"fmt"
	"math"

	openres "github.com/ehestir/OpenRES"
)

// per-cell working cost + heap structures budgeted at roughly 32 bytes/cell
const bytesPerCell = 32

type cdNode struct {
	cell int
	cost float64
}

type cdHeap []cdNode

func (h cdHeap) Len() int            { return len(h) }
func (h cdHeap) Less(i, j int) bool  { return h[i].cost < h[j].cost }
func (h cdHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *cdHeap) Push(x interface{}) { *h = append(*h, x.(cdNode)) }
func (h *cdHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// CostDistance computes minimum accumulated cost from every seed cell
// (seeds > 0) to each grid cell: an 8-connected weighted multi-source
// shortest path where a step from a to b costs the mean of their frictions
// times the step distance (cell width, √2 times that on diagonals). Cells
// beyond the maxCost cutoff (0 = unbounded) are NoData. The memory budget is
// checked up front; exceeding it returns a ResourceError untouched by any
// retry logic.
func (e *Engine) CostDistance(friction, seeds *openres.Raster, maxCost float64, memoryMB int, fb openres.Feedback) (*openres.Raster, error) {
	if friction == nil || seeds == nil {
		return nil, &openres.InputError{Msg: "cost-distance: missing friction or seed raster"}
	}
	if !friction.GD.Aligned(seeds.GD) {
		return nil, &openres.AlignmentError{A: friction.GD, B: seeds.GD}
	}
	gd := friction.GD
	n := gd.Ncells()
	if memoryMB > 0 && n*bytesPerCell > memoryMB<<20 {
		return nil, &openres.ResourceError{Op: "cost_distance",
			Msg: fmt.Sprintf("%d cells need ~%d MB, budget %d MB", n, n*bytesPerCell>>20+1, memoryMB)}
	}
	if fb == nil {
		fb = openres.NullFeedback{}
	}

	cost := openres.ConstRaster(gd, openres.NoData)
	h := &cdHeap{}
	for i, v := range seeds.A {
		if v > 0. {
			cost.A[i] = 0.
			heap.Push(h, cdNode{cell: i, cost: 0.})
		}
	}

	// 8-neighbour offsets and step distances
	type nb struct {
		dr, dc int
		d      float64
	}
	nbs := [8]nb{
		{-1, 0, gd.Cw}, {1, 0, gd.Cw}, {0, -1, gd.Cw}, {0, 1, gd.Cw},
		{-1, -1, gd.Cw * math.Sqrt2}, {-1, 1, gd.Cw * math.Sqrt2},
		{1, -1, gd.Cw * math.Sqrt2}, {1, 1, gd.Cw * math.Sqrt2},
	}

	npop := 0
	for h.Len() > 0 {
		nd := heap.Pop(h).(cdNode)
		if nd.cost > cost.A[nd.cell] { // stale entry
			continue
		}
		npop++
		if npop%4096 == 0 {
			if fb.Canceled() {
				return nil, nil
			}
			fb.SetProgress(float64(npop) / float64(n) * 100.)
		}
		r, c := nd.cell/gd.Ncol, nd.cell%gd.Ncol
		for _, o := range nbs {
			rr, cc := r+o.dr, c+o.dc
			if rr < 0 || rr >= gd.Nrow || cc < 0 || cc >= gd.Ncol {
				continue
			}
			j := rr*gd.Ncol + cc
			cnew := nd.cost + (friction.A[nd.cell]+friction.A[j])/2.*o.d
			if maxCost > 0. && cnew > maxCost {
				continue
			}
			if cost.A[j] == openres.NoData || cnew < cost.A[j] {
				cost.A[j] = cnew
				heap.Push(h, cdNode{cell: j, cost: cnew})
			}
		}
	}
	return cost, nil
}
