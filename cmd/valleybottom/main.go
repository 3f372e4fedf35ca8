package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	openres "github.com/ehestir/OpenRES"
	"github.com/ehestir/OpenRES/engine"
	"github.com/ehestir/OpenRES/valleybottom"
	"github.com/maseology/mmaths"
	"github.com/maseology/mmio"
)

func main() {
	gdefFP := flag.String("gdef", "", "grid definition file (OE ON ROT NR NC UCS)")
	demFP := flag.String("dem", "", "elevation raster, row-major float32 binary")
	strmFP := flag.String("streams", "", "stream network, one polyline per line: x y x y ...")
	outFP := flag.String("o", "valleybottom.wkt", "output polygon WKT file")
	wdir := flag.String("wdir", "vbwork", "run workspace directory")
	chkdir := flag.String("check", "", "when set, print intermediate rasters here")
	thresh := flag.Float64("threshold", 1500., "initial cost distance threshold")
	gapf := flag.Float64("gapfactor", 2., "gap buffer factor (x cell size)")
	geo := flag.Bool("geographic", false, "stream coordinates are lon/lat")
	flag.Parse()

	if *gdefFP == "" || *demFP == "" || *strmFP == "" {
		log.Fatalf("usage: valleybottom -gdef <gdef> -dem <bin> -streams <txt> [-o out.wkt]")
	}

	fmt.Println("")
	tt := mmio.NewTimer()
	defer tt.Lap("\nrun complete")

	gd, err := openres.ReadGDEF(*gdefFP)
	if err != nil {
		log.Fatalf("%v", err)
	}
	dem := loadDEM(*demFP, gd)
	streams := openres.StreamNetwork{Lines: loadStreams(*strmFP), Geographic: *geo}

	ws, err := openres.NewWorkspace(*wdir)
	if err != nil {
		log.Fatalf("%v", err)
	}

	par := valleybottom.DefaultParams()
	par.InitialCostThreshold = *thresh
	par.GapBufferFactor = *gapf
	par.CheckDir = *chkdir

	snk, err := newWKTsink(*outFP)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer snk.close()

	fb := openres.NewTermFeedback()
	defer fb.Stop()
	if err := valleybottom.Delineate(engine.New(), dem, streams, par, ws, snk, fb); err != nil {
		log.Fatalf("%v", err)
	}
}

func loadDEM(fp string, gd *openres.GridDef) *openres.Raster {
	b := mmio.OpenBinary(fp)
	r := openres.NewRaster(gd)
	for i := 0; i < gd.Ncells(); i++ {
		r.A[i] = float64(mmio.ReadFloat32(b))
	}
	return r
}

func loadStreams(fp string) []openres.Polyline {
	var lines []openres.Polyline
	txtlns, _ := mmio.ReadTextLines(fp)
	for _, ln := range txtlns {
		flds := strings.Fields(ln)
		if len(flds) < 4 {
			continue
		}
		pl := make(openres.Polyline, 0, len(flds)/2)
		for i := 0; i+1 < len(flds); i += 2 {
			x, err := strconv.ParseFloat(flds[i], 64)
			if err != nil {
				log.Fatalf("streams %s: %v", fp, err)
			}
			y, err := strconv.ParseFloat(flds[i+1], 64)
			if err != nil {
				log.Fatalf("streams %s: %v", fp, err)
			}
			pl = append(pl, mmaths.Point{X: x, Y: y})
		}
		lines = append(lines, pl)
	}
	return lines
}

// wktSink streams corridor polygons to a WKT text file
type wktSink struct{ tw *mmio.TXTwriter }

func newWKTsink(fp string) (*wktSink, error) {
	tw, err := mmio.NewTXTwriter(fp)
	if err != nil {
		return nil, fmt.Errorf(" newWKTsink: %v", err)
	}
	return &wktSink{tw: tw}, nil
}

func (s *wktSink) close() { s.tw.Close() }

func (s *wktSink) Add(p openres.Polygon) error {
	var sb strings.Builder
	sb.WriteString("POLYGON (")
	writeRing := func(rg openres.Ring) {
		sb.WriteString("(")
		for _, pt := range rg {
			fmt.Fprintf(&sb, "%g %g, ", pt.X, pt.Y)
		}
		if len(rg) > 0 {
			fmt.Fprintf(&sb, "%g %g", rg[0].X, rg[0].Y)
		}
		sb.WriteString(")")
	}
	writeRing(p.Shell)
	for _, h := range p.Holes {
		sb.WriteString(", ")
		writeRing(h)
	}
	sb.WriteString(")")
	s.tw.WriteLine(sb.String())
	return nil
}
