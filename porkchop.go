package kepler

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// PorkchopGrid holds one transfer scan between two orbits about the same
// body. Rows follow departure times, columns arrival times, both in seconds
// on the orbits' shared time base.
type PorkchopGrid struct {
	Departures []float64
	Arrivals   []float64
	C3         [][]float64 // departure characteristic energy, m²/s²
	VInf       [][]float64 // arrival v-infinity, m/s
	TOF        [][]float64 // time of flight, s
}

// PorkchopScan solves a Lambert problem for every departure×arrival cell
// between the two orbits. Both windows run inclusively from start to at most
// end, sampled every step seconds. Cells with no solution (arrival not after
// departure, unreachable states, solver failure) carry NaN so the grid keeps
// its shape.
func PorkchopScan(initial, target *Orbit, depStart, depEnd, arrStart, arrEnd, step float64, logger log.Logger) (*PorkchopGrid, error) {
	if initial == nil || target == nil {
		return nil, errors.New("porkchop scan needs both orbits")
	}
	if !initial.Origin.Equals(target.Origin) {
		return nil, ErrBodyMismatch
	}
	if step <= 0 || math.IsNaN(step) {
		return nil, errors.Errorf("invalid scan step %f", step)
	}
	if depEnd < depStart || arrEnd < arrStart {
		return nil, errors.New("scan windows must not end before they start")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	grid := &PorkchopGrid{
		Departures: timeRange(depStart, depEnd, step),
		Arrivals:   timeRange(arrStart, arrEnd, step),
	}
	for _, tDep := range grid.Departures {
		c3Row := nanRow(len(grid.Arrivals))
		vinfRow := nanRow(len(grid.Arrivals))
		tofRow := nanRow(len(grid.Arrivals))
		Ri, Vdep, errDep := initial.RV(tDep)
		for j, tArr := range grid.Arrivals {
			tof := tArr - tDep
			if errDep != nil || tof <= 0 {
				continue
			}
			Rf, Varr, err := target.RV(tArr)
			if err != nil {
				continue
			}
			if IsPointAtInfinity(Ri) || IsPointAtInfinity(Rf) {
				continue
			}
			Vi, Vf, err := Lambert(Ri, Rf, tof, initial.Origin)
			if err != nil {
				level.Debug(logger).Log("depart", tDep, "arrive", tArr, "err", err)
				continue
			}
			vInfDep := norm(sub(Vi, Vdep))
			c3Row[j] = vInfDep * vInfDep
			vinfRow[j] = norm(sub(Varr, Vf))
			tofRow[j] = tof
		}
		grid.C3 = append(grid.C3, c3Row)
		grid.VInf = append(grid.VInf, vinfRow)
		grid.TOF = append(grid.TOF, tofRow)
		level.Info(logger).Log("depart", tDep, "cells", len(grid.Arrivals))
	}
	return grid, nil
}

// Best returns the coordinates of the cell with the lowest departure C3, the
// usual pick when the launcher pays for the escape. ok is false when the scan
// found no feasible cell at all.
func (g *PorkchopGrid) Best() (tDep, tArr, c3 float64, ok bool) {
	c3 = math.Inf(1)
	for i, row := range g.C3 {
		for j, v := range row {
			if !math.IsNaN(v) && v < c3 {
				c3 = v
				tDep = g.Departures[i]
				tArr = g.Arrivals[j]
				ok = true
			}
		}
	}
	if !ok {
		c3 = math.NaN()
	}
	return
}

// WriteCSV writes the requested quantity ("c3", "vinf" or "tof") as a CSV
// matrix to w. The first row lists arrival times, the first column departure
// times.
func (g *PorkchopGrid) WriteCSV(w io.Writer, quantity string) error {
	var cells [][]float64
	switch quantity {
	case "c3":
		cells = g.C3
	case "vinf":
		cells = g.VInf
	case "tof":
		cells = g.TOF
	default:
		return errors.Errorf("unknown porkchop quantity '%s'", quantity)
	}
	cw := csv.NewWriter(w)
	hdr := make([]string, len(g.Arrivals)+1)
	hdr[0] = quantity
	for j, tArr := range g.Arrivals {
		hdr[j+1] = strconv.FormatFloat(tArr, 'f', 0, 64)
	}
	if err := cw.Write(hdr); err != nil {
		return errors.Wrap(err, "could not write porkchop header")
	}
	rec := make([]string, len(g.Arrivals)+1)
	for i, tDep := range g.Departures {
		rec[0] = strconv.FormatFloat(tDep, 'f', 0, 64)
		for j, v := range cells[i] {
			rec[j+1] = strconv.FormatFloat(v, 'f', 3, 64)
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrap(err, "could not write porkchop record")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "could not flush porkchop CSV")
}

// Export writes the c3, vinf and tof grids as contour-<name>-<quantity>.csv
// in the configured output directory, ready for contour plotting.
func (g *PorkchopGrid) Export(name string) error {
	for _, quantity := range []string{"c3", "vinf", "tof"} {
		f, err := os.Create(fmt.Sprintf("%s/contour-%s-%s.csv", keplerConfig().OutputDir, name, quantity))
		if err != nil {
			return errors.Wrapf(err, "could not create %s contour", quantity)
		}
		if err := g.WriteCSV(f, quantity); err != nil {
			f.Close()
			return err
		}
		f.Close()
	}
	return nil
}

// timeRange samples [start, end] every step, always keeping start.
func timeRange(start, end, step float64) []float64 {
	var ts []float64
	for t := start; t <= end; t += step {
		ts = append(ts, t)
	}
	return ts
}

func nanRow(n int) []float64 {
	row := make([]float64, n)
	for i := range row {
		row[i] = math.NaN()
	}
	return row
}
