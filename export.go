package kepler

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// TrajectoryPoint is one sampled state along an orbit.
type TrajectoryPoint struct {
	Nu       float64   `json:"nu"`       // true anomaly in degrees
	Position []float64 `json:"position"` // meters
	Velocity []float64 `json:"velocity"` // meters per second
}

// Trajectory is a sampled orbit ready for serialization.
type Trajectory struct {
	Name   string            `json:"name"`
	Center string            `json:"center"`
	Points []TrajectoryPoint `json:"points"`
}

// sampleTrajectory runs the orbit through the sampler and packs the reachable
// states. Samples landing on an open orbit's asymptote come back as points at
// infinity and are dropped, there is no plotting those.
func sampleTrajectory(name string, o *Orbit, maxStep Angle) Trajectory {
	points, nus := o.OrbitalPoints(maxStep)
	traj := Trajectory{Name: name, Center: o.Origin.Name, Points: make([]TrajectoryPoint, 0, len(points))}
	for k, pt := range points {
		if IsPointAtInfinity(pt) {
			continue
		}
		traj.Points = append(traj.Points, TrajectoryPoint{Nu: nus[k].Deg(), Position: pt, Velocity: o.TrueAnomaly2Velocity(nus[k])})
	}
	return traj
}

// ExportTrajectoryCSV samples the orbit at the given step and writes one CSV
// record per reachable true anomaly to w.
func ExportTrajectoryCSV(w io.Writer, name string, o *Orbit, maxStep Angle) error {
	traj := sampleTrajectory(name, o, maxStep)
	fmt.Fprintf(w, "# Creation date (UTC): %s\n", time.Now().UTC())
	fmt.Fprintf(w, "# Records are nu (degrees), position (m), velocity (m/s) about %s\n", o.Origin.Name)
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"nu", "x", "y", "z", "vx", "vy", "vz"}); err != nil {
		return errors.Wrap(err, "could not write CSV header")
	}
	rec := make([]string, 7)
	for _, pt := range traj.Points {
		rec[0] = strconv.FormatFloat(pt.Nu, 'f', 6, 64)
		for i := 0; i < 3; i++ {
			rec[1+i] = strconv.FormatFloat(pt.Position[i], 'f', 3, 64)
			rec[4+i] = strconv.FormatFloat(pt.Velocity[i], 'f', 6, 64)
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrapf(err, "could not write CSV record for nu=%f", pt.Nu)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "could not flush CSV")
}

// ExportTrajectoryJSON samples the orbit at the given step and writes the
// whole trajectory to w as one JSON document.
func ExportTrajectoryJSON(w io.Writer, name string, o *Orbit, maxStep Angle) error {
	traj := sampleTrajectory(name, o, maxStep)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(traj), "could not encode trajectory")
}

// ExportConfig configures the exporting of a trajectory.
type ExportConfig struct {
	Filename  string
	AsCSV     bool
	AsJSON    bool
	Timestamp bool
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsCSV && !c.AsJSON
}

// ExportTrajectory samples the orbit and writes it to the configured output
// directory in every requested format.
func ExportTrajectory(o *Orbit, maxStep Angle, conf ExportConfig) error {
	if conf.IsUseless() {
		return errors.New("export config does not export anything")
	}
	write := func(ext string, fn func(io.Writer, string, *Orbit, Angle) error) error {
		f, err := os.Create(exportPath(conf, ext))
		if err != nil {
			return errors.Wrapf(err, "could not create %s export", ext)
		}
		defer f.Close()
		return fn(f, conf.Filename, o, maxStep)
	}
	if conf.AsCSV {
		if err := write("csv", ExportTrajectoryCSV); err != nil {
			return err
		}
	}
	if conf.AsJSON {
		if err := write("json", ExportTrajectoryJSON); err != nil {
			return err
		}
	}
	return nil
}

func exportPath(conf ExportConfig, ext string) string {
	outputDir := keplerConfig().OutputDir
	if conf.Timestamp {
		t := time.Now()
		return fmt.Sprintf("%s/orbit-%s-%d-%02d-%02dT%02d.%02d.%02d.%s", outputDir, conf.Filename, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), ext)
	}
	return fmt.Sprintf("%s/orbit-%s.%s", outputDir, conf.Filename, ext)
}
