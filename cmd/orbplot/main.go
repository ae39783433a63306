package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strings"

	"github.com/ChristopherRabotin/kepler"
)

var (
	name      string
	bodyName  string
	tleFile   string
	rpe       float64
	ecc       float64
	incDeg    float64
	apeDeg    float64
	lanDeg    float64
	tpp       float64
	stepDeg   float64
	asCSV     bool
	asJSON    bool
	timestamp bool
)

func init() {
	flag.StringVar(&name, "name", "orbit", "name of the exported trajectory")
	flag.StringVar(&bodyName, "body", "Earth", "central body")
	flag.StringVar(&tleFile, "tle", "", "read the orbit from this TLE file instead of the element flags")
	flag.Float64Var(&rpe, "rpe", 0, "periapsis radius (m)")
	flag.Float64Var(&ecc, "ecc", 0, "eccentricity")
	flag.Float64Var(&incDeg, "inc", 0, "inclination (deg)")
	flag.Float64Var(&apeDeg, "ape", 0, "argument of periapsis (deg)")
	flag.Float64Var(&lanDeg, "lan", 0, "longitude of the ascending node (deg)")
	flag.Float64Var(&tpp, "tpp", 0, "time of periapsis passage (s)")
	flag.Float64Var(&stepDeg, "step", 1, "maximum sampling step (deg)")
	flag.BoolVar(&asCSV, "csv", true, "export as CSV")
	flag.BoolVar(&asJSON, "json", false, "export as JSON")
	flag.BoolVar(&timestamp, "timestamp", false, "timestamp the export files")
}

func main() {
	flag.Parse()
	var orbit *kepler.Orbit
	if tleFile != "" {
		line1, line2, err := readTLE(tleFile)
		if err != nil {
			log.Fatal(err)
		}
		o, epoch, err := kepler.NewOrbitFromTLE(line1, line2)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("TLE epoch: %s\n", epoch)
		orbit = o
	} else {
		body, err := kepler.BodyByName(bodyName)
		if err != nil {
			log.Fatal(err)
		}
		o, err := kepler.NewOrbit(rpe, ecc, kepler.AngleFromDeg(incDeg), kepler.AngleFromDeg(apeDeg), kepler.AngleFromDeg(lanDeg), tpp, body)
		if err != nil {
			log.Fatal(err)
		}
		orbit = o
	}
	fmt.Printf("%s\n", orbit)
	if p := orbit.Period(); !math.IsInf(p, 1) {
		fmt.Printf("period: %.1f s\n", p)
	}
	conf := kepler.ExportConfig{Filename: name, AsCSV: asCSV, AsJSON: asJSON, Timestamp: timestamp}
	if err := kepler.ExportTrajectory(orbit, kepler.AngleFromDeg(stepDeg), conf); err != nil {
		log.Fatal(err)
	}
}

// readTLE pulls the first element set out of a two- or three-line file.
func readTLE(path string) (line1, line2 string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r ")
		if strings.HasPrefix(line, "1 ") && line1 == "" {
			line1 = line
		} else if strings.HasPrefix(line, "2 ") && line1 != "" {
			return line1, line, scanner.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return "", "", err
	}
	return "", "", fmt.Errorf("no element set found in %s", path)
}
