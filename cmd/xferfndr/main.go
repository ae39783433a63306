package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ChristopherRabotin/kepler"
	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/viper"
)

const (
	defaultScenario = "~~unset~~"
	dtFormat        = "2006-01-02 15:04:05"
	j2000JD         = 2451545.0
)

var scenario string

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "scenario TOML to scan from")
}

func main() {
	flag.Parse()
	if scenario == defaultScenario {
		log.Fatal("no scenario provided")
	}
	viper.AddConfigPath(".")
	viper.SetConfigName(scenario)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("./%s.toml not found", scenario)
	}
	prefix := viper.GetString("General.fileprefix")
	verbose := viper.GetBool("General.verbose")
	system := viper.GetString("General.system")
	step := viper.GetFloat64("General.step")
	if step == 0 {
		step = 86400
	}

	var initial, target *kepler.Orbit
	var depFrom, depUntil, arrFrom, arrUntil float64
	var err error
	switch system {
	case "", "sol":
		depDT := readDate("Departure.from")
		arrDT := readDate("Arrival.from")
		if initial, err = kepler.HelioOrbit(viper.GetString("Departure.planet"), depDT); err != nil {
			log.Fatal(err)
		}
		if target, err = kepler.HelioOrbit(viper.GetString("Arrival.planet"), arrDT); err != nil {
			log.Fatal(err)
		}
		depFrom = j2000Seconds(depDT)
		depUntil = j2000Seconds(readDate("Departure.until"))
		arrFrom = j2000Seconds(arrDT)
		arrUntil = j2000Seconds(readDate("Arrival.until"))
	case "kerbol":
		if initial, err = kepler.KerbolSystemOrbit(viper.GetString("Departure.planet")); err != nil {
			log.Fatal(err)
		}
		if target, err = kepler.KerbolSystemOrbit(viper.GetString("Arrival.planet")); err != nil {
			log.Fatal(err)
		}
		depFrom = viper.GetFloat64("Departure.from")
		depUntil = viper.GetFloat64("Departure.until")
		arrFrom = viper.GetFloat64("Arrival.from")
		arrUntil = viper.GetFloat64("Arrival.until")
	default:
		log.Fatalf("unknown system '%s'", system)
	}

	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	if verbose {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowWarn())
	}
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC, "cmd", "xferfndr")

	grid, err := kepler.PorkchopScan(initial, target, depFrom, depUntil, arrFrom, arrUntil, step, logger)
	if err != nil {
		log.Fatal(err)
	}
	if err := grid.Export(prefix); err != nil {
		log.Fatal(err)
	}
	tDep, tArr, c3, ok := grid.Best()
	if !ok {
		log.Fatal("no feasible transfer in the scan windows")
	}
	fmt.Printf("=== BEST ===\nc3=%.3f km^2/s^2\ttof=%.2f days\n", c3/1e6, (tArr-tDep)/86400)
	if system == "kerbol" {
		fmt.Printf("departure: UT %.0f s\tarrival: UT %.0f s\n", tDep, tArr)
	} else {
		fmt.Printf("departure: %s\tarrival: %s\n", fromJ2000Seconds(tDep), fromJ2000Seconds(tArr))
	}
	if xfer, err := kepler.FindTransferOrbit(initial, tDep, target, tArr); err != nil {
		log.Printf("could not rebuild the transfer orbit: %s", err)
	} else {
		fmt.Printf("transfer: %s\n", xfer)
	}
}

// readDate accepts either a Julian date or a calendar date for a given key.
func readDate(key string) time.Time {
	if jd := viper.GetFloat64(key); jd != 0 {
		return julian.JDToTime(jd)
	}
	dt, err := time.Parse(dtFormat, viper.GetString(key))
	if err != nil {
		log.Fatalf("could not read %s: %s", key, err)
	}
	return dt
}

func j2000Seconds(dt time.Time) float64 {
	return (julian.TimeToJD(dt) - j2000JD) * 86400
}

func fromJ2000Seconds(t float64) time.Time {
	return julian.JDToTime(j2000JD + t/86400)
}
