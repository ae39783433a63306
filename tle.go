package kepler

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// NewOrbitFromTLE builds an Earth orbit from the two lines of a NORAD
// two-line element set, and returns the element set epoch. TPP is counted in
// seconds from that epoch. The TLE mean elements are read as osculating,
// which is fine for visualization and rough planning, not for conjunction
// work.
func NewOrbitFromTLE(line1, line2 string) (*Orbit, time.Time, error) {
	if err := validateTLELine(line1, '1'); err != nil {
		return nil, time.Time{}, err
	}
	if err := validateTLELine(line2, '2'); err != nil {
		return nil, time.Time{}, err
	}
	epoch, err := parseTLEEpoch(line1[18:32])
	if err != nil {
		return nil, time.Time{}, err
	}
	inc, err := tleField(line2, 8, 16)
	if err != nil {
		return nil, time.Time{}, err
	}
	raan, err := tleField(line2, 17, 25)
	if err != nil {
		return nil, time.Time{}, err
	}
	// Eccentricity carries an implied leading decimal point.
	eccDigits, err := tleField(line2, 26, 33)
	if err != nil {
		return nil, time.Time{}, err
	}
	ecc := 1e-7 * eccDigits
	argp, err := tleField(line2, 34, 42)
	if err != nil {
		return nil, time.Time{}, err
	}
	M0Deg, err := tleField(line2, 43, 51)
	if err != nil {
		return nil, time.Time{}, err
	}
	revPerDay, err := tleField(line2, 52, 63)
	if err != nil {
		return nil, time.Time{}, err
	}
	if revPerDay <= 0 {
		return nil, time.Time{}, errors.Errorf("mean motion must be positive, got %f rev/day", revPerDay)
	}
	n := revPerDay * 2 * math.Pi / 86400
	a := math.Cbrt(Earth.μ / (n * n))
	M0 := AngleFromDeg(M0Deg).Rad()
	o, err := NewOrbit(a*(1-ecc), ecc, AngleFromDeg(inc), AngleFromDeg(argp), AngleFromDeg(raan), -M0/n, Earth)
	if err != nil {
		return nil, time.Time{}, err
	}
	return o, epoch, nil
}

// validateTLELine checks length, line number and the modulo-10 checksum. A
// minus sign counts as one, everything else non-digit as zero.
func validateTLELine(line string, number byte) error {
	if len(line) != 69 {
		return errors.Errorf("TLE line must be 69 characters, got %d", len(line))
	}
	if line[0] != number || line[1] != ' ' {
		return errors.Errorf("TLE line does not start with '%c '", number)
	}
	sum := 0
	for _, c := range line[:68] {
		switch {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	if byte(sum%10)+'0' != line[68] {
		return errors.Errorf("TLE line %c checksum mismatch, computed %d", number, sum%10)
	}
	return nil
}

func tleField(line string, lo, hi int) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(line[lo:hi]), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "unreadable TLE field in columns %d-%d", lo+1, hi)
	}
	return f, nil
}

// parseTLEEpoch converts the YYDDD.DDDDDDDD epoch field. Years 57-99 live in
// the 1900s, the rest in the 2000s, per the usual two-digit pivot.
func parseTLEEpoch(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < 5 {
		return time.Time{}, errors.Errorf("TLE epoch '%s' too short", s)
	}
	year, err := strconv.Atoi(s[:2])
	if err != nil {
		return time.Time{}, errors.Wrap(err, "unreadable TLE epoch year")
	}
	if year >= 57 {
		year += 1900
	} else {
		year += 2000
	}
	day, err := strconv.ParseFloat(s[2:], 64)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "unreadable TLE epoch day")
	}
	// Day 1 is January 1st.
	return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration((day - 1) * float64(24*time.Hour))), nil
}
