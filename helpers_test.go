package kepler

import (
	"fmt"
	"math"
	"testing"

	floats "gonum.org/v1/gonum/floats/scalar"
)

func assertPanic(t *testing.T, f func()) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("code did not panic")
		}
	}()
	f()
}

func vectorsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := len(a) - 1; i >= 0; i-- {
		if !floats.EqualWithinRel(a[i], b[i], 1e-3) {
			return false
		}
	}
	return true
}

// vectorsEqualWithin is the absolute-tolerance variant, needed whenever a
// component of the expectation is zero and a relative check has nothing to
// scale by.
func vectorsEqualWithin(a, b []float64, ε float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := len(a) - 1; i >= 0; i-- {
		if !floats.EqualWithinAbs(a[i], b[i], ε) {
			return false
		}
	}
	return true
}

// anglesEqual returns whether two angles are equal, aware of the 0/2π seam.
func anglesEqual(a, b Angle) (bool, error) {
	if a.EqualWithin(b, angleε) {
		return true, nil
	}
	return false, fmt.Errorf("difference of %3.10f degrees", a.sep(b)*180/math.Pi)
}
