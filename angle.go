package kepler

import (
	"fmt"
	"math"

	sunit "github.com/soniakeys/unit"
	floats "gonum.org/v1/gonum/floats/scalar"
)

// AngleTolerance is the default equality tolerance of Angle.Equal, in radians.
// The seam-aware comparison needs a finite tolerance; this one was tuned
// empirically and may be changed by the caller.
var AngleTolerance = 1e-9

// Angle is a periodic scalar, stored normalized to [0, 2π). All angle
// arithmetic of this library goes through this type because plain float64
// comparisons break at the 0/2π seam.
type Angle float64

// AngleFromRad normalizes the provided radian value into [0, 2π).
// Negative values gain a full turn.
func AngleFromRad(rad float64) Angle {
	w := sunit.PMod(rad, 2*math.Pi)
	if w >= 2*math.Pi {
		// PMod of a tiny negative rounds up to exactly 2π.
		w -= 2 * math.Pi
	}
	return Angle(w)
}

// AngleFromDeg normalizes the provided degree value into [0, 2π).
func AngleFromDeg(deg float64) Angle {
	return AngleFromRad(deg * math.Pi / 180)
}

// Rad returns the value in radians, in [0, 2π).
func (a Angle) Rad() float64 {
	return float64(a)
}

// Deg returns the value in degrees, in [0, 360).
func (a Angle) Deg() float64 {
	return float64(a) * 180 / math.Pi
}

// SignedRad returns the value in radians, in (-π, π].
func (a Angle) SignedRad() float64 {
	if float64(a) > math.Pi {
		return float64(a) - 2*math.Pi
	}
	return float64(a)
}

// SignedDeg returns the value in degrees, in (-180, 180].
func (a Angle) SignedDeg() float64 {
	return a.SignedRad() * 180 / math.Pi
}

// Neg returns the reflection 2π - a. This is *not* the numeric negation:
// the result is again a normalized angle, on the other side of the 0 axis.
func (a Angle) Neg() Angle {
	return AngleFromRad(2*math.Pi - float64(a))
}

// Equal returns whether both angles are equal within AngleTolerance.
func (a Angle) Equal(b Angle) bool {
	return a.EqualWithin(b, AngleTolerance)
}

// EqualWithin returns whether both angles are equal within the given
// tolerance. Values straddling the 0/2π seam (i.e. a full turn apart within
// the tolerance) compare equal, which a naive float comparison misses.
func (a Angle) EqualWithin(b Angle, ε float64) bool {
	if floats.EqualWithinAbs(float64(a), float64(b), ε) {
		return true
	}
	return floats.EqualWithinAbs(math.Abs(float64(a)-float64(b)), 2*math.Pi, ε)
}

// IsBetween returns whether the angle lies in the closed interval from lower
// to upper. If lower > upper the interval wraps through zero.
func (a Angle) IsBetween(lower, upper Angle) bool {
	if lower <= upper {
		return lower <= a && a <= upper
	}
	return a >= lower || a <= upper
}

// Closer returns whichever of x and y is nearer to this angle on the circle.
// Ties go to x.
func (a Angle) Closer(x, y Angle) Angle {
	if a.sep(x) <= a.sep(y) {
		return x
	}
	return y
}

// Expel returns the angle unchanged if it lies outside the forbidden arc from
// lower to upper, and the nearer arc boundary otherwise.
func (a Angle) Expel(lower, upper Angle) Angle {
	if !a.IsBetween(lower, upper) {
		return a
	}
	return a.Closer(lower, upper)
}

// sep returns the angular separation with b, in [0, π].
func (a Angle) sep(b Angle) float64 {
	d := math.Abs(float64(a) - float64(b))
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

// Sin returns the sine of the angle.
func (a Angle) Sin() float64 {
	return math.Sin(float64(a))
}

// Cos returns the cosine of the angle.
func (a Angle) Cos() float64 {
	return math.Cos(float64(a))
}

// Sincos returns the sine and cosine of the angle.
func (a Angle) Sincos() (float64, float64) {
	return math.Sincos(float64(a))
}

// Tan returns the tangent of the angle.
func (a Angle) Tan() float64 {
	return math.Tan(float64(a))
}

// String implements the Stringer interface.
func (a Angle) String() string {
	return fmt.Sprintf("%.3f°", a.Deg())
}
