package kepler

import (
	"math"

	"github.com/pkg/errors"
)

// Solver tuning knobs. These are variables and not constants because they are
// part of the numeric contract: a caller trading precision for speed may
// loosen them.
var (
	// MaxKeplerIterations caps the Newton-Raphson steps of the elliptical and
	// hyperbolic Kepler solvers. Reaching the cap is not an error: the best
	// estimate so far is returned. The convergence tests show the cap is
	// never reached with the default tolerance over the whole eccentricity
	// range, including e=0.9999.
	MaxKeplerIterations = 100
	// KeplerTolerance is the absolute residual below which the Kepler solvers
	// stop iterating.
	KeplerTolerance = 1e-15
	// MaxLambertIterations is the fixed number of Householder steps of the
	// Lambert solver.
	MaxLambertIterations = 10
)

// ErrInfiniteTime is returned when querying a closed orbit at t=±Inf: the
// position keeps wrapping forever, so there is no answer, as opposed to open
// orbits where infinite time pins the asymptote.
var ErrInfiniteTime = errors.New("infinite time has no anomaly on a closed orbit")

// PointAtInfinity returns the sentinel marking a sample beyond the reachable
// arc of an open orbit. Consumers clip it instead of plotting it.
func PointAtInfinity() []float64 {
	return []float64{math.Inf(1), math.Inf(1), math.Inf(1)}
}

// IsPointAtInfinity returns whether the provided point is the unreachable
// sentinel.
func IsPointAtInfinity(pt []float64) bool {
	return len(pt) == 3 && math.IsInf(pt[0], 1) && math.IsInf(pt[1], 1) && math.IsInf(pt[2], 1)
}

// TrueAnomaly2Point returns the inertial position vector at the provided true
// anomaly. On open orbits the anomaly is first expelled from the unreachable
// arc beyond the asymptotes; an anomaly landing exactly on an asymptote
// returns the point-at-infinity sentinel.
func (o Orbit) TrueAnomaly2Point(ν Angle) []float64 {
	if νmax, open := o.MaxTrueAnomaly(); open {
		ν = ν.Expel(νmax, νmax.Neg())
		if ν == νmax || ν == νmax.Neg() {
			return PointAtInfinity()
		}
	}
	sν, cν := ν.Sincos()
	r := o.SemiLatusRectum() / (1 + o.ecc*cν)
	return PQW2ECI(o.inc.Rad(), o.ape.Rad(), o.lan.Rad(), []float64{r * cν, r * sν, 0})
}

// TrueAnomaly2Velocity returns the inertial velocity vector at the provided
// true anomaly. Beyond the asymptotes of an open orbit the anomaly clamps to
// the asymptote, where this closed form yields the (finite) excess velocity.
func (o Orbit) TrueAnomaly2Velocity(ν Angle) []float64 {
	if νmax, open := o.MaxTrueAnomaly(); open {
		ν = ν.Expel(νmax, νmax.Neg())
	}
	sν, cν := ν.Sincos()
	k := o.Origin.μ / o.HNorm()
	return PQW2ECI(o.inc.Rad(), o.ape.Rad(), o.lan.Rad(), []float64{-k * sν, k * (o.ecc + cν), 0})
}

// TrueAnomaly2Time returns the time at which the orbit passes the provided
// true anomaly. Closed orbits pass every anomaly once per revolution; the
// returned time is the passage within half a period of TPP. On a parabolic
// orbit ν=π maps to +Inf, and on a hyperbolic orbit anomalies at or beyond
// the asymptotes map to ±Inf with the sign of the anomaly.
func (o Orbit) TrueAnomaly2Time(ν Angle) float64 {
	νs := ν.SignedRad()
	e := o.ecc
	switch {
	case o.IsElliptical():
		E := 2 * math.Atan2(math.Sqrt(1-e)*math.Sin(νs/2), math.Sqrt(1+e)*math.Cos(νs/2))
		M := E - e*math.Sin(E)
		return o.tpp + M/o.MeanMotion()
	case o.IsParabolic():
		if νs == math.Pi {
			return math.Inf(1)
		}
		D := math.Tan(νs / 2)
		return o.tpp + (D+D*D*D/3)/o.MeanMotion()
	default:
		νmax, _ := o.MaxTrueAnomaly()
		if math.Abs(νs) >= νmax.Rad() {
			// atanh would not reliably overflow right at the asymptote, so
			// the boundary is pinned explicitly.
			return math.Copysign(math.Inf(1), νs)
		}
		H := 2 * math.Atanh(math.Sqrt((e-1)/(e+1))*math.Tan(νs/2))
		M := e*math.Sinh(H) - H
		return o.tpp + M/o.MeanMotion()
	}
}

// Time2TrueAnomaly returns the true anomaly at the provided time. The time
// must not be NaN. Infinite times are a usage error on closed orbits and pin
// the matching asymptote on open ones.
func (o Orbit) Time2TrueAnomaly(t float64) (Angle, error) {
	if math.IsNaN(t) {
		return 0, errors.New("time must not be NaN")
	}
	if math.IsInf(t, 0) {
		νmax, open := o.MaxTrueAnomaly()
		if !open {
			return 0, ErrInfiniteTime
		}
		if t > 0 {
			return νmax, nil
		}
		return νmax.Neg(), nil
	}
	M := o.MeanMotion() * (t - o.tpp)
	switch {
	case o.IsElliptical():
		return o.meanAnomaly2TrueElliptical(M), nil
	case o.IsParabolic():
		return meanAnomaly2TrueParabolic(M), nil
	default:
		return o.meanAnomaly2TrueHyperbolic(M), nil
	}
}

// meanAnomaly2TrueElliptical solves Kepler's equation E - e sinE = M by
// Newton-Raphson with the Prussing & Conway starter, then converts the
// eccentric anomaly with the half-angle identity.
func (o Orbit) meanAnomaly2TrueElliptical(M float64) Angle {
	e := o.ecc
	M = AngleFromRad(M).Rad()
	E := M + e/2
	if M >= math.Pi {
		E = M - e/2
	}
	for iter := 0; iter < MaxKeplerIterations; iter++ {
		f := E - e*math.Sin(E) - M
		if math.Abs(f) < KeplerTolerance {
			break
		}
		E -= f / (1 - e*math.Cos(E))
	}
	return AngleFromRad(2 * math.Atan2(math.Sqrt(1+e)*math.Sin(E/2), math.Sqrt(1-e)*math.Cos(E/2)))
}

// meanAnomaly2TrueParabolic inverts Barker's equation through Cardano's
// closed form on the depressed cubic D³ + 3D - 3M = 0. No iteration needed.
// math.Cbrt handles the negative branch, which a fractional Pow would turn
// into NaN.
func meanAnomaly2TrueParabolic(M float64) Angle {
	disc := math.Sqrt(9*M*M/4 + 1)
	D := math.Cbrt(3*M/2+disc) + math.Cbrt(3*M/2-disc)
	return AngleFromRad(2 * math.Atan(D))
}

// meanAnomaly2TrueHyperbolic solves the hyperbolic Kepler equation
// e sinhH - H = M by Newton-Raphson seeded with asinh(M/e). A mean anomaly
// large enough to overflow sinh saturates to the asymptote, which is where
// the trajectory is headed anyway.
func (o Orbit) meanAnomaly2TrueHyperbolic(M float64) Angle {
	e := o.ecc
	H := math.Asinh(M / e)
	for iter := 0; iter < MaxKeplerIterations; iter++ {
		f := e*math.Sinh(H) - H - M
		if math.IsNaN(f) {
			νmax, _ := o.MaxTrueAnomaly()
			if M > 0 {
				return νmax
			}
			return νmax.Neg()
		}
		if math.Abs(f) < KeplerTolerance {
			break
		}
		H -= f / (e*math.Cosh(H) - 1)
	}
	// The tanh form stays bounded for huge H, where sinh and cosh would both
	// overflow, and limits to the asymptote anomaly exactly.
	return AngleFromRad(2 * math.Atan(math.Sqrt((e+1)/(e-1))*math.Tanh(H/2)))
}

// Time2Point returns the inertial position vector at the provided time.
func (o Orbit) Time2Point(t float64) ([]float64, error) {
	ν, err := o.Time2TrueAnomaly(t)
	if err != nil {
		return nil, err
	}
	return o.TrueAnomaly2Point(ν), nil
}

// Time2Velocity returns the inertial velocity vector at the provided time.
func (o Orbit) Time2Velocity(t float64) ([]float64, error) {
	ν, err := o.Time2TrueAnomaly(t)
	if err != nil {
		return nil, err
	}
	return o.TrueAnomaly2Velocity(ν), nil
}

// RV returns the position and velocity vectors at the provided time.
func (o Orbit) RV(t float64) (R, V []float64, err error) {
	ν, err := o.Time2TrueAnomaly(t)
	if err != nil {
		return nil, nil, err
	}
	return o.TrueAnomaly2Point(ν), o.TrueAnomaly2Velocity(ν), nil
}
