package kepler

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	floats "gonum.org/v1/gonum/floats/scalar"
)

const (
	eccentricityε = 5e-5                         // 0.00005
	angleε        = (5e-3 / 360) * (2 * math.Pi) // 0.005 degrees
	rpeε          = 1e-4                         // relative, 0.01%
	distanceε     = 2e1                          // 20 m
	velocityε     = 1e-3                         // in m/s
)

// ParabolicSnap is the half width of the eccentricity band which
// NewOrbitFromRV snaps to exactly 1, so that a numerically-almost-parabolic
// state deterministically selects the parabolic branch of the solvers.
var ParabolicSnap = 1e-10

// ErrRectilinear is returned when state vectors carry no angular momentum:
// the orbit degenerates to a radial line and has no element representation here.
var ErrRectilinear = errors.New("state vectors describe a rectilinear orbit")

// Orbit defines an orbit via its classical orbital elements: periapsis radius
// (m), eccentricity, inclination, argument of periapsis, longitude of the
// ascending node and time of periapsis passage (s). Angles are normalized
// Angle values and the time element is on whatever clock the caller uses
// consistently. Mutating an Orbit concurrently is the caller's problem;
// reads are pure.
type Orbit struct {
	rpe, ecc      float64
	inc, ape, lan Angle
	tpp           float64
	Origin        GravitationalBody
}

// NewOrbit builds an orbit from its six elements around the provided body.
// NaN elements are rejected, negative periapsis radius and eccentricity are
// clamped to zero.
func NewOrbit(rpe, ecc float64, inc, ape, lan Angle, tpp float64, body GravitationalBody) (*Orbit, error) {
	o := &Orbit{Origin: body}
	if err := o.SetRPE(rpe); err != nil {
		return nil, err
	}
	if err := o.SetECC(ecc); err != nil {
		return nil, err
	}
	if err := o.SetINC(inc); err != nil {
		return nil, err
	}
	if err := o.SetAPE(ape); err != nil {
		return nil, err
	}
	if err := o.SetLAN(lan); err != nil {
		return nil, err
	}
	if err := o.SetTPP(tpp); err != nil {
		return nil, err
	}
	return o, nil
}

// RPE returns the periapsis radius.
func (o Orbit) RPE() float64 { return o.rpe }

// ECC returns the eccentricity.
func (o Orbit) ECC() float64 { return o.ecc }

// INC returns the inclination.
func (o Orbit) INC() Angle { return o.inc }

// APE returns the argument of periapsis.
func (o Orbit) APE() Angle { return o.ape }

// LAN returns the longitude of the ascending node.
func (o Orbit) LAN() Angle { return o.lan }

// TPP returns the time of periapsis passage.
func (o Orbit) TPP() float64 { return o.tpp }

// SetRPE sets the periapsis radius. NaN and infinite values are rejected and
// negative values clamp to zero.
func (o *Orbit) SetRPE(rpe float64) error {
	if math.IsNaN(rpe) || math.IsInf(rpe, 0) {
		return errors.New("periapsis radius must be finite")
	}
	if rpe < 0 {
		rpe = 0
	}
	o.rpe = rpe
	return nil
}

// SetECC sets the eccentricity. NaN and infinite values are rejected and
// negative values clamp to zero.
func (o *Orbit) SetECC(ecc float64) error {
	if math.IsNaN(ecc) || math.IsInf(ecc, 0) {
		return errors.New("eccentricity must be finite")
	}
	if ecc < 0 {
		ecc = 0
	}
	o.ecc = ecc
	return nil
}

// SetINC sets the inclination. NaN is rejected.
func (o *Orbit) SetINC(inc Angle) error {
	if math.IsNaN(float64(inc)) {
		return errors.New("inclination must not be NaN")
	}
	o.inc = inc
	return nil
}

// SetAPE sets the argument of periapsis. NaN is rejected.
func (o *Orbit) SetAPE(ape Angle) error {
	if math.IsNaN(float64(ape)) {
		return errors.New("argument of periapsis must not be NaN")
	}
	o.ape = ape
	return nil
}

// SetLAN sets the longitude of the ascending node. NaN is rejected.
func (o *Orbit) SetLAN(lan Angle) error {
	if math.IsNaN(float64(lan)) {
		return errors.New("longitude of ascending node must not be NaN")
	}
	o.lan = lan
	return nil
}

// SetTPP sets the time of periapsis passage. NaN and infinite values are rejected.
func (o *Orbit) SetTPP(tpp float64) error {
	if math.IsNaN(tpp) || math.IsInf(tpp, 0) {
		return errors.New("time of periapsis passage must be finite")
	}
	o.tpp = tpp
	return nil
}

// IsElliptical returns whether the orbit is closed (this includes circular).
func (o Orbit) IsElliptical() bool { return o.ecc < 1 }

// IsParabolic returns whether the orbit is exactly parabolic.
func (o Orbit) IsParabolic() bool { return o.ecc == 1 }

// IsHyperbolic returns whether the orbit is hyperbolic.
func (o Orbit) IsHyperbolic() bool { return o.ecc > 1 }

// SemiMajorAxis returns the semi-major axis: positive for closed orbits,
// +Inf for parabolic ones and negative for hyperbolic ones.
func (o Orbit) SemiMajorAxis() float64 {
	if o.IsParabolic() {
		return math.Inf(1)
	}
	return o.rpe / (1 - o.ecc)
}

// SemiLatusRectum returns the semi-latus rectum.
func (o Orbit) SemiLatusRectum() float64 {
	return o.rpe * (1 + o.ecc)
}

// Period returns the orbital period in seconds, +Inf for open orbits.
// This is a float64 and not a time.Duration because open orbits don't wrap
// and Duration would overflow on long ellipses anyway.
func (o Orbit) Period() float64 {
	if !o.IsElliptical() {
		return math.Inf(1)
	}
	a := o.SemiMajorAxis()
	return 2 * math.Pi * math.Sqrt(a*a*a/o.Origin.μ)
}

// MeanMotion returns the mean motion in rad/s. For the parabolic case this is
// the Barker equation rate √(μ/2rp³).
func (o Orbit) MeanMotion() float64 {
	if o.IsParabolic() {
		return math.Sqrt(o.Origin.μ / (2 * o.rpe * o.rpe * o.rpe))
	}
	a := math.Abs(o.SemiMajorAxis())
	return math.Sqrt(o.Origin.μ / (a * a * a))
}

// HNorm returns the norm of the specific angular momentum.
func (o Orbit) HNorm() float64 {
	return math.Sqrt(o.Origin.μ * o.SemiLatusRectum())
}

// HVector returns the specific angular momentum vector.
func (o Orbit) HVector() []float64 {
	return PQW2ECI(o.inc.Rad(), o.ape.Rad(), o.lan.Rad(), []float64{0, 0, o.HNorm()})
}

// EVector returns the eccentricity vector, which points at periapsis.
func (o Orbit) EVector() []float64 {
	return PQW2ECI(o.inc.Rad(), o.ape.Rad(), o.lan.Rad(), []float64{o.ecc, 0, 0})
}

// NVector returns the nodal vector, which points at the ascending node.
func (o Orbit) NVector() []float64 {
	return cross([]float64{0, 0, 1}, o.HVector())
}

// MaxTrueAnomaly returns the true anomaly of the asymptote of an open orbit,
// acos(-1/e), and whether it exists. Closed orbits have no such bound and
// return false.
func (o Orbit) MaxTrueAnomaly() (Angle, bool) {
	if o.IsElliptical() {
		return 0, false
	}
	return AngleFromRad(math.Acos(-1 / o.ecc)), true
}

// Periapsis returns the position vector of the periapsis.
func (o Orbit) Periapsis() []float64 {
	return o.finitePoint(0)
}

// Apoapsis returns the position vector of the apoapsis, nil for open orbits.
func (o Orbit) Apoapsis() []float64 {
	if !o.IsElliptical() {
		return nil
	}
	return o.finitePoint(AngleFromRad(math.Pi))
}

// AscendingNode returns the position vector of the ascending node, nil when
// the crossing lies beyond the reachable arc of an open orbit.
func (o Orbit) AscendingNode() []float64 {
	return o.finitePoint(o.ape.Neg())
}

// DescendingNode returns the position vector of the descending node, nil when
// the crossing lies beyond the reachable arc of an open orbit.
func (o Orbit) DescendingNode() []float64 {
	return o.finitePoint(AngleFromRad(math.Pi - o.ape.Rad()))
}

func (o Orbit) finitePoint(ν Angle) []float64 {
	pt := o.TrueAnomaly2Point(ν)
	if IsPointAtInfinity(pt) {
		return nil
	}
	return pt
}

// Clone returns a copy of this orbit.
func (o Orbit) Clone() *Orbit {
	c := o
	return &c
}

// String implements the Stringer interface.
func (o Orbit) String() string {
	return fmt.Sprintf("rpe=%.1f e=%.4f i=%.3f Ω=%.3f ω=%.3f tpp=%.1f @%s",
		o.rpe, o.ecc, o.inc.Deg(), o.lan.Deg(), o.ape.Deg(), o.tpp, o.Origin.Name)
}

// Equals returns whether both orbits describe the same physical trajectory
// and phase, with the reason for the first mismatch. The time elements are
// compared through their equivalent true anomaly at a common epoch, so TPP
// values exactly one period apart on a closed orbit are the same state.
func (o Orbit) Equals(o1 Orbit) (bool, error) {
	if !o.Origin.Equals(o1.Origin) {
		return false, errors.New("different origin")
	}
	if !floats.EqualWithinRel(o.rpe, o1.rpe, rpeε) {
		return false, errors.New("periapsis radius invalid")
	}
	if !floats.EqualWithinAbs(o.ecc, o1.ecc, eccentricityε) {
		return false, errors.New("eccentricity invalid")
	}
	if !o.inc.EqualWithin(o1.inc, angleε) {
		return false, errors.New("inclination invalid")
	}
	if !o.lan.EqualWithin(o1.lan, angleε) {
		return false, errors.New("LAN invalid")
	}
	if !o.ape.EqualWithin(o1.ape, angleε) {
		return false, errors.New("argument of periapsis invalid")
	}
	ν0, err := o.Time2TrueAnomaly(0)
	if err != nil {
		return false, err
	}
	ν1, err := o1.Time2TrueAnomaly(0)
	if err != nil {
		return false, err
	}
	if !ν0.EqualWithin(ν1, angleε) {
		return false, errors.New("TPP invalid")
	}
	return true, nil
}

// NewOrbitFromRV returns the orbital elements matching the provided position
// and velocity measured at time t. From Vallado's RV2COE, adapted to recover
// the time of periapsis passage instead of keeping the anomaly as state.
//
// Degenerate geometries follow fixed conventions: an eccentricity within
// ParabolicSnap of 1 snaps to exactly 1, and a zero-inclination orbit reports
// APE=0 with LAN carrying the whole in-plane rotation (their sum is the only
// well defined quantity there). Rectilinear states return ErrRectilinear.
func NewOrbitFromRV(R, V []float64, t float64, body GravitationalBody) (*Orbit, error) {
	if len(R) != 3 || len(V) != 3 {
		return nil, errors.New("R and V must be 3x1 vectors")
	}
	for i := 0; i < 3; i++ {
		if math.IsNaN(R[i]) || math.IsInf(R[i], 0) || math.IsNaN(V[i]) || math.IsInf(V[i], 0) {
			return nil, errors.New("state vectors must be finite")
		}
	}
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return nil, errors.New("measurement time must be finite")
	}
	μ := body.μ
	r := norm(R)
	v := norm(V)
	hVec := cross(R, V)
	h := norm(hVec)
	if r == 0 || h <= 1e-12*r*v {
		return nil, ErrRectilinear
	}
	rv := dot(R, V)
	eVec := make([]float64, 3)
	for i := 0; i < 3; i++ {
		eVec[i] = ((v*v-μ/r)*R[i] - rv*V[i]) / μ
	}
	e := norm(eVec)
	if math.Abs(e-1) < ParabolicSnap {
		e = 1
	}
	rpe := h * h / μ / (1 + e)
	i := math.Acos(clamp1(hVec[2] / h))
	nVec := cross([]float64{0, 0, 1}, hVec)
	n := norm(nVec)
	equatorial := n <= 1e-12*h
	circular := e <= 1e-12

	var Ω, ω, ν float64
	if !equatorial {
		Ω = math.Acos(clamp1(nVec[0] / n))
		if nVec[1] < 0 {
			Ω = 2*math.Pi - Ω
		}
		if !circular {
			ω = math.Acos(clamp1(dot(nVec, eVec) / (n * e)))
			if eVec[2] < 0 {
				ω = 2*math.Pi - ω
			}
		}
	} else if !circular {
		// The node is undefined, so the in-plane rotation goes entirely to Ω.
		// This holds for the retrograde plane too: with APE zero, periapsis
		// sits at LAN however the orbit is traversed.
		Ω = math.Atan2(eVec[1], eVec[0])
	}
	switch {
	case !circular:
		ν = math.Acos(clamp1(dot(eVec, R) / (e * r)))
		if rv < 0 {
			ν = 2*math.Pi - ν
		}
	case !equatorial:
		// Circular inclined: measure from the ascending node.
		ν = math.Acos(clamp1(dot(nVec, R) / (n * r)))
		if R[2] < 0 {
			ν = 2*math.Pi - ν
		}
	default:
		// Circular equatorial: true longitude.
		ν = math.Atan2(R[1], R[0])
		if hVec[2] < 0 {
			ν = -ν
		}
	}

	orbit, err := NewOrbit(rpe, e, AngleFromRad(i), AngleFromRad(ω), AngleFromRad(Ω), 0, body)
	if err != nil {
		return nil, err
	}
	// Recover TPP on this geometry's own clock: the zero-TPP twin tells how
	// long after periapsis the measured anomaly occurs.
	τ := orbit.TrueAnomaly2Time(AngleFromRad(ν))
	if err = orbit.SetTPP(t - τ); err != nil {
		return nil, err
	}
	return orbit, nil
}

// clamp1 bounds its argument to [-1, 1]. acos barfs beyond that, and rounding
// loves to put exact edge cases a few ulps beyond it.
func clamp1(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
