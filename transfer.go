package kepler

import (
	"math"

	"github.com/pkg/errors"
)

// ErrBodyMismatch is returned when asked for a transfer between orbits which
// are not around the same gravitational body. Patching flows across spheres
// of influence is a different problem than Lambert's.
var ErrBodyMismatch = errors.New("orbits are not around the same body")

// FindTransferOrbit returns the orbit which departs the initial orbit at
// tDepart and reaches the target orbit at tArrive. Both orbits must be around
// the same body. The departure and arrival states come from the orbits
// themselves; the connecting arc comes from the Lambert solver, and the
// transfer's elements from the reconstruction of its departure state.
func FindTransferOrbit(initial *Orbit, tDepart float64, target *Orbit, tArrive float64) (*Orbit, error) {
	if initial == nil || target == nil {
		return nil, errors.New("both orbits must be provided")
	}
	if !initial.Origin.Equals(target.Origin) {
		return nil, ErrBodyMismatch
	}
	Ri, err := initial.Time2Point(tDepart)
	if err != nil {
		return nil, err
	}
	Rf, err := target.Time2Point(tArrive)
	if err != nil {
		return nil, err
	}
	if IsPointAtInfinity(Ri) || IsPointAtInfinity(Rf) {
		return nil, ErrLambertNoSolution
	}
	Vi, _, err := Lambert(Ri, Rf, tArrive-tDepart, initial.Origin)
	if err != nil {
		return nil, err
	}
	return NewOrbitFromRV(Ri, Vi, tDepart, initial.Origin)
}

// Hohmann computes a Hohmann transfer between two circular coplanar orbits of
// the provided radii. It returns the speeds on the transfer ellipse at
// departure and arrival, and the time of flight. To get the burn costs,
// subtract the circular speeds at each radius.
func Hohmann(rI, rF float64, body GravitationalBody) (vDeparture, vArrival, tof float64, err error) {
	if math.IsNaN(rI) || rI <= 0 || math.IsNaN(rF) || rF <= 0 {
		return 0, 0, 0, errors.New("radii must be strictly positive")
	}
	aTransfer := (rI + rF) / 2
	vDeparture = math.Sqrt(2*body.μ/rI - body.μ/aTransfer)
	vArrival = math.Sqrt(2*body.μ/rF - body.μ/aTransfer)
	tof = math.Pi * math.Sqrt(aTransfer*aTransfer*aTransfer/body.μ)
	return
}
