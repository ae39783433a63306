package kepler

import (
	"math"

	"github.com/pkg/errors"
)

// ErrLambertNoSolution is returned when the transfer geometry is degenerate:
// coincident endpoints, zero flight time, or any other configuration which
// only a NaN would "solve". Callers surface this as "no transfer orbit".
var ErrLambertNoSolution = errors.New("no single-revolution transfer connects these points in this flight time")

// Lambert solves the two-point boundary value problem with the Izzo 2014
// algorithm: given the departure and arrival position vectors and the flight
// time between them, it returns the velocity vectors at both ends of the
// connecting single-revolution orbit about the provided body. The transfer
// direction is prograde with respect to the plane spanned by both positions.
func Lambert(Ri, Rf []float64, Δt float64, body GravitationalBody) (Vi, Vf []float64, err error) {
	if len(Ri) != 3 || len(Rf) != 3 {
		return nil, nil, errors.New("initial and final radii must be 3x1 vectors")
	}
	if math.IsNaN(Δt) {
		return nil, nil, errors.New("flight time must not be NaN")
	}
	if Δt < 0 {
		return nil, nil, errors.New("flight time must not be negative")
	}
	if Δt == 0 {
		return nil, nil, ErrLambertNoSolution
	}
	r1 := norm(Ri)
	r2 := norm(Rf)
	if r1 == 0 || r2 == 0 {
		return nil, nil, ErrLambertNoSolution
	}
	c := norm(sub(Rf, Ri))
	s := (r1 + r2 + c) / 2
	ir1 := scale(1/r1, Ri)
	ir2 := scale(1/r2, Rf)
	plane := cross(ir1, ir2)
	if norm(plane) < 1e-12 {
		// Colinear endpoints leave the transfer plane undefined.
		return nil, nil, ErrLambertNoSolution
	}
	ih := unit(plane)
	λ := math.Sqrt(1 - math.Min(1, c/s))
	if ih[2] < 0 {
		// Transfer angle beyond π: flip the plane normal and λ.
		λ = -λ
		ih = scale(-1, ih)
	}
	it1 := cross(ih, ir1)
	it2 := cross(ih, ir2)
	T := math.Sqrt(2*body.μ/(s*s*s)) * Δt
	x := findLambertX(λ, T)
	y := math.Sqrt(1 - λ*λ*(1-x*x))
	γ := math.Sqrt(body.μ * s / 2)
	ρ := (r1 - r2) / c
	σ := math.Sqrt(1 - ρ*ρ)
	vr1 := γ * ((λ*y - x) - ρ*(λ*y+x)) / r1
	vr2 := -γ * ((λ*y - x) + ρ*(λ*y+x)) / r2
	vt1 := γ * σ * (y + λ*x) / r1
	vt2 := γ * σ * (y + λ*x) / r2
	Vi = add(scale(vr1, ir1), scale(vt1, it1))
	Vf = add(scale(vr2, ir2), scale(vt2, it2))
	for i := 0; i < 3; i++ {
		if math.IsNaN(Vi[i]) || math.IsNaN(Vf[i]) {
			return nil, nil, ErrLambertNoSolution
		}
	}
	return Vi, Vf, nil
}

// findLambertX returns the universal variable x for the provided λ and non
// dimensional time of flight: a closed-form starter bracketed against the
// minimum-energy and parabolic reference times, refined by a fixed number of
// third-order Householder steps.
func findLambertX(λ, T float64) float64 {
	T0 := math.Acos(λ) + λ*math.Sqrt(1-λ*λ) // x=0, minimum energy
	T1 := 2. / 3. * (1 - λ*λ*λ)             // x=1, parabolic
	var x float64
	switch {
	case T >= T0:
		x = math.Pow(T0/T, 2./3.) - 1
	case T < T1:
		x = 5./2.*T1/T*(T1-T)/(1-λ*λ*λ*λ*λ) + 1
	default:
		x = math.Pow(2, math.Log(T/T0)/math.Log(T1/T0)) - 1
	}
	for iter := 0; iter < MaxLambertIterations; iter++ {
		fval := lambertTOF(x, λ) - T
		Tp, Tpp, Tppp := lambertTOFDerivs(x, fval+T, λ)
		x -= fval * (Tp*Tp - fval*Tpp/2) / (Tp*(Tp*Tp-fval*Tpp) + Tppp*fval*fval/6)
	}
	return x
}

// lambertTOF evaluates the non dimensional time of flight at x.
func lambertTOF(x, λ float64) float64 {
	y := math.Sqrt(1 - λ*λ*(1-x*x))
	if math.Sqrt(0.6) < x && x < math.Sqrt(1.4) {
		// The ψ form loses precision near the parabola, use the Battin
		// series there instead.
		η := y - λ*x
		s1 := (1 - λ - x*η) / 2
		q := 4. / 3. * hyp2f1b(s1)
		return (η*η*η*q + 4*λ*η) / 2
	}
	var ψ float64
	switch {
	case -1 <= x && x < 1:
		ψ = math.Acos(x*y + λ*(1-x*x))
	case x > 1:
		ψ = math.Asinh((y - x*λ) * math.Sqrt(x*x-1))
	}
	return (ψ/math.Sqrt(math.Abs(1-x*x)) - x + λ*y) / (1 - x*x)
}

// lambertTOFDerivs returns the first three derivatives of the time of flight
// with respect to x, for the Householder update.
func lambertTOFDerivs(x, T, λ float64) (Tp, Tpp, Tppp float64) {
	y := math.Sqrt(1 - λ*λ*(1-x*x))
	λ2 := λ * λ
	λ3 := λ2 * λ
	λ5 := λ3 * λ2
	Tp = (3*T*x - 2 + 2*λ3*x/y) / (1 - x*x)
	Tpp = (3*T + 5*x*Tp + 2*(1-λ2)*λ3/(y*y*y)) / (1 - x*x)
	Tppp = (7*x*Tpp + 8*Tp - 6*(1-λ2)*λ5*x/(y*y*y*y*y)) / (1 - x*x)
	return
}

// hyp2f1b sums the Gauss hypergeometric series ₂F₁(3, 1, 5/2, x), which
// converges for x < 1.
func hyp2f1b(x float64) float64 {
	if x >= 1 {
		return math.Inf(1)
	}
	res, term := 1.0, 1.0
	for i := 0.; ; i++ {
		term *= (3 + i) * (1 + i) / (2.5 + i) * x / (i + 1)
		old := res
		res += term
		if res == old {
			return res
		}
	}
}
