package kepler

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// MaxBPlaneIterations is the number of Newton iterations AchieveGoals runs
// before giving up on the targets.
var MaxBPlaneIterations = 50

// ErrNotHyperbolic is returned when a B-plane is requested for an orbit which
// never leaves its origin body.
var ErrNotHyperbolic = errors.New("orbit is not hyperbolic")

// BPlane holds the B-plane parameters of a hyperbolic orbit evaluated at a
// given epoch, and the correction goals used by AchieveGoals.
type BPlane struct {
	Orbit        *Orbit
	Epoch        float64
	BR, BT, LTOF float64

	rVec, vVec               []float64
	goalBR, goalBT, goalLTOF float64
	tolBR, tolBT, tolLTOF    float64
}

// NewBPlane computes the B-plane of o anchored on its state at epoch t.
func NewBPlane(o *Orbit, t float64) (BPlane, error) {
	if !o.IsHyperbolic() {
		return BPlane{}, ErrNotHyperbolic
	}
	R, V, err := o.RV(t)
	if err != nil {
		return BPlane{}, err
	}
	bR, bT, ltof, err := bPlaneParams(R, V, o.Origin.μ)
	if err != nil {
		return BPlane{}, err
	}
	return BPlane{Orbit: o, Epoch: t, BR: bR, BT: bT, LTOF: ltof,
		rVec: R, vVec: V,
		goalBR: math.NaN(), goalBT: math.NaN(), goalLTOF: math.NaN()}, nil
}

// SetBRGoal sets the B_R goal and its convergence tolerance.
func (b *BPlane) SetBRGoal(value, tolerance float64) {
	b.goalBR = value
	b.tolBR = tolerance
}

// SetBTGoal sets the B_T goal and its convergence tolerance.
func (b *BPlane) SetBTGoal(value, tolerance float64) {
	b.goalBT = value
	b.tolBT = tolerance
}

// SetLTOFGoal sets the linearized time of flight goal and its convergence
// tolerance.
func (b *BPlane) SetLTOFGoal(value, tolerance float64) {
	b.goalLTOF = value
	b.tolLTOF = tolerance
}

func (b BPlane) anyGoalSet() bool {
	return !(math.IsNaN(b.goalBR) && math.IsNaN(b.goalBT) && math.IsNaN(b.goalLTOF))
}

// AchieveGoals differentially corrects the velocity at the anchor epoch until
// every set goal is met within its tolerance. The first components entries of
// the velocity are varied, so exactly that many goals must be set. Returns
// the Δv to apply at the anchor epoch; the receiver is left untouched.
func (b BPlane) AchieveGoals(components int) ([]float64, error) {
	if components < 2 || components > 3 {
		panic("components must be 2 or 3")
	}
	if !b.anyGoalSet() {
		return nil, errors.New("no B-plane goal set")
	}
	// Active goals in BR, BT, LTOF order, with their index into the
	// parameter triplet returned by bPlaneParams.
	goals := make([]float64, 0, 3)
	tols := make([]float64, 0, 3)
	kinds := make([]int, 0, 3)
	if !math.IsNaN(b.goalBR) {
		goals = append(goals, b.goalBR)
		tols = append(tols, b.tolBR)
		kinds = append(kinds, 0)
	}
	if !math.IsNaN(b.goalBT) {
		goals = append(goals, b.goalBT)
		tols = append(tols, b.tolBT)
		kinds = append(kinds, 1)
	}
	if !math.IsNaN(b.goalLTOF) {
		goals = append(goals, b.goalLTOF)
		tols = append(tols, b.tolLTOF)
		kinds = append(kinds, 2)
	}
	if len(goals) != components {
		return nil, errors.Errorf("%d goal(s) set but %d velocity components to vary", len(goals), components)
	}
	μ := b.Orbit.Origin.μ
	R := make([]float64, 3)
	copy(R, b.rVec)
	V := make([]float64, 3)
	copy(V, b.vVec)
	ΔV := make([]float64, 3)
	const pert = 1e-4 // m/s
	for iter := 0; iter < MaxBPlaneIterations; iter++ {
		bR, bT, ltof, err := bPlaneParams(R, V, μ)
		if err != nil {
			return nil, errors.Wrap(err, "correction left the hyperbolic regime")
		}
		cur := [3]float64{bR, bT, ltof}
		F := mat.NewVecDense(components, nil)
		converged := true
		for i, kind := range kinds {
			F.SetVec(i, goals[i]-cur[kind])
			if math.Abs(goals[i]-cur[kind]) > tols[i] {
				converged = false
			}
		}
		if converged {
			return ΔV, nil
		}
		jacob := mat.NewDense(components, components, nil)
		for j := 0; j < components; j++ {
			vTmp := make([]float64, 3)
			copy(vTmp, V)
			vTmp[j] += pert
			pR, pT, pLTOF, err := bPlaneParams(R, vTmp, μ)
			if err != nil {
				return nil, errors.Wrap(err, "correction left the hyperbolic regime")
			}
			pCur := [3]float64{pR, pT, pLTOF}
			for i, kind := range kinds {
				jacob.Set(i, j, (pCur[kind]-cur[kind])/pert)
			}
		}
		var Δv mat.VecDense
		if err := Δv.SolveVec(jacob, F); err != nil {
			return nil, errors.Wrap(err, "B-plane Jacobian is singular")
		}
		for j := 0; j < components; j++ {
			V[j] += Δv.AtVec(j)
			ΔV[j] += Δv.AtVec(j)
		}
	}
	return nil, errors.Errorf("did not converge after %d iterations", MaxBPlaneIterations)
}

func (b BPlane) String() string {
	return fmt.Sprintf("BR=%.3f m\tBT=%.3f m\tLTOF=%.3f s", b.BR, b.BT, b.LTOF)
}

// bPlaneParams computes the B-plane parameters from a Cartesian state.
// Some of this is quite similar to NewOrbitFromRV.
func bPlaneParams(R, V []float64, μ float64) (bR, bT, ltof float64, err error) {
	r := norm(R)
	v := norm(V)
	hHat := unit(cross(R, V))
	eVec := make([]float64, 3)
	for i := 0; i < 3; i++ {
		eVec[i] = ((v*v-μ/r)*R[i] - dot(R, V)*V[i]) / μ
	}
	e := norm(eVec)
	if e <= 1 {
		return 0, 0, 0, ErrNotHyperbolic
	}
	ξ := v*v/2 - μ/r
	a := -μ / (2 * ξ)
	bMag := math.Abs(a) * math.Sqrt(e*e-1)

	// Incoming asymptote, then the T and R axes spanning the plane normal
	// to it.
	heHat := unit(cross(hHat, eVec))
	β := math.Acos(1 / e)
	sinβ, cosβ := math.Sincos(β)
	sHat := make([]float64, 3)
	for i := 0; i < 3; i++ {
		sHat[i] = cosβ*eVec[i]/e + sinβ*heHat[i]
	}
	tHat := unit(cross(sHat, []float64{0, 0, 1}))
	rHat := unit(cross(sHat, tHat))
	bVec := unit(cross(sHat, hHat))
	for i := 0; i < 3; i++ {
		bVec[i] *= bMag
	}
	bT = dot(bVec, tHat)
	bR = dot(bVec, rHat)

	// Linearized time of flight between the current radius and the B-plane
	// crossing, through the hyperbolic mean anomaly at both true anomalies.
	νB := math.Pi/2 - β
	νR := math.Acos(clamp1((-a*(e*e-1)/r - 1) / e))
	fB := math.Asinh(math.Sin(νB) * math.Sqrt(e*e-1) / (1 + e*math.Cos(νB)))
	fR := math.Asinh(math.Sin(νR) * math.Sqrt(e*e-1) / (1 + e*math.Cos(νR)))
	n := math.Sqrt(μ / (math.Abs(a) * math.Abs(a) * math.Abs(a)))
	ltof = ((e*math.Sinh(fB) - fB) - (e*math.Sinh(fR) - fR)) / n
	return bR, bT, ltof, nil
}

// GATurnAngle computes the gravity assist turn angle about body for a flyby
// at periapsis radius rP with hyperbolic excess speed vInf.
func GATurnAngle(vInf, rP float64, body GravitationalBody) Angle {
	ρ := math.Acos(1 / (1 + vInf*vInf*rP/body.μ))
	return AngleFromRad(math.Pi - 2*ρ)
}

// GAFromVinf computes the gravity assist parameters about body from the
// inbound and outbound hyperbolic excess velocity vectors: the turn angle ψ,
// the periapsis radius of the flyby, the B-plane components and magnitude,
// and the B-vector clock angle θ measured from R toward T.
func GAFromVinf(vInfInVec, vInfOutVec []float64, body GravitationalBody) (ψ Angle, rP, bT, bR, B float64, θ Angle, err error) {
	vInfIn := norm(vInfInVec)
	vInfOut := norm(vInfOutVec)
	if vInfIn == 0 || vInfOut == 0 {
		err = errors.New("hyperbolic excess velocity must not be zero")
		return
	}
	turn := math.Acos(clamp1(dot(vInfInVec, vInfOutVec) / (vInfIn * vInfOut)))
	ψ = AngleFromRad(turn)
	rP = (body.μ / (vInfIn * vInfIn)) * (1/math.Cos((math.Pi-turn)/2) - 1)
	sHat := unit(vInfInVec)
	tHat := unit(cross(sHat, []float64{0, 0, 1}))
	rHat := unit(cross(sHat, tHat))
	hHat := unit(cross(vInfInVec, vInfOutVec))
	bVec := unit(cross(sHat, hHat))
	B = (body.μ / (vInfIn * vInfIn)) * math.Sqrt(math.Pow(1+vInfIn*vInfIn*rP/body.μ, 2)-1)
	for i := 0; i < 3; i++ {
		bVec[i] *= B
	}
	bT = dot(bVec, tHat)
	bR = dot(bVec, rHat)
	θ = AngleFromRad(math.Atan2(bT, bR))
	return
}
