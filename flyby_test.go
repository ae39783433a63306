package kepler

import (
	"math"
	"testing"

	floats "gonum.org/v1/gonum/floats/scalar"
)

func TestBPlane(t *testing.T) {
	// The following values are correct according to Dr. Davis.
	rSOI := []float64{546507344.255845, -527978380.486028, 531109066.836708}
	vSOI := []float64{-4922.0589268733, 5363.16523097915, -5221.66308425181}
	orbit, err := NewOrbitFromRV(rSOI, vSOI, 0, Earth)
	if err != nil {
		t.Fatal(err)
	}
	if !orbit.IsHyperbolic() {
		t.Fatalf("SOI exit state should be hyperbolic, ecc=%f", orbit.ECC())
	}
	// Compute nominal values
	initBPlane, err := NewBPlane(orbit, 0)
	if err != nil {
		t.Fatal(err)
	}
	expBR := 10606210.427610133
	expBT := 45892323.790114805
	if !floats.EqualWithinAbs(initBPlane.BR, expBR, 1e-3) {
		t.Fatalf("BR got: %f\nexp:%f", initBPlane.BR, expBR)
	}
	if !floats.EqualWithinAbs(initBPlane.BT, expBT, 1e-3) {
		t.Fatalf("BT got: %f\nexp:%f", initBPlane.BT, expBT)
	}
	if !floats.EqualWithinAbs(initBPlane.LTOF, -101950.1034505059, 1e-3) {
		t.Fatalf("LTOF got: %f", initBPlane.LTOF)
	}
	// Let's test the B-Plane correction too.
	initBPlane.SetBRGoal(5022265.11510685, 1e-3)
	initBPlane.SetBTGoal(13135798.2982557, 1e-3)
	ΔV, err := initBPlane.AchieveGoals(2)
	if err != nil {
		t.Fatalf("%s\n", err)
	}
	expΔV := []float64{-299.99680904481585, -141.597653324388, 0}
	for i := 0; i < 3; i++ {
		if !floats.EqualWithinAbs(expΔV[i], ΔV[i], 1e-5) {
			t.Fatalf("invalid TCM computed:\ngot %+v\nexp %+v", ΔV, expΔV)
		}
	}
}

func TestBPlaneErrors(t *testing.T) {
	leo, err := NewOrbit(7e6, 0.01, AngleFromDeg(28.5), 0, 0, 0, Earth)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewBPlane(leo, 0); err != ErrNotHyperbolic {
		t.Fatalf("expected ErrNotHyperbolic, got %v", err)
	}
	hyp, err := NewOrbit(1e7, 2.5, 0, 0, 0, 0, Earth)
	if err != nil {
		t.Fatal(err)
	}
	bp, err := NewBPlane(hyp, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bp.AchieveGoals(2); err == nil {
		t.Fatal("expected an error with no goal set")
	}
	assertPanic(t, func() { bp.AchieveGoals(1) })
	bp.SetBRGoal(1e7, 1)
	if _, err := bp.AchieveGoals(2); err == nil {
		t.Fatal("expected an error with one goal and two components")
	}
}

func TestGATurnAngle(t *testing.T) {
	ψ := GATurnAngle(5000, 7e6, Earth)
	if !floats.EqualWithinAbs(ψ.Rad(), 1.5365882898279344, 1e-12) {
		t.Fatalf("incorrect turn angle %s", ψ)
	}
	// A grazing pass at infinite speed barely bends the trajectory.
	fast := GATurnAngle(5e5, 7e6, Earth)
	if fast.Rad() >= ψ.Rad() {
		t.Fatal("a faster flyby should turn less")
	}
}

func TestGAFromVinf(t *testing.T) {
	vIn := []float64{4000, 1000, 500}
	vOut := []float64{3000, 2500, -500}
	ψ, rP, bT, bR, B, θ, err := GAFromVinf(vIn, vOut, Earth)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(ψ.Rad(), 0.51259640406188, 1e-12) {
		t.Fatalf("incorrect turn angle %s", ψ)
	}
	if !floats.EqualWithinRel(rP, 68045163.26644905, 1e-9) {
		t.Fatalf("incorrect periapsis radius %f", rP)
	}
	if !floats.EqualWithinRel(bT, 77529255.71712473, 1e-9) {
		t.Fatalf("incorrect BT %f", bT)
	}
	if !floats.EqualWithinRel(bR, -42000415.14874864, 1e-9) {
		t.Fatalf("incorrect BR %f", bR)
	}
	if !floats.EqualWithinRel(B, 88174941.81862867, 1e-9) {
		t.Fatalf("incorrect B %f", B)
	}
	if !floats.EqualWithinAbs(math.Hypot(bR, bT), B, 1e-3) {
		t.Fatal("B-vector components do not compose to its magnitude")
	}
	if !floats.EqualWithinAbs(θ.Rad(), 2.067272946008308, 1e-12) {
		t.Fatalf("incorrect clock angle %s", θ)
	}
	if _, _, _, _, _, _, err := GAFromVinf([]float64{0, 0, 0}, vOut, Earth); err == nil {
		t.Fatal("expected an error for a zero excess velocity")
	}
}
