package kepler

import (
	"math"
	"testing"

	floats "gonum.org/v1/gonum/floats/scalar"
)

func TestLambertVallado(t *testing.T) {
	// From Vallado 4th edition, page 497, in SI units.
	Ri := []float64{15945.34e3, 0, 0}
	Rf := []float64{12214.83899e3, 10249.46731e3, 0}
	Vi, Vf, err := Lambert(Ri, Rf, 76*60, Earth)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if !vectorsEqualWithin([]float64{2058.9133017389731, 2915.964339852424, 0}, Vi, 1e-5) {
		t.Fatalf("incorrect Vi computed: %+v", Vi)
	}
	if !vectorsEqualWithin([]float64{-3451.5647972898396, 910.31427248092359, 0}, Vf, 1e-5) {
		t.Fatalf("incorrect Vf computed: %+v", Vf)
	}
}

func TestLambertLongWay(t *testing.T) {
	// Swapping the endpoints makes the prograde arc sweep more than π. The
	// result is the time reversal of Vallado's long-way solution.
	Ri := []float64{12214.83899e3, 10249.46731e3, 0}
	Rf := []float64{15945.34e3, 0, 0}
	Vi, Vf, err := Lambert(Ri, Rf, 76*60, Earth)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if !vectorsEqualWithin([]float64{-4207.5688305410495, -914.7239768084673, 0}, Vi, 1e-5) {
		t.Fatalf("incorrect Vi computed: %+v", Vi)
	}
	if !vectorsEqualWithin([]float64{3811.157962988403, 2003.8539840603894, 0}, Vf, 1e-5) {
		t.Fatalf("incorrect Vf computed: %+v", Vf)
	}
}

func TestLambertReconstruction(t *testing.T) {
	// Flying the returned departure state for Δt must land on Rf with the
	// returned arrival velocity. This closes the loop through the element
	// conversion and the propagation for out-of-plane geometries too.
	for _, tc := range []struct {
		name   string
		Ri, Rf []float64
		Δt     float64
	}{
		{"planar", []float64{12214.83899e3, 10249.46731e3, 0}, []float64{15945.34e3, 0, 0}, 4560},
		{"inclined", []float64{7e6, 1e6, 2e5}, []float64{-2e6, 6.5e6, 3e6}, 3000},
	} {
		Vi, Vf, err := Lambert(tc.Ri, tc.Rf, tc.Δt, Earth)
		if err != nil {
			t.Fatalf("%s: err %s", tc.name, err)
		}
		o, err := NewOrbitFromRV(tc.Ri, Vi, 0, Earth)
		if err != nil {
			t.Fatalf("%s: err %s", tc.name, err)
		}
		R, V, err := o.RV(tc.Δt)
		if err != nil {
			t.Fatalf("%s: err %s", tc.name, err)
		}
		if !vectorsEqualWithin(tc.Rf, R, 1) {
			t.Fatalf("%s: transfer missed the target:\n%+v\n%+v", tc.name, tc.Rf, R)
		}
		if !vectorsEqualWithin(Vf, V, 1e-3) {
			t.Fatalf("%s: arrival velocity off:\n%+v\n%+v", tc.name, Vf, V)
		}
	}
}

func TestLambertRecoversOrbit(t *testing.T) {
	// Two position fixes on the same ellipse pin down the full element set.
	orig := mustOrbit(t, 9e6, 0.15, AngleFromRad(0.3), AngleFromRad(0.8), AngleFromRad(1.7), 500, Kerbin)
	t1 := 2000.0
	R1, _, err := orig.RV(t1)
	if err != nil {
		t.Fatal(err)
	}
	for _, arc := range []float64{0.35, 0.8} {
		t2 := t1 + arc*orig.Period()
		R2, _, err := orig.RV(t2)
		if err != nil {
			t.Fatal(err)
		}
		Vi, _, err := Lambert(R1, R2, t2-t1, Kerbin)
		if err != nil {
			t.Fatalf("arc %.2f: err %s", arc, err)
		}
		rec, err := NewOrbitFromRV(R1, Vi, t1, Kerbin)
		if err != nil {
			t.Fatalf("arc %.2f: err %s", arc, err)
		}
		if !floats.EqualWithinRel(rec.RPE(), orig.RPE(), 1e-9) {
			t.Fatalf("arc %.2f: periapsis radius off: %f vs %f", arc, rec.RPE(), orig.RPE())
		}
		if !floats.EqualWithinAbs(rec.ECC(), orig.ECC(), 1e-9) {
			t.Fatalf("arc %.2f: eccentricity off: %f vs %f", arc, rec.ECC(), orig.ECC())
		}
		if ok, err := rec.Equals(*orig); !ok {
			t.Fatalf("arc %.2f: reconstructed orbit differs: %s", arc, err)
		}
	}
}

func TestLambertErrors(t *testing.T) {
	Ri := []float64{15945.34e3, 0, 0}
	Rf := []float64{12214.83899e3, 10249.46731e3, 0}
	if _, _, err := Lambert([]float64{15945.34e3, 0}, Rf, 4560, Earth); err == nil {
		t.Fatal("err should not be nil if the R vectors are not of dimension 3x1")
	}
	if _, _, err := Lambert(Ri, Rf, math.NaN(), Earth); err == nil {
		t.Fatal("err should not be nil for a NaN flight time")
	}
	if _, _, err := Lambert(Ri, Rf, -60, Earth); err == nil {
		t.Fatal("err should not be nil for a negative flight time")
	}
	if _, _, err := Lambert(Ri, Rf, 0, Earth); err != ErrLambertNoSolution {
		t.Fatalf("expected ErrLambertNoSolution for a zero flight time, got %v", err)
	}
	if _, _, err := Lambert([]float64{0, 0, 0}, Rf, 4560, Earth); err != ErrLambertNoSolution {
		t.Fatalf("expected ErrLambertNoSolution from the origin, got %v", err)
	}
	// Colinear endpoints span no transfer plane.
	if _, _, err := Lambert(Ri, scale(2, Ri), 4560, Earth); err != ErrLambertNoSolution {
		t.Fatalf("expected ErrLambertNoSolution for aligned endpoints, got %v", err)
	}
	if _, _, err := Lambert(Ri, scale(-1, Ri), 4560, Earth); err != ErrLambertNoSolution {
		t.Fatalf("expected ErrLambertNoSolution for opposed endpoints, got %v", err)
	}
}
