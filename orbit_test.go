package kepler

import (
	"math"
	"testing"

	floats "gonum.org/v1/gonum/floats/scalar"
)

func TestOrbitRV2COE(t *testing.T) {
	// Example 2-5 from Vallado, in SI units.
	R := []float64{6524.834e3, 6862.875e3, 6448.296e3}
	V := []float64{4901.327, 5533.756, -1976.341}
	o, err := NewOrbitFromRV(R, V, 0, Earth)
	if err != nil {
		t.Fatalf("NewOrbitFromRV failed: %s", err)
	}
	if !floats.EqualWithinRel(o.RPE(), 6038561.7805230478, 1e-9) {
		t.Fatalf("incorrect rpe=%f", o.RPE())
	}
	if !floats.EqualWithinAbs(o.ECC(), 0.832853, 1e-6) {
		t.Fatalf("incorrect ecc=%f", o.ECC())
	}
	if ok, err := anglesEqual(AngleFromDeg(87.870), o.INC()); !ok {
		t.Fatalf("inclination invalid: %s", err)
	}
	if ok, err := anglesEqual(AngleFromDeg(227.898), o.LAN()); !ok {
		t.Fatalf("LAN invalid: %s", err)
	}
	if ok, err := anglesEqual(AngleFromDeg(53.385), o.APE()); !ok {
		t.Fatalf("argument of periapsis invalid: %s", err)
	}
	if !floats.EqualWithinRel(o.SemiMajorAxis(), 36127341.852366827, 1e-9) {
		t.Fatalf("incorrect sma=%f", o.SemiMajorAxis())
	}
	// The measurement was at t=0, so the anomaly there must be the book's.
	ν, err := o.Time2TrueAnomaly(0)
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := anglesEqual(AngleFromDeg(92.335), ν); !ok {
		t.Fatalf("true anomaly invalid: %s", err)
	}
	if !floats.EqualWithinAbs(o.TPP(), -1443.6000430042502, 1e-5) {
		t.Fatalf("incorrect tpp=%f", o.TPP())
	}
	// Reconstructing the measured state closes the loop.
	p0, err := o.Time2Point(0)
	if err != nil {
		t.Fatal(err)
	}
	if !vectorsEqualWithin(R, p0, 1e-4) {
		t.Fatalf("position not recovered:\n%+v\n%+v", R, p0)
	}
	v0, err := o.Time2Velocity(0)
	if err != nil {
		t.Fatal(err)
	}
	if !vectorsEqualWithin(V, v0, 1e-6) {
		t.Fatalf("velocity not recovered:\n%+v\n%+v", V, v0)
	}
	// And the element-built twin is the same orbit.
	o1, err := NewOrbit(6038561.7805230478, 0.83285341597509643,
		AngleFromDeg(87.869126177026445), AngleFromDeg(53.384932135992877),
		AngleFromDeg(227.8982603572737), -1443.6000430042502, Earth)
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := o.Equals(*o1); !ok {
		t.Logf("\no0: %s\no1: %s", o, o1)
		t.Fatalf("orbits differ: %s", err)
	}
}

func TestOrbitRVDegenerate(t *testing.T) {
	// The four geometries where node or periapsis vanish. Each recovery
	// must follow the documented convention and reproduce the positions.
	cases := []struct {
		name     string
		o        *Orbit
		tMeasure float64
		ape, lan Angle
		circular bool
	}{
		{"equatorial elliptical", mustOrbit(t, 8e6, 0.3, 0, AngleFromRad(0.5), AngleFromRad(1.0), 250, Kerbin), 800, 0, AngleFromRad(1.5), false},
		{"retrograde equatorial", mustOrbit(t, 8e6, 0.3, AngleFromRad(math.Pi), AngleFromRad(0.5), AngleFromRad(1.0), 250, Kerbin), 800, 0, AngleFromRad(0.5), false},
		{"circular inclined", mustOrbit(t, 9e6, 0, AngleFromDeg(30), 0, AngleFromDeg(40), -300, Kerbin), 600, 0, AngleFromDeg(40), true},
		{"circular equatorial", mustOrbit(t, 9e6, 0, 0, 0, 0, -300, Kerbin), 600, 0, 0, true},
	}
	for _, tc := range cases {
		R, V, err := tc.o.RV(tc.tMeasure)
		if err != nil {
			t.Fatalf("%s: %s", tc.name, err)
		}
		o1, err := NewOrbitFromRV(R, V, tc.tMeasure, Kerbin)
		if err != nil {
			t.Fatalf("%s: %s", tc.name, err)
		}
		if !floats.EqualWithinRel(o1.RPE(), tc.o.RPE(), 1e-9) {
			t.Fatalf("%s: incorrect rpe=%f", tc.name, o1.RPE())
		}
		if tc.circular && o1.ECC() > 1e-12 {
			t.Fatalf("%s: eccentricity %e did not vanish", tc.name, o1.ECC())
		}
		if ok, err := anglesEqual(tc.o.INC(), o1.INC()); !ok {
			t.Fatalf("%s: inclination invalid: %s", tc.name, err)
		}
		if ok, err := anglesEqual(tc.ape, o1.APE()); !ok {
			t.Fatalf("%s: argument of periapsis invalid: %s", tc.name, err)
		}
		if ok, err := anglesEqual(tc.lan, o1.LAN()); !ok {
			t.Fatalf("%s: LAN invalid: %s", tc.name, err)
		}
		if !floats.EqualWithinAbs(o1.TPP(), tc.o.TPP(), 1e-6) {
			t.Fatalf("%s: incorrect tpp=%f, expected %f", tc.name, o1.TPP(), tc.o.TPP())
		}
		// Element conventions may differ, positions may not.
		for _, tProbe := range []float64{0, 700, 1400, 5000} {
			want, err := tc.o.Time2Point(tProbe)
			if err != nil {
				t.Fatal(err)
			}
			got, err := o1.Time2Point(tProbe)
			if err != nil {
				t.Fatal(err)
			}
			if !vectorsEqualWithin(want, got, 1e-4) {
				t.Fatalf("%s: position at t=%f not recovered:\n%+v\n%+v", tc.name, tProbe, want, got)
			}
		}
	}
}

func mustOrbit(t *testing.T, rpe, ecc float64, inc, ape, lan Angle, tpp float64, body GravitationalBody) *Orbit {
	t.Helper()
	o, err := NewOrbit(rpe, ecc, inc, ape, lan, tpp, body)
	if err != nil {
		t.Fatalf("could not build orbit: %s", err)
	}
	return o
}

func TestOrbitRVErrors(t *testing.T) {
	if _, err := NewOrbitFromRV([]float64{7e6, 0}, []float64{0, 7500, 0}, 0, Earth); err == nil {
		t.Fatal("short R vector accepted")
	}
	if _, err := NewOrbitFromRV([]float64{7e6, 0, 0}, []float64{0, math.NaN(), 0}, 0, Earth); err == nil {
		t.Fatal("NaN velocity accepted")
	}
	if _, err := NewOrbitFromRV([]float64{7e6, 0, 0}, []float64{0, 7500, 0}, math.NaN(), Earth); err == nil {
		t.Fatal("NaN measurement time accepted")
	}
	// Radial motion carries no angular momentum.
	if _, err := NewOrbitFromRV([]float64{7e6, 0, 0}, []float64{1000, 0, 0}, 0, Earth); err != ErrRectilinear {
		t.Fatalf("expected ErrRectilinear, got %v", err)
	}
	if _, err := NewOrbitFromRV([]float64{7e6, 0, 0}, []float64{0, 0, 0}, 0, Earth); err != ErrRectilinear {
		t.Fatalf("expected ErrRectilinear for a dropped stone, got %v", err)
	}
	if _, err := NewOrbitFromRV([]float64{0, 0, 0}, []float64{0, 7500, 0}, 0, Earth); err != ErrRectilinear {
		t.Fatalf("expected ErrRectilinear at the singularity, got %v", err)
	}
}

func TestOrbitSetters(t *testing.T) {
	o := mustOrbit(t, 1e7, 0.2, 0, 0, 0, 1000, Kerbin)
	if err := o.SetRPE(math.NaN()); err == nil {
		t.Fatal("NaN rpe accepted")
	}
	if err := o.SetRPE(math.Inf(1)); err == nil {
		t.Fatal("infinite rpe accepted")
	}
	if err := o.SetRPE(-5); err != nil {
		t.Fatal("negative rpe must clamp, not error")
	}
	if o.RPE() != 0 {
		t.Fatalf("negative rpe clamped to %f", o.RPE())
	}
	if err := o.SetECC(-0.1); err != nil {
		t.Fatal("negative ecc must clamp, not error")
	}
	if o.ECC() != 0 {
		t.Fatalf("negative ecc clamped to %f", o.ECC())
	}
	if err := o.SetECC(math.NaN()); err == nil {
		t.Fatal("NaN ecc accepted")
	}
	if err := o.SetINC(Angle(math.NaN())); err == nil {
		t.Fatal("NaN inclination accepted")
	}
	if err := o.SetAPE(Angle(math.NaN())); err == nil {
		t.Fatal("NaN argument of periapsis accepted")
	}
	if err := o.SetLAN(Angle(math.NaN())); err == nil {
		t.Fatal("NaN LAN accepted")
	}
	if err := o.SetTPP(math.Inf(-1)); err == nil {
		t.Fatal("infinite tpp accepted")
	}
	if _, err := NewOrbit(1e7, 0.2, Angle(math.NaN()), 0, 0, 0, Kerbin); err == nil {
		t.Fatal("NewOrbit accepted a NaN element")
	}
	// Clamping applies at construction too.
	o1 := mustOrbit(t, -1, -0.5, 0, 0, 0, 0, Kerbin)
	if o1.RPE() != 0 || o1.ECC() != 0 {
		t.Fatalf("construction clamping failed: rpe=%f ecc=%f", o1.RPE(), o1.ECC())
	}
}

func TestOrbitConicKind(t *testing.T) {
	ell := mustOrbit(t, 1e7, 0.2, 0, 0, 0, 0, Kerbin)
	par := mustOrbit(t, 1e7, 1, 0, 0, 0, 0, Kerbin)
	hyp := mustOrbit(t, 1e7, 1.5, 0, 0, 0, 0, Kerbin)
	if !ell.IsElliptical() || ell.IsParabolic() || ell.IsHyperbolic() {
		t.Fatal("e=0.2 misclassified")
	}
	if !par.IsParabolic() || par.IsElliptical() || par.IsHyperbolic() {
		t.Fatal("e=1 misclassified")
	}
	if !hyp.IsHyperbolic() || hyp.IsElliptical() || hyp.IsParabolic() {
		t.Fatal("e=1.5 misclassified")
	}
	if !math.IsInf(par.SemiMajorAxis(), 1) {
		t.Fatalf("parabolic sma=%f", par.SemiMajorAxis())
	}
	if hyp.SemiMajorAxis() != -2e7 {
		t.Fatalf("hyperbolic sma=%f", hyp.SemiMajorAxis())
	}
	if hyp.SemiLatusRectum() != 2.5e7 {
		t.Fatalf("hyperbolic p=%f", hyp.SemiLatusRectum())
	}
	if !math.IsInf(par.Period(), 1) || !math.IsInf(hyp.Period(), 1) {
		t.Fatal("open orbits must have an infinite period")
	}
	if _, open := ell.MaxTrueAnomaly(); open {
		t.Fatal("closed orbit reported an asymptote")
	}
	νmax, open := hyp.MaxTrueAnomaly()
	if !open {
		t.Fatal("hyperbola reported no asymptote")
	}
	if !floats.EqualWithinAbs(νmax.Rad(), 2.3005239830218631, 1e-12) {
		t.Fatalf("incorrect asymptote anomaly %v", νmax)
	}
}

func TestOrbitApsidesAndNodes(t *testing.T) {
	o := mustOrbit(t, 1e7, 0.2, 0, 0, 0, 1000, Kerbin)
	if !vectorsEqualWithin([]float64{1e7, 0, 0}, o.Periapsis(), 1e-4) {
		t.Fatalf("incorrect periapsis %+v", o.Periapsis())
	}
	if !vectorsEqualWithin([]float64{-1.5e7, 0, 0}, o.Apoapsis(), 1e-4) {
		t.Fatalf("incorrect apoapsis %+v", o.Apoapsis())
	}
	hyp := mustOrbit(t, 1e8, 1.5, AngleFromRad(0.5), AngleFromRad(0.1), AngleFromRad(3.0), 500, Earth)
	if hyp.Apoapsis() != nil {
		t.Fatal("open orbit has no apoapsis")
	}
	// On this hyperbola the descending node needs ν=π-0.1, beyond the
	// asymptote at 2.3 rad.
	if hyp.DescendingNode() != nil {
		t.Fatal("unreachable node did not come back nil")
	}
	if hyp.AscendingNode() == nil {
		t.Fatal("reachable ascending node came back nil")
	}
	inclined := mustOrbit(t, 1e7, 0.3, AngleFromRad(0.7), AngleFromRad(0.5), AngleFromRad(1.1), 0, Kerbin)
	sΩ, cΩ := math.Sincos(1.1)
	for name, node := range map[string][]float64{"ascending": inclined.AscendingNode(), "descending": inclined.DescendingNode()} {
		if node == nil {
			t.Fatalf("%s node came back nil", name)
		}
		if math.Abs(node[2]) > 1e-3 {
			t.Fatalf("%s node off the equatorial plane: z=%f", name, node[2])
		}
		if off := node[0]*sΩ - node[1]*cΩ; math.Abs(off) > 1e-3 {
			t.Fatalf("%s node off the node line by %f", name, off)
		}
	}
	if along := inclined.AscendingNode()[0]*cΩ + inclined.AscendingNode()[1]*sΩ; along <= 0 {
		t.Fatalf("ascending node on the wrong side: %f", along)
	}
	if along := inclined.DescendingNode()[0]*cΩ + inclined.DescendingNode()[1]*sΩ; along >= 0 {
		t.Fatalf("descending node on the wrong side: %f", along)
	}
}

func TestOrbitEquals(t *testing.T) {
	o := mustOrbit(t, 1e7, 0.2, 0, 0, 0, 1000, Kerbin)
	if ok, err := o.Equals(*o.Clone()); !ok {
		t.Fatalf("orbit does not equal its clone: %s", err)
	}
	// A TPP exactly one period later is the same phase.
	later := o.Clone()
	if err := later.SetTPP(1000 + 439821.04370290122); err != nil {
		t.Fatal(err)
	}
	if ok, err := o.Equals(*later); !ok {
		t.Fatalf("period-shifted TPP not recognized: %s", err)
	}
	// Half a period is the opposite phase.
	opposite := o.Clone()
	if err := opposite.SetTPP(1000 + 439821.04370290122/2); err != nil {
		t.Fatal(err)
	}
	if ok, _ := o.Equals(*opposite); ok {
		t.Fatal("half-period TPP shift considered equal")
	}
	if ok, _ := o.Equals(*mustOrbit(t, 1e7, 0.25, 0, 0, 0, 1000, Kerbin)); ok {
		t.Fatal("different eccentricities considered equal")
	}
	if ok, _ := o.Equals(*mustOrbit(t, 1.2e7, 0.2, 0, 0, 0, 1000, Kerbin)); ok {
		t.Fatal("different periapses considered equal")
	}
	if ok, err := o.Equals(*mustOrbit(t, 1e7, 0.2, 0, 0, 0, 1000, Earth)); ok || err == nil {
		t.Fatal("orbits about different bodies considered equal")
	}
}

func TestOrbitClone(t *testing.T) {
	o := mustOrbit(t, 1e7, 0.2, 0, 0, 0, 1000, Kerbin)
	c := o.Clone()
	if err := c.SetECC(0.9); err != nil {
		t.Fatal(err)
	}
	if o.ECC() != 0.2 {
		t.Fatalf("mutating the clone changed the original: ecc=%f", o.ECC())
	}
}

func TestOrbitString(t *testing.T) {
	o := mustOrbit(t, 1e7, 0.2, 0, 0, 0, 1000, Kerbin)
	if got := o.String(); got != "rpe=10000000.0 e=0.2000 i=0.000 Ω=0.000 ω=0.000 tpp=1000.0 @Kerbin" {
		t.Fatalf("incorrect orbit string %q", got)
	}
}

func TestOrbitRVRoundTripConics(t *testing.T) {
	// Elements to state vectors and back must recover the orbit on every
	// conic, not just the comfortable elliptical case.
	for _, tc := range []struct {
		name string
		ecc  float64
	}{
		{"elliptical", 0.4},
		{"parabolic", 1},
		{"hyperbolic", 1.8},
	} {
		o := mustOrbit(t, 1e7, tc.ecc, AngleFromRad(0.6), AngleFromRad(1.1), AngleFromRad(2.2), 750, Kerbin)
		for _, epoch := range []float64{0, 4000, 20000} {
			R, V, err := o.RV(epoch)
			if err != nil {
				t.Fatalf("%s: %s", tc.name, err)
			}
			rec, err := NewOrbitFromRV(R, V, epoch, Kerbin)
			if err != nil {
				t.Fatalf("%s: %s", tc.name, err)
			}
			if !floats.EqualWithinRel(rec.RPE(), o.RPE(), 1e-9) {
				t.Fatalf("%s t=%f: rpe %f not recovered", tc.name, epoch, rec.RPE())
			}
			if !floats.EqualWithinAbs(rec.ECC(), o.ECC(), 1e-12) {
				t.Fatalf("%s t=%f: ecc %v not recovered", tc.name, epoch, rec.ECC())
			}
			for _, angles := range [][2]Angle{{rec.INC(), o.INC()}, {rec.APE(), o.APE()}, {rec.LAN(), o.LAN()}} {
				if ok, err := anglesEqual(angles[0], angles[1]); !ok {
					t.Fatalf("%s t=%f: angle not recovered: %s", tc.name, epoch, err)
				}
			}
			if !floats.EqualWithinAbs(rec.TPP(), o.TPP(), 1e-6) {
				t.Fatalf("%s t=%f: tpp %f not recovered", tc.name, epoch, rec.TPP())
			}
			if ok, err := o.Equals(*rec); !ok {
				t.Fatalf("%s t=%f: orbits differ: %s", tc.name, epoch, err)
			}
		}
		if tc.ecc == 1 {
			// A state sampled off a parabola must come back exactly
			// parabolic, courtesy of the snap.
			R, V, err := o.RV(4000)
			if err != nil {
				t.Fatal(err)
			}
			rec, err := NewOrbitFromRV(R, V, 4000, Kerbin)
			if err != nil {
				t.Fatal(err)
			}
			if rec.ECC() != 1 {
				t.Fatalf("parabolic eccentricity did not snap: %v", rec.ECC())
			}
		}
	}
}
