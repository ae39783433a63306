package kepler

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/planetposition"
)

// AU is one astronomical unit in meters.
const AU = 1.495978707e11

// j2000JD is the Julian date of the J2000 epoch. Heliocentric orbits carry
// their TPP in seconds since this epoch.
const j2000JD = 2451545.0

// HelioOrbit returns the heliocentric orbit of the provided planet at the
// given time, around Sun, with TPP counted in seconds since J2000. With
// VSOP87 enabled in the configuration the full theory provides the state
// (position from the theory, velocity by central difference); otherwise the
// J2000 mean elements do, which is plenty for porkchop-grade work.
func HelioOrbit(planet string, dt time.Time) (*Orbit, error) {
	idx, ok := planetIndex(planet)
	if !ok {
		return nil, errors.Errorf("no heliocentric ephemeris for '%s'", planet)
	}
	jd := julian.TimeToJD(dt)
	t := (jd - j2000JD) * 86400
	if conf := keplerConfig(); conf.VSOP87 {
		v87, err := loadVSOP(idx, conf.VSOP87Dir)
		if err != nil {
			return nil, err
		}
		// Half a kilosecond each side keeps the difference well above the
		// theory's noise floor without smearing the velocity.
		const δ = 500.0
		R := vsopPosition(v87, jd)
		V := scale(1/(2*δ), sub(vsopPosition(v87, jd+δ/86400), vsopPosition(v87, jd-δ/86400)))
		return NewOrbitFromRV(R, V, t, Sun)
	}
	el, ok := meanElements[idx]
	if !ok {
		return nil, errors.Errorf("no mean elements for '%s'", planet)
	}
	return el.orbitAt(jd)
}

// vsopPosition returns the heliocentric Cartesian position in meters for the
// given Julian date.
func vsopPosition(v87 *planetposition.V87Planet, jd float64) []float64 {
	l, b, r := v87.Position2000(jd)
	return Spherical2Cartesian([]float64{r * AU, math.Pi/2 - b.Rad(), l.Rad()})
}

var (
	vsopMu     sync.Mutex
	vsopLoaded = map[int]*planetposition.V87Planet{}
)

// loadVSOP loads and caches a VSOP87 dataset. The whole file is parsed on
// first use, which is exactly when the caller is willing to pay for it.
func loadVSOP(idx int, dir string) (*planetposition.V87Planet, error) {
	vsopMu.Lock()
	defer vsopMu.Unlock()
	if v, ok := vsopLoaded[idx]; ok {
		return v, nil
	}
	v, err := planetposition.LoadPlanetPath(idx, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "could not load VSOP87 planet %d from %s", idx, dir)
	}
	vsopLoaded[idx] = v
	return v, nil
}

// planetIndex maps planet names to the VSOP87 index.
func planetIndex(name string) (int, bool) {
	switch strings.ToLower(name) {
	case "mercury":
		return planetposition.Mercury, true
	case "venus":
		return planetposition.Venus, true
	case "earth":
		return planetposition.Earth, true
	case "mars":
		return planetposition.Mars, true
	case "jupiter":
		return planetposition.Jupiter, true
	case "saturn":
		return planetposition.Saturn, true
	case "uranus":
		return planetposition.Uranus, true
	case "neptune":
		return planetposition.Neptune, true
	}
	return 0, false
}

// meanElement holds J2000 mean orbital elements (AU and degrees) and their
// per-Julian-century rates, from the JPL approximate ephemeris table.
type meanElement struct {
	a, e, i, L, ϖ, Ω       float64
	da, de, di, dL, dϖ, dΩ float64
}

func (el meanElement) orbitAt(jd float64) (*Orbit, error) {
	T := (jd - j2000JD) / 36525
	a := (el.a + el.da*T) * AU
	e := el.e + el.de*T
	ϖ := el.ϖ + el.dϖ*T
	Ω := el.Ω + el.dΩ*T
	M := AngleFromDeg(el.L + el.dL*T - ϖ).Rad()
	n := math.Sqrt(Sun.μ / (a * a * a))
	t := (jd - j2000JD) * 86400
	return NewOrbit(a*(1-e), e,
		AngleFromDeg(el.i+el.di*T), AngleFromDeg(ϖ-Ω), AngleFromDeg(Ω),
		t-M/n, Sun)
}

var meanElements = map[int]meanElement{
	planetposition.Mercury: {0.38709927, 0.20563593, 7.00497902, 252.25032350, 77.45779628, 48.33076593,
		0.00000037, 0.00001906, -0.00594749, 149472.67411175, 0.16047689, -0.12534081},
	planetposition.Venus: {0.72333566, 0.00677672, 3.39467605, 181.97909950, 131.60246718, 76.67984255,
		0.00000390, -0.00004107, -0.00078890, 58517.81538729, 0.00268329, -0.27769418},
	planetposition.Earth: {1.00000261, 0.01671123, -0.00001531, 100.46457166, 102.93768193, 0,
		0.00000562, -0.00004392, -0.01294668, 35999.37244981, 0.32327364, 0},
	planetposition.Mars: {1.52371034, 0.09339410, 1.84969142, -4.55343205, -23.94362959, 49.55953891,
		0.00001847, 0.00007882, -0.00813131, 19140.30268499, 0.44441088, -0.29257343},
	planetposition.Jupiter: {5.20288700, 0.04838624, 1.30439695, 34.39644051, 14.72847983, 100.47390909,
		-0.00011607, -0.00013253, -0.00183714, 3034.74612775, 0.21252668, 0.20469106},
	planetposition.Saturn: {9.53667594, 0.05386179, 2.48599187, 49.95424423, 92.59887831, 113.66242448,
		-0.00125060, -0.00050991, 0.00193609, 1222.49362201, -0.41897216, -0.28867794},
	planetposition.Uranus: {19.18916464, 0.04725744, 0.77263783, 313.23810451, 170.95427630, 74.01692503,
		-0.00196176, -0.00004397, -0.00242939, 428.48202785, 0.40805281, 0.04240589},
	planetposition.Neptune: {30.06992276, 0.00859048, 1.77004347, -55.12002969, 44.96476227, 131.78422574,
		0.00026291, 0.00005105, 0.00035372, 218.45945325, -0.32241464, -0.00508664},
}

// KerbolSystemOrbit returns the orbit of one of the analog system's planets
// around Kerbol, with TPP in universal-time seconds (UT=0 is the game epoch,
// all planets start at their canonical mean anomaly).
func KerbolSystemOrbit(name string) (*Orbit, error) {
	switch strings.ToLower(name) {
	case "moho":
		return analogOrbit(5263138304, 0.2, 7, 15, 70, 3.14)
	case "eve":
		return analogOrbit(9832684544, 0.01, 2.1, 0, 15, 3.14)
	case "kerbin":
		return analogOrbit(13599840256, 0, 0, 0, 0, 3.14)
	case "duna":
		return analogOrbit(20726155264, 0.051, 0.06, 0, 135.5, 3.14)
	case "jool":
		return analogOrbit(68773560320, 0.05, 1.304, 0, 52, 0.1)
	}
	return nil, errors.Errorf("no analog-system ephemeris for '%s'", name)
}

func analogOrbit(a, e, iDeg, apeDeg, lanDeg, M0 float64) (*Orbit, error) {
	n := math.Sqrt(Kerbol.μ / (a * a * a))
	return NewOrbit(a*(1-e), e,
		AngleFromDeg(iDeg), AngleFromDeg(apeDeg), AngleFromDeg(lanDeg),
		-M0/n, Kerbol)
}
