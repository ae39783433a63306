package kepler

import (
	"fmt"
	"math"
	"strings"
)

// GravitationalBody defines an attracting point mass. All values are SI:
// the gravitational parameter μ in m³/s² and the radius in meters.
type GravitationalBody struct {
	Name   string
	Radius float64
	μ      float64
}

// NewGravitationalBody returns a body from its name, gravitational parameter
// and radius. μ must be strictly positive and the radius non negative.
func NewGravitationalBody(name string, μ, radius float64) (GravitationalBody, error) {
	if math.IsNaN(μ) || μ <= 0 {
		return GravitationalBody{}, fmt.Errorf("invalid gravitational parameter %f", μ)
	}
	if math.IsNaN(radius) || radius < 0 {
		return GravitationalBody{}, fmt.Errorf("invalid radius %f", radius)
	}
	return GravitationalBody{name, radius, μ}, nil
}

// GM returns μ (which is unexported because it's a lowercase letter).
func (b GravitationalBody) GM() float64 {
	return b.μ
}

// String implements the Stringer interface.
func (b GravitationalBody) String() string {
	return b.Name + " body"
}

// Equals returns whether the provided body is the same.
func (b GravitationalBody) Equals(o GravitationalBody) bool {
	return b.Name == o.Name && b.Radius == o.Radius && b.μ == o.μ
}

// BodyByName returns the catalogue body matching the provided name.
func BodyByName(name string) (GravitationalBody, error) {
	switch strings.ToLower(name) {
	case "sun":
		return Sun, nil
	case "mercury":
		return Mercury, nil
	case "venus":
		return Venus, nil
	case "earth":
		return Earth, nil
	case "luna":
		return Luna, nil
	case "mars":
		return Mars, nil
	case "jupiter":
		return Jupiter, nil
	case "saturn":
		return Saturn, nil
	case "uranus":
		return Uranus, nil
	case "neptune":
		return Neptune, nil
	case "pluto":
		return Pluto, nil
	case "kerbol":
		return Kerbol, nil
	case "moho":
		return Moho, nil
	case "eve":
		return Eve, nil
	case "kerbin":
		return Kerbin, nil
	case "mun":
		return Mun, nil
	case "minmus":
		return Minmus, nil
	case "duna":
		return Duna, nil
	case "jool":
		return Jool, nil
	default:
		return GravitationalBody{}, fmt.Errorf("undefined body '%s'", name)
	}
}

/* Definitions */

// Sun is the brightest thing around.
var Sun = GravitationalBody{"Sun", 6.957e8, 1.32712440017987e20}

// Mercury is in a 3:2 resonance.
var Mercury = GravitationalBody{"Mercury", 2.4397e6, 2.2032e13}

// Venus spins the wrong way.
var Venus = GravitationalBody{"Venus", 6.0518e6, 3.24858599e14}

// Earth is where this code was written.
var Earth = GravitationalBody{"Earth", 6.3781363e6, 3.98600433e14}

// Luna is Earth's moon, and that name avoids a capitalization headache.
var Luna = GravitationalBody{"Luna", 1.7374e6, 4.902799e12}

// Mars is next.
var Mars = GravitationalBody{"Mars", 3.39619e6, 4.282831e13}

// Jupiter shields us.
var Jupiter = GravitationalBody{"Jupiter", 7.1492e7, 1.266865361e17}

// Saturn would float, given a big enough tub.
var Saturn = GravitationalBody{"Saturn", 6.0268e7, 3.7931208e16}

// Uranus rolls on its side.
var Uranus = GravitationalBody{"Uranus", 2.5559e7, 5.7939513e15}

// Neptune was found on paper before it was found in the sky.
var Neptune = GravitationalBody{"Neptune", 2.4764e7, 6.836529e15}

// Pluto is still invited, demotion or not.
var Pluto = GravitationalBody{"Pluto", 1.151e6, 9.0e11}

// The analog system bodies scale their real counterparts' gravitational
// parameters down a thousandfold, with game-sized radii.

// Kerbol anchors the analog system.
var Kerbol = GravitationalBody{"Kerbol", 2.616e8, 1.32712440017987e17}

// Moho stands in for Mercury.
var Moho = GravitationalBody{"Moho", 2.5e5, 2.2032e10}

// Eve stands in for Venus, purple instead of yellow.
var Eve = GravitationalBody{"Eve", 7.0e5, 3.24858599e11}

// Kerbin is home, at one thousandth of Earth.
var Kerbin = GravitationalBody{"Kerbin", 6.0e5, 3.98600433e11}

// Mun stands in for Luna, definite article not included.
var Mun = GravitationalBody{"Mun", 2.0e5, 4.902799e9}

// Minmus is the minty second moon. No real counterpart to scale from, so it
// keeps its game values.
var Minmus = GravitationalBody{"Minmus", 6.0e4, 1.7658e9}

// Duna stands in for Mars.
var Duna = GravitationalBody{"Duna", 3.2e5, 4.282831e10}

// Jool stands in for Jupiter.
var Jool = GravitationalBody{"Jool", 6.0e6, 1.266865361e14}
