package kepler

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// PQW2ECI converts a given vector from the perifocal frame to the inertial frame
// for the provided inclination, argument of periapsis and longitude of the
// ascending node.
func PQW2ECI(i, ω, Ω float64, vI []float64) []float64 {
	var m mat.Dense
	m.Mul(R3(-Ω), R1(-i))
	m.Mul(&m, R3(-ω))
	return MxV33(&m, vI)
}

// ECI2PQW converts a given vector from the inertial frame to the perifocal frame.
func ECI2PQW(i, ω, Ω float64, vI []float64) []float64 {
	var m mat.Dense
	m.Mul(R3(ω), R1(i))
	m.Mul(&m, R3(Ω))
	return MxV33(&m, vI)
}

// R1 rotation about the 1st axis.
func R1(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R2 rotation about the 2nd axis.
func R2(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, 0, -s, 0, 1, 0, s, 0, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// MxV33 multiplies a matrix with a vector. Note that there is no dimension check!
func MxV33(m *mat.Dense, v []float64) []float64 {
	var r mat.VecDense
	r.MulVec(m, mat.NewVecDense(len(v), v))
	return []float64{r.AtVec(0), r.AtVec(1), r.AtVec(2)}
}
