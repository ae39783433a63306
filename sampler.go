package kepler

import "math"

// OrbitalPoints samples the whole orbit with at most the provided angular
// step between consecutive samples. See OrbitalPointsBetween.
func (o Orbit) OrbitalPoints(maxStep Angle) (points [][]float64, anomalies []Angle) {
	return o.OrbitalPointsBetween(nil, nil, maxStep)
}

// OrbitalPointsBetween samples the orbit counterclockwise from the start to
// the end true anomaly. A nil bound, or equal bounds, means the whole turn.
// The walk uses the largest step which is at most maxStep and divides the arc
// evenly. A full turn yields one point per step without repeating the seam
// sample; a partial arc includes both end points. Samples falling in the
// unreachable arc of an open orbit come out as the point-at-infinity
// sentinel, never dropped, so both returned slices stay aligned with the
// walk. Panics if maxStep is not strictly positive (remember that a full
// turn normalizes to zero).
func (o Orbit) OrbitalPointsBetween(start, end *Angle, maxStep Angle) (points [][]float64, anomalies []Angle) {
	if maxStep.Rad() <= 0 {
		panic("maxStep must be strictly positive")
	}
	span := 2 * math.Pi
	var from Angle
	fullTurn := start == nil || end == nil || *start == *end
	if fullTurn {
		if start != nil {
			from = *start
		}
	} else {
		from = *start
		span = AngleFromRad(end.Rad() - start.Rad()).Rad()
	}
	n := int(math.Ceil(span / maxStep.Rad()))
	if n < 1 {
		n = 1
	}
	step := span / float64(n)
	count := n
	if !fullTurn {
		count = n + 1
	}
	points = make([][]float64, 0, count)
	anomalies = make([]Angle, 0, count)
	for i := 0; i < count; i++ {
		ν := AngleFromRad(from.Rad() + float64(i)*step)
		if !fullTurn && i == count-1 {
			// Pin the last sample to the requested bound, rounding drifts.
			ν = *end
		}
		points = append(points, o.TrueAnomaly2Point(ν))
		anomalies = append(anomalies, ν)
	}
	return points, anomalies
}
