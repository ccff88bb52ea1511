package projection

import (
	"github.com/golang/geo/r2"
)

// perimeterDirections lists the perimeter sample points as (x, y) selectors over the rect:
// -1 picks the min edge, 0 the center, 1 the max edge.
var perimeterDirections = [8][2]int{
	{-1, -1},
	{-1, 1},
	{1, 1},
	{1, -1},
	{-1, 0},
	{1, 0},
	{0, -1},
	{0, 1},
}

// SamplePoints returns the screen points raycast for a detection. The rect's center comes first,
// then its eight perimeter points (corners and edge midpoints) pulled toward the center by
// cornerPct, then steps rings of those eight points pulled further in by i/(steps+1) for i in
// [0, steps). The first ring therefore repeats the center.
func SamplePoints(rect r2.Rect, cornerPct float64, steps int) []r2.Point {
	center := rect.Center()
	pick := func(lo, hi, mid float64, sel int) float64 {
		switch sel {
		case -1:
			return lo
		case 1:
			return hi
		default:
			return mid
		}
	}

	corners := make([]r2.Point, len(perimeterDirections))
	for i, d := range perimeterDirections {
		edge := r2.Point{
			X: pick(rect.X.Lo, rect.X.Hi, center.X, d[0]),
			Y: pick(rect.Y.Lo, rect.Y.Hi, center.Y, d[1]),
		}
		corners[i] = lerpPoint(center, edge, cornerPct)
	}

	points := make([]r2.Point, 0, 1+len(corners)*(steps+1))
	points = append(points, center)
	points = append(points, corners...)
	step := 1 / float64(steps+1)
	for i := 0; i < steps; i++ {
		for _, c := range corners {
			points = append(points, lerpPoint(center, c, step*float64(i)))
		}
	}
	return points
}

func lerpPoint(a, b r2.Point, t float64) r2.Point {
	return a.Add(b.Sub(a).Mul(t))
}
