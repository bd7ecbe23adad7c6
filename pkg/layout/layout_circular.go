package layout

import "math"

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Circle returns n points evenly spaced on a circle of the given radius
// around the origin, starting on the positive x axis.
func Circle(n int, radius float64) []Point {
	if n == 0 {
		return nil
	}
	if n == 1 {
		return []Point{{}}
	}
	points := make([]Point, n)
	angleStep := 2 * math.Pi / float64(n)
	for i := range points {
		angle := float64(i) * angleStep
		points[i] = Point{
			X: radius * math.Cos(angle),
			Y: radius * math.Sin(angle),
		}
	}
	return points
}
