package geometry

import "math"

// PolylineLength returns the total length of the polyline through points.
func PolylineLength(points []Point2D) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += points[i-1].Distance(points[i])
	}
	return total
}

// MergeCollinear removes interior points that lie on the straight segment
// between their neighbours, within tolerance. Endpoints are always kept.
func MergeCollinear(points []Point2D, tolerance float64) []Point2D {
	if len(points) <= 2 {
		return points
	}
	out := make([]Point2D, 0, len(points))
	out = append(out, points[0])
	for i := 1; i < len(points)-1; i++ {
		if PerpendicularDistance(points[i], out[len(out)-1], points[i+1]) > tolerance {
			out = append(out, points[i])
		}
	}
	out = append(out, points[len(points)-1])
	return out
}

// SimplifyPolyline reduces a polyline using the Douglas-Peucker algorithm.
// Points farther than epsilon from the chord between the endpoints are kept.
func SimplifyPolyline(path []Point2D, epsilon float64) []Point2D {
	if len(path) <= 2 {
		return path
	}

	// Find point with maximum distance from line between first and last points
	dmax := 0.0
	index := 0
	end := len(path) - 1

	for i := 1; i < end; i++ {
		d := PerpendicularDistance(path[i], path[0], path[end])
		if d > dmax {
			dmax = d
			index = i
		}
	}

	if dmax > epsilon {
		left := SimplifyPolyline(path[:index+1], epsilon)
		right := SimplifyPolyline(path[index:], epsilon)

		result := make([]Point2D, 0, len(left)+len(right)-1)
		result = append(result, left[:len(left)-1]...)
		result = append(result, right...)
		return result
	}

	return []Point2D{path[0], path[end]}
}

// PerpendicularDistance calculates the perpendicular distance from point p to line a-b.
func PerpendicularDistance(p, a, b Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y

	if dx == 0 && dy == 0 {
		return p.Distance(a)
	}

	num := math.Abs(dy*p.X - dx*p.Y + b.X*a.Y - b.Y*a.X)
	den := math.Sqrt(dx*dx + dy*dy)
	return num / den
}

// PointToSegmentDistance returns the distance from point (px, py) to the
// segment a-b, clamped to the segment's extent.
func PointToSegmentDistance(px, py float64, a, b Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y

	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-a.X, py-a.Y)
	}

	t := ((px-a.X)*dx + (py-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))

	projX := a.X + t*dx
	projY := a.Y + t*dy
	return math.Hypot(px-projX, py-projY)
}
