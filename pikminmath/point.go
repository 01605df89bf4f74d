package pikminmath

import "math"

// Point3 is a 3D single-precision vector, matching the coordinate space
// the game's spawn points and map units live in (X/Z are the ground plane,
// Y is height).
type Point3 struct {
	X, Y, Z float32
}

// Point2 is a 2D single-precision vector, used for the ground-plane
// projection of a Point3 and for rotations about the XZ plane.
type Point2 struct {
	X, Z float32
}

// Add returns the component-wise sum.
func (p Point3) Add(o Point3) Point3 {
	return Point3{p.X + o.X, p.Y + o.Y, p.Z + o.Z}
}

// Sub returns the component-wise difference.
func (p Point3) Sub(o Point3) Point3 {
	return Point3{p.X - o.X, p.Y - o.Y, p.Z - o.Z}
}

// Scale returns p scaled uniformly by s.
func (p Point3) Scale(s float32) Point3 {
	return Point3{p.X * s, p.Y * s, p.Z * s}
}

// TwoD projects onto the XZ ground plane, discarding height.
func (p Point3) TwoD() Point2 {
	return Point2{p.X, p.Z}
}

// Dist is the true Euclidean distance between two points, using the
// platform's real sqrt. Used where bit-exactness with the original game
// doesn't matter (e.g. diagnostics); layout generation itself must use
// Dist2 below instead.
func (p Point3) Dist(o Point3) float32 {
	d := p.Sub(o)
	return float32(math.Sqrt(float64(d.X*d.X + d.Y*d.Y + d.Z*d.Z)))
}

// Dist2 is the game-accurate Euclidean distance, computed with Sqrt
// (the frsqrte approximation) instead of the platform sqrt. This is the
// distance function the waypoint graph and carry-distance model must use,
// since it is what the original game itself computes.
func (p Point3) Dist2(o Point3) float32 {
	d := p.Sub(o)
	return Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
}

// RotateAboutXZ rotates p about pivot within the XZ plane by angleRad,
// leaving Y untouched.
func (p Point3) RotateAboutXZ(pivot Point2, angleRad float32) Point3 {
	r := p.TwoD().RotateAbout(pivot, angleRad)
	return Point3{r.X, p.Y, r.Z}
}

// RotateAbout rotates p about pivot by angleRad (radians, counterclockwise).
func (p Point2) RotateAbout(pivot Point2, angleRad float32) Point2 {
	dx, dz := p.X-pivot.X, p.Z-pivot.Z
	sin, cos := float32(math.Sin(float64(angleRad))), float32(math.Cos(float64(angleRad)))
	return Point2{
		X: dx*cos-dz*sin + pivot.X,
		Z: dx*sin+dz*cos + pivot.Z,
	}
}

// Perpendicular returns a vector rotated 90 degrees from p, useful for
// surface normals along a 2D segment.
func (p Point2) Perpendicular() Point2 {
	return Point2{-p.Z, p.X}
}

// PointToLineDist returns the perpendicular distance from p to the segment
// a-b, clamped to the segment's endpoints. Used by the query evaluator's
// "gated" predicate to decide whether a carry path's straight line passes
// close enough to a gate to be considered blocked by it.
func PointToLineDist(p, a, b Point2) float32 {
	abx, abz := b.X-a.X, b.Z-a.Z
	lenSq := abx*abx + abz*abz
	if lenSq == 0 {
		dx, dz := p.X-a.X, p.Z-a.Z
		return float32(math.Sqrt(float64(dx*dx + dz*dz)))
	}
	t := ((p.X-a.X)*abx + (p.Z-a.Z)*abz) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	proj := Point2{a.X + t*abx, a.Z + t*abz}
	dx, dz := p.X-proj.X, p.Z-proj.Z
	return float32(math.Sqrt(float64(dx*dx + dz*dz)))
}
