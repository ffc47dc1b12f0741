package heading

import "math"

// Point is a position in the local ground plane, in meters. X grows east, Z
// grows north.
type Point struct {
	X float64
	Z float64
}

// Segment is one straight piece of road geometry in plane coordinates.
type Segment struct {
	ID string
	A  Point
	B  Point
}

// SegmentSource is the injected road geometry capability. Implementations
// return every line-shaped feature within radius meters of the query point.
// A map-rendering host typically backs this with its own spatial index.
type SegmentSource interface {
	QueryNearbySegments(point Point, radius float64) []Segment
}

// SegmentSourceFunc adapts a plain function to a SegmentSource.
type SegmentSourceFunc func(point Point, radius float64) []Segment

func (f SegmentSourceFunc) QueryNearbySegments(point Point, radius float64) []Segment {
	return f(point, radius)
}

const metersPerDegreeLatitude = 111320.0

// Projector maps geographic coordinates into the local plane, anchored at a
// fixed origin so every vehicle shares consistent units.
type Projector struct {
	AnchorLatitude  float64
	AnchorLongitude float64

	cosAnchor float64
}

func NewProjector(anchorLatitude float64, anchorLongitude float64) Projector {
	return Projector{
		AnchorLatitude:  anchorLatitude,
		AnchorLongitude: anchorLongitude,
		cosAnchor:       math.Cos(anchorLatitude * math.Pi / 180),
	}
}

func (p Projector) Project(latitude float64, longitude float64) Point {
	return Point{
		X: (longitude - p.AnchorLongitude) * metersPerDegreeLatitude * p.cosAnchor,
		Z: (latitude - p.AnchorLatitude) * metersPerDegreeLatitude,
	}
}

// NormalizeAngle wraps an angle into (-π, π].
func NormalizeAngle(angle float64) float64 {
	for angle <= -math.Pi {
		angle += 2 * math.Pi
	}
	for angle > math.Pi {
		angle -= 2 * math.Pi
	}

	return angle
}

// AngleDiff returns the normalized difference a-b, never exceeding π in
// magnitude. All angle comparisons in this package go through here so the
// ±180° wrap never produces a long-way-round rotation.
func AngleDiff(a float64, b float64) float64 {
	return NormalizeAngle(a - b)
}

// DistanceFromSegment returns the perpendicular distance from the point to the
// segment, clamped to the segment ends.
func (p Point) DistanceFromSegment(a Point, b Point) float64 {
	apX := p.X - a.X
	apZ := p.Z - a.Z
	abX := b.X - a.X
	abZ := b.Z - a.Z

	dot := apX*abX + apZ*abZ
	lengthSquared := abX*abX + abZ*abZ

	param := -1.0
	if lengthSquared != 0 {
		param = dot / lengthSquared
	}

	var closestX, closestZ float64

	if param < 0 {
		closestX = a.X
		closestZ = a.Z
	} else if param > 1 {
		closestX = b.X
		closestZ = b.Z
	} else {
		closestX = a.X + param*abX
		closestZ = a.Z + param*abZ
	}

	dx := p.X - closestX
	dz := p.Z - closestZ

	return math.Sqrt(dx*dx + dz*dz)
}
