package geofence

import (
	"errors"
	"math"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371

// LatLng is a WGS84 coordinate pair in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ShapeType discriminates the two supported zone geometries.
type ShapeType string

const (
	ShapeCircle  ShapeType = "Circle"
	ShapePolygon ShapeType = "Polygon"
)

// Shape is a zone geometry. Circle shapes carry Center and RadiusMeters;
// Polygon shapes carry Path. The polygon is treated as implicitly closed:
// the last vertex connects back to the first, whether or not they coincide.
type Shape struct {
	Type         ShapeType
	Center       LatLng
	RadiusMeters float64
	Path         []LatLng
}

var (
	ErrUnknownShape   = errors.New("unknown shape type")
	ErrBadRadius      = errors.New("circle radius must be greater than zero")
	ErrTooFewVertices = errors.New("polygon needs at least 3 vertices")
)

// Validate reports whether the shape is well formed.
func Validate(s Shape) error {
	switch s.Type {
	case ShapeCircle:
		if s.RadiusMeters <= 0 {
			return ErrBadRadius
		}
	case ShapePolygon:
		if len(s.Path) < 3 {
			return ErrTooFewVertices
		}
	default:
		return ErrUnknownShape
	}
	return nil
}

// Contains reports whether the point lies inside the shape.
//
// Circles use great-circle distance; a point exactly on the boundary
// (distance == radius) counts as inside. Polygons use ray casting over
// (lng, lat) treated as planar coordinates — a city-scale approximation
// that degrades near the poles and across the antimeridian. A point
// exactly on a polygon edge has an undefined result; callers must not
// rely on either answer there.
func Contains(p LatLng, s Shape) bool {
	switch s.Type {
	case ShapeCircle:
		return DistanceMeters(p, s.Center) <= s.RadiusMeters
	case ShapePolygon:
		return inPolygon(p, s.Path)
	}
	return false
}

// DistanceMeters computes the great-circle distance between two points
// using the haversine formula.
func DistanceMeters(a, b LatLng) float64 {
	dLat := deg2rad(b.Lat - a.Lat)
	dLng := deg2rad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(a.Lat))*math.Cos(deg2rad(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c * 1000
}

// inPolygon is the standard ray-casting test. For each edge (vi, vj),
// including the closing edge from the last vertex to the first, the
// crossing toggle flips when the point's latitude lies strictly between
// the edge endpoints' latitudes (exclusive on one side so shared vertices
// are not double-counted) and the point's longitude is left of the edge's
// intercept at that latitude.
func inPolygon(p LatLng, path []LatLng) bool {
	px, py := p.Lng, p.Lat
	inside := false

	for i, j := 0, len(path)-1; i < len(path); j, i = i, i+1 {
		xi, yi := path[i].Lng, path[i].Lat
		xj, yj := path[j].Lng, path[j].Lat

		if (yi > py) != (yj > py) &&
			px < (xj-xi)*(py-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

func deg2rad(deg float64) float64 {
	return deg * (math.Pi / 180)
}
