package transit

import "math"

const earthRadiusMeters = 6371000

// Location is a GeoJSON style point, coordinates ordered longitude then latitude.
type Location struct {
	Type        string    `json:"type" groups:"basic" bson:"type"`
	Coordinates []float64 `json:"coordinates" groups:"basic" bson:"coordinates"`
}

func NewPointLocation(longitude float64, latitude float64) Location {
	return Location{
		Type:        "Point",
		Coordinates: []float64{longitude, latitude},
	}
}

func (l Location) Longitude() float64 {
	return l.Coordinates[0]
}

func (l Location) Latitude() float64 {
	return l.Coordinates[1]
}

// DistanceFrom returns the great circle distance between two locations in meters.
func (l Location) DistanceFrom(other Location) float64 {
	phi1 := l.Latitude() * math.Pi / 180
	phi2 := other.Latitude() * math.Pi / 180
	deltaPhi := (other.Latitude() - l.Latitude()) * math.Pi / 180
	deltaLambda := (other.Longitude() - l.Longitude()) * math.Pi / 180

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}
