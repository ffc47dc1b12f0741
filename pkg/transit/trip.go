package transit

// TripStop is one scheduled stop of a trip, ordered along the trip.
type TripStop struct {
	Order            int     `groups:"basic"`
	StopID           string  `groups:"basic"`
	Name             string  `groups:"basic"`
	Latitude         float64 `groups:"basic"`
	Longitude        float64 `groups:"basic"`
	Platform         string  `groups:"detailed"`
	PlannedDeparture string  `groups:"detailed"`
	Crossing         bool    `groups:"detailed"`
}

// RoutedPath is the dense road-following geometry for one trip, built by the
// route stitcher from the trip's scheduled stops. Coordinates are ordered
// longitude then latitude. Fallback is set when the routing service could not
// be used and the path is just the straight lines between the stops.
type RoutedPath struct {
	TripID      string      `json:"tripId" groups:"basic"`
	Coordinates [][]float64 `json:"coordinates" groups:"basic"`
	Fallback    bool        `json:"fallback" groups:"basic"`
}
