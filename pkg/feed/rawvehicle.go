package feed

// RawVehicle is one record exactly as the live position feed sends it. The feed
// omits fields freely so everything here decodes to its zero value when absent -
// downstream code never has to branch on nulls.
type RawVehicle struct {
	VehicleID     int `json:"vehicleId"`
	LastStopOrder int `json:"lastStopOrder"`

	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`

	Line        string `json:"line"`
	LineName    string `json:"lineName"`
	Destination string `json:"destination"`
	Direction   string `json:"direction"`

	DelayMinutes int    `json:"delay"`
	LowFloor     bool   `json:"lowFloor"`
	Operator     string `json:"operator"`
	OnStop       bool   `json:"onStop"`
	TripID       string `json:"tripId"`

	// The feed has two type fields and populates whichever it feels like.
	Type     string `json:"type"`
	TypeHint string `json:"vehicleType"`
}

// RawTripStop is one scheduled stop record from the trip detail endpoint.
type RawTripStop struct {
	Order            int     `json:"order"`
	StopID           string  `json:"stopId"`
	Name             string  `json:"name"`
	Latitude         float64 `json:"lat"`
	Longitude        float64 `json:"lng"`
	Platform         string  `json:"platform"`
	PlannedDeparture string  `json:"plannedDeparture"`
	Crossing         bool    `json:"crossing"`
}
