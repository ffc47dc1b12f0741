package transit

import (
	"fmt"
	"time"
)

// VehicleRecord is a single tracked position sample from the live feed.
//
// The feed repeats one physical vehicle at several recent breadcrumb positions,
// so snapshot membership is keyed by the composite id (physical id + last stop
// order) while motion continuity is keyed by the physical id alone.
type VehicleRecord struct {
	CompositeID   string `groups:"basic" bson:"compositeid"`
	PhysicalID    int    `groups:"basic" bson:"physicalid"`
	LastStopOrder int    `groups:"detailed" bson:"laststoporder"`

	Latitude  float64 `groups:"basic" bson:"latitude"`
	Longitude float64 `groups:"basic" bson:"longitude"`

	// Previous position carried over from the sample with the same composite id
	// in the preceding snapshot, used by renderers for interpolation.
	HasPreviousPosition bool    `groups:"basic" bson:"haspreviousposition"`
	PreviousLatitude    float64 `groups:"basic" bson:"previouslatitude"`
	PreviousLongitude   float64 `groups:"basic" bson:"previouslongitude"`

	Line         string      `groups:"basic" bson:"line"`
	LineName     string      `groups:"basic" bson:"linename"`
	Destination  string      `groups:"basic" bson:"destination"`
	Direction    string      `groups:"detailed" bson:"direction"`
	DelayMinutes int         `groups:"basic" bson:"delayminutes"`
	LowFloor     bool        `groups:"detailed" bson:"lowfloor"`
	Operator     string      `groups:"detailed" bson:"operator"`
	OnStop       bool        `groups:"detailed" bson:"onstop"`
	TripID       string      `groups:"detailed" bson:"tripid"`
	Type         VehicleType `groups:"basic" bson:"type"`

	LastSeen time.Time `groups:"detailed" bson:"lastseen"`
}

// CompositeVehicleID builds the snapshot key for one breadcrumb sample.
func CompositeVehicleID(physicalID int, lastStopOrder int) string {
	return fmt.Sprintf("%d-%d", physicalID, lastStopOrder)
}
